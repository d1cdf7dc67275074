package config

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap logger from the log configuration.  An unknown
// level falls back to info
func NewLogger(cfg LogConfig) (*zap.Logger, error) {

	level, err := zapcore.ParseLevel(cfg.Level)

	if err != nil {
		level = zapcore.InfoLevel
	}

	var zc zap.Config

	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig = zap.NewProductionEncoderConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		zc.Encoding = "console"
	}

	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	zc.Level = zap.NewAtomicLevelAt(level)

	if cfg.Output != "" {
		zc.OutputPaths = []string{cfg.Output}
		zc.ErrorOutputPaths = []string{cfg.Output}
	}

	return zc.Build(zap.AddStacktrace(zapcore.ErrorLevel))
}
