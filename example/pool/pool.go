// Example pool runs a darknet model over a directory of images using a pool
// of networks so images are processed concurrently
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/swdee/go-darknet"
	"github.com/swdee/go-darknet/config"
	"github.com/swdee/go-darknet/engine/native"
	"go.uber.org/zap"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	cfgFile := flag.String("config", "", "YAML configuration file")
	imgDir := flag.String("d", "../data/images/", "A directory of images to run object detection on")
	poolSize := flag.Int("s", 0, "Size of network pool, overrides pool.size of the config")
	repeat := flag.Int("r", 1, "Repeat processing image directory the specified number of times, use this if you don't have enough images")

	flag.Parse()

	cfg := config.Default()

	if *cfgFile != "" {
		loaded, err := config.Load(*cfgFile)

		if err != nil {
			log.Fatalf("Error loading config: %v\n", err)
		}

		cfg = *loaded
	}

	if *poolSize > 0 {
		cfg.Pool.Size = *poolSize
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v\n", err)
	}

	logger, err := config.NewLogger(cfg.Log)

	if err != nil {
		log.Fatalf("Error creating logger: %v\n", err)
	}

	defer logger.Sync()

	// check dir exists
	info, err := os.Stat(*imgDir)

	if err != nil {
		logger.Fatal("no such image directory", zap.String("dir", *imgDir), zap.Error(err))
	}

	if !info.IsDir() {
		logger.Fatal("image path is not a directory", zap.String("dir", *imgDir))
	}

	if len(cfg.Pool.CPUCores) > 0 {
		if err := darknet.SetProcessCPUAffinity(darknet.CPUCoreMask(cfg.Pool.CPUCores)); err != nil {
			logger.Warn("failed to set cpu affinity", zap.Error(err))
		}
	}

	opts := []darknet.Option{darknet.WithLogger(logger)}

	if cfg.Model.Labels != "" {
		labels, err := darknet.LoadLabels(cfg.Model.Labels)

		if err != nil {
			logger.Fatal("error loading labels", zap.Error(err))
		}

		opts = append(opts, darknet.WithLabels(labels))
	}

	eng := native.New()

	pool, err := darknet.NewPool(cfg.Pool.Size, eng, cfg.Model.Cfg, cfg.Model.Weights, opts...)

	if err != nil {
		logger.Fatal("error creating network pool", zap.Error(err))
	}

	files, err := os.ReadDir(*imgDir)

	if err != nil {
		logger.Fatal("error reading image directory", zap.Error(err))
	}

	params := cfg.PredictParams()
	start := time.Now()

	var (
		wg        sync.WaitGroup
		processed atomic.Int64
	)

	// repeat processing the specified number of times to increase the number
	// of images processed
	for i := 0; i < *repeat; i++ {
		for _, file := range files {
			if file.IsDir() {
				continue
			}

			// pool.Get() blocks if no networks are available in the pool
			net := pool.Get()
			wg.Add(1)

			go func(net *darknet.Network, file string) {
				defer wg.Done()
				defer pool.Return(net)

				if processFile(eng, net, file, params, logger) {
					processed.Add(1)
				}
			}(net, filepath.Join(*imgDir, file.Name()))
		}
	}

	wg.Wait()

	log.Printf("Processed %d images in %s\n", processed.Load(), time.Since(start).String())

	if err := pool.Close(); err != nil {
		logger.Error("error closing pool", zap.Error(err))
	}
}

// processFile runs detection on one image, returning false if it could not
// be processed
func processFile(eng *native.Engine, net *darknet.Network, file string,
	params darknet.PredictParams, logger *zap.Logger) bool {

	img, err := darknet.Open(eng, file)

	if err != nil {
		logger.Warn("skipping file", zap.String("file", file), zap.Error(err))
		return false
	}

	defer img.Close()

	start := time.Now()

	dets, err := net.Predict(img, params)

	if err != nil {
		logger.Error("prediction failed", zap.String("file", file), zap.Error(err))
		return false
	}

	exe := time.Since(start)

	for it := dets.Iter(); it.Remaining() > 0; {
		det, _ := it.Next()

		log.Printf("%dms - File[%s] %s (class %d): %8.6f\n", exe.Milliseconds(),
			filepath.Base(file), det.Label(), det.Class(), det.Probability())
	}

	return true
}
