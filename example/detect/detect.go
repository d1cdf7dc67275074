// Example detect runs a darknet model on a single image, prints the
// detections and writes an annotated copy of the image
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/swdee/go-darknet"
	"github.com/swdee/go-darknet/config"
	"github.com/swdee/go-darknet/engine/native"
	"github.com/swdee/go-darknet/preprocess"
	"github.com/swdee/go-darknet/render"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	cfgFile := flag.String("config", "", "Optional YAML configuration file, flags below override it")
	modelCfg := flag.String("c", "../data/yolov4-tiny.cfg", "darknet network cfg file")
	weights := flag.String("w", "../data/yolov4-tiny.weights", "darknet weights file")
	labelFile := flag.String("l", "../data/coco.names", "Text file containing model labels")
	imgFile := flag.String("i", "../data/dog.jpg", "Image file to run object detection on")
	outDir := flag.String("o", "", "Directory to save the annotated image and crops to")
	useMat := flag.Bool("mat", false, "Decode and letterbox with OpenCV instead of darknet")

	flag.Parse()

	cfg, err := loadConfig(*cfgFile)

	if err != nil {
		log.Fatalf("Error loading config: %v\n", err)
	}

	// explicitly set flags take priority over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "c":
			cfg.Model.Cfg = *modelCfg
		case "w":
			cfg.Model.Weights = *weights
		case "l":
			cfg.Model.Labels = *labelFile
		case "o":
			cfg.Output.Dir = *outDir
		}
	})

	if *cfgFile == "" {
		cfg.Model.Cfg, cfg.Model.Weights, cfg.Model.Labels = *modelCfg, *weights, *labelFile
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v\n", err)
	}

	logger, err := config.NewLogger(cfg.Log)

	if err != nil {
		log.Fatalf("Error creating logger: %v\n", err)
	}

	defer logger.Sync()

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

	net, err := darknet.Load(eng, cfg.Model.Cfg, cfg.Model.Weights, false, opts...)

	if err != nil {
		logger.Fatal("error loading network", zap.Error(err))
	}

	defer net.Close()

	// load image
	var img *darknet.Image

	if *useMat {
		img, err = openMat(eng, *imgFile, net, cfg)
	} else {
		img, err = darknet.Open(eng, *imgFile)
	}

	if err != nil {
		logger.Fatal("error opening image", zap.String("file", *imgFile), zap.Error(err))
	}

	defer img.Close()

	start := time.Now()

	dets, err := net.Predict(img, cfg.PredictParams())

	if err != nil {
		logger.Fatal("prediction failed", zap.Error(err))
	}

	log.Printf("Model first run speed: predict=%s, detections=%d\n",
		time.Since(start).String(), dets.Len())

	for it := dets.Iter(); it.Remaining() > 0; {
		det, _ := it.Next()
		r := det.Rect(img.Width(), img.Height())

		log.Printf("%s @ (%d %d %d %d) %f\n", label(det), r.Left, r.Top, r.Right,
			r.Bottom, det.Probability())
	}

	if cfg.Output.Dir == "" {
		return
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		logger.Fatal("error creating output directory", zap.Error(err))
	}

	if err := annotate(img, dets, *imgFile, cfg.Output.Dir); err != nil {
		logger.Fatal("error saving annotated image", zap.Error(err))
	}

	if cfg.Output.SaveCrops {
		if err := saveCrops(img, dets, cfg.Output.Dir); err != nil {
			logger.Fatal("error saving crops", zap.Error(err))
		}
	}
}

// loadConfig reads the config file or returns the defaults when none is set
func loadConfig(path string) (*config.Config, error) {

	if path == "" {
		cfg := config.Default()
		return &cfg, nil
	}

	return config.Load(path)
}

// openMat reads the image with OpenCV.  When letterboxing, the frame is
// scaled to the network size here and the boxes come back relative to the
// letterboxed frame
func openMat(eng *native.Engine, file string, net *darknet.Network, cfg *config.Config) (*darknet.Image, error) {

	mat := gocv.IMRead(file, gocv.IMReadColor)
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("%w: gocv could not read %s", darknet.ErrImageDecode, file)
	}

	if !cfg.Predict.LetterBox {
		return preprocess.FromMat(eng, mat)
	}

	resizer := preprocess.NewResizer(mat.Cols(), mat.Rows(), net.Width(), net.Height())
	defer resizer.Close()

	boxed := gocv.NewMat()
	defer boxed.Close()

	resizer.LetterBoxResize(mat, &boxed, preprocess.LetterBoxGray)

	return preprocess.FromMat(eng, boxed)
}

// annotate draws the detection boxes onto the image and saves it
func annotate(img *darknet.Image, dets *darknet.Detections, file, dir string) error {

	mat, err := preprocess.ToMat(img)

	if err != nil {
		return err
	}

	defer mat.Close()

	font := render.DefaultFont().Scaled(img.Width())
	render.DetectionBoxes(&mat, dets.Results(img.Width(), img.Height()), font, 2)

	ext := filepath.Ext(file)
	out := filepath.Join(dir, strings.TrimSuffix(filepath.Base(file), ext)+"-out"+ext)

	if ok := gocv.IMWrite(out, mat); !ok {
		return fmt.Errorf("failed to write %s", out)
	}

	log.Printf("Saved object detection result to %s\n", out)

	return nil
}

// saveCrops writes each detected region as its own image file
func saveCrops(img *darknet.Image, dets *darknet.Detections, dir string) error {

	for i := 0; i < dets.Len(); i++ {
		det, _ := dets.Get(i)

		crop := det.Crop(img)
		goImg, err := crop.ToGo(darknet.RGB)
		crop.Close()

		if err != nil {
			return err
		}

		name := filepath.Join(dir, fmt.Sprintf("crop-%d-%s.png", det.ID(), label(det)))

		if err := imaging.Save(goImg, name); err != nil {
			return err
		}
	}

	return nil
}

// label returns the class name, or the class index without labels
func label(det darknet.Detection) string {

	if l := det.Label(); l != "" {
		return l
	}

	return fmt.Sprintf("class%d", det.Class())
}
