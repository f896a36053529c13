/*
Example code showing how to decode the head output of a YOLOv2 Model and
draw the detected objects on the source images.

The Model itself runs outside of this program.  Run it once with -t to write
the prepared input tensor, feed that tensor to the Model runtime, then run
again with -r pointing at the raw head output it produced.
*/
package main

import (
	"flag"
	"fmt"
	"image/color"
	"math/rand"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"github.com/swdee/go-yolocore"
	"github.com/swdee/go-yolocore/config"
	"github.com/swdee/go-yolocore/postprocess"
	"github.com/swdee/go-yolocore/preprocess"
	"github.com/swdee/go-yolocore/render"
	"gocv.io/x/gocv"
)

var log = initLogger()

func initLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// source is an image of the batch along with the letterbox resizer used to
// prepare it, if any
type source struct {
	file    string
	input   *preprocess.Input
	resizer *preprocess.Resizer
}

func main() {

	// read in cli flags
	cfgFile := flag.String("c", "", "YAML configuration file, defaults are YOLOv2 Pascal VOC")
	imgFiles := flag.String("i", "../data/dog.jpg", "Comma separated image files to run object detection on")
	tensorFile := flag.String("t", "", "Write the prepared batch input tensor to this file")
	headFile := flag.String("r", "", "Raw head output of the Model for the batch")
	outDir := flag.String("o", ".", "Directory to save the annotated images in")
	letterbox := flag.Bool("letterbox", false, "Letterbox resize images with gocv, keeping their aspect ratio")

	flag.Parse()

	cfg, err := config.Load(*cfgFile)

	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	files := strings.Split(*imgFiles, ",")
	shape := cfg.InputShape()
	batch := preprocess.NewBatch(len(files), shape)
	sources := make([]source, len(files))

	for i, file := range files {

		src, err := loadSource(file, shape, *letterbox)

		if err != nil {
			log.WithField("file", file).Fatal("Error preparing image: ", err)
		}

		if src.resizer != nil {
			defer src.resizer.Close()
		}

		if err := batch.Add(src.input); err != nil {
			log.Fatal("Error adding image to batch: ", err)
		}

		sources[i] = src
	}

	if *tensorFile != "" {
		if err := yolocore.WriteTensorFile(*tensorFile, batch.Tensor().Data().([]float32)); err != nil {
			log.Fatal("Error writing input tensor: ", err)
		}

		log.WithField("shape", batch.Tensor().Shape()).Info("Wrote input tensor to ", *tensorFile)
	}

	if *headFile == "" {
		return
	}

	output, err := yolocore.ReadTensorFile(*headFile, cfg.Detect.Half)

	if err != nil {
		log.Fatal("Error reading head output: ", err)
	}

	classNames, err := yolocore.LoadClassNames(cfg.Render.LabelsFile)

	if err != nil {
		log.Fatal("Error loading class names: ", err)
	}

	if err := checkClassNames(classNames, cfg.Model.NumClasses); err != nil {
		log.WithField("file", cfg.Render.LabelsFile).Fatal(err)
	}

	colors := render.GenerateColors(len(classNames), rand.New(rand.NewSource(cfg.Render.ColorSeed)))
	yolo := postprocess.NewYOLOv2(cfg.YOLOv2Params())

	for i, src := range sources {

		out, err := batch.OutputAt(i, output, yolo.OutputLen())

		if err != nil {
			log.Fatal("Error getting head output: ", err)
		}

		results, err := detect(yolo, src, out, shape)

		if err != nil {
			log.WithField("file", src.file).Fatal("Error detecting objects: ", err)
		}

		for _, res := range results {
			log.WithFields(logrus.Fields{
				"file":  src.file,
				"class": classNames[res.Class],
				"score": fmt.Sprintf("%.3f", res.Probability),
			}).Infof("(%d %d %d %d)", res.Box.Left, res.Box.Top, res.Box.Right, res.Box.Bottom)
		}

		outFile := filepath.Join(*outDir, "out-"+filepath.Base(src.file))

		if err := annotate(src, results, classNames, cfg.Render.FontFile, colors, outFile); err != nil {
			log.WithField("file", src.file).Fatal("Error rendering detections: ", err)
		}

		log.WithField("objects", len(results)).Info("Saved ", outFile)
	}

	log.Info("done")
}

// checkClassNames makes sure every class the Model can output has a name
func checkClassNames(names []string, numClasses int) error {

	if len(names) < numClasses {
		return fmt.Errorf("labels file has %d class names, the Model has %d classes",
			len(names), numClasses)
	}

	return nil
}

// loadSource prepares an image file for the batch
func loadSource(file string, shape preprocess.Shape, letterbox bool) (source, error) {

	if !letterbox {
		in, err := preprocess.LoadImage(file, shape)
		return source{file: file, input: in}, err
	}

	mat := gocv.IMRead(file, gocv.IMReadColor)

	if mat.Empty() {
		return source{}, fmt.Errorf("error reading image from: %s", file)
	}

	defer mat.Close()

	resizer := preprocess.NewResizer(mat.Cols(), mat.Rows(), shape.Width, shape.Height)

	t, err := resizer.Tensor(mat, render.Black)

	if err != nil {
		resizer.Close()
		return source{}, err
	}

	img, err := mat.ToImage()

	if err != nil {
		resizer.Close()
		return source{}, fmt.Errorf("error converting Mat to image: %w", err)
	}

	return source{
		file: file,
		input: &preprocess.Input{
			Original: img,
			Tensor:   t,
			Width:    mat.Cols(),
			Height:   mat.Rows(),
		},
		resizer: resizer,
	}, nil
}

// detect decodes the head output of one image into source image pixels
func detect(yolo *postprocess.YOLOv2, src source, out []float32,
	shape preprocess.Shape) ([]postprocess.DetectResult, error) {

	if src.resizer == nil {
		return yolo.DetectObjects(out, src.input.Width, src.input.Height)
	}

	// letterboxed images are decoded in Model input pixels then mapped back
	set, err := yolo.Decode(out, shape.Width, shape.Height)

	if err != nil {
		return nil, err
	}

	scaled := &postprocess.DetectionSet{}

	for i, box := range set.Boxes {
		box = src.resizer.ScaleBox(box)

		if box.Valid() {
			scaled.Add(box, set.Scores[i], set.Classes[i])
		}
	}

	if scaled.Len() == 0 {
		return nil, nil
	}

	kept, err := yolo.Suppress(scaled)

	if err != nil {
		return nil, err
	}

	return postprocess.Collate(kept), nil
}

// annotate draws the results onto a copy of the source image and saves it
func annotate(src source, results []postprocess.DetectResult, classNames []string,
	fontFile string, colors []color.RGBA, outFile string) error {

	canvas := imaging.Clone(src.input.Original)

	f, err := render.LoadFont(fontFile, canvas.Bounds().Dy())

	if err != nil {
		return err
	}

	defer f.Close()

	if err := render.Detections(canvas, results, classNames, colors, f); err != nil {
		return err
	}

	return imaging.Save(canvas, outFile)
}
