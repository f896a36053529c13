/*
Example code showing how to build YOLOv2 training targets from label files.

Each label file holds the objects of one image, one per line as normalized
"x y w h class [class...]".  Files are processed in batches reusing the
target memory between batches.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/swdee/go-yolocore"
	"github.com/swdee/go-yolocore/assign"
	"github.com/swdee/go-yolocore/config"
)

var log = initLogger()

func initLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

func main() {

	// read in cli flags
	cfgFile := flag.String("c", "", "YAML configuration file, defaults are YOLOv2 Pascal VOC")
	batchSize := flag.Int("b", 8, "Number of label files per batch")
	outDir := flag.String("o", "", "Directory to write each batch target tensor to")
	verbose := flag.Bool("v", false, "Log every assigned anchor slot")

	flag.Parse()

	files := flag.Args()

	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] labels.txt [labels.txt...]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *batchSize < 1 {
		log.Fatal("Batch size must be at least 1")
	}

	cfg, err := config.Load(*cfgFile)

	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	params := cfg.AssignParams()
	params.Pool = assign.NewTargetPool()

	assigner, err := assign.NewAssigner(params)

	if err != nil {
		log.Fatal("Error creating assigner: ", err)
	}

	for start := 0; start < len(files); start += *batchSize {

		end := min(start+*batchSize, len(files))
		batchFiles := files[start:end]
		labels := make([][]assign.Label, len(batchFiles))

		for i, file := range batchFiles {
			labels[i], err = assign.ReadLabelFile(file)

			if err != nil {
				log.WithField("file", file).Fatal("Error reading labels: ", err)
			}
		}

		target, err := assigner.Assign(labels)

		if err != nil {
			log.WithField("batch", start / *batchSize).Fatal("Error assigning labels: ", err)
		}

		log.WithFields(logrus.Fields{
			"batch":   start / *batchSize,
			"images":  len(batchFiles),
			"objects": target.Objects(),
			"shape":   target.Shape(),
		}).Info("Assigned training targets")

		if *verbose {
			logSlots(target, batchFiles)
		}

		if *outDir != "" {
			outFile := filepath.Join(*outDir, fmt.Sprintf("target-%04d.bin", start / *batchSize))

			if err := yolocore.WriteTensorFile(outFile, target.Data); err != nil {
				log.Fatal("Error writing target: ", err)
			}
		}

		if err := params.Pool.Put(target); err != nil {
			log.Fatal("Error returning target to pool: ", err)
		}
	}

	log.Info("done")
}

// logSlots logs every anchor slot holding an object
func logSlots(t *assign.Target, files []string) {

	for b := 0; b < t.Batch; b++ {
		for i := 0; i < t.Height; i++ {
			for j := 0; j < t.Width; j++ {
				for a := 0; a < t.Anchors; a++ {

					slot := t.Slot(b, i, j, a)

					if slot[assign.ChannelObjectness] == 0 {
						continue
					}

					classes := make([]int, 0, 1)

					for c, v := range slot[assign.ChannelClassOffset:] {
						if v != 0 {
							classes = append(classes, c)
						}
					}

					log.WithFields(logrus.Fields{
						"file":    files[b],
						"cell":    fmt.Sprintf("%d,%d", i, j),
						"anchor":  a,
						"classes": classes,
					}).Infof("box %.4f %.4f %.4f %.4f", slot[assign.ChannelX],
						slot[assign.ChannelY], slot[assign.ChannelW], slot[assign.ChannelH])
				}
			}
		}
	}
}
