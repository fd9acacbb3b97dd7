// Package main provides the entry point for the DICOM Measure viewer.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"os"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"fyne.io/fyne/v2/app"

	"dicom-measure/internal/annotation"
	dcm "dicom-measure/internal/dicom"
	"dicom-measure/internal/measure"
	"dicom-measure/internal/version"
	"dicom-measure/ui/prefs"
	"dicom-measure/ui/viewer"
)

const appTitle = "DICOM Measure"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	dicomPath := flag.String("dicom", "", "DICOM file providing pixel spacing calibration")
	annotPath := flag.String("annotations", "", "annotation file to load and save")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <image>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	imagePath := flag.Arg(0)

	log.Printf("Starting %s v%s", appTitle, version.String())

	base, err := loadImage(imagePath)
	if err != nil {
		log.Fatalf("Failed to load image %s: %v", imagePath, err)
	}

	cal := measure.Calibration{}
	if *dicomPath != "" {
		md, err := dcm.ReadFile(*dicomPath)
		if err != nil {
			log.Fatalf("Failed to read DICOM file %s: %v", *dicomPath, err)
		}
		cal = md.Calibration()
		if cal.Calibrated() {
			log.Printf("Pixel spacing %v %s from %s", cal.PixelSpacing, cal.UnitsOrDefault(), *dicomPath)
		} else {
			log.Printf("No pixel spacing in %s, measuring in pixels", *dicomPath)
		}
	}

	doc, err := loadDocument(*annotPath, cal)
	if err != nil {
		log.Fatalf("Failed to load annotations %s: %v", *annotPath, err)
	}
	doc.ImagePath = imagePath
	doc.DicomPath = *dicomPath

	a := app.New()
	win := viewer.NewWindow(a, base, doc, *annotPath, prefs.Load())
	win.Show()
	a.Run()
}

// loadDocument opens an existing annotation file or starts a fresh
// document. A stored document keeps its own calibration.
func loadDocument(path string, cal measure.Calibration) (*annotation.Document, error) {
	if path != "" {
		doc, err := annotation.Load(path)
		if err == nil {
			log.Printf("Loaded %d measurement(s) from %s", doc.State.Len(), path)
			return doc, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	return annotation.New(measure.NewManager(cal)), nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}
