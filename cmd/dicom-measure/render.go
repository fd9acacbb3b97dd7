package main

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"

	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/spf13/cobra"

	"dicom-measure/internal/annotation"
	"dicom-measure/internal/overlay"
)

var (
	renderOutput  string
	renderNoFill  bool
	renderNoLabel bool
)

var renderCmd = &cobra.Command{
	Use:   "render [annotations] [image]",
	Short: "Render annotations onto an image",
	Long:  "Composite the measurement overlay onto a base image and write the result as PNG.",
	Args:  cobra.ExactArgs(2),
	Run:   runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "annotated.png", "output PNG path")
	renderCmd.Flags().BoolVar(&renderNoFill, "no-fill", false, "draw area outlines without fill")
	renderCmd.Flags().BoolVar(&renderNoLabel, "no-labels", false, "skip value labels")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) {
	doc, err := annotation.Load(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading annotations: %v\n", err)
		os.Exit(1)
	}

	base, err := loadImage(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading image: %v\n", err)
		os.Exit(1)
	}

	opts := overlay.DefaultOptions()
	opts.FillAreas = !renderNoFill
	opts.DrawLabels = !renderNoLabel

	bounds := base.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, base, bounds.Min, draw.Src)

	layer := overlay.Render(doc.State, bounds.Dx(), bounds.Dy(), opts)
	draw.Draw(out, bounds, layer, image.Point{}, draw.Over)

	if err := writePNG(renderOutput, out); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%d measurement(s))\n", renderOutput, doc.State.Len())
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

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, img)
}
