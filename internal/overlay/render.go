// Package overlay renders measurement annotations onto an RGBA image.
// The output is a transparent layer sized to the base image, suitable
// for compositing in the viewer or exporting alongside it.
package overlay

import (
	"image"
	"image/color"

	"dicom-measure/internal/measure"
	"dicom-measure/pkg/colorutil"
	"dicom-measure/pkg/geometry"
)

// Options configures how measurements are rendered.
type Options struct {
	LineWidth      int  // Line thickness in pixels
	HandleRadius   int  // Radius of point handle markers
	SelectionWidth int  // Width of the selection highlight box
	FillAreas      bool // Whether to fill area polygons translucently
	DrawLabels     bool // Whether to draw value labels
}

// DefaultOptions returns default rendering options.
func DefaultOptions() Options {
	return Options{
		LineWidth:      2,
		HandleRadius:   4,
		SelectionWidth: 2,
		FillAreas:      true,
		DrawLabels:     true,
	}
}

// Per-kind display colors.
var kindColors = map[measure.Kind]color.RGBA{
	measure.KindDistance: colorutil.Cyan,
	measure.KindAngle:    colorutil.Orange,
	measure.KindCircle:   colorutil.Magenta,
	measure.KindArea:     colorutil.Green,
}

// SelectionColor highlights selected measurements.
var SelectionColor = colorutil.Yellow

// Render produces an RGBA overlay of all measurements in the manager,
// in manager order, with labels computed under the manager's calibration.
func Render(mgr *measure.Manager, width, height int, opts Options) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for _, m := range mgr.Measurements() {
		renderMeasurement(img, m, mgr.Calibration(), opts)
	}

	return img
}

func renderMeasurement(img *image.RGBA, m measure.Measurement, cal measure.Calibration, opts Options) {
	c := kindColors[m.Kind]
	if m.Selected {
		c = SelectionColor
	}

	switch m.Kind {
	case measure.KindDistance:
		drawThickLine(img, m.Points[0], m.Points[1], opts.LineWidth, c)
	case measure.KindAngle:
		drawThickLine(img, m.Points[0], m.Points[1], opts.LineWidth, c)
		drawThickLine(img, m.Points[0], m.Points[2], opts.LineWidth, c)
	case measure.KindCircle:
		radius := m.Points[0].Distance(m.Points[1])
		drawCircleOutline(img, m.Points[0], int(radius+0.5), c)
		drawThickLine(img, m.Points[0], m.Points[1], 1, colorutil.Darken(c, 0.4))
	case measure.KindArea:
		if opts.FillAreas {
			fillPolygon(img, m.Points, colorutil.WithAlpha(c, 60))
		}
		n := len(m.Points)
		for i := 0; i < n; i++ {
			drawThickLine(img, m.Points[i], m.Points[(i+1)%n], opts.LineWidth, c)
		}
	}

	drawHandles(img, m, c, opts)

	if m.Selected && opts.SelectionWidth > 0 {
		drawSelectionBox(img, m, opts)
	}

	if opts.DrawLabels {
		res := m.Compute(cal)
		anchor := labelAnchor(m)
		drawLabel(img, labelText(m, res), int(anchor.X), int(anchor.Y), c)
	}
}

// drawHandles draws the point markers; the selected point gets a larger
// hollow ring so the drag target is visible.
func drawHandles(img *image.RGBA, m measure.Measurement, c color.RGBA, opts Options) {
	for i, p := range m.Points {
		r := opts.HandleRadius
		fillCircle(img, p, r-1, c)
		drawCircleOutline(img, p, r, colorutil.Darken(c, 0.3))

		if m.SelectedPoint != nil && *m.SelectedPoint == i {
			drawCircleOutline(img, p, r+2, SelectionColor)
		}
	}
}

func drawSelectionBox(img *image.RGBA, m measure.Measurement, opts Options) {
	box := geometry.BoundingBox(m.Points).Grow(float64(opts.HandleRadius + 3))
	for w := 0; w < opts.SelectionWidth; w++ {
		drawRect(img,
			int(box.X)+w, int(box.Y)+w,
			int(box.X+box.Width)-w, int(box.Y+box.Height)-w,
			SelectionColor)
	}
}

// labelAnchor picks where the value label is drawn: segment midpoint for
// distances, vertex for angles, above center for circles, centroid for
// areas.
func labelAnchor(m measure.Measurement) geometry.Point2D {
	switch m.Kind {
	case measure.KindDistance:
		mid := geometry.Centroid(m.Points)
		return mid.Add(geometry.NewPoint2D(0, -10))
	case measure.KindAngle:
		return m.Points[0].Add(geometry.NewPoint2D(8, -8))
	case measure.KindCircle:
		radius := m.Points[0].Distance(m.Points[1])
		return m.Points[0].Add(geometry.NewPoint2D(0, -radius-10))
	default:
		return geometry.Centroid(m.Points)
	}
}

func labelText(m measure.Measurement, res measure.Result) string {
	text := res.DisplayText
	if m.Kind == measure.KindCircle {
		text = "R: " + text
	}
	if m.Label != "" {
		text = m.Label + ": " + text
	}
	return text
}
