package overlay

import (
	"image"
	"image/color"

	"dicom-measure/internal/measure"
	"dicom-measure/pkg/colorutil"
	"dicom-measure/pkg/geometry"
)

// KindColor returns the display color for a measurement kind.
func KindColor(kind measure.Kind) color.RGBA {
	return kindColors[kind]
}

// DrawPending draws in-progress placement points, connected by thin
// translucent lines so the eventual shape is visible before it commits.
func DrawPending(img *image.RGBA, points []geometry.Point2D, c color.RGBA) {
	for i, p := range points {
		if i > 0 {
			drawThickLine(img, points[i-1], p, 1, colorutil.WithAlpha(c, 180))
		}
		fillCircle(img, p, 3, c)
	}
}
