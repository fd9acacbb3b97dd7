package overlay

import (
	"image"
	"image/color"
	"math"

	"dicom-measure/pkg/colorutil"
	"dicom-measure/pkg/geometry"
)

// drawThickLine draws a line with the given thickness by sweeping
// parallel Bresenham lines along the perpendicular.
func drawThickLine(img *image.RGBA, from, to geometry.Point2D, thickness int, c color.RGBA) {
	dx := to.X - from.X
	dy := to.Y - from.Y
	length := math.Sqrt(dx*dx + dy*dy)
	if length == 0 {
		setPixel(img, int(from.X), int(from.Y), c)
		return
	}

	// Perpendicular unit vector
	px := -dy / length
	py := dx / length

	halfThick := float64(thickness) / 2
	for t := -halfThick; t <= halfThick; t += 1.0 {
		drawLine(img,
			int(from.X+px*t), int(from.Y+py*t),
			int(to.X+px*t), int(to.Y+py*t), c)
	}
}

// drawLine draws a line using Bresenham's algorithm.
func drawLine(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	var sx, sy int
	if x1 < x2 {
		sx = 1
	} else {
		sx = -1
	}
	if y1 < y2 {
		sy = 1
	} else {
		sy = -1
	}

	err := dx - dy

	for {
		setPixel(img, x1, y1, c)

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// drawCircleOutline draws a circle outline using Bresenham's algorithm.
func drawCircleOutline(img *image.RGBA, center geometry.Point2D, r int, c color.RGBA) {
	cx, cy := int(center.X), int(center.Y)

	x := r
	y := 0
	err := 0

	for x >= y {
		setPixel(img, cx+x, cy+y, c)
		setPixel(img, cx+y, cy+x, c)
		setPixel(img, cx-y, cy+x, c)
		setPixel(img, cx-x, cy+y, c)
		setPixel(img, cx-x, cy-y, c)
		setPixel(img, cx-y, cy-x, c)
		setPixel(img, cx+y, cy-x, c)
		setPixel(img, cx+x, cy-y, c)

		y++
		if err <= 0 {
			err += 2*y + 1
		}
		if err > 0 {
			x--
			err -= 2*x + 1
		}
	}
}

// fillCircle fills a circle with the given color.
func fillCircle(img *image.RGBA, center geometry.Point2D, r int, c color.RGBA) {
	cx, cy := int(center.X), int(center.Y)

	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				setPixel(img, x, y, c)
			}
		}
	}
}

// fillPolygon fills a polygon by testing every pixel of its bounding box.
func fillPolygon(img *image.RGBA, polygon []geometry.Point2D, c color.RGBA) {
	if len(polygon) < 3 {
		return
	}

	box := geometry.BoundingBox(polygon)
	for y := int(box.Y); y <= int(box.Y+box.Height); y++ {
		for x := int(box.X); x <= int(box.X+box.Width); x++ {
			p := geometry.NewPoint2D(float64(x)+0.5, float64(y)+0.5)
			if geometry.PointInPolygon(p, polygon) {
				blendPixel(img, x, y, c)
			}
		}
	}
}

// drawRect draws a rectangle outline.
func drawRect(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	for x := x1; x <= x2; x++ {
		setPixel(img, x, y1, c)
		setPixel(img, x, y2, c)
	}
	for y := y1; y <= y2; y++ {
		setPixel(img, x1, y, c)
		setPixel(img, x2, y, c)
	}
}

// fillRect fills a rectangle.
func fillRect(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			setPixel(img, x, y, c)
		}
	}
}

func setPixel(img *image.RGBA, x, y int, c color.RGBA) {
	bounds := img.Bounds()
	if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
		img.SetRGBA(x, y, c)
	}
}

// blendPixel alpha-blends the color onto the existing pixel.
func blendPixel(img *image.RGBA, x, y int, c color.RGBA) {
	bounds := img.Bounds()
	if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
		return
	}
	img.SetRGBA(x, y, colorutil.Blend(img.RGBAAt(x, y), c))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
