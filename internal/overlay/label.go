package overlay

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const labelPadding = 3

var labelBackground = color.RGBA{20, 20, 20, 220}

// drawLabel draws text centered at (x, y) over a dark background box.
func drawLabel(img *image.RGBA, text string, x, y int, c color.RGBA) {
	if text == "" {
		return
	}

	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	height := face.Metrics().Height.Ceil()
	ascent := face.Metrics().Ascent.Ceil()

	left := x - width/2
	top := y - height/2

	fillRect(img,
		left-labelPadding, top-labelPadding,
		left+width+labelPadding, top+height+labelPadding,
		labelBackground)

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(left, top+ascent),
	}
	d.DrawString(text)
}
