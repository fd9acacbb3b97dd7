package viewer

import (
	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"dicom-measure/pkg/geometry"
)

// tappableContent wraps the raster to handle mouse events.
type tappableContent struct {
	widget.BaseWidget
	canvas *AnnotationCanvas
	raster *fynecanvas.Raster
}

func newTappableContent(ac *AnnotationCanvas, raster *fynecanvas.Raster) *tappableContent {
	tc := &tappableContent{
		canvas: ac,
		raster: raster,
	}
	tc.ExtendBaseWidget(tc)
	return tc
}

func (tc *tappableContent) CreateRenderer() fyne.WidgetRenderer {
	return &tappableContentRenderer{content: tc}
}

func (tc *tappableContent) MinSize() fyne.Size {
	return tc.raster.MinSize()
}

// eventToImage converts an event position to image coordinates.
func (tc *tappableContent) eventToImage(pos fyne.Position) (geometry.Point2D, bool) {
	// Reject clicks outside widget bounds; Fyne occasionally delivers
	// events past the edge of the content.
	size := tc.Size()
	if pos.X < 0 || pos.Y < 0 || pos.X > size.Width || pos.Y > size.Height {
		return geometry.Point2D{}, false
	}

	offset := tc.canvas.scroll.Offset
	canvasPos := geometry.NewPoint2D(
		float64(pos.X+offset.X),
		float64(pos.Y+offset.Y))
	return tc.canvas.canvasToImage(canvasPos), true
}

// Tapped handles left-click events.
func (tc *tappableContent) Tapped(ev *fyne.PointEvent) {
	if imgPos, ok := tc.eventToImage(ev.Position); ok {
		tc.canvas.handleTap(imgPos)
	}
}

// TappedSecondary handles right-click events.
func (tc *tappableContent) TappedSecondary(ev *fyne.PointEvent) {
	if imgPos, ok := tc.eventToImage(ev.Position); ok {
		tc.canvas.handleSecondaryTap(imgPos)
	}
}

// Dragged moves the selected point handle under the select tool.
func (tc *tappableContent) Dragged(ev *fyne.DragEvent) {
	if imgPos, ok := tc.eventToImage(ev.Position); ok {
		tc.canvas.handleDrag(imgPos)
	}
}

func (tc *tappableContent) DragEnd() {
	tc.canvas.handleDragEnd()
}

// Scrolled uses the mouse wheel for zooming.
func (tc *tappableContent) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		tc.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		tc.canvas.ZoomOut()
	}
}

type tappableContentRenderer struct {
	content *tappableContent
}

func (r *tappableContentRenderer) Layout(size fyne.Size) {
	r.content.raster.Resize(size)
}

func (r *tappableContentRenderer) MinSize() fyne.Size {
	return r.content.raster.MinSize()
}

func (r *tappableContentRenderer) Refresh() {
	r.content.raster.Refresh()
}

func (r *tappableContentRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.content.raster}
}

func (r *tappableContentRenderer) Destroy() {}
