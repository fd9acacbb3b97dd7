// Package viewer provides the interactive measurement canvas and window.
package viewer

import (
	"image"
	"image/color"

	"github.com/google/uuid"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"dicom-measure/internal/measure"
	"dicom-measure/internal/overlay"
	"dicom-measure/pkg/geometry"
)

const (
	minZoom  = 0.1
	maxZoom  = 10.0
	zoomStep = 1.25

	// hitRadius is the point-handle hit tolerance in image pixels.
	hitRadius = 8.0
)

// Tool represents the current interaction tool.
type Tool int

const (
	ToolPan Tool = iota
	ToolSelect
	ToolDistance
	ToolAngle
	ToolCircle
	ToolArea
)

// pointsNeeded returns how many clicks complete a measurement for the
// tool, or 0 for tools that do not place points. Area is open-ended and
// committed explicitly.
func (t Tool) pointsNeeded() int {
	switch t {
	case ToolDistance, ToolCircle:
		return 2
	case ToolAngle:
		return 3
	default:
		return 0
	}
}

// toolColor returns the pending-point color for a placement tool.
func toolColor(t Tool) color.RGBA {
	switch t {
	case ToolDistance:
		return overlay.KindColor(measure.KindDistance)
	case ToolAngle:
		return overlay.KindColor(measure.KindAngle)
	case ToolCircle:
		return overlay.KindColor(measure.KindCircle)
	case ToolArea:
		return overlay.KindColor(measure.KindArea)
	default:
		return color.RGBA{255, 255, 255, 255}
	}
}

// AnnotationCanvas displays a base image with the measurement overlay
// and turns clicks into measurement edits.
type AnnotationCanvas struct {
	widget.BaseWidget

	base    image.Image
	manager *measure.Manager
	factory measure.Factory

	// Display state
	raster *fynecanvas.Raster
	zoom   float64
	opts   overlay.Options

	// Interaction state
	tool    Tool
	pending []geometry.Point2D

	// Point being dragged (select tool)
	dragID    string
	dragPoint int
	dragging  bool

	// Container
	scroll  *container.Scroll
	content *tappableContent
	imgSize fyne.Size

	// Called after any measurement change.
	onChange func()
}

// NewAnnotationCanvas creates a canvas over the given base image and
// measurement manager.
func NewAnnotationCanvas(base image.Image, manager *measure.Manager) *AnnotationCanvas {
	ac := &AnnotationCanvas{
		base:    base,
		manager: manager,
		zoom:    1.0,
		opts:    overlay.DefaultOptions(),
		tool:    ToolPan,
		imgSize: fyne.NewSize(400, 300),
	}

	ac.raster = fynecanvas.NewRaster(ac.draw)
	ac.raster.ScaleMode = fynecanvas.ImageScalePixels

	ac.content = newTappableContent(ac, ac.raster)
	ac.scroll = container.NewScroll(ac.content)
	ac.scroll.Direction = container.ScrollBoth

	ac.ExtendBaseWidget(ac)
	ac.updateContentSize()
	return ac
}

// CreateRenderer implements fyne.Widget.
func (ac *AnnotationCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(ac.scroll)
}

// Container returns the canvas container for embedding in layouts.
func (ac *AnnotationCanvas) Container() fyne.CanvasObject {
	return ac.scroll
}

// Manager returns the measurement manager the canvas edits.
func (ac *AnnotationCanvas) Manager() *measure.Manager {
	return ac.manager
}

// SetTool sets the current interaction tool and abandons any point
// accumulation in progress.
func (ac *AnnotationCanvas) SetTool(tool Tool) {
	ac.tool = tool
	ac.pending = nil
	ac.Refresh()
}

// OnChange sets a callback invoked after any measurement change.
func (ac *AnnotationCanvas) OnChange(callback func()) {
	ac.onChange = callback
}

// Options returns the current rendering options.
func (ac *AnnotationCanvas) Options() overlay.Options {
	return ac.opts
}

// SetOptions replaces the rendering options.
func (ac *AnnotationCanvas) SetOptions(opts overlay.Options) {
	ac.opts = opts
	ac.Refresh()
}

// Zoom returns the current zoom level.
func (ac *AnnotationCanvas) Zoom() float64 {
	return ac.zoom
}

// SetZoom sets the zoom level, clamped to the allowed range.
func (ac *AnnotationCanvas) SetZoom(zoom float64) {
	if zoom < minZoom {
		zoom = minZoom
	}
	if zoom > maxZoom {
		zoom = maxZoom
	}
	ac.zoom = zoom
	ac.updateContentSize()
}

// ZoomIn increases the zoom level.
func (ac *AnnotationCanvas) ZoomIn() { ac.SetZoom(ac.zoom * zoomStep) }

// ZoomOut decreases the zoom level.
func (ac *AnnotationCanvas) ZoomOut() { ac.SetZoom(ac.zoom / zoomStep) }

// Refresh refreshes the canvas display.
func (ac *AnnotationCanvas) Refresh() {
	ac.raster.Refresh()
}

// canvasToImage maps canvas (zoomed) coordinates to image coordinates.
func (ac *AnnotationCanvas) canvasToImage(p geometry.Point2D) geometry.Point2D {
	inv, ok := geometry.Scale(ac.zoom, ac.zoom).Inverse()
	if !ok {
		return p
	}
	return inv.Apply(p)
}

// handleTap places a measurement point or performs a selection hit-test,
// depending on the active tool.
func (ac *AnnotationCanvas) handleTap(imgPos geometry.Point2D) {
	switch ac.tool {
	case ToolSelect:
		ac.selectAt(imgPos)
	case ToolDistance, ToolAngle, ToolCircle, ToolArea:
		ac.placePoint(imgPos)
	}
}

// handleSecondaryTap commits an in-progress area measurement.
func (ac *AnnotationCanvas) handleSecondaryTap(imgPos geometry.Point2D) {
	if ac.tool != ToolArea || len(ac.pending) < measure.KindArea.MinPoints() {
		return
	}
	ac.commit(ac.factory.Area(uuid.NewString(), ac.pending))
}

func (ac *AnnotationCanvas) placePoint(imgPos geometry.Point2D) {
	ac.pending = append(ac.pending, imgPos)

	if need := ac.tool.pointsNeeded(); need > 0 && len(ac.pending) == need {
		id := uuid.NewString()
		p := ac.pending
		switch ac.tool {
		case ToolDistance:
			ac.commit(ac.factory.Distance(id, p[0], p[1]))
		case ToolCircle:
			ac.commit(ac.factory.Circle(id, p[0], p[1]))
		case ToolAngle:
			ac.commit(ac.factory.Angle(id, p[0], p[1], p[2]))
		}
		return
	}
	ac.Refresh()
}

func (ac *AnnotationCanvas) commit(m measure.Measurement) {
	ac.manager.Add(m)
	ac.pending = nil
	ac.notifyChange()
}

// selectAt selects the measurement under the position, preferring point
// handles and falling back to area interiors. Clicking empty space
// clears the selection.
func (ac *AnnotationCanvas) selectAt(imgPos geometry.Point2D) {
	ac.clearSelection()

	if m, idx, ok := ac.manager.HitTest(imgPos, hitRadius); ok {
		ac.manager.Update(m.WithSelected(true).WithSelectedPoint(&idx))
		ac.dragID = m.ID
		ac.dragPoint = idx
		ac.notifyChange()
		return
	}

	for _, m := range ac.manager.Measurements() {
		if m.Contains(imgPos) {
			ac.manager.Update(m.WithSelected(true))
			ac.notifyChange()
			return
		}
	}
	ac.notifyChange()
}

func (ac *AnnotationCanvas) clearSelection() {
	ac.dragID = ""
	ac.dragging = false
	for _, m := range ac.manager.Measurements() {
		if m.Selected {
			ac.manager.Update(m.WithSelected(false))
		}
	}
}

// handleDrag moves the selected point handle.
func (ac *AnnotationCanvas) handleDrag(imgPos geometry.Point2D) {
	if ac.tool != ToolSelect || ac.dragID == "" {
		return
	}
	m, ok := ac.manager.Get(ac.dragID)
	if !ok {
		return
	}
	ac.dragging = true
	ac.manager.Update(m.UpdatePoint(ac.dragPoint, imgPos))
	ac.notifyChange()
}

func (ac *AnnotationCanvas) handleDragEnd() {
	ac.dragging = false
}

func (ac *AnnotationCanvas) notifyChange() {
	if ac.onChange != nil {
		ac.onChange()
	}
	ac.Refresh()
}

// updateContentSize updates the content size based on image and zoom.
func (ac *AnnotationCanvas) updateContentSize() {
	bounds := ac.baseBounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		ac.imgSize = fyne.NewSize(400, 300)
	} else {
		ac.imgSize = fyne.NewSize(
			float32(float64(bounds.Dx())*ac.zoom),
			float32(float64(bounds.Dy())*ac.zoom))
	}

	ac.raster.SetMinSize(ac.imgSize)
	ac.raster.Resize(ac.imgSize)
	if ac.content != nil {
		ac.content.Resize(ac.imgSize)
		ac.content.Refresh()
	}
	ac.raster.Refresh()
	if ac.scroll != nil {
		ac.scroll.Refresh()
	}
}

func (ac *AnnotationCanvas) baseBounds() image.Rectangle {
	if ac.base == nil {
		return image.Rect(0, 0, 0, 0)
	}
	return ac.base.Bounds()
}

// draw is the raster drawing function: base image, measurement overlay,
// then in-progress point markers.
func (ac *AnnotationCanvas) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))

	// Opaque black background
	for i := 3; i < len(output.Pix); i += 4 {
		output.Pix[i] = 255
	}

	bounds := ac.baseBounds()
	var annotated *image.RGBA
	if bounds.Dx() > 0 && bounds.Dy() > 0 {
		annotated = overlay.Render(ac.manager, bounds.Dx(), bounds.Dy(), ac.opts)
		overlay.DrawPending(annotated, ac.pending, toolColor(ac.tool))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// Nearest-neighbor sample at the current zoom.
			srcX := int(float64(x) / ac.zoom)
			srcY := int(float64(y) / ac.zoom)
			if srcX < bounds.Min.X || srcX >= bounds.Max.X ||
				srcY < bounds.Min.Y || srcY >= bounds.Max.Y {
				continue
			}

			output.Set(x, y, ac.base.At(srcX, srcY))

			if annotated != nil {
				if over := annotated.RGBAAt(srcX-bounds.Min.X, srcY-bounds.Min.Y); over.A > 0 {
					output.Set(x, y, over)
				}
			}
		}
	}

	return output
}
