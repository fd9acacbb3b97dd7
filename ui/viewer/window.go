package viewer

import (
	"fmt"
	"image"
	"log"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"dicom-measure/internal/annotation"
	"dicom-measure/ui/prefs"
)

// Window wires the annotation canvas, tool buttons, and results panel
// into a viewer window.
type Window struct {
	win     fyne.Window
	canvas  *AnnotationCanvas
	doc     *annotation.Document
	docPath string
	prefs   *prefs.Prefs

	results *widget.Label
	status  *widget.Label
}

// NewWindow creates the viewer window. docPath may be empty, in which
// case saving is disabled.
func NewWindow(app fyne.App, base image.Image, doc *annotation.Document, docPath string, p *prefs.Prefs) *Window {
	w := &Window{
		win:     app.NewWindow("DICOM Measure"),
		canvas:  NewAnnotationCanvas(base, doc.State),
		doc:     doc,
		docPath: docPath,
		prefs:   p,
		results: widget.NewLabel(""),
		status:  widget.NewLabel("Ready"),
	}
	w.results.Wrapping = fyne.TextWrapWord

	w.applyPrefs()
	w.canvas.OnChange(w.refreshResults)
	w.refreshResults()

	w.win.SetContent(container.NewBorder(
		w.buildToolbar(), w.status, nil, w.buildResultsPanel(),
		w.canvas.Container()))
	w.win.Resize(fyne.NewSize(
		float32(p.Float(prefs.KeyWindowW, 1100)),
		float32(p.Float(prefs.KeyWindowH, 750))))
	w.win.SetCloseIntercept(func() {
		w.savePrefs()
		w.win.Close()
	})
	return w
}

func (w *Window) applyPrefs() {
	w.canvas.SetZoom(w.prefs.Float(prefs.KeyZoom, 1.0))

	opts := w.canvas.Options()
	opts.FillAreas = w.prefs.Bool(prefs.KeyFillAreas, opts.FillAreas)
	opts.DrawLabels = w.prefs.Bool(prefs.KeyDrawLabels, opts.DrawLabels)
	w.canvas.SetOptions(opts)
}

func (w *Window) savePrefs() {
	w.prefs.SetFloat(prefs.KeyZoom, w.canvas.Zoom())
	w.prefs.SetBool(prefs.KeyFillAreas, w.canvas.Options().FillAreas)
	w.prefs.SetBool(prefs.KeyDrawLabels, w.canvas.Options().DrawLabels)
	size := w.win.Canvas().Size()
	w.prefs.SetFloat(prefs.KeyWindowW, float64(size.Width))
	w.prefs.SetFloat(prefs.KeyWindowH, float64(size.Height))

	if err := w.prefs.Save(); err != nil {
		log.Printf("Failed to save preferences: %v", err)
	}
}

// Show displays the window.
func (w *Window) Show() {
	w.win.Show()
}

func (w *Window) buildToolbar() fyne.CanvasObject {
	toolButton := func(label string, tool Tool, hint string) *widget.Button {
		return widget.NewButton(label, func() {
			w.canvas.SetTool(tool)
			w.status.SetText(hint)
		})
	}

	return container.NewHBox(
		toolButton("Pan", ToolPan, "Pan: scroll to move, wheel to zoom"),
		toolButton("Select", ToolSelect, "Select: click a handle, drag to move it"),
		widget.NewSeparator(),
		toolButton("Distance", ToolDistance, "Distance: click two points"),
		toolButton("Angle", ToolAngle, "Angle: click vertex, then both arms"),
		toolButton("Circle", ToolCircle, "Circle: click center, then edge"),
		toolButton("Area", ToolArea, "Area: click vertices, right-click to close"),
		widget.NewSeparator(),
		widget.NewButton("Zoom +", w.canvas.ZoomIn),
		widget.NewButton("Zoom -", w.canvas.ZoomOut),
		widget.NewButton("Labels", func() {
			opts := w.canvas.Options()
			opts.DrawLabels = !opts.DrawLabels
			w.canvas.SetOptions(opts)
		}),
		widget.NewButton("Fill", func() {
			opts := w.canvas.Options()
			opts.FillAreas = !opts.FillAreas
			w.canvas.SetOptions(opts)
		}),
		widget.NewSeparator(),
		widget.NewButton("Delete", w.deleteSelected),
		widget.NewButton("Clear", w.clearAll),
		widget.NewButton("Save", w.save),
	)
}

func (w *Window) buildResultsPanel() fyne.CanvasObject {
	scroll := container.NewScroll(w.results)
	scroll.SetMinSize(fyne.NewSize(260, 0))
	return scroll
}

// refreshResults recomputes the measurement readout.
func (w *Window) refreshResults() {
	mgr := w.canvas.Manager()

	var sb strings.Builder
	cal := mgr.Calibration()
	if cal.Calibrated() {
		sb.WriteString(fmt.Sprintf("Calibrated (%s)\n\n", cal.UnitsOrDefault()))
	} else {
		sb.WriteString("Uncalibrated (pixels)\n\n")
	}

	for _, m := range mgr.Measurements() {
		res := m.Compute(cal)

		name := m.Kind.String()
		if m.Label != "" {
			name = m.Label
		}
		marker := "  "
		if m.Selected {
			marker = "> "
		}
		sb.WriteString(fmt.Sprintf("%s%s: %s\n", marker, name, res.DisplayText))

		if area, ok := res.Extra["area"]; ok {
			sb.WriteString(fmt.Sprintf("    area: %.2f\n", area))
		}
	}

	if mgr.Len() == 0 {
		sb.WriteString("No measurements")
	}
	w.results.SetText(sb.String())
}

func (w *Window) deleteSelected() {
	mgr := w.canvas.Manager()
	removed := 0
	for _, m := range mgr.Measurements() {
		if m.Selected {
			mgr.Remove(m.ID)
			removed++
		}
	}
	if removed == 0 {
		w.status.SetText("Nothing selected")
		return
	}
	w.status.SetText(fmt.Sprintf("Deleted %d measurement(s)", removed))
	w.refreshResults()
	w.canvas.Refresh()
}

func (w *Window) clearAll() {
	w.canvas.Manager().Clear()
	w.status.SetText("Cleared all measurements")
	w.refreshResults()
	w.canvas.Refresh()
}

func (w *Window) save() {
	if w.docPath == "" {
		w.status.SetText("No annotation file; pass one on the command line")
		return
	}
	if err := w.doc.Save(w.docPath); err != nil {
		log.Printf("save failed: %v", err)
		w.status.SetText(fmt.Sprintf("Save failed: %v", err))
		return
	}
	w.status.SetText("Saved " + w.docPath)
}
