// Package overlay is the full-screen fyne window the selection is dragged
// on. It paints the frozen snapshot, forwards pointer input to the session
// and outlines the current selection.
package overlay

import (
	"errors"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"screenshot-ocr/src/geometry"
	"screenshot-ocr/src/render"
	"screenshot-ocr/src/screenshot"
	"screenshot-ocr/src/session"
)

const windowTitle = "Screen OCR selection"

// Overlay implements session.Overlay. All methods run on the fyne UI
// goroutine.
type Overlay struct {
	app    fyne.App
	style  render.Style
	win    fyne.Window
	area   *selectionArea
	events session.Events
}

var _ session.Overlay = (*Overlay)(nil)

func New(app fyne.App) *Overlay {
	return &Overlay{app: app, style: render.DefaultStyle}
}

// Create makes the window, hidden until Show.
func (o *Overlay) Create() error {
	if o.app == nil {
		return errors.New("no fyne app")
	}
	if o.win != nil {
		return errors.New("overlay already created")
	}

	win := o.app.NewWindow(windowTitle)
	win.SetPadded(false)
	win.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyEscape && o.events != nil {
			o.events.Cancel()
		}
	})
	// Closing the window from the window manager counts as cancel.
	win.SetCloseIntercept(func() {
		if o.events != nil {
			o.events.Cancel()
		} else {
			o.Close()
		}
	})
	o.win = win
	return nil
}

func (o *Overlay) Show(buf *screenshot.ScreenBuffer, events session.Events) error {
	if o.win == nil {
		return errors.New("overlay not created")
	}
	if o.events != nil {
		return errors.New("overlay already shown")
	}

	bg := canvas.NewImageFromImage(buf.Image())
	bg.FillMode = canvas.ImageFillStretch
	bg.ScaleMode = canvas.ImageScalePixels

	o.events = events
	o.area = newSelectionArea(events, buf.Width(), buf.Height(), o.style)
	o.win.SetContent(container.NewStack(bg, o.area))
	o.win.SetFullScreen(true)
	o.win.Show()
	o.win.RequestFocus()

	zap.S().Debugf("overlay: showing %dx%d snapshot", buf.Width(), buf.Height())
	return nil
}

// RequestRedraw refreshes the outline. Requests made while a pointer event
// is being forwarded are coalesced into one refresh after it.
func (o *Overlay) RequestRedraw() {
	if o.area != nil {
		o.area.requestRedraw()
	}
}

func (o *Overlay) Close() {
	if o.win == nil {
		return
	}
	if o.area != nil {
		o.area.closed = true
	}
	o.win.Close()
	o.win = nil
	o.area = nil
	o.events = nil
	zap.S().Debugf("overlay: closed")
}

// selectionArea covers the snapshot and turns drags into session events.
// Positions are fyne units; the session works in snapshot pixels, so every
// position is scaled by the snapshot size over the widget size.
type selectionArea struct {
	widget.BaseWidget

	events   session.Events
	pxWidth  int
	pxHeight int
	style    render.Style
	dragging bool

	inEvent bool
	dirty   bool
	closed  bool
	redraws int
}

var (
	_ fyne.Draggable     = (*selectionArea)(nil)
	_ desktop.Mouseable  = (*selectionArea)(nil)
	_ desktop.Cursorable = (*selectionArea)(nil)
)

func newSelectionArea(events session.Events, pxWidth, pxHeight int, style render.Style) *selectionArea {
	a := &selectionArea{events: events, pxWidth: pxWidth, pxHeight: pxHeight, style: style}
	a.ExtendBaseWidget(a)
	return a
}

func (a *selectionArea) requestRedraw() {
	if a.closed {
		return
	}
	if a.inEvent {
		a.dirty = true
		return
	}
	a.redraws++
	a.Refresh()
}

// forward runs fn with redraw requests held back, then redraws at most once.
func (a *selectionArea) forward(fn func()) {
	a.inEvent = true
	fn()
	a.inEvent = false
	if a.dirty {
		a.dirty = false
		a.requestRedraw()
	}
}

func (a *selectionArea) Dragged(ev *fyne.DragEvent) {
	a.forward(func() {
		if !a.dragging {
			// The first drag event arrives after the pointer already moved;
			// its origin is where the button went down.
			a.dragging = true
			a.events.PointerMoved(a.toPixels(ev.Position.Subtract(ev.Dragged)))
		}
		a.events.PointerMoved(a.toPixels(ev.Position))
	})
}

func (a *selectionArea) DragEnd() {
	a.dragging = false
	a.forward(a.events.PointerReleased)
}

func (a *selectionArea) MouseDown(*desktop.MouseEvent) {}

// MouseUp covers a click without movement; the selection ignores it.
func (a *selectionArea) MouseUp(*desktop.MouseEvent) {
	if !a.dragging {
		a.forward(a.events.PointerReleased)
	}
}

func (a *selectionArea) Cursor() desktop.Cursor { return desktop.CrosshairCursor }

func (a *selectionArea) scale() (float64, float64) {
	size := a.Size()
	if size.Width <= 0 || size.Height <= 0 {
		return 1, 1
	}
	return float64(a.pxWidth) / float64(size.Width), float64(a.pxHeight) / float64(size.Height)
}

func (a *selectionArea) toPixels(pos fyne.Position) geometry.Point {
	sx, sy := a.scale()
	return geometry.Point{X: float64(pos.X) * sx, Y: float64(pos.Y) * sy}
}

func (a *selectionArea) fromPixels(p geometry.Point) fyne.Position {
	sx, sy := a.scale()
	return fyne.NewPos(float32(p.X/sx), float32(p.Y/sy))
}

func (a *selectionArea) CreateRenderer() fyne.WidgetRenderer {
	frame := canvas.NewRectangle(color.Transparent)
	frame.StrokeColor = a.style.Color
	frame.Hide()
	return &selectionRenderer{area: a, frame: frame}
}

type selectionRenderer struct {
	area  *selectionArea
	frame *canvas.Rectangle
}

func (r *selectionRenderer) Layout(fyne.Size) { r.place() }

func (r *selectionRenderer) MinSize() fyne.Size { return fyne.NewSize(0, 0) }

func (r *selectionRenderer) Refresh() {
	r.place()
	r.frame.Refresh()
}

func (r *selectionRenderer) Objects() []fyne.CanvasObject { return []fyne.CanvasObject{r.frame} }

func (r *selectionRenderer) Destroy() {}

func (r *selectionRenderer) place() {
	rect, ok := r.area.events.Selection()
	if !ok {
		r.frame.Hide()
		return
	}
	sx, _ := r.area.scale()
	r.frame.StrokeWidth = float32(r.area.style.LineWidth / sx)

	topLeft := r.area.fromPixels(rect.TopLeft())
	bottomRight := r.area.fromPixels(rect.BottomRight())
	r.frame.Move(topLeft)
	r.frame.Resize(fyne.NewSize(bottomRight.X-topLeft.X, bottomRight.Y-topLeft.Y))
	r.frame.Show()
}
