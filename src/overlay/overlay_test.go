package overlay

import (
	"image"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screenshot-ocr/src/geometry"
	"screenshot-ocr/src/screenshot"
)

type recordedEvents struct {
	moves     []geometry.Point
	releases  int
	cancels   int
	selection *geometry.Rectangle
}

func (e *recordedEvents) PointerMoved(p geometry.Point) {
	e.moves = append(e.moves, p)
	if e.selection == nil {
		e.selection = &geometry.Rectangle{Start: p, End: p}
	}
	e.selection.End = p
}

func (e *recordedEvents) PointerReleased() { e.releases++ }
func (e *recordedEvents) Cancel()          { e.cancels++ }

func (e *recordedEvents) Selection() (geometry.Rectangle, bool) {
	if e.selection == nil {
		return geometry.Rectangle{}, false
	}
	return *e.selection, true
}

func openOverlay(t *testing.T, w, h int) (*Overlay, *recordedEvents) {
	t.Helper()
	app := test.NewTempApp(t)
	o := New(app)
	events := &recordedEvents{}
	buf := screenshot.NewScreenBuffer(image.NewRGBA(image.Rect(0, 0, w, h)))
	require.NoError(t, o.Create())
	require.NoError(t, o.Show(buf, events))
	t.Cleanup(o.Close)
	return o, events
}

func drag(a *selectionArea, from, to fyne.Position) {
	a.Dragged(&fyne.DragEvent{
		PointEvent: fyne.PointEvent{Position: to},
		Dragged:    fyne.NewDelta(to.X-from.X, to.Y-from.Y),
	})
}

func TestDragIsForwardedInPixels(t *testing.T) {
	o, events := openOverlay(t, 200, 100)
	o.area.Resize(fyne.NewSize(200, 100))

	drag(o.area, fyne.NewPos(10, 10), fyne.NewPos(20, 30))
	drag(o.area, fyne.NewPos(20, 30), fyne.NewPos(50, 60))
	o.area.DragEnd()

	assert.Equal(t, []geometry.Point{{X: 10, Y: 10}, {X: 20, Y: 30}, {X: 50, Y: 60}}, events.moves)
	assert.Equal(t, 1, events.releases)
}

// redrawingEvents asks the overlay for a redraw on every move, the way the
// selection controller does.
type redrawingEvents struct {
	recordedEvents
	overlay *Overlay
}

func (e *redrawingEvents) PointerMoved(p geometry.Point) {
	e.recordedEvents.PointerMoved(p)
	e.overlay.RequestRedraw()
}

func (e *redrawingEvents) PointerReleased() {
	e.recordedEvents.PointerReleased()
	e.overlay.RequestRedraw()
}

func TestOneRedrawPerPointerEvent(t *testing.T) {
	app := test.NewTempApp(t)
	o := New(app)
	events := &redrawingEvents{overlay: o}
	buf := screenshot.NewScreenBuffer(image.NewRGBA(image.Rect(0, 0, 100, 100)))
	require.NoError(t, o.Create())
	require.NoError(t, o.Show(buf, events))
	t.Cleanup(o.Close)
	o.area.Resize(fyne.NewSize(100, 100))

	drag(o.area, fyne.NewPos(10, 10), fyne.NewPos(20, 20))
	assert.Len(t, events.moves, 2, "first drag forwards origin and position")
	assert.Equal(t, 1, o.area.redraws)

	drag(o.area, fyne.NewPos(20, 20), fyne.NewPos(30, 30))
	assert.Equal(t, 2, o.area.redraws)

	o.area.DragEnd()
	assert.Equal(t, 3, o.area.redraws)

	o.RequestRedraw()
	assert.Equal(t, 4, o.area.redraws, "requests outside pointer events redraw immediately")
}

func TestHighDPIScalesToSnapshotPixels(t *testing.T) {
	o, events := openOverlay(t, 400, 200)
	// A 2x display shows the 400x200 snapshot in 200x100 units.
	o.area.Resize(fyne.NewSize(200, 100))

	drag(o.area, fyne.NewPos(10, 10), fyne.NewPos(15, 20))

	require.Len(t, events.moves, 2)
	assert.Equal(t, geometry.Point{X: 20, Y: 20}, events.moves[0])
	assert.Equal(t, geometry.Point{X: 30, Y: 40}, events.moves[1])

	rect, ok := events.Selection()
	require.True(t, ok)
	pos := o.area.fromPixels(rect.TopLeft())
	assert.Equal(t, fyne.NewPos(10, 10), pos)
}

func TestClickWithoutDragReleases(t *testing.T) {
	o, events := openOverlay(t, 50, 50)
	o.area.MouseDown(nil)
	o.area.MouseUp(nil)
	assert.Equal(t, 1, events.releases)
	assert.Empty(t, events.moves)
}

func TestEscapeCancels(t *testing.T) {
	o, events := openOverlay(t, 50, 50)
	o.win.Canvas().OnTypedKey()(&fyne.KeyEvent{Name: fyne.KeyEscape})
	o.win.Canvas().OnTypedKey()(&fyne.KeyEvent{Name: fyne.KeyReturn})
	assert.Equal(t, 1, events.cancels)
}

func TestRedrawPlacesFrame(t *testing.T) {
	o, _ := openOverlay(t, 100, 100)
	o.area.Resize(fyne.NewSize(100, 100))

	r := test.TempWidgetRenderer(t, o.area).(*selectionRenderer)
	r.Refresh()
	assert.False(t, r.frame.Visible())

	drag(o.area, fyne.NewPos(40, 40), fyne.NewPos(10, 20))
	r.Refresh()
	assert.True(t, r.frame.Visible())
	assert.Equal(t, fyne.NewPos(10, 20), r.frame.Position())
	assert.Equal(t, fyne.NewSize(30, 20), r.frame.Size())
	assert.Equal(t, float32(3), r.frame.StrokeWidth)
}

func TestCloseIsIdempotent(t *testing.T) {
	app := test.NewTempApp(t)
	o := New(app)
	assert.NotPanics(t, func() {
		o.Close()
		o.RequestRedraw()
	})

	o, _ = openOverlay(t, 10, 10)
	o.Close()
	o.Close()
	assert.Nil(t, o.win)
}

func TestLifecycleOrder(t *testing.T) {
	app := test.NewTempApp(t)
	o := New(app)
	buf := screenshot.NewScreenBuffer(image.NewRGBA(image.Rect(0, 0, 10, 10)))
	events := &recordedEvents{}

	assert.Error(t, o.Show(buf, events), "show requires a window")
	require.NoError(t, o.Create())
	assert.Error(t, o.Create())
	require.NoError(t, o.Show(buf, events))
	assert.Error(t, o.Show(buf, events))
	o.Close()
}

func TestEscapeBeforeShowIsIgnored(t *testing.T) {
	app := test.NewTempApp(t)
	o := New(app)
	require.NoError(t, o.Create())
	defer o.Close()
	assert.NotPanics(t, func() {
		o.win.Canvas().OnTypedKey()(&fyne.KeyEvent{Name: fyne.KeyEscape})
	})
}
