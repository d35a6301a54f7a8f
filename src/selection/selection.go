// Package selection tracks a single pointer drag over the overlay and turns it
// into a finalized rectangle.
//
// A Controller is owned by one session and must only be driven from the UI
// event goroutine. It is one-shot: once finalized it ignores further input.
package selection

import (
	"go.uber.org/zap"

	"screenshot-ocr/src/geometry"
)

// Kind identifies the controller state.
type Kind int

const (
	Idle Kind = iota
	Dragging
	Finalized
)

func (k Kind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Finalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// State is a snapshot of the controller. Anchor is meaningful while Dragging
// or Finalized; Rect while Dragging (in progress) or Finalized.
type State struct {
	kind   Kind
	anchor geometry.Point
	rect   geometry.Rectangle
}

func (s State) Kind() Kind { return s.kind }
func (s State) Anchor() geometry.Point { return s.anchor }
func (s State) Rect() geometry.Rectangle { return s.rect }

// Redrawer is asked to repaint the overlay after every handled move.
// Implementations may coalesce requests.
type Redrawer interface {
	RequestRedraw()
}

// RedrawFunc adapts a function to Redrawer.
type RedrawFunc func()

func (f RedrawFunc) RequestRedraw() { f() }

// CompletionFunc receives the finalized rectangle exactly once.
type CompletionFunc func(geometry.Rectangle)

type Controller struct {
	state      State
	redraw     Redrawer
	onComplete CompletionFunc
}

// NewController returns an Idle controller. Either argument may be nil.
func NewController(redraw Redrawer, onComplete CompletionFunc) *Controller {
	return &Controller{redraw: redraw, onComplete: onComplete}
}

// Move records a pointer position while the button is held. The first move
// fixes the anchor; later moves only replace the moving corner.
func (c *Controller) Move(p geometry.Point) {
	switch c.state.kind {
	case Idle:
		c.state = State{kind: Dragging, anchor: p, rect: geometry.Rectangle{Start: p, End: p}}
		zap.S().Debugf("selection: drag started at %s", p)
	case Dragging:
		c.state.rect = geometry.Rectangle{Start: c.state.anchor, End: p}
	case Finalized:
		return
	}
	c.requestRedraw()
}

// Release ends the drag. Without a prior move nothing is emitted and the
// controller stays Idle.
func (c *Controller) Release() {
	if c.state.kind != Dragging {
		if c.state.kind == Idle {
			zap.S().Debugf("selection: release without drag, nothing selected")
		}
		return
	}
	c.state.kind = Finalized
	rect := c.state.rect
	zap.S().Infof("selection: finalized %s", rect)
	c.requestRedraw()
	if c.onComplete != nil {
		c.onComplete(rect)
	}
}

// Current returns the rectangle to outline, if any.
func (c *Controller) Current() (geometry.Rectangle, bool) {
	if c.state.kind == Idle {
		return geometry.Rectangle{}, false
	}
	return c.state.rect, true
}

// State returns a copy of the controller state.
func (c *Controller) State() State { return c.state }

func (c *Controller) requestRedraw() {
	if c.redraw != nil {
		c.redraw.RequestRedraw()
	}
}
