package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"screenshot-ocr/src/geometry"
	"screenshot-ocr/src/logutil"
	"screenshot-ocr/src/ocr"
	"screenshot-ocr/src/screenshot"
	"screenshot-ocr/src/selection"
)

var (
	ErrSelectionCancelled = errors.New("selection cancelled")
	ErrAlreadyStarted     = errors.New("session already started")
)

// Overlay is the full-screen window the selection is drawn on. Create makes
// the window without showing it, so it is not part of the snapshot. Show
// paints buf as background, delivers pointer input to events and outlines
// events.Selection() on every redraw. Close must be safe to call on an
// overlay that was never created.
type Overlay interface {
	Create() error
	Show(buf *screenshot.ScreenBuffer, events Events) error
	RequestRedraw()
	Close()
}

// Events is the input surface the overlay drives. All calls must come from
// the UI goroutine.
type Events interface {
	PointerMoved(p geometry.Point)
	PointerReleased()
	Cancel()
	Selection() (geometry.Rectangle, bool)
}

// Notifier makes session failures visible to the user.
type Notifier interface {
	Failure(err error)
}

type Options struct {
	Overlay    Overlay
	Capturer   screenshot.Capturer
	Recognizer ocr.Recognizer
	Target     ResultTarget
	Notifier   Notifier
	// DebugImages saves the crop and the annotated frame as PNG files.
	DebugImages bool
}

// Result is the outcome of a session that did not fail.
type Result struct {
	Text string
	Rect geometry.Rectangle
	// NothingSelected is set when the selection had no area inside the
	// screen; nothing was recognized and the target was not written.
	NothingSelected bool
}

type outcome struct {
	result Result
	err    error
}

// Session is one overlay lifetime: snapshot, drag, recognize, deliver. It is
// single-use and driven from the UI goroutine; only Done/Wait may be used
// from elsewhere.
type Session struct {
	opts     Options
	ctx      context.Context
	buf      *screenshot.ScreenBuffer
	features *features
	started  bool
	finished bool
	out      outcome
	done     chan struct{}
}

func New(opts Options) (*Session, error) {
	if opts.Overlay == nil {
		return nil, errors.New("Overlay is required")
	}
	if opts.Capturer == nil {
		return nil, errors.New("Capturer is required")
	}
	if opts.Recognizer == nil {
		return nil, errors.New("Recognizer is required")
	}
	if opts.Target == nil {
		return nil, errors.New("Target is required")
	}
	if opts.Notifier == nil {
		opts.Notifier = logNotifier{}
	}
	return &Session{
		opts:     opts,
		features: newFeatures(),
		done:     make(chan struct{}),
	}, nil
}

// Start runs the initialization sequence: the overlay window is created,
// the screen is captured, the selection controller is attached, then the
// window is shown on the snapshot. Each step requires the previous one; any
// failure is fatal and nothing is left open.
func (s *Session) Start(ctx context.Context) error {
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true
	s.ctx = ctx

	if err := s.opts.Overlay.Create(); err != nil {
		return s.abort(fmt.Errorf("failed to create overlay: %w", err))
	}

	buf, err := s.opts.Capturer.Capture(ctx)
	if err != nil {
		return s.abort(fmt.Errorf("failed to capture screen: %w", err))
	}
	s.buf = buf
	zap.S().Infof("session: captured %dx%d %s snapshot, stride %d", buf.Width(), buf.Height(), buf.Format(), buf.Stride())

	ctrl := selection.NewController(selection.RedrawFunc(s.opts.Overlay.RequestRedraw), s.complete)
	if err := s.features.attach(AreaSelection, ctrl); err != nil {
		return s.abort(err)
	}

	if err := s.opts.Overlay.Show(buf, s); err != nil {
		return s.abort(fmt.Errorf("failed to show overlay: %w", err))
	}
	return nil
}

func (s *Session) abort(err error) error {
	s.finish(Result{}, err)
	return err
}

func (s *Session) PointerMoved(p geometry.Point) {
	if f, ok := s.features.get(AreaSelection); ok && !s.finished {
		f.Move(p)
	}
}

func (s *Session) PointerReleased() {
	if f, ok := s.features.get(AreaSelection); ok && !s.finished {
		f.Release()
	}
}

func (s *Session) Selection() (geometry.Rectangle, bool) {
	if f, ok := s.features.get(AreaSelection); ok {
		return f.Current()
	}
	return geometry.Rectangle{}, false
}

// Cancel closes the overlay without recognizing anything.
func (s *Session) Cancel() {
	zap.S().Infof("session: selection cancelled")
	s.finish(Result{}, ErrSelectionCancelled)
}

// Done is closed once the session has finished.
func (s *Session) Done() <-chan struct{} { return s.done }

// Wait blocks until the session finishes or ctx ends.
func (s *Session) Wait(ctx context.Context) (Result, error) {
	select {
	case <-s.done:
		return s.out.result, s.out.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (s *Session) complete(rect geometry.Rectangle) {
	res, err := s.process(rect)
	s.finish(res, err)
}

// process turns the finalized rectangle into delivered text. Recognition
// and delivery errors abort the session before anything is written.
func (s *Session) process(rect geometry.Rectangle) (Result, error) {
	res := Result{Rect: rect}

	crop, err := screenshot.Crop(s.buf, rect)
	if errors.Is(err, screenshot.ErrNothingSelected) {
		zap.S().Infof("session: %s has no area on screen, nothing to recognize", rect)
		res.NothingSelected = true
		return res, nil
	}
	if err != nil {
		return Result{}, err
	}
	if s.opts.DebugImages {
		saveDebugImages(s.buf, rect, crop)
	}

	zap.S().Infof("session: recognizing %dx%d region", crop.Width, crop.Height)
	text, err := s.opts.Recognizer.Recognize(s.ctx, crop)
	if err != nil {
		return Result{}, err
	}
	zap.S().Infof("session: recognized %d chars: %q", len(text), logutil.Sanitize(text))

	if err := s.opts.Target.OnSuccess(text); err != nil {
		return Result{}, fmt.Errorf("failed to deliver text: %w", err)
	}
	res.Text = text
	return res, nil
}

func (s *Session) finish(res Result, err error) {
	if s.finished {
		return
	}
	s.finished = true
	s.opts.Overlay.Close()

	if err != nil && !errors.Is(err, ErrSelectionCancelled) {
		zap.S().Errorf("session: failed: %v", err)
		_ = s.opts.Target.OnFailure(err)
		s.opts.Notifier.Failure(err)
	}
	s.out = outcome{result: res, err: err}
	close(s.done)
}

// Run starts a session and blocks until it finishes. The overlay must
// dispatch its events on another goroutine for this to return.
func Run(ctx context.Context, opts Options) (Result, error) {
	s, err := New(opts)
	if err != nil {
		return Result{}, err
	}
	if err := s.Start(ctx); err != nil {
		return Result{}, err
	}
	return s.Wait(ctx)
}

type logNotifier struct{}

func (logNotifier) Failure(err error) {
	zap.S().Warnf("session failure: %v", err)
}
