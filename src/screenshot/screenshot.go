package screenshot

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/kbinani/screenshot"
	"go.uber.org/zap"
)

// ErrNothingSelected is returned by Crop when the rectangle has no area
// left after clamping to the buffer.
var ErrNothingSelected = errors.New("nothing selected")

// PixelFormat names the byte layout of a buffer.
type PixelFormat string

// FormatRGBA8 is the image.RGBA layout: 8-bit R, G, B, A, 4 bytes per pixel.
const FormatRGBA8 PixelFormat = "RGBA8"

const bytesPerPixel = 4

// ScreenBuffer is an immutable full-screen snapshot with a zero origin.
// It may be shared by reference without synchronization.
type ScreenBuffer struct {
	img *image.RGBA
}

// NewScreenBuffer copies src into a buffer owned by the snapshot. The result
// always starts at (0,0), whatever the origin of src.
func NewScreenBuffer(src image.Image) *ScreenBuffer {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return &ScreenBuffer{img: dst}
}

func (s *ScreenBuffer) Width() int { return s.img.Rect.Dx() }
func (s *ScreenBuffer) Height() int { return s.img.Rect.Dy() }
func (s *ScreenBuffer) Stride() int { return s.img.Stride }
func (s *ScreenBuffer) Format() PixelFormat { return FormatRGBA8 }

// Bounds is the buffer rectangle, always anchored at (0,0).
func (s *ScreenBuffer) Bounds() image.Rectangle { return s.img.Rect }

// Image exposes the snapshot for drawing. Callers must not modify it.
func (s *ScreenBuffer) Image() image.Image { return s.img }

// Capturer provides the session snapshot.
type Capturer interface {
	Capture(ctx context.Context) (*ScreenBuffer, error)
}

// CapturerFunc adapts a function to Capturer.
type CapturerFunc func(ctx context.Context) (*ScreenBuffer, error)

func (f CapturerFunc) Capture(ctx context.Context) (*ScreenBuffer, error) { return f(ctx) }

// Static always returns the same buffer.
func Static(buf *ScreenBuffer) Capturer {
	return CapturerFunc(func(context.Context) (*ScreenBuffer, error) { return buf, nil })
}

// DisplayCapturer snapshots the union of all active displays.
type DisplayCapturer struct{}

func (DisplayCapturer) Capture(ctx context.Context) (*ScreenBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := Capture()
	if err != nil {
		return nil, err
	}
	return NewScreenBuffer(img), nil
}

// Capture captures the entire virtual screen across all active displays
func Capture() (*image.RGBA, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays found")
	}
	// Compute union of all display bounds
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	img, err := screenshot.CaptureRect(union)
	if err != nil {
		return nil, fmt.Errorf("failed to capture screen: %w", err)
	}
	zap.S().Debugf("screenshot: captured %d display(s), virtual bounds %v", n, union)
	return img, nil
}
