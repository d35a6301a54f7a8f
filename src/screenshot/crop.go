package screenshot

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"screenshot-ocr/src/geometry"
)

// CroppedImage is the pixel data under a selection, in FormatRGBA8 with a
// zero origin. It is handed to the recognizer and then dropped.
type CroppedImage struct {
	Width  int
	Height int
	Stride int
	Pix    []byte
	Format PixelFormat
}

// Crop extracts the pixels under rect. The rectangle is clamped to the
// buffer, so selections dragged past the screen edge are clipped rather than
// rejected. A rectangle with no area after clamping yields ErrNothingSelected.
func Crop(buf *ScreenBuffer, rect geometry.Rectangle) (CroppedImage, error) {
	r := ClampRect(buf, rect)
	if r.Empty() {
		return CroppedImage{}, ErrNothingSelected
	}

	w, h := r.Dx(), r.Dy()
	out := CroppedImage{
		Width:  w,
		Height: h,
		Stride: w * bytesPerPixel,
		Pix:    make([]byte, w*h*bytesPerPixel),
		Format: FormatRGBA8,
	}

	src := buf.img
	rowBytes := w * bytesPerPixel
	for y := 0; y < h; y++ {
		srcStart := (r.Min.Y+y)*src.Stride + r.Min.X*bytesPerPixel
		dstStart := y * out.Stride
		copy(out.Pix[dstStart:dstStart+rowBytes], src.Pix[srcStart:srcStart+rowBytes])
	}
	return out, nil
}

// ClampRect converts rect to pixel bounds inside buf. The result may be empty.
func ClampRect(buf *ScreenBuffer, rect geometry.Rectangle) image.Rectangle {
	return rect.Image().Intersect(buf.Bounds())
}

// RGBA returns an image view sharing the cropped pixels.
func (c CroppedImage) RGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    c.Pix,
		Stride: c.Stride,
		Rect:   image.Rect(0, 0, c.Width, c.Height),
	}
}

// PNG encodes the crop losslessly for OCR backends that read image files.
func (c CroppedImage) PNG() ([]byte, error) {
	if c.Width <= 0 || c.Height <= 0 || len(c.Pix) < c.Stride*c.Height {
		return nil, fmt.Errorf("invalid image dimensions: width=%d, height=%d", c.Width, c.Height)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, c.RGBA()); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return buf.Bytes(), nil
}
