// Package render draws the frozen snapshot with the selection outline on top.
// The overlay uses Style for its on-screen rectangle; Frame produces the same
// picture in memory for debug snapshots.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"screenshot-ocr/src/geometry"
	"screenshot-ocr/src/screenshot"
)

// Style is the stroke used for the selection outline.
type Style struct {
	Color     color.NRGBA
	LineWidth float64
}

// DefaultStyle is a 3 px blue-teal stroke.
var DefaultStyle = Style{
	Color:     color.NRGBA{R: 32, G: 125, B: 170, A: 255},
	LineWidth: 3,
}

// Frame paints buf as background and, when rect is non-nil, strokes it.
func Frame(buf *screenshot.ScreenBuffer, rect *geometry.Rectangle, style Style) *image.RGBA {
	dst := image.NewRGBA(buf.Bounds())
	draw.Draw(dst, dst.Bounds(), buf.Image(), image.Point{}, draw.Src)
	if rect != nil {
		Outline(dst, *rect, style)
	}
	return dst
}

// Outline strokes r onto dst. The stroke is centered on the rectangle edges,
// half inside and half outside, and clipped to dst.
func Outline(dst draw.Image, r geometry.Rectangle, style Style) {
	w := int(math.Round(style.LineWidth))
	if w <= 0 {
		return
	}
	src := image.NewUniform(style.Color)

	tl, br := r.TopLeft(), r.BottomRight()
	x0, y0 := int(math.Round(tl.X)), int(math.Round(tl.Y))
	x1, y1 := int(math.Round(br.X)), int(math.Round(br.Y))
	in := w / 2
	out := w - in

	edges := []image.Rectangle{
		image.Rect(x0-in, y0-in, x1+out, y0+out), // top
		image.Rect(x0-in, y1-in, x1+out, y1+out), // bottom
		image.Rect(x0-in, y0-in, x0+out, y1+out), // left
		image.Rect(x1-in, y0-in, x1+out, y1+out), // right
	}
	bounds := dst.Bounds()
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(bounds), src, image.Point{}, draw.Over)
	}
}
