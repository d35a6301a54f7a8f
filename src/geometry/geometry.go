package geometry

import (
	"fmt"
	"image"
	"math"
)

// Point is a screen position in device pixels, origin top-left.
type Point struct {
	X float64
	Y float64
}

func (p Point) String() string { return fmt.Sprintf("(%.1f,%.1f)", p.X, p.Y) }

// Rectangle is the area between two drag corners. Start and End are kept in
// drag order; use the accessors for normalized values.
type Rectangle struct {
	Start Point
	End   Point
}

// Width is |Start.X - End.X|.
func (r Rectangle) Width() float64 { return math.Abs(r.Start.X - r.End.X) }

// Height is |Start.Y - End.Y|.
func (r Rectangle) Height() float64 { return math.Abs(r.Start.Y - r.End.Y) }

// TopLeft returns the smallest x and y of the two corners.
func (r Rectangle) TopLeft() Point {
	return Point{X: math.Min(r.Start.X, r.End.X), Y: math.Min(r.Start.Y, r.End.Y)}
}

// BottomRight returns the largest x and y of the two corners.
func (r Rectangle) BottomRight() Point {
	return Point{X: math.Max(r.Start.X, r.End.X), Y: math.Max(r.Start.Y, r.End.Y)}
}

// IsDegenerate reports whether the rectangle has no area.
func (r Rectangle) IsDegenerate() bool {
	return r.Width() == 0 || r.Height() == 0
}

// Normalized returns the same area with Start at the top-left corner.
func (r Rectangle) Normalized() Rectangle {
	return Rectangle{Start: r.TopLeft(), End: r.BottomRight()}
}

// Image converts r to integer pixel bounds. Origin and size are truncated
// toward zero, so a drag of 10.9 pixels covers 10 whole pixels and an origin
// of -0.5 becomes 0.
func (r Rectangle) Image() image.Rectangle {
	tl := r.TopLeft()
	x := int(tl.X)
	y := int(tl.Y)
	return image.Rect(x, y, x+int(r.Width()), y+int(r.Height()))
}

func (r Rectangle) String() string {
	tl := r.TopLeft()
	return fmt.Sprintf("%s %.1fx%.1f", tl, r.Width(), r.Height())
}

// Width, Height and TopLeft are function forms of the Rectangle accessors.
func Width(r Rectangle) float64 { return r.Width() }
func Height(r Rectangle) float64 { return r.Height() }
func TopLeft(r Rectangle) Point { return r.TopLeft() }
