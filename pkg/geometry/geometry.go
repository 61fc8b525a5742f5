// Package geometry maps normalized issue coordinates onto media rendered with
// contain-fit (letterboxed or pillarboxed) inside an arbitrary container.
package geometry

import (
	"math"

	"github.com/anime-shed/localens-go/pkg/models"
)

// NormalizedMax is the upper bound of the issue coordinate space on both axes
const NormalizedMax = 1000.0

// DefaultExpansion grows every box by 10% of its own size in each direction
const DefaultExpansion = 0.1

// Size is a width/height pair in pixels
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both dimensions are finite and strictly positive
func (s Size) Valid() bool {
	return positive(s.Width) && positive(s.Height)
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Point is a pixel position inside the container
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is a pixel rectangle inside the container
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether p lies inside r, edges included
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Geometry describes where the intrinsic media pixels land inside the container
type Geometry struct {
	DisplayedWidth  float64 `json:"displayed_width"`
	DisplayedHeight float64 `json:"displayed_height"`
	OffsetX         float64 `json:"offset_x"`
	OffsetY         float64 `json:"offset_y"`
}

// ContainFit places media inside container preserving aspect ratio and
// centering it on the other axis. It returns false until both sizes are known
// and non-zero, so callers never propagate NaN into pixel positions.
func ContainFit(container, media Size) (Geometry, bool) {
	if !container.Valid() || !media.Valid() {
		return Geometry{}, false
	}

	containerRatio := container.Width / container.Height
	mediaRatio := media.Width / media.Height

	var g Geometry
	if mediaRatio > containerRatio {
		g.DisplayedWidth = container.Width
		g.DisplayedHeight = container.Width / mediaRatio
	} else {
		g.DisplayedHeight = container.Height
		g.DisplayedWidth = container.Height * mediaRatio
	}
	g.OffsetX = (container.Width - g.DisplayedWidth) / 2
	g.OffsetY = (container.Height - g.DisplayedHeight) / 2
	return g, true
}

// Displayed returns the displayed media rectangle
func (g Geometry) Displayed() Rect {
	return Rect{X: g.OffsetX, Y: g.OffsetY, Width: g.DisplayedWidth, Height: g.DisplayedHeight}
}

// Point converts a normalized coordinate pair to a container pixel position.
// Each axis is mapped independently.
func (g Geometry) Point(x, y float64) Point {
	return Point{
		X: g.OffsetX + (x/NormalizedMax)*g.DisplayedWidth,
		Y: g.OffsetY + (y/NormalizedMax)*g.DisplayedHeight,
	}
}

// Box maps a normalized bounding box to pixels and grows it by expand times
// its own width/height on every side. Boxes whose resulting width or height
// is not positive are rejected.
func (g Geometry) Box(b models.BoundingBox, expand float64) (Rect, bool) {
	tl := g.Point(b.X1, b.Y1)
	br := g.Point(b.X2, b.Y2)

	w := br.X - tl.X
	h := br.Y - tl.Y
	dx := w * expand
	dy := h * expand

	r := Rect{
		X:      tl.X - dx,
		Y:      tl.Y - dy,
		Width:  w + 2*dx,
		Height: h + 2*dy,
	}
	if !(r.Width > 0) || !(r.Height > 0) {
		return Rect{}, false
	}
	return r, true
}
