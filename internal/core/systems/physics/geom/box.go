package geom

import (
	"fmt"
	"math"

	"github.com/zeusync/physics2d/internal/core/systems/physics"
)

// Box is an axis-aligned box anchored at its minimum corner.
type Box struct {
	Position Vec2
	Width    float64
	Height   float64
}

// NewBox rejects negative or non-finite extents.
func NewBox(position Vec2, width, height float64) (Box, error) {
	if width < 0 || height < 0 || math.IsNaN(width) || math.IsNaN(height) ||
		math.IsInf(width, 0) || math.IsInf(height, 0) {
		return Box{}, fmt.Errorf("%w: extents %gx%g", physics.ErrInvalidBox, width, height)
	}
	return Box{Position: position, Width: width, Height: height}, nil
}

// BoxFromPoints returns the smallest box containing a and b.
func BoxFromPoints(a, b Vec2) Box {
	lo, hi := MinVec(a, b), MaxVec(a, b)
	return Box{Position: lo, Width: hi[0] - lo[0], Height: hi[1] - lo[1]}
}

func (b Box) Min() Vec2 { return b.Position }
func (b Box) Max() Vec2 { return Vec2{b.Position[0] + b.Width, b.Position[1] + b.Height} }

func (b Box) Center() Vec2 {
	return Vec2{b.Position[0] + b.Width*0.5, b.Position[1] + b.Height*0.5}
}

func (b Box) Area() float64 {
	return b.Width * b.Height
}

// Merge returns the smallest box enclosing b and o.
func (b Box) Merge(o Box) Box {
	return BoxFromPoints(MinVec(b.Min(), o.Min()), MaxVec(b.Max(), o.Max()))
}

// MergedArea is Merge(o).Area() without building the box.
func (b Box) MergedArea(o Box) float64 {
	bMax, oMax := b.Max(), o.Max()
	w := math.Max(bMax[0], oMax[0]) - math.Min(b.Position[0], o.Position[0])
	h := math.Max(bMax[1], oMax[1]) - math.Min(b.Position[1], o.Position[1])
	return w * h
}

// Fatten scales both extents by factor, keeping the center fixed.
func (b Box) Fatten(factor float64) Box {
	w, h := b.Width*factor, b.Height*factor
	c := b.Center()
	return Box{Position: Vec2{c[0] - w*0.5, c[1] - h*0.5}, Width: w, Height: h}
}

// Encloses reports whether o lies entirely inside b, borders included.
func (b Box) Encloses(o Box) bool {
	bMax, oMax := b.Max(), o.Max()
	return b.Position[0] <= o.Position[0] && b.Position[1] <= o.Position[1] &&
		bMax[0] >= oMax[0] && bMax[1] >= oMax[1]
}

// Intersects reports whether b and o overlap; touching borders count.
func (b Box) Intersects(o Box) bool {
	bMax, oMax := b.Max(), o.Max()
	return b.Position[0] <= oMax[0] && bMax[0] >= o.Position[0] &&
		b.Position[1] <= oMax[1] && bMax[1] >= o.Position[1]
}

// Contains reports whether p lies inside b.
func (b Box) Contains(p Vec2) bool {
	bMax := b.Max()
	return p[0] >= b.Position[0] && p[0] <= bMax[0] && p[1] >= b.Position[1] && p[1] <= bMax[1]
}

func (b Box) String() string {
	return fmt.Sprintf("Box{(%g, %g) %gx%g}", b.Position[0], b.Position[1], b.Width, b.Height)
}
