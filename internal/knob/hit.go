package knob

import "math"

// Geometry is the surface-local hit area of the knob.
type Geometry struct {
	CenterX float64
	CenterY float64
	Radius  float64
}

// NewGeometry derives geometry from a surface size; a non-positive radius defaults to half the width.
func NewGeometry(width, height int, radius float64) Geometry {
	if radius <= 0 {
		radius = float64(width) / 2
	}
	return Geometry{
		CenterX: float64(width) / 2,
		CenterY: float64(height) / 2,
		Radius:  math.Max(radius, 0),
	}
}

// Contains reports whether (x,y) lies strictly inside the knob radius.
func (g Geometry) Contains(x, y float64) bool {
	return IsInside(x, y, g.CenterX, g.CenterY, g.Radius)
}

// AngleAt returns the drag angle for a surface-local point.
func (g Geometry) AngleAt(x, y float64) float64 {
	return LocalToAngle(x, y, g.CenterX, g.CenterY)
}

// IsInside reports whether the distance from (x,y) to (cx,cy) is strictly less than radius.
func IsInside(x, y, cx, cy, radius float64) bool {
	return math.Hypot(x-cx, y-cy) < radius
}
