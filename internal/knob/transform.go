package knob

import "math"

// Box is the laid-out bounding box of a surface in window coordinates.
type Box struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CoordMode selects the window-to-surface mapping.
type CoordMode string

const (
	// CoordLegacy scales the box origin rather than the point.
	CoordLegacy CoordMode = "legacy"
	// CoordScaled scales the offset from the box origin.
	CoordScaled CoordMode = "scaled"
)

// ParseCoordMode returns the mode for a config value, defaulting to CoordLegacy.
func ParseCoordMode(value string) (CoordMode, bool) {
	switch CoordMode(value) {
	case "", CoordLegacy:
		return CoordLegacy, true
	case CoordScaled:
		return CoordScaled, true
	default:
		return CoordLegacy, false
	}
}

// WindowToLocal maps a window point into surface pixels with the legacy formula:
// the box origin is scaled by the intrinsic/box ratio and subtracted from the point.
func WindowToLocal(px, py float64, box Box, intrinsicW, intrinsicH float64) (float64, float64) {
	sx := ratio(intrinsicW, box.Width)
	sy := ratio(intrinsicH, box.Height)
	return px - box.Left*sx, py - box.Top*sy
}

// WindowToLocalScaled maps a window point into surface pixels by scaling its offset from the box origin.
func WindowToLocalScaled(px, py float64, box Box, intrinsicW, intrinsicH float64) (float64, float64) {
	sx := ratio(intrinsicW, box.Width)
	sy := ratio(intrinsicH, box.Height)
	return (px - box.Left) * sx, (py - box.Top) * sy
}

// ToLocal applies the mapping selected by mode.
func (m CoordMode) ToLocal(px, py float64, box Box, intrinsicW, intrinsicH float64) (float64, float64) {
	if m == CoordScaled {
		return WindowToLocalScaled(px, py, box, intrinsicW, intrinsicH)
	}
	return WindowToLocal(px, py, box, intrinsicW, intrinsicH)
}

// LocalToAngle returns the angle of (x,y) around (cx,cy) in [0, 2π).
// Zero points right of center and angles grow counter-clockwise on screen.
func LocalToAngle(x, y, cx, cy float64) float64 {
	dx := cx - x
	dy := cy - y
	angle := -(math.Atan2(dy, dx) - math.Pi)
	if angle >= fullTurn {
		angle -= fullTurn
	}
	return angle
}

// ratio returns intrinsic/laid-out, or 1 when the box has no extent.
func ratio(intrinsic, laidOut float64) float64 {
	if laidOut == 0 || intrinsic == 0 {
		return 1
	}
	return intrinsic / laidOut
}
