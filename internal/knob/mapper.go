// Package knob implements the rotary control state and geometry engine.
package knob

import "math"

const (
	// MinAngle is the absolute angle of 0%.
	MinAngle = 5 * math.Pi / 4
	// MaxAngle is the absolute angle of 100%.
	MaxAngle = 7 * math.Pi / 4
	// Sweep is the angular span of the active range.
	Sweep = 3 * math.Pi / 2

	// deadZoneMid splits the dead zone between the two boundaries.
	deadZoneMid = 3 * math.Pi / 2
	fullTurn    = 2 * math.Pi
)

// AngleToPercent maps an absolute angle in radians to a percentage in [0,100].
// Angles inside the dead zone snap to the nearer boundary.
func AngleToPercent(angle float64) float64 {
	angle = normalizeAngle(angle)

	if angle > MinAngle && angle < MaxAngle {
		if angle-deadZoneMid < 0 {
			angle = MinAngle
		} else {
			angle = MaxAngle
		}
	}
	if angle >= MaxAngle && angle < fullTurn {
		angle -= fullTurn
	}

	fraction := (Sweep - (angle + math.Pi/4)) / Sweep
	return clampPercent(scaleRounded(fraction))
}

// PercentToAngle maps a percentage to its absolute angle after clamping to [0,100].
func PercentToAngle(percent float64) float64 {
	percent = clampPercent(percent)
	return MinAngle - Sweep*percent/100
}

// PointerRotation returns the rotation applied to the pointer graphic for angle.
func PointerRotation(angle float64) float64 {
	return -angle + math.Pi/2
}

// normalizeAngle folds any finite angle into [0, 2π).
func normalizeAngle(angle float64) float64 {
	if angle >= 0 && angle < fullTurn {
		return angle
	}
	angle = math.Mod(angle, fullTurn)
	if angle < 0 {
		angle += fullTurn
	}
	if angle >= fullTurn {
		angle = 0
	}
	return angle
}

// scaleRounded rounds a fraction to two decimals and scales it to a percentage.
// Rounding happens on the scaled value so whole percentages stay exact.
func scaleRounded(fraction float64) float64 {
	return math.Round(fraction * 100)
}

// clampPercent bounds a value to [0,100].
func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
