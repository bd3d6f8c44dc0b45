package knob

// GestureState turns pointer samples into drag sessions on a Knob.
type GestureState struct {
	knob *Knob
}

// NewGestureState returns a drag controller bound to k.
func NewGestureState(k *Knob) *GestureState {
	return &GestureState{knob: k}
}

// HandleDown arms a drag session when (x,y) hits the knob and reports whether the press was consumed.
func (g *GestureState) HandleDown(x, y float64, geom Geometry) bool {
	if !geom.Contains(x, y) {
		return false
	}
	g.knob.Press()
	return true
}

// HandleMove rotates toward (x,y) while dragging and reports whether the move was consumed.
// The radius is not re-checked; a drag keeps going outside the knob.
func (g *GestureState) HandleMove(x, y float64, geom Geometry) bool {
	if !g.knob.Dragging() {
		return false
	}
	g.knob.RotateTo(geom.AngleAt(x, y))
	return true
}

// HandleUp ends the drag session wherever the release happened.
func (g *GestureState) HandleUp() {
	g.knob.Release()
}
