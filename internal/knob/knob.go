package knob

import "math"

// DefaultPercent is the initial value when none is supplied.
const DefaultPercent = 50

// MaxJump is the largest accepted percentage change per rotation, exclusive.
const MaxJump = 15

// Canvas receives redraw commands for the current rotation.
type Canvas interface {
	Clear()
	DrawKnob()
	DrawPointer(rotation float64)
}

// State is a read-only view of the knob.
type State struct {
	Percent  float64 `json:"percent"`
	Angle    float64 `json:"angle"`
	Dragging bool    `json:"dragging"`
}

// Listener receives the new percentage after an accepted rotation.
type Listener func(percent float64)

type listenerEntry struct {
	id int
	fn Listener
}

// Knob owns the rotation state and fans out changes.
// It is not safe for concurrent use; callers serialize access.
type Knob struct {
	percent   float64
	angle     float64
	dragging  bool
	canvas    Canvas
	listeners []listenerEntry
	nextID    int
}

// New returns a knob at the given percentage, clamped to [0,100].
func New(percent float64) *Knob {
	k := &Knob{}
	k.setPercent(percent)
	return k
}

// Percent returns the current percentage.
func (k *Knob) Percent() float64 {
	return k.percent
}

// Angle returns the angle derived from the current percentage.
func (k *Knob) Angle() float64 {
	return k.angle
}

// Dragging reports whether a drag session is active.
func (k *Knob) Dragging() bool {
	return k.dragging
}

// Snapshot returns a copy of the current state.
func (k *Knob) Snapshot() State {
	return State{Percent: k.percent, Angle: k.angle, Dragging: k.dragging}
}

// SetCanvas sets the redraw target; nil disables drawing.
func (k *Knob) SetCanvas(c Canvas) {
	k.canvas = c
}

// OnRotate registers fn and returns a function that removes it.
func (k *Knob) OnRotate(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	k.nextID++
	id := k.nextID
	k.listeners = append(k.listeners, listenerEntry{id: id, fn: fn})
	return func() { k.removeListener(id) }
}

// RotateTo moves the knob toward angle and reports whether the update was accepted.
// Updates that would move the percentage by MaxJump or more are dropped,
// as are NaN and infinite angles.
func (k *Knob) RotateTo(angle float64) bool {
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return false
	}
	next := AngleToPercent(angle)
	if math.Abs(next-k.percent) >= MaxJump {
		return false
	}

	k.setPercent(next)
	k.notify()
	k.Redraw()
	return true
}

// Redraw erases the canvas and draws the knob with the pointer at the current angle.
func (k *Knob) Redraw() {
	if k.canvas == nil {
		return
	}
	k.canvas.Clear()
	k.canvas.DrawKnob()
	k.canvas.DrawPointer(PointerRotation(k.angle))
}

// Press starts a drag session.
func (k *Knob) Press() {
	k.dragging = true
}

// Release ends any drag session.
func (k *Knob) Release() {
	k.dragging = false
}

// setPercent stores a clamped percentage and re-derives the angle from it.
func (k *Knob) setPercent(percent float64) {
	k.percent = clampPercent(percent)
	k.angle = PercentToAngle(k.percent)
}

// notify invokes listeners in registration order.
func (k *Knob) notify() {
	// Copy so a listener may unregister itself.
	entries := append([]listenerEntry(nil), k.listeners...)
	for _, e := range entries {
		e.fn(k.percent)
	}
}

// removeListener drops the listener with id, if still registered.
func (k *Knob) removeListener(id int) {
	for i, e := range k.listeners {
		if e.id == id {
			k.listeners = append(k.listeners[:i], k.listeners[i+1:]...)
			return
		}
	}
}
