// Package widget assembles the knob engine, its raster surface, and asset readiness.
package widget

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/frudas24/knobicon/internal/assets"
	"github.com/frudas24/knobicon/internal/knob"
	"github.com/frudas24/knobicon/internal/render"
)

// ErrInvalidArgument is returned when construction arguments are missing or malformed.
var ErrInvalidArgument = errors.New("invalid argument")

// Phase is the readiness of a widget.
type Phase int

const (
	// PhaseUninitialized is a widget that has not been constructed by New.
	PhaseUninitialized Phase = iota
	// PhaseAssetsPending waits for both images.
	PhaseAssetsPending
	// PhaseReady has both images and a sized surface; drawing and hit testing are live.
	PhaseReady
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseAssetsPending:
		return "assets_pending"
	case PhaseReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Options configures a widget. Zero values select defaults.
type Options struct {
	// Width and Height fix the surface size; zero uses the knob image size.
	Width  int
	Height int
	// Percent is the initial value; nil means 50.
	Percent *float64
	// KnobRadius is the hit radius; zero means half the width.
	KnobRadius float64
	// PointerRadius is the pointer draw radius; zero means KnobRadius.
	PointerRadius float64
	// CoordMode selects the window-to-surface mapping.
	CoordMode knob.CoordMode
}

// Container hosts a widget's surface.
type Container interface {
	Mount(s *render.Surface)
}

// Presenter is implemented by containers that want each completed frame.
type Presenter interface {
	Present(s *render.Surface)
}

// Widget is a rotary control bound to a raster surface.
// It is not safe for concurrent use; callers serialize access.
type Widget struct {
	knobSrc    string
	pointerSrc string
	opts       Options

	phase     Phase
	knobImg   image.Image
	pointer   image.Image
	surface   *render.Surface
	geometry  knob.Geometry
	knob      *knob.Knob
	gestures  *knob.GestureState
	container Container
}

// New validates the image sources and returns a widget waiting for its assets.
func New(knobSrc, pointerSrc string, opts Options) (*Widget, error) {
	if knobSrc == "" {
		return nil, fmt.Errorf("%w: knob image source is required", ErrInvalidArgument)
	}
	if pointerSrc == "" {
		return nil, fmt.Errorf("%w: pointer image source is required", ErrInvalidArgument)
	}
	if opts.Width < 0 || opts.Height < 0 {
		return nil, fmt.Errorf("%w: size must be non-negative", ErrInvalidArgument)
	}
	if opts.KnobRadius < 0 || opts.PointerRadius < 0 {
		return nil, fmt.Errorf("%w: radius must be non-negative", ErrInvalidArgument)
	}
	mode, ok := knob.ParseCoordMode(string(opts.CoordMode))
	if !ok {
		return nil, fmt.Errorf("%w: unknown coord mode %q", ErrInvalidArgument, opts.CoordMode)
	}
	opts.CoordMode = mode

	percent := float64(knob.DefaultPercent)
	if opts.Percent != nil {
		if math.IsNaN(*opts.Percent) || math.IsInf(*opts.Percent, 0) {
			return nil, fmt.Errorf("%w: percent must be finite", ErrInvalidArgument)
		}
		percent = *opts.Percent
	}

	k := knob.New(percent)
	w := &Widget{
		knobSrc:    knobSrc,
		pointerSrc: pointerSrc,
		opts:       opts,
		surface:    render.NewSurface(opts.Width, opts.Height),
		knob:       k,
		gestures:   knob.NewGestureState(k),
	}
	w.phase = PhaseAssetsPending
	return w, nil
}

// KnobSource returns the knob image source.
func (w *Widget) KnobSource() string { return w.knobSrc }

// PointerSource returns the pointer image source.
func (w *Widget) PointerSource() string { return w.pointerSrc }

// Phase returns the readiness phase.
func (w *Widget) Phase() Phase { return w.phase }

// Ready reports whether drawing and hit testing are live.
func (w *Widget) Ready() bool { return w.phase == PhaseReady }

// Percent returns the current value.
func (w *Widget) Percent() float64 { return w.knob.Percent() }

// Angle returns the current angle in radians.
func (w *Widget) Angle() float64 { return w.knob.Angle() }

// Dragging reports whether a drag session is active.
func (w *Widget) Dragging() bool { return w.knob.Dragging() }

// CenterX returns the surface-local center X.
func (w *Widget) CenterX() float64 { return w.geometry.CenterX }

// CenterY returns the surface-local center Y.
func (w *Widget) CenterY() float64 { return w.geometry.CenterY }

// KnobRadius returns the hit radius.
func (w *Widget) KnobRadius() float64 { return w.geometry.Radius }

// Size returns the surface size.
func (w *Widget) Size() (int, int) { return w.surface.Size() }

// Surface returns the drawing surface.
func (w *Widget) Surface() *render.Surface { return w.surface }

// State returns a copy of the knob state.
func (w *Widget) State() knob.State { return w.knob.Snapshot() }

// Load fetches both images through l. A failure leaves the widget pending.
func (w *Widget) Load(ctx context.Context, l assets.Loader) error {
	knobImg, err := l.Load(ctx, w.knobSrc)
	if err != nil {
		return fmt.Errorf("load knob image %q: %w", w.knobSrc, err)
	}
	pointerImg, err := l.Load(ctx, w.pointerSrc)
	if err != nil {
		return fmt.Errorf("load pointer image %q: %w", w.pointerSrc, err)
	}
	w.SetKnobImage(knobImg)
	w.SetPointerImage(pointerImg)
	return nil
}

// SetKnobImage resolves the knob asset.
func (w *Widget) SetKnobImage(img image.Image) {
	if img == nil {
		return
	}
	w.knobImg = img
	w.assetsChanged()
}

// SetPointerImage resolves the pointer asset.
func (w *Widget) SetPointerImage(img image.Image) {
	if img == nil {
		return
	}
	w.pointer = img
	w.assetsChanged()
}

// Attach mounts the surface into c.
func (w *Widget) Attach(c Container) error {
	if c == nil {
		return fmt.Errorf("%w: container is required", ErrInvalidArgument)
	}
	w.container = c
	c.Mount(w.surface)
	w.present()
	return nil
}

// Resize resizes the surface and recomputes geometry.
func (w *Widget) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: size must be positive", ErrInvalidArgument)
	}
	w.opts.Width, w.opts.Height = width, height
	w.surface.Resize(width, height)
	w.geometry = knob.NewGeometry(width, height, w.opts.KnobRadius)
	if w.Ready() {
		w.surface.SetPointerRadius(w.pointerRadius())
		w.knob.Redraw()
	}
	return nil
}

// OnRotate registers a change listener and returns its disposer.
func (w *Widget) OnRotate(fn knob.Listener) func() {
	return w.knob.OnRotate(fn)
}

// RotateTo drives the knob programmatically and reports whether the update was accepted.
func (w *Widget) RotateTo(angle float64) bool {
	return w.knob.RotateTo(angle)
}

// PointerDown handles a press at window coordinates and reports whether it was consumed.
func (w *Widget) PointerDown(px, py float64, box knob.Box) bool {
	if !w.Ready() {
		return false
	}
	x, y := w.toLocal(px, py, box)
	return w.gestures.HandleDown(x, y, w.geometry)
}

// PointerMove handles a move at window coordinates and reports whether it was consumed.
func (w *Widget) PointerMove(px, py float64, box knob.Box) bool {
	if !w.Ready() {
		return false
	}
	x, y := w.toLocal(px, py, box)
	return w.gestures.HandleMove(x, y, w.geometry)
}

// PointerUp ends any drag session.
func (w *Widget) PointerUp() {
	w.gestures.HandleUp()
}

// assetsChanged enters PhaseReady once both images are present, or redraws after a reload.
func (w *Widget) assetsChanged() {
	if w.knobImg == nil || w.pointer == nil {
		return
	}
	w.surface.SetImages(w.knobImg, w.pointer)
	if w.phase != PhaseReady {
		w.becomeReady()
		return
	}
	w.knob.Redraw()
}

// becomeReady performs the initial sizing and the first draw.
func (w *Widget) becomeReady() {
	width, height := w.opts.Width, w.opts.Height
	b := w.knobImg.Bounds()
	if width == 0 {
		width = b.Dx()
	}
	if height == 0 {
		height = b.Dy()
	}
	if sw, sh := w.surface.Size(); sw != width || sh != height {
		w.surface.Resize(width, height)
	}
	w.geometry = knob.NewGeometry(width, height, w.opts.KnobRadius)
	w.surface.SetPointerRadius(w.pointerRadius())

	w.phase = PhaseReady
	w.knob.SetCanvas(&frameCanvas{w: w})
	w.knob.Redraw()
}

// pointerRadius resolves the pointer draw radius against the current geometry.
func (w *Widget) pointerRadius() float64 {
	if w.opts.PointerRadius > 0 {
		return w.opts.PointerRadius
	}
	return w.geometry.Radius
}

// toLocal maps window coordinates into surface pixels.
func (w *Widget) toLocal(px, py float64, box knob.Box) (float64, float64) {
	width, height := w.surface.Size()
	return w.opts.CoordMode.ToLocal(px, py, box, float64(width), float64(height))
}

// present hands a completed frame to a presenting container.
func (w *Widget) present() {
	if !w.Ready() {
		return
	}
	if p, ok := w.container.(Presenter); ok {
		p.Present(w.surface)
	}
}

// frameCanvas draws onto the surface and presents the frame once the pointer is drawn.
type frameCanvas struct {
	w *Widget
}

// Clear erases the surface.
func (c *frameCanvas) Clear() { c.w.surface.Clear() }

// DrawKnob draws the knob graphic.
func (c *frameCanvas) DrawKnob() { c.w.surface.DrawKnob() }

// DrawPointer draws the pointer graphic and presents the frame.
func (c *frameCanvas) DrawPointer(rotation float64) {
	c.w.surface.DrawPointer(rotation)
	c.w.present()
}
