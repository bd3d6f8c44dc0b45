// Package testutil holds fakes shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"sync"

	"github.com/frudas24/knobicon/internal/assets"
	"github.com/frudas24/knobicon/internal/knob"
	"github.com/frudas24/knobicon/internal/render"
)

// TargetCall records a single control target call.
type TargetCall struct {
	Name  string
	X     float64
	Y     float64
	Box   knob.Box
	Angle float64
}

// FakeTarget records control calls against a real knob.
type FakeTarget struct {
	mu    sync.Mutex
	Knob  *knob.Knob
	Hit   bool
	Calls []TargetCall
}

// NewFakeTarget returns a target at 50% whose presses hit when hit is true.
func NewFakeTarget(hit bool) *FakeTarget {
	return &FakeTarget{Knob: knob.New(knob.DefaultPercent), Hit: hit}
}

// PointerDown records a press and starts a drag when Hit is set.
func (f *FakeTarget) PointerDown(px, py float64, box knob.Box) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, TargetCall{Name: "PointerDown", X: px, Y: py, Box: box})
	if f.Hit {
		f.Knob.Press()
	}
	return f.Hit
}

// PointerMove records a move and reports whether a drag is active.
func (f *FakeTarget) PointerMove(px, py float64, box knob.Box) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, TargetCall{Name: "PointerMove", X: px, Y: py, Box: box})
	return f.Knob.Dragging()
}

// PointerUp records a release.
func (f *FakeTarget) PointerUp() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, TargetCall{Name: "PointerUp"})
	f.Knob.Release()
}

// RotateTo records a rotation and applies it to the knob.
func (f *FakeTarget) RotateTo(angle float64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, TargetCall{Name: "RotateTo", Angle: angle})
	return f.Knob.RotateTo(angle)
}

// State returns the knob state.
func (f *FakeTarget) State() knob.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Knob.Snapshot()
}

// Names returns the recorded call names in order.
func (f *FakeTarget) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		out = append(out, c.Name)
	}
	return out
}

// FakeContainer records mounts and presented frames.
type FakeContainer struct {
	Mounted  *render.Surface
	Mounts   int
	Presents int
}

// Mount records the mounted surface.
func (f *FakeContainer) Mount(s *render.Surface) {
	f.Mounted = s
	f.Mounts++
}

// Present counts a completed frame.
func (f *FakeContainer) Present(_ *render.Surface) {
	f.Presents++
}

// StaticLoader serves in-memory images by source name.
type StaticLoader struct {
	Images map[string]image.Image
	Loads  []string
}

// Ensure StaticLoader implements the interface.
var _ assets.Loader = (*StaticLoader)(nil)

// Load returns the image registered for src.
func (l *StaticLoader) Load(ctx context.Context, src string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.Loads = append(l.Loads, src)
	img, ok := l.Images[src]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", src, os.ErrNotExist)
	}
	return img, nil
}

// Solid returns a w x h image filled with c.
func Solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}
