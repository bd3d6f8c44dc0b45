// Package app hosts a knob widget behind HTTP, the control websocket, and the MJPEG display.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/frudas24/knobicon/internal/assets"
	"github.com/frudas24/knobicon/internal/config"
	"github.com/frudas24/knobicon/internal/control"
	"github.com/frudas24/knobicon/internal/knob"
	"github.com/frudas24/knobicon/internal/mjpeg"
	"github.com/frudas24/knobicon/internal/session"
	"github.com/frudas24/knobicon/internal/widget"
)

// pathResolver maps an image source to the file it is read from.
type pathResolver interface {
	Path(src string) string
}

// App serializes every widget call under one mutex and fans state out to clients.
type App struct {
	mu      sync.Mutex
	cfg     config.Config
	session *session.Session
	widget  *widget.Widget
	loader  assets.Loader
	display *mjpeg.Display
	control *control.Server
	logger  *slog.Logger
	dispose func()
}

// New creates a new application with its dependencies wired.
func New(cfg config.Config, sess *session.Session, w *widget.Widget, loader assets.Loader, display *mjpeg.Display, logger *slog.Logger) (*App, error) {
	if sess == nil {
		return nil, errors.New("session is required")
	}
	if w == nil {
		return nil, errors.New("widget is required")
	}
	if loader == nil {
		return nil, errors.New("asset loader is required")
	}
	if display == nil {
		return nil, errors.New("display is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	app := &App{
		cfg:     cfg,
		session: sess,
		widget:  w,
		loader:  loader,
		display: display,
		logger:  logger,
	}

	ctrl, err := control.NewServer(sess, app, logger.With("component", "control"))
	if err != nil {
		return nil, err
	}
	app.control = ctrl
	app.dispose = w.OnRotate(app.onRotate)
	return app, nil
}

// Start mounts the widget into the display and loads its images.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.widget.Attach(a.display); err != nil {
		return err
	}
	if err := a.widget.Load(ctx, a.loader); err != nil {
		return err
	}
	width, height := a.widget.Size()
	a.logger.Info("knob ready",
		"width", width,
		"height", height,
		"percent", a.widget.Percent(),
		"radius", a.widget.KnobRadius())
	return nil
}

// Stop detaches the change listener and stops pending frame broadcasts.
func (a *App) Stop() {
	a.mu.Lock()
	if a.dispose != nil {
		a.dispose()
		a.dispose = nil
	}
	a.mu.Unlock()
	a.display.Close()
}

// WatchAssets reloads images reported by changes until the channel closes.
func (a *App) WatchAssets(ctx context.Context, changes <-chan string) {
	for path := range changes {
		if err := a.ReloadAsset(ctx, path); err != nil {
			a.logger.Warn("asset reload failed", "path", path, "error", err)
			continue
		}
		a.logger.Info("asset reloaded", "path", path)
	}
}

// ReloadAsset re-decodes whichever image is read from path and redraws.
func (a *App) ReloadAsset(ctx context.Context, path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	path = filepath.Clean(path)
	matched := false
	if a.sourcePath(a.widget.KnobSource()) == path {
		img, err := a.loader.Load(ctx, a.widget.KnobSource())
		if err != nil {
			return fmt.Errorf("reload knob image: %w", err)
		}
		a.widget.SetKnobImage(img)
		matched = true
	}
	if a.sourcePath(a.widget.PointerSource()) == path {
		img, err := a.loader.Load(ctx, a.widget.PointerSource())
		if err != nil {
			return fmt.Errorf("reload pointer image: %w", err)
		}
		a.widget.SetPointerImage(img)
		matched = true
	}
	if !matched {
		return fmt.Errorf("%s is not a widget image", path)
	}
	return nil
}

// PointerDown forwards a press to the widget.
func (a *App) PointerDown(px, py float64, box knob.Box) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.widget.PointerDown(px, py, box)
}

// PointerMove forwards a move to the widget.
func (a *App) PointerMove(px, py float64, box knob.Box) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.widget.PointerMove(px, py, box)
}

// PointerUp forwards a release to the widget.
func (a *App) PointerUp() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.widget.PointerUp()
}

// RotateTo rotates the widget programmatically.
func (a *App) RotateTo(angle float64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.widget.RotateTo(angle)
}

// State returns the knob state.
func (a *App) State() knob.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.widget.State()
}

// Resize resizes the widget surface.
func (a *App) Resize(width, height int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.widget.Resize(width, height)
}

// Snapshot encodes the current frame as PNG.
func (a *App) Snapshot() ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.widget.Ready() {
		return nil, errNotReady
	}
	return a.widget.Surface().EncodePNG()
}

// Control returns the control websocket handler.
func (a *App) Control() *control.Server {
	return a.control
}

// Display returns the MJPEG display.
func (a *App) Display() *mjpeg.Display {
	return a.display
}

var errNotReady = errors.New("knob assets are not loaded")

// onRotate runs inside an accepted rotation, with a.mu held.
// The percent push is only queued here; the control server writes it.
func (a *App) onRotate(percent float64) {
	a.logger.Debug("knob rotated", "percent", percent)
	a.control.BroadcastPercent(percent)
}

// sourcePath returns the file a source is read from.
func (a *App) sourcePath(src string) string {
	if r, ok := a.loader.(pathResolver); ok {
		return filepath.Clean(r.Path(src))
	}
	return filepath.Clean(src)
}
