package app

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/frudas24/knobicon/internal/web"
)

// RegisterRoutes wires API and static handlers onto the mux.
func (a *App) RegisterRoutes(mux *http.ServeMux, staticDir string) {
	if staticDir == "" {
		staticDir = filepath.Join("internal", "web", "static")
	}

	mux.HandleFunc("/login", a.handleLogin)
	mux.HandleFunc("/logout", a.handleLogout)
	mux.HandleFunc("/api/state", a.handleState)
	mux.HandleFunc("/api/rotate", a.handleRotate)
	mux.HandleFunc("/api/resize", a.handleResize)
	mux.HandleFunc("/api/config", a.handleConfig)
	mux.HandleFunc("/snapshot.png", a.handleSnapshot)
	mux.HandleFunc("/mjpeg/knob", a.handleMJPEG)
	mux.Handle("/ws/control", a.Control())
	mux.HandleFunc("/favicon.ico", handleFavicon)

	mux.Handle("/", staticFileServer(staticDir, a.logger))
}

type loginRequest struct {
	Password string `json:"password"`
}

type rotateRequest struct {
	Angle *float64 `json:"angle"`
}

type resizeRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type configRequest struct {
	MJPEGIntervalMs *int `json:"mjpegIntervalMs"`
	MJPEGQuality    *int `json:"mjpegQuality"`
}

type configResponse struct {
	Applied         bool `json:"applied"`
	MJPEGIntervalMs int  `json:"mjpegIntervalMs"`
	MJPEGQuality    int  `json:"mjpegQuality"`
}

type stateResponse struct {
	Percent          float64 `json:"percent"`
	Angle            float64 `json:"angle"`
	Dragging         bool    `json:"dragging"`
	Phase            string  `json:"phase"`
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	CenterX          float64 `json:"centerX"`
	CenterY          float64 `json:"centerY"`
	KnobRadius       float64 `json:"knobRadius"`
	InputEnabled     bool    `json:"inputEnabled"`
	Authenticated    bool    `json:"authenticated"`
	PasswordMode     bool    `json:"passwordMode"`
	ControlConnected bool    `json:"controlConnected"`
}

type rotateResponse struct {
	Accepted bool          `json:"accepted"`
	State    stateResponse `json:"state"`
}

// handleLogin authenticates the session.
func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if !a.session.Authenticate(req.Password) {
		a.logger.Warn("login failed", "remote", r.RemoteAddr)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, map[string]bool{"ok": true})
}

// handleLogout clears authentication state.
func (a *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	a.session.Logout()
	writeJSON(w, map[string]bool{"ok": true})
}

// handleState returns the knob and session state.
func (a *App) handleState(w http.ResponseWriter, _ *http.Request) {
	if !a.requireAuth(w) {
		return
	}
	writeJSON(w, a.stateResponse())
}

// handleRotate drives the knob to an angle in radians.
func (a *App) handleRotate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !a.requireAuth(w) {
		return
	}
	var req rotateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Angle == nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	accepted := false
	if a.session.InputEnabled() {
		accepted = a.RotateTo(*req.Angle)
	}
	writeJSON(w, rotateResponse{Accepted: accepted, State: a.stateResponse()})
}

// handleResize resizes the knob surface.
func (a *App) handleResize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !a.requireAuth(w) {
		return
	}
	var req resizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := a.Resize(req.Width, req.Height); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, a.stateResponse())
}

// handleConfig updates runtime MJPEG settings.
func (a *App) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !a.requireAuth(w) {
		return
	}
	if r.Method == http.MethodGet {
		writeJSON(w, a.configResponse(false))
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req configRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if req.MJPEGIntervalMs != nil && *req.MJPEGIntervalMs < 0 {
		http.Error(w, "mjpegIntervalMs must be >= 0", http.StatusBadRequest)
		return
	}
	if req.MJPEGQuality != nil && (*req.MJPEGQuality <= 0 || *req.MJPEGQuality > 100) {
		http.Error(w, "mjpegQuality must be 1-100", http.StatusBadRequest)
		return
	}

	a.mu.Lock()
	if req.MJPEGIntervalMs != nil {
		a.cfg.MJPEGIntervalMs = *req.MJPEGIntervalMs
		a.display.SetMinInterval(time.Duration(a.cfg.MJPEGIntervalMs) * time.Millisecond)
	}
	if req.MJPEGQuality != nil {
		a.cfg.MJPEGQuality = *req.MJPEGQuality
		a.display.SetQuality(a.cfg.MJPEGQuality)
	}
	a.mu.Unlock()

	writeJSON(w, a.configResponse(true))
}

// handleSnapshot serves the current frame as PNG.
func (a *App) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	if !a.requireAuth(w) {
		return
	}
	png, err := a.Snapshot()
	if err != nil {
		if errors.Is(err, errNotReady) {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "encode failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// handleMJPEG streams the knob display.
func (a *App) handleMJPEG(w http.ResponseWriter, r *http.Request) {
	if !a.requireAuth(w) {
		return
	}
	a.display.Handler(w, r)
}

// requireAuth returns false and writes an error if the session is not authenticated.
func (a *App) requireAuth(w http.ResponseWriter) bool {
	if !a.session.IsAuthenticated() {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

// stateResponse collects widget and session state under the app lock.
func (a *App) stateResponse() stateResponse {
	a.mu.Lock()
	st := a.widget.State()
	width, height := a.widget.Size()
	resp := stateResponse{
		Percent:    st.Percent,
		Angle:      st.Angle,
		Dragging:   st.Dragging,
		Phase:      a.widget.Phase().String(),
		Width:      width,
		Height:     height,
		CenterX:    a.widget.CenterX(),
		CenterY:    a.widget.CenterY(),
		KnobRadius: a.widget.KnobRadius(),
	}
	a.mu.Unlock()

	snap := a.session.Snapshot()
	resp.InputEnabled = snap.InputEnabled
	resp.Authenticated = snap.Authenticated
	resp.PasswordMode = snap.PasswordMode
	resp.ControlConnected = a.control.Connected()
	return resp
}

// configResponse reports the runtime MJPEG settings.
func (a *App) configResponse(applied bool) configResponse {
	a.mu.Lock()
	defer a.mu.Unlock()
	return configResponse{
		Applied:         applied,
		MJPEGIntervalMs: a.cfg.MJPEGIntervalMs,
		MJPEGQuality:    a.cfg.MJPEGQuality,
	}
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// staticFileServer returns a handler for static assets, preferring disk then embed.
func staticFileServer(staticDir string, logger *slog.Logger) http.Handler {
	if staticDir != "" {
		if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
			return http.FileServer(http.Dir(staticDir))
		}
	}

	embedded, err := web.StaticFS()
	if err != nil {
		logger.Error("static assets unavailable", "error", err)
		return http.NotFoundHandler()
	}
	return http.FileServer(http.FS(embedded))
}

// handleFavicon avoids noisy 404s for the default browser request.
func handleFavicon(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
