// Package mjpeg shows a knob surface to browsers as a multipart JPEG stream.
package mjpeg

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/frudas24/knobicon/internal/render"
)

const boundary = "frame"

// Display is a widget container that broadcasts every presented frame as JPEG.
type Display struct {
	mu          sync.RWMutex
	surface     *render.Surface
	quality     int
	logger      *slog.Logger
	subs        map[chan []byte]struct{}
	last        []byte
	minInterval time.Duration
	lastPush    time.Time
	trailing    *time.Timer
}

// NewDisplay creates a display with a minimum broadcast interval and JPEG quality.
func NewDisplay(minInterval time.Duration, quality int, logger *slog.Logger) *Display {
	if logger == nil {
		logger = slog.Default()
	}
	if quality <= 0 || quality > 100 {
		quality = render.DefaultJPEGQuality
	}
	return &Display{
		subs:        make(map[chan []byte]struct{}),
		minInterval: minInterval,
		quality:     quality,
		logger:      logger,
	}
}

// SetMinInterval sets the minimum interval between broadcast frames.
func (d *Display) SetMinInterval(interval time.Duration) {
	d.mu.Lock()
	d.minInterval = interval
	d.mu.Unlock()
}

// SetQuality sets the JPEG quality used by Present.
func (d *Display) SetQuality(quality int) {
	if quality <= 0 || quality > 100 {
		quality = render.DefaultJPEGQuality
	}
	d.mu.Lock()
	d.quality = quality
	d.mu.Unlock()
}

// Quality returns the JPEG quality used by Present.
func (d *Display) Quality() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.quality
}

// Mount binds the surface whose frames are shown.
func (d *Display) Mount(s *render.Surface) {
	d.mu.Lock()
	d.surface = s
	d.mu.Unlock()
}

// Mounted reports whether a surface is bound.
func (d *Display) Mounted() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.surface != nil
}

// Present encodes the completed frame on s and publishes it.
func (d *Display) Present(s *render.Surface) {
	jpg, err := s.EncodeJPEG(d.Quality())
	if err != nil {
		d.logger.Warn("encode knob frame", "error", err)
		return
	}
	d.Publish(jpg)
}

// Publish sends a JPEG frame to all subscribers with throttling.
// A throttled frame is kept and broadcast once the interval has passed.
func (d *Display) Publish(jpg []byte) {
	now := time.Now()
	frame := append([]byte(nil), jpg...)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = frame
	if wait := d.minInterval - now.Sub(d.lastPush); d.minInterval > 0 && wait > 0 {
		if d.trailing == nil {
			d.trailing = time.AfterFunc(wait, d.flushTrailing)
		}
		return
	}
	d.broadcastLocked(frame, now)
}

// Last returns a copy of the most recent frame.
func (d *Display) Last() []byte {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]byte(nil), d.last...)
}

// Close stops any pending trailing broadcast.
func (d *Display) Close() {
	d.mu.Lock()
	if d.trailing != nil {
		d.trailing.Stop()
		d.trailing = nil
	}
	d.mu.Unlock()
}

// Handler serves the MJPEG multipart stream to the HTTP client.
func (d *Display) Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+boundary)
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Pragma", "no-cache")

	fl, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch := d.subscribe()
	defer d.unsubscribe(ch)

	keep := time.NewTicker(1 * time.Second)
	defer keep.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case jpg := <-ch:
			if err := writePart(w, jpg); err != nil {
				return
			}
			fl.Flush()
		case <-keep.C:
			if j := d.Last(); len(j) > 0 {
				if err := writePart(w, j); err != nil {
					return
				}
				fl.Flush()
			}
		}
	}
}

// flushTrailing broadcasts the frame held back by throttling.
func (d *Display) flushTrailing() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.trailing == nil {
		return
	}
	d.trailing = nil
	d.broadcastLocked(d.last, time.Now())
}

// broadcastLocked replaces any unread frame in each subscriber with frame.
func (d *Display) broadcastLocked(frame []byte, now time.Time) {
	d.lastPush = now
	for ch := range d.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- frame:
		default:
		}
	}
}

// subscribe registers a new client and primes it with the last frame.
func (d *Display) subscribe() chan []byte {
	ch := make(chan []byte, 1)
	d.mu.Lock()
	d.subs[ch] = struct{}{}
	if len(d.last) > 0 {
		ch <- append([]byte(nil), d.last...)
	}
	d.mu.Unlock()
	return ch
}

// unsubscribe removes a client subscription.
func (d *Display) unsubscribe(ch chan []byte) {
	d.mu.Lock()
	delete(d.subs, ch)
	close(ch)
	d.mu.Unlock()
}

// writePart writes a single JPEG frame to the multipart response.
func writePart(w http.ResponseWriter, jpg []byte) error {
	_, _ = w.Write([]byte("\r\n--" + boundary + "\r\n"))
	_, _ = w.Write([]byte("Content-Type: image/jpeg\r\n"))
	_, _ = w.Write([]byte("Content-Length: " + strconv.Itoa(len(jpg)) + "\r\n\r\n"))
	_, err := w.Write(jpg)
	return err
}
