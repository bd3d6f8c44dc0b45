package mjpeg

import (
	"bytes"
	"context"
	"image/color"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/frudas24/knobicon/internal/render"
	"github.com/frudas24/knobicon/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threadSafeRecorder is a minimal http.ResponseWriter + http.Flusher that is safe to use across goroutines.
type threadSafeRecorder struct {
	mu     sync.Mutex
	header http.Header
	buf    bytes.Buffer
	status int
}

// Header returns the response headers.
func (r *threadSafeRecorder) Header() http.Header {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.header == nil {
		r.header = make(http.Header)
	}
	return r.header
}

// Write appends bytes to the response body.
func (r *threadSafeRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.buf.Write(p)
}

// WriteHeader sets the HTTP status code.
func (r *threadSafeRecorder) WriteHeader(statusCode int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = statusCode
}

// Flush implements http.Flusher.
func (r *threadSafeRecorder) Flush() {}

// bodyBytes returns a copy of the current body as bytes.
func (r *threadSafeRecorder) bodyBytes() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.buf.Bytes()...)
}

// frame returns a 2x2 JPEG of color c.
func frame(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	jpg, err := render.EncodeJPEG(testutil.Solid(2, 2, c), 60)
	require.NoError(t, err)
	return jpg
}

// TestPresent_PublishesSurface validates presenting a drawn surface produces a frame.
func TestPresent_PublishesSurface(t *testing.T) {
	t.Parallel()

	s := render.NewSurface(8, 8)
	s.SetImages(testutil.Solid(2, 2, color.RGBA{B: 255, A: 255}), nil)
	s.DrawKnob()

	d := NewDisplay(0, 0, nil)
	d.Mount(s)
	assert.True(t, d.Mounted())

	d.Present(s)
	last := d.Last()
	if len(last) == 0 {
		t.Fatal("expected a published frame")
	}
	assert.Equal(t, []byte{0xFF, 0xD8}, last[:2])
}

// TestDisplayHandlerWritesFrame validates the handler writes a multipart frame when a last frame is available.
func TestDisplayHandlerWritesFrame(t *testing.T) {
	t.Parallel()

	d := NewDisplay(0, 0, nil)
	jpg := frame(t, color.RGBA{G: 255, A: 255})
	d.Publish(jpg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://example/mjpeg/knob", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}

	rec := &threadSafeRecorder{}
	done := make(chan struct{})
	go func() {
		d.Handler(rec, req)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return bytes.Contains(rec.bodyBytes(), []byte("--"+boundary))
	}, 500*time.Millisecond, 5*time.Millisecond)

	cancel()
	<-done

	assert.Equal(t, "multipart/x-mixed-replace; boundary="+boundary, rec.Header().Get("Content-Type"))
	body := rec.bodyBytes()
	assert.True(t, bytes.Contains(body, []byte("Content-Type: image/jpeg")))
	assert.True(t, bytes.Contains(body, []byte("Content-Length:")))
	assert.True(t, bytes.Contains(body, jpg))
}

// TestDisplayThrottleTrailing ensures a throttled frame is held back and then broadcast.
func TestDisplayThrottleTrailing(t *testing.T) {
	t.Parallel()

	d := NewDisplay(100*time.Millisecond, 0, nil)
	defer d.Close()
	ch := d.subscribe()
	defer d.unsubscribe(ch)

	jpgA := frame(t, color.RGBA{B: 255, A: 255})
	jpgB := frame(t, color.RGBA{R: 255, G: 255, A: 255})

	d.Publish(jpgA)
	select {
	case got := <-ch:
		if !bytes.Equal(got, jpgA) {
			t.Fatalf("expected first publish to broadcast jpgA")
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timed out waiting for first publish")
	}

	d.Publish(jpgB)
	select {
	case <-ch:
		t.Fatal("expected throttled publish to not broadcast immediately")
	case <-time.After(20 * time.Millisecond):
	}
	assert.Equal(t, jpgB, d.Last())

	select {
	case got := <-ch:
		if !bytes.Equal(got, jpgB) {
			t.Fatalf("expected trailing broadcast of jpgB")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for trailing broadcast")
	}
}

// TestDisplayPublishConcurrent does a basic concurrent publish/subscribe churn to help catch races under -race.
func TestDisplayPublishConcurrent(t *testing.T) {
	t.Parallel()

	d := NewDisplay(0, 0, nil)
	jpg := frame(t, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				d.Publish(jpg)
			}
		}()
	}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				ch := d.subscribe()
				select {
				case <-ch:
				default:
				}
				d.unsubscribe(ch)
			}
		}()
	}
	wg.Wait()
}
