package control

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/frudas24/knobicon/internal/knob"
	"github.com/frudas24/knobicon/internal/session"
	"github.com/gorilla/websocket"
)

const writeWait = 2 * time.Second

// Target is the knob driven by control input. Implementations serialize calls.
type Target interface {
	PointerDown(px, py float64, box knob.Box) bool
	PointerMove(px, py float64, box knob.Box) bool
	PointerUp()
	RotateTo(angle float64) bool
	State() knob.State
}

// Server handles websocket control input.
type Server struct {
	mu       sync.Mutex
	writeMu  sync.Mutex
	upgrader websocket.Upgrader
	session  *session.Session
	target   Target
	logger   *slog.Logger
	conn     *websocket.Conn
	// pending holds the newest percent not yet written to conn.
	pending  *float64
	wake     chan struct{}
}

// NewServer creates a control websocket server.
func NewServer(sess *session.Session, target Target, logger *slog.Logger) (*Server, error) {
	if sess == nil {
		return nil, errors.New("session is required")
	}
	if target == nil {
		return nil, errors.New("control target is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		session: sess,
		target:  target,
		logger:  logger,
		wake:    make(chan struct{}, 1),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}, nil
}

// ServeHTTP upgrades the connection and processes control messages.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !s.session.IsAuthenticated() {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	if err := s.acceptConn(conn); err != nil {
		s.logger.Warn("control connection rejected", "remote", r.RemoteAddr, "error", err)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	done := make(chan struct{})
	defer func() {
		close(done)
		s.cleanupConn(conn)
	}()
	go s.pushLoop(conn, done)
	s.logger.Debug("control connected", "remote", r.RemoteAddr)

	if err := s.sendState(conn, false); err != nil {
		return
	}
	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		consumed, err := s.handleMessage(msg)
		if err != nil {
			s.logger.Warn("control message failed", "type", msg.T, "error", err)
			return
		}
		// A percent change caused by this message goes out before its state reply.
		if err := s.flushPercent(conn); err != nil {
			return
		}
		if err := s.sendState(conn, consumed); err != nil {
			return
		}
	}
}

// BroadcastPercent queues a percent update for the active connection, if any.
// It never writes to the socket, so callers may hold their own locks.
// Only the newest queued value is delivered.
func (s *Server) BroadcastPercent(percent float64) {
	s.mu.Lock()
	if s.conn == nil {
		s.mu.Unlock()
		return
	}
	s.pending = &percent
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Connected reports whether a control connection is active.
func (s *Server) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// acceptConn ensures only one active control connection exists.
func (s *Server) acceptConn(conn *websocket.Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return fmt.Errorf("control connection already active")
	}
	s.conn = conn
	return nil
}

// cleanupConn clears the active connection and ends any drag it left behind.
func (s *Server) cleanupConn(conn *websocket.Conn) {
	s.target.PointerUp()
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
		s.pending = nil
	}
	s.mu.Unlock()
	_ = conn.Close()
}

// pushLoop writes queued percent updates to conn until done is closed.
func (s *Server) pushLoop(conn *websocket.Conn, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-s.wake:
			if err := s.flushPercent(conn); err != nil {
				s.logger.Debug("percent push failed", "error", err)
			}
		}
	}
}

// flushPercent writes the queued percent, if any.
// writeMu is held across the take and the write so a concurrent flush cannot reorder them.
func (s *Server) flushPercent(conn *websocket.Conn) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	p := s.pending
	s.pending = nil
	s.mu.Unlock()
	if p == nil {
		return nil
	}
	return s.writeLocked(conn, PercentMessage{T: MsgPercent, Percent: *p})
}

// handleMessage dispatches a single control message and reports whether the knob consumed it.
func (s *Server) handleMessage(msg Message) (bool, error) {
	switch msg.T {
	case MsgDown:
		if !s.session.InputEnabled() {
			return false, nil
		}
		return s.target.PointerDown(msg.X, msg.Y, msg.box()), nil
	case MsgMove:
		if !s.session.InputEnabled() {
			return false, nil
		}
		return s.target.PointerMove(msg.X, msg.Y, msg.box()), nil
	case MsgUp:
		s.target.PointerUp()
		return false, nil
	case MsgRotate:
		if msg.Angle == nil {
			return false, fmt.Errorf("rotate: angle is required")
		}
		if !s.session.InputEnabled() {
			return false, nil
		}
		return s.target.RotateTo(*msg.Angle), nil
	case MsgInputEnabled:
		if msg.Enabled != nil {
			s.session.SetInputEnabled(*msg.Enabled)
			if !*msg.Enabled {
				s.target.PointerUp()
			}
		}
		return false, nil
	default:
		return false, nil
	}
}

// sendState writes the current knob state to conn.
func (s *Server) sendState(conn *websocket.Conn, consumed bool) error {
	st := s.target.State()
	return s.sendTo(conn, StateMessage{
		T:            MsgState,
		Percent:      st.Percent,
		Angle:        st.Angle,
		Dragging:     st.Dragging,
		Consumed:     consumed,
		InputEnabled: s.session.InputEnabled(),
	})
}

// sendTo serializes writes to a websocket.
func (s *Server) sendTo(conn *websocket.Conn, msg any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.writeLocked(conn, msg)
}

// writeLocked writes msg with a deadline. The caller holds writeMu.
func (s *Server) writeLocked(conn *websocket.Conn, msg any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}
