package live

import (
	"encoding/json"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/hermes/internal/errors"
	"github.com/vango-dev/hermes/pkg/clock"
	"github.com/vango-dev/hermes/pkg/dom"
	"github.com/vango-dev/hermes/pkg/surface"
	"github.com/vango-dev/hermes/pkg/toast"
)

// Session is one browser connection with its own document and notifier.
type Session struct {
	ID string

	conn   *websocket.Conn
	config *Config
	logger *slog.Logger

	doc      *dom.Document
	notifier *toast.Notifier
	pending  []Patch // owned by the event loop

	dispatchCh chan func()
	done       chan struct{}
	closeOnce  sync.Once
	closed     atomic.Bool
	onClose    func(*Session)

	mu sync.Mutex // serialises writes to conn
}

// newSession builds the session's document and notifier. The notifier's
// clock dispatches hold timer expiries onto the session's event loop.
func newSession(conn *websocket.Conn, config *Config) (*Session, error) {
	s := &Session{
		ID:         uuid.NewString(),
		conn:       conn,
		config:     config,
		doc:        dom.NewDocument(),
		dispatchCh: make(chan func(), config.MaxEventQueue),
		done:       make(chan struct{}),
	}
	s.logger = config.Logger.With("component", "live", "session_id", s.ID)

	notifier, err := toast.New(toast.Config{
		Surface:          s.doc,
		Target:           s.doc.Body(),
		Styles:           config.Styles,
		ListClasses:      config.ListClasses,
		MaxNotifications: config.MaxNotifications,
		Clock:            clock.Dispatching(clock.System(), s.dispatchWait),
		Logger:           s.logger,
		Observer:         config.Observer,
	})
	if err != nil {
		return nil, err
	}
	s.notifier = notifier

	// Subscribe after the list exists; init carries the initial tree.
	s.doc.Observe(s.record)
	return s, nil
}

// Notifier returns the session's notifier. Only touch it from a function
// passed to Dispatch.
func (s *Session) Notifier() *toast.Notifier {
	return s.notifier
}

// Start sends the initial tree and starts all session loops.
func (s *Session) Start() error {
	if err := s.writeMessage(s.initMessage()); err != nil {
		return err
	}
	go s.ReadLoop()
	go s.WriteLoop()
	go s.EventLoop()
	return nil
}

func (s *Session) initMessage() ServerMessage {
	var b strings.Builder
	for _, child := range s.doc.Body().Children() {
		// Rendering an in-memory tree only fails on unknown node kinds.
		_ = fragmentRenderer.RenderToWriter(&b, child)
	}
	return ServerMessage{T: MsgInit, Root: s.doc.Body().ID(), HTML: b.String()}
}

// ReadLoop reads client frames and hands them to the event loop.
// It blocks until the connection is closed or an error occurs.
func (s *Session) ReadLoop() {
	defer s.Close()

	s.conn.SetReadLimit(s.config.MaxMessageSize)
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	})

	for {
		// Set read deadline
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
				s.recordWebSocketError("read")
			}
			return
		}

		msg, err := decodeClientMessage(data)
		if err != nil {
			s.logger.Warn("invalid client message", "error", err)
			s.recordWebSocketError("decode")
			s.sendError(err)
			continue
		}

		switch msg.T {
		case MsgEnd:
			s.Dispatch(func() { s.handleEnd(msg.ID, msg.Event) })
		case MsgNotify:
			s.Dispatch(func() { s.handleNotify(msg.Type, msg.Message) })
		}
	}
}

// handleEnd delivers a transition-finished signal reported by the browser.
func (s *Session) handleEnd(id, event string) {
	if !surface.IsEndEvent(event) {
		s.sendError(errors.New("H060").WithDetailf("%q is not a transition-finished event", event))
		return
	}
	node := s.doc.ByID(id)
	if node == nil {
		// Late signals for elements that already left are expected.
		s.logger.Debug("end signal for unknown element", "id", id, "event", event)
		s.sendError(errors.New("H061").WithDetailf("no element %s", id))
		return
	}
	if s.config.Metrics != nil {
		s.config.Metrics.RecordSignal(event)
	}
	node.Fire(event)
}

func (s *Session) handleNotify(typ, message string) {
	if _, err := s.notifier.Notify(typ, toast.Text(message)); err != nil {
		s.sendError(err)
	}
}

// WriteLoop sends heartbeats until the session is closed.
func (s *Session) WriteLoop() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.sendPing(); err != nil {
				s.Close()
				return
			}

		case <-s.done:
			return
		}
	}
}

// EventLoop runs dispatched functions and flushes the resulting patches.
// When the session ends it closes the notifier, so observers see every
// notification still on screen as abandoned.
func (s *Session) EventLoop() {
	for {
		select {
		case fn := <-s.dispatchCh:
			s.executeDispatch(fn)

		case <-s.done:
			s.notifier.Close()
			return
		}
	}
}

// executeDispatch runs fn with panic recovery, then flushes patches.
func (s *Session) executeDispatch(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			s.logger.Error("dispatch panic",
				"panic", r,
				"stack", string(stack))
		}
	}()

	fn()
	s.flush()
}

// Dispatch queues fn to run on the event loop. It never blocks; fn is
// dropped when the session is closing or the queue is full.
func (s *Session) Dispatch(fn func()) {
	if s.closed.Load() {
		return
	}
	select {
	case s.dispatchCh <- fn:
		// Successfully queued
	case <-s.done:
		// Session is closing, discard
	default:
		s.logger.Warn("dispatch queue full, discarding callback")
	}
}

// dispatchWait queues fn, waiting for room in the queue. Hold timer
// expiries go through here: a dropped expiry would leave its notification
// paused for good.
func (s *Session) dispatchWait(fn func()) {
	select {
	case s.dispatchCh <- fn:
	case <-s.done:
	}
}

// record converts a mutation into a pending patch.
func (s *Session) record(m dom.Mutation) {
	p, err := patchFromMutation(m)
	if err != nil {
		s.logger.Error("patch encode error", "error", err)
		return
	}
	s.pending = append(s.pending, p)
}

func (s *Session) flush() {
	if len(s.pending) == 0 {
		return
	}
	patches := s.pending
	s.pending = nil
	if err := s.writeMessage(ServerMessage{T: MsgPatches, Patches: patches}); err != nil {
		s.logger.Error("patch send error", "error", err)
		s.recordWebSocketError("write")
		s.Close()
	}
}

func (s *Session) sendError(err error) {
	if werr := s.writeMessage(errorMessage(err)); werr != nil {
		s.logger.Debug("error send failed", "error", werr)
	}
}

func (s *Session) writeMessage(msg ServerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return websocket.ErrCloseSent
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Session) sendPing() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return websocket.ErrCloseSent
	}
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.config.WriteTimeout))
}

func (s *Session) recordWebSocketError(kind string) {
	if s.config.Metrics != nil {
		s.config.Metrics.RecordWebSocketError(kind)
	}
}

// Close ends the session. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed.Store(true)
		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.mu.Unlock()

		close(s.done)
		s.conn.Close()
		s.logger.Debug("session closed")

		if s.onClose != nil {
			s.onClose(s)
		}
	})
}

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} {
	return s.done
}
