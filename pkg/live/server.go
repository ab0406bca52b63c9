package live

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/hermes/internal/errors"
	"github.com/vango-dev/hermes/pkg/dom"
	"github.com/vango-dev/hermes/pkg/toast"
)

// Server hosts the demo page and live sessions.
type Server struct {
	config   Config
	types    []string
	upgrader websocket.Upgrader
	logger   *slog.Logger
	router   chi.Router

	mu       sync.RWMutex
	sessions map[string]*Session

	httpServer *http.Server
}

// New creates a Server. The notifier settings are checked up front by
// building a notifier on a scratch document, so a bad configuration fails
// here rather than on the first connection.
func New(config Config) (*Server, error) {
	config = config.withDefaults()

	doc := dom.NewDocument()
	scratch, err := toast.New(toast.Config{
		Surface:          doc,
		Target:           doc.Body(),
		Styles:           config.Styles,
		ListClasses:      config.ListClasses,
		MaxNotifications: config.MaxNotifications,
	})
	if err != nil {
		return nil, err
	}

	s := &Server{
		config: config,
		types:  scratch.Types(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     config.CheckOrigin,
		},
		logger:   config.Logger.With("component", "live"),
		sessions: make(map[string]*Session),
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/ws", s.HandleWebSocket)
	r.Post("/api/notify/{type}", s.handleNotify)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok")
	})
	if s.config.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Types returns the configured notification types, sorted.
func (s *Server) Types() []string {
	return append([]string(nil), s.types...)
}

// HandleWebSocket upgrades the connection and starts a session.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		s.logger.Warn("websocket upgrade failed", "error", err)
		s.recordWebSocketError("upgrade")
		return
	}

	session, err := newSession(conn, &s.config)
	if err != nil {
		s.logger.Error("session create failed", "error", err)
		conn.Close()
		return
	}
	session.onClose = s.removeSession

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	if s.config.Metrics != nil {
		s.config.Metrics.RecordSessionOpen()
	}

	if err := session.Start(); err != nil {
		s.logger.Error("session start failed", "error", err)
		session.Close()
		return
	}
	s.logger.Info("session started", "session_id", session.ID, "remote", r.RemoteAddr)
}

func (s *Server) removeSession(session *Session) {
	s.mu.Lock()
	_, ok := s.sessions[session.ID]
	delete(s.sessions, session.ID)
	s.mu.Unlock()

	if ok && s.config.Metrics != nil {
		s.config.Metrics.RecordSessionClose()
	}
}

// SessionCount returns the number of connected sessions.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Broadcast queues a notification on every session and returns how many
// sessions it was sent to. Unknown types fail with H004 before anything is
// queued.
func (s *Server) Broadcast(typ, message string) (int, error) {
	if !s.hasType(typ) {
		return 0, errors.New("H004").
			WithDetailf("%q is not configured", typ).
			WithSuggestion("Use one of: " + strings.Join(s.types, ", "))
	}

	s.mu.RLock()
	targets := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		targets = append(targets, session)
	}
	s.mu.RUnlock()

	for _, session := range targets {
		session := session
		session.Dispatch(func() { session.handleNotify(typ, message) })
	}
	return len(targets), nil
}

func (s *Server) hasType(typ string) bool {
	i := sort.SearchStrings(s.types, typ)
	return i < len(s.types) && s.types[i] == typ
}

type notifyRequest struct {
	Message string `json:"message"`
}

type notifyResponse struct {
	Type      string `json:"type"`
	Delivered int    `json:"delivered"`
}

type errorResponse struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// handleNotify accepts {"message": "..."} as JSON or the raw body as text.
func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	typ := chi.URLParam(r, "type")

	body, err := io.ReadAll(io.LimitReader(r.Body, s.config.MaxMessageSize))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
		return
	}

	message := string(body)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req notifyRequest
		if err := json.Unmarshal(body, &req); err != nil {
			he := errors.New("H060").Wrap(err)
			writeJSON(w, http.StatusBadRequest, errorResponse{Code: he.Code, Message: he.FormatCompact()})
			return
		}
		message = req.Message
	}

	n, err := s.Broadcast(typ, message)
	if err != nil {
		resp := errorResponse{Code: errors.Code(err), Message: err.Error()}
		writeJSON(w, http.StatusNotFound, resp)
		return
	}
	s.logger.Debug("broadcast", "type", typ, "delivered", n)
	writeJSON(w, http.StatusAccepted, notifyResponse{Type: typ, Delivered: n})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) recordWebSocketError(kind string) {
	if s.config.Metrics != nil {
		s.config.Metrics.RecordWebSocketError(kind)
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes every session and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	// Close all sessions first
	s.mu.RLock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.mu.RUnlock()
	for _, session := range sessions {
		session.Close()
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}
