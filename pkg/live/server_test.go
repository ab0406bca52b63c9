package live

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/hermes/internal/errors"
	"github.com/vango-dev/hermes/pkg/telemetry"
	"github.com/vango-dev/hermes/pkg/toast"
)

var testStyles = map[string]toast.Style{
	"success": {
		Shared: []string{"s"},
		Enter:  []string{"in"},
		Paused: []string{"held"},
		Exit:   []string{"out"},
		Hold:   30 * time.Millisecond,
	},
	"info": {
		Shared: []string{"i"},
		Enter:  []string{"in"},
		Exit:   []string{"out"},
		Hold:   time.Minute,
	},
}

func newTestServer(t *testing.T, mutate func(*Config)) (*Server, *httptest.Server) {
	t.Helper()
	cfg := Config{Styles: testStyles, ListClasses: []string{"toasts"}}
	if mutate != nil {
		mutate(&cfg)
	}
	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
		ts.Close()
	})
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) ServerMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error: %v", err)
	}
	var msg ServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Unmarshal(%s) error: %v", data, err)
	}
	return msg
}

// dialReady connects and consumes the init frame.
func dialReady(t *testing.T, ts *httptest.Server) (*websocket.Conn, ServerMessage) {
	t.Helper()
	conn := dial(t, ts)
	init := readMessage(t, conn)
	if init.T != MsgInit {
		t.Fatalf("first message = %q, want %q", init.T, MsgInit)
	}
	return conn, init
}

func send(t *testing.T, conn *websocket.Conn, msg ClientMessage) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}
}

// readPatches reads frames until a patches frame arrives.
func readPatches(t *testing.T, conn *websocket.Conn) []Patch {
	t.Helper()
	for {
		msg := readMessage(t, conn)
		if msg.T == MsgPatches {
			return msg.Patches
		}
	}
}

func findPatch(patches []Patch, op string) (Patch, bool) {
	for _, p := range patches {
		if p.Op == op {
			return p, true
		}
	}
	return Patch{}, false
}

func hasClassPatch(patches []Patch, op, class string) bool {
	for _, p := range patches {
		if p.Op != op {
			continue
		}
		for _, c := range p.Classes {
			if c == class {
				return true
			}
		}
	}
	return false
}

func TestServer_Page(t *testing.T) {
	_, ts := newTestServer(t, func(c *Config) { c.Title = "Demo <1>" })

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET / error: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	html := string(body)
	for _, want := range []string{`data-notify="info"`, `data-notify="success"`, "Demo &lt;1&gt;", `id="hermes-root"`, "new WebSocket"} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestServer_Healthz(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestServer_NewRejectsInvalidConfig(t *testing.T) {
	_, err := New(Config{Styles: testStyles, MaxNotifications: -1})
	if got := errors.Code(err); got != "H003" {
		t.Errorf("Code() = %q, want H003", got)
	}

	_, err = New(Config{})
	if got := errors.Code(err); got != "H002" {
		t.Errorf("Code() = %q, want H002", got)
	}
}

func TestServer_Types(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	got := srv.Types()
	if len(got) != 2 || got[0] != "info" || got[1] != "success" {
		t.Errorf("Types() = %v, want [info success]", got)
	}
}

func TestSession_Init(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	_, init := dialReady(t, ts)

	if init.Root == "" {
		t.Error("init root id is empty")
	}
	if !strings.Contains(init.HTML, `class="toasts"`) || !strings.Contains(init.HTML, "data-nid=") {
		t.Errorf("init html = %q", init.HTML)
	}
	if got := srv.SessionCount(); got != 1 {
		t.Errorf("SessionCount() = %d, want 1", got)
	}
}

func TestSession_NotifyLifecycle(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn, _ := dialReady(t, ts)

	send(t, conn, ClientMessage{T: MsgNotify, Type: "success", Message: "hello"})
	patches := readPatches(t, conn)
	insert, ok := findPatch(patches, OpInsert)
	if !ok {
		t.Fatalf("patches = %+v, want an insert", patches)
	}
	if !strings.Contains(insert.HTML, "hello") || !strings.Contains(insert.HTML, `class="s in"`) {
		t.Errorf("insert html = %q", insert.HTML)
	}
	id := insert.ID

	// Enter finished: paused.
	send(t, conn, ClientMessage{T: MsgEnd, ID: id, Event: "animationend"})
	patches = readPatches(t, conn)
	if !hasClassPatch(patches, OpRemoveClass, "in") || !hasClassPatch(patches, OpAddClass, "held") {
		t.Fatalf("after enter patches = %+v", patches)
	}

	// Hold timer fires on the real clock.
	patches = readPatches(t, conn)
	if !hasClassPatch(patches, OpRemoveClass, "held") || !hasClassPatch(patches, OpAddClass, "out") {
		t.Fatalf("after hold patches = %+v", patches)
	}

	// Exit finished: removed.
	send(t, conn, ClientMessage{T: MsgEnd, ID: id, Event: "transitionend"})
	patches = readPatches(t, conn)
	remove, ok := findPatch(patches, OpRemove)
	if !ok || remove.ID != id {
		t.Fatalf("after exit patches = %+v, want remove of %s", patches, id)
	}
}

func TestSession_Errors(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn, _ := dialReady(t, ts)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"malformed", `{"t":`, "H060"},
		{"unknown message", `{"t":"dance"}`, "H060"},
		{"end without id", `{"t":"end","event":"animationend"}`, "H060"},
		{"non end event", `{"t":"end","id":"n1","event":"click"}`, "H060"},
		{"unknown element", `{"t":"end","id":"n999","event":"animationend"}`, "H061"},
		{"unknown type", `{"t":"notify","type":"party","message":"x"}`, "H004"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.raw)); err != nil {
				t.Fatalf("WriteMessage() error: %v", err)
			}
			msg := readMessage(t, conn)
			if msg.T != MsgError {
				t.Fatalf("message type = %q, want error", msg.T)
			}
			if msg.Code != tt.want {
				t.Errorf("code = %q, want %q (%s)", msg.Code, tt.want, msg.Message)
			}
		})
	}
}

func TestServer_BroadcastAPI(t *testing.T) {
	_, ts := newTestServer(t, nil)
	a, _ := dialReady(t, ts)
	b, _ := dialReady(t, ts)

	resp, err := http.Post(ts.URL+"/api/notify/info", "application/json", strings.NewReader(`{"message":"deploy done"}`))
	if err != nil {
		t.Fatalf("POST error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	var out notifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if out.Delivered != 2 || out.Type != "info" {
		t.Errorf("response = %+v, want 2 deliveries of info", out)
	}

	for _, conn := range []*websocket.Conn{a, b} {
		insert, ok := findPatch(readPatches(t, conn), OpInsert)
		if !ok || !strings.Contains(insert.HTML, "deploy done") {
			t.Errorf("insert = %+v, want deploy done", insert)
		}
	}
}

func TestServer_BroadcastPlainText(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn, _ := dialReady(t, ts)

	resp, err := http.Post(ts.URL+"/api/notify/success", "text/plain", strings.NewReader("plain & simple"))
	if err != nil {
		t.Fatalf("POST error: %v", err)
	}
	resp.Body.Close()

	insert, ok := findPatch(readPatches(t, conn), OpInsert)
	if !ok || !strings.Contains(insert.HTML, "plain &amp; simple") {
		t.Errorf("insert = %+v", insert)
	}
}

func TestServer_BroadcastErrors(t *testing.T) {
	_, ts := newTestServer(t, nil)

	tests := []struct {
		name   string
		path   string
		ctype  string
		body   string
		status int
		code   string
	}{
		{"unknown type", "/api/notify/party", "text/plain", "x", http.StatusNotFound, "H004"},
		{"bad json", "/api/notify/info", "application/json", "{", http.StatusBadRequest, "H060"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+tt.path, tt.ctype, strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("POST error: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			var out errorResponse
			_ = json.NewDecoder(resp.Body).Decode(&out)
			if out.Code != tt.code {
				t.Errorf("code = %q, want %q", out.Code, tt.code)
			}
		})
	}
}

func TestServer_SessionRemovedOnDisconnect(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	conn, _ := dialReady(t, ts)
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for srv.SessionCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("SessionCount() = %d after disconnect, want 0", srv.SessionCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(telemetry.WithRegistry(reg))
	_, ts := newTestServer(t, func(c *Config) {
		c.Metrics = metrics
		c.Observer = metrics
		c.Gatherer = reg
	})
	conn, _ := dialReady(t, ts)

	send(t, conn, ClientMessage{T: MsgNotify, Type: "info", Message: "m"})
	readPatches(t, conn)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, want := range []string{"hermes_live_sessions 1", `hermes_toasts_shown_total{type="info"} 1`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("/metrics missing %q", want)
		}
	}
}

func TestServer_NoMetricsRouteWithoutMetrics(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

// onlySession returns the server's single connected session.
func onlySession(t *testing.T, srv *Server) *Session {
	t.Helper()
	srv.mu.RLock()
	defer srv.mu.RUnlock()
	for _, session := range srv.sessions {
		return session
	}
	t.Fatal("no session connected")
	return nil
}

func TestSession_HoldExpiryWaitsForQueueRoom(t *testing.T) {
	srv, ts := newTestServer(t, func(c *Config) {
		c.MaxEventQueue = 1
		c.Styles = map[string]toast.Style{
			"success": {
				Enter:  []string{"in"},
				Paused: []string{"held"},
				Exit:   []string{"out"},
				Hold:   150 * time.Millisecond,
			},
		}
	})
	conn, _ := dialReady(t, ts)
	session := onlySession(t, srv)

	send(t, conn, ClientMessage{T: MsgNotify, Type: "success", Message: "busy"})
	insert, ok := findPatch(readPatches(t, conn), OpInsert)
	if !ok {
		t.Fatal("no insert patch")
	}
	send(t, conn, ClientMessage{T: MsgEnd, ID: insert.ID, Event: "animationend"})
	if patches := readPatches(t, conn); !hasClassPatch(patches, OpAddClass, "held") {
		t.Fatalf("after enter patches = %+v", patches)
	}

	// Block the loop and fill the queue so the expiry finds no room.
	started := make(chan struct{})
	gate := make(chan struct{})
	session.Dispatch(func() {
		close(started)
		<-gate
	})
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("blocking function never ran")
	}
	session.Dispatch(func() {})

	time.Sleep(400 * time.Millisecond)
	close(gate)

	patches := readPatches(t, conn)
	if !hasClassPatch(patches, OpRemoveClass, "held") || !hasClassPatch(patches, OpAddClass, "out") {
		t.Fatalf("after hold patches = %+v, want the exit to start", patches)
	}
}

func TestSession_DisconnectReleasesObservers(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(telemetry.WithRegistry(reg))
	tracing := telemetry.NewTracing(telemetry.WithTracerProvider(noop.NewTracerProvider()))
	_, ts := newTestServer(t, func(c *Config) {
		c.Metrics = metrics
		c.Gatherer = reg
		c.Observer = toast.Observers{metrics, tracing}
	})
	conn, _ := dialReady(t, ts)

	// One notification holding, one still entering.
	send(t, conn, ClientMessage{T: MsgNotify, Type: "info", Message: "held"})
	insert, _ := findPatch(readPatches(t, conn), OpInsert)
	send(t, conn, ClientMessage{T: MsgEnd, ID: insert.ID, Event: "animationend"})
	readPatches(t, conn)
	send(t, conn, ClientMessage{T: MsgNotify, Type: "info", Message: "entering"})
	readPatches(t, conn)

	if got := tracing.OpenSpans(); got != 2 {
		t.Fatalf("OpenSpans() = %d, want 2", got)
	}
	conn.Close()

	want := []string{
		`hermes_toasts_active{type="info"} 0`,
		`hermes_toasts_abandoned_total{type="info"} 2`,
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		body := scrapeMetrics(t, ts)
		missing := ""
		for _, w := range want {
			if !strings.Contains(body, w) {
				missing = w
				break
			}
		}
		if missing == "" && tracing.OpenSpans() == 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("after disconnect OpenSpans() = %d, /metrics missing %q", tracing.OpenSpans(), missing)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func scrapeMetrics(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return string(body)
}
