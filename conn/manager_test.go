// ABOUTME: Tests for the connection manager against an in-process websocket server.
// ABOUTME: Covers frame dispatch, bootstrap commands, reconnect, and post-close sends.
package conn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/signalflux/fluxwatch/model"
	"github.com/signalflux/fluxwatch/store"
	"github.com/signalflux/fluxwatch/wire"
)

// wsServer is a minimal backend accepting one connection at a time and
// recording received command frames.
type wsServer struct {
	t        *testing.T
	upgrader websocket.Upgrader

	mu       sync.Mutex
	conns    []*websocket.Conn
	commands []wire.Command
	dials    int
}

func newWSServer(t *testing.T) (*wsServer, *httptest.Server) {
	s := &wsServer{t: t}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns = append(s.conns, ws)
		s.dials++
		s.mu.Unlock()

		for {
			var cmd wire.Command
			if err := ws.ReadJSON(&cmd); err != nil {
				return
			}
			s.mu.Lock()
			s.commands = append(s.commands, cmd)
			s.mu.Unlock()
		}
	}))
	t.Cleanup(ts.Close)
	return s, ts
}

func (s *wsServer) url(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func (s *wsServer) send(t *testing.T, frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.conns) == 0 {
		t.Fatal("no connection")
	}
	ws := s.conns[len(s.conns)-1]
	if err := ws.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("server write: %v", err)
	}
}

func (s *wsServer) dialCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dials
}

func (s *wsServer) commandNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.commands))
	for i, c := range s.commands {
		out[i] = c.Command
	}
	return out
}

// waitFor polls until cond returns true or the deadline passes.
func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestConnectDispatchesFrames(t *testing.T) {
	srv, ts := newWSServer(t)
	st := store.New()
	m := NewManager(srv.url(ts), st)
	defer m.Close()

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if !m.Connected() {
		t.Fatal("not connected")
	}

	srv.send(t, `{"type":"progress","data":{"phase":"scanning","progress":25}}`)
	waitFor(t, func() bool {
		phase, _ := st.Phase()
		return phase == "scanning"
	}, "progress dispatch")

	// Malformed frames are dropped without killing the connection.
	srv.send(t, `{{{`)
	srv.send(t, `{"type":"progress","data":{"phase":"ranking","progress":80}}`)
	waitFor(t, func() bool {
		phase, _ := st.Phase()
		return phase == "ranking"
	}, "dispatch after malformed frame")
}

func TestConnectSendsBootstrapCommands(t *testing.T) {
	srv, ts := newWSServer(t)
	st := store.New()
	m := NewManager(srv.url(ts), st)
	defer m.Close()

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	waitFor(t, func() bool { return len(srv.commandNames()) >= 2 }, "bootstrap commands")
	names := srv.commandNames()
	if names[0] != wire.CmdGetHistory || names[1] != wire.CmdGetQueryGroups {
		t.Errorf("bootstrap commands = %v", names)
	}
}

func TestConnectWhileOpenIsNoOp(t *testing.T) {
	srv, ts := newWSServer(t)
	st := store.New()
	m := NewManager(srv.url(ts), st)
	defer m.Close()

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("second Connect: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if srv.dialCount() != 1 {
		t.Errorf("dials = %d, want 1", srv.dialCount())
	}
}

func TestReconnectAfterServerClose(t *testing.T) {
	srv, ts := newWSServer(t)
	st := store.New()
	m := NewManager(srv.url(ts), st, WithReconnectDelay(30*time.Millisecond))
	defer m.Close()

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	waitFor(t, func() bool { return srv.dialCount() == 1 }, "first dial")

	srv.mu.Lock()
	srv.conns[0].Close()
	srv.mu.Unlock()

	waitFor(t, func() bool { return srv.dialCount() == 2 }, "reconnect dial")
	waitFor(t, m.Connected, "reconnected state")
}

func TestSendAfterCloseIsDropped(t *testing.T) {
	srv, ts := newWSServer(t)
	st := store.New()
	m := NewManager(srv.url(ts), st)

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	m.Close()

	// Must not panic or block.
	m.SendCommand(wire.GetHistory())

	if m.Connected() {
		t.Error("connected after Close")
	}
	if err := m.Connect(context.Background()); err == nil {
		t.Error("Connect after Close should fail")
	}
}

func TestDialFailureSchedulesRetry(t *testing.T) {
	st := store.New()
	// Nothing listens on this port.
	m := NewManager("ws://127.0.0.1:1/ws", st, WithReconnectDelay(20*time.Millisecond))
	defer m.Close()

	if err := m.Connect(context.Background()); err == nil {
		t.Fatal("expected dial error")
	}
	if m.Connected() {
		t.Error("connected after failed dial")
	}
	// The retry timer must not crash the process; give it a few cycles.
	time.Sleep(80 * time.Millisecond)
}

func TestStoreCommandSenderWiring(t *testing.T) {
	srv, ts := newWSServer(t)
	st := store.New()
	m := NewManager(srv.url(ts), st)
	defer m.Close()

	if err := m.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	waitFor(t, func() bool { return len(srv.commandNames()) >= 2 }, "bootstrap commands")

	// Completion resync flows from the store through the manager.
	st.BeginRun("r1", "q")
	st.Dispatch(wire.CompletedMessage{RunID: "r1", SignalCount: 1})

	waitFor(t, func() bool { return len(srv.commandNames()) >= 4 }, "resync commands")
	if got := st.Run().Status; got != model.StatusCompleted {
		t.Errorf("status = %s", got)
	}
}
