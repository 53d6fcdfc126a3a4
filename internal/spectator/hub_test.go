package spectator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/msto63/cellbot/internal/maze"
	"github.com/msto63/cellbot/internal/runner"
	"github.com/msto63/cellbot/pkg/core/health"
)

type received struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(url, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg received
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}
	return msg
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	hub.Begin("run-1", "corridor")

	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv.URL)

	hello := readMessage(t, conn)
	if hello.Type != "hello" {
		t.Fatalf("Expected hello, got %s", hello.Type)
	}
	var hp HelloPayload
	if err := json.Unmarshal(hello.Payload, &hp); err != nil {
		t.Fatalf("Failed to decode hello: %v", err)
	}
	if hp.Maze != "corridor" || hp.RunID != "run-1" {
		t.Errorf("Unexpected hello payload %+v", hp)
	}
	if hub.Clients() != 1 {
		t.Errorf("Expected 1 client, got %d", hub.Clients())
	}

	hub.Observe(runner.Frame{RunID: "run-1", Step: 1, Action: "move", Position: maze.Point{Row: 0, Col: 1}, Facing: "E"})

	msg := readMessage(t, conn)
	if msg.Type != "frame" {
		t.Fatalf("Expected frame, got %s", msg.Type)
	}
	var frame runner.Frame
	if err := json.Unmarshal(msg.Payload, &frame); err != nil {
		t.Fatalf("Failed to decode frame: %v", err)
	}
	if frame.Action != "move" || frame.Position.Col != 1 {
		t.Errorf("Unexpected frame %+v", frame)
	}

	hub.Finish(&runner.Report{
		RunID:  "run-1",
		Status: runner.StatusExited,
		Frames: []runner.Frame{{Step: 0}, {Step: 1}},
	})

	msg = readMessage(t, conn)
	if msg.Type != "report" {
		t.Fatalf("Expected report, got %s", msg.Type)
	}
	var report runner.Report
	if err := json.Unmarshal(msg.Payload, &report); err != nil {
		t.Fatalf("Failed to decode report: %v", err)
	}
	if report.Status != runner.StatusExited {
		t.Errorf("Expected exited, got %s", report.Status)
	}
	if len(report.Frames) != 0 {
		t.Errorf("Expected frames to be stripped, got %d", len(report.Frames))
	}
}

func TestHub_CloseDisconnects(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv.URL)
	readMessage(t, conn)

	hub.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected connection to be closed")
	}
	if hub.Clients() != 0 {
		t.Errorf("Expected 0 clients, got %d", hub.Clients())
	}
}

func TestServer_Healthz(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"

	hub := NewHub()
	server := NewServer(cfg, hub)
	if err := server.StartAsync(); err != nil {
		t.Fatalf("StartAsync() error = %v", err)
	}
	defer server.Stop(context.Background())

	resp, err := http.Get("http://" + server.Address() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
	var report health.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("Failed to decode health report: %v", err)
	}
	if report.Service != "spectator" || len(report.Checks) != 2 {
		t.Errorf("Unexpected health report %+v", report)
	}

	// WebSocket through the logging middleware
	conn := dial(t, "http://"+server.Address()+"/ws")
	if msg := readMessage(t, conn); msg.Type != "hello" {
		t.Errorf("Expected hello, got %s", msg.Type)
	}
}
