package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quizverse/internal/domain"
)

func TestWebSocketAttemptFlow(t *testing.T) {
	env := newTestEnv(t)

	var view domain.AttemptView
	env.do(t, http.MethodPost, "/api/attempts", "", map[string]string{"quizId": "sample-2"}, &view)

	conn := dialAttempt(t, env, view.AttemptID)
	defer conn.Close()

	// Expect the current view first.
	typ, payload := readNext(conn, t, string(EventView))
	if payload["remaining"] != "15:00" {
		t.Fatalf("expected full clock, got %v", payload["remaining"])
	}

	send(t, conn, ActionAnswer, map[string]any{"questionId": "js-1", "option": 0})
	_, payload = readNext(conn, t, string(EventView))
	if payload["answeredCount"] != float64(1) {
		t.Fatalf("expected answered count 1, got %v", payload["answeredCount"])
	}

	env.ticks <- time.Now()
	_, payload = readNext(conn, t, string(EventView))
	if payload["remaining"] != "14:59" {
		t.Fatalf("expected one tick applied, got %v", payload["remaining"])
	}

	send(t, conn, ActionAnswer, map[string]any{"questionId": "nope", "option": 0})
	_, payload = readNext(conn, t, string(EventError))
	if payload["code"] != string(ErrCodeQuestionNotFound) {
		t.Fatalf("expected question error, got %v", payload)
	}

	send(t, conn, ActionSubmit, nil)
	_, payload = readNext(conn, t, string(EventView))
	if payload["status"] != string(domain.AttemptSubmitted) {
		t.Fatalf("expected submitted view, got %v", payload["status"])
	}
	typ, payload = readNext(conn, t, string(EventResult))
	if payload["correctCount"] != float64(1) || payload["trigger"] != string(domain.TriggerManual) {
		t.Fatalf("unexpected %s payload %v", typ, payload)
	}

	send(t, conn, ActionExit, nil)
	readNext(conn, t, string(EventExited))
}

func TestWebSocketClosingKeepsAttempt(t *testing.T) {
	env := newTestEnv(t)

	var view domain.AttemptView
	env.do(t, http.MethodPost, "/api/attempts", "", map[string]string{"quizId": "sample-2"}, &view)

	conn := dialAttempt(t, env, view.AttemptID)
	readNext(conn, t, string(EventView))
	conn.Close()

	if status, _ := env.do(t, http.MethodGet, "/api/attempts/"+view.AttemptID, "", nil, &view); status != http.StatusOK {
		t.Fatalf("attempt should survive socket close, got %d", status)
	}
	if view.Status != domain.AttemptRunning {
		t.Fatalf("expected running attempt, got %s", view.Status)
	}
}

func TestWebSocketUnknownAttempt(t *testing.T) {
	env := newTestEnv(t)
	u := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws?attemptId=missing"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected dial failure")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 handshake response, got %+v", resp)
	}
}

func dialAttempt(t *testing.T, env *testEnv, attemptID string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws?attemptId=" + attemptID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func send(t *testing.T, conn *websocket.Conn, action Action, payload any) {
	t.Helper()
	raw, _ := json.Marshal(payload)
	if err := conn.WriteJSON(map[string]any{"type": action, "payload": json.RawMessage(raw)}); err != nil {
		t.Fatalf("write %s: %v", action, err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

func TestOutboxReleasesWhenWriterStops(t *testing.T) {
	out := newOutbox(1)
	if !out.push(outboundMessage[any]{Type: EventView}) {
		t.Fatalf("expected first push to be buffered")
	}

	// Writer gone with a full buffer: pushes from the read loop and the
	// update pump must return instead of blocking.
	close(out.writerDone)
	done := make(chan bool, 2)
	for i := 0; i < 2; i++ {
		go func() { done <- out.push(outboundMessage[any]{Type: EventError}) }()
	}
	for i := 0; i < 2; i++ {
		select {
		case ok := <-done:
			if ok {
				t.Fatalf("expected push to be refused after writer stopped")
			}
		case <-time.After(time.Second):
			t.Fatalf("push blocked after writer stopped")
		}
	}
}

func TestOutboxReleasesWhenClosing(t *testing.T) {
	out := newOutbox(0)
	close(out.closing)
	if out.push(outboundMessage[any]{Type: EventView}) {
		t.Fatalf("expected push to be refused while closing")
	}
}
