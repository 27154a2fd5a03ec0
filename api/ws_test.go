package api_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"dim-editor/session"
)

func dialWS(t *testing.T, env *testEnv, id string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/api/sessions/" + id + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	// The server registers the event client just after the handshake; give
	// it a moment so edits fired right away are not dropped.
	time.Sleep(50 * time.Millisecond)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) session.Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var ev session.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return ev
}

func TestWSStreamsRESTEdits(t *testing.T) {
	env := newTestServer(t)
	info := env.createSession(t, "room")
	conn := dialWS(t, env, info.ID)

	doJSON(t, http.MethodPut,
		env.srv.URL+"/api/sessions/"+info.ID+"/dimensions/External", `{"value":900}`).Body.Close()

	ev := readEvent(t, conn)
	if ev.Type != "value" || ev.Name != "External" || ev.Value != 900 {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestWSSetValueCommand(t *testing.T) {
	env := newTestServer(t)
	info := env.createSession(t, "room")
	conn := dialWS(t, env, info.ID)

	err := conn.WriteJSON(map[string]any{
		"type": "set_value", "name": "External", "value": 850,
	})
	if err != nil {
		t.Fatal(err)
	}

	ev := readEvent(t, conn)
	if ev.Type != "value" || ev.Name != "External" || ev.Value != 850 {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if got := env.dimensionValue(t, info.ID, "External"); got != 850 {
		t.Fatalf("edit not applied, got %v", got)
	}
}

func TestWSApplyPresetCommand(t *testing.T) {
	env := newTestServer(t)
	info := env.createSession(t, "room")
	conn := dialWS(t, env, info.ID)

	err := conn.WriteJSON(map[string]any{
		"type": "apply_preset", "preset": "Width", "value": 40,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Slider move first, then the bound dimension update.
	ev := readEvent(t, conn)
	if ev.Type != "preset" || ev.Preset != "Width" || ev.Value != 40 {
		t.Fatalf("unexpected first event: %+v", ev)
	}
	ev = readEvent(t, conn)
	if ev.Type != "value" || ev.Name != "D1@Sketch1@Part1.SLDPRT" || ev.Value != 40 {
		t.Fatalf("unexpected second event: %+v", ev)
	}
}

func TestWSFailedCommandAnswersError(t *testing.T) {
	env := newTestServer(t)
	info := env.createSession(t, "room")
	conn := dialWS(t, env, info.ID)

	err := conn.WriteJSON(map[string]any{
		"type": "apply_preset", "preset": "Width", "value": 60,
	})
	if err != nil {
		t.Fatal(err)
	}

	ev := readEvent(t, conn)
	if ev.Type != "error" || ev.Preset != "Width" {
		t.Fatalf("expected error event, got %+v", ev)
	}
	if got := env.dimensionValue(t, info.ID, "D1@Sketch1@Part1.SLDPRT"); got != 25.4 {
		t.Fatalf("failed apply must not edit, got %v", got)
	}
}

func TestWSSecondClientDisplacesFirst(t *testing.T) {
	env := newTestServer(t)
	info := env.createSession(t, "room")

	first := dialWS(t, env, info.ID)
	second := dialWS(t, env, info.ID)

	// The displaced connection is closed by the server.
	first.SetReadDeadline(time.Now().Add(3 * time.Second))
	var ev session.Event
	if err := first.ReadJSON(&ev); err == nil {
		t.Fatalf("expected the first connection to drop, got event %+v", ev)
	}

	// The new connection receives events as usual.
	doJSON(t, http.MethodPut,
		env.srv.URL+"/api/sessions/"+info.ID+"/dimensions/External", `{"value":700}`).Body.Close()
	got := readEvent(t, second)
	if got.Type != "value" || got.Value != 700 {
		t.Fatalf("unexpected event on new connection: %+v", got)
	}
}

func TestWSUnknownSession(t *testing.T) {
	env := newTestServer(t)
	url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/api/sessions/nope/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected the handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 handshake response, got %+v", resp)
	}
}
