package api

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"dim-editor/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsCommand is what the shell sends: slider moves and direct edits over
// the same connection that streams edit events back.
type wsCommand struct {
	Type   string  `json:"type"` // set_value | apply_preset
	Name   string  `json:"name,omitempty"`
	Preset string  `json:"preset,omitempty"`
	Value  float64 `json:"value"`
}

func (h *handler) handleWS(w http.ResponseWriter, r *http.Request) {
	s, ok := h.manager.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// Serialise all WebSocket writes — gorilla/websocket forbids concurrent writes.
	var writeMu sync.Mutex
	writeEvent := func(ev session.Event) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(ev)
	}

	events := make(chan session.Event, 256)
	kick := s.SetClient(events) // kicks any prior client
	defer s.ClearClient(events) // closes events + clears session state if still owner

	// Goroutine: pump edit events to the client.
	// Exits when ClearClient closes the channel.
	go func() {
		for ev := range events {
			if err := writeEvent(ev); err != nil {
				return
			}
		}
	}()

	// Goroutine: close the connection on displacement so the read loop
	// below unblocks immediately.
	connDone := make(chan struct{})
	go func() {
		select {
		case <-kick:
			conn.Close()
		case <-connDone:
		}
	}()
	defer close(connDone)

	// Main loop: apply edits sent by the client. Failed edits answer with
	// an error event on this connection only; successful ones surface as
	// regular session events.
	for {
		var cmd wsCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}

		switch cmd.Type {
		case "set_value":
			if err := s.SetValue(cmd.Name, cmd.Value); err != nil {
				_ = writeEvent(session.Event{Type: "error", Name: cmd.Name, Warning: err.Error()})
			}
		case "apply_preset":
			if _, err := s.ApplyPreset(cmd.Preset, cmd.Value); err != nil {
				_ = writeEvent(session.Event{Type: "error", Preset: cmd.Preset, Warning: err.Error()})
			}
		}
	}
}
