package session

// SetClient registers a channel to receive edit events. If a previous
// client is connected it is kicked: its kick channel is closed so the
// WebSocket layer can detect the displacement and drop that connection.
// Returns a kick channel that is closed if this client is itself displaced.
func (s *Session) SetClient(ch chan Event) <-chan struct{} {
	s.evMu.Lock()
	defer s.evMu.Unlock()
	if s.kick != nil {
		close(s.kick)
	}
	kick := make(chan struct{})
	s.kick = kick
	s.evChan = ch
	return kick
}

// ClearClient is called when a connection ends. It only clears session
// state if ch is still the current owner (a displaced connection must not
// clear a newer one). It always closes ch so the pump goroutine exits.
func (s *Session) ClearClient(ch chan Event) {
	s.evMu.Lock()
	if s.evChan == ch {
		s.evChan = nil
		s.kick = nil
	}
	s.evMu.Unlock()
	close(ch)
}

// NotifyExternalChange signals that the file on disk changed underneath the
// session (the CAD tool regenerated it). The shell decides whether to
// reload.
func (s *Session) NotifyExternalChange() {
	s.emit(Event{Type: "reload", Name: "external"})
}

// emit delivers ev to the connected client, if any. A slow client drops
// events rather than blocking an edit.
func (s *Session) emit(ev Event) {
	s.evMu.Lock()
	defer s.evMu.Unlock()
	if s.evChan == nil {
		return
	}
	select {
	case s.evChan <- ev:
	default:
	}
}
