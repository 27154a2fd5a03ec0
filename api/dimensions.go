package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dim-editor/session"
)

func (h *handler) getDimensions(w http.ResponseWriter, r *http.Request) {
	s, ok := h.manager.Get(chi.URLParam(r, "id"))
	if !ok {
		h.writeError(w, session.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s.Dimensions())
}

// loadDimensions replaces the session's dimension file with the raw text
// body. This is the path-less variant of load for shells that own file I/O
// themselves.
func (h *handler) loadDimensions(w http.ResponseWriter, r *http.Request) {
	s, ok := h.manager.Get(chi.URLParam(r, "id"))
	if !ok {
		h.writeError(w, session.ErrNotFound)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		badRequest(w, "cannot read body")
		return
	}
	if err := s.LoadDimensions(string(body)); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Dimensions())
}

type setValueRequest struct {
	Value float64 `json:"value"`
}

func (h *handler) setValue(w http.ResponseWriter, r *http.Request) {
	s, ok := h.manager.Get(chi.URLParam(r, "id"))
	if !ok {
		h.writeError(w, session.ErrNotFound)
		return
	}
	var req setValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	name := chi.URLParam(r, "name")
	if err := s.SetValue(name, req.Value); err != nil {
		h.writeError(w, err)
		return
	}
	rec, _ := s.Dimension(name)
	writeJSON(w, http.StatusOK, rec)
}
