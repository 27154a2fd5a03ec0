package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dim-editor/dimension"
	"dim-editor/session"
	"dim-editor/store"
)

func (h *handler) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.manager.List()
	views := make([]sessionView, len(sessions))
	for i, s := range sessions {
		views[i] = h.view(s)
	}
	writeJSON(w, http.StatusOK, views)
}

type createSessionRequest struct {
	Name          string `json:"name"`
	DimensionFile string `json:"dimension_file"`
	PresetFile    string `json:"preset_file"`
}

type createSessionResponse struct {
	sessionView
	PresetErrors []*dimension.ParseError  `json:"preset_errors,omitempty"`
	Warnings     []session.BindingWarning `json:"warnings,omitempty"`
}

// createSession opens an editing session. When file paths are given (or
// defaults are configured) the files are read and loaded immediately;
// otherwise the session starts empty and content arrives via the PUT
// endpoints.
func (h *handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		badRequest(w, "invalid request body")
		return
	}

	dimPath := req.DimensionFile
	presetPath := req.PresetFile
	if dimPath == "" {
		dimPath = h.defaults.DimensionFile
	}
	if presetPath == "" {
		presetPath = h.defaults.PresetFile
	}
	if dimPath != "" && presetPath == "" {
		presetPath = store.PresetPathFor(dimPath)
	}

	s, err := h.manager.Create(req.Name)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := createSessionResponse{}
	if dimPath != "" {
		st := store.New(dimPath, presetPath)
		presetErrs, err := h.loadFromStore(s, st)
		if err != nil {
			h.manager.Delete(s.ID)
			h.writeError(w, err)
			return
		}
		h.bindStore(s.ID, st)
		resp.PresetErrors = presetErrs
		resp.Warnings = s.Warnings()
	}
	resp.sessionView = h.view(s)
	writeJSON(w, http.StatusCreated, resp)
}

// loadFromStore reads both files and loads them into s. A dimension read
// or parse failure is fatal; preset parse errors are collected and
// returned as warnings.
func (h *handler) loadFromStore(s *session.Session, st *store.Store) ([]*dimension.ParseError, error) {
	dimText, err := st.ReadDimensions()
	if err != nil {
		return nil, err
	}
	if err := s.LoadDimensions(dimText); err != nil {
		return nil, err
	}
	presetText, err := st.ReadPresets()
	if err != nil {
		return nil, err
	}
	return s.LoadPresets(presetText), nil
}

func (h *handler) getSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.manager.Get(chi.URLParam(r, "id"))
	if !ok {
		h.writeError(w, session.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, h.view(s))
}

func (h *handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.manager.Delete(id); err != nil {
		h.writeError(w, err)
		return
	}
	h.unbindStore(id)
	w.WriteHeader(http.StatusNoContent)
}

// reloadSession re-reads the bound files, discarding unsaved edits. This is
// the only operation that throws edits away.
func (h *handler) reloadSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.manager.Get(chi.URLParam(r, "id"))
	if !ok {
		h.writeError(w, session.ErrNotFound)
		return
	}
	st, ok := h.storeFor(s.ID)
	if !ok {
		badRequest(w, "session has no bound files")
		return
	}
	presetErrs, err := h.loadFromStore(s, st)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, createSessionResponse{
		sessionView:  h.view(s),
		PresetErrors: presetErrs,
		Warnings:     s.Warnings(),
	})
}

type saveResponse struct {
	Dimensions string `json:"dimensions,omitempty"`
	Presets    string `json:"presets"`
	Written    bool   `json:"written"`
}

// saveSession serializes the session's files and, when the session is
// bound to paths, writes them atomically. The serialized text is returned
// either way so an unbound shell can persist it itself.
func (h *handler) saveSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.manager.Get(chi.URLParam(r, "id"))
	if !ok {
		h.writeError(w, session.ErrNotFound)
		return
	}

	resp := saveResponse{}
	dimText, err := s.SaveDimensions()
	dimsLoaded := err == nil
	if dimsLoaded {
		resp.Dimensions = dimText
	}
	resp.Presets = s.SavePresets()

	if st, bound := h.storeFor(s.ID); bound {
		if dimsLoaded {
			if err := st.WriteDimensions(dimText); err != nil {
				h.writeError(w, err)
				return
			}
		}
		if err := st.WritePresets(resp.Presets); err != nil {
			h.writeError(w, err)
			return
		}
		resp.Written = true
	}
	writeJSON(w, http.StatusOK, resp)
}
