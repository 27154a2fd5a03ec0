package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"dim-editor/dimension"
	"dim-editor/preset"
	"dim-editor/session"
)

func (h *handler) getPresets(w http.ResponseWriter, r *http.Request) {
	s, ok := h.manager.Get(chi.URLParam(r, "id"))
	if !ok {
		h.writeError(w, session.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s.Presets())
}

type loadPresetsResponse struct {
	Presets  []preset.Definition      `json:"presets"`
	Errors   []*dimension.ParseError  `json:"errors,omitempty"`
	Warnings []session.BindingWarning `json:"warnings,omitempty"`
}

// loadPresets replaces the collection with the parsed text body.
// Best-effort: dropped lines come back in the response, the load succeeds.
func (h *handler) loadPresets(w http.ResponseWriter, r *http.Request) {
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
	errs := s.LoadPresets(string(body))
	writeJSON(w, http.StatusOK, loadPresetsResponse{
		Presets:  s.Presets(),
		Errors:   errs,
		Warnings: s.Warnings(),
	})
}

func (h *handler) createPreset(w http.ResponseWriter, r *http.Request) {
	s, ok := h.manager.Get(chi.URLParam(r, "id"))
	if !ok {
		h.writeError(w, session.ErrNotFound)
		return
	}
	var def preset.Definition
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil || def.Name == "" {
		badRequest(w, "invalid request body")
		return
	}
	if err := s.CreatePreset(def); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, def)
}

type generatePresetRequest struct {
	Name      string  `json:"name"`
	Dimension string  `json:"dimension"`
	Below     float64 `json:"below"`
	Above     float64 `json:"above"`
	Step      float64 `json:"step"`
}

// generatePreset builds a slider around a dimension's current value, the
// quick path for "make this adjustable".
func (h *handler) generatePreset(w http.ResponseWriter, r *http.Request) {
	s, ok := h.manager.Get(chi.URLParam(r, "id"))
	if !ok {
		h.writeError(w, session.ErrNotFound)
		return
	}
	var req generatePresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Dimension == "" {
		badRequest(w, "invalid request body")
		return
	}
	def, err := s.GeneratePreset(req.Name, req.Dimension, req.Below, req.Above, req.Step)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, def)
}

func (h *handler) deletePreset(w http.ResponseWriter, r *http.Request) {
	s, ok := h.manager.Get(chi.URLParam(r, "id"))
	if !ok {
		h.writeError(w, session.ErrNotFound)
		return
	}
	if err := s.DeletePreset(chi.URLParam(r, "name")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type applyPresetRequest struct {
	Value float64 `json:"value"`
}

type applyPresetResponse struct {
	Preset  preset.Definition       `json:"preset"`
	Warning *session.BindingWarning `json:"warning,omitempty"`
}

func (h *handler) applyPreset(w http.ResponseWriter, r *http.Request) {
	s, ok := h.manager.Get(chi.URLParam(r, "id"))
	if !ok {
		h.writeError(w, session.ErrNotFound)
		return
	}
	var req applyPresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	name := chi.URLParam(r, "name")
	warn, err := s.ApplyPreset(name, req.Value)
	if err != nil {
		h.writeError(w, err)
		return
	}
	def, _ := s.Preset(name)
	writeJSON(w, http.StatusOK, applyPresetResponse{Preset: def, Warning: warn})
}

func (h *handler) getWarnings(w http.ResponseWriter, r *http.Request) {
	s, ok := h.manager.Get(chi.URLParam(r, "id"))
	if !ok {
		h.writeError(w, session.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s.Warnings())
}
