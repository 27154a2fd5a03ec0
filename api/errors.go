package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"dim-editor/dimension"
	"dim-editor/preset"
	"dim-editor/session"
	"dim-editor/store"
)

type errorBody struct {
	Error string                `json:"error"`
	Parse *dimension.ParseError `json:"parse,omitempty"`
}

// writeError maps domain errors onto HTTP statuses. Parse errors carry
// their structured form so the shell can point at the offending line.
func (h *handler) writeError(w http.ResponseWriter, err error) {
	var pe *dimension.ParseError
	if errors.As(err, &pe) {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: pe.Error(), Parse: pe})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, dimension.ErrUnknownDimension),
		errors.Is(err, preset.ErrUnknownPreset):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrNameTaken),
		errors.Is(err, preset.ErrDuplicateName):
		status = http.StatusConflict
	case errors.Is(err, preset.ErrOutOfRange),
		errors.Is(err, preset.ErrInvalidRange):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrNotLoaded),
		errors.Is(err, store.ErrNoDimensionFile):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}
