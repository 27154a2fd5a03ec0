package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"dim-editor/session"
	"dim-editor/store"
)

// Defaults are the file paths a session is bound to when the create
// request does not name its own.
type Defaults struct {
	DimensionFile string
	PresetFile    string
}

func RegisterRoutes(manager *session.Manager, log *zap.Logger, defaults Defaults) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := &handler{
		manager:  manager,
		log:      log,
		defaults: defaults,
		stores:   make(map[string]*store.Store),
	}

	// Sessions
	r.Get("/api/sessions", h.listSessions)
	r.Post("/api/sessions", h.createSession)
	r.Get("/api/sessions/{id}", h.getSession)
	r.Delete("/api/sessions/{id}", h.deleteSession)
	r.Post("/api/sessions/{id}/reload", h.reloadSession)
	r.Post("/api/sessions/{id}/save", h.saveSession)

	// Dimensions
	r.Get("/api/sessions/{id}/dimensions", h.getDimensions)
	r.Put("/api/sessions/{id}/dimensions", h.loadDimensions)
	r.Put("/api/sessions/{id}/dimensions/{name}", h.setValue)

	// Presets
	r.Get("/api/sessions/{id}/presets", h.getPresets)
	r.Put("/api/sessions/{id}/presets", h.loadPresets)
	r.Post("/api/sessions/{id}/presets", h.createPreset)
	r.Post("/api/sessions/{id}/presets/generate", h.generatePreset)
	r.Delete("/api/sessions/{id}/presets/{name}", h.deletePreset)
	r.Post("/api/sessions/{id}/presets/{name}/apply", h.applyPreset)
	r.Get("/api/sessions/{id}/warnings", h.getWarnings)

	// WebSocket event stream
	r.Get("/api/sessions/{id}/ws", h.handleWS)

	return r
}

type handler struct {
	manager  *session.Manager
	log      *zap.Logger
	defaults Defaults

	mu     sync.Mutex
	stores map[string]*store.Store // session ID → bound files
}

func (h *handler) storeFor(id string) (*store.Store, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	st, ok := h.stores[id]
	return st, ok
}

func (h *handler) bindStore(id string, st *store.Store) {
	h.mu.Lock()
	h.stores[id] = st
	h.mu.Unlock()
}

func (h *handler) unbindStore(id string) {
	h.mu.Lock()
	delete(h.stores, id)
	h.mu.Unlock()
}

// sessionView is the wire shape of a session.
type sessionView struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	CreatedAt     time.Time     `json:"created_at"`
	State         session.State `json:"state"`
	DimensionFile string        `json:"dimension_file,omitempty"`
	PresetFile    string        `json:"preset_file,omitempty"`
}

func (h *handler) view(s *session.Session) sessionView {
	v := sessionView{
		ID:        s.ID,
		Name:      s.Name,
		CreatedAt: s.CreatedAt,
		State:     s.State(),
	}
	if st, ok := h.storeFor(s.ID); ok {
		v.DimensionFile = st.DimensionPath()
		v.PresetFile = st.PresetPath()
	}
	return v
}
