package session

import (
	"errors"
	"sync"
	"time"

	"dim-editor/dimension"
	"dim-editor/preset"
)

// State tracks where a loaded file sits in its edit lifecycle.
type State string

const (
	StateEmpty    State = "empty"
	StateLoaded   State = "loaded"
	StateModified State = "modified"
)

var ErrNotLoaded = errors.New("no dimension file loaded")

// BindingWarning records a preset whose target dimension is absent from the
// loaded dimension file. Non-fatal: the preset still works as a value store.
type BindingWarning struct {
	Preset          string `json:"preset"`
	TargetDimension string `json:"target_dimension"`
}

// Warnings are kept bounded so a long-running session with a bad preset
// file cannot grow without limit.
const maxWarnings = 100

// Event is pushed to the connected client when session state changes.
type Event struct {
	Type    string  `json:"type"` // value | preset | reload | saved | error
	Name    string  `json:"name,omitempty"`
	Value   float64 `json:"value,omitempty"`
	Preset  string  `json:"preset,omitempty"`
	Warning string  `json:"warning,omitempty"`
}

// Session holds one loaded dimension file and preset collection and applies
// edits to them. All mutating calls take the session lock; a failed call
// never leaves partial state behind.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`

	mu          sync.RWMutex
	codec       *dimension.Codec
	presetCodec *preset.Codec
	dims        *dimension.File
	presets     *preset.Collection
	dimState    State
	presetState State
	warnings    []BindingWarning

	// Single-client event stream. A newer client displaces the older one
	// via the kick channel, same as a terminal reattach.
	evMu   sync.Mutex
	evChan chan Event
	kick   chan struct{}
}

func newSession(id, name string) *Session {
	return &Session{
		ID:          id,
		Name:        name,
		CreatedAt:   time.Now(),
		codec:       dimension.NewCodec(),
		presetCodec: preset.NewCodec(),
		presets:     preset.NewCollection(),
		dimState:    StateEmpty,
		presetState: StateEmpty,
	}
}

// LoadDimensions parses text and replaces the current dimension file. On a
// parse error the previous state is kept; on success any unsaved edits are
// discarded (load is the explicit reload path).
func (s *Session) LoadDimensions(text string) error {
	f, err := s.codec.Parse(text)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.dims = f
	s.dimState = StateLoaded
	s.rescanBindingsLocked()
	s.mu.Unlock()
	s.emit(Event{Type: "reload"})
	return nil
}

// LoadPresets parses text best-effort and replaces the current collection.
// The returned parse errors describe dropped presets; presets whose target
// dimension is not loaded are recorded as binding warnings.
func (s *Session) LoadPresets(text string) []*dimension.ParseError {
	coll, errs := s.presetCodec.Parse(text)
	s.mu.Lock()
	s.presets = coll
	s.presetState = StateLoaded
	s.rescanBindingsLocked()
	s.mu.Unlock()
	return errs
}

// rescanBindingsLocked rebuilds the warning list against the current files.
func (s *Session) rescanBindingsLocked() {
	s.warnings = s.warnings[:0]
	for _, d := range s.presets.List() {
		if s.dims == nil || !s.dims.Has(d.TargetDimension) {
			s.recordWarningLocked(BindingWarning{Preset: d.Name, TargetDimension: d.TargetDimension})
		}
	}
}

func (s *Session) recordWarningLocked(w BindingWarning) {
	if len(s.warnings) >= maxWarnings {
		s.warnings = s.warnings[1:]
	}
	s.warnings = append(s.warnings, w)
}

// SetValue updates one dimension in place. The caller supplies the value in
// the record's own unit.
func (s *Session) SetValue(name string, value float64) error {
	s.mu.Lock()
	if s.dims == nil {
		s.mu.Unlock()
		return dimension.ErrUnknownDimension
	}
	if err := s.dims.SetValue(name, value); err != nil {
		s.mu.Unlock()
		return err
	}
	s.dimState = StateModified
	s.mu.Unlock()
	s.emit(Event{Type: "value", Name: name, Value: value})
	return nil
}

// ApplyPreset moves the named slider to value and, when the binding
// resolves, pushes the value into the bound dimension. An unresolved
// binding does not fail the call: the preset still updates and a warning is
// recorded and returned.
func (s *Session) ApplyPreset(name string, value float64) (*BindingWarning, error) {
	s.mu.Lock()
	def, ok := s.presets.Get(name)
	if !ok {
		s.mu.Unlock()
		return nil, preset.ErrUnknownPreset
	}
	if err := s.presets.SetCurrent(name, value); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.presetState = StateModified

	var warn *BindingWarning
	resolved := s.dims != nil && s.dims.Has(def.TargetDimension)
	if resolved {
		s.dims.SetValue(def.TargetDimension, value)
		s.dimState = StateModified
	} else {
		w := BindingWarning{Preset: name, TargetDimension: def.TargetDimension}
		s.recordWarningLocked(w)
		warn = &w
	}
	s.mu.Unlock()

	ev := Event{Type: "preset", Preset: name, Value: value}
	if warn != nil {
		ev.Warning = "unresolved binding: " + warn.TargetDimension
	}
	s.emit(ev)
	if resolved {
		s.emit(Event{Type: "value", Name: def.TargetDimension, Value: value})
	}
	return warn, nil
}

// CreatePreset validates and adds a new slider definition.
func (s *Session) CreatePreset(def preset.Definition) error {
	s.mu.Lock()
	if err := s.presets.Add(def); err != nil {
		s.mu.Unlock()
		return err
	}
	s.presetState = StateModified
	if s.dims == nil || !s.dims.Has(def.TargetDimension) {
		s.recordWarningLocked(BindingWarning{Preset: def.Name, TargetDimension: def.TargetDimension})
	}
	s.mu.Unlock()
	s.emit(Event{Type: "preset", Preset: def.Name, Value: def.Current})
	return nil
}

// GeneratePreset builds a slider around a loaded dimension's current value,
// spanning [current-below, current+above], and adds it to the collection.
func (s *Session) GeneratePreset(name, dimName string, below, above, step float64) (preset.Definition, error) {
	s.mu.Lock()
	if s.dims == nil {
		s.mu.Unlock()
		return preset.Definition{}, dimension.ErrUnknownDimension
	}
	rec, ok := s.dims.Get(dimName)
	if !ok {
		s.mu.Unlock()
		return preset.Definition{}, dimension.ErrUnknownDimension
	}
	def := preset.Definition{
		Name:            name,
		TargetDimension: dimName,
		Min:             rec.Value - below,
		Max:             rec.Value + above,
		Step:            step,
		Current:         rec.Value,
	}
	if err := s.presets.Add(def); err != nil {
		s.mu.Unlock()
		return preset.Definition{}, err
	}
	s.presetState = StateModified
	s.mu.Unlock()
	s.emit(Event{Type: "preset", Preset: name, Value: def.Current})
	return def, nil
}

// DeletePreset removes a slider definition.
func (s *Session) DeletePreset(name string) error {
	s.mu.Lock()
	if err := s.presets.Remove(name); err != nil {
		s.mu.Unlock()
		return err
	}
	s.presetState = StateModified
	s.mu.Unlock()
	s.emit(Event{Type: "preset", Preset: name})
	return nil
}

// SaveDimensions serializes the current dimension file and marks it
// persisted. Writing the text anywhere is the caller's business.
func (s *Session) SaveDimensions() (string, error) {
	s.mu.Lock()
	if s.dims == nil {
		s.mu.Unlock()
		return "", ErrNotLoaded
	}
	text := s.codec.Serialize(s.dims)
	s.dimState = StateLoaded
	s.mu.Unlock()
	s.emit(Event{Type: "saved", Name: "dimensions"})
	return text, nil
}

// SavePresets serializes the current collection and marks it persisted.
func (s *Session) SavePresets() string {
	s.mu.Lock()
	text := s.presetCodec.Serialize(s.presets)
	if s.presetState == StateModified {
		s.presetState = StateLoaded
	}
	s.mu.Unlock()
	s.emit(Event{Type: "saved", Name: "presets"})
	return text
}

// Dimensions returns the parsed records in file order.
func (s *Session) Dimensions() []dimension.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dims == nil {
		return nil
	}
	return s.dims.Dimensions()
}

// Dimension returns one parsed record by name.
func (s *Session) Dimension(name string) (dimension.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dims == nil {
		return dimension.Record{}, false
	}
	return s.dims.Get(name)
}

// Presets returns the slider definitions in insertion order.
func (s *Session) Presets() []preset.Definition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.presets.List()
}

// Preset returns one slider definition by name.
func (s *Session) Preset(name string) (preset.Definition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.presets.Get(name)
}

// Warnings returns the unresolved-binding log, oldest first.
func (s *Session) Warnings() []BindingWarning {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]BindingWarning, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// State reports the combined lifecycle state: Modified if either file has
// unsaved edits, Loaded if anything is loaded, Empty otherwise.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dimState == StateModified || s.presetState == StateModified {
		return StateModified
	}
	if s.dimState == StateLoaded || s.presetState == StateLoaded {
		return StateLoaded
	}
	return StateEmpty
}
