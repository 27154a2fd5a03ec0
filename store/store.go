// Package store reads and writes the dimension and preset files. The
// codecs stay pure text-in/text-out; every filesystem touch lives here.
package store

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const bom = "\xef\xbb\xbf"

var ErrNoDimensionFile = errors.New("no dimension file found")

// Store binds one dimension file and its preset file on disk. The
// exporting tool writes UTF-8-BOM files, so the BOM is stripped on read
// and restored on write; a file that never existed gets one too.
type Store struct {
	mu         sync.Mutex
	dimPath    string
	presetPath string
	dimBOM     bool
	presetBOM  bool
}

func New(dimPath, presetPath string) *Store {
	return &Store{
		dimPath:    dimPath,
		presetPath: presetPath,
		dimBOM:     true,
		presetBOM:  true,
	}
}

func (s *Store) DimensionPath() string { return s.dimPath }
func (s *Store) PresetPath() string    { return s.presetPath }

// ReadDimensions returns the dimension file content. A missing file is an
// error: there is nothing to edit without one.
func (s *Store) ReadDimensions() (string, error) {
	data, err := os.ReadFile(s.dimPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoDimensionFile
		}
		return "", err
	}
	text, had := strip(string(data))
	s.mu.Lock()
	s.dimBOM = had
	s.mu.Unlock()
	return text, nil
}

// ReadPresets returns the preset file content. A missing file is not an
// error: the session simply starts with an empty collection.
func (s *Store) ReadPresets() (string, error) {
	if s.presetPath == "" {
		return "", nil
	}
	data, err := os.ReadFile(s.presetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	text, had := strip(string(data))
	s.mu.Lock()
	s.presetBOM = had
	s.mu.Unlock()
	return text, nil
}

func (s *Store) WriteDimensions(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimBOM {
		text = bom + text
	}
	return writeAtomic(s.dimPath, text)
}

func (s *Store) WritePresets(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.presetBOM {
		text = bom + text
	}
	return writeAtomic(s.presetPath, text)
}

// writeAtomic writes to a temp file then renames it over path, so the CAD
// tool never observes a half-written file.
func writeAtomic(path, text string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(text), 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func strip(text string) (string, bool) {
	if strings.HasPrefix(text, bom) {
		return text[len(bom):], true
	}
	return text, false
}

// DiscoverDimensionFile returns the first .txt file in dir (sorted by
// name), skipping preset files, matching the tool's auto-load behavior.
func DiscoverDimensionFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		if isPresetName(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return "", ErrNoDimensionFile
	}
	sort.Strings(names)
	return filepath.Join(dir, names[0]), nil
}

var presetSuffixes = []string{"_presets", "_preset", "_p"}

func isPresetName(name string) bool {
	base := strings.TrimSuffix(name, ".txt")
	if base == "presets" {
		return true
	}
	for _, suf := range presetSuffixes {
		if strings.HasSuffix(base, suf) {
			return true
		}
	}
	return false
}

// PresetPathFor derives the preset file path for a dimension file: the
// first existing of <base>_presets.txt, <base>_preset.txt, <base>_p.txt or
// presets.txt in the same directory; when none exists yet it returns
// <base>_presets.txt as the path to create.
func PresetPathFor(dimPath string) string {
	dir := filepath.Dir(dimPath)
	base := strings.TrimSuffix(filepath.Base(dimPath), filepath.Ext(dimPath))

	candidates := make([]string, 0, len(presetSuffixes)+1)
	for _, suf := range presetSuffixes {
		candidates = append(candidates, filepath.Join(dir, base+suf+".txt"))
	}
	candidates = append(candidates, filepath.Join(dir, "presets.txt"))

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return candidates[0]
}
