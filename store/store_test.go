package store_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dim-editor/store"
)

const bom = "\xef\xbb\xbf"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile %s: %v", path, err)
	}
}

func TestReadStripsBOM(t *testing.T) {
	dir := t.TempDir()
	dimPath := filepath.Join(dir, "room.txt")
	writeFile(t, dimPath, bom+"\"External\"= 1000mm\n")

	s := store.New(dimPath, "")
	text, err := s.ReadDimensions()
	if err != nil {
		t.Fatalf("ReadDimensions: %v", err)
	}
	if strings.HasPrefix(text, bom) {
		t.Fatal("BOM should be stripped on read")
	}
	if text != "\"External\"= 1000mm\n" {
		t.Fatalf("unexpected content: %q", text)
	}
}

func TestWriteRestoresBOM(t *testing.T) {
	dir := t.TempDir()
	dimPath := filepath.Join(dir, "room.txt")
	writeFile(t, dimPath, bom+"\"External\"= 1000mm\n")

	s := store.New(dimPath, "")
	if _, err := s.ReadDimensions(); err != nil {
		t.Fatalf("ReadDimensions: %v", err)
	}
	if err := s.WriteDimensions("\"External\"= 1200mm\n"); err != nil {
		t.Fatalf("WriteDimensions: %v", err)
	}

	data, _ := os.ReadFile(dimPath)
	if string(data) != bom+"\"External\"= 1200mm\n" {
		t.Fatalf("BOM not restored: %q", data)
	}
}

func TestWriteKeepsBOMlessFilesBOMless(t *testing.T) {
	dir := t.TempDir()
	dimPath := filepath.Join(dir, "room.txt")
	writeFile(t, dimPath, "\"External\"= 1000mm\n")

	s := store.New(dimPath, "")
	if _, err := s.ReadDimensions(); err != nil {
		t.Fatalf("ReadDimensions: %v", err)
	}
	if err := s.WriteDimensions("\"External\"= 900mm\n"); err != nil {
		t.Fatalf("WriteDimensions: %v", err)
	}
	data, _ := os.ReadFile(dimPath)
	if strings.HasPrefix(string(data), bom) {
		t.Fatal("file without BOM gained one on write")
	}
}

func TestMissingDimensionFile(t *testing.T) {
	s := store.New(filepath.Join(t.TempDir(), "nope.txt"), "")
	if _, err := s.ReadDimensions(); !errors.Is(err, store.ErrNoDimensionFile) {
		t.Fatalf("expected ErrNoDimensionFile, got %v", err)
	}
}

func TestMissingPresetFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	s := store.New(filepath.Join(dir, "room.txt"), filepath.Join(dir, "room_presets.txt"))
	text, err := s.ReadPresets()
	if err != nil {
		t.Fatalf("ReadPresets: %v", err)
	}
	if text != "" {
		t.Fatalf("expected empty content, got %q", text)
	}
}

func TestWriteLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	presetPath := filepath.Join(dir, "room_presets.txt")
	s := store.New(filepath.Join(dir, "room.txt"), presetPath)

	if err := s.WritePresets("Width, D1, 10, 50, 1, 25\n"); err != nil {
		t.Fatalf("WritePresets: %v", err)
	}
	if _, err := os.Stat(presetPath + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("temp file left behind")
	}
	data, _ := os.ReadFile(presetPath)
	// A brand-new preset file gets a BOM, matching the exporting tool.
	if string(data) != bom+"Width, D1, 10, 50, 1, 25\n" {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestDiscoverDimensionFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "zeta.txt"), "")
	writeFile(t, filepath.Join(dir, "alpha.txt"), "")
	writeFile(t, filepath.Join(dir, "alpha_presets.txt"), "")
	writeFile(t, filepath.Join(dir, "presets.txt"), "")
	writeFile(t, filepath.Join(dir, "readme.md"), "")

	got, err := store.DiscoverDimensionFile(dir)
	if err != nil {
		t.Fatalf("DiscoverDimensionFile: %v", err)
	}
	if got != filepath.Join(dir, "alpha.txt") {
		t.Fatalf("expected alpha.txt, got %s", got)
	}
}

func TestDiscoverDimensionFileEmpty(t *testing.T) {
	if _, err := store.DiscoverDimensionFile(t.TempDir()); !errors.Is(err, store.ErrNoDimensionFile) {
		t.Fatalf("expected ErrNoDimensionFile, got %v", err)
	}
}

func TestPresetPathFor(t *testing.T) {
	dir := t.TempDir()
	dimPath := filepath.Join(dir, "room.txt")

	// Nothing exists yet: default to <base>_presets.txt.
	if got := store.PresetPathFor(dimPath); got != filepath.Join(dir, "room_presets.txt") {
		t.Fatalf("default path: got %s", got)
	}

	// A generic presets.txt is found when no per-file preset exists.
	writeFile(t, filepath.Join(dir, "presets.txt"), "")
	if got := store.PresetPathFor(dimPath); got != filepath.Join(dir, "presets.txt") {
		t.Fatalf("generic path: got %s", got)
	}

	// The per-file name wins over the generic one.
	writeFile(t, filepath.Join(dir, "room_presets.txt"), "")
	if got := store.PresetPathFor(dimPath); got != filepath.Join(dir, "room_presets.txt") {
		t.Fatalf("per-file path: got %s", got)
	}
}
