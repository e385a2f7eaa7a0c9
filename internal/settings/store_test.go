package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"last-snow/internal/apperr"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, ".settings")
	s.Insert("max_characters", 200)
	s.Insert("td_osc_address", "10.0.0.5:7002")
	s.Insert("flags", []any{true, nil, "x"})
	s.Insert("nested", map[string]any{"a": 1.5})
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	fresh := New(dir, ".settings")
	if err := fresh.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	want := map[string]any{
		"max_characters": float64(200),
		"td_osc_address": "10.0.0.5:7002",
		"flags":          []any{true, nil, "x"},
		"nested":         map[string]any{"a": 1.5},
	}
	if diff := cmp.Diff(want, fresh.Entries()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveCreatesParentDir(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, filepath.Join("nested", "deeper", ".settings"))
	s.Insert("k", "v")
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(s.Path()); err != nil {
		t.Fatalf("settings file missing: %v", err)
	}
}

func TestLoadOverlaysDiskOverCache(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".settings"), []byte(`{"max_characters":90}`), 0o644); err != nil {
		t.Fatal(err)
	}
	s := New(dir, ".settings", WithDefaults(map[string]any{"max_characters": 160, "max_sentences_per_csv": 100}))
	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if n, _ := Int(s, KeyMaxCharacters); n != 90 {
		t.Fatalf("disk value should win, got %d", n)
	}
	if n, _ := Int(s, KeyMaxSentencesPerCSV); n != 100 {
		t.Fatalf("default should survive, got %d", n)
	}
}

func TestLoadFailureKeepsCache(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, ".settings", WithDefault("max_characters", 160))

	err := s.Load()
	if !errors.Is(err, apperr.ErrStorage) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file: want storage/not-exist error, got %v", err)
	}
	if n, ok := Int(s, KeyMaxCharacters); !ok || n != 160 {
		t.Fatalf("cache changed after failed load: %v %v", n, ok)
	}

	if err := os.WriteFile(s.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Load(); !errors.Is(err, apperr.ErrStorage) {
		t.Fatalf("corrupt file: want storage error, got %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("cache changed after corrupt load: %v", s.Entries())
	}
}

func TestResetWithDefaults(t *testing.T) {
	defaults := map[string]any{"max_characters": 160, "max_sentences_per_csv": 100}
	s := New(t.TempDir(), ".settings", WithDefaults(defaults))
	s.Insert("td_osc_address", "127.0.0.1:9000")
	s.Insert("max_characters", 10)

	s.Reset()
	if diff := cmp.Diff(defaults, s.Entries()); diff != "" {
		t.Fatalf("reset mismatch (-want +got):\n%s", diff)
	}

	// Mutating after reset must not leak into the stored defaults.
	s.Insert("extra", 1)
	s.Reset()
	if s.Has("extra") {
		t.Fatalf("defaults were aliased by the cache")
	}
}

func TestResetWithoutDefaults(t *testing.T) {
	s := New(t.TempDir(), ".settings")
	s.Insert("a", 1)
	s.Insert("b", 2)
	s.Reset()
	if s.Len() != 0 {
		t.Fatalf("want empty cache, got %v", s.Entries())
	}
}

func TestDelete(t *testing.T) {
	s := New(t.TempDir(), ".settings")
	s.Insert("a", 1)
	if !s.Delete("a") {
		t.Fatalf("delete of present key should report true")
	}
	if s.Delete("a") {
		t.Fatalf("delete of absent key should report false")
	}
	if s.Has("a") {
		t.Fatalf("key still present")
	}
}

func TestCustomCodec(t *testing.T) {
	dir := t.TempDir()
	ser := func(m map[string]any) ([]byte, error) { return []byte("fixed"), nil }
	de := func(b []byte) (map[string]any, error) { return map[string]any{"raw": string(b)}, nil }

	s := New(dir, "custom.bin", WithCodec(ser, de))
	s.Insert("ignored", true)
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	fresh := New(dir, "custom.bin", WithCodec(ser, de))
	if err := fresh.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if v, _ := fresh.Get("raw"); v != "fixed" {
		t.Fatalf("custom codec not used: %v", fresh.Entries())
	}
}
