package settings

import (
	"math"

	"go.uber.org/zap"
)

// Factory opens stores against one settings file.
type Factory struct {
	BaseDir string
	Path    string
	Options []Option
}

func NewFactory(baseDir, path string, opts ...Option) *Factory {
	return &Factory{BaseDir: baseDir, Path: path, Options: opts}
}

func (f *Factory) Open() Handle {
	return f.Store()
}

// Store is Open with the concrete type, for callers that need Entries or Reset.
func (f *Factory) Store() *Store {
	return New(f.BaseDir, f.Path, f.Options...)
}

// Seed makes sure the recognized numeric keys exist on disk, keeping any
// values already there.
func Seed(opener Opener, logger *zap.Logger) error {
	store := opener.Open()
	if err := store.Load(); err != nil {
		logger.Warn("settings not loaded, seeding defaults", zap.Error(err))
	}
	if !store.Has(KeyMaxCharacters) {
		store.Insert(KeyMaxCharacters, DefaultMaxCharacters)
	}
	if !store.Has(KeyMaxSentencesPerCSV) {
		store.Insert(KeyMaxSentencesPerCSV, DefaultMaxSentencesPerCSV)
	}
	return store.Save()
}

// Int reads key as an integer. JSON numbers decode as float64 and must be
// whole and within int32 range; values set in memory may be any integer type.
func Int(h Handle, key string) (int, bool) {
	v, ok := h.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || n < math.MinInt32 || n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

// String reads key as a non-empty string.
func String(h Handle, key string) (string, bool) {
	v, ok := h.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
