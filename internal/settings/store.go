// Package settings implements the kiosk's persistent key/value settings.
//
// A Store is short-lived: build one per logical operation, Load it, read or
// mutate the in-memory cache, Save if anything changed, then drop it. The file
// on disk is the only state shared between the listener and the submission
// path.
package settings

import (
	"encoding/json"
	"maps"
	"os"
	"path/filepath"

	"last-snow/internal/apperr"
)

// Recognized keys.
const (
	KeyMaxCharacters      = "max_characters"
	KeyMaxSentencesPerCSV = "max_sentences_per_csv"
	KeyForwardAddress     = "td_osc_address"
)

// Default values seeded at startup.
const (
	DefaultMaxCharacters      = 160
	DefaultMaxSentencesPerCSV = 100
)

type (
	SerializeFunc   func(map[string]any) ([]byte, error)
	DeserializeFunc func([]byte) (map[string]any, error)
)

// Handle is what components need from a settings store for one operation.
type Handle interface {
	Load() error
	Save() error
	Get(key string) (any, bool)
	Has(key string) bool
	Insert(key string, value any)
	Delete(key string) bool
}

// Opener hands out a fresh Handle per operation.
type Opener interface {
	Open() Handle
}

type Store struct {
	path        string
	defaults    map[string]any
	cache       map[string]any
	serialize   SerializeFunc
	deserialize DeserializeFunc
}

type Option func(*Store)

// WithDefaults sets the mapping Reset restores and seeds the cache with it.
func WithDefaults(defaults map[string]any) Option {
	if defaults == nil {
		defaults = map[string]any{}
	}
	return func(s *Store) {
		s.defaults = maps.Clone(defaults)
		s.cache = maps.Clone(defaults)
	}
}

// WithDefault adds a single default pair.
func WithDefault(key string, value any) Option {
	return func(s *Store) {
		if s.defaults == nil {
			s.defaults = make(map[string]any)
		}
		s.defaults[key] = value
		s.cache[key] = value
	}
}

// WithCodec replaces the JSON codec.
func WithCodec(serialize SerializeFunc, deserialize DeserializeFunc) Option {
	return func(s *Store) {
		s.serialize = serialize
		s.deserialize = deserialize
	}
}

// New builds a store backed by baseDir/path. Nothing is read until Load.
func New(baseDir, path string, opts ...Option) *Store {
	s := &Store{
		path:        filepath.Join(baseDir, path),
		cache:       make(map[string]any),
		serialize:   jsonSerialize,
		deserialize: jsonDeserialize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Path() string { return s.path }

// Load overlays the file contents onto the cache; values on disk win. On any
// error the cache is left as it was.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return apperr.Storage("read settings", err)
	}
	loaded, err := s.deserialize(data)
	if err != nil {
		return apperr.Storage("decode settings", err)
	}
	maps.Copy(s.cache, loaded)
	return nil
}

// Save writes the whole cache, replacing the previous file contents.
func (s *Store) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return apperr.Storage("ensure settings dir", err)
	}
	data, err := s.serialize(s.cache)
	if err != nil {
		return apperr.Storage("encode settings", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return apperr.Storage("write settings", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return apperr.Storage("replace settings", err)
	}
	return nil
}

func (s *Store) Get(key string) (any, bool) {
	v, ok := s.cache[key]
	return v, ok
}

func (s *Store) Has(key string) bool {
	_, ok := s.cache[key]
	return ok
}

// Insert upserts into the cache only.
func (s *Store) Insert(key string, value any) {
	s.cache[key] = value
}

func (s *Store) Delete(key string) bool {
	_, ok := s.cache[key]
	delete(s.cache, key)
	return ok
}

func (s *Store) Clear() {
	clear(s.cache)
}

// Reset restores the configured defaults, or empties the cache without them.
func (s *Store) Reset() {
	if s.defaults == nil {
		s.Clear()
		return
	}
	s.cache = maps.Clone(s.defaults)
}

func (s *Store) Len() int { return len(s.cache) }

func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.cache))
	for k := range s.cache {
		keys = append(keys, k)
	}
	return keys
}

// Entries returns a copy of the cache.
func (s *Store) Entries() map[string]any {
	return maps.Clone(s.cache)
}

func jsonSerialize(cache map[string]any) ([]byte, error) {
	return json.Marshal(cache)
}

func jsonDeserialize(data []byte) (map[string]any, error) {
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
