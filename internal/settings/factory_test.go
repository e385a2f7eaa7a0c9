package settings

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSeedAddsMissingKeysOnly(t *testing.T) {
	dir := t.TempDir()
	f := NewFactory(dir, ".settings")

	pre := f.Open()
	pre.Insert(KeyMaxCharacters, 42)
	require.NoError(t, pre.Save())

	require.NoError(t, Seed(f, zap.NewNop()))

	got := f.Open()
	require.NoError(t, got.Load())
	n, ok := Int(got, KeyMaxCharacters)
	assert.True(t, ok)
	assert.Equal(t, 42, n)
	n, ok = Int(got, KeyMaxSentencesPerCSV)
	assert.True(t, ok)
	assert.Equal(t, DefaultMaxSentencesPerCSV, n)
	assert.False(t, got.Has(KeyForwardAddress))
}

func TestSeedOnMissingFile(t *testing.T) {
	dir := t.TempDir()
	f := NewFactory(dir, ".settings")
	require.NoError(t, Seed(f, zap.NewNop()))

	_, err := os.Stat(f.Store().Path())
	require.NoError(t, err)
}

func TestTypedReaders(t *testing.T) {
	s := New(t.TempDir(), ".settings")
	s.Insert("f", float64(7))
	s.Insert("frac", 7.5)
	s.Insert("huge", 1e300)
	s.Insert("neg", float64(-2147483648))
	s.Insert("over", float64(2147483648))
	s.Insert("i32", int32(3))
	s.Insert("i64", int64(4))
	s.Insert("str", "addr")
	s.Insert("empty", "")

	tests := []struct {
		key  string
		want int
		ok   bool
	}{
		{"f", 7, true},
		{"frac", 0, false},
		{"huge", 0, false},
		{"neg", -2147483648, true},
		{"over", 0, false},
		{"i32", 3, true},
		{"i64", 4, true},
		{"str", 0, false},
		{"missing", 0, false},
	}
	for _, tt := range tests {
		got, ok := Int(s, tt.key)
		assert.Equal(t, tt.ok, ok, tt.key)
		assert.Equal(t, tt.want, got, tt.key)
	}

	addr, ok := String(s, "str")
	assert.True(t, ok)
	assert.Equal(t, "addr", addr)
	_, ok = String(s, "empty")
	assert.False(t, ok)
	_, ok = String(s, "i32")
	assert.False(t, ok)
}
