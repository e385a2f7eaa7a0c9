package apperr

import (
	"errors"
	"io/fs"
	"testing"
)

func TestWrapKeepsBothChains(t *testing.T) {
	err := Storage("read settings", fs.ErrNotExist)
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("want ErrStorage in chain: %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("want fs.ErrNotExist in chain: %v", err)
	}
	if errors.Is(err, ErrDecode) {
		t.Fatalf("unexpected ErrDecode in chain: %v", err)
	}
	if got, want := err.Error(), "storage error: read settings: file does not exist"; got != want {
		t.Fatalf("message: got %q want %q", got, want)
	}
}

func TestWrapNil(t *testing.T) {
	if Forward("send", nil) != nil {
		t.Fatalf("nil error should stay nil")
	}
	if Configuration("scan", nil) != nil {
		t.Fatalf("nil error should stay nil")
	}
}
