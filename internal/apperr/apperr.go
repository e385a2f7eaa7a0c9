// Package apperr defines the error categories shared by the kiosk core.
// Components wrap concrete failures with one of these sentinels so callers
// can branch with errors.Is regardless of where the failure originated.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrStorage covers file I/O and (de)serialization failures.
	ErrStorage = errors.New("storage error")

	// ErrDecode marks a malformed control message.
	ErrDecode = errors.New("decode error")

	// ErrForward marks a failed outbound notification.
	ErrForward = errors.New("forward error")

	// ErrConfiguration marks on-disk state the kiosk refuses to guess about,
	// e.g. a non-numeric file in the archive directory.
	ErrConfiguration = errors.New("configuration error")
)

// Storage wraps err as a storage failure with a short operation label.
func Storage(op string, err error) error {
	return wrap(ErrStorage, op, err)
}

// Forward wraps err as a forwarding failure.
func Forward(op string, err error) error {
	return wrap(ErrForward, op, err)
}

// Configuration wraps err as a configuration failure.
func Configuration(op string, err error) error {
	return wrap(ErrConfiguration, op, err)
}

func wrap(kind error, op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", kind, op, err)
}
