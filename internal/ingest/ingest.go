// Package ingest is the submission path: a sentence typed at the kiosk
// becomes a row in the staging file, optionally triggers a notification to
// the configured listener, and rotates the staging file when it is full.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"last-snow/internal/apperr"
	"last-snow/internal/settings"
	"last-snow/internal/storage"
)

var (
	ErrEmptySentence = errors.New("ingest: empty sentence")
	ErrTooLong       = errors.New("ingest: sentence exceeds max_characters")
)

type Forwarder interface {
	Forward(ctx context.Context, addr, sentence string) error
}

type Submitter struct {
	settings  settings.Opener
	log       *storage.Log
	forwarder Forwarder
	logger    *zap.Logger
	now       func() time.Time
}

func New(opener settings.Opener, log *storage.Log, fwd Forwarder, logger *zap.Logger) *Submitter {
	return &Submitter{
		settings:  opener,
		log:       log,
		forwarder: fwd,
		logger:    logger,
		now:       time.Now,
	}
}

// Submit records one sentence. Only a failure to write the record is returned,
// plus a rotation blocked by an unnumbered archive entry; forwarding and other
// rotation failures are logged.
func (s *Submitter) Submit(ctx context.Context, language, text string) error {
	rec := storage.NewRecord(language, text, s.now())

	return s.log.Do(func(tx *storage.Tx) error {
		rows, err := tx.Append(rec)
		if err != nil {
			return err
		}

		store := s.settings.Open()
		if err := store.Load(); err != nil {
			s.logger.Error("error loading settings", zap.Error(err))
		}
		threshold, ok := settings.Int(store, settings.KeyMaxSentencesPerCSV)
		if !ok {
			s.logger.Error("error getting max_sentences_per_csv, using default",
				zap.Int("default", settings.DefaultMaxSentencesPerCSV))
			threshold = settings.DefaultMaxSentencesPerCSV
		}

		if addr, ok := settings.String(store, settings.KeyForwardAddress); ok && s.forwarder != nil {
			if err := s.forwarder.Forward(ctx, addr, rec.Sentence); err != nil {
				s.logger.Error("error forwarding new row", zap.String("addr", addr), zap.Error(err))
			}
		}

		s.logger.Info("staging file rows", zap.Int("rows", rows), zap.Int("max", threshold))

		if _, err := tx.RotateIfFull(rows, threshold); err != nil {
			if errors.Is(err, apperr.ErrConfiguration) {
				return fmt.Errorf("record saved but not rotated: %w", err)
			}
			s.logger.Error("error rotating staging file", zap.Error(err))
		}
		return nil
	})
}

// MaxCharacters returns the configured sentence limit.
func (s *Submitter) MaxCharacters() int {
	store := s.settings.Open()
	if err := store.Load(); err != nil {
		s.logger.Warn("error loading settings", zap.Error(err))
	}
	if n, ok := settings.Int(store, settings.KeyMaxCharacters); ok && n > 0 {
		return n
	}
	return settings.DefaultMaxCharacters
}

// Validate applies the input limits the kiosk screen enforces.
func (s *Submitter) Validate(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptySentence
	}
	if limit := s.MaxCharacters(); utf8.RuneCountInString(text) > limit {
		return fmt.Errorf("%w (%d)", ErrTooLong, limit)
	}
	return nil
}
