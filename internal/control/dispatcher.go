package control

import (
	"context"

	"go.uber.org/zap"

	"last-snow/internal/osc"
	"last-snow/internal/settings"
)

// RecordLog is the subset of the record log the control channel may change.
type RecordLog interface {
	RemoveAll() int
	RemoveArchive(name string) error
	RemoveStaging() error
}

type Dispatcher struct {
	settings settings.Opener
	log      RecordLog
	logger   *zap.Logger
}

func NewDispatcher(opener settings.Opener, log RecordLog, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{settings: opener, log: log, logger: logger}
}

// Run dispatches packets until the channel closes or ctx is done.
func (d *Dispatcher) Run(ctx context.Context, packets <-chan osc.Packet) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case p, ok := <-packets:
			if !ok {
				return nil
			}
			_ = d.Dispatch(p)
		}
	}
}

// Dispatch applies one top-level packet. Bundle elements are applied in
// order against a single settings store, which is saved once at the end.
func (d *Dispatcher) Dispatch(p osc.Packet) error {
	store := d.settings.Open()
	if err := store.Load(); err != nil {
		d.logger.Error("error loading settings", zap.Error(err))
	}

	d.apply(p, store)

	if err := store.Save(); err != nil {
		d.logger.Error("error saving settings", zap.Error(err))
		return err
	}
	return nil
}

func (d *Dispatcher) apply(p osc.Packet, store settings.Handle) {
	switch v := p.(type) {
	case *osc.Bundle:
		for _, e := range v.Elements {
			d.apply(e, store)
		}
	case *osc.Message:
		d.logger.Info("received control message", zap.Stringer("message", v))
		cmd, err := Parse(v)
		if err != nil {
			d.logger.Warn("invalid control message", zap.String("address", v.Address), zap.Error(err))
			return
		}
		d.execute(cmd, store)
	}
}

func (d *Dispatcher) execute(cmd Command, store settings.Handle) {
	switch c := cmd.(type) {
	case SetForwardAddress:
		store.Insert(settings.KeyForwardAddress, c.Address)
	case SetMaxCharacters:
		store.Insert(settings.KeyMaxCharacters, c.Value)
	case SetMaxSentences:
		store.Insert(settings.KeyMaxSentencesPerCSV, c.Value)
	case RemoveAll:
		n := d.log.RemoveAll()
		d.logger.Info("removed record files", zap.Int("count", n))
	case RemoveArchive:
		if err := d.log.RemoveArchive(c.Name); err != nil {
			d.logger.Error("error removing archive file", zap.String("name", c.Name), zap.Error(err))
		}
	case RemoveStaging:
		if err := d.log.RemoveStaging(); err != nil {
			d.logger.Error("error removing staging file", zap.Error(err))
		}
	}
}
