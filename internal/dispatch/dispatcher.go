// internal/dispatch/dispatcher.go
package dispatch

import (
	"errors"
	"fmt"
	"log/slog"
)

// StateWriter is the controller operation the dispatcher drives.
type StateWriter interface {
	WriteState(target bool) (changed bool, err error)
}

// Dispatcher turns recognized phrases into coil writes.
type Dispatcher struct {
	vocab  Vocabulary
	ctl    StateWriter
	logger *slog.Logger
}

func New(vocab Vocabulary, ctl StateWriter, logger *slog.Logger) (*Dispatcher, error) {
	if vocab.Activate == "" || vocab.Deactivate == "" {
		return nil, errors.New("dispatch: activate and deactivate phrases required")
	}
	if vocab.Activate == vocab.Deactivate {
		return nil, errors.New("dispatch: activate and deactivate phrases must differ")
	}
	if ctl == nil {
		return nil, errors.New("dispatch: state writer required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{vocab: vocab, ctl: ctl, logger: logger}, nil
}

// Dispatch classifies token and, when recognized, drives the coil.
// An unrecognized token is not an error. Transport errors are wrapped
// with the command kind; errors.As still finds the *link.Error so the
// caller can escalate them.
func (d *Dispatcher) Dispatch(token string) (Outcome, error) {
	kind := d.vocab.Classify(token)

	var target bool
	switch kind {
	case KindActivate:
		target = true
	case KindDeactivate:
		target = false
	default:
		d.logger.Warn("unrecognized command", "text", token)
		return OutcomeUnrecognized, nil
	}

	d.logger.Info("command recognized", "text", token, "command", kind.String())

	changed, err := d.ctl.WriteState(target)
	if err != nil {
		return OutcomeUnrecognized, fmt.Errorf("dispatch: %s: %w", kind, err)
	}

	if !changed {
		d.logger.Info("fan already in requested state", "state", stateLabel(target))
		return OutcomeAlreadySet, nil
	}

	d.logger.Info("fan state changed", "state", stateLabel(target))
	return OutcomeChanged, nil
}

func stateLabel(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
