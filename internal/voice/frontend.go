// internal/voice/frontend.go
package voice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tamzrod/modbus-fan/internal/dispatch"
	"github.com/tamzrod/modbus-fan/internal/voice/audio"
	"github.com/tamzrod/modbus-fan/internal/voice/speech"
)

// ErrQuit is returned by Run when the operator presses the quit key.
var ErrQuit = errors.New("voice: quit requested")

// KeySource yields one key press at a time.
type KeySource interface {
	Next(ctx context.Context) (byte, error)
}

// Recorder captures a fixed-length clip from the microphone.
type Recorder interface {
	Record(ctx context.Context, d time.Duration) (audio.Clip, error)
}

// Dispatcher executes a recognized phrase.
type Dispatcher interface {
	Dispatch(token string) (dispatch.Outcome, error)
}

// Config is the front end's runtime config.
type Config struct {
	RecordKey byte
	QuitKey   byte
	RecordFor time.Duration
}

// Frontend turns key presses into spoken commands.
// Commands are handled strictly one at a time.
type Frontend struct {
	cfg        Config
	keys       KeySource
	rec        Recorder
	stt        speech.Transcriber
	dispatcher Dispatcher
	logger     *slog.Logger
}

func New(cfg Config, keys KeySource, rec Recorder, stt speech.Transcriber, d Dispatcher, logger *slog.Logger) (*Frontend, error) {
	if cfg.RecordKey == cfg.QuitKey {
		return nil, errors.New("voice: record and quit keys must differ")
	}
	if cfg.RecordFor <= 0 {
		return nil, errors.New("voice: record duration must be > 0")
	}
	if keys == nil || rec == nil || stt == nil || d == nil {
		return nil, errors.New("voice: keys, recorder, transcriber and dispatcher required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Frontend{
		cfg:        cfg,
		keys:       keys,
		rec:        rec,
		stt:        stt,
		dispatcher: d,
		logger:     logger,
	}, nil
}

// Run blocks until ctx is done (nil), the quit key is pressed (ErrQuit)
// or a command fails on the bus. Capture and recognition failures only
// skip the current command.
func (f *Frontend) Run(ctx context.Context) error {
	f.logger.Info("voice front end ready",
		"record_key", string(f.cfg.RecordKey),
		"quit_key", string(f.cfg.QuitKey),
	)

	for {
		key, err := f.keys.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("voice: %w", err)
		}

		switch key {
		case f.cfg.QuitKey:
			f.logger.Info("quit key pressed")
			return ErrQuit
		case f.cfg.RecordKey:
			if err := f.handle(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		default:
			f.logger.Debug("ignored key", "key", key)
		}
	}
}

// handle runs one capture, recognize, dispatch cycle.
func (f *Frontend) handle(ctx context.Context) error {
	f.logger.Info("recording", "seconds", f.cfg.RecordFor.Seconds())

	clip, err := f.rec.Record(ctx, f.cfg.RecordFor)
	if err != nil {
		f.logger.Warn("capture failed", "error", err)
		return nil
	}

	text, err := f.stt.Transcribe(ctx, clip)
	if err != nil {
		f.logger.Warn("recognition failed", "error", err)
		return nil
	}
	f.logger.Info("recognized", "text", text)

	if _, err := f.dispatcher.Dispatch(text); err != nil {
		return fmt.Errorf("voice: %w", err)
	}
	return nil
}
