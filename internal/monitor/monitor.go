// internal/monitor/monitor.go
package monitor

import (
	"errors"
	"log/slog"
	"time"

	"github.com/tamzrod/modbus-fan/internal/status"
)

// Config is the minimal runtime config the monitor needs.
type Config struct {
	Interval time.Duration
}

// Monitor is a dumb, clock-driven reader of the fan coil.
type Monitor struct {
	cfg    Config
	reader StateReader
	sinks  []Sink
	logger *slog.Logger
	now    func() time.Time
}

// New creates a monitor with immutable config.
func New(cfg Config, reader StateReader, logger *slog.Logger, sinks ...Sink) (*Monitor, error) {
	if cfg.Interval <= 0 {
		return nil, errors.New("monitor: interval must be > 0")
	}
	if reader == nil {
		return nil, errors.New("monitor: state reader required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		cfg:    cfg,
		reader: reader,
		sinks:  sinks,
		logger: logger,
		now:    time.Now,
	}, nil
}

// PollOnce performs exactly one poll cycle.
// On failure nothing is reported and the error is returned as-is.
func (m *Monitor) PollOnce() (status.Snapshot, error) {
	on, err := m.reader.ReadState()
	if err != nil {
		return status.Snapshot{}, err
	}

	snap := status.Snapshot{On: on, At: m.now()}

	m.logger.Info("fan connected", "state", snap.StateLabel())
	for _, s := range m.sinks {
		s.Report(snap)
	}
	return snap, nil
}
