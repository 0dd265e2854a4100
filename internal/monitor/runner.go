// internal/monitor/runner.go
package monitor

import (
	"context"
	"fmt"
	"time"
)

// Run polls once immediately, then on every tick. One goroutine. No
// overlap. No retries. It returns nil when ctx is cancelled and the read
// error otherwise; a failed read is fatal to the caller.
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.poll(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := m.poll(ctx); err != nil {
				return err
			}
		}
	}
}

func (m *Monitor) poll(ctx context.Context) error {
	if _, err := m.PollOnce(); err != nil {
		// a poll racing with shutdown may see the closed controller
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("monitor: %w", err)
	}
	return nil
}
