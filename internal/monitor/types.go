// internal/monitor/types.go
package monitor

import "github.com/tamzrod/modbus-fan/internal/status"

// StateReader is the only controller operation the monitor uses.
// The monitor never writes.
type StateReader interface {
	ReadState() (bool, error)
}

// Sink receives every successful observation.
// Report must not block for long: it runs on the poll goroutine.
type Sink interface {
	Report(s status.Snapshot)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(s status.Snapshot)

func (f SinkFunc) Report(s status.Snapshot) { f(s) }
