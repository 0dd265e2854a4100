// internal/status/snapshot.go
package status

import "time"

// Snapshot is one observation of the fan coil.
// It carries no memory of the past; every poll builds a new one.
type Snapshot struct {
	On bool
	At time.Time
}

// StateLabel renders the coil as "on" or "off".
func (s Snapshot) StateLabel() string {
	if s.On {
		return "on"
	}
	return "off"
}
