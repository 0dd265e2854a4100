// internal/status/constants.go
package status

// Process lifecycle phases.
// These values define the lifecycle and MUST NOT be configurable.

// Phase is one lifecycle state of the controller process.
type Phase uint8

// PhaseUninitialized is the boot state, before the bus is opened.
const PhaseUninitialized Phase = 0

// PhaseReady means the bus is open, identified and forced off.
const PhaseReady Phase = 1

// PhaseRunning means the monitor and listeners are active.
const PhaseRunning Phase = 2

// PhaseShuttingDown means background activities are being stopped.
const PhaseShuttingDown Phase = 3

// PhaseTerminated is final.
const PhaseTerminated Phase = 4

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "UNINITIALIZED"
	case PhaseReady:
		return "READY"
	case PhaseRunning:
		return "RUNNING"
	case PhaseShuttingDown:
		return "SHUTTING_DOWN"
	case PhaseTerminated:
		return "TERMINATED"
	default:
		return "UNKNOWN"
	}
}

// ---- EXIT CODES ----

// ExitOK is returned after a requested shutdown.
const ExitOK = 0

// ExitInitFailed is returned when configuration or initialization fails.
const ExitInitFailed = 1

// ExitLinkLost is returned when the bus fails after startup.
const ExitLinkLost = 2
