// internal/app/exit.go
package app

import (
	"errors"

	"github.com/tamzrod/modbus-fan/internal/coil"
	"github.com/tamzrod/modbus-fan/internal/link"
	"github.com/tamzrod/modbus-fan/internal/status"
)

// IsLinkFailure reports whether err came from the serial link,
// directly or through a poisoned controller.
func IsLinkFailure(err error) bool {
	return errors.Is(err, coil.ErrLinkLost) || link.IsLinkError(err)
}

// ExitCode maps the result of Run to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return status.ExitOK
	}

	var ie *coil.InitError
	if errors.As(err, &ie) {
		return status.ExitInitFailed
	}
	if IsLinkFailure(err) {
		return status.ExitLinkLost
	}
	return status.ExitInitFailed
}
