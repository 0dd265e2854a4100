// internal/link/errors.go
package link

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goburrow/modbus"
)

// Kind classifies a transport failure.
// Every kind is non-retriable at this layer.
type Kind uint8

const (
	KindPortUnavailable Kind = iota + 1
	KindTimeout
	KindMalformed
	KindException
	KindAddressMismatch
)

func (k Kind) String() string {
	switch k {
	case KindPortUnavailable:
		return "port unavailable"
	case KindTimeout:
		return "timeout"
	case KindMalformed:
		return "malformed response"
	case KindException:
		return "device exception"
	case KindAddressMismatch:
		return "device address mismatch"
	default:
		return "unknown"
	}
}

// Error is the single failure type surfaced by the serial link.
type Error struct {
	Op   string // open, read-registers, read-coil, write-coil, close
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("link: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Code exposes a best-effort numeric code.
// Modbus exceptions report the exception code, everything else 0x100+kind.
func (e *Error) Code() uint16 {
	var mbErr *modbus.ModbusError
	if errors.As(e.Err, &mbErr) {
		return uint16(mbErr.ExceptionCode)
	}
	return 0x100 + uint16(e.Kind)
}

// IsLinkError reports whether err carries a *Error anywhere in its chain.
func IsLinkError(err error) bool {
	var le *Error
	return errors.As(err, &le)
}

// wrap turns a raw transport error into *Error. Nil stays nil.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var le *Error
	if errors.As(err, &le) {
		return err
	}
	return &Error{Op: op, Kind: classify(op, err), Err: err}
}

// classify maps driver errors onto a Kind.
// goburrow reports most framing problems as plain formatted errors,
// so message inspection is the only signal available for those.
func classify(op string, err error) Kind {
	var mbErr *modbus.ModbusError
	if errors.As(err, &mbErr) {
		return KindException
	}

	var to interface{ Timeout() bool }
	if errors.As(err, &to) && to.Timeout() {
		return KindTimeout
	}

	if op == "open" {
		return KindPortUnavailable
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return KindPortUnavailable
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"):
		return KindTimeout
	case strings.Contains(msg, "slave id"):
		return KindAddressMismatch
	case strings.Contains(msg, "not open"), strings.Contains(msg, "closed"):
		return KindPortUnavailable
	}

	return KindMalformed
}
