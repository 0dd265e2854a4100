// internal/coil/controller.go
package coil

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Fixed device geometry.
const (
	CoilAddress      uint16 = 0
	IdentityAddress  uint16 = 0
	IdentityQuantity uint16 = 11
)

// ErrLinkLost is returned for every operation after the first transport
// failure. The wrapped cause is the original link error.
var ErrLinkLost = errors.New("coil: link lost")

// ErrClosed is returned after Close.
var ErrClosed = errors.New("coil: controller closed")

// Bus abstracts the serial link operations the controller needs.
// Implementations are not required to be safe for concurrent use.
type Bus interface {
	ReadHoldingRegisters(addr, qty uint16) ([]uint16, error)
	ReadCoil(addr uint16) (bool, error)
	WriteCoil(addr uint16, on bool) error
	Close() error
}

// Opener opens the bus. ONE attempt per call.
type Opener func() (Bus, error)

// InitError reports a failed initialization.
type InitError struct {
	Stage string // open, identify, force-off
	Err   error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("coil: initialization failed at %s: %v", e.Stage, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// Identity is the diagnostic register block read at startup.
type Identity struct {
	Registers []uint16
}

// Model returns register 0, the module identifier.
func (id Identity) Model() uint16 {
	if len(id.Registers) == 0 {
		return 0
	}
	return id.Registers[0]
}

func (id Identity) String() string {
	return fmt.Sprintf("0x%04x", id.Model())
}

// Controller owns the bus and serializes every access to it.
// One lock hold covers one logical operation: a single read, or the
// read-compare-write sequence of WriteState.
type Controller struct {
	mu     sync.Mutex
	bus    Bus
	logger *slog.Logger

	fatal  error
	closed bool
}

// New wraps an already opened bus.
func New(bus Bus, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{bus: bus, logger: logger}
}

// Initialize opens the bus, reads the identity block and forces the
// coil off. All-or-nothing: on failure the bus is closed and nothing
// is returned besides the error.
func Initialize(open Opener, logger *slog.Logger) (*Controller, Identity, error) {
	bus, err := open()
	if err != nil {
		return nil, Identity{}, &InitError{Stage: "open", Err: err}
	}

	c := New(bus, logger)
	id, err := c.identify()
	if err != nil {
		_ = bus.Close()
		return nil, Identity{}, &InitError{Stage: "identify", Err: err}
	}

	if err := c.ForceOff(); err != nil {
		_ = bus.Close()
		return nil, Identity{}, &InitError{Stage: "force-off", Err: err}
	}

	return c, id, nil
}

func (c *Controller) identify() (Identity, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.usable(); err != nil {
		return Identity{}, err
	}

	regs, err := c.bus.ReadHoldingRegisters(IdentityAddress, IdentityQuantity)
	if err != nil {
		return Identity{}, c.fail("identify", err)
	}
	return Identity{Registers: regs}, nil
}

// ReadState queries the device. There is no cached copy.
func (c *Controller) ReadState() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.usable(); err != nil {
		return false, err
	}

	on, err := c.bus.ReadCoil(CoilAddress)
	if err != nil {
		return false, c.fail("read", err)
	}
	return on, nil
}

// WriteState drives the coil to target.
// It returns false without writing when the device already holds target.
func (c *Controller) WriteState(target bool) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.usable(); err != nil {
		return false, err
	}

	current, err := c.bus.ReadCoil(CoilAddress)
	if err != nil {
		return false, c.fail("read", err)
	}
	if current == target {
		return false, nil
	}

	if err := c.bus.WriteCoil(CoilAddress, target); err != nil {
		return false, c.fail("write", err)
	}
	return true, nil
}

// ForceOff writes false unconditionally.
func (c *Controller) ForceOff() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.usable(); err != nil {
		return err
	}

	if err := c.bus.WriteCoil(CoilAddress, false); err != nil {
		return c.fail("force-off", err)
	}
	return nil
}

// Err returns the sticky transport failure, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fatal
}

// Close releases the bus exactly once. It waits for any in-flight
// operation to finish.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.bus.Close()
}

// usable must be called with mu held.
func (c *Controller) usable() error {
	if c.closed {
		return ErrClosed
	}
	if c.fatal != nil {
		return fmt.Errorf("%w: %w", ErrLinkLost, c.fatal)
	}
	return nil
}

// fail records the first transport failure. Must be called with mu held.
func (c *Controller) fail(op string, err error) error {
	if c.fatal == nil {
		c.fatal = err
		c.logger.Error("bus failure, controller disabled", "op", op, "error", err)
	}
	return err
}
