// internal/link/client.go
package link

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/goburrow/modbus"
	"github.com/goburrow/serial"
)

const (
	coilOn  uint16 = 0xFF00
	coilOff uint16 = 0x0000
)

// transport is the subset of modbus.Client the link uses.
type transport interface {
	ReadCoils(address, quantity uint16) ([]byte, error)            // FC 1
	ReadHoldingRegisters(address, quantity uint16) ([]byte, error) // FC 3
	WriteSingleCoil(address, value uint16) ([]byte, error)         // FC 5
}

// Config is the physical bus configuration.
type Config struct {
	Port     string
	BaudRate int
	DataBits int
	Parity   string // N, E or O
	StopBits int
	SlaveID  uint8
	Timeout  time.Duration

	// RS485 enables kernel RTS control when non-nil.
	RS485 *serial.RS485Config

	// Logger receives raw frame traces when non-nil.
	Logger *log.Logger
}

// Client is a single Modbus RTU session on one serial port.
// It is NOT safe for concurrent use: the bus is half-duplex and
// the owner must serialize calls.
type Client struct {
	handler *modbus.RTUClientHandler
	tr      transport
	closed  bool
}

// Open configures the RTU handler and connects the serial port.
func Open(cfg Config) (*Client, error) {
	if cfg.Port == "" {
		return nil, &Error{Op: "open", Kind: KindPortUnavailable, Err: errors.New("port required")}
	}

	h := modbus.NewRTUClientHandler(cfg.Port)
	h.BaudRate = cfg.BaudRate
	h.DataBits = cfg.DataBits
	h.Parity = cfg.Parity
	h.StopBits = cfg.StopBits
	h.SlaveId = cfg.SlaveID
	h.Timeout = cfg.Timeout
	if cfg.RS485 != nil {
		h.RS485 = *cfg.RS485
	}
	if cfg.Logger != nil {
		h.Logger = cfg.Logger
	}

	if err := h.Connect(); err != nil {
		return nil, wrap("open", err)
	}

	return &Client{
		handler: h,
		tr:      modbus.NewClient(h),
	}, nil
}

// Close releases the serial port. Safe to call more than once.
func (c *Client) Close() error {
	if c == nil || c.closed {
		return nil
	}
	c.closed = true
	if c.handler == nil {
		return nil
	}
	return wrap("close", c.handler.Close())
}

// ReadHoldingRegisters reads qty holding registers starting at addr.
func (c *Client) ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) {
	const op = "read-registers"
	if err := c.ready(op); err != nil {
		return nil, err
	}

	raw, err := c.tr.ReadHoldingRegisters(addr, qty)
	if err != nil {
		return nil, wrap(op, err)
	}
	if len(raw) != int(qty)*2 {
		return nil, &Error{
			Op:   op,
			Kind: KindMalformed,
			Err:  fmt.Errorf("got %d bytes, want %d", len(raw), int(qty)*2),
		}
	}
	return unpackRegisters(raw), nil
}

// ReadCoil reads a single coil.
func (c *Client) ReadCoil(addr uint16) (bool, error) {
	const op = "read-coil"
	if err := c.ready(op); err != nil {
		return false, err
	}

	raw, err := c.tr.ReadCoils(addr, 1)
	if err != nil {
		return false, wrap(op, err)
	}
	if len(raw) < 1 {
		return false, &Error{Op: op, Kind: KindMalformed, Err: errors.New("empty coil payload")}
	}
	return unpackBits(raw, 1)[0], nil
}

// WriteCoil forces a single coil on or off.
func (c *Client) WriteCoil(addr uint16, on bool) error {
	const op = "write-coil"
	if err := c.ready(op); err != nil {
		return err
	}

	value := coilOff
	if on {
		value = coilOn
	}
	_, err := c.tr.WriteSingleCoil(addr, value)
	return wrap(op, err)
}

func (c *Client) ready(op string) error {
	if c == nil || c.tr == nil {
		return &Error{Op: op, Kind: KindPortUnavailable, Err: errors.New("not connected")}
	}
	if c.closed {
		return &Error{Op: op, Kind: KindPortUnavailable, Err: errors.New("connection closed")}
	}
	return nil
}

// ---- helpers (pure geometry) ----

func unpackBits(data []byte, count int) []bool {
	out := make([]bool, count)
	for i := 0; i < count; i++ {
		byteIdx := i / 8
		if byteIdx >= len(data) {
			continue
		}
		out[i] = data[byteIdx]&(1<<uint(i%8)) != 0
	}
	return out
}

func unpackRegisters(data []byte) []uint16 {
	n := len(data) / 2
	out := make([]uint16, n)
	for i := 0; i < n; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out
}
