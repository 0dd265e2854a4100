// internal/publish/publisher.go
package publish

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tamzrod/modbus-fan/internal/dispatch"
	"github.com/tamzrod/modbus-fan/internal/status"
)

// commandBuffer bounds inbound commands waiting for the dispatcher.
const commandBuffer = 8

// Config is the topic part of the mqtt config section.
type Config struct {
	StatusTopic  string
	CommandTopic string // empty disables remote commands
	QoS          byte
}

// Dispatcher executes a command phrase.
type Dispatcher interface {
	Dispatch(token string) (dispatch.Outcome, error)
}

// Publisher mirrors monitor readings to a status topic and feeds the
// command topic into the dispatcher.
//
// Report only queues the latest snapshot; Run delivers it. A reading
// is published when the state differs from the last delivered one.
// After a failed publish the next reading is always delivered.
type Publisher struct {
	cfg    Config
	b      Broker
	logger *slog.Logger

	// latest wins: holds at most one undelivered snapshot
	pending chan status.Snapshot

	// owned by the Run goroutine
	needFull bool
	last     bool
}

func New(cfg Config, b Broker, logger *slog.Logger) (*Publisher, error) {
	if b == nil {
		return nil, errors.New("publish: broker required")
	}
	if cfg.StatusTopic == "" {
		return nil, errors.New("publish: status topic required")
	}
	if cfg.QoS > 2 {
		return nil, errors.New("publish: qos must be 0, 1 or 2")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		cfg:      cfg,
		b:        b,
		logger:   logger,
		pending:  make(chan status.Snapshot, 1),
		needFull: true,
	}, nil
}

// Report implements monitor.Sink. It never waits on the broker: an
// undelivered older snapshot is replaced by s.
func (p *Publisher) Report(s status.Snapshot) {
	for {
		select {
		case p.pending <- s:
			return
		default:
		}
		select {
		case <-p.pending:
		default:
		}
	}
}

// Run delivers reported snapshots until ctx is done. Broker failures
// are logged only; they never affect the fan.
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-p.pending:
			p.deliver(s)
		}
	}
}

func (p *Publisher) deliver(s status.Snapshot) {
	if !p.needFull && p.last == s.On {
		return
	}

	if err := p.b.Publish(p.cfg.StatusTopic, p.cfg.QoS, true, status.Encode(s)); err != nil {
		p.needFull = true
		p.logger.Warn("status publish failed", "topic", p.cfg.StatusTopic, "error", err)
		return
	}

	p.needFull = false
	p.last = s.On
}

// Commands subscribes to the command topic and dispatches each payload
// in arrival order, one at a time. It returns nil when ctx is done and
// the dispatch error when a command fails on the bus. A failed
// subscription only disables remote commands.
func (p *Publisher) Commands(ctx context.Context, d Dispatcher) error {
	if p.cfg.CommandTopic == "" {
		<-ctx.Done()
		return nil
	}

	inbox := make(chan string, commandBuffer)
	err := p.b.Subscribe(p.cfg.CommandTopic, p.cfg.QoS, func(topic string, payload []byte) {
		select {
		case inbox <- string(payload):
		default:
			p.logger.Warn("command dropped, dispatcher busy", "topic", topic)
		}
	})
	if err != nil {
		p.logger.Error("remote commands disabled", "topic", p.cfg.CommandTopic, "error", err)
		<-ctx.Done()
		return nil
	}
	p.logger.Info("listening for remote commands", "topic", p.cfg.CommandTopic)

	for {
		select {
		case <-ctx.Done():
			return nil
		case token := <-inbox:
			if _, err := d.Dispatch(token); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.b.Disconnect()
}
