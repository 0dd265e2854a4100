// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tamzrod/modbus-fan/internal/coil"
	"github.com/tamzrod/modbus-fan/internal/dispatch"
	"github.com/tamzrod/modbus-fan/internal/monitor"
	"github.com/tamzrod/modbus-fan/internal/publish"
	"github.com/tamzrod/modbus-fan/internal/status"
	"github.com/tamzrod/modbus-fan/internal/voice"
	"github.com/tamzrod/modbus-fan/internal/voice/speech"
)

// Config is the runtime config of the whole process.
type Config struct {
	PollInterval time.Duration
	Vocabulary   dispatch.Vocabulary
	Voice        voice.Config
}

// Deps are the edges of the process: the bus, the operator and the
// optional broker. Publisher may be nil.
type Deps struct {
	Open        coil.Opener
	Keys        voice.KeySource
	Recorder    voice.Recorder
	Transcriber speech.Transcriber
	Publisher   *publish.Publisher
}

// App owns the lifecycle: initialize, run activities, shut down.
type App struct {
	cfg     Config
	deps    Deps
	logger  *slog.Logger
	machine *status.Machine
}

func New(cfg Config, deps Deps, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{cfg: cfg, deps: deps, logger: logger}
	a.machine = status.NewMachine(func(from, to status.Phase) {
		logger.Debug("phase", "from", from.String(), "to", to.String())
	})
	return a
}

// Phase reports the current lifecycle phase.
func (a *App) Phase() status.Phase {
	return a.machine.Phase()
}

// Run blocks until the operator quits, ctx is cancelled or the bus
// fails. It returns nil for a clean stop. Map the result with ExitCode.
func (a *App) Run(ctx context.Context) error {
	// --------------------
	// Initialize (all-or-nothing)
	// --------------------

	ctl, id, err := coil.Initialize(a.deps.Open, a.logger)
	if err != nil {
		a.logger.Error("initialization failed", "error", err)
		a.advance(status.PhaseTerminated)
		return err
	}

	a.logger.Info("device identity", "model", id.String())
	a.logger.Info("initialized, fan forced off")
	a.advance(status.PhaseReady)

	// --------------------
	// Wire activities
	// --------------------

	d, err := dispatch.New(a.cfg.Vocabulary, ctl, a.logger)
	if err != nil {
		return a.abort(ctl, err)
	}

	var sinks []monitor.Sink
	if a.deps.Publisher != nil {
		sinks = append(sinks, a.deps.Publisher)
	}
	mon, err := monitor.New(monitor.Config{Interval: a.cfg.PollInterval}, ctl, a.logger, sinks...)
	if err != nil {
		return a.abort(ctl, err)
	}

	front, err := voice.New(a.cfg.Voice, a.deps.Keys, a.deps.Recorder, a.deps.Transcriber, d, a.logger)
	if err != nil {
		return a.abort(ctl, err)
	}

	// --------------------
	// Run until the first activity ends
	// --------------------

	a.advance(status.PhaseRunning)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return mon.Run(gctx) })
	g.Go(func() error { return front.Run(gctx) })
	if a.deps.Publisher != nil {
		g.Go(func() error { return a.deps.Publisher.Commands(gctx, d) })

		// Status delivery stays outside the group: a stalled broker must
		// not hold up shutdown. It exits once its in-flight publish returns.
		go a.deps.Publisher.Run(gctx)
	}

	// Activities return nil only once gctx is done, so the first error
	// (quit or bus failure) stops all of them.
	runErr := g.Wait()

	// --------------------
	// Shutdown
	// --------------------

	a.advance(status.PhaseShuttingDown)
	if errors.Is(runErr, voice.ErrQuit) {
		runErr = nil
	}

	if runErr != nil && IsLinkFailure(runErr) {
		// the link is untrusted: no further writes
		a.logger.Error("bus failure, shutting down", "error", runErr)
	} else {
		if err := ctl.ForceOff(); err != nil {
			a.logger.Error("force off on shutdown failed", "error", err)
			if runErr == nil {
				runErr = err
			}
		} else {
			a.logger.Info("fan forced off")
		}
	}

	if err := ctl.Close(); err != nil {
		a.logger.Warn("closing bus", "error", err)
	}
	if a.deps.Publisher != nil {
		a.deps.Publisher.Close()
	}

	a.advance(status.PhaseTerminated)
	a.logger.Info("shutdown complete", "exit_code", ExitCode(runErr))
	return runErr
}

// abort handles a wiring failure after the bus is open.
func (a *App) abort(ctl *coil.Controller, err error) error {
	a.logger.Error("startup failed", "error", err)
	a.advance(status.PhaseShuttingDown)
	if ferr := ctl.ForceOff(); ferr != nil {
		a.logger.Error("force off failed", "error", ferr)
	}
	_ = ctl.Close()
	a.advance(status.PhaseTerminated)
	return fmt.Errorf("app: %w", err)
}

func (a *App) advance(p status.Phase) {
	if err := a.machine.Advance(p); err != nil {
		// only reachable through a programming error
		a.logger.Error("lifecycle", "error", err)
	}
}
