// cmd/modbus-fan/main.go
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tamzrod/modbus-fan/internal/app"
	"github.com/tamzrod/modbus-fan/internal/config"
	"github.com/tamzrod/modbus-fan/internal/publish"
	"github.com/tamzrod/modbus-fan/internal/status"
	"github.com/tamzrod/modbus-fan/internal/voice/audio"
	"github.com/tamzrod/modbus-fan/internal/voice/keys"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: modbus-fan <config.yaml> [.env]")
	}

	cfgPath := os.Args[1]
	envPath := ".env"
	if len(os.Args) > 2 {
		envPath = os.Args[2]
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if err := config.ApplyEnv(cfg, envPath); err != nil {
		log.Fatalf("env load failed: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	os.Exit(run(cfg, logger))
}

func run(cfg *config.Config, logger *slog.Logger) int {
	runCfg, err := app.BuildConfig(cfg)
	if err != nil {
		logger.Error("config", "error", err)
		return status.ExitInitFailed
	}

	// --------------------
	// Edges: terminal, microphone, speech, broker
	// --------------------

	kr, err := keys.Open(cfg.Voice.TTY)
	if err != nil {
		logger.Error("terminal unavailable", "error", err)
		return status.ExitInitFailed
	}
	defer kr.Close()

	var pub *publish.Publisher
	if cfg.MQTT.Enabled {
		b, err := publish.Dial(app.BrokerConfig(cfg.MQTT), logger)
		if err != nil {
			logger.Error("mqtt unavailable", "error", err)
			return status.ExitInitFailed
		}
		pub, err = publish.New(app.PublishConfig(cfg.MQTT), b, logger)
		if err != nil {
			b.Disconnect()
			logger.Error("mqtt", "error", err)
			return status.ExitInitFailed
		}
	}

	trace := slog.NewLogLogger(logger.Handler(), slog.LevelDebug)

	deps := app.Deps{
		Open:        app.Opener(app.LinkConfig(cfg.Serial, trace)),
		Keys:        kr,
		Recorder:    audio.NewMicrophone(cfg.Voice.SampleRate, logger),
		Transcriber: app.BuildTranscriber(cfg.Speech),
		Publisher:   pub,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting",
		"port", cfg.Serial.Port,
		"baud", cfg.Serial.BaudRate,
		"slave", cfg.Serial.SlaveID,
		"speech", cfg.Speech.Provider,
		"mqtt", cfg.MQTT.Enabled,
	)

	err = app.New(runCfg, deps, logger).Run(ctx)
	return app.ExitCode(err)
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
