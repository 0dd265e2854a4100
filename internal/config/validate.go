// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil config")
	}

	// ------------------------------------------------------------
	// SERIAL LINK
	// ------------------------------------------------------------

	s := cfg.Serial
	if strings.TrimSpace(s.Port) == "" {
		return errors.New("serial.port is required")
	}
	if s.BaudRate <= 0 {
		return fmt.Errorf("serial.baud_rate must be > 0, got %d", s.BaudRate)
	}
	if s.DataBits < 5 || s.DataBits > 8 {
		return fmt.Errorf("serial.data_bits must be 5..8, got %d", s.DataBits)
	}
	if s.StopBits != 1 && s.StopBits != 2 {
		return fmt.Errorf("serial.stop_bits must be 1 or 2, got %d", s.StopBits)
	}
	if _, ok := parityCode(s.Parity); !ok {
		return fmt.Errorf("serial.parity %q must be one of N, E, O, none, even, odd", s.Parity)
	}
	if s.SlaveID < 1 || s.SlaveID > 247 {
		return fmt.Errorf("serial.slave_id must be 1..247, got %d", s.SlaveID)
	}
	if s.TimeoutS <= 0 {
		return fmt.Errorf("serial.timeout_s must be > 0, got %d", s.TimeoutS)
	}
	if s.RS485.DelayRTSBeforeMs < 0 || s.RS485.DelayRTSAfterMs < 0 {
		return errors.New("serial.rs485 delays must be >= 0")
	}

	// ------------------------------------------------------------
	// MONITOR
	// ------------------------------------------------------------

	if cfg.Monitor.PollIntervalS <= 0 {
		return fmt.Errorf("monitor.poll_interval_s must be > 0, got %d", cfg.Monitor.PollIntervalS)
	}

	// A response slower than one tick would stall the next poll.
	if s.TimeoutS > cfg.Monitor.PollIntervalS {
		return fmt.Errorf(
			"serial.timeout_s (%d) must not exceed monitor.poll_interval_s (%d)",
			s.TimeoutS,
			cfg.Monitor.PollIntervalS,
		)
	}

	// ------------------------------------------------------------
	// COMMAND VOCABULARY
	// ------------------------------------------------------------

	if cfg.Commands.Activate == "" || cfg.Commands.Deactivate == "" {
		return errors.New("commands.activate and commands.deactivate are required")
	}
	if cfg.Commands.Activate == cfg.Commands.Deactivate {
		return fmt.Errorf("commands.activate and commands.deactivate must differ, both are %q", cfg.Commands.Activate)
	}

	// ------------------------------------------------------------
	// VOICE
	// ------------------------------------------------------------

	rk, err := KeyByte(cfg.Voice.RecordKey)
	if err != nil {
		return fmt.Errorf("voice.record_key: %w", err)
	}
	qk, err := KeyByte(cfg.Voice.QuitKey)
	if err != nil {
		return fmt.Errorf("voice.quit_key: %w", err)
	}
	if rk == qk {
		return errors.New("voice.record_key and voice.quit_key must differ")
	}
	if cfg.Voice.RecordSeconds <= 0 {
		return fmt.Errorf("voice.record_seconds must be > 0, got %d", cfg.Voice.RecordSeconds)
	}
	if cfg.Voice.SampleRate != 8000 && cfg.Voice.SampleRate != 16000 {
		return fmt.Errorf("voice.sample_rate must be 8000 or 16000, got %d", cfg.Voice.SampleRate)
	}

	// ------------------------------------------------------------
	// SPEECH
	// ------------------------------------------------------------

	switch cfg.Speech.Provider {
	case "baidu":
		if cfg.Speech.APIKey == "" || cfg.Speech.SecretKey == "" {
			return errors.New("speech: baidu requires api_key and secret_key")
		}
	case "whisper":
		if cfg.Speech.APIKey == "" {
			return errors.New("speech: whisper requires api_key")
		}
	default:
		return fmt.Errorf("speech.provider %q must be baidu or whisper", cfg.Speech.Provider)
	}
	if cfg.Speech.TimeoutS <= 0 {
		return fmt.Errorf("speech.timeout_s must be > 0, got %d", cfg.Speech.TimeoutS)
	}

	// ------------------------------------------------------------
	// MQTT (OPT-IN)
	// ------------------------------------------------------------

	if cfg.MQTT.Enabled {
		if cfg.MQTT.Broker == "" {
			return errors.New("mqtt.broker is required when mqtt is enabled")
		}
		if cfg.MQTT.StatusTopic == "" {
			return errors.New("mqtt.status_topic is required when mqtt is enabled")
		}
		if cfg.MQTT.QoS < 0 || cfg.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt.qos must be 0..2, got %d", cfg.MQTT.QoS)
		}
		if cfg.MQTT.CommandTopic != "" && cfg.MQTT.CommandTopic == cfg.MQTT.StatusTopic {
			return errors.New("mqtt.command_topic must differ from mqtt.status_topic")
		}
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q must be debug, info, warn or error", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		return fmt.Errorf("log.format %q must be text or json", cfg.Log.Format)
	}

	return nil
}

// KeyByte resolves a key name to the byte the terminal delivers.
// Accepts one printable ASCII character or "space".
func KeyByte(name string) (byte, error) {
	if strings.EqualFold(name, "space") {
		return ' ', nil
	}
	if len(name) != 1 {
		return 0, fmt.Errorf("key %q must be a single character or \"space\"", name)
	}
	if name[0] < 0x20 || name[0] > 0x7E {
		return 0, fmt.Errorf("key %q must be printable ASCII", name)
	}
	return name[0], nil
}

func parityCode(p string) (string, bool) {
	switch strings.ToLower(p) {
	case "n", "none":
		return "N", true
	case "e", "even":
		return "E", true
	case "o", "odd":
		return "O", true
	}
	return "", false
}
