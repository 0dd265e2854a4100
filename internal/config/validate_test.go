// internal/config/validate_test.go
package config

import (
	"strings"
	"testing"
)

// helper to build a valid config quickly
func valid() *Config {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Speech.APIKey = "key"
	cfg.Speech.SecretKey = "secret"
	return cfg
}

// ---- tests ----

func TestValidate_Defaults(t *testing.T) {
	if err := Validate(valid()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"missing port", func(c *Config) { c.Serial.Port = " " }, "serial.port"},
		{"data bits", func(c *Config) { c.Serial.DataBits = 9 }, "serial.data_bits"},
		{"stop bits", func(c *Config) { c.Serial.StopBits = 3 }, "serial.stop_bits"},
		{"parity", func(c *Config) { c.Serial.Parity = "mark" }, "serial.parity"},
		{"slave negative", func(c *Config) { c.Serial.SlaveID = -1 }, "serial.slave_id"},
		{"slave high", func(c *Config) { c.Serial.SlaveID = 248 }, "serial.slave_id"},
		{"timeout over poll", func(c *Config) { c.Serial.TimeoutS = 6 }, "must not exceed"},
		{"same phrases", func(c *Config) { c.Commands.Deactivate = c.Commands.Activate }, "must differ"},
		{"same keys", func(c *Config) { c.Voice.QuitKey = " " }, "must differ"},
		{"long key", func(c *Config) { c.Voice.QuitKey = "quit" }, "voice.quit_key"},
		{"sample rate", func(c *Config) { c.Voice.SampleRate = 44100 }, "voice.sample_rate"},
		{"provider", func(c *Config) { c.Speech.Provider = "google" }, "speech.provider"},
		{"baidu secret", func(c *Config) { c.Speech.SecretKey = "" }, "secret_key"},
		{"mqtt broker", func(c *Config) { c.MQTT.Enabled = true }, "mqtt.broker"},
		{"mqtt qos", func(c *Config) {
			c.MQTT.Enabled = true
			c.MQTT.Broker = "tcp://localhost:1883"
			c.MQTT.QoS = 3
		}, "mqtt.qos"},
		{"log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestValidate_WhisperNeedsOnlyAPIKey(t *testing.T) {
	cfg := valid()
	cfg.Speech.Provider = "whisper"
	cfg.Speech.SecretKey = ""

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_DoesNotMutate(t *testing.T) {
	cfg := valid()
	cfg.Serial.Parity = "even"

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Serial.Parity != "even" {
		t.Fatalf("validate mutated parity to %q", cfg.Serial.Parity)
	}
}

func TestNormalize(t *testing.T) {
	cfg := valid()
	cfg.Serial.Parity = "odd"
	cfg.Serial.RS485.DelayRTSAfterMs = 5
	cfg.MQTT.CommandTopic = "fan/cmd"

	Normalize(cfg)

	if cfg.Serial.Parity != "O" {
		t.Fatalf("parity: got %q", cfg.Serial.Parity)
	}
	if cfg.Serial.RS485.DelayRTSAfterMs != 0 {
		t.Fatalf("rs485 settings should be cleared when disabled")
	}
	if cfg.MQTT.CommandTopic != "" {
		t.Fatalf("command topic should be cleared when mqtt disabled")
	}
}

func TestKeyByte(t *testing.T) {
	if b, err := KeyByte("space"); err != nil || b != ' ' {
		t.Fatalf("space: got %q %v", b, err)
	}
	if b, err := KeyByte("q"); err != nil || b != 'q' {
		t.Fatalf("q: got %q %v", b, err)
	}
	if _, err := KeyByte("\t"); err == nil {
		t.Fatalf("tab should be rejected")
	}
	if _, err := KeyByte(""); err == nil {
		t.Fatalf("empty should be rejected")
	}
}
