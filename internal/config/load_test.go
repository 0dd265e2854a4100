// internal/config/load_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_YAMLWithDefaults(t *testing.T) {
	t.Setenv("FAN_PORT", "/dev/ttyS1")

	path := writeFile(t, "config.yaml", `
serial:
  port: ${FAN_PORT}
  baud_rate: 19200
  parity: even
  rs485:
    enabled: true
    delay_rts_after_send_ms: 2
monitor:
  poll_interval_s: 10
speech:
  provider: whisper
  api_key: k
mqtt:
  enabled: true
  broker: tcp://localhost:1883
  command_topic: fan/cmd
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Serial.Port != "/dev/ttyS1" {
		t.Fatalf("env expansion: port=%q", cfg.Serial.Port)
	}
	if cfg.Serial.BaudRate != 19200 || cfg.Serial.DataBits != 8 || cfg.Serial.StopBits != 1 {
		t.Fatalf("serial: %+v", cfg.Serial)
	}
	if !cfg.Serial.RS485.Enabled || cfg.Serial.RS485.DelayRTSAfterMs != 2 {
		t.Fatalf("rs485: %+v", cfg.Serial.RS485)
	}
	if cfg.Monitor.PollIntervalS != 10 || cfg.Serial.TimeoutS != 5 {
		t.Fatalf("timing: poll=%d timeout=%d", cfg.Monitor.PollIntervalS, cfg.Serial.TimeoutS)
	}
	if cfg.Commands.Activate != DefaultActivate || cfg.Commands.Deactivate != DefaultDeactivate {
		t.Fatalf("commands: %+v", cfg.Commands)
	}
	if cfg.MQTT.StatusTopic != "modbus-fan/status" {
		t.Fatalf("status topic default: %q", cfg.MQTT.StatusTopic)
	}

	if err := Validate(cfg); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", "serial: [")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestApplyEnv_OverridesFromDotenv(t *testing.T) {
	path := writeFile(t, ".env", `PORT=COM3
BAUDRATE=115200
BYTESIZE=7
PARITY=E
STOPBITS=2
SLAVE=17
APP_ID=app
API_KEY=key
SEC_KEY=secret
`)
	cfg := Default()

	if err := ApplyEnv(cfg, path); err != nil {
		t.Fatalf("apply env: %v", err)
	}

	s := cfg.Serial
	if s.Port != "COM3" || s.BaudRate != 115200 || s.DataBits != 7 || s.Parity != "E" || s.StopBits != 2 || s.SlaveID != 17 {
		t.Fatalf("serial overrides: %+v", s)
	}
	if cfg.Speech.AppID != "app" || cfg.Speech.APIKey != "key" || cfg.Speech.SecretKey != "secret" {
		t.Fatalf("speech overrides: %+v", cfg.Speech)
	}
}

func TestApplyEnv_MissingFileIsIgnored(t *testing.T) {
	cfg := Default()
	if err := ApplyEnv(cfg, filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Serial.BaudRate != 9600 {
		t.Fatalf("defaults changed: %+v", cfg.Serial)
	}
}

func TestApplyEnv_BadNumber(t *testing.T) {
	path := writeFile(t, ".env", "BAUDRATE=fast\n")
	if err := ApplyEnv(Default(), path); err == nil {
		t.Fatal("expected error for non-numeric BAUDRATE")
	}
}
