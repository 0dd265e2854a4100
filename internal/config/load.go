// internal/config/load.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultActivate   = "打开风扇。"
	DefaultDeactivate = "关闭风扇。"
)

// Load reads a YAML config file. ${VAR} references are expanded from
// the process environment. Missing fields get defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.setDefaults()
	return &cfg, nil
}

// Default returns a config holding only defaults.
func Default() *Config {
	var cfg Config
	cfg.setDefaults()
	return &cfg
}

func (c *Config) setDefaults() {
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = 9600
	}
	if c.Serial.DataBits == 0 {
		c.Serial.DataBits = 8
	}
	if c.Serial.Parity == "" {
		c.Serial.Parity = "N"
	}
	if c.Serial.StopBits == 0 {
		c.Serial.StopBits = 1
	}
	if c.Serial.SlaveID == 0 {
		c.Serial.SlaveID = 1
	}
	if c.Serial.TimeoutS == 0 {
		c.Serial.TimeoutS = 5
	}
	if c.Monitor.PollIntervalS == 0 {
		c.Monitor.PollIntervalS = 5
	}
	if c.Commands.Activate == "" {
		c.Commands.Activate = DefaultActivate
	}
	if c.Commands.Deactivate == "" {
		c.Commands.Deactivate = DefaultDeactivate
	}
	if c.Voice.RecordKey == "" {
		c.Voice.RecordKey = "space"
	}
	if c.Voice.QuitKey == "" {
		c.Voice.QuitKey = "q"
	}
	if c.Voice.RecordSeconds == 0 {
		c.Voice.RecordSeconds = 3
	}
	if c.Voice.SampleRate == 0 {
		c.Voice.SampleRate = 16000
	}
	if c.Voice.TTY == "" {
		c.Voice.TTY = "/dev/tty"
	}
	if c.Speech.Provider == "" {
		c.Speech.Provider = "baidu"
	}
	if c.Speech.TimeoutS == 0 {
		c.Speech.TimeoutS = 5
	}
	if c.MQTT.StatusTopic == "" {
		c.MQTT.StatusTopic = "modbus-fan/status"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// ApplyEnv overrides serial and speech credentials from a dotenv file
// using the keys PORT, BAUDRATE, BYTESIZE, PARITY, STOPBITS, SLAVE,
// APP_ID, API_KEY and SEC_KEY. A missing file is not an error.
func ApplyEnv(cfg *Config, path string) error {
	vals, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	return applyEnvValues(cfg, vals)
}

func applyEnvValues(cfg *Config, vals map[string]string) error {
	str := func(key string, dst *string) {
		if v, ok := vals[key]; ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := vals[key]
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: env %s=%q: not an integer", key, v)
		}
		*dst = n
		return nil
	}

	str("PORT", &cfg.Serial.Port)
	str("PARITY", &cfg.Serial.Parity)
	str("APP_ID", &cfg.Speech.AppID)
	str("API_KEY", &cfg.Speech.APIKey)
	str("SEC_KEY", &cfg.Speech.SecretKey)

	for key, dst := range map[string]*int{
		"BAUDRATE": &cfg.Serial.BaudRate,
		"BYTESIZE": &cfg.Serial.DataBits,
		"STOPBITS": &cfg.Serial.StopBits,
		"SLAVE":    &cfg.Serial.SlaveID,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	return nil
}
