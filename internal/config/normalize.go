// internal/config/normalize.go
package config

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	// Parity in the single-letter form the RTU handler expects.
	if p, ok := parityCode(cfg.Serial.Parity); ok {
		cfg.Serial.Parity = p
	}

	// RS-485 timing is meaningless unless enabled.
	if !cfg.Serial.RS485.Enabled {
		cfg.Serial.RS485 = RS485Config{}
	}

	// Remote commands need a broker.
	if !cfg.MQTT.Enabled {
		cfg.MQTT.CommandTopic = ""
	}
}
