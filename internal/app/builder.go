// internal/app/builder.go
package app

import (
	"log"
	"time"

	"github.com/goburrow/serial"

	"github.com/tamzrod/modbus-fan/internal/coil"
	cfg "github.com/tamzrod/modbus-fan/internal/config"
	"github.com/tamzrod/modbus-fan/internal/dispatch"
	"github.com/tamzrod/modbus-fan/internal/link"
	"github.com/tamzrod/modbus-fan/internal/publish"
	"github.com/tamzrod/modbus-fan/internal/voice"
	"github.com/tamzrod/modbus-fan/internal/voice/speech"
)

// BuildConfig derives the runtime config from a validated, normalized
// config file.
func BuildConfig(c *cfg.Config) (Config, error) {
	rk, err := cfg.KeyByte(c.Voice.RecordKey)
	if err != nil {
		return Config{}, err
	}
	qk, err := cfg.KeyByte(c.Voice.QuitKey)
	if err != nil {
		return Config{}, err
	}

	return Config{
		PollInterval: time.Duration(c.Monitor.PollIntervalS) * time.Second,
		Vocabulary: dispatch.Vocabulary{
			Activate:   c.Commands.Activate,
			Deactivate: c.Commands.Deactivate,
		},
		Voice: voice.Config{
			RecordKey: rk,
			QuitKey:   qk,
			RecordFor: time.Duration(c.Voice.RecordSeconds) * time.Second,
		},
	}, nil
}

// LinkConfig maps the serial section onto the RTU link.
// trace, when non-nil, receives raw frames.
func LinkConfig(s cfg.SerialConfig, trace *log.Logger) link.Config {
	lc := link.Config{
		Port:     s.Port,
		BaudRate: s.BaudRate,
		DataBits: s.DataBits,
		Parity:   s.Parity,
		StopBits: s.StopBits,
		SlaveID:  uint8(s.SlaveID),
		Timeout:  time.Duration(s.TimeoutS) * time.Second,
	}
	if s.RS485.Enabled {
		lc.RS485 = &serial.RS485Config{
			Enabled:            true,
			DelayRtsBeforeSend: time.Duration(s.RS485.DelayRTSBeforeMs) * time.Millisecond,
			DelayRtsAfterSend:  time.Duration(s.RS485.DelayRTSAfterMs) * time.Millisecond,
			RtsHighDuringSend:  s.RS485.RTSHighDuringSend,
			RtsHighAfterSend:   s.RS485.RTSHighAfterSend,
			RxDuringTx:         s.RS485.RxDuringTx,
		}
	}
	if s.Trace {
		lc.Logger = trace
	}
	return lc
}

// Opener returns a bus factory. ONE attempt per call.
func Opener(lc link.Config) coil.Opener {
	return func() (coil.Bus, error) {
		c, err := link.Open(lc)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// BuildTranscriber selects the speech provider.
func BuildTranscriber(s cfg.SpeechConfig) speech.Transcriber {
	timeout := time.Duration(s.TimeoutS) * time.Second
	if s.Provider == "whisper" {
		return speech.NewWhisperClient(s.APIKey, s.Language, timeout)
	}
	return speech.NewBaiduClient(speech.BaiduConfig{
		AppID:     s.AppID,
		APIKey:    s.APIKey,
		SecretKey: s.SecretKey,
		DevPID:    s.DevPID,
		Timeout:   timeout,
	})
}

// BrokerConfig maps the mqtt section onto the broker connection.
func BrokerConfig(m cfg.MQTTConfig) publish.BrokerConfig {
	return publish.BrokerConfig{
		URL:      m.Broker,
		ClientID: m.ClientID,
		Username: m.Username,
		Password: m.Password,
	}
}

// PublishConfig maps the mqtt section onto the publisher topics.
func PublishConfig(m cfg.MQTTConfig) publish.Config {
	return publish.Config{
		StatusTopic:  m.StatusTopic,
		CommandTopic: m.CommandTopic,
		QoS:          byte(m.QoS),
	}
}
