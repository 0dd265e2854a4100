// internal/config/config.go
package config

type Config struct {
	Serial   SerialConfig   `yaml:"serial"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Commands CommandsConfig `yaml:"commands"`
	Voice    VoiceConfig    `yaml:"voice"`
	Speech   SpeechConfig   `yaml:"speech"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Log      LogConfig      `yaml:"log"`
}

// ---- SERIAL ----

type SerialConfig struct {
	Port     string      `yaml:"port"`
	BaudRate int         `yaml:"baud_rate"`
	DataBits int         `yaml:"data_bits"`
	Parity   string      `yaml:"parity"` // N|E|O or none|even|odd
	StopBits int         `yaml:"stop_bits"`
	SlaveID  int         `yaml:"slave_id"`
	TimeoutS int         `yaml:"timeout_s"`
	Trace    bool        `yaml:"trace"` // log raw frames at debug level
	RS485    RS485Config `yaml:"rs485"`
}

// RS485Config drives RTS around transmission on half-duplex adapters.
type RS485Config struct {
	Enabled           bool `yaml:"enabled"`
	DelayRTSBeforeMs  int  `yaml:"delay_rts_before_send_ms"`
	DelayRTSAfterMs   int  `yaml:"delay_rts_after_send_ms"`
	RTSHighDuringSend bool `yaml:"rts_high_during_send"`
	RTSHighAfterSend  bool `yaml:"rts_high_after_send"`
	RxDuringTx        bool `yaml:"rx_during_tx"`
}

// ---- MONITOR ----

type MonitorConfig struct {
	PollIntervalS int `yaml:"poll_interval_s"`
}

// ---- COMMANDS ----

type CommandsConfig struct {
	Activate   string `yaml:"activate"`
	Deactivate string `yaml:"deactivate"`
}

// ---- VOICE ----

type VoiceConfig struct {
	RecordKey     string `yaml:"record_key"` // single character or "space"
	QuitKey       string `yaml:"quit_key"`
	RecordSeconds int    `yaml:"record_seconds"`
	SampleRate    int    `yaml:"sample_rate"`
	TTY           string `yaml:"tty"`
}

// ---- SPEECH ----

type SpeechConfig struct {
	Provider  string `yaml:"provider"` // baidu|whisper
	AppID     string `yaml:"app_id"`
	APIKey    string `yaml:"api_key"`
	SecretKey string `yaml:"secret_key"`
	Language  string `yaml:"language"`
	DevPID    int    `yaml:"dev_pid"`
	TimeoutS  int    `yaml:"timeout_s"`
}

// ---- MQTT (optional) ----

type MQTTConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Broker       string `yaml:"broker"`
	ClientID     string `yaml:"client_id"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	StatusTopic  string `yaml:"status_topic"`
	CommandTopic string `yaml:"command_topic"`
	QoS          int    `yaml:"qos"`
}

// ---- LOG ----

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}
