// internal/publish/broker.go
package publish

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// MessageHandler receives one inbound message.
type MessageHandler func(topic string, payload []byte)

// Broker is the small slice of an MQTT client the publisher needs.
type Broker interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
	Subscribe(topic string, qos byte, h MessageHandler) error
	Disconnect()
}

// BrokerConfig is the connection part of the mqtt config section.
type BrokerConfig struct {
	URL      string
	ClientID string
	Username string
	Password string
	Timeout  time.Duration
}

// Client adapts a paho client to Broker.
type Client struct {
	client  mqtt.Client
	timeout time.Duration
}

// Dial connects to the broker. An empty ClientID gets a random one.
func Dial(cfg BrokerConfig, logger *slog.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("publish: broker url required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "modbus-fan-" + uuid.NewString()
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.URL)
	opts.SetClientID(clientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(cfg.Timeout)
	opts.SetWriteTimeout(cfg.Timeout)
	opts.SetMaxReconnectInterval(5 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetResumeSubs(true)
	opts.OnConnect = func(mqtt.Client) {
		logger.Info("mqtt connected", "broker", cfg.URL, "client_id", clientID)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	}

	client := mqtt.NewClient(opts)
	tok := client.Connect()
	if !tok.WaitTimeout(cfg.Timeout) {
		return nil, fmt.Errorf("publish: connect %s: timed out", cfg.URL)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("publish: connect %s: %w", cfg.URL, err)
	}

	return &Client{client: client, timeout: cfg.Timeout}, nil
}

func (b *Client) Publish(topic string, qos byte, retained bool, payload []byte) error {
	return b.wait(b.client.Publish(topic, qos, retained, payload), "publish "+topic)
}

func (b *Client) Subscribe(topic string, qos byte, h MessageHandler) error {
	tok := b.client.Subscribe(topic, qos, func(_ mqtt.Client, m mqtt.Message) {
		h(m.Topic(), m.Payload())
	})
	return b.wait(tok, "subscribe "+topic)
}

func (b *Client) Disconnect() {
	b.client.Disconnect(250)
}

func (b *Client) wait(tok mqtt.Token, what string) error {
	if !tok.WaitTimeout(b.timeout) {
		return fmt.Errorf("publish: %s: timed out", what)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("publish: %s: %w", what, err)
	}
	return nil
}
