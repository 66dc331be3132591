package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTOptions configures the broker connection used by MQTTChannel
type MQTTOptions struct {
	Broker   string
	Port     int
	ClientID string
	Topic    string
}

// MQTTChannel publishes each message as a plain-text payload on a topic,
// for dashboards or sirens already listening on the farm's broker.
type MQTTChannel struct {
	client mqtt.Client
	topic  string
	logger *slog.Logger
}

func NewMQTTChannel(opts MQTTOptions, logger *slog.Logger) (*MQTTChannel, error) {
	if opts.Broker == "" || opts.Topic == "" {
		return nil, errors.New("mqtt broker and topic are required")
	}

	co := mqtt.NewClientOptions()
	co.AddBroker(fmt.Sprintf("tcp://%s:%d", opts.Broker, opts.Port))
	co.SetClientID(opts.ClientID)
	co.SetCleanSession(true)
	co.SetAutoReconnect(true)

	// Keepalive / timeouts
	co.SetKeepAlive(30 * time.Second)
	co.SetPingTimeout(10 * time.Second)
	co.SetConnectTimeout(10 * time.Second)

	co.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info("mqtt connected", "broker", opts.Broker, "port", opts.Port)
	})
	co.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	})

	return &MQTTChannel{client: mqtt.NewClient(co), topic: opts.Topic, logger: logger}, nil
}

func (m *MQTTChannel) Name() string { return "mqtt" }

// Send connects on first use, then publishes with QoS 1.
func (m *MQTTChannel) Send(ctx context.Context, body string) error {
	if err := m.connect(ctx); err != nil {
		return err
	}

	token := m.client.Publish(m.topic, 1, false, body)
	if err := wait(ctx, token, 5*time.Second); err != nil {
		return fmt.Errorf("publish to %s: %w", m.topic, err)
	}

	m.logger.Debug("published alert", "topic", m.topic, "size", len(body))
	return nil
}

// Close disconnects from the broker. Safe to call when never connected.
func (m *MQTTChannel) Close() {
	if m.client.IsConnected() {
		m.client.Disconnect(250)
	}
}

func (m *MQTTChannel) connect(ctx context.Context) error {
	if m.client.IsConnected() {
		return nil
	}
	if err := wait(ctx, m.client.Connect(), 10*time.Second); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

// wait blocks until the token completes, ctx is done or timeout elapses.
func wait(ctx context.Context, token mqtt.Token, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return errors.New("timed out")
	}
}

var _ Channel = (*MQTTChannel)(nil)
