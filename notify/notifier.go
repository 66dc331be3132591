// Package notify delivers alert messages to the farm's recipient over one of several channels.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"farm-weather-alert/models"
)

// Channel sends a text body to a fixed recipient
type Channel interface {
	Name() string
	Send(ctx context.Context, body string) error
}

// Notifier sends an AlertMessage through a Channel, skipping empty messages
type Notifier struct {
	channel Channel
	logger  *slog.Logger
}

func NewNotifier(channel Channel, logger *slog.Logger) *Notifier {
	return &Notifier{channel: channel, logger: logger}
}

// Channel returns the name of the underlying channel
func (n *Notifier) Channel() string {
	return n.channel.Name()
}

// Notify sends msg and reports whether anything was sent. An empty message is never sent.
func (n *Notifier) Notify(ctx context.Context, msg models.AlertMessage) (bool, error) {
	if msg.Empty() {
		n.logger.Debug("nothing to send", "channel", n.channel.Name())
		return false, nil
	}

	if err := n.channel.Send(ctx, msg.String()); err != nil {
		return false, fmt.Errorf("send via %s: %w", n.channel.Name(), err)
	}

	n.logger.Info("notification sent",
		"channel", n.channel.Name(),
		"segments", len(msg.Segments),
	)
	return true, nil
}

// LogChannel writes messages to the log instead of delivering them
type LogChannel struct {
	logger *slog.Logger
}

func NewLogChannel(logger *slog.Logger) *LogChannel {
	return &LogChannel{logger: logger}
}

func (l *LogChannel) Name() string { return "log" }

func (l *LogChannel) Send(ctx context.Context, body string) error {
	l.logger.Info("dry run: message not delivered", "body", body)
	return nil
}

var _ Channel = (*LogChannel)(nil)
