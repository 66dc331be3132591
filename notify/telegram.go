package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramChannel posts messages to a single chat through a bot
type TelegramChannel struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramChannel authenticates the bot against the public Bot API
func NewTelegramChannel(token string, chatID int64) (*TelegramChannel, error) {
	return newTelegramChannel(token, chatID, tgbotapi.APIEndpoint)
}

func newTelegramChannel(token string, chatID int64, endpoint string) (*TelegramChannel, error) {
	if token == "" {
		return nil, errors.New("telegram bot token is required")
	}
	if chatID == 0 {
		return nil, errors.New("telegram chat id is required")
	}

	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{Timeout: 10 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	bot.Debug = false

	return &TelegramChannel{bot: bot, chatID: chatID}, nil
}

func (t *TelegramChannel) Name() string { return "telegram" }

func (t *TelegramChannel) Send(ctx context.Context, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, body)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

var _ Channel = (*TelegramChannel)(nil)
