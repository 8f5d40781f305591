// Package telegram sends direct messages to a linked Telegram chat.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"peerhelp/internal/platform/config"
)

// Sender wraps the bot API's sendMessage.
type Sender struct {
	bot *tgbotapi.BotAPI
}

// New authenticates the bot token with getMe. An empty APIEndpoint uses the
// public Bot API.
func New(cfg config.TelegramConfig, client *http.Client) (*Sender, error) {
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.SendTimeout}
	}
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &Sender{bot: bot}, nil
}

// Send posts text to chatID. The bot client has no context support, so ctx
// only bounds how long the caller waits.
func (s *Sender) Send(ctx context.Context, chatID, text string) error {
	chat, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", chatID, err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.bot.Send(tgbotapi.NewMessage(chat, text))
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("telegram sendMessage: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
