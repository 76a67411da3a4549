package services

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/terraincognita07/fertyfit/internal/models"
)

const telegramTimeout = 8 * time.Second

// TelegramPusher forwards emitted notifications to a single Telegram chat,
// for self-hosted single-user installs.
type TelegramPusher struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramPusher returns nil when the bot is not configured, which
// disables push delivery. The bot is not contacted until the first push.
func NewTelegramPusher(botToken string, chatID string) (*TelegramPusher, error) {
	return newTelegramPusher(botToken, chatID, tgbotapi.APIEndpoint)
}

func newTelegramPusher(botToken string, chatID string, endpoint string) (*TelegramPusher, error) {
	botToken = strings.TrimSpace(botToken)
	chatID = strings.TrimSpace(chatID)
	if botToken == "" || chatID == "" {
		return nil, nil
	}
	parsedChatID, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat id %q", chatID)
	}

	bot := &tgbotapi.BotAPI{
		Token:  botToken,
		Buffer: 100,
		Client: &http.Client{Timeout: telegramTimeout},
	}
	bot.SetAPIEndpoint(endpoint)
	return &TelegramPusher{bot: bot, chatID: parsedChatID}, nil
}

func (pusher *TelegramPusher) Push(ctx context.Context, notification models.Notification) error {
	if pusher == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	message := tgbotapi.NewMessage(pusher.chatID, fmt.Sprintf("%s\n\n%s", notification.Title, notification.Message))
	if _, err := pusher.bot.Send(message); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
