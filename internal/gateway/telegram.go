package gateway

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram is an outbound-only Messenger over the Telegram Bot API.
type Telegram struct {
	bot *tgbotapi.BotAPI
}

func NewTelegram(token string) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect telegram bot: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)
	return &Telegram{bot: bot}, nil
}

func (t *Telegram) Send(chatID string, text string) error {
	id := int64(0)
	if _, err := fmt.Sscanf(chatID, "%d", &id); err != nil || id == 0 {
		return fmt.Errorf("invalid chat ID: %s", chatID)
	}

	msg := tgbotapi.NewMessage(id, text)
	msg.ParseMode = "Markdown"
	_, err := t.bot.Send(msg)
	return err
}
