package notification

import (
	"context"
	"strconv"

	tele "gopkg.in/telebot.v3"
)

const telegramLimit = 4000

// TelegramAdminSender mirrors admin notices to a Telegram chat.
type TelegramAdminSender struct {
	bot  *tele.Bot
	chat *tele.Chat
}

// NewTelegramAdminSender returns nil when the bot is not configured. apiURL
// overrides the Bot API endpoint and is empty in production.
func NewTelegramAdminSender(token string, chatID int64, apiURL string) (*TelegramAdminSender, error) {
	if token == "" || chatID == 0 {
		return nil, nil
	}
	b, err := tele.NewBot(tele.Settings{
		URL:     apiURL,
		Token:   token,
		Offline: true,
	})
	if err != nil {
		return nil, err
	}
	return &TelegramAdminSender{bot: b, chat: &tele.Chat{ID: chatID}}, nil
}

func (s *TelegramAdminSender) NotifyAdmin(_ context.Context, m AdminMessage) (string, error) {
	if s == nil {
		return "", ErrNotConfigured
	}
	text := m.Subject
	if m.TextContent != "" {
		text += "\n\n" + m.TextContent
	}
	if r := []rune(text); len(r) > telegramLimit {
		text = string(r[:telegramLimit])
	}
	msg, err := s.bot.Send(s.chat, text, &tele.SendOptions{DisableWebPagePreview: true})
	if err != nil {
		return "", err
	}
	return strconv.Itoa(msg.ID), nil
}
