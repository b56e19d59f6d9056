package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nala-backend/config"
)

// TelegramNotifier pings the studio's Telegram channel when a class
// registration is paid. Other product families are skipped; the guide flow
// delivers its code through the unlock page, not chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID string
}

func NewTelegramNotifier(cfg config.TelegramConfig) (*TelegramNotifier, error) {
	if cfg.BotToken == "" || cfg.ChatID == "" {
		return nil, fmt.Errorf("telegram bot token/chat id not configured")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: cfg.ChatID}, nil
}

func (t *TelegramNotifier) Notify(_ context.Context, event AccessIssued) error {
	if !isClassOrder(event.OrderID) {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎉 *Pembayaran Kelas Berhasil!*\n\n")
	fmt.Fprintf(&b, "🆔 Order ID: `%s`\n", event.OrderID)
	if event.GrossAmount != "" {
		fmt.Fprintf(&b, "💰 Nominal: Rp %s\n", event.GrossAmount)
	}
	if details := joinNonEmpty(event.CustomFields[:]); details != "" {
		fmt.Fprintf(&b, "\n📋 *Detail Pendaftaran*:\n%s\n", details)
	}
	fmt.Fprintf(&b, "\n👤 *Pemesan*:\nNama: %s %s\nEmail: %s\n",
		event.Customer.FirstName, event.Customer.LastName, event.Customer.Email)
	fmt.Fprintf(&b, "\n✅ Status: LUNAS")

	msg := t.newMessage(b.String())
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := t.bot.Send(msg)
	return err
}

// newMessage supports both numeric chat ids and @channel usernames.
func (t *TelegramNotifier) newMessage(text string) tgbotapi.MessageConfig {
	if id, err := strconv.ParseInt(t.chatID, 10, 64); err == nil {
		return tgbotapi.NewMessage(id, text)
	}
	return tgbotapi.NewMessageToChannel(t.chatID, text)
}

func isClassOrder(orderID string) bool {
	return strings.HasPrefix(orderID, "BELAJAR-") || strings.HasPrefix(orderID, "CLASS-")
}

func joinNonEmpty(parts []string) string {
	var out []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}
