// Package notify tells the shop owner about new bookings over Telegram.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/barbershop-booking/internal/persistence"
)

// telegramClient is the part of *tgbotapi.BotAPI the notifier uses.
type telegramClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier sends one message per booking to a fixed chat.
type TelegramNotifier struct {
	client telegramClient
	chatID int64
}

// NewTelegramNotifier logs in with token. chatID must be the owner's chat.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("notify: telegram token is empty")
	}
	if chatID == 0 {
		return nil, errors.New("notify: telegram chat id is empty")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("notify: connect to telegram: %w", err)
	}
	return newTelegramNotifier(api, chatID), nil
}

func newTelegramNotifier(client telegramClient, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{client: client, chatID: chatID}
}

// BookingCreated sends the booking summary. The Telegram client has no context
// support, so ctx is only checked before sending.
func (n *TelegramNotifier) BookingCreated(ctx context.Context, booking persistence.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(n.chatID, formatBookingMessage(booking))
	if _, err := n.client.Send(msg); err != nil {
		return fmt.Errorf("notify: send booking %d: %w", booking.ID, err)
	}
	return nil
}

func formatBookingMessage(b persistence.Booking) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "رزرو جدید #%d\n", b.ID)
	fmt.Fprintf(&sb, "نام: %s\n", b.CustomerName)
	fmt.Fprintf(&sb, "تلفن: %s\n", b.CustomerPhone)
	fmt.Fprintf(&sb, "تاریخ: %s (%s)\n", b.Date, b.Date.WeekdayName())
	fmt.Fprintf(&sb, "زمان: %s", b.Slot.Label())
	return sb.String()
}
