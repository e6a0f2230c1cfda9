package cmds

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"altyn-bot/internal/stories/payments"
)

type PaymentsCommand struct {
	bot            botApi
	paymentService PaymentsService
}

type PaymentsService interface {
	ListRecent(ctx context.Context, limit int) ([]*payments.Payment, error)
}

func NewPaymentsCommand(bot botApi, paymentService PaymentsService) *PaymentsCommand {
	return &PaymentsCommand{
		bot:            bot,
		paymentService: paymentService,
	}
}

func (c *PaymentsCommand) Execute(ctx context.Context, chatID int64) error {
	list, err := c.paymentService.ListRecent(ctx, 20)
	if err != nil {
		msg := tgbotapi.NewMessage(chatID, "Ошибка при получении платежей")
		_, _ = c.bot.Send(msg)
		return fmt.Errorf("list recent payments: %w", err)
	}

	if len(list) == 0 {
		msg := tgbotapi.NewMessage(chatID, "Платежей пока нет")
		_, err = c.bot.Send(msg)
		return err
	}

	var text strings.Builder
	text.WriteString("💳 *Последние платежи*\n\n")
	for _, p := range list {
		text.WriteString(fmt.Sprintf("%s `%s` — %.2f %s, %s\n",
			statusEmoji(p.Status),
			p.BillID,
			p.Amount,
			p.Currency,
			p.CreatedAt.Format("02.01 15:04"),
		))
	}

	msg := tgbotapi.NewMessage(chatID, text.String())
	msg.ParseMode = "Markdown"
	_, err = c.bot.Send(msg)
	return err
}

func statusEmoji(status payments.Status) string {
	switch status {
	case payments.StatusCompleted:
		return "✅"
	case payments.StatusFailed:
		return "❌"
	default:
		return "⏳"
	}
}
