package cmds

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"altyn-bot/internal/infra/panel"
	"altyn-bot/internal/stories/subs"
)

type StatusCommand struct {
	bot        botApi
	subService StatusSubscriptionService
	panel      StatusPanelClient
}

type StatusSubscriptionService interface {
	GetActiveForUser(ctx context.Context, userID int64) (*subs.Subscription, error)
}

type StatusPanelClient interface {
	GetInbound(ctx context.Context, id string) (*panel.Inbound, error)
}

func NewStatusCommand(bot botApi, subService StatusSubscriptionService, panel StatusPanelClient) *StatusCommand {
	return &StatusCommand{
		bot:        bot,
		subService: subService,
		panel:      panel,
	}
}

func (c *StatusCommand) Execute(ctx context.Context, userID, chatID int64) error {
	sub, err := c.subService.GetActiveForUser(ctx, userID)
	if err != nil {
		msg := tgbotapi.NewMessage(chatID, "Ошибка при получении статуса")
		_, _ = c.bot.Send(msg)
		return fmt.Errorf("get active subscription: %w", err)
	}

	if sub == nil {
		msg := tgbotapi.NewMessage(chatID, "У вас нет активной подписки. Купить — /buy")
		_, err = c.bot.Send(msg)
		return err
	}

	text := fmt.Sprintf("✅ Подписка активна до %s\nКлюч: %s",
		sub.EndDate.Format("02.01.2006"), sub.VPNKeyID)

	// Трафик — best effort: подписка показывается и без панели.
	inbound, err := c.panel.GetInbound(ctx, sub.VPNKeyID)
	if err == nil && inbound != nil {
		text += fmt.Sprintf("\nТрафик: ↑ %s ↓ %s",
			formatTraffic(inbound.Up), formatTraffic(inbound.Down))
	}

	msg := tgbotapi.NewMessage(chatID, text)
	_, err = c.bot.Send(msg)
	return err
}

// formatTraffic переводит байты в человекочитаемый вид.
func formatTraffic(bytes int64) string {
	const unit = 1024

	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
