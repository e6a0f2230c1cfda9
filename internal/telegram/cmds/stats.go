package cmds

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"altyn-bot/internal/storage"
)

type StatsCommand struct {
	bot     botApi
	storage StatisticsStorage
}

type StatisticsStorage interface {
	GetStats(ctx context.Context, now time.Time) (*storage.Stats, error)
}

func NewStatsCommand(bot botApi, storage StatisticsStorage) *StatsCommand {
	return &StatsCommand{
		bot:     bot,
		storage: storage,
	}
}

func (c *StatsCommand) Execute(ctx context.Context, chatID int64) error {
	stats, err := c.storage.GetStats(ctx, time.Now().UTC())
	if err != nil {
		msg := tgbotapi.NewMessage(chatID, "Ошибка при получении статистики")
		_, _ = c.bot.Send(msg)
		return fmt.Errorf("get stats: %w", err)
	}

	text := c.formatStats(stats)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Обновить", "stats_refresh"),
		),
	)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboard
	_, err = c.bot.Send(msg)
	return err
}

func (c *StatsCommand) Refresh(ctx context.Context, chatID int64, messageID int) error {
	stats, err := c.storage.GetStats(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	text := c.formatStats(stats)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Обновить", "stats_refresh"),
		),
	)

	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = "Markdown"
	edit.ReplyMarkup = &keyboard
	_, err = c.bot.Send(edit)
	if err != nil && strings.Contains(err.Error(), "message is not modified") {
		return nil
	}
	return err
}

func (c *StatsCommand) formatStats(stats *storage.Stats) string {
	var text strings.Builder

	text.WriteString("📊 *Статистика*\n\n")
	text.WriteString(fmt.Sprintf("*Пользователей:* %d\n", stats.TotalUsers))
	text.WriteString(fmt.Sprintf("*Активных подписок:* %d\n", stats.ActiveSubscriptions))
	text.WriteString(fmt.Sprintf("*Платежей:* %d\n", stats.TotalPayments))
	text.WriteString(fmt.Sprintf("*Выручка:* %.2f ₽", stats.TotalRevenue))

	return text.String()
}
