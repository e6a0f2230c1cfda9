package cmds

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"altyn-bot/internal/stories/tariffs"
)

type TariffsCommand struct {
	bot           botApi
	tariffService TariffsService
}

type TariffsService interface {
	ListTariffs(ctx context.Context) ([]*tariffs.Tariff, error)
	CreateTariff(ctx context.Context, tariff tariffs.Tariff) (*tariffs.Tariff, error)
	UpdateTariffStatus(ctx context.Context, tariffID int64, isActive bool) (*tariffs.Tariff, error)
}

func NewTariffsCommand(bot botApi, tariffService TariffsService) *TariffsCommand {
	return &TariffsCommand{
		bot:           bot,
		tariffService: tariffService,
	}
}

func (c *TariffsCommand) Execute(ctx context.Context, chatID int64) error {
	list, err := c.tariffService.ListTariffs(ctx)
	if err != nil {
		msg := tgbotapi.NewMessage(chatID, "Ошибка при получении тарифов")
		_, _ = c.bot.Send(msg)
		return fmt.Errorf("list tariffs: %w", err)
	}

	if len(list) == 0 {
		msg := tgbotapi.NewMessage(chatID, "Тарифов пока нет. Создать: /newtariff <название> <цена> <дней>")
		_, err = c.bot.Send(msg)
		return err
	}

	var text strings.Builder
	text.WriteString("📋 *Тарифы*\n\n")
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range list {
		mark := "🔴"
		action := "включить"
		if t.IsActive {
			mark = "🟢"
			action = "выключить"
		}
		text.WriteString(fmt.Sprintf("%s *%s* — %.2f ₽, %d дн.\n", mark, t.Name, t.Price, t.DurationDays))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s %s", t.Name, action),
				fmt.Sprintf("trf_toggle:%d", t.ID),
			),
		))
	}

	msg := tgbotapi.NewMessage(chatID, text.String())
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err = c.bot.Send(msg)
	return err
}

// HandleToggle переключает активность тарифа по callback "trf_toggle:<id>".
func (c *TariffsCommand) HandleToggle(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	idStr := strings.TrimPrefix(query.Data, "trf_toggle:")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid tariff callback %q: %w", query.Data, err)
	}

	list, err := c.tariffService.ListTariffs(ctx)
	if err != nil {
		return fmt.Errorf("list tariffs: %w", err)
	}

	var current *tariffs.Tariff
	for _, t := range list {
		if t.ID == id {
			current = t
			break
		}
	}
	if current == nil {
		_, _ = c.bot.Request(tgbotapi.NewCallback(query.ID, "Тариф не найден"))
		return nil
	}

	if _, err := c.tariffService.UpdateTariffStatus(ctx, id, !current.IsActive); err != nil {
		return fmt.Errorf("update tariff status: %w", err)
	}

	if _, err := c.bot.Request(tgbotapi.NewCallback(query.ID, "✅ Готово")); err != nil {
		return err
	}

	return c.Execute(ctx, query.Message.Chat.ID)
}

// ExecuteCreate создаёт тариф из аргументов "/newtariff <название> <цена> <дней>".
func (c *TariffsCommand) ExecuteCreate(ctx context.Context, chatID int64, args string) error {
	parts := strings.Fields(args)
	if len(parts) < 3 {
		msg := tgbotapi.NewMessage(chatID, "Использование: /newtariff <название> <цена> <дней>")
		_, err := c.bot.Send(msg)
		return err
	}

	// Название может состоять из нескольких слов, цена и срок — последние два.
	name := strings.Join(parts[:len(parts)-2], " ")
	price, err := strconv.ParseFloat(parts[len(parts)-2], 64)
	if err != nil {
		msg := tgbotapi.NewMessage(chatID, "Некорректная цена")
		_, err := c.bot.Send(msg)
		return err
	}
	days, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		msg := tgbotapi.NewMessage(chatID, "Некорректный срок в днях")
		_, err := c.bot.Send(msg)
		return err
	}

	created, err := c.tariffService.CreateTariff(ctx, tariffs.Tariff{
		Name:         name,
		Price:        price,
		DurationDays: days,
	})
	if err != nil {
		msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Ошибка создания тарифа: %v", err))
		_, sendErr := c.bot.Send(msg)
		if sendErr != nil {
			return sendErr
		}
		return fmt.Errorf("create tariff: %w", err)
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("✅ Тариф «%s» создан: %.2f ₽, %d дн.",
		created.Name, created.Price, created.DurationDays))
	_, err = c.bot.Send(msg)
	return err
}
