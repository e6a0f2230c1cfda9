package buysub

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"altyn-bot/internal/stories/payments"
	"altyn-bot/internal/stories/tariffs"
	"altyn-bot/internal/telegram/flows"
	"altyn-bot/internal/telegram/states"
)

type Handler struct {
	bot            botApi
	stateManager   stateManager
	tariffService  tariffService
	paymentService paymentService
	subService     subscriptionService
	l10n           localizer
	logger         *slog.Logger
}

func NewHandler(
	bot botApi,
	sm stateManager,
	ts tariffService,
	ps paymentService,
	ss subscriptionService,
	l10n localizer,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		bot:            bot,
		stateManager:   sm,
		tariffService:  ts,
		paymentService: ps,
		subService:     ss,
		l10n:           l10n,
		logger:         logger,
	}
}

// Start начинает flow покупки подписки
func (h *Handler) Start(userID, telegramID, chatID int64, lang string) error {
	flowData := &flows.BuySubFlowData{
		UserID:     userID,
		TelegramID: telegramID,
		Language:   lang,
	}
	h.stateManager.SetState(chatID, states.UserBuySubWaitTariff, flowData)

	return h.showTariffs(chatID, lang)
}

// Handle обрабатывает текущее состояние
func (h *Handler) Handle(update *tgbotapi.Update, state states.State) error {
	ctx := context.Background()

	switch state {
	case states.UserBuySubWaitTariff:
		return h.handleTariffSelection(ctx, update)
	case states.UserBuySubWaitPayment:
		return h.handlePaymentWait(ctx, update)
	default:
		return fmt.Errorf("unknown state: %s", state)
	}
}

func (h *Handler) showTariffs(chatID int64, lang string) error {
	ctx := context.Background()

	active, err := h.tariffService.GetActiveTariffs(ctx)
	if err != nil {
		return fmt.Errorf("получение тарифов: %w", err)
	}

	if len(active) == 0 {
		h.stateManager.Clear(chatID)
		msg := tgbotapi.NewMessage(chatID, h.l10n.Get(lang, "buy.no_tariffs", nil))
		_, err = h.bot.Send(msg)
		return err
	}

	msg := tgbotapi.NewMessage(chatID, h.l10n.Get(lang, "buy.choose_tariff", nil))
	msg.ReplyMarkup = h.tariffsKeyboard(active, lang)

	sentMsg, err := h.bot.Send(msg)
	if err != nil {
		return err
	}

	if flowData, err := h.stateManager.GetBuySubData(chatID); err == nil {
		flowData.MessageID = &sentMsg.MessageID
		h.stateManager.SetState(chatID, states.UserBuySubWaitTariff, flowData)
	}

	return nil
}

func (h *Handler) handleTariffSelection(ctx context.Context, update *tgbotapi.Update) error {
	if update.CallbackQuery == nil {
		chatID := extractChatID(update)
		lang := h.langFor(chatID)
		return h.sendText(chatID, h.l10n.Get(lang, "buy.choose_tariff", nil))
	}

	chatID := update.CallbackQuery.Message.Chat.ID

	if update.CallbackQuery.Data == "cancel" {
		return h.handleCancel(ctx, update)
	}

	flowData, err := h.stateManager.GetBuySubData(chatID)
	if err != nil {
		h.stateManager.Clear(chatID)
		return h.sendText(chatID, h.l10n.Get("ru", "common.error", nil))
	}

	tariffID, err := parseTariffCallback(update.CallbackQuery.Data)
	if err != nil {
		return h.sendText(chatID, h.l10n.Get(flowData.Language, "common.error", nil))
	}

	tariff, err := h.tariffService.GetTariff(ctx, tariffID)
	if err != nil || tariff == nil || !tariff.IsActive {
		return h.sendText(chatID, h.l10n.Get(flowData.Language, "buy.no_tariffs", nil))
	}

	if _, err := h.bot.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "")); err != nil {
		return err
	}

	flowData.TariffID = tariff.ID
	flowData.TariffName = tariff.Name
	flowData.Price = tariff.Price

	return h.createBillAndShow(ctx, chatID, flowData, tariff)
}

// createBillAndShow выставляет счёт и показывает ссылку на оплату.
// Подписку включит вебхук провайдера, кнопка проверки только читает статус.
func (h *Handler) createBillAndShow(ctx context.Context, chatID int64, data *flows.BuySubFlowData, tariff *tariffs.Tariff) error {
	payment, payURL, err := h.paymentService.CreateBillPayment(ctx, data.UserID, tariff)
	if err != nil {
		h.logger.Error("Failed to create bill payment", "error", err, "user_id", data.UserID)
		return h.sendText(chatID, h.l10n.Get(data.Language, "common.error", nil))
	}

	data.BillID = &payment.BillID
	data.PayURL = &payURL

	text := h.l10n.Get(data.Language, "buy.bill_created", map[string]interface{}{
		"amount":   fmt.Sprintf("%.2f", payment.Amount),
		"currency": payment.Currency,
		"tariff":   data.TariffName,
	})

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL(h.l10n.Get(data.Language, "buy.pay_button", nil), payURL),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(h.l10n.Get(data.Language, "buy.check_button", nil), "bill_check"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(h.l10n.Get(data.Language, "buy.cancel_button", nil), "bill_cancel"),
		),
	)

	if data.MessageID != nil {
		editMsg := tgbotapi.NewEditMessageText(chatID, *data.MessageID, text)
		editMsg.ReplyMarkup = &keyboard
		if _, err := h.bot.Send(editMsg); err != nil {
			return err
		}
	} else {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ReplyMarkup = keyboard
		sentMsg, err := h.bot.Send(msg)
		if err != nil {
			return err
		}
		data.MessageID = &sentMsg.MessageID
	}

	h.stateManager.SetState(chatID, states.UserBuySubWaitPayment, data)
	return nil
}

func (h *Handler) handlePaymentWait(ctx context.Context, update *tgbotapi.Update) error {
	chatID := extractChatID(update)

	data, err := h.stateManager.GetBuySubData(chatID)
	if err != nil {
		h.stateManager.Clear(chatID)
		return h.sendText(chatID, h.l10n.Get("ru", "common.error", nil))
	}

	if update.CallbackQuery == nil {
		return h.sendText(chatID, h.l10n.Get(data.Language, "common.unknown_command", nil))
	}

	switch update.CallbackQuery.Data {
	case "bill_check":
		return h.handleBillCheck(ctx, update, data)
	case "bill_cancel", "cancel":
		return h.handleBillCancel(ctx, update, data)
	default:
		return h.sendText(chatID, h.l10n.Get(data.Language, "common.unknown_command", nil))
	}
}

// handleBillCheck проверяет статус счёта у провайдера по кнопке.
func (h *Handler) handleBillCheck(ctx context.Context, update *tgbotapi.Update, data *flows.BuySubFlowData) error {
	chatID := update.CallbackQuery.Message.Chat.ID

	if _, err := h.bot.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "")); err != nil {
		return err
	}

	if data.BillID == nil {
		h.stateManager.Clear(chatID)
		return h.sendText(chatID, h.l10n.Get(data.Language, "common.error", nil))
	}

	bill, err := h.paymentService.CheckBill(ctx, *data.BillID)
	if err != nil {
		h.logger.Error("Failed to check bill", "error", err, "bill_id", *data.BillID)
		return h.sendText(chatID, h.l10n.Get(data.Language, "common.error", nil))
	}

	switch bill.Status {
	case payments.BillStatusPaid:
		return h.handleBillPaid(ctx, chatID, data)
	case payments.BillStatusRejected, payments.BillStatusExpired:
		h.stateManager.Clear(chatID)
		return h.sendText(chatID, h.l10n.Get(data.Language, "buy.canceled", nil))
	default:
		return h.sendText(chatID, h.l10n.Get(data.Language, "buy.not_paid", nil))
	}
}

func (h *Handler) handleBillPaid(ctx context.Context, chatID int64, data *flows.BuySubFlowData) error {
	sub, err := h.subService.GetActiveForUser(ctx, data.UserID)
	if err != nil {
		h.logger.Error("Failed to get subscription after payment", "error", err, "user_id", data.UserID)
		return h.sendText(chatID, h.l10n.Get(data.Language, "common.error", nil))
	}
	if sub == nil {
		// Оплата прошла, а вебхук ещё не доехал.
		return h.sendText(chatID, h.l10n.Get(data.Language, "buy.not_paid", nil))
	}

	h.stateManager.Clear(chatID)
	return h.sendText(chatID, h.l10n.Get(data.Language, "buy.paid", map[string]interface{}{
		"end_date": sub.EndDate.Format("02.01.2006"),
	}))
}

func (h *Handler) handleBillCancel(ctx context.Context, update *tgbotapi.Update, data *flows.BuySubFlowData) error {
	chatID := update.CallbackQuery.Message.Chat.ID

	if _, err := h.bot.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "")); err != nil {
		return err
	}

	if data.BillID != nil {
		if err := h.paymentService.CancelBill(ctx, *data.BillID); err != nil {
			h.logger.Error("Failed to cancel bill", "error", err, "bill_id", *data.BillID)
		}
	}

	h.stateManager.Clear(chatID)
	return h.sendText(chatID, h.l10n.Get(data.Language, "buy.canceled", nil))
}

func (h *Handler) handleCancel(_ context.Context, update *tgbotapi.Update) error {
	chatID := update.CallbackQuery.Message.Chat.ID
	lang := h.langFor(chatID)

	h.stateManager.Clear(chatID)

	if _, err := h.bot.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "")); err != nil {
		return err
	}

	return h.sendText(chatID, h.l10n.Get(lang, "help.text", nil))
}

func (h *Handler) tariffsKeyboard(active []*tariffs.Tariff, lang string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	for _, t := range active {
		text := fmt.Sprintf("📅 %s — %.2f ₽ (%d дн.)", t.Name, t.Price, t.DurationDays)
		button := tgbotapi.NewInlineKeyboardButtonData(text, fmt.Sprintf("tariff:%d", t.ID))
		rows = append(rows, []tgbotapi.InlineKeyboardButton{button})
	}

	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData(h.l10n.Get(lang, "buy.cancel_button", nil), "cancel"),
	})

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (h *Handler) langFor(chatID int64) string {
	if data, err := h.stateManager.GetBuySubData(chatID); err == nil && data.Language != "" {
		return data.Language
	}
	return "ru"
}

func (h *Handler) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := h.bot.Send(msg)
	return err
}

// parseTariffCallback парсит callback вида "tariff:<id>".
func parseTariffCallback(callbackData string) (int64, error) {
	if !strings.HasPrefix(callbackData, "tariff:") {
		return 0, fmt.Errorf("invalid callback format")
	}

	id, err := strconv.ParseInt(strings.TrimPrefix(callbackData, "tariff:"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid tariff ID: %w", err)
	}
	return id, nil
}

func extractChatID(update *tgbotapi.Update) int64 {
	if update.Message != nil {
		return update.Message.Chat.ID
	}
	if update.CallbackQuery != nil {
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}
