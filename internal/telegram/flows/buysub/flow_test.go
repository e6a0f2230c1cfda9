package buysub

import (
	"io"
	"log/slog"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"altyn-bot/internal/stories/payments"
	"altyn-bot/internal/stories/subs"
	"altyn-bot/internal/telegram/states"
)

func newTestHandler(t *testing.T) (*Handler, *MockBotApi, *MockStateManager, *MockPaymentService, *MockSubscriptionService) {
	t.Helper()

	bot := &MockBotApi{}
	sm := NewMockStateManager()
	ps := &MockPaymentService{}
	ss := &MockSubscriptionService{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := NewHandler(bot, sm, &MockTariffService{Tariffs: testTariffs()}, ps, ss, &MockLocalizer{}, logger)
	return h, bot, sm, ps, ss
}

func callbackUpdate(chatID int64, data string) *tgbotapi.Update {
	return &tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb1",
			Data:    data,
			Message: &tgbotapi.Message{MessageID: 10, Chat: &tgbotapi.Chat{ID: chatID}},
		},
	}
}

func TestStartShowsTariffs(t *testing.T) {
	h, bot, sm, _, _ := newTestHandler(t)

	if err := h.Start(1, 555111, 100, "ru"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if sm.States[100] != states.UserBuySubWaitTariff {
		t.Errorf("state = %s, want %s", sm.States[100], states.UserBuySubWaitTariff)
	}
	if len(bot.SentMessages) != 1 {
		t.Fatalf("sent messages = %d, want 1", len(bot.SentMessages))
	}

	msg, ok := bot.SentMessages[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("unexpected message type %T", bot.SentMessages[0])
	}
	keyboard, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		t.Fatalf("expected inline keyboard, got %T", msg.ReplyMarkup)
	}
	// Два тарифа плюс кнопка отмены.
	if len(keyboard.InlineKeyboard) != 3 {
		t.Errorf("keyboard rows = %d, want 3", len(keyboard.InlineKeyboard))
	}
}

func TestTariffSelectionCreatesBill(t *testing.T) {
	h, _, sm, ps, _ := newTestHandler(t)

	if err := h.Start(1, 555111, 100, "ru"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	update := callbackUpdate(100, "tariff:2")
	if err := h.Handle(update, states.UserBuySubWaitTariff); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if sm.States[100] != states.UserBuySubWaitPayment {
		t.Errorf("state = %s, want %s", sm.States[100], states.UserBuySubWaitPayment)
	}
	if len(ps.CreatedBills) != 1 {
		t.Fatalf("created bills = %d, want 1", len(ps.CreatedBills))
	}

	data, err := sm.GetBuySubData(100)
	if err != nil {
		t.Fatalf("GetBuySubData: %v", err)
	}
	if data.BillID == nil || *data.BillID != ps.CreatedBills[0] {
		t.Errorf("flow bill id = %v, want %s", data.BillID, ps.CreatedBills[0])
	}
	if data.TariffID != 2 {
		t.Errorf("tariff id = %d, want 2", data.TariffID)
	}
}

func TestBillCheckNotPaidKeepsWaiting(t *testing.T) {
	h, bot, sm, ps, _ := newTestHandler(t)
	ps.BillStatus = payments.BillStatusWaiting

	if err := h.Start(1, 555111, 100, "ru"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := h.Handle(callbackUpdate(100, "tariff:1"), states.UserBuySubWaitTariff); err != nil {
		t.Fatalf("select tariff: %v", err)
	}

	if err := h.Handle(callbackUpdate(100, "bill_check"), states.UserBuySubWaitPayment); err != nil {
		t.Fatalf("bill check: %v", err)
	}

	if sm.States[100] != states.UserBuySubWaitPayment {
		t.Errorf("state = %s, want still waiting for payment", sm.States[100])
	}

	last, ok := bot.SentMessages[len(bot.SentMessages)-1].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("unexpected message type %T", bot.SentMessages[len(bot.SentMessages)-1])
	}
	if last.Text != "buy.not_paid" {
		t.Errorf("last message = %q, want buy.not_paid", last.Text)
	}
}

func TestBillCheckPaidFinishesFlow(t *testing.T) {
	h, bot, sm, ps, ss := newTestHandler(t)
	ps.BillStatus = payments.BillStatusPaid
	ss.Active = &subs.Subscription{
		ID:       1,
		UserID:   1,
		VPNKeyID: "1001",
		EndDate:  time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		IsActive: true,
	}

	if err := h.Start(1, 555111, 100, "ru"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := h.Handle(callbackUpdate(100, "tariff:1"), states.UserBuySubWaitTariff); err != nil {
		t.Fatalf("select tariff: %v", err)
	}

	if err := h.Handle(callbackUpdate(100, "bill_check"), states.UserBuySubWaitPayment); err != nil {
		t.Fatalf("bill check: %v", err)
	}

	if _, exists := sm.States[100]; exists {
		t.Error("flow state must be cleared after successful payment")
	}

	last := bot.SentMessages[len(bot.SentMessages)-1].(tgbotapi.MessageConfig)
	if last.Text != "buy.paid" {
		t.Errorf("last message = %q, want buy.paid", last.Text)
	}
}

func TestBillCancel(t *testing.T) {
	h, bot, sm, ps, _ := newTestHandler(t)

	if err := h.Start(1, 555111, 100, "ru"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := h.Handle(callbackUpdate(100, "tariff:1"), states.UserBuySubWaitTariff); err != nil {
		t.Fatalf("select tariff: %v", err)
	}

	if err := h.Handle(callbackUpdate(100, "bill_cancel"), states.UserBuySubWaitPayment); err != nil {
		t.Fatalf("bill cancel: %v", err)
	}

	if len(ps.CanceledBills) != 1 {
		t.Errorf("canceled bills = %d, want 1", len(ps.CanceledBills))
	}
	if _, exists := sm.States[100]; exists {
		t.Error("flow state must be cleared after cancel")
	}

	last := bot.SentMessages[len(bot.SentMessages)-1].(tgbotapi.MessageConfig)
	if last.Text != "buy.canceled" {
		t.Errorf("last message = %q, want buy.canceled", last.Text)
	}
}
