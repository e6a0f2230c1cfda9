package buysub

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"altyn-bot/internal/stories/payments"
	"altyn-bot/internal/stories/subs"
	"altyn-bot/internal/stories/tariffs"
	"altyn-bot/internal/telegram/flows"
	"altyn-bot/internal/telegram/states"
)

// MockBotApi - мок Telegram Bot API
type MockBotApi struct {
	SentMessages []tgbotapi.Chattable
}

func (m *MockBotApi) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.SentMessages = append(m.SentMessages, c)
	return tgbotapi.Message{MessageID: len(m.SentMessages)}, nil
}

func (m *MockBotApi) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// MockStateManager - мок менеджера состояний
type MockStateManager struct {
	States map[int64]states.State
	Data   map[int64]any
}

func NewMockStateManager() *MockStateManager {
	return &MockStateManager{
		States: make(map[int64]states.State),
		Data:   make(map[int64]any),
	}
}

func (m *MockStateManager) SetState(chatID int64, state states.State, data any) {
	m.States[chatID] = state
	if data != nil {
		m.Data[chatID] = data
	}
}

func (m *MockStateManager) Clear(chatID int64) {
	delete(m.States, chatID)
	delete(m.Data, chatID)
}

func (m *MockStateManager) GetBuySubData(chatID int64) (*flows.BuySubFlowData, error) {
	data, exists := m.Data[chatID]
	if !exists {
		return nil, fmt.Errorf("no data for chat %d", chatID)
	}

	flowData, ok := data.(*flows.BuySubFlowData)
	if !ok {
		return nil, fmt.Errorf("invalid data type for chat %d", chatID)
	}
	return flowData, nil
}

// MockTariffService - мок сервиса тарифов
type MockTariffService struct {
	Tariffs []*tariffs.Tariff
}

func (m *MockTariffService) GetActiveTariffs(_ context.Context) ([]*tariffs.Tariff, error) {
	return m.Tariffs, nil
}

func (m *MockTariffService) GetTariff(_ context.Context, id int64) (*tariffs.Tariff, error) {
	for _, t := range m.Tariffs {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, nil
}

// MockPaymentService - мок платёжного сервиса
type MockPaymentService struct {
	BillStatus    string
	CreatedBills  []string
	CanceledBills []string
}

func (m *MockPaymentService) CreateBillPayment(_ context.Context, userID int64, tariff *tariffs.Tariff) (*payments.Payment, string, error) {
	billID := fmt.Sprintf("vpn_mock%04d", len(m.CreatedBills)+1)
	m.CreatedBills = append(m.CreatedBills, billID)

	return &payments.Payment{
		ID:       int64(len(m.CreatedBills)),
		UserID:   userID,
		Amount:   tariff.Price,
		Currency: "RUB",
		BillID:   billID,
		Status:   payments.StatusPending,
	}, "https://pay.example.com/" + billID, nil
}

func (m *MockPaymentService) CheckBill(_ context.Context, billID string) (*payments.Bill, error) {
	status := m.BillStatus
	if status == "" {
		status = payments.BillStatusWaiting
	}
	return &payments.Bill{BillID: billID, Status: status}, nil
}

func (m *MockPaymentService) CancelBill(_ context.Context, billID string) error {
	m.CanceledBills = append(m.CanceledBills, billID)
	return nil
}

// MockSubscriptionService - мок сервиса подписок
type MockSubscriptionService struct {
	Active *subs.Subscription
}

func (m *MockSubscriptionService) GetActiveForUser(_ context.Context, _ int64) (*subs.Subscription, error) {
	return m.Active, nil
}

// MockLocalizer возвращает ключ перевода, чтобы проверять его в тестах.
type MockLocalizer struct{}

func (m *MockLocalizer) Get(_, key string, _ map[string]interface{}) string {
	return key
}

func testTariffs() []*tariffs.Tariff {
	return []*tariffs.Tariff{
		{ID: 1, Name: "Базовый", DurationDays: 30, Price: 199.0, IsActive: true, CreatedAt: time.Now()},
		{ID: 2, Name: "Премиум", DurationDays: 90, Price: 799.0, IsActive: true, CreatedAt: time.Now()},
	}
}
