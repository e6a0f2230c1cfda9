package payments

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"altyn-bot/internal/stories/tariffs"
)

// ErrNotPending возвращается хранилищем, когда завершение платежа
// наткнулось на статус, отличный от pending (повторная доставка или гонка).
var ErrNotPending = errors.New("payment is not pending")

// Service provides business logic for payment operations
type Service struct {
	storage Storage
	billing BillingClient
	logger  *slog.Logger
}

// NewService creates a new payment service
func NewService(storage Storage, billing BillingClient, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		billing: billing,
		logger:  logger,
	}
}

// GenerateBillID выдаёт уникальный внешний идентификатор платежа.
func GenerateBillID() string {
	return "vpn_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// CreateBillPayment выставляет счёт у провайдера и сохраняет платёж
// в статусе pending. Возвращает платёж и ссылку на оплату.
func (s *Service) CreateBillPayment(ctx context.Context, userID int64, tariff *tariffs.Tariff) (*Payment, string, error) {
	if tariff == nil {
		return nil, "", errors.New("tariff is required")
	}
	if userID <= 0 {
		return nil, "", errors.New("userID must be positive")
	}

	billID := GenerateBillID()
	comment := fmt.Sprintf("Оплата VPN-подписки %s", billID)

	s.logger.Info("Creating bill",
		"user_id", userID,
		"tariff_id", tariff.ID,
		"amount", tariff.Price,
		"bill_id", billID,
	)

	bill, err := s.billing.CreateBill(ctx, billID, tariff.Price, "RUB", comment)
	if err != nil {
		s.logger.Error("Failed to create bill", "error", err, "bill_id", billID)
		return nil, "", errors.Wrap(err, "create bill")
	}
	if bill.PayURL == "" {
		return nil, "", errors.New("provider returned no pay url")
	}

	payment := Payment{
		UserID:   userID,
		TariffID: lo.ToPtr(tariff.ID),
		Amount:   tariff.Price,
		Currency: "RUB",
		BillID:   billID,
		Status:   StatusPending,
	}

	created, err := s.storage.CreatePayment(ctx, payment)
	if err != nil {
		s.logger.Error("Failed to create payment in storage", "error", err, "bill_id", billID)
		return nil, "", errors.Wrap(err, "create payment in storage")
	}

	s.logger.Info("Payment created", "payment_id", created.ID, "bill_id", billID)
	return created, bill.PayURL, nil
}

// CheckBill запрашивает статус счёта у провайдера. Только чтение:
// локальный статус меняет исключительно вебхук.
func (s *Service) CheckBill(ctx context.Context, billID string) (*Bill, error) {
	bill, err := s.billing.BillStatus(ctx, billID)
	if err != nil {
		return nil, errors.Wrap(err, "bill status")
	}
	return bill, nil
}

// CancelBill отклоняет счёт у провайдера, локальный платёж переведёт
// в failed вебхук об отмене.
func (s *Service) CancelBill(ctx context.Context, billID string) error {
	if err := s.billing.CancelBill(ctx, billID); err != nil {
		return errors.Wrap(err, "cancel bill")
	}
	return nil
}

// GetByBillID возвращает платёж по внешнему идентификатору, nil если нет.
func (s *Service) GetByBillID(ctx context.Context, billID string) (*Payment, error) {
	return s.storage.GetPayment(ctx, GetCriteria{BillID: &billID})
}

// ListRecent возвращает последние платежи для админ-отчёта.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]*Payment, error) {
	return s.storage.ListPayments(ctx, ListCriteria{Limit: limit})
}
