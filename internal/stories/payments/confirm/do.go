package confirm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"altyn-bot/internal/stories/payments"
	"altyn-bot/internal/stories/subs"
	"altyn-bot/internal/stories/tariffs"
	"altyn-bot/internal/stories/users"
)

// Service — ядро обработки вебхуков биллинга: переводит платёж в
// терминальный статус и при успехе выдаёт VPN-ключ через панель.
type Service struct {
	storage     storage
	panel       panelClient
	defaultDays int
	now         func() time.Time
	logger      *slog.Logger
	tracer      trace.Tracer
	locks       *keyedMutex
}

func NewService(storage storage, panel panelClient, defaultDays int, now func() time.Time, logger *slog.Logger) *Service {
	return &Service{
		storage:     storage,
		panel:       panel,
		defaultDays: defaultDays,
		now:         now,
		logger:      logger,
		tracer:      otel.Tracer("altyn-bot/payments/confirm"),
		locks:       newKeyedMutex(),
	}
}

// Result — исход подтверждения.
type Result struct {
	// AlreadyProcessed — повторная доставка, побочных эффектов не было.
	AlreadyProcessed bool
	Subscription     *subs.Subscription
}

// ConfirmSuccess обрабатывает уведомление об успешной оплате счёта.
//
// Платёж помечается completed и подписка создаётся одной транзакцией,
// и только после того как панель выдала ключ. Если панель упала, в базе
// ничего не меняется: счёт остаётся pending, провайдер доставит
// уведомление повторно.
func (s *Service) ConfirmSuccess(ctx context.Context, billID string) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "confirm.Success",
		trace.WithAttributes(attribute.String("bill_id", billID)))
	defer span.End()

	unlock := s.locks.lock(billID)
	defer unlock()

	payment, err := s.storage.GetPayment(ctx, payments.GetCriteria{BillID: &billID})
	if err != nil {
		return nil, errors.Wrap(err, "get payment")
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}

	switch payment.Status {
	case payments.StatusCompleted:
		// Повторная доставка: ключ уже выдан, второго не будет.
		s.logger.Info("Payment already completed, skipping", "bill_id", billID)
		return &Result{AlreadyProcessed: true}, nil
	case payments.StatusFailed:
		return nil, errors.Wrapf(ErrConflict, "success webhook for failed payment %s", billID)
	}

	user, err := s.storage.GetUser(ctx, users.GetCriteria{ID: &payment.UserID})
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}
	if user == nil {
		return nil, errors.Wrapf(ErrUserMissing, "payment %s references user %d", billID, payment.UserID)
	}

	days := s.subscriptionDays(ctx, payment)
	now := s.now()
	endDate := now.AddDate(0, 0, days)

	inbound, err := s.panel.CreateInbound(ctx, fmt.Sprintf("user_%d", user.TelegramID), endDate.Sub(now))
	if err != nil {
		return nil, errors.Wrapf(ErrProvisioning, "panel create inbound: %v", err)
	}

	subscription := subs.Subscription{
		UserID:    user.ID,
		VPNKeyID:  fmt.Sprintf("%d", inbound.ID),
		StartDate: now,
		EndDate:   endDate,
		IsActive:  true,
	}

	created, err := s.storage.CompletePayment(ctx, billID, now, subscription)
	if err != nil {
		if errors.Is(err, payments.ErrNotPending) {
			// Конкурентная доставка успела первой. Подписка уже есть,
			// а только что созданный inbound остаётся сиротой в панели.
			s.logger.Warn("Payment completed concurrently, orphan inbound left on panel",
				"bill_id", billID,
				"inbound_id", inbound.ID,
			)
			return &Result{AlreadyProcessed: true}, nil
		}
		return nil, errors.Wrap(err, "complete payment")
	}

	s.logger.Info("Payment completed, subscription provisioned",
		"bill_id", billID,
		"user_id", user.ID,
		"subscription_id", created.ID,
		"vpn_key_id", created.VPNKeyID,
		"end_date", created.EndDate,
	)

	return &Result{Subscription: created}, nil
}

// ConfirmFailure обрабатывает уведомление о неуспешной оплате.
// Единственный побочный эффект — статус платежа становится failed.
func (s *Service) ConfirmFailure(ctx context.Context, billID string) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "confirm.Failure",
		trace.WithAttributes(attribute.String("bill_id", billID)))
	defer span.End()

	unlock := s.locks.lock(billID)
	defer unlock()

	payment, err := s.storage.GetPayment(ctx, payments.GetCriteria{BillID: &billID})
	if err != nil {
		return nil, errors.Wrap(err, "get payment")
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}

	switch payment.Status {
	case payments.StatusFailed:
		return &Result{AlreadyProcessed: true}, nil
	case payments.StatusCompleted:
		// Статусы терминальны, completed не откатывается.
		return nil, errors.Wrapf(ErrConflict, "fail webhook for completed payment %s", billID)
	}

	if _, err := s.storage.UpdatePayment(ctx, payments.GetCriteria{BillID: &billID}, payments.UpdateParams{
		Status: lo.ToPtr(payments.StatusFailed),
	}); err != nil {
		return nil, errors.Wrap(err, "update payment")
	}

	s.logger.Info("Payment marked as failed", "bill_id", billID)
	return &Result{}, nil
}

// subscriptionDays возвращает длительность подписки из тарифа платежа,
// либо настроенный fallback, если тариф недоступен.
func (s *Service) subscriptionDays(ctx context.Context, payment *payments.Payment) int {
	if payment.TariffID == nil {
		return s.defaultDays
	}

	tariff, err := s.storage.GetTariff(ctx, tariffs.GetCriteria{ID: payment.TariffID})
	if err != nil {
		s.logger.Warn("Failed to resolve tariff, using default duration",
			"bill_id", payment.BillID,
			"tariff_id", *payment.TariffID,
			"error", err,
		)
		return s.defaultDays
	}
	if tariff == nil || tariff.DurationDays <= 0 {
		return s.defaultDays
	}

	return tariff.DurationDays
}
