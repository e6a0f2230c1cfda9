package confirm

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"altyn-bot/internal/stories/payments"
	"altyn-bot/internal/stories/tariffs"
	"altyn-bot/internal/stories/users"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(storage *MockStorage, panel *MockPanel) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(storage, panel, 30, func() time.Time { return testNow }, logger)
}

func seedPendingPayment(storage *MockStorage, billID string, tariffID *int64) {
	storage.Users[1] = &users.User{ID: 1, TelegramID: 555111}
	storage.Payments[billID] = &payments.Payment{
		ID:       1,
		UserID:   1,
		TariffID: tariffID,
		Amount:   299,
		Currency: "RUB",
		BillID:   billID,
		Status:   payments.StatusPending,
	}
}

func TestConfirmSuccess(t *testing.T) {
	storage := NewMockStorage()
	panelMock := &MockPanel{}
	seedPendingPayment(storage, "vpn_abc12345", nil)

	service := newTestService(storage, panelMock)

	result, err := service.ConfirmSuccess(context.Background(), "vpn_abc12345")
	if err != nil {
		t.Fatalf("ConfirmSuccess: %v", err)
	}
	if result.AlreadyProcessed {
		t.Error("first delivery must not be marked as already processed")
	}
	if result.Subscription == nil {
		t.Fatal("expected subscription in result")
	}

	payment := storage.Payments["vpn_abc12345"]
	if payment.Status != payments.StatusCompleted {
		t.Errorf("payment status = %s, want completed", payment.Status)
	}
	if payment.CompletedAt == nil || !payment.CompletedAt.Equal(testNow) {
		t.Errorf("completed_at = %v, want %v", payment.CompletedAt, testNow)
	}

	if panelMock.Calls != 1 {
		t.Errorf("panel calls = %d, want 1", panelMock.Calls)
	}
	if panelMock.Remarks[0] != "user_555111" {
		t.Errorf("inbound remark = %s, want user_555111", panelMock.Remarks[0])
	}

	if len(storage.Subscriptions) != 1 {
		t.Fatalf("subscriptions = %d, want 1", len(storage.Subscriptions))
	}
	sub := storage.Subscriptions[0]
	if sub.UserID != 1 || !sub.IsActive {
		t.Errorf("unexpected subscription: %+v", sub)
	}
	if want := testNow.AddDate(0, 0, 30); !sub.EndDate.Equal(want) {
		t.Errorf("end_date = %v, want %v (default duration)", sub.EndDate, want)
	}
}

func TestConfirmSuccessUsesTariffDuration(t *testing.T) {
	storage := NewMockStorage()
	panelMock := &MockPanel{}
	seedPendingPayment(storage, "vpn_abc12345", lo.ToPtr(int64(7)))
	storage.Tariffs[7] = &tariffs.Tariff{ID: 7, Name: "Квартал", Price: 799, DurationDays: 90, IsActive: true}

	service := newTestService(storage, panelMock)

	result, err := service.ConfirmSuccess(context.Background(), "vpn_abc12345")
	if err != nil {
		t.Fatalf("ConfirmSuccess: %v", err)
	}

	if want := testNow.AddDate(0, 0, 90); !result.Subscription.EndDate.Equal(want) {
		t.Errorf("end_date = %v, want %v (tariff duration)", result.Subscription.EndDate, want)
	}
}

func TestConfirmSuccessIdempotent(t *testing.T) {
	storage := NewMockStorage()
	panelMock := &MockPanel{}
	seedPendingPayment(storage, "vpn_abc12345", nil)

	service := newTestService(storage, panelMock)

	if _, err := service.ConfirmSuccess(context.Background(), "vpn_abc12345"); err != nil {
		t.Fatalf("first ConfirmSuccess: %v", err)
	}

	result, err := service.ConfirmSuccess(context.Background(), "vpn_abc12345")
	if err != nil {
		t.Fatalf("second ConfirmSuccess: %v", err)
	}
	if !result.AlreadyProcessed {
		t.Error("redelivery must be reported as already processed")
	}

	if panelMock.Calls != 1 {
		t.Errorf("panel calls = %d, want 1 (no duplicate keys)", panelMock.Calls)
	}
	if len(storage.Subscriptions) != 1 {
		t.Errorf("subscriptions = %d, want 1", len(storage.Subscriptions))
	}
}

func TestConfirmSuccessUnknownBill(t *testing.T) {
	storage := NewMockStorage()
	panelMock := &MockPanel{}

	service := newTestService(storage, panelMock)

	_, err := service.ConfirmSuccess(context.Background(), "vpn_deadbeef")
	if !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("err = %v, want ErrPaymentNotFound", err)
	}

	if panelMock.Calls != 0 {
		t.Error("unknown bill must not reach the panel")
	}
	if len(storage.Payments) != 0 || len(storage.Subscriptions) != 0 {
		t.Error("unknown bill must not create records")
	}
}

func TestConfirmSuccessPanelFailureKeepsPending(t *testing.T) {
	storage := NewMockStorage()
	panelMock := &MockPanel{Err: errors.New("panel is down")}
	seedPendingPayment(storage, "vpn_abc12345", nil)

	service := newTestService(storage, panelMock)

	_, err := service.ConfirmSuccess(context.Background(), "vpn_abc12345")
	if !errors.Is(err, ErrProvisioning) {
		t.Fatalf("err = %v, want ErrProvisioning", err)
	}

	// Счёт остаётся pending, провайдер доставит уведомление повторно.
	if got := storage.Payments["vpn_abc12345"].Status; got != payments.StatusPending {
		t.Errorf("payment status = %s, want pending", got)
	}
	if len(storage.Subscriptions) != 0 {
		t.Errorf("subscriptions = %d, want 0", len(storage.Subscriptions))
	}
}

func TestConfirmSuccessUserMissing(t *testing.T) {
	storage := NewMockStorage()
	panelMock := &MockPanel{}
	seedPendingPayment(storage, "vpn_abc12345", nil)
	delete(storage.Users, 1)

	service := newTestService(storage, panelMock)

	_, err := service.ConfirmSuccess(context.Background(), "vpn_abc12345")
	if !errors.Is(err, ErrUserMissing) {
		t.Fatalf("err = %v, want ErrUserMissing", err)
	}
	if got := storage.Payments["vpn_abc12345"].Status; got != payments.StatusPending {
		t.Errorf("payment status = %s, want pending", got)
	}
	if panelMock.Calls != 0 {
		t.Error("missing owner must not reach the panel")
	}
}

func TestConfirmSuccessAfterFailed(t *testing.T) {
	storage := NewMockStorage()
	panelMock := &MockPanel{}
	seedPendingPayment(storage, "vpn_abc12345", nil)
	storage.Payments["vpn_abc12345"].Status = payments.StatusFailed

	service := newTestService(storage, panelMock)

	_, err := service.ConfirmSuccess(context.Background(), "vpn_abc12345")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if got := storage.Payments["vpn_abc12345"].Status; got != payments.StatusFailed {
		t.Errorf("payment status = %s, want failed (terminal)", got)
	}
}

func TestConfirmSuccessConcurrentDeliveries(t *testing.T) {
	storage := NewMockStorage()
	panelMock := &MockPanel{}
	seedPendingPayment(storage, "vpn_abc12345", nil)

	service := newTestService(storage, panelMock)

	const deliveries = 8
	var wg sync.WaitGroup
	errs := make([]error, deliveries)
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.ConfirmSuccess(context.Background(), "vpn_abc12345")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("delivery %d: %v", i, err)
		}
	}
	if panelMock.Calls != 1 {
		t.Errorf("panel calls = %d, want exactly 1", panelMock.Calls)
	}
	if len(storage.Subscriptions) != 1 {
		t.Errorf("subscriptions = %d, want exactly 1", len(storage.Subscriptions))
	}
}

func TestConfirmFailure(t *testing.T) {
	storage := NewMockStorage()
	panelMock := &MockPanel{}
	seedPendingPayment(storage, "vpn_abc12345", nil)

	service := newTestService(storage, panelMock)

	result, err := service.ConfirmFailure(context.Background(), "vpn_abc12345")
	if err != nil {
		t.Fatalf("ConfirmFailure: %v", err)
	}
	if result.AlreadyProcessed {
		t.Error("first failure delivery must not be marked as already processed")
	}

	if got := storage.Payments["vpn_abc12345"].Status; got != payments.StatusFailed {
		t.Errorf("payment status = %s, want failed", got)
	}
	if panelMock.Calls != 0 {
		t.Error("failure must not provision keys")
	}
	if len(storage.Subscriptions) != 0 {
		t.Error("failure must not create subscriptions")
	}
}

func TestConfirmFailureIdempotent(t *testing.T) {
	storage := NewMockStorage()
	seedPendingPayment(storage, "vpn_abc12345", nil)
	storage.Payments["vpn_abc12345"].Status = payments.StatusFailed

	service := newTestService(storage, &MockPanel{})

	result, err := service.ConfirmFailure(context.Background(), "vpn_abc12345")
	if err != nil {
		t.Fatalf("ConfirmFailure: %v", err)
	}
	if !result.AlreadyProcessed {
		t.Error("repeated failure must be a no-op")
	}
}

func TestConfirmFailureOnCompleted(t *testing.T) {
	storage := NewMockStorage()
	panelMock := &MockPanel{}
	seedPendingPayment(storage, "vpn_abc12345", nil)

	service := newTestService(storage, panelMock)

	if _, err := service.ConfirmSuccess(context.Background(), "vpn_abc12345"); err != nil {
		t.Fatalf("ConfirmSuccess: %v", err)
	}

	_, err := service.ConfirmFailure(context.Background(), "vpn_abc12345")
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if got := storage.Payments["vpn_abc12345"].Status; got != payments.StatusCompleted {
		t.Errorf("payment status = %s, want completed (not rolled back)", got)
	}
}

func TestConfirmFailureUnknownBill(t *testing.T) {
	service := newTestService(NewMockStorage(), &MockPanel{})

	_, err := service.ConfirmFailure(context.Background(), "vpn_deadbeef")
	if !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("err = %v, want ErrPaymentNotFound", err)
	}
}
