package storage

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"altyn-bot/internal/stories/payments"
	"altyn-bot/internal/stories/subs"
	"altyn-bot/internal/stories/users"
)

func newTestStorage(t *testing.T) *storageImpl {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// In-memory база живёт в одном соединении.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	s := New(db)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func seedPendingPayment(t *testing.T, s *storageImpl, billID string) *users.User {
	t.Helper()
	ctx := context.Background()

	user, err := s.CreateUser(ctx, users.User{
		TelegramID: 555111,
		Username:   lo.ToPtr("test_user"),
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	if _, err := s.CreatePayment(ctx, payments.Payment{
		UserID:   user.ID,
		Amount:   299,
		Currency: "RUB",
		BillID:   billID,
		Status:   payments.StatusPending,
	}); err != nil {
		t.Fatalf("create payment: %v", err)
	}

	return user
}

func TestCompletePayment(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	user := seedPendingPayment(t, s, "vpn_abc12345")

	completedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	created, err := s.CompletePayment(ctx, "vpn_abc12345", completedAt, subs.Subscription{
		UserID:    user.ID,
		VPNKeyID:  "1001",
		StartDate: completedAt,
		EndDate:   completedAt.AddDate(0, 0, 30),
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("CompletePayment: %v", err)
	}
	if created == nil || created.ID == 0 {
		t.Fatalf("expected persisted subscription, got %+v", created)
	}
	if created.VPNKeyID != "1001" || !created.IsActive {
		t.Errorf("unexpected subscription: %+v", created)
	}

	payment, err := s.GetPayment(ctx, payments.GetCriteria{BillID: lo.ToPtr("vpn_abc12345")})
	if err != nil {
		t.Fatalf("GetPayment: %v", err)
	}
	if payment.Status != payments.StatusCompleted {
		t.Errorf("payment status = %s, want completed", payment.Status)
	}
	if payment.CompletedAt == nil {
		t.Error("completed_at must be set")
	}
}

func TestCompletePaymentTwice(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	user := seedPendingPayment(t, s, "vpn_abc12345")

	now := time.Now().UTC()
	subscription := subs.Subscription{
		UserID:    user.ID,
		VPNKeyID:  "1001",
		StartDate: now,
		EndDate:   now.AddDate(0, 0, 30),
		IsActive:  true,
	}

	if _, err := s.CompletePayment(ctx, "vpn_abc12345", now, subscription); err != nil {
		t.Fatalf("first CompletePayment: %v", err)
	}

	_, err := s.CompletePayment(ctx, "vpn_abc12345", now, subscription)
	if !errors.Is(err, payments.ErrNotPending) {
		t.Fatalf("second CompletePayment err = %v, want ErrNotPending", err)
	}

	list, err := s.ListSubscriptions(ctx, subs.ListCriteria{UserID: &user.ID})
	if err != nil {
		t.Fatalf("ListSubscriptions: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("subscriptions = %d, want exactly 1", len(list))
	}
}

func TestCompletePaymentUnknownBill(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.CompletePayment(context.Background(), "vpn_deadbeef", time.Now().UTC(), subs.Subscription{})
	if !errors.Is(err, payments.ErrNotPending) {
		t.Fatalf("err = %v, want ErrNotPending", err)
	}
}

func TestGetPaymentMissing(t *testing.T) {
	s := newTestStorage(t)

	payment, err := s.GetPayment(context.Background(), payments.GetCriteria{BillID: lo.ToPtr("vpn_deadbeef")})
	if err != nil {
		t.Fatalf("GetPayment: %v", err)
	}
	if payment != nil {
		t.Errorf("expected nil for unknown bill, got %+v", payment)
	}
}
