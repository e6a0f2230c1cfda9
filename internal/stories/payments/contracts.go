package payments

import (
	"context"
	"time"

	"altyn-bot/internal/stories/subs"
)

type (
	// Storage provides database operations for payments
	Storage interface {
		CreatePayment(ctx context.Context, payment Payment) (*Payment, error)
		GetPayment(ctx context.Context, criteria GetCriteria) (*Payment, error)
		UpdatePayment(ctx context.Context, criteria GetCriteria, params UpdateParams) (*Payment, error)
		ListPayments(ctx context.Context, criteria ListCriteria) ([]*Payment, error)
		// CompletePayment атомарно переводит платёж pending → completed и
		// создаёт подписку. Возвращает ErrNotPending, если платёж уже не pending.
		CompletePayment(ctx context.Context, billID string, completedAt time.Time, subscription subs.Subscription) (*subs.Subscription, error)
	}

	// BillingClient provides bill operations of the payment provider
	BillingClient interface {
		CreateBill(ctx context.Context, billID string, amount float64, currency, comment string) (*Bill, error)
		BillStatus(ctx context.Context, billID string) (*Bill, error)
		CancelBill(ctx context.Context, billID string) error
	}
)
