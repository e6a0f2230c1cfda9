package confirm

import (
	"context"
	"time"

	"altyn-bot/internal/infra/panel"
	"altyn-bot/internal/stories/payments"
	"altyn-bot/internal/stories/subs"
	"altyn-bot/internal/stories/tariffs"
	"altyn-bot/internal/stories/users"
)

type (
	storage interface {
		GetPayment(ctx context.Context, criteria payments.GetCriteria) (*payments.Payment, error)
		UpdatePayment(ctx context.Context, criteria payments.GetCriteria, params payments.UpdateParams) (*payments.Payment, error)
		GetUser(ctx context.Context, criteria users.GetCriteria) (*users.User, error)
		GetTariff(ctx context.Context, criteria tariffs.GetCriteria) (*tariffs.Tariff, error)
		CompletePayment(ctx context.Context, billID string, completedAt time.Time, subscription subs.Subscription) (*subs.Subscription, error)
	}

	panelClient interface {
		CreateInbound(ctx context.Context, remark string, validity time.Duration) (*panel.Inbound, error)
	}
)
