package expiration

import (
	"context"
	"time"

	"altyn-bot/internal/stories/subs"
)

type (
	subscriptionService interface {
		ListExpired(ctx context.Context, now time.Time) ([]*subs.Subscription, error)
		Deactivate(ctx context.Context, subscriptionID int64) error
	}

	panelClient interface {
		DeleteInbound(ctx context.Context, id string) error
	}
)
