package subs

import "context"

// Storage provides database operations for subscriptions
type Storage interface {
	CreateSubscription(ctx context.Context, subscription Subscription) (*Subscription, error)
	GetSubscription(ctx context.Context, criteria GetCriteria) (*Subscription, error)
	UpdateSubscription(ctx context.Context, criteria GetCriteria, params UpdateParams) (*Subscription, error)
	ListSubscriptions(ctx context.Context, criteria ListCriteria) ([]*Subscription, error)
}
