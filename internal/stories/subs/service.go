package subs

import (
	"context"
	"time"

	"github.com/samber/lo"
)

// Service provides business logic for subscription operations
type Service struct {
	storage Storage
	now     func() time.Time
}

// NewService creates a new subscription service
func NewService(storage Storage, now func() time.Time) *Service {
	return &Service{
		storage: storage,
		now:     now,
	}
}

// GetActiveForUser возвращает действующую подписку пользователя, nil если нет.
func (s *Service) GetActiveForUser(ctx context.Context, userID int64) (*Subscription, error) {
	list, err := s.storage.ListSubscriptions(ctx, ListCriteria{
		UserID:   &userID,
		IsActive: lo.ToPtr(true),
		Limit:    1,
	})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	sub := list[0]
	if sub.Expired(s.now()) {
		return nil, nil
	}
	return sub, nil
}

// ListExpired возвращает активные подписки, истекшие к моменту now.
func (s *Service) ListExpired(ctx context.Context, now time.Time) ([]*Subscription, error) {
	return s.storage.ListSubscriptions(ctx, ListCriteria{
		IsActive:      lo.ToPtr(true),
		ExpiredBefore: &now,
		Limit:         500,
	})
}

// Deactivate помечает подписку неактивной.
func (s *Service) Deactivate(ctx context.Context, subscriptionID int64) error {
	_, err := s.storage.UpdateSubscription(ctx, GetCriteria{
		ID: &subscriptionID,
	}, UpdateParams{
		IsActive: lo.ToPtr(false),
	})
	return err
}
