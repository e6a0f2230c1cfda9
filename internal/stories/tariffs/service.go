package tariffs

import (
	"context"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Service provides business logic for tariff operations
type Service struct {
	storage Storage
}

// NewService creates a new tariff service
func NewService(storage Storage) *Service {
	return &Service{
		storage: storage,
	}
}

func (s *Service) CreateTariff(ctx context.Context, tariff Tariff) (*Tariff, error) {
	if tariff.Price <= 0 {
		return nil, errors.New("tariff price must be positive")
	}
	if tariff.DurationDays <= 0 {
		return nil, errors.New("tariff duration must be positive")
	}

	tariff.IsActive = true
	return s.storage.CreateTariff(ctx, tariff)
}

func (s *Service) GetTariff(ctx context.Context, tariffID int64) (*Tariff, error) {
	return s.storage.GetTariff(ctx, GetCriteria{ID: lo.ToPtr(tariffID)})
}

// GetActiveTariffs возвращает тарифы, доступные к покупке.
func (s *Service) GetActiveTariffs(ctx context.Context) ([]*Tariff, error) {
	return s.storage.ListTariffs(ctx, ListCriteria{
		IsActive: lo.ToPtr(true),
		Limit:    100,
	})
}

func (s *Service) ListTariffs(ctx context.Context) ([]*Tariff, error) {
	return s.storage.ListTariffs(ctx, ListCriteria{Limit: 100})
}

// UpdateTariffStatus включает или выключает тариф из продажи.
func (s *Service) UpdateTariffStatus(ctx context.Context, tariffID int64, isActive bool) (*Tariff, error) {
	return s.storage.UpdateTariff(ctx, GetCriteria{
		ID: lo.ToPtr(tariffID),
	}, UpdateParams{
		IsActive: lo.ToPtr(isActive),
	})
}
