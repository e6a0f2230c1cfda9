package users

import (
	"context"
)

// Service provides business logic for user operations
type Service struct {
	storage Storage
}

// NewService creates a new user service
func NewService(storage Storage) *Service {
	return &Service{
		storage: storage,
	}
}

// GetOrCreateByTelegramID получает пользователя по Telegram ID или создает нового.
// Пользователи никогда не удаляются, только деактивируются.
func (s *Service) GetOrCreateByTelegramID(ctx context.Context, telegramID int64, username string) (*User, error) {
	existing, err := s.storage.GetUser(ctx, GetCriteria{
		TelegramID: &telegramID,
	})
	if err != nil {
		return nil, err
	}

	if existing != nil {
		return existing, nil
	}

	newUser := User{
		TelegramID: telegramID,
		IsActive:   true,
	}
	if username != "" {
		newUser.Username = &username
	}

	created, err := s.storage.CreateUser(ctx, newUser)
	if err != nil {
		return nil, err
	}

	return created, nil
}

// GetByID возвращает пользователя по внутреннему ID, nil если не найден.
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.storage.GetUser(ctx, GetCriteria{ID: &id})
}

// List возвращает пользователей для админ-отчёта.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*User, error) {
	return s.storage.ListUsers(ctx, ListCriteria{Limit: limit, Offset: offset})
}
