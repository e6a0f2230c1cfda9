package users

import "time"

type User struct {
	ID         int64
	TelegramID int64
	Username   *string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type GetCriteria struct {
	ID         *int64
	TelegramID *int64
}

type ListCriteria struct {
	Limit  int
	Offset int
}

type UpdateParams struct {
	Username *string
	IsActive *bool
}
