package users

import "context"

// Storage provides database operations for users
type Storage interface {
	CreateUser(ctx context.Context, user User) (*User, error)
	GetUser(ctx context.Context, criteria GetCriteria) (*User, error)
	UpdateUser(ctx context.Context, criteria GetCriteria, params UpdateParams) (*User, error)
	ListUsers(ctx context.Context, criteria ListCriteria) ([]*User, error)
}
