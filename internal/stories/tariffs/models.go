package tariffs

import "time"

type Tariff struct {
	ID           int64
	Name         string
	Price        float64
	DurationDays int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type GetCriteria struct {
	ID *int64
}

type ListCriteria struct {
	IsActive *bool
	Limit    int
	Offset   int
}

type UpdateParams struct {
	Name         *string
	Price        *float64
	DurationDays *int
	IsActive     *bool
}
