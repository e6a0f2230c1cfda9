package payments

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Payment — одна попытка покупки. BillID уникален и служит ключом
// корреляции между вебхуком биллинга и локальной записью.
type Payment struct {
	ID          int64
	UserID      int64
	TariffID    *int64
	Amount      float64
	Currency    string
	BillID      string
	Status      Status
	CreatedAt   time.Time
	CompletedAt *time.Time
}

type GetCriteria struct {
	ID     *int64
	BillID *string
}

type ListCriteria struct {
	UserID *int64
	Status *Status
	Limit  int
	Offset int
}

type UpdateParams struct {
	Status      *Status
	CompletedAt *time.Time
}

// Bill — счёт, выставленный биллинг-провайдером.
type Bill struct {
	BillID string
	Status string
	PayURL string
}

// Статусы счёта на стороне провайдера.
const (
	BillStatusWaiting  = "WAITING"
	BillStatusPaid     = "PAID"
	BillStatusRejected = "REJECTED"
	BillStatusExpired  = "EXPIRED"
)
