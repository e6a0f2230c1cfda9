package subs

import "time"

// Subscription — выданный доступ к VPN. VPNKeyID приходит из панели
// и указывает на inbound, который она учитывает.
type Subscription struct {
	ID        int64
	UserID    int64
	VPNKeyID  string
	StartDate time.Time
	EndDate   time.Time
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired сообщает, истекла ли подписка к моменту now.
// Истечение определяется сравнением дат, записи не удаляются.
func (s Subscription) Expired(now time.Time) bool {
	return !now.Before(s.EndDate)
}

type GetCriteria struct {
	ID       *int64
	VPNKeyID *string
}

type ListCriteria struct {
	UserID        *int64
	IsActive      *bool
	ExpiredBefore *time.Time
	Limit         int
	Offset        int
}

type UpdateParams struct {
	IsActive *bool
}
