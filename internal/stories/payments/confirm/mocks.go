package confirm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"altyn-bot/internal/infra/panel"
	"altyn-bot/internal/stories/payments"
	"altyn-bot/internal/stories/subs"
	"altyn-bot/internal/stories/tariffs"
	"altyn-bot/internal/stories/users"
)

// MockStorage — in-memory хранилище для тестов подтверждения.
type MockStorage struct {
	mu            sync.Mutex
	Payments      map[string]*payments.Payment
	Users         map[int64]*users.User
	Tariffs       map[int64]*tariffs.Tariff
	Subscriptions []*subs.Subscription
}

func NewMockStorage() *MockStorage {
	return &MockStorage{
		Payments: make(map[string]*payments.Payment),
		Users:    make(map[int64]*users.User),
		Tariffs:  make(map[int64]*tariffs.Tariff),
	}
}

func (m *MockStorage) GetPayment(_ context.Context, criteria payments.GetCriteria) (*payments.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if criteria.BillID != nil {
		if p, ok := m.Payments[*criteria.BillID]; ok {
			cp := *p
			return &cp, nil
		}
		return nil, nil
	}
	for _, p := range m.Payments {
		if criteria.ID != nil && p.ID == *criteria.ID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockStorage) UpdatePayment(_ context.Context, criteria payments.GetCriteria, params payments.UpdateParams) (*payments.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if criteria.BillID == nil {
		return nil, fmt.Errorf("mock: bill id required")
	}
	p, ok := m.Payments[*criteria.BillID]
	if !ok {
		return nil, nil
	}
	if params.Status != nil {
		p.Status = *params.Status
	}
	if params.CompletedAt != nil {
		p.CompletedAt = params.CompletedAt
	}
	cp := *p
	return &cp, nil
}

func (m *MockStorage) GetUser(_ context.Context, criteria users.GetCriteria) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if criteria.ID != nil {
		if u, ok := m.Users[*criteria.ID]; ok {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockStorage) GetTariff(_ context.Context, criteria tariffs.GetCriteria) (*tariffs.Tariff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if criteria.ID != nil {
		if t, ok := m.Tariffs[*criteria.ID]; ok {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockStorage) CompletePayment(_ context.Context, billID string, completedAt time.Time, subscription subs.Subscription) (*subs.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.Payments[billID]
	if !ok || p.Status != payments.StatusPending {
		return nil, payments.ErrNotPending
	}

	p.Status = payments.StatusCompleted
	p.CompletedAt = &completedAt

	created := subscription
	created.ID = int64(len(m.Subscriptions) + 1)
	m.Subscriptions = append(m.Subscriptions, &created)

	cp := created
	return &cp, nil
}

// MockPanel — панель, выдающая ключи с возрастающими ID.
type MockPanel struct {
	mu      sync.Mutex
	Calls   int
	Remarks []string
	Err     error
}

func (m *MockPanel) CreateInbound(_ context.Context, remark string, _ time.Duration) (*panel.Inbound, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	m.Calls++
	m.Remarks = append(m.Remarks, remark)
	return &panel.Inbound{
		ID:     int64(1000 + m.Calls),
		Remark: remark,
		Enable: true,
	}, nil
}
