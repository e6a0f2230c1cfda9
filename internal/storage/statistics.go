package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"altyn-bot/internal/stories/payments"
)

// Stats — сводка для админ-отчёта /stats.
type Stats struct {
	TotalUsers          int64
	ActiveSubscriptions int64
	TotalPayments       int64
	TotalRevenue        float64
}

func (s *storageImpl) GetStats(ctx context.Context, now time.Time) (*Stats, error) {
	var stats Stats

	if err := s.countInto(ctx, &stats.TotalUsers, s.stmtBuilder().
		Select("COUNT(*)").
		From(usersTable)); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	if err := s.countInto(ctx, &stats.ActiveSubscriptions, s.stmtBuilder().
		Select("COUNT(*)").
		From(subscriptionsTable).
		Where(sq.Eq{"is_active": true}).
		Where(sq.Gt{"end_date": now})); err != nil {
		return nil, fmt.Errorf("count active subscriptions: %w", err)
	}

	if err := s.countInto(ctx, &stats.TotalPayments, s.stmtBuilder().
		Select("COUNT(*)").
		From(paymentsTable)); err != nil {
		return nil, fmt.Errorf("count payments: %w", err)
	}

	q, args, err := s.stmtBuilder().
		Select("COALESCE(SUM(amount), 0)").
		From(paymentsTable).
		Where(sq.Eq{"status": string(payments.StatusCompleted)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}
	if err := s.db.GetContext(ctx, &stats.TotalRevenue, q, args...); err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}

	return &stats, nil
}

func (s *storageImpl) countInto(ctx context.Context, dst *int64, query sq.SelectBuilder) error {
	q, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build sql query: %w", err)
	}
	if err := s.db.GetContext(ctx, dst, q, args...); err != nil {
		return fmt.Errorf("db.GetContext: %w", err)
	}
	return nil
}
