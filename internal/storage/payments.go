package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"altyn-bot/internal/infra/sqlite3"
	"altyn-bot/internal/stories/payments"
	"altyn-bot/internal/stories/subs"
)

const paymentsTable = "payments"

var paymentRowFields = fields(paymentRow{})

type paymentRow struct {
	ID          int64      `db:"id"`
	UserID      int64      `db:"user_id"`
	TariffID    *int64     `db:"tariff_id"`
	Amount      float64    `db:"amount"`
	Currency    string     `db:"currency"`
	BillID      string     `db:"bill_id"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	CompletedAt *time.Time `db:"completed_at"`
}

func (p paymentRow) ToModel() *payments.Payment {
	return &payments.Payment{
		ID:          p.ID,
		UserID:      p.UserID,
		TariffID:    p.TariffID,
		Amount:      p.Amount,
		Currency:    p.Currency,
		BillID:      p.BillID,
		Status:      payments.Status(p.Status),
		CreatedAt:   p.CreatedAt,
		CompletedAt: p.CompletedAt,
	}
}

func (s *storageImpl) CreatePayment(ctx context.Context, paymentEntity payments.Payment) (*payments.Payment, error) {
	params := map[string]interface{}{
		"user_id":    paymentEntity.UserID,
		"tariff_id":  paymentEntity.TariffID,
		"amount":     paymentEntity.Amount,
		"currency":   paymentEntity.Currency,
		"bill_id":    paymentEntity.BillID,
		"status":     string(paymentEntity.Status),
		"created_at": s.now(),
	}

	q, args, err := s.stmtBuilder().
		Insert(paymentsTable).
		SetMap(params).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.ExecContext: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("result.LastInsertId: %w", err)
	}

	return s.GetPayment(ctx, payments.GetCriteria{ID: &id})
}

func (s *storageImpl) GetPayment(ctx context.Context, criteria payments.GetCriteria) (*payments.Payment, error) {
	query := s.stmtBuilder().
		Select(paymentRowFields).
		From(paymentsTable).
		Limit(1)

	if criteria.ID != nil {
		query = query.Where(sq.Eq{"id": *criteria.ID})
	}
	if criteria.BillID != nil {
		query = query.Where(sq.Eq{"bill_id": *criteria.BillID})
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var p paymentRow
	err = s.db.GetContext(ctx, &p, q, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("db.GetContext: %w", err)
	}

	return p.ToModel(), nil
}

func (s *storageImpl) UpdatePayment(ctx context.Context, criteria payments.GetCriteria, params payments.UpdateParams) (*payments.Payment, error) {
	query := s.stmtBuilder().Update(paymentsTable)

	if criteria.ID != nil {
		query = query.Where(sq.Eq{"id": *criteria.ID})
	}
	if criteria.BillID != nil {
		query = query.Where(sq.Eq{"bill_id": *criteria.BillID})
	}

	if params.Status != nil {
		query = query.Set("status", string(*params.Status))
	}
	if params.CompletedAt != nil {
		query = query.Set("completed_at", *params.CompletedAt)
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	_, err = s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.ExecContext: %w", err)
	}

	return s.GetPayment(ctx, criteria)
}

func (s *storageImpl) ListPayments(ctx context.Context, criteria payments.ListCriteria) ([]*payments.Payment, error) {
	query := s.stmtBuilder().
		Select(paymentRowFields).
		From(paymentsTable)

	if criteria.UserID != nil {
		query = query.Where(sq.Eq{"user_id": *criteria.UserID})
	}
	if criteria.Status != nil {
		query = query.Where(sq.Eq{"status": string(*criteria.Status)})
	}

	if criteria.Limit > 0 {
		query = query.Limit(uint64(criteria.Limit))
	}
	if criteria.Offset > 0 {
		query = query.Offset(uint64(criteria.Offset))
	}

	query = query.OrderBy("created_at DESC")

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var rows []paymentRow
	err = s.db.SelectContext(ctx, &rows, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.SelectContext: %w", err)
	}

	var result []*payments.Payment
	for _, row := range rows {
		result = append(result, row.ToModel())
	}

	return result, nil
}

// CompletePayment атомарно завершает платёж и создаёт подписку.
// Условие status='pending' в UPDATE — защита от двойной доставки вебхука:
// повторное завершение не проходит и возвращает payments.ErrNotPending.
func (s *storageImpl) CompletePayment(ctx context.Context, billID string, completedAt time.Time, subscription subs.Subscription) (*subs.Subscription, error) {
	var subID int64

	err := sqlite3.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		q, args, err := s.stmtBuilder().
			Update(paymentsTable).
			Set("status", string(payments.StatusCompleted)).
			Set("completed_at", completedAt).
			Where(sq.Eq{"bill_id": billID}).
			Where(sq.Eq{"status": string(payments.StatusPending)}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build sql query: %w", err)
		}

		result, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return fmt.Errorf("tx.ExecContext: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("result.RowsAffected: %w", err)
		}
		if affected == 0 {
			return payments.ErrNotPending
		}

		now := s.now()
		q, args, err = s.stmtBuilder().
			Insert(subscriptionsTable).
			SetMap(map[string]interface{}{
				"user_id":    subscription.UserID,
				"vpn_key_id": subscription.VPNKeyID,
				"start_date": subscription.StartDate,
				"end_date":   subscription.EndDate,
				"is_active":  subscription.IsActive,
				"created_at": now,
				"updated_at": now,
			}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build sql query: %w", err)
		}

		insertRes, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return fmt.Errorf("tx.ExecContext: %w", err)
		}

		subID, err = insertRes.LastInsertId()
		if err != nil {
			return fmt.Errorf("result.LastInsertId: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetSubscription(ctx, subs.GetCriteria{ID: &subID})
}
