package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"altyn-bot/internal/stories/tariffs"
)

const tariffsTable = "tariffs"

var tariffRowFields = fields(tariffRow{})

type tariffRow struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	Price        float64   `db:"price"`
	DurationDays int       `db:"duration_days"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (t tariffRow) ToModel() *tariffs.Tariff {
	return &tariffs.Tariff{
		ID:           t.ID,
		Name:         t.Name,
		Price:        t.Price,
		DurationDays: t.DurationDays,
		IsActive:     t.IsActive,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func (s *storageImpl) CreateTariff(ctx context.Context, tariff tariffs.Tariff) (*tariffs.Tariff, error) {
	params := map[string]interface{}{
		"name":          tariff.Name,
		"price":         tariff.Price,
		"duration_days": tariff.DurationDays,
		"is_active":     tariff.IsActive,
		"created_at":    s.now(),
		"updated_at":    s.now(),
	}

	q, args, err := s.stmtBuilder().
		Insert(tariffsTable).
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

	return s.GetTariff(ctx, tariffs.GetCriteria{ID: &id})
}

func (s *storageImpl) GetTariff(ctx context.Context, criteria tariffs.GetCriteria) (*tariffs.Tariff, error) {
	query := s.stmtBuilder().
		Select(tariffRowFields).
		From(tariffsTable).
		Limit(1)

	if criteria.ID != nil {
		query = query.Where(sq.Eq{"id": *criteria.ID})
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var t tariffRow
	err = s.db.GetContext(ctx, &t, q, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("db.GetContext: %w", err)
	}

	return t.ToModel(), nil
}

func (s *storageImpl) UpdateTariff(ctx context.Context, criteria tariffs.GetCriteria, params tariffs.UpdateParams) (*tariffs.Tariff, error) {
	query := s.stmtBuilder().
		Update(tariffsTable).
		Set("updated_at", s.now())

	if criteria.ID != nil {
		query = query.Where(sq.Eq{"id": *criteria.ID})
	}

	if params.Name != nil {
		query = query.Set("name", *params.Name)
	}
	if params.Price != nil {
		query = query.Set("price", *params.Price)
	}
	if params.DurationDays != nil {
		query = query.Set("duration_days", *params.DurationDays)
	}
	if params.IsActive != nil {
		query = query.Set("is_active", *params.IsActive)
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	_, err = s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.ExecContext: %w", err)
	}

	return s.GetTariff(ctx, criteria)
}

func (s *storageImpl) ListTariffs(ctx context.Context, criteria tariffs.ListCriteria) ([]*tariffs.Tariff, error) {
	query := s.stmtBuilder().
		Select(tariffRowFields).
		From(tariffsTable)

	if criteria.IsActive != nil {
		query = query.Where(sq.Eq{"is_active": *criteria.IsActive})
	}

	if criteria.Limit > 0 {
		query = query.Limit(uint64(criteria.Limit))
	}
	if criteria.Offset > 0 {
		query = query.Offset(uint64(criteria.Offset))
	}

	query = query.OrderBy("price ASC")

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var rows []tariffRow
	err = s.db.SelectContext(ctx, &rows, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.SelectContext: %w", err)
	}

	var result []*tariffs.Tariff
	for _, row := range rows {
		result = append(result, row.ToModel())
	}

	return result, nil
}
