package storage

import (
	"context"
	"fmt"
)

// Migrate creates all necessary tables
func (s *storageImpl) Migrate(ctx context.Context) error {
	migrations := []struct {
		name string
		sql  string
	}{
		{
			name: "create_users",
			sql: `CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				telegram_id INTEGER NOT NULL UNIQUE,
				username TEXT,
				is_active INTEGER NOT NULL DEFAULT 1,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
		},
		{
			name: "create_tariffs",
			sql: `CREATE TABLE IF NOT EXISTS tariffs (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				price REAL NOT NULL,
				duration_days INTEGER NOT NULL,
				is_active INTEGER NOT NULL DEFAULT 1,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
		},
		{
			name: "create_payments",
			sql: `CREATE TABLE IF NOT EXISTS payments (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL,
				tariff_id INTEGER,
				amount REAL NOT NULL,
				currency TEXT NOT NULL,
				bill_id TEXT NOT NULL UNIQUE,
				status TEXT NOT NULL,
				created_at DATETIME NOT NULL,
				completed_at DATETIME,
				FOREIGN KEY (user_id) REFERENCES users(id),
				FOREIGN KEY (tariff_id) REFERENCES tariffs(id)
			)`,
		},
		{
			name: "create_subscriptions",
			sql: `CREATE TABLE IF NOT EXISTS subscriptions (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL,
				vpn_key_id TEXT NOT NULL,
				start_date DATETIME NOT NULL,
				end_date DATETIME NOT NULL,
				is_active INTEGER NOT NULL DEFAULT 1,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				FOREIGN KEY (user_id) REFERENCES users(id)
			)`,
		},
		{
			name: "create_payments_bill_id_idx",
			sql:  `CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_bill_id ON payments(bill_id)`,
		},
		{
			name: "create_subscriptions_user_idx",
			sql:  `CREATE INDEX IF NOT EXISTS idx_subscriptions_user_id ON subscriptions(user_id)`,
		},
	}

	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("migration %s: %w", m.name, err)
		}
	}

	return nil
}
