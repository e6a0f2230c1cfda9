package environment

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"altyn-bot/internal/config"
	"altyn-bot/internal/infra/panel"
	"altyn-bot/internal/infra/qiwi"
	"altyn-bot/internal/infra/sqlite3"
	"altyn-bot/internal/infra/telegram"
)

type Clients struct {
	SQLiteDB    *sqlite3.DB
	TelegramBot *telegram.Client
	Panel       *panel.Client
	Qiwi        *qiwi.Client
}

func newClients(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Clients, error) {
	sqliteDB, err := provideSQLiteDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	telegramBot, err := telegram.NewClient(cfg.Telegram.BotToken, logger)
	if err != nil {
		return nil, err
	}

	return &Clients{
		SQLiteDB:    sqliteDB,
		TelegramBot: telegramBot,
		Panel:       providePanelClient(cfg, logger),
		Qiwi:        provideQiwiClient(cfg, logger),
	}, nil
}

func provideSQLiteDB(ctx context.Context, cfg config.Config) (*sqlite3.DB, error) {
	maxLifetimeStr := cfg.DB.MaxLifetime
	if maxLifetimeStr == "" {
		maxLifetimeStr = "5m"
	}
	maxLifetime, err := time.ParseDuration(maxLifetimeStr)
	if err != nil {
		return nil, err
	}

	opts := []sqlite3.Option{
		sqlite3.WithDSN(cfg.DB.Path),
		sqlite3.WithMaxOpenConns(cfg.DB.MaxOpenConns),
		sqlite3.WithMaxIdleConns(cfg.DB.MaxIdleConns),
		sqlite3.WithConnMaxLifetime(maxLifetime),
	}

	return sqlite3.New(ctx, opts...)
}

func providePanelClient(cfg config.Config, logger *slog.Logger) *panel.Client {
	httpClient := &http.Client{Timeout: cfg.Panel.Timeout}
	session := panel.NewSession(httpClient, cfg.Panel.BaseURL, cfg.Panel.Username, cfg.Panel.Password)
	return panel.NewClient(cfg.Panel.BaseURL, session, cfg.Panel.Timeout, logger)
}

func provideQiwiClient(cfg config.Config, logger *slog.Logger) *qiwi.Client {
	return qiwi.NewClient(cfg.Qiwi.SecretKey, cfg.Qiwi.WebhookURL, cfg.Qiwi.BillTTL, cfg.Qiwi.Timeout, logger)
}
