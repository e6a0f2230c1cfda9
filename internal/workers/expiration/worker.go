package expiration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Worker деактивирует истекшие подписки и отзывает их ключи на панели.
type Worker struct {
	subService subscriptionService
	panel      panelClient
	logger     *slog.Logger
	cron       *cron.Cron
}

func NewWorker(subService subscriptionService, panel panelClient, logger *slog.Logger) *Worker {
	return &Worker{
		subService: subService,
		panel:      panel,
		logger:     logger,
		cron:       cron.New(),
	}
}

// Name returns the worker name
func (w *Worker) Name() string {
	return "expiration"
}

// Start starts the expiration worker
func (w *Worker) Start() error {
	// Каждый час, в 5 минут
	_, err := w.cron.AddFunc("5 * * * *", func() {
		ctx := context.Background()
		if err := w.run(ctx); err != nil {
			w.logger.Error("Expiration worker failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule expiration worker: %w", err)
	}

	w.cron.Start()
	return nil
}

// Stop stops the worker
func (w *Worker) Stop() {
	w.cron.Stop()
}

func (w *Worker) run(ctx context.Context) error {
	expired, err := w.subService.ListExpired(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("list expired subscriptions: %w", err)
	}

	if len(expired) == 0 {
		return nil
	}

	w.logger.Info("Found expired subscriptions", "count", len(expired))

	for _, sub := range expired {
		// Сначала отзыв ключа: пока подписка активна, следующий запуск
		// повторит попытку, если панель была недоступна.
		if err := w.panel.DeleteInbound(ctx, sub.VPNKeyID); err != nil {
			w.logger.Error("Failed to delete inbound for expired subscription",
				"subscription_id", sub.ID,
				"vpn_key_id", sub.VPNKeyID,
				"error", err)
			continue
		}

		if err := w.subService.Deactivate(ctx, sub.ID); err != nil {
			w.logger.Error("Failed to deactivate subscription",
				"subscription_id", sub.ID,
				"error", err)
			continue
		}

		w.logger.Info("Subscription expired and key revoked",
			"subscription_id", sub.ID,
			"user_id", sub.UserID,
			"vpn_key_id", sub.VPNKeyID)
	}

	return nil
}
