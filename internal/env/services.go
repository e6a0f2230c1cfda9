package environment

import (
	"context"
	"log/slog"
	"time"

	"altyn-bot/internal/config"
	"altyn-bot/internal/localization"
	"altyn-bot/internal/metrics"
	"altyn-bot/internal/storage"
	"altyn-bot/internal/stories/payments"
	"altyn-bot/internal/stories/payments/confirm"
	"altyn-bot/internal/stories/subs"
	"altyn-bot/internal/stories/tariffs"
	"altyn-bot/internal/stories/users"
	"altyn-bot/internal/telegram"
	"altyn-bot/internal/telegram/cmds"
	"altyn-bot/internal/telegram/flows/buysub"
	"altyn-bot/internal/telegram/states"
	"altyn-bot/internal/webhook"
	"altyn-bot/internal/workers"
	"altyn-bot/internal/workers/expiration"

	"github.com/pkg/errors"
)

type Services struct {
	TelegramRouter *telegram.Router
	WebhookHandler *webhook.Handler
	Workers        *workers.Manager
}

func newServices(ctx context.Context, clients *Clients, cfg *config.Config, logger *slog.Logger) (*Services, error) {
	var s Services

	if clients.TelegramBot == nil {
		return nil, errors.New("telegram bot не инициализирован")
	}

	storageImpl := storage.New(clients.SQLiteDB.DB)
	if err := storageImpl.Migrate(ctx); err != nil {
		return nil, errors.Wrap(err, "migrate storage")
	}

	userService := users.NewService(storageImpl)
	tariffService := tariffs.NewService(storageImpl)
	subsService := subs.NewService(storageImpl, func() time.Time { return time.Now().UTC() })
	paymentService := payments.NewService(storageImpl, clients.Qiwi, logger)

	confirmService := confirm.NewService(
		storageImpl,
		clients.Panel,
		cfg.Subscription.DefaultDays,
		func() time.Time { return time.Now().UTC() },
		logger,
	)

	webhookMetrics := metrics.NewWebhook()
	s.WebhookHandler = webhook.NewHandler(cfg.Qiwi.SecretKey, confirmService, webhookMetrics, logger)

	l10n, err := localization.NewService()
	if err != nil {
		return nil, errors.Wrap(err, "localization")
	}

	stateManager := states.NewManager()
	adminChecker := telegram.NewAdminChecker(cfg.Telegram.AdminIDs)

	buySubHandler := buysub.NewHandler(
		clients.TelegramBot,
		stateManager,
		tariffService,
		paymentService,
		subsService,
		l10n,
		logger,
	)

	s.TelegramRouter = telegram.NewRouter(
		clients.TelegramBot,
		stateManager,
		userService,
		adminChecker,
		buySubHandler,
		cmds.NewStatusCommand(clients.TelegramBot, subsService, clients.Panel),
		cmds.NewStatsCommand(clients.TelegramBot, storageImpl),
		cmds.NewPaymentsCommand(clients.TelegramBot, paymentService),
		cmds.NewUsersCommand(clients.TelegramBot, userService),
		cmds.NewTariffsCommand(clients.TelegramBot, tariffService),
	)

	s.Workers = workers.NewManager(logger,
		expiration.NewWorker(subsService, clients.Panel, logger),
	)

	return &s, nil
}
