package environment

import (
	"context"
	"log/slog"
	"net/http"

	"altyn-bot/internal/config"
)

type Servers struct {
	HTTP struct {
		Observability *http.Server
		API           *http.Server
	}
}

func newServers(ctx context.Context, cfg config.Config, logger *slog.Logger, services *Services) *Servers {
	var servers Servers

	// Сервер вебхуков биллинга
	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook/payment/success", services.WebhookHandler.Success)
	mux.HandleFunc("POST /webhook/payment/fail", services.WebhookHandler.Fail)

	servers.HTTP.API = &http.Server{
		Handler:           mux,
		Addr:              cfg.Webhook.ADDR(),
		ReadTimeout:       cfg.Webhook.ReadTimeout,
		WriteTimeout:      cfg.Webhook.WriteTimeout,
		IdleTimeout:       cfg.Webhook.IdleTimeout,
		ReadHeaderTimeout: cfg.Webhook.ReadTimeout,
	}
	servers.HTTP.Observability = initObservability(ctx, logger.WithGroup("http"), cfg)

	return &servers
}
