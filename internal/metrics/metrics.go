package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Webhook — метрики обработки вебхуков биллинга.
type Webhook struct {
	requests       *prometheus.CounterVec
	paymentsStatus *prometheus.CounterVec
}

// NewWebhook регистрирует метрики в реестре по умолчанию,
// который отдаёт promhttp на observability-сервере.
func NewWebhook() *Webhook {
	return &Webhook{
		requests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_requests_total",
				Help: "The total number of billing webhook requests by outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		paymentsStatus: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_status_total",
				Help: "The total number of payments moved to a terminal status",
			},
			[]string{"status"},
		),
	}
}

// IncRequest увеличивает счётчик запросов вебхука.
func (m *Webhook) IncRequest(endpoint, outcome string) {
	m.requests.WithLabelValues(endpoint, outcome).Inc()
}

// IncPaymentCompleted увеличивает счётчик завершённых платежей.
func (m *Webhook) IncPaymentCompleted() {
	m.paymentsStatus.WithLabelValues("completed").Inc()
}

// IncPaymentFailed увеличивает счётчик неуспешных платежей.
func (m *Webhook) IncPaymentFailed() {
	m.paymentsStatus.WithLabelValues("failed").Inc()
}
