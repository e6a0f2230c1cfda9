package webhook

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-faster/jx"
	"github.com/pkg/errors"

	"altyn-bot/internal/metrics"
	"altyn-bot/internal/stories/payments/confirm"
)

// Тело уведомления ограничено, чтобы не буферизовать произвольный ввод.
const maxBodySize = 64 << 10

type confirmService interface {
	ConfirmSuccess(ctx context.Context, billID string) (*confirm.Result, error)
	ConfirmFailure(ctx context.Context, billID string) (*confirm.Result, error)
}

// Handler принимает вебхуки биллинга об исходе оплаты счетов.
type Handler struct {
	secret  []byte
	confirm confirmService
	metrics *metrics.Webhook
	logger  *slog.Logger
}

func NewHandler(secret string, confirm confirmService, metrics *metrics.Webhook, logger *slog.Logger) *Handler {
	return &Handler{
		secret:  []byte(secret),
		confirm: confirm,
		metrics: metrics,
		logger:  logger,
	}
}

// Success — уведомление об успешной оплате.
func (h *Handler) Success(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "success", h.confirm.ConfirmSuccess)
}

// Fail — уведомление о неуспешной оплате.
func (h *Handler) Fail(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "fail", h.confirm.ConfirmFailure)
}

func (h *Handler) handle(
	w http.ResponseWriter,
	r *http.Request,
	endpoint string,
	confirmFn func(ctx context.Context, billID string) (*confirm.Result, error),
) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		h.metrics.IncRequest(endpoint, "bad_request")
		h.respond(w, http.StatusBadRequest, "error", "failed to read body")
		return
	}

	// Подпись проверяется до любого разбора тела.
	if !verifySignature(h.secret, body, r.Header.Get(SignatureHeader)) {
		h.metrics.IncRequest(endpoint, "unauthorized")
		h.logger.Warn("Webhook signature verification failed", "endpoint", endpoint)
		h.respond(w, http.StatusUnauthorized, "error", "invalid signature")
		return
	}

	billID, err := parseBillID(body)
	if err != nil {
		h.metrics.IncRequest(endpoint, "bad_request")
		h.logger.Warn("Malformed webhook body", "endpoint", endpoint, "error", err)
		h.respond(w, http.StatusBadRequest, "error", "malformed body")
		return
	}

	result, err := confirmFn(r.Context(), billID)
	if err != nil {
		h.respondError(w, endpoint, billID, err)
		return
	}

	h.metrics.IncRequest(endpoint, "ok")
	if result.AlreadyProcessed {
		h.respond(w, http.StatusOK, "success", "already processed")
		return
	}

	switch endpoint {
	case "success":
		h.metrics.IncPaymentCompleted()
	case "fail":
		h.metrics.IncPaymentFailed()
	}

	h.respond(w, http.StatusOK, "success", "payment processed")
}

func (h *Handler) respondError(w http.ResponseWriter, endpoint, billID string, err error) {
	var (
		code    int
		outcome string
	)
	switch {
	case errors.Is(err, confirm.ErrPaymentNotFound):
		code, outcome = http.StatusNotFound, "not_found"
	case errors.Is(err, confirm.ErrConflict):
		code, outcome = http.StatusConflict, "conflict"
	case errors.Is(err, confirm.ErrProvisioning):
		code, outcome = http.StatusBadGateway, "provisioning_error"
	default:
		code, outcome = http.StatusInternalServerError, "internal_error"
	}

	h.metrics.IncRequest(endpoint, outcome)
	h.logger.Error("Webhook processing failed",
		"endpoint", endpoint,
		"bill_id", billID,
		"outcome", outcome,
		"error", err,
	)
	h.respond(w, code, "error", outcome)
}

// respond пишет тело в формате провайдера: {"status": "success"|"error",
// "message": "..."}, оба поля присутствуют всегда.
func (h *Handler) respond(w http.ResponseWriter, code int, status, message string) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("status")
	e.Str(status)
	e.FieldStart("message")
	e.Str(message)
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(e.Bytes())
}

// parseBillID достаёт идентификатор счёта из тела уведомления.
// Провайдер кладёт его в объект bill, плоский billId тоже принимается.
func parseBillID(body []byte) (string, error) {
	var billID string

	d := jx.DecodeBytes(body)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "bill":
			return d.Obj(func(d *jx.Decoder, key string) error {
				if key != "billId" {
					return d.Skip()
				}
				v, err := d.Str()
				if err != nil {
					return err
				}
				billID = v
				return nil
			})
		case "billId":
			v, err := d.Str()
			if err != nil {
				return err
			}
			billID = v
			return nil
		default:
			return d.Skip()
		}
	}); err != nil {
		return "", errors.Wrap(err, "decode webhook body")
	}

	if billID == "" {
		return "", errors.New("billId is missing")
	}
	return billID, nil
}
