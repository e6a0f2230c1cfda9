package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"altyn-bot/internal/metrics"
	"altyn-bot/internal/stories/payments/confirm"
	"altyn-bot/internal/stories/subs"
)

const testSecret = "test-secret-key"

// Метрики регистрируются в реестре по умолчанию один раз на весь пакет.
var testMetrics = metrics.NewWebhook()

type stubConfirm struct {
	successFn func(ctx context.Context, billID string) (*confirm.Result, error)
	failFn    func(ctx context.Context, billID string) (*confirm.Result, error)
	calls     []string
}

func (s *stubConfirm) ConfirmSuccess(ctx context.Context, billID string) (*confirm.Result, error) {
	s.calls = append(s.calls, "success:"+billID)
	if s.successFn == nil {
		return &confirm.Result{Subscription: &subs.Subscription{ID: 1}}, nil
	}
	return s.successFn(ctx, billID)
}

func (s *stubConfirm) ConfirmFailure(ctx context.Context, billID string) (*confirm.Result, error) {
	s.calls = append(s.calls, "fail:"+billID)
	if s.failFn == nil {
		return &confirm.Result{}, nil
	}
	return s.failFn(ctx, billID)
}

func newTestHandler(stub *stubConfirm) *Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(testSecret, stub, testMetrics, logger)
}

func doRequest(t *testing.T, handlerFn http.HandlerFunc, body, signature string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhook/payment/success", strings.NewReader(body))
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}

	rec := httptest.NewRecorder()
	handlerFn(rec, req)
	return rec
}

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()

	var resp struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return resp.Status, resp.Message
}

func TestSuccessWebhook(t *testing.T) {
	stub := &stubConfirm{}
	handler := newTestHandler(stub)

	body := `{"bill":{"billId":"vpn_abc12345","status":{"value":"PAID"}}}`
	rec := doRequest(t, handler.Success, body, signBody(testSecret, []byte(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	status, message := decodeStatus(t, rec)
	if status != "success" {
		t.Errorf("status = %s, want success", status)
	}
	if message != "payment processed" {
		t.Errorf("message = %q, want payment processed", message)
	}
	if len(stub.calls) != 1 || stub.calls[0] != "success:vpn_abc12345" {
		t.Errorf("confirm calls = %v", stub.calls)
	}
}

func TestSuccessWebhookIdempotent(t *testing.T) {
	stub := &stubConfirm{
		successFn: func(context.Context, string) (*confirm.Result, error) {
			return &confirm.Result{AlreadyProcessed: true}, nil
		},
	}
	handler := newTestHandler(stub)

	body := `{"bill":{"billId":"vpn_abc12345"}}`
	rec := doRequest(t, handler.Success, body, signBody(testSecret, []byte(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", rec.Code)
	}
	status, message := decodeStatus(t, rec)
	if status != "success" || message != "already processed" {
		t.Errorf("response = %s/%s, want success/already processed", status, message)
	}
}

func TestWebhookMissingSignature(t *testing.T) {
	stub := &stubConfirm{}
	handler := newTestHandler(stub)

	rec := doRequest(t, handler.Success, `{"bill":{"billId":"vpn_abc12345"}}`, "")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d, want 401", rec.Code)
	}
	if len(stub.calls) != 0 {
		t.Error("unsigned request must not reach the confirm service")
	}
}

func TestWebhookInvalidSignature(t *testing.T) {
	stub := &stubConfirm{}
	handler := newTestHandler(stub)

	body := `{"bill":{"billId":"vpn_abc12345"}}`
	rec := doRequest(t, handler.Success, body, signBody("wrong-secret", []byte(body)))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d, want 401", rec.Code)
	}
	if len(stub.calls) != 0 {
		t.Error("forged request must not reach the confirm service")
	}
}

func TestWebhookMalformedBody(t *testing.T) {
	stub := &stubConfirm{}
	handler := newTestHandler(stub)

	body := `{"bill": not json`
	rec := doRequest(t, handler.Success, body, signBody(testSecret, []byte(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", rec.Code)
	}
	if len(stub.calls) != 0 {
		t.Error("malformed body must not reach the confirm service")
	}
}

func TestWebhookMissingBillID(t *testing.T) {
	stub := &stubConfirm{}
	handler := newTestHandler(stub)

	body := `{"bill":{"status":{"value":"PAID"}}}`
	rec := doRequest(t, handler.Success, body, signBody(testSecret, []byte(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", rec.Code)
	}
}

func TestWebhookErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "unknown bill", err: confirm.ErrPaymentNotFound, wantCode: http.StatusNotFound},
		{name: "status conflict", err: confirm.ErrConflict, wantCode: http.StatusConflict},
		{name: "panel failure", err: confirm.ErrProvisioning, wantCode: http.StatusBadGateway},
		{name: "missing owner", err: confirm.ErrUserMissing, wantCode: http.StatusInternalServerError},
		{name: "storage failure", err: errors.New("db is down"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubConfirm{
				successFn: func(context.Context, string) (*confirm.Result, error) {
					return nil, errors.Wrap(tt.err, "confirm")
				},
			}
			handler := newTestHandler(stub)

			body := `{"bill":{"billId":"vpn_abc12345"}}`
			rec := doRequest(t, handler.Success, body, signBody(testSecret, []byte(body)))

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			status, message := decodeStatus(t, rec)
			if status != "error" {
				t.Errorf("status = %s, want error", status)
			}
			if message == "" {
				t.Error("message must always be present")
			}
		})
	}
}

func TestFailWebhook(t *testing.T) {
	stub := &stubConfirm{}
	handler := newTestHandler(stub)

	body := `{"bill":{"billId":"vpn_abc12345","status":{"value":"EXPIRED"}}}`
	rec := doRequest(t, handler.Fail, body, signBody(testSecret, []byte(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", rec.Code)
	}
	if len(stub.calls) != 1 || stub.calls[0] != "fail:vpn_abc12345" {
		t.Errorf("confirm calls = %v", stub.calls)
	}
}

func TestFailWebhookInvalidSignature(t *testing.T) {
	stub := &stubConfirm{}
	handler := newTestHandler(stub)

	body := `{"bill":{"billId":"vpn_abc12345"}}`
	rec := doRequest(t, handler.Fail, body, signBody("wrong-secret", []byte(body)))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d, want 401", rec.Code)
	}
	if len(stub.calls) != 0 {
		t.Error("forged request must not reach the confirm service")
	}
}

func TestParseBillIDFlat(t *testing.T) {
	billID, err := parseBillID([]byte(`{"billId":"vpn_ff00aa11"}`))
	if err != nil {
		t.Fatalf("parseBillID: %v", err)
	}
	if billID != "vpn_ff00aa11" {
		t.Errorf("billID = %s, want vpn_ff00aa11", billID)
	}
}
