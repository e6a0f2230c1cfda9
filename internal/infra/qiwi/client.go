package qiwi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"altyn-bot/internal/stories/payments"
)

const defaultBaseURL = "https://api.qiwi.com/partner/bill/v1"

// Client — клиент bills API биллинг-провайдера.
type Client struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
	webhookURL string
	billTTL    time.Duration
	logger     *slog.Logger
}

type Option func(*Client)

// WithBaseURL переопределяет адрес API (для тестов и песочницы).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

func NewClient(secretKey, webhookURL string, billTTL, timeout time.Duration, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		secretKey:  secretKey,
		webhookURL: webhookURL,
		billTTL:    billTTL,
		logger:     logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type billResponse struct {
	BillID string `json:"billId"`
	Status struct {
		Value string `json:"value"`
	} `json:"status"`
	PayURL string `json:"payUrl"`
}

func (r billResponse) toModel() *payments.Bill {
	return &payments.Bill{
		BillID: r.BillID,
		Status: r.Status.Value,
		PayURL: r.PayURL,
	}
}

// CreateBill выставляет счёт. billID попадает в customer.account и
// возвращается провайдером в вебхуке как ключ корреляции.
func (c *Client) CreateBill(ctx context.Context, billID string, amount float64, currency, comment string) (*payments.Bill, error) {
	payload := map[string]interface{}{
		"amount": map[string]string{
			"currency": currency,
			"value":    fmt.Sprintf("%.2f", amount),
		},
		"expirationDateTime": time.Now().Add(c.billTTL).Format(time.RFC3339),
		"customer": map[string]interface{}{
			"account": billID,
		},
		"comment":    comment,
		"successUrl": c.webhookURL + "/success",
		"failUrl":    c.webhookURL + "/fail",
	}

	var resp billResponse
	if err := c.do(ctx, http.MethodPut, "/bills/"+billID, payload, &resp); err != nil {
		return nil, err
	}

	c.logger.Info("Bill created", "bill_id", billID, "amount", amount, "currency", currency)
	return resp.toModel(), nil
}

// BillStatus возвращает текущий статус счёта у провайдера.
func (c *Client) BillStatus(ctx context.Context, billID string) (*payments.Bill, error) {
	var resp billResponse
	if err := c.do(ctx, http.MethodGet, "/bills/"+billID, nil, &resp); err != nil {
		return nil, err
	}
	return resp.toModel(), nil
}

// CancelBill отклоняет неоплаченный счёт.
func (c *Client) CancelBill(ctx context.Context, billID string) error {
	return c.do(ctx, http.MethodPost, "/bills/"+billID+"/reject", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("billing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("billing %s %s: status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode billing response: %w", err)
		}
	}

	return nil
}
