package panel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Client — клиент inbound-API панели 3x-ui.
type Client struct {
	httpClient *http.Client
	baseURL    string
	session    *Session
	logger     *slog.Logger
}

// Inbound — VPN-ключ, как его учитывает панель. Up/Down в байтах.
type Inbound struct {
	ID         int64  `json:"id"`
	Remark     string `json:"remark"`
	Up         int64  `json:"up"`
	Down       int64  `json:"down"`
	ExpiryTime int64  `json:"expiryTime"`
	Enable     bool   `json:"enable"`
}

type apiResponse struct {
	Success bool            `json:"success"`
	Msg     string          `json:"msg"`
	Obj     json.RawMessage `json:"obj"`
}

func NewClient(baseURL string, session *Session, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		session:    session,
		logger:     logger,
	}
}

// CreateInbound создаёт VPN-ключ с заданной пометкой и сроком действия.
func (c *Client) CreateInbound(ctx context.Context, remark string, validity time.Duration) (*Inbound, error) {
	payload := map[string]interface{}{
		"up":         0,
		"down":       0,
		"total":      0,
		"remark":     remark,
		"enable":     true,
		"expiryTime": validity.Milliseconds(),
		"listen":     "",
		"port":       0,
		"protocol":   "vless",
		"settings": map[string]interface{}{
			"clients": []map[string]interface{}{
				{"id": remark, "flow": ""},
			},
			"decryption": "none",
			"fallbacks":  []interface{}{},
		},
		"streamSettings": map[string]interface{}{
			"network":  "tcp",
			"security": "none",
			"tcpSettings": map[string]interface{}{
				"header": map[string]interface{}{"type": "none"},
			},
		},
	}

	var inbound Inbound
	if err := c.do(ctx, http.MethodPost, "/api/inbounds", payload, &inbound); err != nil {
		return nil, err
	}

	c.logger.Info("Inbound created", "inbound_id", inbound.ID, "remark", remark)
	return &inbound, nil
}

// GetInbound возвращает ключ по идентификатору панели.
func (c *Client) GetInbound(ctx context.Context, id string) (*Inbound, error) {
	var inbound Inbound
	if err := c.do(ctx, http.MethodGet, "/api/inbounds/"+id, nil, &inbound); err != nil {
		return nil, err
	}
	return &inbound, nil
}

// DeleteInbound удаляет ключ из панели.
func (c *Client) DeleteInbound(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/inbounds/"+id, nil, nil)
}

// do выполняет запрос с bearer-токеном сессии. На 401 токен сбрасывается
// и запрос повторяется один раз с новым логином.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	for attempt := 0; attempt < 2; attempt++ {
		token, err := c.session.Token(ctx)
		if err != nil {
			return fmt.Errorf("panel auth: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("panel request: %w", err)
		}

		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			resp.Body.Close()
			c.session.Invalidate()
			continue
		}

		var apiResp apiResponse
		decodeErr := json.NewDecoder(resp.Body).Decode(&apiResp)
		resp.Body.Close()
		if decodeErr != nil {
			return fmt.Errorf("decode panel response: %w", decodeErr)
		}

		if resp.StatusCode != http.StatusOK || !apiResp.Success {
			return fmt.Errorf("panel %s %s: status %d: %s", method, path, resp.StatusCode, apiResp.Msg)
		}

		if out != nil && len(apiResp.Obj) > 0 {
			if err := json.Unmarshal(apiResp.Obj, out); err != nil {
				return fmt.Errorf("unmarshal panel object: %w", err)
			}
		}

		return nil
	}

	return fmt.Errorf("panel %s %s: unauthorized after token refresh", method, path)
}
