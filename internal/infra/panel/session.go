package panel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// Session владеет токеном авторизации панели. Токен живёт столько,
// сколько сама сессия, и перезапрашивается после Invalidate.
type Session struct {
	httpClient *http.Client
	baseURL    string
	username   string
	password   string

	mu    sync.Mutex
	token string
}

func NewSession(httpClient *http.Client, baseURL, username, password string) *Session {
	return &Session{
		httpClient: httpClient,
		baseURL:    baseURL,
		username:   username,
		password:   password,
	}
}

// Token возвращает закэшированный токен или логинится заново.
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" {
		return s.token, nil
	}

	body, err := json.Marshal(map[string]string{
		"username": s.username,
		"password": s.password,
	})
	if err != nil {
		return "", fmt.Errorf("marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("panel login: %w", err)
	}
	defer resp.Body.Close()

	var loginResp struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		Msg     string `json:"msg"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if !loginResp.Success || loginResp.Token == "" {
		return "", fmt.Errorf("panel login rejected: %s", loginResp.Msg)
	}

	s.token = loginResp.Token
	return s.token, nil
}

// Invalidate сбрасывает токен, следующий Token сделает повторный логин.
func (s *Session) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}
