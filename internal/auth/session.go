package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// SessionTokenSource authenticates against the gateway's token endpoint
// (POST {baseURL}/api/tokens) and hands out the resulting session token.
// The first Token call logs in; subsequent calls return the same token
// until Invalidate is called.
type SessionTokenSource struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client

	mu    sync.Mutex
	token string
}

// NewSessionTokenSource creates a token source that logs in with the given
// credentials on first use.
func NewSessionTokenSource(baseURL, username, password string) *SessionTokenSource {
	return &SessionTokenSource{
		baseURL:  baseURL,
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Token returns the current session token, logging in if there is none.
func (s *SessionTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" {
		return s.token, nil
	}

	token, err := s.login(ctx)
	if err != nil {
		return "", fmt.Errorf("gateway login: %w", err)
	}

	s.token = token
	return token, nil
}

// Invalidate discards the current session token. The next Token call logs
// in again. Call this after the gateway rejects a token as expired.
func (s *SessionTokenSource) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

// login posts form-encoded credentials to the token endpoint.
func (s *SessionTokenSource) login(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("username", s.username)
	form.Set("password", s.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/api/tokens", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("token endpoint returned %d: %s",
			resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var result struct {
		AuthToken string `json:"authToken"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("unmarshal token response: %w", err)
	}
	if result.AuthToken == "" {
		return "", fmt.Errorf("token endpoint returned no authToken")
	}

	return result.AuthToken, nil
}
