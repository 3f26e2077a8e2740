package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/diwise/integration-sdk/pkg/adapter/errors"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

const (
	authSourceLocal string = "LOCAL"

	// tokens that expire within this margin are renewed before use
	tokenExpiryMargin = 10 * time.Second
)

type acquireTokenRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	AuthSource string `json:"authSource"`
}

type tokenInfo struct {
	Token     string   `json:"token"`
	Validity  int64    `json:"validity"`
	ExpiresAt string   `json:"expiresAt"`
	Roles     []string `json:"roles"`
}

// tokenManager lazily acquires an authentication token and hands it out
// until it is about to expire. Concurrent callers without a valid token
// wait for a single acquisition.
type tokenManager struct {
	mu         sync.Mutex
	info       ConnectionInfo
	httpClient *http.Client
	current    *tokenInfo
	now        func() time.Time
}

func newTokenManager(info ConnectionInfo, httpClient *http.Client) *tokenManager {
	return &tokenManager{
		info:       info,
		httpClient: httpClient,
		now:        time.Now,
	}
}

func (tm *tokenManager) isValid() bool {
	return tm.current != nil && tm.current.Validity > tm.now().Add(tokenExpiryMargin).UnixMilli()
}

// Token returns the current token, acquiring a new one if there is no token
// or if it is about to expire
func (tm *tokenManager) Token(ctx context.Context) (string, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.isValid() {
		return tm.current.Token, nil
	}

	logging.GetFromContext(ctx).Debug("requesting new token", "url", tm.info.BaseURL())

	ti, err := tm.acquire(ctx)
	if err != nil {
		tm.current = nil
		return "", err
	}

	tm.current = ti

	return ti.Token, nil
}

func (tm *tokenManager) acquire(ctx context.Context) (*tokenInfo, error) {
	b, err := json.Marshal(acquireTokenRequest{
		Username:   tm.info.Username(),
		Password:   tm.info.Password(),
		AuthSource: authSourceLocal,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token request: %s (%w)", err.Error(), errors.ErrInternal)
	}

	resp, body, err := tm.post(ctx, tm.info.URL("api/auth/token/acquire"), bytes.NewReader(b), "")
	if err != nil {
		return nil, err
	}

	ti := &tokenInfo{}
	if err = json.Unmarshal(body, ti); err != nil {
		return nil, fmt.Errorf("failed to decode token response (status %d): %s (%w)", resp.StatusCode, err.Error(), errors.ErrBadResponse)
	}

	return ti, nil
}

// Release invalidates the current token, if it is still valid, and forgets it
func (tm *tokenManager) Release(ctx context.Context) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	defer func() { tm.current = nil }()

	if !tm.isValid() {
		return nil
	}

	logging.GetFromContext(ctx).Debug("releasing token", "url", tm.info.BaseURL())

	_, _, err := tm.post(ctx, tm.info.URL("/api/auth/token/release"), nil, tm.current.Token)
	return err
}

func (tm *tokenManager) post(ctx context.Context, endpoint string, body io.Reader, token string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %s (%w)", err.Error(), errors.ErrInternal)
	}

	req.Header.Add("Accept", "application/json")
	req.Header.Add("Content-Type", "application/json")

	if token != "" {
		req.Header.Add("Authorization", authorizationHeaderValue(token))
	}

	resp, err := tm.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to send request: %s (%w)", err.Error(), errors.ErrRequest)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %s (%w)", err.Error(), errors.ErrBadResponse)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		return resp, respBody, errors.NewSuiteAPIError(http.MethodPost, endpoint, http.StatusText(resp.StatusCode), resp.StatusCode)
	}

	return resp, respBody, nil
}

func authorizationHeaderValue(token string) string {
	return "vRealizeOpsToken " + token
}
