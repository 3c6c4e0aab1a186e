// ABOUTME: HTTP JSON client for the Ember backend session and notification endpoints
// ABOUTME: Classifies failures into transient, unauthorized, and backend-logic errors

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/emberapp/ember-core/internal/kvstore"
)

// TokenSource supplies the current auth token for outgoing requests.
// An empty token means "send unauthenticated".
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// KVTokenSource reads the auth token from durable storage on every request.
type KVTokenSource struct {
	KV kvstore.KV
}

// Token returns the stored auth token, or empty when none is stored.
func (s *KVTokenSource) Token(ctx context.Context) (string, error) {
	tok, err := s.KV.Get(ctx, kvstore.KeyAuthToken)
	if errors.Is(err, kvstore.ErrNotFound) {
		return "", nil
	}
	return tok, err
}

// Client talks to the Ember backend. It owns no session state; it only
// classifies responses and fires the unauthorized signal on 401/403.
type Client struct {
	baseURL      string
	http         *http.Client
	tokens       TokenSource
	unauthorized *UnauthorizedSignal
	logger       *slog.Logger
}

// NewClient creates a backend client. The unauthorized signal may be shared
// with the session store; pass nil to disable unauthorized reporting.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource, unauthorized *UnauthorizedSignal) *Client {
	return &Client{
		baseURL:      baseURL,
		http:         &http.Client{Timeout: timeout},
		tokens:       tokens,
		unauthorized: unauthorized,
		logger:       slog.Default().With("component", "api"),
	}
}

// do executes a JSON request and decodes the response envelope.
// A nil body sends no payload. The envelope's Success flag is not
// interpreted here beyond non-2xx handling; callers check it.
func (c *Client) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.logger.Warn("reading auth token failed, sending unauthenticated", "error", err)
	} else if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrTransient, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.logger.Warn("request unauthorized", "method", method, "path", path, "status", resp.StatusCode)
		if c.unauthorized != nil {
			c.unauthorized.invoke()
		}
		return nil, ErrUnauthorized
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decoding response from %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := env.Message
		if msg == "" {
			msg = resp.Status
		}
		return nil, &BackendError{Message: msg}
	}

	return &env, nil
}

// ValidateSession asks the backend whether the stored credentials are still
// valid. A Valid=false result is returned without error; the caller owns the
// transient-vs-genuine classification of the message.
func (c *Client) ValidateSession(ctx context.Context) (*ValidateSessionResult, error) {
	env, err := c.do(ctx, http.MethodGet, "/v1/session/validate", nil)
	if err != nil {
		return nil, err
	}

	var result ValidateSessionResult
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &result); err != nil {
			return nil, fmt.Errorf("decoding session validation: %w", err)
		}
	}
	if !env.Success && result.Message == "" {
		result.Message = env.Message
	}
	return &result, nil
}

// UpdateProfile pushes an allow-listed field subset to the backend.
func (c *Client) UpdateProfile(ctx context.Context, fields ProfileUpdate) error {
	env, err := c.do(ctx, http.MethodPatch, "/v1/profile", fields)
	if err != nil {
		return err
	}
	if !env.Success {
		return &BackendError{Message: env.Message}
	}
	return nil
}

// GetNotifications fetches one page of notifications, newest first.
func (c *Client) GetNotifications(ctx context.Context, page, pageSize int) ([]Notification, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))

	env, err := c.do(ctx, http.MethodGet, "/v1/notifications?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, &BackendError{Message: env.Message}
	}

	var data notificationsData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("decoding notifications: %w", err)
	}
	return data.Notifications, nil
}

// GetUnreadCount returns the number of unread notifications.
func (c *Client) GetUnreadCount(ctx context.Context) (int, error) {
	env, err := c.do(ctx, http.MethodGet, "/v1/notifications/unread-count", nil)
	if err != nil {
		return 0, err
	}
	if !env.Success {
		return 0, &BackendError{Message: env.Message}
	}

	var data unreadCountData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return 0, fmt.Errorf("decoding unread count: %w", err)
	}
	return data.Count, nil
}

// MarkAsRead marks one notification read on the backend.
func (c *Client) MarkAsRead(ctx context.Context, id string) error {
	env, err := c.do(ctx, http.MethodPost, "/v1/notifications/"+url.PathEscape(id)+"/read", nil)
	if err != nil {
		return err
	}
	if !env.Success {
		return &BackendError{Message: env.Message}
	}
	return nil
}

// MarkAllAsRead marks every notification read on the backend.
func (c *Client) MarkAllAsRead(ctx context.Context) error {
	env, err := c.do(ctx, http.MethodPost, "/v1/notifications/read-all", nil)
	if err != nil {
		return err
	}
	if !env.Success {
		return &BackendError{Message: env.Message}
	}
	return nil
}

// RegisterPushToken registers the device push token with the backend.
func (c *Client) RegisterPushToken(ctx context.Context, token, platform, deviceID string) error {
	body := map[string]string{"token": token, "platform": platform, "deviceId": deviceID}
	env, err := c.do(ctx, http.MethodPost, "/v1/notifications/token", body)
	if err != nil {
		return err
	}
	if !env.Success {
		return &BackendError{Message: env.Message}
	}
	return nil
}

// UnregisterPushToken removes the device push token from the backend.
func (c *Client) UnregisterPushToken(ctx context.Context, token string) error {
	body := map[string]string{"token": token}
	env, err := c.do(ctx, http.MethodPost, "/v1/notifications/token/unregister", body)
	if err != nil {
		return err
	}
	if !env.Success {
		return &BackendError{Message: env.Message}
	}
	return nil
}
