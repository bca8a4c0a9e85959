// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

// Package waterapi is the thin request/response wrapper around the
// WaterWise remote service: session calls (login, registration, profile
// update), property and reference-data listings, and the connectivity
// probe. Every call observes a fixed timeout and classifies transport
// failures as ErrUnreachable rather than blocking indefinitely.
package waterapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// Config holds configuration for the remote session client.
type Config struct {
	BaseURL       string
	Timeout       time.Duration // per-call budget, timeout-or-response
	RetryAttempts int           // total attempts for retryable failures
	RetryDelay    time.Duration
}

// DefaultConfig returns the client defaults used by the mobile app.
func DefaultConfig(baseURL string) *Config {
	return &Config{
		BaseURL:       baseURL,
		Timeout:       10 * time.Second,
		RetryAttempts: 3,
		RetryDelay:    1 * time.Second,
	}
}

// Client talks to the WaterWise remote service. All operations are
// stateless aside from the shared base URL, timeout and bearer token.
type Client struct {
	// HTTP is the resty client used for API calls. Exposed so tests can
	// swap the transport to inject transport-level failures.
	HTTP *resty.Client

	logger *slog.Logger

	tokenMu sync.RWMutex
	token   string
}

// NewClient creates a remote session client for the given base URL.
func NewClient(cfg *Config, logger *slog.Logger) *Client {
	if cfg == nil {
		cfg = DefaultConfig("")
	}
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	if cfg.RetryAttempts > 1 {
		httpClient.
			SetRetryCount(cfg.RetryAttempts - 1).
			SetRetryWaitTime(cfg.RetryDelay).
			SetRetryMaxWaitTime(cfg.RetryDelay).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				// Same class the mobile client retried: transport errors,
				// server errors, and request timeouts.
				if err != nil {
					return true
				}
				return r.StatusCode() >= http.StatusInternalServerError ||
					r.StatusCode() == http.StatusRequestTimeout
			})
	}

	return &Client{
		HTTP:   httpClient,
		logger: logger,
	}
}

// SetToken stores the bearer token attached to subsequent calls.
// An empty token disables the Authorization header.
func (c *Client) SetToken(token string) {
	c.tokenMu.Lock()
	c.token = token
	c.tokenMu.Unlock()
}

func (c *Client) bearer() string {
	c.tokenMu.RLock()
	defer c.tokenMu.RUnlock()
	return c.token
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.HTTP.R().SetContext(ctx)
	if tok := c.bearer(); tok != "" {
		req.SetAuthToken(tok)
	}
	return req
}

// NormalizeEmail applies the canonical email form used for auth calls
// and offline-account matching: trimmed and lowercased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login authenticates a producer. The email is normalized before
// sending. Auth rejections return ErrInvalidCredentials; a 2xx reply
// missing required fields returns ErrMalformedReply.
func (c *Client) Login(ctx context.Context, email, secret string) (*LoginResponse, error) {
	var (
		out    LoginResponse
		apiErr ErrorResponse
	)
	resp, err := c.request(ctx).
		SetBody(&LoginRequest{Email: NormalizeEmail(email), Secret: secret}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/login")
	if err != nil {
		return nil, fmt.Errorf("login: %w: %v", ErrUnreachable, err)
	}
	switch {
	case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden:
		return nil, ErrInvalidCredentials
	case resp.IsError():
		return nil, &RemoteError{StatusCode: resp.StatusCode(), Message: apiErr.Error}
	}
	if out.Producer.ID.IsZero() || out.Producer.Email == "" {
		return nil, fmt.Errorf("login: %w: missing id or email", ErrMalformedReply)
	}
	return &out, nil
}

// CreateProducer creates a producer account. First step of the two-step
// registration; there is no compensating delete if the second step fails.
func (c *Client) CreateProducer(ctx context.Context, req *CreateProducerRequest) (*Producer, error) {
	var (
		out    Producer
		apiErr ErrorResponse
	)
	resp, err := c.request(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&apiErr).
		Post("/producers")
	if err != nil {
		return nil, fmt.Errorf("create producer: %w: %v", ErrUnreachable, err)
	}
	if resp.IsError() {
		return nil, &RemoteError{StatusCode: resp.StatusCode(), Message: apiErr.Error}
	}
	if out.ID.IsZero() {
		return nil, fmt.Errorf("create producer: %w: missing id", ErrMalformedReply)
	}
	return &out, nil
}

// CreateProperty creates a property referencing an existing producer id.
func (c *Client) CreateProperty(ctx context.Context, req *CreatePropertyRequest) (*Property, error) {
	var (
		out    Property
		apiErr ErrorResponse
	)
	resp, err := c.request(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&apiErr).
		Post("/properties")
	if err != nil {
		return nil, fmt.Errorf("create property: %w: %v", ErrUnreachable, err)
	}
	if resp.IsError() {
		return nil, &RemoteError{StatusCode: resp.StatusCode(), Message: apiErr.Error}
	}
	if out.ID.IsZero() {
		return nil, fmt.Errorf("create property: %w: missing id", ErrMalformedReply)
	}
	return &out, nil
}

// UpdateProducer applies a partial update to a producer record.
func (c *Client) UpdateProducer(ctx context.Context, id ID, req *UpdateProducerRequest) (*Producer, error) {
	var (
		out    Producer
		apiErr ErrorResponse
	)
	resp, err := c.request(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&apiErr).
		Put(fmt.Sprintf("/producers/%s", id))
	if err != nil {
		return nil, fmt.Errorf("update producer: %w: %v", ErrUnreachable, err)
	}
	if resp.IsError() {
		return nil, &RemoteError{StatusCode: resp.StatusCode(), Message: apiErr.Error}
	}
	if out.ID.IsZero() {
		return nil, fmt.Errorf("update producer: %w: missing id", ErrMalformedReply)
	}
	return &out, nil
}

// ListProperties returns a page of properties matching the filter.
func (c *Client) ListProperties(ctx context.Context, filter PropertyFilter) (*PagedResult[Property], error) {
	params := map[string]string{}
	if !filter.ProducerID.IsZero() {
		params["producerId"] = filter.ProducerID.String()
	}
	if filter.Page > 0 {
		params["page"] = fmt.Sprintf("%d", filter.Page)
	}
	if filter.PageSize > 0 {
		params["pageSize"] = fmt.Sprintf("%d", filter.PageSize)
	}

	var (
		out    PagedResult[Property]
		apiErr ErrorResponse
	)
	resp, err := c.request(ctx).
		SetQueryParams(params).
		SetResult(&out).
		SetError(&apiErr).
		Get("/properties")
	if err != nil {
		return nil, fmt.Errorf("list properties: %w: %v", ErrUnreachable, err)
	}
	if resp.IsError() {
		return nil, &RemoteError{StatusCode: resp.StatusCode(), Message: apiErr.Error}
	}
	return &out, nil
}

// ListDegradationLevels returns a page of the soil degradation
// reference set.
func (c *Client) ListDegradationLevels(ctx context.Context, page, pageSize int) (*PagedResult[DegradationLevel], error) {
	params := map[string]string{}
	if page > 0 {
		params["page"] = fmt.Sprintf("%d", page)
	}
	if pageSize > 0 {
		params["pageSize"] = fmt.Sprintf("%d", pageSize)
	}

	var (
		out    PagedResult[DegradationLevel]
		apiErr ErrorResponse
	)
	resp, err := c.request(ctx).
		SetQueryParams(params).
		SetResult(&out).
		SetError(&apiErr).
		Get("/degradation-levels")
	if err != nil {
		return nil, fmt.Errorf("list degradation levels: %w: %v", ErrUnreachable, err)
	}
	if resp.IsError() {
		return nil, &RemoteError{StatusCode: resp.StatusCode(), Message: apiErr.Error}
	}
	return &out, nil
}
