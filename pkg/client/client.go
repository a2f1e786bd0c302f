// Package client implements the rate-limited, auto-retrying, OAuth-refreshing
// request pipeline every endpoint wrapper goes through.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/stockx-tools/stockroom/pkg/throttle"
	"github.com/stockx-tools/stockroom/pkg/types"
)

const (
	grantType = "refresh_token"

	// How long a request waits for the first token before giving up.
	readyGracePeriod = 5 * time.Second

	// Pause before re-attempting a failed token refresh.
	refreshRetryDelay = 30 * time.Second
)

// Client lifecycle states.
const (
	stateUninitialized int32 = iota
	stateRunning
	stateClosed
)

// Config holds configuration for the API client.
type Config struct {
	BaseURL string // e.g. https://api.stockx.com/v2
	APIKey  string

	TokenURL     string
	Audience     string
	ClientID     string
	ClientSecret string
	RefreshToken string

	TokenRefreshInterval time.Duration
	RequestInterval      time.Duration
	RetryMaxAttempts     int
	RetryInitialDelay    time.Duration
	RetryTimeout         time.Duration

	// HTTPClient overrides the default transport; used by tests.
	HTTPClient *http.Client
	Logger     *zap.Logger
}

type authHeaders struct {
	authorization string
	apiKey        string
}

// Client makes authenticated JSON requests to the marketplace API. It must
// be initialized with Initialize before use and closed with Close when
// finished; a single background task keeps the bearer token fresh for the
// client's whole lifetime.
type Client struct {
	baseURL    string
	apiKey     string
	tokenURL   string
	audience   string
	clientID   string
	clientSec  string
	refreshTok string

	refreshInterval time.Duration

	httpClient *http.Client
	limiter    *throttle.Limiter
	retryer    *throttle.Retryer
	logger     *zap.Logger

	state   atomic.Int32
	headers atomic.Pointer[authHeaders]

	ready     chan struct{} // closed once the first token is published
	readyOnce sync.Once

	cancelRefresh context.CancelFunc
	refreshDone   chan struct{}
}

// New creates a client from cfg. Zero-valued policy settings fall back to
// the documented defaults (1 s spacing, 5 attempts, 2 s initial delay, 60 s
// retry budget, hourly token refresh).
func New(cfg *Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	refreshInterval := cfg.TokenRefreshInterval
	if refreshInterval == 0 {
		refreshInterval = 3600 * time.Second
	}
	requestInterval := cfg.RequestInterval
	if requestInterval == 0 {
		requestInterval = time.Second
	}
	maxAttempts := cfg.RetryMaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 5
	}
	initialDelay := cfg.RetryInitialDelay
	if initialDelay == 0 {
		initialDelay = 2 * time.Second
	}
	retryTimeout := cfg.RetryTimeout
	if retryTimeout == 0 {
		retryTimeout = 60 * time.Second
	}

	return &Client{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:          cfg.APIKey,
		tokenURL:        cfg.TokenURL,
		audience:        cfg.Audience,
		clientID:        cfg.ClientID,
		clientSec:       cfg.ClientSecret,
		refreshTok:      cfg.RefreshToken,
		refreshInterval: refreshInterval,
		httpClient:      httpClient,
		limiter:         throttle.NewLimiter(requestInterval, logger),
		retryer:         throttle.NewRetryer(maxAttempts, initialDelay, retryTimeout, logger),
		logger:          logger,
		ready:           make(chan struct{}),
		refreshDone:     make(chan struct{}),
	}
}

// Initialize starts the token-refresh task. Requests issued before the
// first token is published wait a short grace period for it.
func (c *Client) Initialize(ctx context.Context) error {
	if !c.state.CompareAndSwap(stateUninitialized, stateRunning) {
		return fmt.Errorf("client already initialized")
	}

	refreshCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancelRefresh = cancel

	go c.refreshLoop(refreshCtx)

	c.logger.Info("client-initialized")
	return nil
}

// Close stops the refresh task. Subsequent requests fail with
// ErrNotInitialized.
func (c *Client) Close() {
	if !c.state.CompareAndSwap(stateRunning, stateClosed) {
		return
	}

	c.cancelRefresh()
	<-c.refreshDone
	c.logger.Info("client-closed")
}

// refreshLoop obtains a bearer token, publishes the auth headers atomically,
// then sleeps one refresh interval and repeats. A failed refresh keeps the
// previous token and retries after a short delay; the loop never exits on
// request failure.
func (c *Client) refreshLoop(ctx context.Context) {
	defer close(c.refreshDone)

	for {
		token, err := c.fetchToken(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}

			TokenRefreshFailuresTotal.Inc()
			c.logger.Warn("token-refresh-failed", zap.Error(err))

			select {
			case <-time.After(refreshRetryDelay):
				continue
			case <-ctx.Done():
				return
			}
		}

		c.headers.Store(&authHeaders{
			authorization: "Bearer " + token,
			apiKey:        c.apiKey,
		})
		c.readyOnce.Do(func() { close(c.ready) })

		TokenRefreshesTotal.Inc()
		c.logger.Info("token-refreshed",
			zap.Duration("next-refresh", c.refreshInterval))

		select {
		case <-time.After(c.refreshInterval):
		case <-ctx.Done():
			return
		}
	}
}

// fetchToken performs the OAuth refresh-token grant.
func (c *Client) fetchToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", grantType)
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSec)
	form.Set("audience", c.audience)
	form.Set("refresh_token", c.refreshTok)

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned status %d: %s",
			resp.StatusCode, string(body))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	err = json.Unmarshal(body, &payload)
	if err != nil {
		return "", fmt.Errorf("unmarshal token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token response carries no access_token")
	}

	return payload.AccessToken, nil
}

// Get performs a GET request. Params with empty values are dropped.
func (c *Client) Get(ctx context.Context, endpoint string, params map[string]string) (*types.Response, error) {
	return c.do(ctx, http.MethodGet, endpoint, params, nil)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, endpoint string, body any) (*types.Response, error) {
	return c.do(ctx, http.MethodPut, endpoint, nil, body)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, endpoint string, body any) (*types.Response, error) {
	return c.do(ctx, http.MethodPost, endpoint, nil, body)
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, endpoint string, body any) (*types.Response, error) {
	return c.do(ctx, http.MethodPatch, endpoint, nil, body)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, endpoint string) (*types.Response, error) {
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil)
}

// do sends one logical request through the throttle and retry policies.
// Each network attempt takes its own rate-limiter slot.
func (c *Client) do(ctx context.Context, method, endpoint string, params map[string]string, body any) (*types.Response, error) {
	var response *types.Response

	err := c.retryer.Do(ctx, func(ctx context.Context) error {
		err := c.limiter.Wait(ctx)
		if err != nil {
			return err
		}

		response, err = c.attempt(ctx, method, endpoint, params, body)
		return err
	})
	if err != nil {
		return nil, err
	}

	return response, nil
}

func (c *Client) attempt(ctx context.Context, method, endpoint string, params map[string]string, body any) (*types.Response, error) {
	headers, err := c.awaitHeaders(ctx)
	if err != nil {
		return nil, err
	}

	requestURL := c.baseURL + endpoint
	if len(params) > 0 {
		values := url.Values{}
		for key, value := range params {
			if value != "" {
				values.Set(key, value)
			}
		}
		if encoded := values.Encode(); encoded != "" {
			requestURL += "?" + encoded
		}
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", headers.authorization)
	req.Header.Set("x-api-key", headers.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("api-request",
		zap.String("method", method),
		zap.String("endpoint", endpoint))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		RequestErrorsTotal.Inc()
		return nil, types.WrapRequestError(err)
	}
	defer resp.Body.Close()

	RequestDuration.Observe(time.Since(start).Seconds())

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		RequestErrorsTotal.Inc()
		return nil, types.WrapRequestError(err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return &types.Response{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Data:       data,
		}, nil
	}

	RequestErrorsTotal.Inc()

	// The server reports failures in an errorMessage field when it can.
	var serverError struct {
		ErrorMessage string `json:"errorMessage"`
	}
	_ = json.Unmarshal(data, &serverError)

	return nil, types.NewRequestError(resp.StatusCode, serverError.ErrorMessage)
}

// awaitHeaders returns the published auth headers, waiting out the grace
// period while the first refresh is still in flight.
func (c *Client) awaitHeaders(ctx context.Context) (*authHeaders, error) {
	if c.state.Load() != stateRunning {
		return nil, types.ErrNotInitialized
	}

	if headers := c.headers.Load(); headers != nil {
		return headers, nil
	}

	select {
	case <-c.ready:
	case <-time.After(readyGracePeriod):
		return nil, types.ErrNotInitialized
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if c.state.Load() != stateRunning {
		return nil, types.ErrNotInitialized
	}

	return c.headers.Load(), nil
}
