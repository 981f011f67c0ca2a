package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

var (
	ErrNotConfigured = errors.New("inventory: cin7 is not configured")
	ErrNotFound      = errors.New("inventory: not found")
)

// APIError — ответ ERP вне 2xx.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cin7 %s %s: http %d: %s", e.Method, e.Path, e.Status, e.Body)
}

type ClientConfig struct {
	BaseURL       string
	AccountID     string
	APIKey        string
	RatePerMinute int
	MaxRetries    int
}

// Client — REST-клиент ERP (Cin7 Core). Повторы на 429/5xx и сетевых ошибках
// с экспоненциальной задержкой и джиттером; общий лимит запросов в минуту.
type Client struct {
	baseURL    string
	accountID  string
	apiKey     string
	http       *http.Client
	limiter    *rate.Limiter
	maxRetries int
	baseDelay  time.Duration
	logger     zerolog.Logger
}

func NewClient(cfg ClientConfig, logger zerolog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.AccountID) == "" || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = "https://inventory.dearsystems.com/ExternalApi/v2"
	}
	perMin := cfg.RatePerMinute
	if perMin <= 0 {
		perMin = 60
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		accountID:  cfg.AccountID,
		apiKey:     cfg.APIKey,
		http:       &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), 1),
		maxRetries: retries,
		baseDelay:  time.Second,
		logger:     logger,
	}, nil
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// backoff: base·2^attempt плюс джиттер до половины задержки
func (c *Client) backoff(attempt int) time.Duration {
	d := c.baseDelay << attempt
	if half := int64(d / 2); half > 0 {
		d += time.Duration(rand.Int63n(half))
	}
	return d
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff(attempt - 1)
			c.logger.Debug().Str("path", path).Int("attempt", attempt).Dur("wait", wait).Err(lastErr).Msg("cin7 retry")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		var rd io.Reader
		if payload != nil {
			rd = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, rd)
		if err != nil {
			return err
		}
		req.Header.Set("api-auth-accountid", c.accountID)
		req.Header.Set("api-auth-applicationkey", c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			continue
		}
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := &APIError{Method: method, Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
			if retryable(resp.StatusCode) {
				lastErr = apiErr
				continue
			}
			if resp.StatusCode == http.StatusNotFound {
				return fmt.Errorf("%w: %v", ErrNotFound, apiErr)
			}
			return apiErr
		}
		if out == nil || len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		return nil
	}
	return fmt.Errorf("cin7 %s %s: giving up after %d attempts: %w", method, path, c.maxRetries+1, lastErr)
}
