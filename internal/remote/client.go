package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"studyrag/internal/domain"
	"studyrag/internal/logger"
)

// Config configures a JSON-over-HTTP client for one remote service.
type Config struct {
	Service           string
	BaseURL           string
	Headers           map[string]string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerSecond float64
	Logger            *slog.Logger
}

// Client sends JSON requests to a single service and maps failures to domain.ServiceError.
// Retries are off unless MaxRetries > 0; only transport errors, 429 and 5xx are retried.
type Client struct {
	service    string
	baseURL    string
	headers    map[string]string
	client     *http.Client
	maxRetries int
	limiter    *rate.Limiter
	logger     *slog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	lg := cfg.Logger
	if lg == nil {
		lg = logger.Discard()
	}
	c := &Client{
		service:    cfg.Service,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		headers:    cfg.Headers,
		client:     &http.Client{Timeout: timeout},
		maxRetries: cfg.MaxRetries,
		logger:     lg,
		sleep:      sleepContext,
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c
}

// Do sends body as JSON to path and decodes the response into out when out is non-nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", c.service, err)
		}
	}
	url := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return c.throttleError(ctx, err)
			}
		}
		wait, err := c.once(ctx, method, url, data, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if wait < 0 || attempt == c.maxRetries {
			break
		}
		if wait == 0 {
			wait = retryDelay(attempt)
		}
		c.logger.Warn("remote_request_retry",
			slog.String("service", c.service),
			slog.String("url", url),
			slog.Int("attempt", attempt+1),
			slog.Duration("wait", wait),
			slog.String("error", err.Error()),
		)
		if err := c.sleep(ctx, wait); err != nil {
			return domain.TransportError(c.service, err)
		}
	}
	return lastErr
}

// throttleError maps a limiter failure. The limiter refuses up front a wait
// that would outlast the ctx deadline, which counts as a timeout.
func (c *Client) throttleError(ctx context.Context, err error) error {
	if _, ok := ctx.Deadline(); ok && !errors.Is(err, context.Canceled) {
		return domain.NewServiceError(c.service, domain.KindTimeout, err)
	}
	return domain.TransportError(c.service, err)
}

// once performs a single attempt. wait < 0 means the failure is not retryable,
// wait > 0 is a server-provided Retry-After.
func (c *Client) once(ctx context.Context, method, url string, data []byte, out any) (time.Duration, error) {
	var reader io.Reader
	if data != nil {
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return -1, fmt.Errorf("create %s request: %w", c.service, err)
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return -1, domain.TransportError(c.service, ctx.Err())
		}
		return 0, domain.TransportError(c.service, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		serr := domain.StatusError(c.service, resp.StatusCode, strings.TrimSpace(string(msg)))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return retryAfter(resp.Header.Get("Retry-After")), serr
		}
		return -1, serr
	}

	if out == nil {
		return 0, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return -1, domain.NewServiceError(c.service, domain.KindBadResponse, fmt.Errorf("decode response: %w", err))
	}
	return 0, nil
}

func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	// exponential backoff capped at 5s
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
