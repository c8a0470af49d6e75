package apiclient

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
	"strings"
	"time"

	"github.com/Skotchmaster/diamond_shop/internal/transport"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// ErrUnauthorized is returned before any network call when an authenticated
// endpoint is invoked without a bearer token.
var ErrUnauthorized = errors.New("unauthorized")

const maxErrorBody = 1 << 20

type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// TokenSource supplies the bearer token of the current session.
type TokenSource interface {
	Token() (string, bool)
}

type Options struct {
	Timeout    time.Duration
	RPS        float64
	Burst      int
	Logger     *slog.Logger
	HTTPClient *http.Client
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	limiter    *rate.Limiter
	log        *slog.Logger
}

func NewClient(baseURL string, tokens TokenSource, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RPS > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RPS), burst)
	}

	l := opts.Logger
	if l == nil {
		l = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
		limiter:    limiter,
		log:        l.With("component", "apiclient"),
	}
}

// BaseURL returns the backend root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// BearerToken exposes the current token for callers that forward raw requests.
func (c *Client) BearerToken() (string, bool) {
	if c.tokens == nil {
		return "", false
	}
	tok, ok := c.tokens.Token()
	return tok, ok && tok != ""
}

type authMode int

const (
	authNone authMode = iota
	authOptional
	authRequired
)

type request struct {
	method      string
	path        string
	query       url.Values
	body        any
	raw         io.Reader
	contentType string
	auth        authMode
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	token, hasToken := c.BearerToken()
	if r.auth == authRequired && !hasToken {
		return fmt.Errorf("%s %s: %w", r.method, r.path, ErrUnauthorized)
	}

	var body io.Reader
	contentType := r.contentType
	switch {
	case r.raw != nil:
		body = r.raw
	case r.body != nil:
		data, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if r.auth != authNone && hasToken {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("api_request_failed", "method", r.method, "path", r.path, "error", err)
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	c.log.Debug("api_request", "method", r.method, "path", r.path, "status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("request failed with status %d", resp.StatusCode),
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var eb transport.ErrorBody
	if json.Unmarshal(data, &eb) == nil {
		switch {
		case eb.Message != "":
			apiErr.Message = eb.Message
		case eb.Error != "":
			apiErr.Message = eb.Error
		}
	}
	return apiErr
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

func escape(s string) string {
	return url.PathEscape(s)
}
