// Package transport provides the HTTP client shared by source
// adapters: authentication hooks, client-side rate limiting and
// bounded retry with exponential backoff for transient upstream
// failures.
package transport

import (
	"context"
	stderrors "errors"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/factline/registry/pkg/errors"
	"github.com/factline/registry/pkg/logging"
	"github.com/factline/registry/pkg/sources"
)

// DefaultTimeout bounds a single HTTP request.
const DefaultTimeout = 30 * time.Second

// DefaultAttempts is how many times a transient failure is tried in
// total before the adapter gives up for the run.
const DefaultAttempts = 3

const backoffBase = 500 * time.Millisecond

// Client is an HTTP client for one source adapter.
type Client struct {
	source   string
	http     *http.Client
	auth     Authenticator
	apiKey   string
	limiter  *Limiter
	attempts int
}

// Option configures a Client.
type Option func(*Client)

// WithAuth sets the authenticator and key applied to each request.
func WithAuth(auth Authenticator, apiKey string) Option {
	return func(c *Client) {
		c.auth = auth
		c.apiKey = apiKey
	}
}

// WithBudget throttles the client to the source's rate budget.
func WithBudget(budget sources.Budget) Option {
	return func(c *Client) { c.limiter = NewLimiter(budget) }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithAttempts overrides the retry attempt count.
func WithAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.attempts = n
		}
	}
}

// WithHTTPClient swaps the underlying client, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New builds a client for the named source.
func New(source string, opts ...Option) *Client {
	c := &Client{
		source:   source,
		http:     &http.Client{Timeout: DefaultTimeout},
		auth:     &NoAuth{},
		limiter:  NewLimiter(sources.DefaultBudget),
		attempts: DefaultAttempts,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches a URL and returns the response body. Transient failures
// (timeouts, 429, 5xx) are retried with exponential backoff up to the
// attempt budget; 4xx responses fail immediately.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			backoff := backoffBase << (attempt - 2)
			logging.Ctx(ctx).Debug().
				Str("source", c.source).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("retrying after transient failure")
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, err := c.get(ctx, url)
		if err == nil {
			return body, nil
		}
		if !errors.IsTransient(err) || stderrors.Is(err, context.Canceled) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// GetJSON fetches a URL and decodes the JSON response into out. A body
// that does not parse is a non-transient failure: the source is
// skipped for the run rather than retried.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	body, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.WrapParse("json", url, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapResource("create", "request", "GET "+url, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		c.auth.Apply(req, c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if stderrors.Is(err, context.Canceled) {
			return nil, err
		}
		// Network failures and client timeouts are transient.
		return nil, &errors.SourceError{
			Source:   c.source,
			Endpoint: url,
			Message:  "request failed",
			Err:      fmt.Errorf("%w: %w", errors.ErrTimeout, err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &errors.SourceError{
			Source:     c.source,
			StatusCode: resp.StatusCode,
			Endpoint:   url,
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapIO("read", url, err)
	}
	return body, nil
}
