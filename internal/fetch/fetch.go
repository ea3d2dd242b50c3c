// Package fetch retrieves source documents over HTTP.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/hyperifyio/rewind/internal/robots"
)

// DefaultMaxBodyBytes caps a response body when Client.MaxBodyBytes is zero.
const DefaultMaxBodyBytes = 10 * 1024 * 1024

// ErrRetrieval is wrapped by every error Get returns.
var ErrRetrieval = errors.New("retrieval failed")

// ErrDisallowed is returned, wrapped together with ErrRetrieval, when
// robots.txt forbids the page.
var ErrDisallowed = errors.New("disallowed by robots.txt")

// StatusError reports a non-success HTTP status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Unwrap lets errors.Is(err, ErrRetrieval) match status failures.
func (e *StatusError) Unwrap() error { return ErrRetrieval }

// Client issues GET requests with a descriptive user agent. By default it
// makes exactly one attempt per call; RetryMax opts into retries of
// transient failures.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// PerRequestTimeout bounds each attempt.
	PerRequestTimeout time.Duration
	// RetryMax is the number of retries after the first attempt.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// Limiter paces requests. Nil means unlimited.
	Limiter *rate.Limiter
	// Robots, when set, is consulted before every request.
	Robots *robots.Manager
	// MaxConcurrent limits in-flight requests. Zero means unlimited.
	MaxConcurrent int
	// MaxBodyBytes caps the body size. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64
	// RedirectMaxHops caps redirect following. Zero means 5.
	RedirectMaxHops int

	initOnce sync.Once
	rc       *retryablehttp.Client
	slots    chan struct{}

	hostMu sync.Mutex
	nextAt map[string]time.Time
}

func (c *Client) init() {
	c.initOnce.Do(func() {
		base := &http.Client{}
		if c.HTTPClient != nil {
			clone := *c.HTTPClient
			base = &clone
		}
		if c.PerRequestTimeout > 0 {
			base.Timeout = c.PerRequestTimeout
		}
		base.CheckRedirect = c.checkRedirectFunc()

		rc := retryablehttp.NewClient()
		rc.HTTPClient = base
		rc.Logger = nil
		rc.RetryMax = max(c.RetryMax, 0)
		if c.RetryWaitMin > 0 {
			rc.RetryWaitMin = c.RetryWaitMin
		}
		if c.RetryWaitMax > 0 {
			rc.RetryWaitMax = c.RetryWaitMax
		}
		// Hand the final response back so the status can be reported.
		rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
		c.rc = rc

		if c.MaxConcurrent > 0 {
			c.slots = make(chan struct{}, c.MaxConcurrent)
		}
	})
}

// Get fetches rawURL and returns the body. Every failure wraps ErrRetrieval.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	c.init()
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse url: %w", ErrRetrieval, err)
	}
	if !isHTTPScheme(u) {
		return nil, fmt.Errorf("%w: unsupported URL scheme: %q", ErrRetrieval, rawURL)
	}
	if c.Robots != nil {
		ok, delay, err := c.Robots.Allowed(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRetrieval, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %w: %s", ErrRetrieval, ErrDisallowed, rawURL)
		}
		if err := c.crawlWait(ctx, u.Host, delay); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRetrieval, err)
		}
	}
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRetrieval, err)
		}
	}
	if err := c.acquire(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrieval, err)
	}
	defer c.release()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: new request: %w", ErrRetrieval, err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.rc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrieval, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	if ct := resp.Header.Get("Content-Type"); !isAllowedHTMLContentType(ct) {
		return nil, fmt.Errorf("%w: unsupported content type: %s", ErrRetrieval, ct)
	}
	limit := c.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrRetrieval, err)
	}
	if int64(len(b)) > limit {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrRetrieval, limit)
	}
	return b, nil
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	hops := c.RedirectMaxHops
	if hops <= 0 {
		hops = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= hops {
			return errors.New("too many redirects")
		}
		if !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

// crawlWait spaces requests to host by delay. Each caller reserves the next
// free slot before sleeping, so concurrent callers queue up.
func (c *Client) crawlWait(ctx context.Context, host string, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	c.hostMu.Lock()
	if c.nextAt == nil {
		c.nextAt = make(map[string]time.Time)
	}
	now := time.Now()
	at := c.nextAt[host]
	if at.Before(now) {
		at = now
	}
	c.nextAt[host] = at.Add(delay)
	c.hostMu.Unlock()

	wait := at.Sub(now)
	if wait <= 0 {
		return nil
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) acquire(ctx context.Context) error {
	if c.slots == nil {
		return nil
	}
	select {
	case c.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) release() {
	if c.slots == nil {
		return
	}
	<-c.slots
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// isAllowedHTMLContentType accepts HTML variants. A missing header is
// accepted since the parser sniffs the charset itself.
func isAllowedHTMLContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return ct == "" || strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}
