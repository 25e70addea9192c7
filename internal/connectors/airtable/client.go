package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/tablesync/internal/core/domain"
	"github.com/custodia-labs/tablesync/internal/core/ports/driven"
	"github.com/custodia-labs/tablesync/internal/logger"
)

const (
	// DefaultBaseURL is the Airtable REST API root.
	DefaultBaseURL = "https://api.airtable.com/v0"

	// DefaultTimeout is the default per-request timeout.
	DefaultTimeout = 30 * time.Second

	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 1 << 20
)

// Ensure Client implements the interface.
var _ driven.RecordSource = (*Client)(nil)

// Client lists records from an Airtable-compatible API.
// A Client is bound to one token and is safe for concurrent use.
type Client struct {
	http        *http.Client
	baseURL     string
	rateLimiter *RateLimiter
	maxPages    int
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	baseURL     string
	timeout     time.Duration
	transport   http.RoundTripper
	rateLimiter *RateLimiter
	maxPages    int
}

// WithBaseURL overrides the API root (used for tests and proxies).
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		o.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithRequestTimeout sets the per-request timeout. Zero disables it.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithTransport sets the base transport beneath bearer authentication.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) {
		o.transport = rt
	}
}

// WithRateLimiter shares a limiter across clients hitting the same base.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(o *clientOptions) {
		o.rateLimiter = rl
	}
}

// WithMaxPages stops a listing after n pages with domain.ErrPageLimit.
// Zero means unbounded.
func WithMaxPages(n int) Option {
	return func(o *clientOptions) {
		o.maxPages = n
	}
}

// NewClient creates a client that authenticates with a static bearer token.
func NewClient(token string, opts ...Option) *Client {
	o := clientOptions{
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rateLimiter == nil {
		o.rateLimiter = NewRateLimiter(DefaultRequestsPerSecond, DefaultBurst)
	}
	base := o.transport
	if base == nil {
		base = http.DefaultTransport
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token, TokenType: "Bearer"},
	)

	return &Client{
		http: &http.Client{
			Transport: &oauth2.Transport{Source: ts, Base: base},
			Timeout:   o.timeout,
		},
		baseURL:     o.baseURL,
		rateLimiter: o.rateLimiter,
		maxPages:    o.maxPages,
	}
}

// RateLimiter returns the limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// Pages lazily yields each page of the table listing.
func (c *Client) Pages(ctx context.Context, query driven.SourceQuery) iter.Seq2[domain.Page, error] {
	return func(yield func(domain.Page, error) bool) {
		var cursor string
		for n := 0; ; n++ {
			if c.maxPages > 0 && n >= c.maxPages {
				yield(domain.Page{}, &domain.SourceFetchError{
					Err: fmt.Errorf("%w: stopped after %d pages of %q", domain.ErrPageLimit, n, query.Table),
				})
				return
			}

			page, err := c.fetchPage(ctx, query, cursor)
			if err != nil {
				yield(domain.Page{}, err)
				return
			}
			if !yield(page, nil) {
				return
			}
			if !page.HasMore() {
				return
			}
			cursor = page.Cursor
		}
	}
}

// FetchAll returns every record of the table in arrival order.
func (c *Client) FetchAll(ctx context.Context, query driven.SourceQuery) ([]domain.SourceRecord, error) {
	var all []domain.SourceRecord
	pages := 0
	for page, err := range c.Pages(ctx, query) {
		if err != nil {
			return nil, err
		}
		pages++
		all = append(all, page.Records...)
		logger.Debug("Fetched page %d of %q: %d records", pages, query.Table, len(page.Records))
	}
	logger.Info("Fetched %d records from %q in %d pages", len(all), query.Table, pages)
	return all, nil
}

// fetchPage issues one listing request.
func (c *Client) fetchPage(ctx context.Context, query driven.SourceQuery, cursor string) (domain.Page, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return domain.Page{}, &domain.SourceFetchError{Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	reqURL, err := c.pageURL(query, cursor)
	if err != nil {
		return domain.Page{}, &domain.SourceFetchError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return domain.Page{}, &domain.SourceFetchError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Page{}, &domain.SourceFetchError{Err: fmt.Errorf("list %q: %w", query.Table, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusTooManyRequests {
			c.rateLimiter.RecordRateLimited(resp)
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domain.Page{}, &domain.SourceFetchError{
			StatusCode: resp.StatusCode,
			Err: &APIError{
				StatusCode: resp.StatusCode,
				StatusText: http.StatusText(resp.StatusCode),
				Message:    parseErrorMessage(body, resp.StatusCode),
				URL:        reqURL,
			},
		}
	}

	var page domain.Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return domain.Page{}, &domain.SourceFetchError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %w", ErrInvalidResponse, err),
		}
	}
	return page, nil
}

// pageURL builds the listing URL with the table name path-escaped.
func (c *Client) pageURL(query driven.SourceQuery, cursor string) (string, error) {
	raw := c.baseURL + "/" + url.PathEscape(query.BaseID) + "/" + url.PathEscape(query.Table)
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	q := u.Query()
	if cursor != "" {
		q.Set("offset", cursor)
	}
	if query.View != "" {
		q.Set("view", query.View)
	}
	if query.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(query.PageSize))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
