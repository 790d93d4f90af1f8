package backend

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sboosali/notegraph/pkg/cache"
	"github.com/sboosali/notegraph/pkg/errors"
	"github.com/sboosali/notegraph/pkg/graph"
	"github.com/sboosali/notegraph/pkg/httputil"
	"github.com/sboosali/notegraph/pkg/observability"
)

const (
	// DefaultURL is where the notes service listens by default.
	DefaultURL = "http://127.0.0.1:5000"

	defaultTimeout    = 10 * time.Second
	defaultAttempts   = 3
	defaultRetryDelay = 250 * time.Millisecond

	maxResponseSize = 32 << 20
)

// Config configures a Client.
type Config struct {
	// BaseURL of the notes service. Empty means DefaultURL.
	BaseURL string

	// DrawPath and QueryPath default to /draw and /query.
	DrawPath  string
	QueryPath string

	// Timeout bounds each HTTP attempt.
	Timeout time.Duration

	// Attempts and RetryDelay control retries of transient failures.
	Attempts   int
	RetryDelay time.Duration

	// Headers are sent with every request.
	Headers map[string]string

	// Cache stores draw responses by note content. Nil disables caching.
	Cache    cache.Cache
	CacheTTL time.Duration
	Keyer    cache.Keyer

	Logger *log.Logger
}

// Client talks to the notes service. It is safe for concurrent use.
type Client struct {
	http     *http.Client
	drawURL  string
	queryURL string
	headers  map[string]string

	attempts int
	delay    time.Duration

	cache  cache.Cache
	ttl    time.Duration
	keyer  cache.Keyer
	logger *log.Logger

	seq atomic.Uint64
}

// NewClient validates cfg and returns a client.
func NewClient(cfg Config) (*Client, error) {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultURL
	}
	if err := errors.ValidateURL(base); err != nil {
		return nil, err
	}

	drawURL, err := url.JoinPath(base, orDefault(cfg.DrawPath, "/draw"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "draw url")
	}
	queryURL, err := url.JoinPath(base, orDefault(cfg.QueryPath, "/query"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "query url")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}

	c := cfg.Cache
	if c == nil {
		c = cache.NewNullCache("no cache configured")
	}
	keyer := cfg.Keyer
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Client{
		http:     &http.Client{Timeout: timeout},
		drawURL:  drawURL,
		queryURL: queryURL,
		headers:  cfg.Headers,
		attempts: attempts,
		delay:    delay,
		cache:    c,
		ttl:      cfg.CacheTTL,
		keyer:    keyer,
		logger:   logger,
	}, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// DrawURL returns the parser endpoint.
func (c *Client) DrawURL() string { return c.drawURL }

// QueryURL returns the query endpoint.
func (c *Client) QueryURL() string { return c.queryURL }

// Empty reports whether s is input that is never sent to the service.
func Empty(s string) bool { return strings.TrimSpace(s) == "" }

type drawRequest struct {
	Notes string `json:"notes"`
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Results []string `json:"results"`
}

// Draw sends notes to the parser and decodes the graph document. Empty
// notes return (nil, nil) without a request. Responses are cached by the
// exact note text.
func (c *Client) Draw(ctx context.Context, notes string) (*graph.Document, error) {
	if Empty(notes) {
		return nil, nil
	}
	if err := errors.ValidateNotes(notes); err != nil {
		return nil, err
	}

	key := c.keyer.DrawKey(c.drawURL, notes)
	if data, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Debug("draw cache read failed", "err", err)
	} else if ok {
		doc, err := graph.UnmarshalDocument(data)
		if err == nil {
			c.logger.Debug("draw cache hit", "bytes", len(data))
			return doc, nil
		}
		_ = c.cache.Delete(ctx, key)
	}

	data, err := c.post(ctx, c.drawURL, drawRequest{Notes: notes})
	if err != nil {
		return nil, err
	}
	doc, err := graph.UnmarshalDocument(data)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Debug("draw cache write failed", "err", err)
	}
	return doc, nil
}

// Query sends a query and returns its result lines. An empty query returns
// (nil, nil) without a request.
func (c *Client) Query(ctx context.Context, query string) ([]string, error) {
	if Empty(query) {
		return nil, nil
	}
	data, err := c.post(ctx, c.queryURL, queryRequest{Query: query})
	if err != nil {
		return nil, err
	}
	var resp queryResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidResponse, err, "decode query response")
	}
	return resp.Results, nil
}

// JoinResults formats query results for display, one per line.
func JoinResults(results []string) string {
	return strings.Join(results, "\n")
}

func (c *Client) post(ctx context.Context, endpoint string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode request")
	}

	var data []byte
	err = httputil.Retry(ctx, c.attempts, c.delay, func() error {
		var err error
		data, err = c.do(ctx, endpoint, payload)
		return err
	})
	if err != nil {
		var re *httputil.RetryableError
		if stderrors.As(err, &re) {
			err = re.Err
		}
		if ctx.Err() != nil && !errors.Is(err, errors.ErrCodeTimeout) {
			err = errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "request to %s", endpoint)
		}
		return nil, err
	}
	return data, nil
}

func (c *Client) do(ctx context.Context, endpoint string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "request to %s", endpoint)
		}
		var ne net.Error
		if stderrors.As(err, &ne) && ne.Timeout() {
			return nil, httputil.Retryable(errors.Wrap(errors.ErrCodeTimeout, err, "request to %s", endpoint))
		}
		return nil, httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "request to %s", endpoint))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(endpoint, resp.StatusCode); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "read response from %s", endpoint))
	}
	return data, nil
}

func checkStatus(endpoint string, code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s: status %d", endpoint, code)
	case httputil.RetryableStatus(code):
		return httputil.Retryable(errors.New(errors.ErrCodeNetwork, "%s: status %d", endpoint, code))
	default:
		return errors.New(errors.ErrCodeInvalidResponse, "%s: status %d", endpoint, code)
	}
}

// String describes the client for logs.
func (c *Client) String() string {
	return fmt.Sprintf("backend(%s)", c.drawURL)
}
