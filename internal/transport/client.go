// Package transport provides the HTTP client used to talk to the remote
// REST API that owns Income and Money records.
//
// Every call is a single request: no retries and no backoff. Timeouts come
// from the configured http.Client.
package transport

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
	"strings"
	"time"

	"github.com/google/uuid"

	applog "ledger/internal/log"
	"ledger/internal/metrics"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// MergePatchJSON is the content type used for partial updates.
const MergePatchJSON = "application/merge-patch+json"

// ErrNotFound matches a StatusError carrying a 404.
var ErrNotFound = errors.New("not found")

// StatusError is returned for every response outside the 2xx range.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Config contains configuration options for creating a new Client.
type Config struct {
	// BaseURL is the root the resource paths are resolved against
	// (e.g., "http://localhost:8080/")
	BaseURL string

	// Token is sent as a bearer token when not empty
	Token string

	// Timeout is the HTTP request timeout (defaults to DefaultTimeout if zero)
	Timeout time.Duration

	// HTTPClient overrides the client built from Timeout
	HTTPClient *http.Client
}

// Client issues JSON requests against the remote API.
type Client struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
}

// New creates a new client with the given configuration.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("base URL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base URL scheme must be http or https, got %q", base.Scheme)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    base,
		token:      cfg.Token,
		httpClient: hc,
	}, nil
}

// BaseURL returns the base URL configured for this client.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Request describes one outbound call.
type Request struct {
	Method string
	// Resource is the collection path (e.g. "api/monies"), used for metrics.
	Resource string
	// Path is resolved against the base URL.
	Path        string
	Query       url.Values
	Body        any
	ContentType string
	// AllowNotFound turns a 404 into an empty response instead of an error.
	AllowNotFound bool
}

// Response is the envelope handed back to callers: the decoded body (nil
// when the server sent none) plus the status and the headers callers care
// about.
type Response[T any] struct {
	StatusCode int
	Header     http.Header
	Body       *T
	// TotalCount is the X-Total-Count header, -1 when absent.
	TotalCount int64
	Link       string
	Alert      string
	AlertParam string
}

// OK reports whether the status is in the 2xx range.
func (r *Response[T]) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Do performs req and decodes a JSON body into T.
func Do[T any](ctx context.Context, c *Client, req Request) (*Response[T], error) {
	target := c.baseURL.JoinPath(req.Path)
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}

	var bodyReader io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), bodyReader)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		contentType := req.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		httpReq.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}
	requestID := applog.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	httpReq.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	metrics.APIRequestDuration.WithLabelValues(req.Method, req.Resource).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(req.Method, req.Resource, metrics.StatusClass(0)).Inc()
		slog.ErrorContext(ctx, "API request failed",
			applog.FieldMethod, req.Method,
			applog.FieldPath, target.Path,
			applog.FieldRequestID, requestID,
			applog.FieldError, err)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.APIRequestsTotal.WithLabelValues(req.Method, req.Resource, metrics.StatusClass(resp.StatusCode)).Inc()

	slog.DebugContext(ctx, "API request completed",
		applog.FieldMethod, req.Method,
		applog.FieldPath, target.Path,
		applog.FieldRequestID, requestID,
		applog.FieldStatusCode, resp.StatusCode,
		applog.FieldDuration, time.Since(start).Milliseconds())

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	out := newResponse[T](resp)
	if resp.StatusCode == http.StatusNotFound && req.AllowNotFound {
		return out, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			Method:     req.Method,
			URL:        target.String(),
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}
	body := new(T)
	if err := json.Unmarshal(data, body); err != nil {
		return nil, fmt.Errorf("decode response body: %w", err)
	}
	out.Body = body
	return out, nil
}

func newResponse[T any](resp *http.Response) *Response[T] {
	out := &Response[T]{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		TotalCount: -1,
		Link:       resp.Header.Get("Link"),
	}
	if v := resp.Header.Get("X-Total-Count"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			out.TotalCount = n
		}
	}
	for name, values := range resp.Header {
		if len(values) == 0 {
			continue
		}
		lower := strings.ToLower(name)
		if !strings.HasPrefix(lower, "x-") {
			continue
		}
		switch {
		case strings.HasSuffix(lower, "-alert"):
			out.Alert = values[0]
		case strings.HasSuffix(lower, "-params"):
			out.AlertParam = values[0]
		}
	}
	return out
}
