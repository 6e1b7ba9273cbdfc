package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/elnormous/contenttype"
	"github.com/google/uuid"
)

// maxBodySize caps how much of any response body is read.
const maxBodySize = 1 << 20 // 1 MB

var (
	jsonMediaType = contenttype.NewMediaType("application/json")
	absoluteURL   = regexp.MustCompile(`(?i)^https?://`)
	repeatedAPI   = regexp.MustCompile(`/api(?:/api)+`)
)

// Client talks to the session API. Cookies set by the server are kept in the
// client's jar and sent back on every request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. If it has no cookie
// jar, one is attached.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithCookieJar sets the jar used for credential cookies.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) { c.httpClient.Jar = jar }
}

// WithLogger enables request logging.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a new API client for baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(c)
	}
	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("client.New: cookie jar: %w", err)
		}
		c.httpClient.Jar = jar
	}
	return c, nil
}

// BaseURL returns the configured origin.
func (c *Client) BaseURL() string { return c.baseURL }

// BuildURL resolves path against the base URL. Absolute http(s) URLs pass
// through untouched; a doubled "/api" boundary is collapsed.
func (c *Client) BuildURL(path string) string {
	if absoluteURL.MatchString(path) {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return repeatedAPI.ReplaceAllString(c.baseURL+path, "/api")
}

// Cookies returns the cookies the jar holds for the base URL.
func (c *Client) Cookies() []*http.Cookie {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil
	}
	return c.httpClient.Jar.Cookies(u)
}

// SetCookies seeds the jar for the base URL, e.g. from a saved session.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	u, err := url.Parse(c.baseURL)
	if err != nil || len(cookies) == 0 {
		return
	}
	c.httpClient.Jar.SetCookies(u, cookies)
}

// Request performs one API call and returns the parsed body: nil for 204,
// the decoded JSON value for JSON responses, the raw text otherwise. Numbers
// in JSON bodies decode as json.Number.
//
// Non-2xx responses return *HTTPError.
func (c *Client) Request(ctx context.Context, method, path string, body any) (any, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	target := c.BuildURL(path)
	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set("X-Request-Id", reqID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.DebugContext(ctx, "http.request.failed",
			slog.String("method", method), slog.String("url", target),
			slog.String("request_id", reqID), slog.Any("err", err))
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	c.log.DebugContext(ctx, "http.request.done",
		slog.String("method", method), slog.String("url", target),
		slog.String("request_id", reqID), slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, readHTTPError(resp)
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if !isJSON(resp) {
		return string(data), nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	v, err := decodeJSON(data)
	if err != nil {
		return string(data), nil
	}
	return v, nil
}

func isJSON(resp *http.Response) bool {
	mt, err := contenttype.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mt.Matches(jsonMediaType)
}

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func readHTTPError(resp *http.Response) error {
	httpErr := &HTTPError{StatusCode: resp.StatusCode, Status: statusLine(resp)}
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if readErr != nil {
		httpErr.Message = fmt.Sprintf("failed to read body: %v", readErr)
		return httpErr
	}
	var payload ErrorPayload
	if json.Unmarshal(respBody, &payload) == nil {
		httpErr.Message = payload.Message
		if payload.Error != "" {
			httpErr.Cause = &payload
		}
		return httpErr
	}
	httpErr.Message = strings.TrimSpace(string(respBody))
	return httpErr
}

func statusLine(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return fmt.Sprintf("%d %s", resp.StatusCode, text)
	}
	return fmt.Sprintf("%d", resp.StatusCode)
}
