package tour

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the LBRY daemon proxy. Every request carries the shared
// access token as a query parameter.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	logger      *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a daemon client.
func NewClient(baseURL, accessToken string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// DaemonError is a non-2xx HTTP response from the daemon.
type DaemonError struct {
	StatusCode int
	Body       []byte
}

func (e *DaemonError) Error() string {
	return fmt.Sprintf("daemon http error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// RPCError is a well-formed daemon response that carries an "error" field.
type RPCError struct {
	Detail json.RawMessage
}

func (e *RPCError) Error() string {
	return "daemon rpc error: " + string(e.Detail)
}

// UploadResult is the images endpoint response.
type UploadResult struct {
	Status   string `json:"status"`
	Filename string `json:"filename"`
}

// OK reports whether the upload was accepted.
func (r *UploadResult) OK() bool {
	return r.Status == "ok"
}

// Call issues an RPC as a GET with params in the query string and returns
// the raw JSON response.
func (c *Client) Call(ctx context.Context, params url.Values) ([]byte, error) {
	body, err := c.do(ctx, http.MethodGet, "", params, nil)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if detail, ok := fields["error"]; ok {
		return nil, &RPCError{Detail: detail}
	}

	return body, nil
}

// UploadImage PUTs the image path to the daemon's images endpoint.
func (c *Client) UploadImage(ctx context.Context, filePath string) (*UploadResult, error) {
	body, err := c.do(ctx, http.MethodPut, "/images.php", nil, strings.NewReader(filePath))
	if err != nil {
		return nil, err
	}

	var res UploadResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("unmarshal upload response: %w", err)
	}
	return &res, nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, payload io.Reader) ([]byte, error) {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("access_token", c.accessToken)

	fullURL := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, fullURL, payload)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "text/plain")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &DaemonError{StatusCode: resp.StatusCode, Body: body}
	}

	c.logger.Debug("daemon request", "method", method, "path", path, "status", resp.StatusCode)
	return body, nil
}
