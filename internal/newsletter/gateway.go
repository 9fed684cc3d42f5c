// Package newsletter forwards homepage subscription requests to the
// mailing-list API.
package newsletter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"lbry-tech/internal/alert"
	"lbry-tech/internal/message"
	"lbry-tech/internal/validate"
)

// Selector is the element the subscription form renders replies into.
const Selector = "#emailMessage"

// Replies shown under the form.
const (
	ReplyInvalidEmail      = "Your email is invalid"
	ReplyThanks            = "Thank you! Please confirm subscription in your inbox."
	ReplyAlreadySubscribed = "You have already subscribed!"
	ReplyUnreachable       = "Something is terribly wrong"
	ReplyFailed            = "Something went wrong"
)

// StatusError is a non-2xx response from the subscription API.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("subscription api error %d: %s", e.StatusCode, e.Body)
}

type apiResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Gateway validates addresses and relays them to the subscription API.
type Gateway struct {
	apiURL     string
	httpClient *http.Client
	alerts     *alert.Reporter
	logger     *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.httpClient.Timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *Gateway) {
		g.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

func NewGateway(apiURL string, alerts *alert.Reporter, opts ...Option) *Gateway {
	g := &Gateway{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if alerts == nil {
		alerts = alert.NewReporter(nil, g.logger)
	}
	g.alerts = alerts
	return g
}

// Subscribe handles one "subscribe" message. Every path answers the
// visitor exactly once.
func (g *Gateway) Subscribe(ctx context.Context, email string, out message.Responder) {
	if !validate.Email(email) {
		out.Send(message.HTMLUpdate(Selector, ReplyInvalidEmail))
		return
	}

	cause := email + " interacted with the form"

	res, err := g.post(ctx, email)
	var statusErr *StatusError
	switch {
	case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusConflict:
		g.alerts.Report(ctx, alert.KindNewsletter, string(statusErr.Body), cause)
		out.Send(message.HTMLUpdate(Selector, ReplyAlreadySubscribed))

	case errors.Is(err, errUnparseable):
		g.alerts.Report(ctx, alert.KindNewsletter, `¯\_(ツ)_/¯ This should be an unreachable error`, cause)
		out.Send(message.HTMLUpdate(Selector, ReplyUnreachable))

	case err != nil:
		g.alerts.Report(ctx, alert.KindNewsletter, err, cause)
		out.Send(message.HTMLUpdate(Selector, ReplyFailed))

	case !res.Success:
		g.alerts.Report(ctx, alert.KindNewsletter, res.Error, cause)
		reply := res.Error
		if reply == "" {
			reply = ReplyFailed
		}
		out.Send(message.HTMLUpdate(Selector, reply))

	default:
		g.logger.Info("newsletter subscription requested")
		out.Send(message.HTMLUpdate(Selector, ReplyThanks))
	}
}

var errUnparseable = errors.New("empty or unparseable response body")

func (g *Gateway) post(ctx context.Context, email string) (*apiResponse, error) {
	fullURL := g.apiURL + "?" + url.Values{"email": {email}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: body}
	}

	var res *apiResponse
	if err := json.Unmarshal(body, &res); err != nil || res == nil {
		return nil, errUnparseable
	}
	return res, nil
}
