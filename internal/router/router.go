// Package router dispatches inbound socket messages to their handlers.
package router

import (
	"context"
	"errors"
	"log/slog"

	"lbry-tech/internal/feed"
	"lbry-tech/internal/message"
	"lbry-tech/internal/metrics"
)

// FeedSelector is the homepage element the activity feed renders into.
const FeedSelector = "#github-feed"

// TourHandler serves "fetch metadata".
type TourHandler interface {
	FetchMetadata(ctx context.Context, req message.TourRequest, out message.Responder)
}

// FeedRenderer serves "landed on homepage".
type FeedRenderer interface {
	Render(ctx context.Context) (string, error)
}

// Subscriber serves "subscribe".
type Subscriber interface {
	Subscribe(ctx context.Context, email string, out message.Responder)
}

// Router holds no per-connection state; one instance serves every socket.
type Router struct {
	tour       TourHandler
	feed       FeedRenderer
	newsletter Subscriber
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// New creates a Router. m may be nil. A nil tour handler drops tour
// messages, for deployments without daemon credentials.
func New(tour TourHandler, feed FeedRenderer, newsletter Subscriber, m *metrics.Metrics, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		tour:       tour,
		feed:       feed,
		newsletter: newsletter,
		metrics:    m,
		logger:     logger,
	}
}

// Route decodes one frame and runs the matching handler to completion.
// Undecodable frames and unknown tags are logged and dropped.
func (r *Router) Route(ctx context.Context, raw []byte, out message.Responder) {
	msg, err := message.Decode(raw)
	if err != nil {
		r.logger.Warn("failed to decode socket message", "error", err)
		r.metrics.MessageReceived("invalid")
		return
	}

	switch msg.Message {
	case message.TagFetchMetadata:
		r.metrics.MessageReceived(string(msg.Message))
		if r.tour == nil {
			r.logger.Debug("tour disabled, dropping message")
			return
		}
		r.tour.FetchMetadata(ctx, msg.TourRequest(), out)

	case message.TagHomepageLanded:
		r.metrics.MessageReceived(string(msg.Message))
		r.renderFeed(ctx, out)

	case message.TagSubscribe:
		r.metrics.MessageReceived(string(msg.Message))
		r.newsletter.Subscribe(ctx, msg.Email, out)

	default:
		r.metrics.MessageReceived("unknown")
		r.logger.Info("ignoring socket message", "message", msg.Message, "raw", string(raw))
	}
}

func (r *Router) renderFeed(ctx context.Context, out message.Responder) {
	html, err := r.feed.Render(ctx)
	if errors.Is(err, feed.ErrUnavailable) {
		return
	}
	if err != nil {
		r.logger.Warn("failed to render feed", "error", err)
		return
	}
	out.Send(message.HTMLUpdate(FeedSelector, html))
}
