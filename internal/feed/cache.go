// Package feed keeps a short, de-duplicated list of an organization's
// recent public activity and renders it as HTML for the homepage.
package feed

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"lbry-tech/internal/alert"
)

const (
	// PageSize is how many events one refresh pulls upstream.
	PageSize = 20
	// MaxStored caps the sorted set after every refresh.
	MaxStored = 50
	// RenderCount is how many events the homepage shows.
	RenderCount = 10
)

// ErrUnavailable means no store is configured. Callers treat it as a no-op.
var ErrUnavailable = errors.New("feed store unavailable")

// RefreshResult summarizes one refresh.
type RefreshResult struct {
	Fetched int `json:"fetched"`
	Added   int `json:"added"`
}

// Cache renders the stored feed and refreshes it from the upstream source.
type Cache struct {
	store  Store
	source Source
	org    string
	alerts *alert.Reporter
	logger *slog.Logger
	now    func() time.Time

	group singleflight.Group
	bg    sync.WaitGroup
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithAlerts sets the alert reporter.
func WithAlerts(r *alert.Reporter) Option {
	return func(c *Cache) {
		c.alerts = r
	}
}

// WithCacheLogger sets the logger.
func WithCacheLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// NewCache creates a Cache. A nil store makes every operation a no-op.
func NewCache(store Store, source Source, org string, opts ...Option) *Cache {
	c := &Cache{
		store:  store,
		source: source,
		org:    org,
		logger: slog.Default(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.alerts == nil {
		c.alerts = alert.NewReporter(nil, c.logger)
	}

	return c
}

// Available reports whether a store is configured.
func (c *Cache) Available() bool {
	return c.store != nil
}

// Render returns the homepage feed fragment for the newest events and
// kicks off a background refresh.
func (c *Cache) Render(ctx context.Context) (string, error) {
	if c.store == nil {
		return "", ErrUnavailable
	}

	members, err := c.store.RangeByRank(ctx, 0, RenderCount-1)
	if err != nil {
		return "", err
	}

	events := make([]*Event, 0, len(members))
	for _, m := range members {
		ev, err := decodeEvent(m)
		if err != nil {
			c.logger.Warn("skipping undecodable feed entry", "error", err)
			continue
		}
		events = append(events, ev)
	}

	html, err := renderFeed(events, c.now())
	if err != nil {
		return "", err
	}

	c.RefreshAsync(ctx)
	return html, nil
}

// RefreshAsync starts a refresh that outlives ctx's cancellation.
func (c *Cache) RefreshAsync(ctx context.Context) {
	c.bg.Add(1)
	go func() {
		defer c.bg.Done()
		c.Refresh(context.WithoutCancel(ctx))
	}()
}

// Wait blocks until background refreshes finish.
func (c *Cache) Wait() {
	c.bg.Wait()
}

// Refresh pulls the newest events and inserts the ones not yet stored.
// Concurrent calls share a single in-flight refresh. Failures are reported
// to the alert sink and leave the stored feed as it was.
func (c *Cache) Refresh(ctx context.Context) (RefreshResult, error) {
	if c.store == nil {
		return RefreshResult{}, ErrUnavailable
	}

	v, err, _ := c.group.Do("refresh", func() (any, error) {
		res, err := c.refresh(ctx)
		if err != nil {
			c.alerts.Report(ctx, alert.KindFeed, err, "GitHub feed refresh")
		}
		return res, err
	})
	return v.(RefreshResult), err
}

// refresh checks and inserts one event at a time. The store has no
// transactions, so each check-then-write must finish before the next.
func (c *Cache) refresh(ctx context.Context) (res RefreshResult, err error) {
	events, err := c.source.OrgEvents(ctx, c.org, PageSize)
	if err != nil {
		return res, err
	}
	res.Fetched = len(events)

	defer func() {
		if trimErr := c.store.TrimByRank(ctx, 0, -(MaxStored + 1)); trimErr != nil && err == nil {
			err = trimErr
		}
	}()

	seen := make(map[string]bool, len(events))
	for i := range events {
		ev := &events[i]
		if seen[ev.ID.String()] {
			continue
		}
		seen[ev.ID.String()] = true

		score, err := ev.Score()
		if err != nil {
			c.logger.Warn("skipping feed event", "error", err)
			continue
		}
		member, err := ev.Canonical()
		if err != nil {
			c.logger.Warn("skipping feed event", "id", ev.ID, "error", err)
			continue
		}

		_, exists, err := c.store.RankOf(ctx, member)
		if err != nil {
			return res, err
		}
		if exists {
			continue
		}
		// The score is the event id, so an event whose content changed
		// upstream is still the same event.
		exists, err = c.store.HasScore(ctx, score)
		if err != nil {
			return res, err
		}
		if exists {
			continue
		}
		if err := c.store.AddWithScore(ctx, member, score); err != nil {
			return res, err
		}
		res.Added++
	}

	c.logger.Info("feed refreshed", "org", c.org, "fetched", res.Fetched, "added", res.Added)
	return res, nil
}
