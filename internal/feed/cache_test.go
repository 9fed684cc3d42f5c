package feed

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"lbry-tech/internal/alert"
)

func newTestCache(t *testing.T, store Store, src *fakeSource) (*Cache, *recordSink) {
	t.Helper()
	sink := &recordSink{}
	c := NewCache(store, src, "lbryio",
		WithClock(func() time.Time { return baseTime }),
		WithAlerts(alert.NewReporter(sink, nil)),
	)
	t.Cleanup(c.Wait)
	return c, sink
}

func storeMembers(t *testing.T, s Store, events []Event) {
	t.Helper()
	for i := range events {
		member, _ := events[i].Canonical()
		score, _ := events[i].Score()
		if err := s.AddWithScore(context.Background(), member, score); err != nil {
			t.Fatalf("AddWithScore failed: %v", err)
		}
	}
}

func TestCache_RenderUnavailable(t *testing.T) {
	src := &fakeSource{}
	c, _ := newTestCache(t, nil, src)

	if _, err := c.Render(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
	if _, err := c.Refresh(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
	if src.callCount() != 0 {
		t.Errorf("source called %d times, want 0", src.callCount())
	}
}

func TestCache_RenderNewestFirst(t *testing.T) {
	store, _ := newTestStore(t)
	// Insertion order is deliberately scrambled.
	storeMembers(t, store, makeEvents(5, 12, 1, 9, 3, 11, 7, 2, 10, 4, 8, 6))

	c, _ := newTestCache(t, store, &fakeSource{})
	html, err := c.Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if n := strings.Count(html, "<div class='github-feed__event'>"); n != RenderCount {
		t.Errorf("rendered %d items, want %d", n, RenderCount)
	}

	last := -1
	for id := 12; id >= 3; id-- {
		idx := strings.Index(html, "https://avatars.example/"+strconv.Itoa(id)+`"`)
		if idx < 0 {
			t.Fatalf("event %d missing from render", id)
		}
		if idx < last {
			t.Errorf("event %d rendered out of order", id)
		}
		last = idx
	}
	for _, id := range []int{1, 2} {
		if strings.Contains(html, fmt.Sprintf("actor-%02d", id)) {
			t.Errorf("event %d should not be rendered", id)
		}
	}

	for _, want := range []string{
		"<h3>GitHub</h3>",
		"Last updated: 2026·10·17 at 8:00:00 am EST",
		"https://github.com/actor-12",
		"https://github.com/lbryio/lbry",
		"starred",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q", want)
		}
	}
}

func TestCache_RenderTriggersRefresh(t *testing.T) {
	store, _ := newTestStore(t)
	src := &fakeSource{events: makeEvents(1)}
	c, _ := newTestCache(t, store, src)

	if _, err := c.Render(context.Background()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	c.Wait()

	if src.callCount() != 1 {
		t.Errorf("source called %d times, want 1", src.callCount())
	}
	if n, _ := store.Len(context.Background()); n != 1 {
		t.Errorf("stored = %d, want 1", n)
	}
}

func TestCache_RenderSkipsCorruptEntries(t *testing.T) {
	store, _ := newTestStore(t)
	storeMembers(t, store, makeEvents(1, 2))
	store.AddWithScore(context.Background(), "{not json", 3)

	c, _ := newTestCache(t, store, &fakeSource{})
	html, err := c.Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if n := strings.Count(html, "<div class='github-feed__event'>"); n != 2 {
		t.Errorf("rendered %d items, want 2", n)
	}
}

func TestCache_RefreshDeduplicates(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	src := &fakeSource{events: makeEvents(3, 2, 2, 1)}
	c, sink := newTestCache(t, store, src)

	res, err := c.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if res.Fetched != 4 || res.Added != 3 {
		t.Errorf("result = %+v, want fetched 4 added 3", res)
	}

	// Same page again adds nothing.
	res, err = c.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if res.Added != 0 {
		t.Errorf("second refresh added %d, want 0", res.Added)
	}
	if n, _ := store.Len(ctx); n != 3 {
		t.Errorf("stored = %d, want 3", n)
	}
	if sink.count() != 0 {
		t.Errorf("alerts = %d, want 0", sink.count())
	}
}

func TestCache_RefreshKeepsOneEntryPerEventID(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)
	src := &fakeSource{events: makeEvents(5)}
	c, _ := newTestCache(t, store, src)

	if _, err := c.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	changed := makeEvent(5)
	changed.Actor.AvatarURL = "https://avatars.example/new-5"
	src.set([]Event{changed}, nil)

	res, err := c.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if res.Added != 0 {
		t.Errorf("added = %d, want 0", res.Added)
	}

	members, err := mr.ZMembers(DefaultKey)
	if err != nil {
		t.Fatalf("ZMembers failed: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("stored %d entries for event 5, want 1: %v", len(members), members)
	}
	if strings.Contains(members[0], "new-5") {
		t.Error("stored entry was replaced; want the first copy kept")
	}
}

func TestCache_RefreshCapsStore(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)
	src := &fakeSource{}
	c, _ := newTestCache(t, store, src)

	// Eight overlapping pages of 20 events.
	for page := 0; page < 8; page++ {
		ids := make([]int, 0, PageSize)
		for i := PageSize - 1; i >= 0; i-- {
			ids = append(ids, 100+page*10+i)
		}
		src.set(makeEvents(ids...), nil)

		if _, err := c.Refresh(ctx); err != nil {
			t.Fatalf("Refresh %d failed: %v", page, err)
		}

		n, _ := store.Len(ctx)
		if n > MaxStored {
			t.Fatalf("after page %d stored = %d, want <= %d", page, n, MaxStored)
		}
	}

	members, _ := mr.ZMembers(DefaultKey)
	if len(members) != MaxStored {
		t.Fatalf("stored = %d, want %d", len(members), MaxStored)
	}
	seen := map[string]bool{}
	for _, m := range members {
		ev, err := decodeEvent(m)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if seen[ev.ID.String()] {
			t.Errorf("duplicate event id %s", ev.ID)
		}
		seen[ev.ID.String()] = true
	}
	// Highest id overall is 100+70+19.
	if !seen["189"] || seen["100"] {
		t.Errorf("kept the wrong events: %v", seen)
	}
}

func TestCache_RefreshSourceError(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	storeMembers(t, store, makeEvents(1, 2))

	src := &fakeSource{err: errors.New("rate limited")}
	c, sink := newTestCache(t, store, src)

	if _, err := c.Refresh(ctx); err == nil {
		t.Fatal("expected error")
	}
	if sink.count() != 1 {
		t.Errorf("alerts = %d, want 1", sink.count())
	}
	if n, _ := store.Len(ctx); n != 2 {
		t.Errorf("stored = %d, want prior 2", n)
	}
}

type failingStore struct {
	Store
	failAdds int
	adds     int
}

func (s *failingStore) AddWithScore(ctx context.Context, member string, score float64) error {
	s.adds++
	if s.adds > s.failAdds {
		return errors.New("connection reset")
	}
	return s.Store.AddWithScore(ctx, member, score)
}

func TestCache_RefreshStoreErrorAborts(t *testing.T) {
	ctx := context.Background()
	redisStore, _ := newTestStore(t)
	store := &failingStore{Store: redisStore, failAdds: 2}
	src := &fakeSource{events: makeEvents(5, 4, 3, 2, 1)}
	c, sink := newTestCache(t, store, src)

	res, err := c.Refresh(ctx)
	if err == nil {
		t.Fatal("expected error")
	}
	if res.Added != 2 {
		t.Errorf("added = %d, want 2", res.Added)
	}
	if store.adds != 3 {
		t.Errorf("add attempts = %d, want 3 (abort after first failure)", store.adds)
	}
	if sink.count() != 1 {
		t.Errorf("alerts = %d, want 1", sink.count())
	}
	if n, _ := redisStore.Len(ctx); n != 2 {
		t.Errorf("stored = %d, want 2", n)
	}
}

func TestCache_ConcurrentRefreshesShareOneFetch(t *testing.T) {
	store, _ := newTestStore(t)
	src := &fakeSource{
		events:  makeEvents(1, 2),
		gate:    make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	c, _ := newTestCache(t, store, src)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Refresh(context.Background())
	}()
	<-src.entered

	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Refresh(context.Background())
	}()
	// Give the second caller time to join the in-flight refresh.
	time.Sleep(50 * time.Millisecond)
	close(src.gate)
	wg.Wait()

	if src.callCount() != 1 {
		t.Errorf("source called %d times, want 1", src.callCount())
	}
}
