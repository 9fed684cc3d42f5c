package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var baseTime = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func makeEvent(id int) Event {
	return Event{
		ID:   json.Number(strconv.Itoa(id)),
		Type: "WatchEvent",
		Actor: Actor{
			Login:     fmt.Sprintf("actor-%02d", id),
			AvatarURL: fmt.Sprintf("https://avatars.example/%d", id),
		},
		Repo:      Repo{Name: "lbryio/lbry"},
		Public:    true,
		CreatedAt: baseTime.Add(time.Duration(id) * time.Minute),
	}
}

func makeEvents(ids ...int) []Event {
	events := make([]Event, 0, len(ids))
	for _, id := range ids {
		events = append(events, makeEvent(id))
	}
	return events
}

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, ""), mr
}

type fakeSource struct {
	mu     sync.Mutex
	events []Event
	err    error
	calls  int

	// gate, when set, blocks OrgEvents until closed.
	gate    chan struct{}
	entered chan struct{}
}

func (s *fakeSource) OrgEvents(ctx context.Context, org string, perPage int) ([]Event, error) {
	s.mu.Lock()
	s.calls++
	gate, entered := s.gate, s.entered
	events, err := s.events, s.err
	s.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	return events, err
}

func (s *fakeSource) set(events []Event, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events, s.err = events, err
}

func (s *fakeSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recordSink struct {
	mu    sync.Mutex
	texts []string
}

func (s *recordSink) Alert(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	return nil
}

func (s *recordSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.texts)
}
