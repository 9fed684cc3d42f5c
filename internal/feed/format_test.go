package feed

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEventURL(t *testing.T) {
	ev := &Event{
		Actor: Actor{Login: "kauffj"},
		Repo:  Repo{Name: "lbryio/lbry-sdk"},
	}

	tests := []struct {
		role Role
		want string
	}{
		{RoleActor, "https://github.com/kauffj"},
		{RoleRepo, "https://github.com/lbryio/lbry-sdk"},
		{Role("org"), ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := EventURL(tt.role, ev); got != tt.want {
				t.Errorf("EventURL(%s) = %q, want %q", tt.role, got, tt.want)
			}
		})
	}
}

func TestDescribeEvent(t *testing.T) {
	tests := []struct {
		typ     string
		payload string
		want    string
	}{
		{"PushEvent", `{"ref":"refs/heads/master"}`, "pushed to master in"},
		{"CreateEvent", `{"ref_type":"branch","ref":"fix-feed"}`, "created branch fix-feed in"},
		{"CreateEvent", `{"ref_type":"repository"}`, "created the repository"},
		{"DeleteEvent", `{"ref_type":"tag","ref":"v1"}`, "deleted tag v1 in"},
		{"IssuesEvent", `{"action":"opened","issue":{"number":12}}`, "opened issue #12 in"},
		{"IssueCommentEvent", `{"action":"created","issue":{"number":7}}`, "commented on issue #7 in"},
		{"PullRequestEvent", `{"action":"opened","pull_request":{"number":3}}`, "opened pull request #3 in"},
		{"PullRequestEvent", `{"action":"closed","pull_request":{"number":3,"merged":true}}`, "merged pull request #3 in"},
		{"PullRequestEvent", `{"action":"closed","pull_request":{"number":4,"merged":false}}`, "closed pull request #4 in"},
		{"PullRequestReviewEvent", `{"pull_request":{"number":9}}`, "reviewed pull request #9 in"},
		{"ReleaseEvent", `{"action":"published","release":{"tag_name":"v0.30.0"}}`, "published release v0.30.0 in"},
		{"WatchEvent", `{"action":"started"}`, "starred"},
		{"ForkEvent", `{}`, "forked"},
		{"SponsorshipEvent", ``, "was active in"},
	}

	for _, tt := range tests {
		t.Run(tt.typ+"/"+tt.want, func(t *testing.T) {
			ev := &Event{Type: tt.typ, Payload: json.RawMessage(tt.payload)}
			if got := DescribeEvent(ev); got != tt.want {
				t.Errorf("DescribeEvent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLastUpdated(t *testing.T) {
	// 19:05:09 UTC is 3:05:09 pm at UTC-4.
	now := time.Date(2026, 10, 17, 19, 5, 9, 0, time.UTC)
	date, clock := lastUpdated(now)
	if date != "2026·10·17" {
		t.Errorf("date = %q", date)
	}
	if clock != "3:05:09 pm" {
		t.Errorf("clock = %q", clock)
	}

	// Just after midnight UTC is still the previous day.
	date, _ = lastUpdated(time.Date(2026, 10, 18, 2, 0, 0, 0, time.UTC))
	if date != "2026·10·17" {
		t.Errorf("date = %q, want previous day", date)
	}
}

func TestRelativeDate(t *testing.T) {
	if got := relativeDate(baseTime.Add(-3*time.Hour), baseTime); got != "3 hours ago" {
		t.Errorf("relativeDate = %q, want %q", got, "3 hours ago")
	}
}

func TestActorName(t *testing.T) {
	if got := (Actor{Login: "a", DisplayLogin: "b"}).Name(); got != "b" {
		t.Errorf("Name() = %q, want display login", got)
	}
	if got := (Actor{Login: "a"}).Name(); got != "a" {
		t.Errorf("Name() = %q, want login", got)
	}
}
