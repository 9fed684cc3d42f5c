package feed

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event is one unit of organization activity from the upstream API.
type Event struct {
	ID        json.Number     `json:"id"`
	Type      string          `json:"type"`
	Actor     Actor           `json:"actor"`
	Repo      Repo            `json:"repo"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Public    bool            `json:"public"`
	CreatedAt time.Time       `json:"created_at"`
}

type Actor struct {
	ID           int64  `json:"id"`
	Login        string `json:"login"`
	DisplayLogin string `json:"display_login,omitempty"`
	URL          string `json:"url"`
	AvatarURL    string `json:"avatar_url"`
}

// Name is the handle shown in the feed.
func (a Actor) Name() string {
	if a.DisplayLogin != "" {
		return a.DisplayLogin
	}
	return a.Login
}

type Repo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"` // owner/repo
	URL  string `json:"url"`
}

// Score orders events in the store. Upstream ids increase monotonically,
// so the id doubles as a recency rank.
func (e *Event) Score() (float64, error) {
	f, err := e.ID.Float64()
	if err != nil {
		return 0, fmt.Errorf("event id %q: %w", e.ID, err)
	}
	return f, nil
}

// Canonical is the serialized form used as the sorted-set member. The same
// event always serializes to the same bytes, which makes it the identity
// for duplicate checks.
func (e *Event) Canonical() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeEvent parses a stored member.
func decodeEvent(member string) (*Event, error) {
	var ev Event
	if err := json.Unmarshal([]byte(member), &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// payload holds the handful of fields the descriptions need.
type payload struct {
	Action  string `json:"action"`
	Ref     string `json:"ref"`
	RefType string `json:"ref_type"`

	Issue *struct {
		Number int `json:"number"`
	} `json:"issue"`

	PullRequest *struct {
		Number int  `json:"number"`
		Merged bool `json:"merged"`
	} `json:"pull_request"`

	Release *struct {
		TagName string `json:"tag_name"`
	} `json:"release"`
}

func (e *Event) details() payload {
	var p payload
	if len(e.Payload) > 0 {
		json.Unmarshal(e.Payload, &p)
	}
	return p
}
