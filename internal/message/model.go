package message

import "encoding/json"

// ---------------------------------------------
// 📥 Inbound (browser -> server)
// ---------------------------------------------

// Tag is the value of the "message" field on every frame.
type Tag string

const (
	TagFetchMetadata  Tag = "fetch metadata"
	TagHomepageLanded Tag = "landed on homepage"
	TagSubscribe      Tag = "subscribe"
	TagNotification   Tag = "notification"
	TagUpdatedHTML    Tag = "updated html"
)

// NotificationError is the only notification type the client renders.
const NotificationError = "error"

// Inbound is the JSON the frontend SENDS to us.
// Only the fields relevant to the tag are populated.
type Inbound struct {
	Message Tag `json:"message"`

	// fetch metadata
	Step   int          `json:"step,omitempty"`
	Claim  string       `json:"claim,omitempty"`
	Method string       `json:"method,omitempty"`
	Data   *PublishData `json:"data,omitempty"`

	// subscribe
	Email string `json:"email,omitempty"`
}

// TourRequest is the payload of a "fetch metadata" message.
type TourRequest struct {
	Step   int
	Claim  string
	Method string
	Data   *PublishData
}

// TourRequest extracts the tour payload from the inbound frame.
func (m *Inbound) TourRequest() TourRequest {
	return TourRequest{
		Step:   m.Step,
		Claim:  m.Claim,
		Method: m.Method,
		Data:   m.Data,
	}
}

// PublishData is only used when method is "publish".
type PublishData struct {
	Description string `json:"description"`
	FilePath    string `json:"file_path"`
	Language    string `json:"language"`
	License     string `json:"license"`
	Name        string `json:"name"`
	NSFW        bool   `json:"nsfw"`
	Title       string `json:"title"`
}

// Decode parses a raw socket frame.
func Decode(raw []byte) (*Inbound, error) {
	var m Inbound
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ---------------------------------------------
// 📤 Outbound (server -> browser)
// ---------------------------------------------

// Envelope is either a notification (Details set) or an html update
// (Selector + HTML set). Use the constructors below.
type Envelope struct {
	Message  Tag    `json:"message"`
	Type     string `json:"type,omitempty"`
	Details  string `json:"details,omitempty"`
	Selector string `json:"selector,omitempty"`
	HTML     string `json:"html,omitempty"`
}

// Notification builds an error toast envelope.
func Notification(details string) Envelope {
	return Envelope{
		Message: TagNotification,
		Type:    NotificationError,
		Details: details,
	}
}

// HTMLUpdate builds an envelope that replaces the contents of selector.
func HTMLUpdate(selector, html string) Envelope {
	return Envelope{
		Message:  TagUpdatedHTML,
		Selector: selector,
		HTML:     html,
	}
}

// Responder is the write side of one socket connection.
// Send must be safe to call after the connection has closed.
type Responder interface {
	Send(env Envelope) error
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(Envelope) error

func (f ResponderFunc) Send(env Envelope) error {
	return f(env)
}
