package message

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecode(t *testing.T) {
	raw := `{"message":"fetch metadata","step":2,"method":"publish","data":{"name":"meme","file_path":"a.png","nsfw":true}}`

	m, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	want := TourRequest{
		Step:   2,
		Method: "publish",
		Data:   &PublishData{Name: "meme", FilePath: "a.png", NSFW: true},
	}
	if diff := cmp.Diff(want, m.TourRequest()); diff != "" {
		t.Errorf("TourRequest mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_Invalid(t *testing.T) {
	if _, err := Decode([]byte("{not json")); err == nil {
		t.Error("expected error for malformed frame")
	}
}

func TestEnvelope_ExactlyOneBody(t *testing.T) {
	tests := []struct {
		name string
		env  Envelope
		want map[string]any
	}{
		{
			name: "notification",
			env:  Notification("Invalid claim ID for tutorial"),
			want: map[string]any{
				"message": "notification",
				"type":    "error",
				"details": "Invalid claim ID for tutorial",
			},
		},
		{
			name: "html update",
			env:  HTMLUpdate("#emailMessage", "Your email is invalid"),
			want: map[string]any{
				"message":  "updated html",
				"selector": "#emailMessage",
				"html":     "Your email is invalid",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.env)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			var got map[string]any
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("wire shape mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
