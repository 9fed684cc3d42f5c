package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New("lbrytech")

	m.MessageReceived("subscribe")
	m.MessageReceived("subscribe")
	m.MessageReceived("unknown")
	m.ResponseSent("updated html")
	m.ConnectionOpened()
	m.ConnectionOpened()
	m.ConnectionClosed()
	m.ResponseDropped()

	if got := testutil.ToFloat64(m.messages.WithLabelValues("subscribe")); got != 2 {
		t.Errorf("subscribe messages = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.connsLive); got != 1 {
		t.Errorf("live connections = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.connsTotal); got != 2 {
		t.Errorf("total connections = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.dropped); got != 1 {
		t.Errorf("dropped = %v, want 1", got)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.MessageReceived("x")
	m.ResponseSent("x")
	m.ResponseDropped()
	m.ConnectionOpened()
	m.ConnectionClosed()
}

func TestMetrics_Handler(t *testing.T) {
	m := New("lbrytech")
	m.MessageReceived("landed on homepage")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `lbrytech_socket_messages_total{tag="landed on homepage"} 1`) {
		t.Errorf("metrics output missing counter:\n%s", body)
	}
}
