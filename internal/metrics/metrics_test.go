package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-medical-booking/internal/domain/entity"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			matched := 0
			for _, pair := range metric.GetLabel() {
				if labels[pair.GetName()] == pair.GetValue() {
					matched++
				}
			}
			if matched == len(labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveLogin("success")
	c.ObserveLogin("success")
	c.ObserveLogin("invalid_credentials")
	c.ObserveProfileFetch("found", 20*time.Millisecond)
	c.ObserveDiscardedPublication("session_event")
	c.ObserveSessionEvent(entity.SessionEventSignedOut)
	c.ObserveGateDecision("/doctor", "redirect_pending_approval")
	c.ObserveRateLimited("/api/v1/auth/token")

	tests := []struct {
		name   string
		labels map[string]string
		want   float64
	}{
		{"medibook_logins_total", map[string]string{"outcome": "success"}, 2},
		{"medibook_logins_total", map[string]string{"outcome": "invalid_credentials"}, 1},
		{"medibook_profile_fetches_total", map[string]string{"outcome": "found"}, 1},
		{"medibook_session_publications_discarded_total", map[string]string{"trigger": "session_event"}, 1},
		{"medibook_session_events_total", map[string]string{"type": string(entity.SessionEventSignedOut)}, 1},
		{"medibook_gate_decisions_total", map[string]string{"route": "/doctor", "outcome": "redirect_pending_approval"}, 1},
		{"medibook_rate_limited_requests_total", map[string]string{"route": "/api/v1/auth/token"}, 1},
	}

	for _, tt := range tests {
		if got := counterValue(t, reg, tt.name, tt.labels); got != tt.want {
			t.Errorf("%s%v = %v, want %v", tt.name, tt.labels, got, tt.want)
		}
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.ObserveLogin("success")

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `medibook_logins_total{outcome="success"} 1`) {
		t.Errorf("scrape output missing login counter:\n%s", w.Body.String())
	}
}
