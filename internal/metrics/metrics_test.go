package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/gexbot-levels/internal/gamma"
)

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("failed to read metrics: %v", err)
	}
	return string(body)
}

func TestRegistry_Observations(t *testing.T) {
	r := NewRegistry()

	r.ObserveRequest("/v1/levels", 200, 15*time.Millisecond)
	r.ObserveRequest("/v1/levels", 400, time.Millisecond)
	r.ObserveAnalysis(gamma.RegimeShortGamma, 3)
	r.ObserveAnalysisError("invalid_price")
	r.ObserveAlert(gamma.LevelPutWall)
	r.RateLimited.Inc()

	out := scrape(t, r)
	for _, want := range []string{
		`gexlevels_http_requests_total{route="/v1/levels",status="200"} 1`,
		`gexlevels_http_requests_total{route="/v1/levels",status="400"} 1`,
		`gexlevels_analyses_total{regime="short_gamma"} 1`,
		`gexlevels_analysis_strikes_count 1`,
		`gexlevels_analysis_errors_total{reason="invalid_price"} 1`,
		`gexlevels_alerts_triggered_total{level="put_wall"} 1`,
		`gexlevels_http_rate_limited_total 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestRegistry_Independent(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()

	a.ObserveAlert("call_wall")
	if strings.Contains(scrape(t, b), `level="call_wall"`) {
		t.Error("registries should not share state")
	}
}
