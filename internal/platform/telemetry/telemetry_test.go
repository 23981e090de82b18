package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func serve(e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func newEcho(p *Provider) *echo.Echo {
	e := echo.New()
	e.Use(p.MetricsMiddleware())
	e.GET("/api/v1/calls/:id", func(c echo.Context) error {
		if c.Param("id") == "missing" {
			return echo.NewHTTPError(http.StatusNotFound, "call not found")
		}
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", p.PrometheusHandler())
	return e
}

func TestMetricsMiddleware_RecordsRoutePattern(t *testing.T) {
	p := NewProvider(Config{})
	e := newEcho(p)

	serve(e, http.MethodGet, "/api/v1/calls/1")
	serve(e, http.MethodGet, "/api/v1/calls/2")
	serve(e, http.MethodGet, "/api/v1/calls/missing")

	if got := p.RequestCount(http.MethodGet, "/api/v1/calls/:id", "200"); got != 2 {
		t.Errorf("expected 2 ok requests, got %d", got)
	}
	if got := p.RequestCount(http.MethodGet, "/api/v1/calls/:id", "404"); got != 1 {
		t.Errorf("expected 1 not-found request, got %d", got)
	}
}

func TestMetricsMiddleware_Disabled(t *testing.T) {
	p := NewProvider(Config{MetricsEnabled: BoolPtr(false)})
	e := newEcho(p)
	serve(e, http.MethodGet, "/api/v1/calls/1")
	if got := p.RequestCount(http.MethodGet, "/api/v1/calls/:id", "200"); got != 0 {
		t.Errorf("expected no samples when disabled, got %d", got)
	}
	p.ObserveSync(3, 1)
	if p.Counter(SyncRuns) != 0 {
		t.Error("expected sync counters to stay at zero when disabled")
	}
}

func TestObserveSync(t *testing.T) {
	p := NewProvider(Config{})
	p.ObserveSync(2, 0)
	p.ObserveSync(0, 1)
	if p.Counter(SyncRuns) != 2 || p.Counter(SyncCreated) != 2 || p.Counter(SyncDeleted) != 1 {
		t.Errorf("unexpected counters: runs=%d created=%d deleted=%d",
			p.Counter(SyncRuns), p.Counter(SyncCreated), p.Counter(SyncDeleted))
	}
}

func TestPrometheusHandler(t *testing.T) {
	p := NewProvider(Config{ServiceVersion: "abc123"})
	e := newEcho(p)
	serve(e, http.MethodGet, "/api/v1/calls/1")
	p.ObserveSync(1, 0)

	rec := serve(e, http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`follow_build_info{service="follow-server",version="abc123",environment="development"} 1`,
		`http_server_request_duration_seconds_count{method="GET",route="/api/v1/calls/:id",status_code="200"} 1`,
		`http_server_request_duration_seconds_bucket{method="GET",route="/api/v1/calls/:id",status_code="200",le="+Inf"} 1`,
		"worklist_sync_runs_total 1",
		"worklist_sync_created_total 1",
		"worklist_sync_deleted_total 0",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in output:\n%s", want, body)
		}
	}
}

func TestHistogram_CumulativeBuckets(t *testing.T) {
	h := newHistogram([]float64{1, 5, 10})
	for _, v := range []float64{0.5, 3, 3, 7, 20} {
		h.Observe(v)
	}
	want := []int64{1, 3, 4}
	got := h.cumulativeBuckets()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bucket %d: expected %d, got %d", i, want[i], got[i])
		}
	}
	if h.Count() != 5 || h.Sum() != 33.5 {
		t.Errorf("expected count 5 sum 33.5, got %d %g", h.Count(), h.Sum())
	}
}
