// Package telemetry keeps in-process HTTP and work-list metrics and serves
// them in the Prometheus text exposition format.
package telemetry

import (
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
)

// Config holds the telemetry switches.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// MetricsEnabled defaults to true when nil.
	MetricsEnabled *bool
}

func (c *Config) metricsOn() bool {
	if c.MetricsEnabled == nil {
		return true
	}
	return *c.MetricsEnabled
}

func (c *Config) applyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "follow-server"
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "dev"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
}

// BoolPtr is a helper for Config.MetricsEnabled.
func BoolPtr(b bool) *bool {
	return &b
}

var defaultDurationBuckets = []float64{
	0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// histogram stores non-cumulative bucket counts; cumulative counts are
// computed at export time.
type histogram struct {
	boundaries   []float64
	bucketCounts []int64
	count        int64
	sum          uint64 // math.Float64bits
	mu           sync.Mutex
}

func newHistogram(boundaries []float64) *histogram {
	return &histogram{
		boundaries:   boundaries,
		bucketCounts: make([]int64, len(boundaries)),
	}
}

func (h *histogram) Observe(v float64) {
	h.mu.Lock()
	for i, b := range h.boundaries {
		if v <= b {
			h.bucketCounts[i]++
			break
		}
	}
	h.mu.Unlock()
	atomic.AddInt64(&h.count, 1)
	for {
		old := atomic.LoadUint64(&h.sum)
		next := math.Float64bits(math.Float64frombits(old) + v)
		if atomic.CompareAndSwapUint64(&h.sum, old, next) {
			return
		}
	}
}

func (h *histogram) Count() int64 {
	return atomic.LoadInt64(&h.count)
}

func (h *histogram) Sum() float64 {
	return math.Float64frombits(atomic.LoadUint64(&h.sum))
}

func (h *histogram) cumulativeBuckets() []int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]int64, len(h.bucketCounts))
	var running int64
	for i, c := range h.bucketCounts {
		running += c
		out[i] = running
	}
	return out
}

// LabelsKey builds the key of a request-duration series.
func LabelsKey(method, route, statusCode string) string {
	return method + "|" + route + "|" + statusCode
}

// Provider owns all metric state for one server.
type Provider struct {
	cfg Config

	mu        sync.RWMutex
	durations map[string]*histogram
	counters  map[string]int64

	active int64
}

func NewProvider(cfg Config) *Provider {
	cfg.applyDefaults()
	return &Provider{
		cfg:       cfg,
		durations: make(map[string]*histogram),
		counters:  make(map[string]int64),
	}
}

func (p *Provider) duration(key string) *histogram {
	p.mu.RLock()
	h, ok := p.durations[key]
	p.mu.RUnlock()
	if ok {
		return h
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if h, ok = p.durations[key]; !ok {
		h = newHistogram(defaultDurationBuckets)
		p.durations[key] = h
	}
	return h
}

func (p *Provider) add(name string, delta int64) {
	if delta == 0 {
		return
	}
	p.mu.Lock()
	p.counters[name] += delta
	p.mu.Unlock()
}

// Counter returns the current value of a counter.
func (p *Provider) Counter(name string) int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.counters[name]
}

// RequestCount returns how many requests matched the given series.
func (p *Provider) RequestCount(method, route, statusCode string) int64 {
	p.mu.RLock()
	h, ok := p.durations[LabelsKey(method, route, statusCode)]
	p.mu.RUnlock()
	if !ok {
		return 0
	}
	return h.Count()
}

// Work-list counter names.
const (
	SyncRuns    = "worklist_sync_runs_total"
	SyncCreated = "worklist_sync_created_total"
	SyncDeleted = "worklist_sync_deleted_total"
)

// ObserveSync records one navigation work-list reconciliation pass.
func (p *Provider) ObserveSync(created, deleted int) {
	if !p.cfg.metricsOn() {
		return
	}
	p.add(SyncRuns, 1)
	p.add(SyncCreated, int64(created))
	p.add(SyncDeleted, int64(deleted))
}

// MetricsMiddleware records request durations keyed by method, route
// pattern and status code.
func (p *Provider) MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !p.cfg.metricsOn() {
				return next(c)
			}
			atomic.AddInt64(&p.active, 1)
			start := time.Now()

			err := next(c)
			atomic.AddInt64(&p.active, -1)

			code := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				code = he.Code
			} else if err != nil {
				code = http.StatusInternalServerError
			}
			route := c.Path()
			if route == "" {
				route = c.Request().URL.Path
			}
			p.duration(LabelsKey(c.Request().Method, route, fmt.Sprintf("%d", code))).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// PrometheusHandler serves every metric at /metrics.
func (p *Provider) PrometheusHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		var b strings.Builder

		fmt.Fprintf(&b, "# HELP follow_build_info Build information.\n# TYPE follow_build_info gauge\n")
		fmt.Fprintf(&b, "follow_build_info{service=%q,version=%q,environment=%q} 1\n\n",
			p.cfg.ServiceName, p.cfg.ServiceVersion, p.cfg.Environment)

		b.WriteString("# HELP http_server_active_requests Number of in-flight HTTP requests.\n")
		b.WriteString("# TYPE http_server_active_requests gauge\n")
		fmt.Fprintf(&b, "http_server_active_requests %d\n\n", atomic.LoadInt64(&p.active))

		p.mu.RLock()
		keys := make([]string, 0, len(p.durations))
		for k := range p.durations {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("# HELP http_server_request_duration_seconds Duration of HTTP requests in seconds.\n")
		b.WriteString("# TYPE http_server_request_duration_seconds histogram\n")
		for _, k := range keys {
			parts := strings.SplitN(k, "|", 3)
			labels := fmt.Sprintf("method=%q,route=%q,status_code=%q", parts[0], parts[1], parts[2])
			writeHistogram(&b, "http_server_request_duration_seconds", labels, p.durations[k])
		}
		b.WriteByte('\n')

		for _, name := range []string{SyncRuns, SyncCreated, SyncDeleted} {
			fmt.Fprintf(&b, "# TYPE %s counter\n%s %d\n", name, name, p.counters[name])
		}
		p.mu.RUnlock()

		return c.String(http.StatusOK, b.String())
	}
}

func writeHistogram(b *strings.Builder, name, labels string, h *histogram) {
	cum := h.cumulativeBuckets()
	total := h.Count()
	for i, boundary := range h.boundaries {
		fmt.Fprintf(b, "%s_bucket{%s,le=\"%g\"} %d\n", name, labels, boundary, cum[i])
	}
	fmt.Fprintf(b, "%s_bucket{%s,le=\"+Inf\"} %d\n", name, labels, total)
	fmt.Fprintf(b, "%s_sum{%s} %g\n", name, labels, h.Sum())
	fmt.Fprintf(b, "%s_count{%s} %d\n", name, labels, total)
}
