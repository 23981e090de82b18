package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

const defaultHealthTimeout = 5 * time.Second

// HealthCheck describes how /health/db probes a store.
type HealthCheck struct {
	Driver  string
	Ping    func(ctx context.Context) error
	Details func() interface{}
	Timeout time.Duration
}

type healthReport struct {
	Status    string      `json:"status"`
	Driver    string      `json:"driver"`
	LatencyMS int64       `json:"latency_ms"`
	Error     string      `json:"error,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

// Handler answers 200 when the ping succeeds within the timeout and 503
// otherwise.
func (h HealthCheck) Handler() echo.HandlerFunc {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = defaultHealthTimeout
	}
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
		defer cancel()

		start := time.Now()
		err := h.Ping(ctx)
		report := healthReport{
			Status:    "healthy",
			Driver:    h.Driver,
			LatencyMS: time.Since(start).Milliseconds(),
		}
		if h.Details != nil {
			report.Details = h.Details()
		}

		code := http.StatusOK
		if err != nil {
			report.Status = "unhealthy"
			report.Error = err.Error()
			code = http.StatusServiceUnavailable
		}
		return c.JSON(code, report)
	}
}

type poolDetails struct {
	Total    int32 `json:"total_conns"`
	Idle     int32 `json:"idle_conns"`
	Acquired int32 `json:"acquired_conns"`
	Max      int32 `json:"max_conns"`
}

// HealthHandler probes the Postgres pool and reports its connection counts.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return HealthCheck{
		Driver: "postgres",
		Ping:   pool.Ping,
		Details: func() interface{} {
			s := pool.Stat()
			return poolDetails{Total: s.TotalConns(), Idle: s.IdleConns(), Acquired: s.AcquiredConns(), Max: s.MaxConns()}
		},
	}.Handler()
}
