package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

const healthTimeout = 5 * time.Second

// PoolStats is the subset of pgxpool statistics reported by /health/db.
type PoolStats struct {
	TotalConns      int32  `json:"total_conns"`
	IdleConns       int32  `json:"idle_conns"`
	AcquiredConns   int32  `json:"acquired_conns"`
	MaxConns        int32  `json:"max_conns"`
	AcquireDuration string `json:"acquire_duration"`
}

// Health is the /health/db response body.
type Health struct {
	Status         string    `json:"status"`
	Error          string    `json:"error,omitempty"`
	StoredSessions int64     `json:"stored_sessions"`
	Pool           PoolStats `json:"pool"`
}

// Probe gathers the session store's health.
type Probe struct {
	Ping     func(context.Context) error
	Sessions func(context.Context) (int64, error)
	Stats    func() PoolStats
}

// PoolProbe probes pool and counts the workspaces persisted in
// portal_session_kv.
func PoolProbe(pool *pgxpool.Pool) Probe {
	return Probe{
		Ping: pool.Ping,
		Sessions: func(ctx context.Context) (int64, error) {
			var n int64
			err := pool.QueryRow(ctx, `SELECT count(DISTINCT session_id) FROM portal_session_kv`).Scan(&n)
			return n, err
		},
		Stats: func() PoolStats {
			stat := pool.Stat()
			return PoolStats{
				TotalConns:      stat.TotalConns(),
				IdleConns:       stat.IdleConns(),
				AcquiredConns:   stat.AcquiredConns(),
				MaxConns:        stat.MaxConns(),
				AcquireDuration: stat.AcquireDuration().String(),
			}
		},
	}
}

// HealthHandler serves /health/db for the Postgres-backed session store.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return PoolProbe(pool).Handler()
}

// Handler reports 503 when the database is unreachable or the session table
// cannot be read (usually: migrations not applied).
func (p Probe) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
		defer cancel()

		h := Health{Status: "healthy", Pool: p.Stats()}
		err := p.Ping(ctx)
		if err == nil {
			h.StoredSessions, err = p.Sessions(ctx)
		}
		if err != nil {
			h.Status = "unhealthy"
			h.Error = err.Error()
			return c.JSON(http.StatusServiceUnavailable, h)
		}
		return c.JSON(http.StatusOK, h)
	}
}
