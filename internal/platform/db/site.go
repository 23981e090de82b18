package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"regexp"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	SiteIDKey contextKey = "site_id"
	DBConnKey contextKey = "db_conn"
	TxKey     contextKey = "db_tx"
)

var siteIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// SchemaForSite returns the schema that holds a study site's records.
func SchemaForSite(siteID string) string {
	return "site_" + siteID
}

// SiteMiddleware pins every request to a connection whose search_path points
// at the caller's study site schema.
func SiteMiddleware(pool *pgxpool.Pool, defaultSite string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			siteID := extractSiteID(c, defaultSite)

			if !siteIDPattern.MatchString(siteID) {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid site identifier")
			}

			ctx, release, err := PinSite(c.Request().Context(), pool, siteID)
			if err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "site resolution failed")
			}
			defer release()

			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("site_id", siteID)

			return next(c)
		}
	}
}

func extractSiteID(c echo.Context, defaultSite string) string {
	if sid, ok := c.Get("jwt_site_id").(string); ok && sid != "" {
		return sid
	}
	if sid := c.Request().Header.Get("X-Site-ID"); sid != "" {
		return sid
	}
	if sid := c.QueryParam("site"); sid != "" {
		return sid
	}
	return defaultSite
}

// ConnFromContext retrieves the site-scoped database connection from context.
func ConnFromContext(ctx context.Context) *pgxpool.Conn {
	conn, _ := ctx.Value(DBConnKey).(*pgxpool.Conn)
	return conn
}

// SiteFromContext retrieves the site ID from context.
func SiteFromContext(ctx context.Context) string {
	sid, _ := ctx.Value(SiteIDKey).(string)
	return sid
}

// PinSite acquires a connection scoped to siteID's schema and stores it in
// the returned context. The caller must invoke release when done.
func PinSite(ctx context.Context, pool *pgxpool.Pool, siteID string) (context.Context, func(), error) {
	if !siteIDPattern.MatchString(siteID) {
		return ctx, func() {}, fmt.Errorf("invalid site identifier: %s", siteID)
	}
	if pool == nil {
		return ctx, func() {}, errors.New("no database pool configured")
	}
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return ctx, func() {}, fmt.Errorf("acquire connection: %w", err)
	}
	if _, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s, shared, public", SchemaForSite(siteID))); err != nil {
		conn.Release()
		return ctx, func() {}, fmt.Errorf("set search_path: %w", err)
	}
	ctx = context.WithValue(ctx, SiteIDKey, siteID)
	ctx = context.WithValue(ctx, DBConnKey, conn)
	return ctx, conn.Release, nil
}

// CreateSiteSchema creates the schema for a study site and, when source is
// non-nil, migrates it.
func CreateSiteSchema(ctx context.Context, pool *pgxpool.Pool, siteID string, source fs.FS) error {
	if !siteIDPattern.MatchString(siteID) {
		return fmt.Errorf("invalid site identifier: %s", siteID)
	}

	schema := SchemaForSite(siteID)

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err = conn.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)); err != nil {
		return fmt.Errorf("create schema %s: %w", schema, err)
	}

	if source != nil {
		migrator := NewMigrator(pool, source)
		if _, err := migrator.Up(ctx, schema); err != nil {
			return fmt.Errorf("run migrations for %s: %w", schema, err)
		}
	}

	return nil
}
