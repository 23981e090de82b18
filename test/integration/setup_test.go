// Package integration runs the Postgres repositories against a real
// database. Set FOLLOW_INTEGRATION=1 to enable it; FOLLOW_DATABASE_URL points
// it at an existing server, otherwise Docker starts one.
package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/potlako/follow/internal/platform/db"
)

// pool is nil when the suite is disabled.
var pool *pgxpool.Pool

func TestMain(m *testing.M) {
	if os.Getenv("FOLLOW_INTEGRATION") == "" {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	url, stop, err := postgresURL(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "integration: %v\n", err)
		os.Exit(1)
	}
	pool, err = db.NewPool(ctx, url, 8, 1)
	if err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "integration: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	pool.Close()
	stop()
	os.Exit(code)
}

func requirePool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if pool == nil {
		t.Skip("set FOLLOW_INTEGRATION=1 to run Postgres integration tests")
	}
	return pool
}

// newSite creates a site schema from the compiled-in migrations and returns
// a context pinned to it. The schema is dropped when the test ends.
func newSite(t *testing.T, prefix string) context.Context {
	t.Helper()
	p := requirePool(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	t.Cleanup(cancel)

	siteID := prefix + "_" + uuid.NewString()[:8]
	if err := db.CreateSiteSchema(ctx, p, siteID, db.MigrationSource("")); err != nil {
		t.Fatalf("create site %s: %v", siteID, err)
	}
	t.Cleanup(func() {
		if _, err := p.Exec(context.Background(), "DROP SCHEMA IF EXISTS "+db.SchemaForSite(siteID)+" CASCADE"); err != nil {
			t.Logf("drop site %s: %v", siteID, err)
		}
	})

	pinned, release, err := db.PinSite(ctx, p, siteID)
	if err != nil {
		t.Fatalf("pin site %s: %v", siteID, err)
	}
	t.Cleanup(release)
	return pinned
}

func mustExec(t *testing.T, ctx context.Context, sql string, args ...interface{}) {
	t.Helper()
	if _, err := db.Conn(ctx, pool).Exec(ctx, sql, args...); err != nil {
		t.Fatalf("exec %q: %v", sql, err)
	}
}

func ptrStr(s string) *string { return &s }
