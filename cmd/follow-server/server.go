package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/potlako/follow/internal/admin"
	"github.com/potlako/follow/internal/config"
	"github.com/potlako/follow/internal/domain/calllog"
	"github.com/potlako/follow/internal/domain/subject"
	"github.com/potlako/follow/internal/domain/worklist"
	"github.com/potlako/follow/internal/platform/audit"
	"github.com/potlako/follow/internal/platform/auth"
	"github.com/potlako/follow/internal/platform/db"
	"github.com/potlako/follow/internal/platform/middleware"
	"github.com/potlako/follow/internal/platform/sqlitedb"
	"github.com/potlako/follow/internal/platform/telemetry"
	"github.com/potlako/follow/internal/platform/urls"
)

// txRunner is implemented by db.TxRunner and sqlitedb.TxRunner.
type txRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// stores holds the repositories of the configured store driver.
type stores struct {
	subjects   subject.Repository
	calls      calllog.CallRepository
	logs       calllog.LogRepository
	entries    calllog.LogEntryRepository
	worklists  worklist.Repository
	navigation worklist.Repository
	tx         txRunner
	health     echo.HandlerFunc
	// site resolves the study site of a request; nil for SQLite.
	site  echo.MiddlewareFunc
	pin   func(ctx context.Context, site string) (context.Context, func(), error)
	close func()
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		conn, err := sqlitedb.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return sqliteStores(conn), nil
	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, err
		}
		return pgStores(pool, cfg.DefaultSite), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func sqliteStores(conn *sql.DB) *stores {
	return &stores{
		subjects:   subject.NewRepoSQLite(conn),
		calls:      calllog.NewCallRepoSQLite(conn),
		logs:       calllog.NewLogRepoSQLite(conn),
		entries:    calllog.NewLogEntryRepoSQLite(conn),
		worklists:  worklist.NewRepoSQLite(conn, worklist.KindWorkList),
		navigation: worklist.NewRepoSQLite(conn, worklist.KindNavigation),
		tx:         sqlitedb.NewTxRunner(conn),
		health:     sqlitedb.HealthHandler(conn),
		pin: func(ctx context.Context, _ string) (context.Context, func(), error) {
			return ctx, func() {}, nil
		},
		close: func() { conn.Close() },
	}
}

func pgStores(pool *pgxpool.Pool, defaultSite string) *stores {
	return &stores{
		subjects:   subject.NewRepoPG(pool),
		calls:      calllog.NewCallRepoPG(pool),
		logs:       calllog.NewLogRepoPG(pool),
		entries:    calllog.NewLogEntryRepoPG(pool),
		worklists:  worklist.NewRepoPG(pool, worklist.KindWorkList),
		navigation: worklist.NewRepoPG(pool, worklist.KindNavigation),
		tx:         db.NewTxRunner(pool),
		health:     db.HealthHandler(pool),
		site:       db.SiteMiddleware(pool, defaultSite),
		pin: func(ctx context.Context, site string) (context.Context, func(), error) {
			return db.PinSite(ctx, pool, site)
		},
		close: pool.Close,
	}
}

type services struct {
	subjects   *subject.Service
	calls      *calllog.Service
	worklists  *worklist.Service
	navigation *worklist.Service
	reconciler *worklist.Reconciler
	listboard  *worklist.ListboardService
	admin      *admin.Site
}

func newServices(cfg *config.Config, st *stores, logger zerolog.Logger, metrics *telemetry.Provider) *services {
	stamper := audit.NewStamper(cfg.Revision, cfg.DefaultSite)
	reverser := urls.NewReverser(cfg.DashboardURLs)

	s := &services{subjects: subject.NewService(st.subjects)}

	s.calls = calllog.NewService(st.calls, st.logs, st.entries, st.tx, s.subjects, stamper, reverser)
	s.calls.SetLogger(logger)

	s.worklists = worklist.NewService(worklist.KindWorkList, st.worklists, stamper)
	s.navigation = worklist.NewService(worklist.KindNavigation, st.navigation, stamper)
	s.reconciler = worklist.NewReconciler(st.navigation, s.subjects, st.tx, stamper, logger)
	s.reconciler.OnSync(func(r worklist.SyncResult) { metrics.ObserveSync(r.Created, r.Deleted) })
	s.listboard = worklist.NewListboardService(s.reconciler, s.navigation, reverser)

	s.admin = admin.NewSite(admin.DefaultRegistry(), s.calls, s.subjects, cfg.Institution)
	s.admin.RegisterListers(s.calls, s.worklists, s.navigation)
	return s
}

func authMiddleware(cfg *config.Config) (echo.MiddlewareFunc, error) {
	switch cfg.ResolvedAuthMode() {
	case "development":
		return auth.DevAuthMiddleware(), nil
	case "external":
		return auth.JWTMiddleware(auth.JWTConfig{
			Issuer:   cfg.AuthIssuer,
			Audience: cfg.AuthAudience,
			JWKSURL:  cfg.AuthJWKSURL,
			Skipper:  auth.AuthSkipper,
		}), nil
	default:
		key, err := cfg.SigningKey()
		if err != nil {
			return nil, err
		}
		return auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			SigningKey: key,
			Skipper:    auth.AuthSkipper,
		}), nil
	}
}

// skipPublic wraps mw so that health checks bypass it.
func skipPublic(mw echo.MiddlewareFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		wrapped := mw(next)
		return func(c echo.Context) error {
			if auth.AuthSkipper(c) {
				return next(c)
			}
			return wrapped(c)
		}
	}
}

func newServer(cfg *config.Config, logger zerolog.Logger, st *stores) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	metrics := telemetry.NewProvider(telemetry.Config{
		ServiceVersion: cfg.Revision,
		Environment:    cfg.Env,
	})

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(metrics.MetricsMiddleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", "X-Site-ID"},
	}))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(middleware.BodyLimit("1M"))

	authMW, err := authMiddleware(cfg)
	if err != nil {
		return nil, err
	}
	e.Use(authMW)
	if st.site != nil {
		e.Use(skipPublic(st.site))
	}
	e.Use(middleware.Audit(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":   "ok",
			"revision": cfg.Revision,
		})
	})
	e.GET("/health/db", st.health)
	e.GET("/metrics", metrics.PrometheusHandler())

	svcs := newServices(cfg, st, logger, metrics)

	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))

	subject.NewHandler(svcs.subjects).RegisterRoutes(apiV1)
	calllog.NewHandler(svcs.calls).RegisterRoutes(apiV1)
	admin.NewHandler(svcs.admin).RegisterRoutes(apiV1)

	wl := worklist.NewHandler(svcs.worklists, svcs.navigation, svcs.listboard)
	wl.RegisterRoutes(apiV1)
	wl.RegisterListboard(e)

	return e, nil
}
