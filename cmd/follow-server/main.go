package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/potlako/follow/internal/config"
	"github.com/potlako/follow/internal/platform/db"
	"github.com/potlako/follow/internal/platform/telemetry"
)

func main() {
	root := &cobra.Command{
		Use:          "follow-server",
		Short:        "Participant follow-up and navigation work-list API",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), migrateCmd(), siteCmd(), worklistCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// withPostgres loads config and hands fn an open pool. SQLite deployments
// get skipMsg printed instead, or an error when skipMsg is empty.
func withPostgres(skipMsg string, fn func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.StoreDriver != config.StorePostgres {
		if skipMsg == "" {
			return fmt.Errorf("this command needs STORE_DRIVER=%s", config.StorePostgres)
		}
		fmt.Println(skipMsg)
		return nil
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(ctx, cfg, pool)
}

func migrateCmd() *cobra.Command {
	var schema, dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run Postgres migrations against one site schema",
	}
	cmd.PersistentFlags().StringVar(&schema, "schema", db.SchemaForSite("default"), "Target schema")
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "Migrations directory (default: compiled-in migrations)")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPostgres("SQLite stores apply their schema on open; nothing to migrate.",
				func(ctx context.Context, _ *config.Config, pool *pgxpool.Pool) error {
					n, err := db.NewMigrator(pool, db.MigrationSource(dir)).Up(ctx, schema)
					if err != nil {
						return fmt.Errorf("migrate %s: %w", schema, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: applied %d migration(s)\n", schema, n)
					return nil
				})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied, pending and modified migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPostgres("SQLite stores have no migration history.",
				func(ctx context.Context, _ *config.Config, pool *pgxpool.Pool) error {
					statuses, err := db.NewMigrator(pool, db.MigrationSource(dir)).Status(ctx, schema)
					if err != nil {
						return err
					}
					printMigrationStatus(cmd, schema, statuses)
					return nil
				})
		},
	})
	return cmd
}

func printMigrationStatus(cmd *cobra.Command, schema string, statuses []db.MigrationStatus) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", color.New(color.Bold).Sprint(schema))
	for _, s := range statuses {
		state, when := color.YellowString("pending "), ""
		if s.Applied {
			state = color.GreenString("applied ")
			if s.Modified {
				state = color.RedString("modified")
			}
			if s.AppliedAt != nil {
				when = s.AppliedAt.Format("2006-01-02 15:04")
			}
		}
		fmt.Fprintf(out, "  %03d %s %-36s %s\n", s.Version, state, s.Name, when)
	}
}

func siteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "site",
		Short: "Manage study sites",
	}

	var names []string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create and migrate study site schemas",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(names) == 0 {
				return errors.New("at least one --name is required")
			}
			return withPostgres("", func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) error {
				for _, name := range names {
					if err := db.CreateSiteSchema(ctx, pool, name, db.MigrationSource(cfg.MigrationsDir)); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "site %s ready (schema %s)\n", name, db.SchemaForSite(name))
				}
				return nil
			})
		},
	}
	create.Flags().StringSliceVar(&names, "name", nil, "Site identifier (repeatable)")
	cmd.AddCommand(create)
	return cmd
}

func worklistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worklist",
		Short: "Navigation work-list maintenance",
	}

	var site string
	sync := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile the navigation work list once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if site == "" {
				site = cfg.DefaultSite
			}

			ctx := context.Background()
			st, err := openStores(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.close()

			ctx, release, err := st.pin(ctx, site)
			if err != nil {
				return err
			}
			defer release()

			metrics := telemetry.NewProvider(telemetry.Config{ServiceVersion: cfg.Revision, Environment: cfg.Env})
			res, err := newServices(cfg, st, newLogger(cfg.Env), metrics).reconciler.Sync(ctx)
			if err != nil {
				return err
			}
			printSyncResult(cmd, site, res.Created, res.Deleted, res.Kept)
			return nil
		},
	}
	sync.Flags().StringVar(&site, "site", "", "Study site (defaults to DEFAULT_SITE)")
	cmd.AddCommand(sync)
	return cmd
}

func printSyncResult(cmd *cobra.Command, site string, created, deleted, kept int) {
	out := cmd.OutOrStdout()
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s navigation work list for site %s\n", bold("Reconciled"), site)
	fmt.Fprintf(out, "  %s %d\n", color.GreenString("created:"), created)
	fmt.Fprintf(out, "  %s %d\n", color.RedString("deleted:"), deleted)
	fmt.Fprintf(out, "  %s %d\n", color.CyanString("kept:   "), kept)
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Env)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.close()
	logger.Info().Str("driver", cfg.StoreDriver).Msg("connected to store")

	e, err := newServer(cfg, logger, st)
	if err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("revision", cfg.Revision).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}
