package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/Skryldev/jobly/config"
	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/service"
)

// app carries the state shared by every subcommand. The database is opened
// on first use so that --help and --version work without one.
type app struct {
	configFile string
	logLevel   string

	out    io.Writer
	errOut io.Writer

	cfg   *config.Config
	log   *slog.Logger
	db    *db.DB
	stats db.QueryStats
}

func newApp(out, errOut io.Writer) *app {
	return &app{out: out, errOut: errOut}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "jobly",
		Short:         "Manage companies and their job postings",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default ./jobly.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	root.AddCommand(newCompaniesCommand(a))
	root.AddCommand(newJobsCommand(a))
	root.AddCommand(newMigrateCommand(a))
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg
	a.log = newLogger(cfg.Log, a.errOut)
	return nil
}

// newLogger writes colourised text through tint, or JSON when configured.
func newLogger(cfg config.Log, w io.Writer) *slog.Logger {
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      cfg.SlogLevel(),
		TimeFormat: time.Kitchen,
	}))
}

// database opens the pool, retrying while the server is unreachable.
func (a *app) database(ctx context.Context) (*db.DB, error) {
	if a.db != nil {
		return a.db, nil
	}

	dc := a.cfg.Database
	hooks := []db.Hook{
		db.NewLogHook(db.LogHookConfig{
			Logger:             a.log,
			SlowQueryThreshold: dc.SlowQuery,
			LogArgs:            a.cfg.Log.Args,
		}),
		db.NewMetricsHook(&a.stats),
	}

	retry := db.RetryConfig{MaxAttempts: dc.ConnectAttempts, Delay: dc.RetryDelay}
	err := db.WithRetry(ctx, retry, func() error {
		d, err := db.OpenWithDriver(dc.Driver, dc.Options(), dc.DBConfig(hooks...))
		if err != nil {
			a.log.WarnContext(ctx, "database unavailable", "driver", dc.Driver, "err", err)
			return err
		}
		a.db = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	if dc.Driver == "sqlite3" {
		a.log.DebugContext(ctx, "sqlite opened", "version", db.SQLiteVersion())
	}
	return a.db, nil
}

func (a *app) service(ctx context.Context) (*service.Service, error) {
	d, err := a.database(ctx)
	if err != nil {
		return nil, err
	}
	return service.New(d, a.log), nil
}

func (a *app) close() {
	if a.db == nil {
		return
	}
	s := a.stats.Snapshot()
	a.log.Debug("query stats", "queries", s.Queries, "failures", s.Failures, "total", s.Total)
	if err := a.db.Close(); err != nil {
		a.log.Warn("close database", "err", err)
	}
	a.db = nil
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
