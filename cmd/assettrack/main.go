package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urfave/cli/v2"

	"github.com/mtlprog/assettrack/internal/config"
	"github.com/mtlprog/assettrack/internal/database"
	"github.com/mtlprog/assettrack/internal/ledger"
	"github.com/mtlprog/assettrack/internal/rates"
	"github.com/mtlprog/assettrack/internal/report"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	app := &cli.App{
		Name:   "assettrack",
		Usage:  "track company computers and phones, their value and end of life",
		Action: func(c *cli.Context) error { return serve(c.Context, cfg) },
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API and background workers",
				Action: func(c *cli.Context) error { return serve(c.Context, cfg) },
			},
			{
				Name:   "report",
				Usage:  "print the asset report as a table",
				Action: func(c *cli.Context) error { return printReport(c.Context, cfg) },
			},
			{
				Name:  "export",
				Usage: "export the asset report",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "xlsx", Usage: "xlsx, json or sheets"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "assets.xlsx", Usage: "output file, - for stdout"},
				},
				Action: func(c *cli.Context) error {
					return exportReport(c.Context, cfg, c.String("format"), c.String("out"))
				},
			},
			{
				Name:  "rates",
				Usage: "show the exchange rates in use",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "refresh", Usage: "fetch from the provider first"},
				},
				Action: func(c *cli.Context) error { return printRates(c.Context, cfg, c.Bool("refresh")) },
			},
			{
				Name:   "orphans",
				Usage:  "list prices no asset refers to",
				Action: func(c *cli.Context) error { return printOrphans(c.Context, cfg) },
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// services holds everything the commands share.
type services struct {
	ledger    *ledger.Ledger
	converter *rates.Converter
	reports   *report.Builder
	pool      *pgxpool.Pool
}

func (s *services) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// setup wires storage, the converter and the report builder.
// Without DATABASE_URL assets live in memory and rates are not persisted.
func setup(ctx context.Context, cfg config.Config) (*services, error) {
	svc := &services{}

	var (
		storage ledger.Storage
		opts    []rates.Option
	)

	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		svc.pool = pool

		migrationsSub, err := fs.Sub(migrationsFS, "migrations")
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("creating migrations sub-fs: %w", err)
		}
		if err := database.RunMigrations(ctx, pool, migrationsSub); err != nil {
			svc.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}

		storage = ledger.NewPgStorage(pool)
		opts = append(opts, rates.WithRepository(rates.NewPgRateRepository(pool)))
	} else {
		slog.Warn("DATABASE_URL not set, using in-memory storage")
		storage = ledger.NewMemoryStorage()
	}

	ecb := rates.NewECBClient(cfg.RatesURL, cfg.RatesTimeout)
	svc.converter = rates.NewConverter(rates.NewStore(nil), ecb, opts...)
	svc.converter.Warm(ctx)

	svc.ledger = ledger.NewLedger(storage, slog.Default())
	svc.reports = report.NewBuilder(svc.ledger, svc.converter)
	return svc, nil
}

// ensureRates refreshes stale rates and tells the user when only approximate ones are available.
func ensureRates(ctx context.Context, cfg config.Config, conv *rates.Converter) {
	if !conv.EnsureFresh(ctx, cfg.RatesMaxAge, false) {
		slog.Warn("live exchange rates unavailable, converted values are approximate")
	}
}
