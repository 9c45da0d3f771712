package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/samber/lo"

	"github.com/mtlprog/assettrack/internal/api"
	"github.com/mtlprog/assettrack/internal/config"
	"github.com/mtlprog/assettrack/internal/domain"
	"github.com/mtlprog/assettrack/internal/report"
	"github.com/mtlprog/assettrack/internal/worker"
)

func serve(ctx context.Context, cfg config.Config) error {
	svc, err := setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	ensureRates(ctx, cfg, svc.converter)

	// Start workers
	rateWorker := worker.NewRateWorker(svc.converter, cfg.RateWorkerInterval, cfg.RatesMaxAge)
	go rateWorker.Run(ctx)

	if cfg.SheetsEnabled() {
		writer, err := report.NewSheetsWriter(ctx, cfg.GoogleSheetsID, cfg.GoogleCredentialsJSON)
		if err != nil {
			return fmt.Errorf("creating sheets writer: %w", err)
		}
		reportWorker := worker.NewReportWorker(svc.reports, writer, cfg.ReportWorkerInterval)
		go reportWorker.Run(ctx)
	}

	if cfg.AdminAPIKey == "" {
		slog.Warn("ADMIN_API_KEY not set, mutating endpoints are unprotected")
	}

	// Start HTTP server
	handler := api.NewHandler(svc.ledger, svc.converter, svc.reports)
	srv := api.NewServer(cfg.HTTPPort, handler, cfg.AdminAPIKey)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("HTTP server: %w", err)
	}
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
	return nil
}

func printReport(ctx context.Context, cfg config.Config) error {
	svc, err := setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	ensureRates(ctx, cfg, svc.converter)
	fmt.Print(report.RenderTable(svc.reports.Build(ctx)))
	return nil
}

func exportReport(ctx context.Context, cfg config.Config, format, out string) error {
	svc, err := setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	ensureRates(ctx, cfg, svc.converter)
	rep := svc.reports.Build(ctx)

	switch format {
	case "sheets":
		if !cfg.SheetsEnabled() {
			return errors.New("GOOGLE_SHEETS_ID and GOOGLE_CREDENTIALS_JSON are required for sheets export")
		}
		writer, err := report.NewSheetsWriter(ctx, cfg.GoogleSheetsID, cfg.GoogleCredentialsJSON)
		if err != nil {
			return fmt.Errorf("creating sheets writer: %w", err)
		}
		if err := writer.Write(ctx, rep); err != nil {
			return fmt.Errorf("exporting to sheets: %w", err)
		}
		slog.Info("report exported to sheets", "assets", len(rep.Rows))
		return nil
	case "xlsx":
		return writeOutput(out, func(w io.Writer) error { return report.WriteXLSX(w, rep) })
	case "json":
		return writeOutput(out, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		})
	default:
		return fmt.Errorf("unknown export format %q, expected xlsx, json or sheets", format)
	}
}

func writeOutput(path string, write func(io.Writer) error) error {
	if path == "-" {
		return write(os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	slog.Info("report written", "path", path)
	return nil
}

func printRates(ctx context.Context, cfg config.Config, refresh bool) error {
	svc, err := setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	if refresh {
		svc.converter.Refresh(ctx)
	} else {
		ensureRates(ctx, cfg, svc.converter)
	}

	current, ok := svc.converter.Current()
	if !ok {
		return errors.New("no exchange rates available")
	}

	rows := lo.FilterMap(domain.SupportedCurrencies, func(c domain.Currency, _ int) ([]string, bool) {
		rate, ok := current.Rate(c)
		if !ok {
			return nil, false
		}
		return []string{string(c), rate.String()}, true
	})

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Currency", "Per 1 "+string(domain.BaseCurrency)).
		Rows(rows...)

	fmt.Println(t.String())
	fmt.Printf("Source: %s, updated %s\n", current.Source(), current.UpdatedAt().Format(time.RFC3339))
	return nil
}

func printOrphans(ctx context.Context, cfg config.Config) error {
	svc, err := setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	orphans := svc.ledger.Orphans(ctx)
	if len(orphans) == 0 {
		fmt.Println("No orphaned prices.")
		return nil
	}
	fmt.Printf("%d orphaned prices:\n", len(orphans))
	for _, id := range orphans {
		fmt.Printf("  price %d\n", id)
	}
	return nil
}
