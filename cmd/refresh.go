package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Sagyam/linite-sub002/internal/repositories"
	"github.com/Sagyam/linite-sub002/internal/services"
	"github.com/Sagyam/linite-sub002/internal/shared"
	"github.com/Sagyam/linite-sub002/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

// Refresh re-checks recorded package availability against the catalogs each
// source publishes and writes flips back to the database.
func (r *Runner) Refresh(ctx context.Context, cmd *cli.Command) error {
	filter := shared.NormalizeSlug(cmd.String("source"))

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	sources, err := repositories.NewSourceRepository(db).List(nil)
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	client := r.httpClient
	if r.config.Refresh.TimeoutSeconds > 0 {
		client = &http.Client{
			Transport: r.httpClient.Transport,
			Timeout:   time.Duration(r.config.Refresh.TimeoutSeconds) * time.Second,
		}
	}

	var checkers []tasks.SourceChecker
	for _, src := range sources {
		if filter != "" && src.Slug != filter {
			continue
		}
		if src.CatalogEndpoint == "" {
			continue
		}
		limiter := rate.NewLimiter(rate.Limit(r.config.Refresh.RatePerSecond), 1)
		checkers = append(checkers, tasks.SourceChecker{
			SourceID: src.ID(),
			Checker:  services.NewRemoteCatalog(src.Slug, src.CatalogEndpoint, client, limiter),
		})
	}

	if len(checkers) == 0 {
		if filter != "" {
			return fmt.Errorf("%w: no source %q with a catalog endpoint", shared.ErrSourceNotFound, filter)
		}
		r.writePlain("No sources have catalog endpoints configured, nothing to refresh.\n")
		return nil
	}

	r.logger.Info("refreshing package availability", "sources", len(checkers), "dry_run", cmd.Bool("dry-run"))

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			switch update.Phase {
			case tasks.ListPackages:
				r.writePlain("📋 %s\n", update.Message)
			case tasks.CheckPackages:
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	workers := cmd.Int("workers")
	if workers <= 0 {
		workers = r.config.Refresh.Workers
	}

	engine := tasks.NewRefreshEngine(repositories.NewApplicationRepository(db))
	result, err := engine.Refresh(ctx, progressCh, checkers, tasks.RefreshOpts{
		NumWorkers: workers,
		DryRun:     cmd.Bool("dry-run"),
	})
	close(progressCh)

	if err != nil {
		return err
	}

	r.writePlainHeader("Refresh Complete")
	r.writePlain("Sources:  %d\n", result.TotalSources)
	r.writePlain("Packages: %d checked, %d flipped, %d failed\n", result.Checked, result.Flipped, result.Failed)

	if result.Failed > 0 {
		r.writePlain("\nFailures:\n")
		for _, res := range result.Results {
			if res.Error != nil {
				r.writePlain("  - %s/%s: %v\n", res.Source, res.Identifier, res.Error)
			}
		}
	}

	return nil
}

// refreshCommand re-checks package availability against source catalogs.
func refreshCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "Re-check package availability against source catalogs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "source",
				Usage: "Refresh a single source by slug",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent availability checks",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Report availability flips without writing them",
			},
		},
		Action: r.Refresh,
	}
}
