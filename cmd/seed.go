package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Sagyam/linite-sub002/internal/seed"
	"github.com/urfave/cli/v3"
)

// Seed loads a YAML catalog into the database. Without --file the embedded
// default catalog is used.
func (r *Runner) Seed(ctx context.Context, cmd *cli.Command) error {
	data := seed.DefaultCatalog()
	origin := "embedded catalog"

	if path := cmd.String("file"); path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return fmt.Errorf("failed to read catalog file: %w", err)
		}
		origin = path
	}

	catalog, err := seed.Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse catalog: %w", err)
	}

	r.logger.Info("seeding catalog",
		"from", origin,
		"sources", len(catalog.Sources),
		"distributions", len(catalog.Distributions),
		"applications", len(catalog.Applications),
	)

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := seed.NewLoader(db, r.logger).Load(catalog)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	r.writePlainHeader("Catalog Seeded")
	r.writePlain("Sources:       %d created, %d updated\n", result.SourcesCreated, result.SourcesUpdated)
	r.writePlain("Distributions: %d created, %d updated\n", result.DistrosCreated, result.DistrosUpdated)
	r.writePlain("Applications:  %d created, %d updated\n", result.AppsCreated, result.AppsUpdated)
	r.writePlain("Links:         %d\n", result.Links)
	r.writePlain("Packages:      %d\n", result.Packages)

	return nil
}

// seedCommand loads catalog data into the database.
func seedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load a YAML catalog into the database (embedded default without --file)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Path to a catalog YAML file",
			},
		},
		Action: r.Seed,
	}
}
