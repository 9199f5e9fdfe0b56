package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sagyam/linite-sub002/internal/models"
	"github.com/Sagyam/linite-sub002/internal/repositories"
	"github.com/urfave/cli/v3"
)

// CatalogSources lists the catalog's sources.
func (r *Runner) CatalogSources(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	sources, err := repositories.NewSourceRepository(db).List(nil)
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	if cmd.Bool("json") {
		out := make([]map[string]any, 0, len(sources))
		for _, src := range sources {
			out = append(out, map[string]any{
				"slug":         src.Slug,
				"name":         src.Name,
				"category":     src.Category,
				"priority":     src.Priority,
				"requiresSudo": src.RequiresSudo,
			})
		}
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Sources (%d)", len(sources)))
	for _, src := range sources {
		sudo := ""
		if src.RequiresSudo {
			sudo = " [sudo]"
		}
		r.writePlain("%-12s %-24s %s priority=%d%s\n", src.Slug, src.Name, src.Category, src.Priority, sudo)
	}
	return nil
}

// CatalogDistros lists the catalog's distributions with their linked sources.
func (r *Runner) CatalogDistros(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewDistributionRepository(db)
	distros, err := repo.List(nil)
	if err != nil {
		return fmt.Errorf("failed to list distributions: %w", err)
	}

	sources, err := repositories.NewSourceRepository(db).List(nil)
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}
	slugByID := make(map[string]string, len(sources))
	for _, src := range sources {
		slugByID[src.ID()] = src.Slug
	}

	type distroRow struct {
		Slug    string   `json:"slug"`
		Name    string   `json:"name"`
		Family  string   `json:"family"`
		BasedOn string   `json:"basedOn,omitempty"`
		Sources []string `json:"sources"`
	}

	rows := make([]distroRow, 0, len(distros))
	for _, distro := range distros {
		links, err := repo.GetSourceLinks(distro.ID())
		if err != nil {
			return fmt.Errorf("failed to list source links for %s: %w", distro.Slug, err)
		}
		row := distroRow{
			Slug:    distro.Slug,
			Name:    distro.Name,
			Family:  string(distro.Family),
			BasedOn: distro.BasedOn,
			Sources: []string{},
		}
		for _, link := range links {
			slug := slugByID[link.SourceID]
			if link.IsDefault {
				slug += "*"
			}
			row.Sources = append(row.Sources, slug)
		}
		rows = append(rows, row)
	}

	if cmd.Bool("json") {
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Distributions (%d)", len(rows)))
	for _, row := range rows {
		r.writePlain("%-12s %-20s %-12s %s\n", row.Slug, row.Name, row.Family, strings.Join(row.Sources, " "))
	}
	return nil
}

// CatalogApps lists the catalog's applications, optionally filtered by category.
func (r *Runner) CatalogApps(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	var criteria map[string]any
	if category := cmd.String("category"); category != "" {
		criteria = map[string]any{"category": category}
	}

	repo := repositories.NewApplicationRepository(db)
	apps, err := repo.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list applications: %w", err)
	}

	if cmd.Bool("json") {
		out := make([]map[string]any, 0, len(apps))
		for _, app := range apps {
			out = append(out, map[string]any{
				"slug":     app.Slug,
				"name":     app.Name,
				"category": app.Category,
			})
		}
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Applications (%d)", len(apps)))
	for _, app := range apps {
		r.writePlain("%-20s %-28s %s\n", app.Slug, app.Name, app.Category)
		if cmd.Bool("packages") {
			if err := r.writeAppPackages(repo, app); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeAppPackages prints one line per package row under an application.
func (r *Runner) writeAppPackages(repo *repositories.ApplicationRepository, app *models.Application) error {
	pkgs, err := repo.ListPackages(app.ID())
	if err != nil {
		return fmt.Errorf("failed to list packages for %s: %w", app.Slug, err)
	}
	for _, pkg := range pkgs {
		state := "unavailable"
		if pkg.Available {
			state = "available"
		}
		version := pkg.Version
		if version == "" {
			version = "-"
		}
		r.writePlain("    %-28s %-12s %s\n", pkg.Identifier, version, state)
	}
	return nil
}

// catalogCommand handles read-only catalog listings for operators.
func catalogCommand(r *Runner) *cli.Command {
	jsonFlags := []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
	}

	return &cli.Command{
		Name:  "catalog",
		Usage: "Inspect the catalog",
		Commands: []*cli.Command{
			{
				Name:   "sources",
				Usage:  "List package sources",
				Flags:  jsonFlags,
				Action: r.CatalogSources,
			},
			{
				Name:    "distros",
				Aliases: []string{"distributions"},
				Usage:   "List distributions and their ranked sources (* marks the default)",
				Flags:   jsonFlags,
				Action:  r.CatalogDistros,
			},
			{
				Name:    "apps",
				Aliases: []string{"applications"},
				Usage:   "List applications",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "category",
						Usage: "Filter by application category",
					},
					&cli.BoolFlag{
						Name:  "packages",
						Usage: "Show each application's package rows",
					},
				}, jsonFlags...),
				Action: r.CatalogApps,
			},
		},
	}
}
