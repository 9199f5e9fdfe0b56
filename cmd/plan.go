package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sagyam/linite-sub002/internal/engine"
	"github.com/Sagyam/linite-sub002/internal/formatter"
	"github.com/Sagyam/linite-sub002/internal/repositories"
	"github.com/Sagyam/linite-sub002/internal/shared"
	"github.com/Sagyam/linite-sub002/internal/ui"
	"github.com/urfave/cli/v3"
)

// Install resolves the requested applications and prints the install plan.
func (r *Runner) Install(ctx context.Context, cmd *cli.Command) error {
	apps := cmd.Args().Slice()
	if len(apps) == 0 {
		return fmt.Errorf("%w: at least one application slug is required", shared.ErrMissingArgument)
	}

	distro := cmd.String("distro")
	r.logger.Info("resolving install plan", "distro", distro, "apps", len(apps))

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	eng := engine.New(repositories.NewCatalogStore(db), r.logger)
	plan, err := eng.Install(ctx, engine.InstallRequest{
		DistroSlug:       distro,
		AppIDs:           apps,
		SourcePreference: cmd.String("prefer"),
		InstallMethod:    cmd.String("method"),
	})
	if err != nil {
		return fmt.Errorf("failed to resolve install plan: %w", err)
	}

	return r.renderPlan(plan, formatter.FromInstall(shared.NormalizeSlug(distro), plan), cmd)
}

// Uninstall resolves the requested applications and prints the uninstall plan.
func (r *Runner) Uninstall(ctx context.Context, cmd *cli.Command) error {
	apps := cmd.Args().Slice()
	if len(apps) == 0 {
		return fmt.Errorf("%w: at least one application slug is required", shared.ErrMissingArgument)
	}

	distro := cmd.String("distro")
	r.logger.Info("resolving uninstall plan", "distro", distro, "apps", len(apps))

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	eng := engine.New(repositories.NewCatalogStore(db), r.logger)
	plan, err := eng.Uninstall(ctx, engine.UninstallRequest{
		DistroSlug:               distro,
		AppIDs:                   apps,
		SourcePreference:         cmd.String("prefer"),
		InstallMethod:            cmd.String("method"),
		IncludeSetupCleanup:      cmd.Bool("cleanup"),
		IncludeDependencyCleanup: cmd.Bool("autoremove"),
	})
	if err != nil {
		return fmt.Errorf("failed to resolve uninstall plan: %w", err)
	}

	return r.renderPlan(plan, formatter.FromUninstall(shared.NormalizeSlug(distro), plan), cmd)
}

// renderPlan writes a resolved plan in the requested format. File formats
// honor --output; the json format keeps the API's field names.
func (r *Runner) renderPlan(plan any, export *formatter.PlanExport, cmd *cli.Command) error {
	format := strings.ToLower(cmd.String("format"))
	output := cmd.String("output")

	switch format {
	case "json":
		return r.writeJSON(plan, true)
	case "script":
		if output != "" {
			return r.reportWritten(formatter.WriteScriptExport(export, output))
		}
		data, err := formatter.ExportToScript(export)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	case "markdown", "md":
		if output != "" {
			return r.reportWritten(formatter.WriteMarkdownExport(export, output))
		}
		data, err := formatter.ExportToMarkdown(export)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	case "text", "":
		if output != "" {
			return r.reportWritten(formatter.WriteTextExport(export, output))
		}
		return r.renderPlanText(export)
	default:
		return fmt.Errorf("%w: unknown format %q (expected text, script, markdown, or json)", shared.ErrInvalidFlag, format)
	}
}

func (r *Runner) reportWritten(path string, err error) error {
	if err != nil {
		return err
	}
	return r.writePlain("✓ Plan written to %s\n", path)
}

// renderPlanText prints the styled terminal view of a plan.
func (r *Runner) renderPlanText(export *formatter.PlanExport) error {
	r.writePlainHeader(fmt.Sprintf("%s plan: %s", strings.ToUpper(export.Mode[:1])+export.Mode[1:], export.Distro))

	if export.CommandCount() == 0 {
		r.writePlain("\n%s\n", ui.Styles.Warn("No commands to run."))
	}

	for _, section := range export.Sections {
		r.writePlain("\n%s\n", ui.Styles.Title(section.Title))
		for _, line := range section.Commands {
			r.writePlain("  %s\n", ui.Styles.OK(line))
		}
	}

	if len(export.Breakdown) > 0 {
		r.writePlain("\n%s\n", ui.Styles.Title("Breakdown"))
		for _, entry := range export.Breakdown {
			r.writePlain("  %s: %s\n", entry.Source, strings.Join(entry.PackageIdentifiers, " "))
		}
	}

	if len(export.Warnings) > 0 {
		r.writePlain("\n%s\n", ui.Styles.Title("Warnings"))
		for _, warning := range export.Warnings {
			r.writePlain("  %s\n", ui.Styles.Warn(warning))
		}
	}

	for _, step := range export.ManualSteps {
		r.writePlain("  %s\n", ui.Styles.Help(fmt.Sprintf("%s: %s", step.Application, step.Instructions)))
	}

	return nil
}

// planFlags are the flags shared by the install and uninstall commands.
func planFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "distro",
			Aliases:  []string{"d"},
			Usage:    "Target distribution slug",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "prefer",
			Usage: "Source preference: auto, a source slug, or a source category",
			Value: "auto",
		},
		&cli.StringFlag{
			Name:  "method",
			Usage: "Install method for declarative sources (ephemeral, persistent, declarative)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, script, markdown, or json",
			Value:   "text",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the plan to a file instead of stdout",
		},
	}
}

// installCommand resolves applications into install commands.
func installCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "install",
		Usage:     "Resolve install commands for applications on a distribution",
		ArgsUsage: "<app-slug>...",
		Flags:     planFlags(),
		Action:    r.Install,
	}
}

// uninstallCommand resolves applications into uninstall commands.
func uninstallCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "uninstall",
		Usage:     "Resolve uninstall commands for applications on a distribution",
		ArgsUsage: "<app-slug>...",
		Flags: append(planFlags(),
			&cli.BoolFlag{
				Name:  "cleanup",
				Usage: "Include commands that reverse each source's setup",
			},
			&cli.BoolFlag{
				Name:  "autoremove",
				Usage: "Include dependency cleanup commands for sources that support it",
			},
		),
		Action: r.Uninstall,
	}
}
