// package formatter exports resolved command plans to various formats (shell script, Markdown, plain text)
package formatter

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/Sagyam/linite-sub002/internal/engine"
)

// Section is a named list of command lines within a plan.
type Section struct {
	Title    string
	Commands []string
}

// PlanExport is the format-neutral view of a resolution result. Install and
// uninstall plans both flatten into sections so one renderer serves both.
type PlanExport struct {
	Distro      string
	Mode        string // "install" or "uninstall"
	Sections    []Section
	Breakdown   []engine.BreakdownEntry
	Warnings    []string
	ManualSteps []engine.ManualStep
}

// FromInstall converts an install plan into an export. Empty sections are
// dropped so renderers never emit headers with nothing under them.
func FromInstall(distro string, plan *engine.InstallPlan) *PlanExport {
	export := &PlanExport{
		Distro:      distro,
		Mode:        "install",
		Breakdown:   plan.Breakdown,
		Warnings:    plan.Warnings,
		ManualSteps: plan.ManualSteps,
	}
	export.addSection("Setup", plan.SetupCommands)
	export.addSection("Install", plan.Commands)
	return export
}

// FromUninstall converts an uninstall plan into an export.
func FromUninstall(distro string, plan *engine.UninstallPlan) *PlanExport {
	export := &PlanExport{
		Distro:      distro,
		Mode:        "uninstall",
		Breakdown:   plan.Breakdown,
		Warnings:    plan.Warnings,
		ManualSteps: plan.ManualSteps,
	}
	export.addSection("Uninstall", plan.Commands)
	export.addSection("Cleanup", plan.CleanupCommands)
	export.addSection("Dependency cleanup", plan.DependencyCleanupCommands)
	return export
}

func (e *PlanExport) addSection(title string, commands []string) {
	if len(commands) == 0 {
		return
	}
	e.Sections = append(e.Sections, Section{Title: title, Commands: commands})
}

// CommandCount returns the total number of command lines across all sections.
func (e *PlanExport) CommandCount() int {
	n := 0
	for _, section := range e.Sections {
		n += len(section.Commands)
	}
	return n
}

// ExportToScript renders the plan as an executable shell script. Warnings and
// manual steps become comments so the script stays copy-paste runnable.
func ExportToScript(export *PlanExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("#!/usr/bin/env bash\n")
	buf.WriteString(fmt.Sprintf("# %s plan for %s\n", export.Mode, export.Distro))
	buf.WriteString("set -euo pipefail\n")

	for _, section := range export.Sections {
		buf.WriteString(fmt.Sprintf("\n# %s\n", section.Title))
		for _, cmd := range section.Commands {
			buf.WriteString(cmd + "\n")
		}
	}

	if len(export.Warnings) > 0 {
		buf.WriteString("\n# Unresolved applications:\n")
		for _, warning := range export.Warnings {
			buf.WriteString(fmt.Sprintf("#   %s\n", warning))
		}
	}

	for _, step := range export.ManualSteps {
		buf.WriteString(fmt.Sprintf("# %s: %s\n", step.Application, step.Instructions))
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders the plan as Markdown with fenced code blocks per
// section and a breakdown table of what resolves where.
func ExportToMarkdown(export *PlanExport) ([]byte, error) {
	var buf bytes.Buffer

	title := strings.ToUpper(export.Mode[:1]) + export.Mode[1:]
	buf.WriteString(fmt.Sprintf("# %s plan: %s\n\n", title, export.Distro))

	for _, section := range export.Sections {
		buf.WriteString(fmt.Sprintf("## %s\n\n```sh\n", section.Title))
		for _, cmd := range section.Commands {
			buf.WriteString(cmd + "\n")
		}
		buf.WriteString("```\n\n")
	}

	if len(export.Breakdown) > 0 {
		buf.WriteString("## Breakdown\n\n")
		buf.WriteString("| Source | Packages |\n|---|---|\n")
		for _, entry := range export.Breakdown {
			buf.WriteString(fmt.Sprintf("| %s | %s |\n", entry.Source, strings.Join(entry.PackageIdentifiers, ", ")))
		}
		buf.WriteString("\n")
	}

	if len(export.Warnings) > 0 {
		buf.WriteString("## Warnings\n\n")
		for _, warning := range export.Warnings {
			buf.WriteString(fmt.Sprintf("- %s\n", warning))
		}
		buf.WriteString("\n")
	}

	if len(export.ManualSteps) > 0 {
		buf.WriteString("## Manual steps\n\n")
		for _, step := range export.ManualSteps {
			buf.WriteString(fmt.Sprintf("- **%s**: %s\n", step.Application, step.Instructions))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText renders the plan as plain text for terminals and logs.
func ExportToText(export *PlanExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s plan for %s\n", export.Mode, export.Distro))

	for _, section := range export.Sections {
		buf.WriteString(fmt.Sprintf("\n%s:\n", section.Title))
		for _, cmd := range section.Commands {
			buf.WriteString(fmt.Sprintf("  %s\n", cmd))
		}
	}

	for _, entry := range export.Breakdown {
		buf.WriteString(fmt.Sprintf("\n%s -> %s", entry.Source, strings.Join(entry.PackageIdentifiers, " ")))
	}
	if len(export.Breakdown) > 0 {
		buf.WriteString("\n")
	}

	if len(export.Warnings) > 0 {
		buf.WriteString("\nWarnings:\n")
		for _, warning := range export.Warnings {
			buf.WriteString(fmt.Sprintf("  %s\n", warning))
		}
	}

	for _, step := range export.ManualSteps {
		buf.WriteString(fmt.Sprintf("  %s: %s\n", step.Application, step.Instructions))
	}

	return buf.Bytes(), nil
}

// WriteScriptExport writes the plan as an executable script file.
//
// Defaults to {distro}_{mode}.sh as the filename.
func WriteScriptExport(export *PlanExport, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_%s.sh", export.Distro, export.Mode)
	}

	data, err := ExportToScript(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate script: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0755); err != nil {
		return "", fmt.Errorf("failed to write script file: %w", err)
	}

	return filepath, nil
}

// WriteMarkdownExport writes the plan as a Markdown file.
//
// Defaults to {distro}_{mode}.md as the filename.
func WriteMarkdownExport(export *PlanExport, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_%s.md", export.Distro, export.Mode)
	}

	data, err := ExportToMarkdown(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return filepath, nil
}

// WriteTextExport writes the plan as a plain text file.
//
// Defaults to {distro}_{mode}.txt as the filename.
func WriteTextExport(export *PlanExport, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_%s.txt", export.Distro, export.Mode)
	}

	data, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
