// Package seed parses YAML catalog files and loads them into the database.
package seed

import (
	"fmt"

	"github.com/Sagyam/linite-sub002/internal/models"
	"github.com/Sagyam/linite-sub002/internal/shared"
	"gopkg.in/yaml.v3"
)

// yamlCatalog represents the raw YAML structure
type yamlCatalog struct {
	Sources       []yamlSource       `yaml:"sources"`
	Distributions []yamlDistribution `yaml:"distributions"`
	Applications  []yamlApplication  `yaml:"applications"`
}

type yamlSource struct {
	Slug              string            `yaml:"slug"`
	Name              string            `yaml:"name"`
	Category          string            `yaml:"category"`
	InstallTemplate   string            `yaml:"install_template"`
	UninstallTemplate string            `yaml:"uninstall_template"`
	Setup             map[string]string `yaml:"setup"`
	Cleanup           map[string]string `yaml:"cleanup"`
	DependencyCleanup string            `yaml:"dependency_cleanup"`
	RequiresSudo      bool              `yaml:"requires_sudo"`
	Priority          int               `yaml:"priority"`
	CatalogEndpoint   string            `yaml:"catalog_endpoint"`
	Methods           []yamlMethod      `yaml:"methods"`
}

type yamlMethod struct {
	Method            string `yaml:"method"`
	InstallTemplate   string `yaml:"install_template"`
	UninstallTemplate string `yaml:"uninstall_template"`
	IdentifierPrefix  string `yaml:"identifier_prefix"`
}

type yamlDistribution struct {
	Slug    string           `yaml:"slug"`
	Name    string           `yaml:"name"`
	Family  string           `yaml:"family"`
	BasedOn string           `yaml:"based_on"`
	Sources []yamlDistroLink `yaml:"sources"`
}

type yamlDistroLink struct {
	Source    string `yaml:"source"`
	Priority  int    `yaml:"priority"`
	IsDefault bool   `yaml:"default"`
}

type yamlApplication struct {
	Slug         string        `yaml:"slug"`
	Name         string        `yaml:"name"`
	Category     string        `yaml:"category"`
	Description  string        `yaml:"description"`
	InstallNotes string        `yaml:"install_notes"`
	Packages     []yamlPackage `yaml:"packages"`
}

type yamlPackage struct {
	Source     string  `yaml:"source"`
	Identifier string  `yaml:"identifier"`
	Version    string  `yaml:"version"`
	SizeMB     float64 `yaml:"size_mb"`
	Maintainer string  `yaml:"maintainer"`
}

// Catalog is a parsed seed file. Links and packages still reference sources
// by slug; the loader resolves them to row IDs when writing.
type Catalog struct {
	Sources       []*models.Source
	Distributions []DistroEntry
	Applications  []AppEntry
}

// DistroEntry pairs a distribution with its source links.
type DistroEntry struct {
	Distro *models.Distribution
	Links  []LinkEntry
}

// LinkEntry ranks one source for one distribution.
type LinkEntry struct {
	SourceSlug string
	Priority   int
	IsDefault  bool
}

// AppEntry pairs an application with the packages that carry it.
type AppEntry struct {
	App      *models.Application
	Packages []PackageEntry
}

// PackageEntry records one source's identifier for an application.
type PackageEntry struct {
	SourceSlug string
	Identifier string
	Version    string
	SizeMB     float64
	Maintainer string
}

// Parse parses YAML bytes into a validated Catalog.
//
// Validation covers everything the loader relies on: unique slugs, known
// enum values, template placeholder counts, at most one default source per
// distribution, and package or link references to sources the file defines.
func Parse(data []byte) (*Catalog, error) {
	var raw yamlCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	catalog := &Catalog{}

	sourceSlugs := make(map[string]bool, len(raw.Sources))
	for _, ys := range raw.Sources {
		src, err := convertSource(ys)
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", ys.Slug, err)
		}
		if sourceSlugs[src.Slug] {
			return nil, fmt.Errorf("duplicate source slug: %s", src.Slug)
		}
		sourceSlugs[src.Slug] = true
		catalog.Sources = append(catalog.Sources, src)
	}

	distroSlugs := make(map[string]bool, len(raw.Distributions))
	for _, yd := range raw.Distributions {
		entry, err := convertDistribution(yd, sourceSlugs)
		if err != nil {
			return nil, fmt.Errorf("distribution %q: %w", yd.Slug, err)
		}
		if distroSlugs[entry.Distro.Slug] {
			return nil, fmt.Errorf("duplicate distribution slug: %s", entry.Distro.Slug)
		}
		distroSlugs[entry.Distro.Slug] = true
		catalog.Distributions = append(catalog.Distributions, entry)
	}

	appSlugs := make(map[string]bool, len(raw.Applications))
	for _, ya := range raw.Applications {
		entry, err := convertApplication(ya, sourceSlugs)
		if err != nil {
			return nil, fmt.Errorf("application %q: %w", ya.Slug, err)
		}
		if appSlugs[entry.App.Slug] {
			return nil, fmt.Errorf("duplicate application slug: %s", entry.App.Slug)
		}
		appSlugs[entry.App.Slug] = true
		catalog.Applications = append(catalog.Applications, entry)
	}

	return catalog, nil
}

func convertSource(ys yamlSource) (*models.Source, error) {
	src := models.NewSource(0, shared.NormalizeSlug(ys.Slug), ys.Name, models.Category(ys.Category))
	src.InstallTemplate = ys.InstallTemplate
	src.UninstallTemplate = ys.UninstallTemplate
	src.DependencyCleanup = ys.DependencyCleanup
	src.RequiresSudo = ys.RequiresSudo
	src.Priority = ys.Priority
	src.CatalogEndpoint = ys.CatalogEndpoint

	var err error
	if src.Setup, err = convertCommandSpec(ys.Setup); err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	if src.Cleanup, err = convertCommandSpec(ys.Cleanup); err != nil {
		return nil, fmt.Errorf("cleanup: %w", err)
	}

	for _, ym := range ys.Methods {
		src.Methods = append(src.Methods, models.MethodTemplate{
			Method:            models.InstallMethod(ym.Method),
			InstallTemplate:   ym.InstallTemplate,
			UninstallTemplate: ym.UninstallTemplate,
			IdentifierPrefix:  ym.IdentifierPrefix,
		})
	}

	if err := src.Validate(); err != nil {
		return nil, err
	}
	return src, nil
}

// convertCommandSpec maps YAML family keys onto a CommandSpec. The "default"
// key sets the uniform fallback command.
func convertCommandSpec(raw map[string]string) (models.CommandSpec, error) {
	var spec models.CommandSpec
	for key, command := range raw {
		if key == "default" {
			spec.SetVariant("", command)
			continue
		}
		family := models.Family(key)
		if !family.Valid() {
			return spec, fmt.Errorf("unknown family %q", key)
		}
		spec.SetVariant(family, command)
	}
	return spec, nil
}

func convertDistribution(yd yamlDistribution, sources map[string]bool) (DistroEntry, error) {
	distro := models.NewDistribution(0, shared.NormalizeSlug(yd.Slug), yd.Name, models.Family(yd.Family))
	distro.BasedOn = yd.BasedOn
	if err := distro.Validate(); err != nil {
		return DistroEntry{}, err
	}

	entry := DistroEntry{Distro: distro}
	seen := make(map[string]bool, len(yd.Sources))
	defaults := 0
	for _, link := range yd.Sources {
		slug := shared.NormalizeSlug(link.Source)
		if !sources[slug] {
			return DistroEntry{}, fmt.Errorf("links unknown source %q", link.Source)
		}
		if seen[slug] {
			return DistroEntry{}, fmt.Errorf("links source %q twice", link.Source)
		}
		seen[slug] = true
		if link.IsDefault {
			defaults++
		}
		entry.Links = append(entry.Links, LinkEntry{
			SourceSlug: slug,
			Priority:   link.Priority,
			IsDefault:  link.IsDefault,
		})
	}
	if defaults > 1 {
		return DistroEntry{}, fmt.Errorf("marks %d sources as default, at most one allowed", defaults)
	}
	return entry, nil
}

func convertApplication(ya yamlApplication, sources map[string]bool) (AppEntry, error) {
	app := models.NewApplication(0, shared.NormalizeSlug(ya.Slug), ya.Name)
	app.Category = ya.Category
	app.Description = ya.Description
	app.InstallNotes = ya.InstallNotes
	if err := app.Validate(); err != nil {
		return AppEntry{}, err
	}

	entry := AppEntry{App: app}
	seen := make(map[string]bool, len(ya.Packages))
	for _, pkg := range ya.Packages {
		slug := shared.NormalizeSlug(pkg.Source)
		if !sources[slug] {
			return AppEntry{}, fmt.Errorf("package references unknown source %q", pkg.Source)
		}
		if seen[slug] {
			return AppEntry{}, fmt.Errorf("has two packages for source %q", pkg.Source)
		}
		seen[slug] = true
		if pkg.Identifier == "" {
			return AppEntry{}, fmt.Errorf("package for source %q has no identifier", pkg.Source)
		}
		entry.Packages = append(entry.Packages, PackageEntry{
			SourceSlug: slug,
			Identifier: pkg.Identifier,
			Version:    pkg.Version,
			SizeMB:     pkg.SizeMB,
			Maintainer: pkg.Maintainer,
		})
	}
	return entry, nil
}
