package seed

import (
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/Sagyam/linite-sub002/internal/models"
	"github.com/Sagyam/linite-sub002/internal/repositories"
	"github.com/Sagyam/linite-sub002/internal/shared"
	"github.com/charmbracelet/log"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// DefaultCatalog returns the seed file embedded in the binary.
func DefaultCatalog() []byte {
	return defaultCatalog
}

// LoadResult counts what a seed run touched.
type LoadResult struct {
	SourcesCreated int
	SourcesUpdated int
	DistrosCreated int
	DistrosUpdated int
	AppsCreated    int
	AppsUpdated    int
	Links          int
	Packages       int
}

// Loader writes parsed catalogs into the database through the repositories.
//
// Loading is idempotent and additive: existing rows are matched by slug and
// updated in place, links and packages are upserted, and nothing the file
// does not mention is deleted.
type Loader struct {
	sources *repositories.SourceRepository
	distros *repositories.DistributionRepository
	apps    *repositories.ApplicationRepository
	logger  *log.Logger
}

// NewLoader creates a loader over the given database handle.
func NewLoader(db *sql.DB, logger *log.Logger) *Loader {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Loader{
		sources: repositories.NewSourceRepository(db),
		distros: repositories.NewDistributionRepository(db),
		apps:    repositories.NewApplicationRepository(db),
		logger:  logger,
	}
}

// Load writes the catalog into the database.
func (l *Loader) Load(catalog *Catalog) (*LoadResult, error) {
	result := &LoadResult{}

	sourceIDs, err := l.loadSources(catalog.Sources, result)
	if err != nil {
		return result, err
	}
	if err := l.loadDistributions(catalog.Distributions, sourceIDs, result); err != nil {
		return result, err
	}
	if err := l.loadApplications(catalog.Applications, sourceIDs, result); err != nil {
		return result, err
	}

	l.logger.Info("catalog seeded",
		"sources", result.SourcesCreated+result.SourcesUpdated,
		"distributions", result.DistrosCreated+result.DistrosUpdated,
		"applications", result.AppsCreated+result.AppsUpdated,
		"links", result.Links,
		"packages", result.Packages,
	)
	return result, nil
}

func (l *Loader) loadSources(sources []*models.Source, result *LoadResult) (map[string]string, error) {
	existing, err := l.sources.List(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	bySlug := make(map[string]*models.Source, len(existing))
	for _, src := range existing {
		bySlug[src.Slug] = src
	}

	ids := make(map[string]string, len(sources))
	for _, src := range sources {
		if current, ok := bySlug[src.Slug]; ok {
			src.SetID(current.ID())
			src.SetSequence(current.Sequence())
			if err := l.sources.Update(src); err != nil {
				return nil, fmt.Errorf("failed to update source %s: %w", src.Slug, err)
			}
			result.SourcesUpdated++
		} else {
			if err := l.sources.Create(src); err != nil {
				return nil, fmt.Errorf("failed to create source %s: %w", src.Slug, err)
			}
			result.SourcesCreated++
		}
		ids[src.Slug] = src.ID()
		l.logger.Debug("seeded source", "slug", src.Slug)
	}
	return ids, nil
}

func (l *Loader) loadDistributions(distros []DistroEntry, sourceIDs map[string]string, result *LoadResult) error {
	existing, err := l.distros.List(nil)
	if err != nil {
		return fmt.Errorf("failed to list distributions: %w", err)
	}
	bySlug := make(map[string]*models.Distribution, len(existing))
	for _, distro := range existing {
		bySlug[distro.Slug] = distro
	}

	for _, entry := range distros {
		distro := entry.Distro
		if current, ok := bySlug[distro.Slug]; ok {
			distro.SetID(current.ID())
			distro.SetSequence(current.Sequence())
			if err := l.distros.Update(distro); err != nil {
				return fmt.Errorf("failed to update distribution %s: %w", distro.Slug, err)
			}
			result.DistrosUpdated++
		} else {
			if err := l.distros.Create(distro); err != nil {
				return fmt.Errorf("failed to create distribution %s: %w", distro.Slug, err)
			}
			result.DistrosCreated++
		}

		for _, link := range entry.Links {
			err := l.distros.LinkSource(models.DistroSource{
				DistributionID: distro.ID(),
				SourceID:       sourceIDs[link.SourceSlug],
				Priority:       link.Priority,
				IsDefault:      link.IsDefault,
			})
			if err != nil {
				return fmt.Errorf("failed to link %s to %s: %w", link.SourceSlug, distro.Slug, err)
			}
			result.Links++
		}
		l.logger.Debug("seeded distribution", "slug", distro.Slug, "links", len(entry.Links))
	}
	return nil
}

func (l *Loader) loadApplications(apps []AppEntry, sourceIDs map[string]string, result *LoadResult) error {
	existing, err := l.apps.List(nil)
	if err != nil {
		return fmt.Errorf("failed to list applications: %w", err)
	}
	bySlug := make(map[string]*models.Application, len(existing))
	for _, app := range existing {
		bySlug[app.Slug] = app
	}

	for _, entry := range apps {
		app := entry.App
		if current, ok := bySlug[app.Slug]; ok {
			app.SetID(current.ID())
			app.SetSequence(current.Sequence())
			if err := l.apps.Update(app); err != nil {
				return fmt.Errorf("failed to update application %s: %w", app.Slug, err)
			}
			result.AppsUpdated++
		} else {
			if err := l.apps.Create(app); err != nil {
				return fmt.Errorf("failed to create application %s: %w", app.Slug, err)
			}
			result.AppsCreated++
		}

		for _, ref := range entry.Packages {
			pkg := models.NewPackage(0, app.ID(), sourceIDs[ref.SourceSlug], ref.Identifier)
			pkg.Version = ref.Version
			pkg.SizeMB = ref.SizeMB
			pkg.Maintainer = ref.Maintainer
			if err := l.apps.UpsertPackage(pkg); err != nil {
				return fmt.Errorf("failed to upsert package %s/%s: %w", app.Slug, ref.SourceSlug, err)
			}
			result.Packages++
		}
		l.logger.Debug("seeded application", "slug", app.Slug, "packages", len(entry.Packages))
	}
	return nil
}
