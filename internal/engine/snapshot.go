package engine

import (
	"context"

	"github.com/Sagyam/linite-sub002/internal/models"
	"github.com/Sagyam/linite-sub002/internal/shared"
)

// snapshot is the catalog view for a single resolution call. It is loaded up
// front so one call stays internally consistent even while catalog writes
// land mid-flight. Only sources linked to the distribution and packages
// currently marked available make it in.
type snapshot struct {
	distro    *models.Distribution
	links     map[string]models.DistroSource
	sources   map[string]*models.Source
	requested []string
	apps      map[string]*models.Application
	packages  map[string]map[string]models.Package
}

// loadSnapshot fetches the distribution, its linked sources, and the
// available packages for the requested application slugs.
func (e *Engine) loadSnapshot(ctx context.Context, distroSlug string, slugs []string) (*snapshot, error) {
	distro, err := e.store.GetDistro(ctx, shared.NormalizeSlug(distroSlug))
	if err != nil {
		return nil, err
	}

	links, err := e.store.GetDistroSources(ctx, distro.ID())
	if err != nil {
		return nil, err
	}

	linkIndex := make(map[string]models.DistroSource, len(links))
	sourceIDs := make([]string, 0, len(links))
	for _, link := range links {
		linkIndex[link.SourceID] = link
		sourceIDs = append(sourceIDs, link.SourceID)
	}

	sources, err := e.store.GetSources(ctx, sourceIDs)
	if err != nil {
		return nil, err
	}

	sourceIndex := make(map[string]*models.Source, len(sources))
	for _, source := range sources {
		sourceIndex[source.ID()] = source
	}

	apps, err := e.store.GetApplications(ctx, slugs)
	if err != nil {
		return nil, err
	}

	appIndex := make(map[string]*models.Application, len(apps))
	appIDs := make([]string, 0, len(apps))
	for _, app := range apps {
		appIndex[app.Slug] = app
		appIDs = append(appIDs, app.ID())
	}

	packages, err := e.store.GetAvailablePackages(ctx, appIDs)
	if err != nil {
		return nil, err
	}

	packageIndex := make(map[string]map[string]models.Package, len(packages))
	for appID, pkgs := range packages {
		bySource := make(map[string]models.Package, len(pkgs))
		for _, pkg := range pkgs {
			bySource[pkg.SourceID] = pkg
		}
		packageIndex[appID] = bySource
	}

	return &snapshot{
		distro:    distro,
		links:     linkIndex,
		sources:   sourceIndex,
		requested: slugs,
		apps:      appIndex,
		packages:  packageIndex,
	}, nil
}

// less is the canonical source ranking: distribution link priority first,
// then the source's own priority, then the distribution's default link, then
// slug as the alphabetical tiebreak. It orders both candidate selection and
// command groups, which keeps plans deterministic for identical inputs.
func (s *snapshot) less(a, b *models.Source) bool {
	la, lb := s.links[a.ID()], s.links[b.ID()]
	if la.Priority != lb.Priority {
		return la.Priority > lb.Priority
	}
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if la.IsDefault != lb.IsDefault {
		return la.IsDefault
	}
	return a.Slug < b.Slug
}
