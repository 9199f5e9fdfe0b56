package engine

import (
	"sort"

	"github.com/Sagyam/linite-sub002/internal/models"
)

// unresolvedReason explains why an application got no source assignment.
type unresolvedReason int

const (
	reasonUnknownApp unresolvedReason = iota
	reasonNoSources
	reasonNoPackage
	reasonTemplateBroken
)

func (r unresolvedReason) message() string {
	switch r {
	case reasonUnknownApp:
		return "unknown application"
	case reasonNoSources:
		return "distribution has no configured sources"
	case reasonNoPackage:
		return "no package available for this distribution"
	case reasonTemplateBroken:
		return "source command template is invalid"
	}
	return "could not be resolved"
}

// assignment pairs an application with its selected source and package.
type assignment struct {
	app    *models.Application
	source *models.Source
	pkg    models.Package
}

// resolution is the outcome of the source resolver: one assignment per
// satisfied application, a reason per unsatisfied one.
type resolution struct {
	assignments map[string]assignment
	unresolved  map[string]unresolvedReason
}

// resolve assigns each requested application its best candidate source.
// Applications that cannot be satisfied are recorded, never fatal.
func resolve(snap *snapshot, pref preference) *resolution {
	res := &resolution{
		assignments: make(map[string]assignment, len(snap.requested)),
		unresolved:  make(map[string]unresolvedReason),
	}

	for _, slug := range snap.requested {
		app, ok := snap.apps[slug]
		if !ok {
			res.unresolved[slug] = reasonUnknownApp
			continue
		}
		if len(snap.sources) == 0 {
			res.unresolved[slug] = reasonNoSources
			continue
		}

		candidates := candidatesFor(snap, app)
		if len(candidates) == 0 {
			res.unresolved[slug] = reasonNoPackage
			continue
		}

		res.assignments[slug] = pick(candidates, pref)
	}

	return res
}

// candidatesFor returns the application's viable assignments, best first. A
// candidate needs both a link from the distribution to the source and an
// available package in that source.
func candidatesFor(snap *snapshot, app *models.Application) []assignment {
	var candidates []assignment
	for sourceID, pkg := range snap.packages[app.ID()] {
		source, ok := snap.sources[sourceID]
		if !ok {
			continue
		}
		candidates = append(candidates, assignment{app: app, source: source, pkg: pkg})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return snap.less(candidates[i].source, candidates[j].source)
	})

	return candidates
}

// pick applies the source preference to a ranked candidate list. A preference
// that matches none of the candidates falls back to automatic selection, so a
// narrowed-out application still installs from its best source.
func pick(candidates []assignment, pref preference) assignment {
	switch pref.kind {
	case preferSource:
		for _, cand := range candidates {
			if cand.source.Slug == pref.slug {
				return cand
			}
		}
	case preferCategory:
		for _, cand := range candidates {
			if cand.source.Category == pref.category {
				return cand
			}
		}
	}
	return candidates[0]
}
