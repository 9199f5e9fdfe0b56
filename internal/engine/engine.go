// Package engine resolves application selections into shell command plans.
//
// Resolution runs in two stages. The source resolver picks, for every
// requested application, the best source the target distribution can use,
// honoring the caller's source preference. The command synthesizer then
// groups assignments by source and renders one shell command per source from
// its stored template, adding setup, cleanup, and privilege escalation as the
// source demands.
//
// A resolution call never fails because one application cannot be satisfied:
// unsatisfiable applications surface as warnings and manual steps on an
// otherwise complete plan. Only an unknown distribution, an empty selection,
// a malformed source preference, or a storage failure abort the call.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Sagyam/linite-sub002/internal/models"
	"github.com/Sagyam/linite-sub002/internal/shared"
)

// Store provides the catalog view the engine resolves against.
// Implemented by repositories.CatalogStore.
type Store interface {
	GetDistro(ctx context.Context, slug string) (*models.Distribution, error)
	GetDistroSources(ctx context.Context, distributionID string) ([]models.DistroSource, error)
	GetSources(ctx context.Context, ids []string) ([]*models.Source, error)
	GetSourceBySlug(ctx context.Context, slug string) (*models.Source, error)
	GetApplications(ctx context.Context, slugs []string) ([]*models.Application, error)
	GetAvailablePackages(ctx context.Context, applicationIDs []string) (map[string][]models.Package, error)
}

// Engine resolves install and uninstall requests into command plans.
type Engine struct {
	store  Store
	logger *log.Logger
}

// New creates an Engine over the given catalog store.
func New(store Store, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{store: store, logger: logger}
}

// InstallRequest asks for install commands for a set of applications on one distribution.
type InstallRequest struct {
	DistroSlug       string   `json:"distroSlug"`
	AppIDs           []string `json:"appIds"`
	SourcePreference string   `json:"sourcePreference,omitempty"`
	InstallMethod    string   `json:"installMethod,omitempty"`
}

// UninstallRequest mirrors InstallRequest with opt-in cleanup stages.
type UninstallRequest struct {
	DistroSlug               string   `json:"distroSlug"`
	AppIDs                   []string `json:"appIds"`
	SourcePreference         string   `json:"sourcePreference,omitempty"`
	InstallMethod            string   `json:"installMethod,omitempty"`
	IncludeSetupCleanup      bool     `json:"includeSetupCleanup,omitempty"`
	IncludeDependencyCleanup bool     `json:"includeDependencyCleanup,omitempty"`
}

// BreakdownEntry mirrors one synthesized command group: the source and the
// package identifiers substituted into its template, in command order.
type BreakdownEntry struct {
	Source             string   `json:"source"`
	PackageIdentifiers []string `json:"packageIdentifiers"`
}

// ManualStep carries free-text install instructions for an application the
// resolver could not satisfy.
type ManualStep struct {
	Application  string `json:"application"`
	Instructions string `json:"instructions"`
}

// InstallPlan is the result of an install resolution.
type InstallPlan struct {
	Commands      []string         `json:"commands"`
	SetupCommands []string         `json:"setupCommands"`
	Breakdown     []BreakdownEntry `json:"breakdown"`
	Warnings      []string         `json:"warnings"`
	ManualSteps   []ManualStep     `json:"manualSteps"`
}

// UninstallPlan is the result of an uninstall resolution.
type UninstallPlan struct {
	Commands                  []string         `json:"commands"`
	CleanupCommands           []string         `json:"cleanupCommands"`
	DependencyCleanupCommands []string         `json:"dependencyCleanupCommands"`
	Breakdown                 []BreakdownEntry `json:"breakdown"`
	Warnings                  []string         `json:"warnings"`
	ManualSteps               []ManualStep     `json:"manualSteps"`
}

// callState bundles the prepared inputs shared by both resolution modes.
type callState struct {
	snap   *snapshot
	res    *resolution
	groups []group
	method models.InstallMethod
}

// Install resolves sources for the requested applications and synthesizes
// install commands.
func (e *Engine) Install(ctx context.Context, req InstallRequest) (*InstallPlan, error) {
	state, err := e.prepare(ctx, req.DistroSlug, req.AppIDs, req.SourcePreference, req.InstallMethod)
	if err != nil {
		return nil, err
	}

	plan := &InstallPlan{
		Commands:      []string{},
		SetupCommands: []string{},
		Breakdown:     []BreakdownEntry{},
		Warnings:      []string{},
		ManualSteps:   []ManualStep{},
	}

	e.renderInstall(state, plan)
	attachReport(state.snap, state.res, &plan.Warnings, &plan.ManualSteps)

	e.logger.Debug("resolved install plan",
		"distro", state.snap.distro.Slug,
		"requested", len(state.snap.requested),
		"commands", len(plan.Commands),
		"unresolved", len(state.res.unresolved),
	)

	return plan, nil
}

// Uninstall resolves sources for the requested applications and synthesizes
// uninstall commands with the requested cleanup stages.
func (e *Engine) Uninstall(ctx context.Context, req UninstallRequest) (*UninstallPlan, error) {
	state, err := e.prepare(ctx, req.DistroSlug, req.AppIDs, req.SourcePreference, req.InstallMethod)
	if err != nil {
		return nil, err
	}

	plan := &UninstallPlan{
		Commands:                  []string{},
		CleanupCommands:           []string{},
		DependencyCleanupCommands: []string{},
		Breakdown:                 []BreakdownEntry{},
		Warnings:                  []string{},
		ManualSteps:               []ManualStep{},
	}

	e.renderUninstall(state, req.IncludeSetupCleanup, req.IncludeDependencyCleanup, plan)
	attachReport(state.snap, state.res, &plan.Warnings, &plan.ManualSteps)

	e.logger.Debug("resolved uninstall plan",
		"distro", state.snap.distro.Slug,
		"requested", len(state.snap.requested),
		"commands", len(plan.Commands),
		"unresolved", len(state.res.unresolved),
	)

	return plan, nil
}

// prepare validates the request, loads the catalog snapshot, and runs the
// source resolver.
func (e *Engine) prepare(ctx context.Context, distroSlug string, appIDs []string, rawPref, rawMethod string) (*callState, error) {
	slugs, err := normalizeAppIDs(appIDs)
	if err != nil {
		return nil, err
	}

	snap, err := e.loadSnapshot(ctx, distroSlug, slugs)
	if err != nil {
		return nil, err
	}

	pref, err := e.parsePreference(ctx, rawPref)
	if err != nil {
		return nil, err
	}

	res := resolve(snap, pref)

	return &callState{
		snap:   snap,
		res:    res,
		groups: buildGroups(snap, res),
		method: parseMethod(rawMethod),
	}, nil
}

// normalizeAppIDs dedupes and normalizes the requested application slugs,
// preserving request order. An effectively empty selection is invalid.
func normalizeAppIDs(appIDs []string) ([]string, error) {
	seen := make(map[string]bool, len(appIDs))
	var slugs []string
	for _, raw := range appIDs {
		slug := shared.NormalizeSlug(raw)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		slugs = append(slugs, slug)
	}

	if len(slugs) == 0 {
		return nil, shared.ErrNoApplications
	}

	return slugs, nil
}

// preferenceKind discriminates how a source preference narrows candidates.
type preferenceKind int

const (
	preferAuto preferenceKind = iota
	preferSource
	preferCategory
)

// preference is a parsed, validated sourcePreference value.
type preference struct {
	kind     preferenceKind
	slug     string
	category models.Category
}

// parsePreference validates the raw preference against the live catalog.
// Category keywords are a closed set; anything else must name an existing
// source slug.
func (e *Engine) parsePreference(ctx context.Context, raw string) (preference, error) {
	value := strings.TrimSpace(strings.ToLower(raw))
	if value == "" || value == "auto" {
		return preference{kind: preferAuto}, nil
	}

	if category := models.Category(value); category.Valid() {
		return preference{kind: preferCategory, category: category}, nil
	}

	if _, err := e.store.GetSourceBySlug(ctx, value); err != nil {
		if errors.Is(err, shared.ErrSourceNotFound) {
			return preference{}, fmt.Errorf("%w: %q", shared.ErrInvalidPreference, raw)
		}
		return preference{}, err
	}

	return preference{kind: preferSource, slug: value}, nil
}

// parseMethod maps the raw install method to a known one. Unknown or omitted
// values default to the ephemeral method; the value only takes effect for
// declarative sources on nix-family distributions.
func parseMethod(raw string) models.InstallMethod {
	method := models.InstallMethod(strings.TrimSpace(strings.ToLower(raw)))
	if !method.Valid() {
		return models.MethodEphemeral
	}
	return method
}
