package engine

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Sagyam/linite-sub002/internal/models"
	"github.com/Sagyam/linite-sub002/internal/shared"
)

// group collects the assignments sharing one resolved source. Applications
// are held in slug order so identifier lists come out stable.
type group struct {
	source *models.Source
	apps   []assignment
}

// buildGroups clusters assignments by source and orders the groups with the
// same ranking used for candidate selection.
func buildGroups(snap *snapshot, res *resolution) []group {
	slugs := make([]string, 0, len(res.assignments))
	for slug := range res.assignments {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	bySource := make(map[string]*group)
	for _, slug := range slugs {
		a := res.assignments[slug]
		g, ok := bySource[a.source.ID()]
		if !ok {
			g = &group{source: a.source}
			bySource[a.source.ID()] = g
		}
		g.apps = append(g.apps, a)
	}

	groups := make([]group, 0, len(bySource))
	for _, g := range bySource {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return snap.less(groups[i].source, groups[j].source)
	})

	return groups
}

// identifiers returns the group's raw package identifiers in application
// slug order.
func identifiers(g group) []string {
	out := make([]string, len(g.apps))
	for i, a := range g.apps {
		out[i] = a.pkg.Identifier
	}
	return out
}

func breakdownEntry(g group) BreakdownEntry {
	return BreakdownEntry{Source: g.source.Slug, PackageIdentifiers: identifiers(g)}
}

// safeToken matches identifiers that need no shell quoting.
var safeToken = regexp.MustCompile(`^[A-Za-z0-9@%+=:,./_#-]+$`)

// shellQuote returns the token unchanged when it is unambiguously safe for a
// POSIX shell, otherwise single-quotes it with embedded quotes escaped.
// Identifiers are admin-controlled but are never trusted to be shell-safe.
func shellQuote(token string) string {
	if token != "" && !strings.HasPrefix(token, "#") && safeToken.MatchString(token) {
		return token
	}
	return "'" + strings.ReplaceAll(token, "'", `'\''`) + "'"
}

// renderCommand substitutes the quoted identifier list into the template's
// single placeholder. The prefix is applied to each identifier before
// quoting, so prefixed identifiers stay one shell word.
func renderCommand(tpl, prefix string, ids []string) (string, error) {
	if !models.ValidTemplate(tpl) {
		return "", fmt.Errorf("%w: %q", shared.ErrTemplateInvalid, tpl)
	}

	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = shellQuote(prefix + id)
	}

	return strings.Replace(tpl, models.PackagesPlaceholder, strings.Join(quoted, " "), 1), nil
}

// withSudo prefixes the command with sudo unless it already carries one.
func withSudo(cmd string) string {
	if strings.HasPrefix(cmd, "sudo ") {
		return cmd
	}
	return "sudo " + cmd
}

// elevate applies the privilege prefix for the group's source. The windows
// family has no prefix idiom, so commands there are never wrapped.
func elevate(snap *snapshot, source *models.Source, cmd string) string {
	if !source.RequiresSudo || snap.distro.Family == models.FamilyWindows {
		return cmd
	}
	return withSudo(cmd)
}

// methodAware reports whether the source participates in install method
// selection on this distribution. Only nix-family distributions carry
// sources with per-method template variants.
func methodAware(snap *snapshot, source *models.Source) bool {
	return snap.distro.Family == models.FamilyNix && len(source.Methods) > 0
}

// groupTemplates returns the effective templates and identifier prefix for a
// group. Method variants apply only to method-aware sources; a missing
// variant falls back to the source's base templates.
func groupTemplates(snap *snapshot, source *models.Source, method models.InstallMethod) models.MethodTemplate {
	if methodAware(snap, source) {
		if tpl, ok := source.MethodTemplate(method); ok {
			return tpl
		}
	}
	return models.MethodTemplate{
		InstallTemplate:   source.InstallTemplate,
		UninstallTemplate: source.UninstallTemplate,
	}
}

// ephemeralGroup reports whether the group runs under the ephemeral method,
// which leaves nothing behind to uninstall or clean up.
func ephemeralGroup(state *callState, source *models.Source) bool {
	return methodAware(state.snap, source) && state.method == models.MethodEphemeral
}

// renderInstall synthesizes one install command per group plus one setup
// command per source that has one for the distribution's family. A broken
// template moves the group's applications to unresolved and skips the group
// without disturbing the others.
func (e *Engine) renderInstall(state *callState, plan *InstallPlan) {
	for _, g := range state.groups {
		tpl := groupTemplates(state.snap, g.source, state.method)

		cmd, err := renderCommand(tpl.InstallTemplate, tpl.IdentifierPrefix, identifiers(g))
		if err != nil {
			e.failGroup(state.res, g, err)
			continue
		}

		if setup, ok := g.source.Setup.Resolve(state.snap.distro.Family); ok {
			plan.SetupCommands = append(plan.SetupCommands, elevate(state.snap, g.source, setup))
		}

		plan.Commands = append(plan.Commands, elevate(state.snap, g.source, cmd))
		plan.Breakdown = append(plan.Breakdown, breakdownEntry(g))
	}
}

// renderUninstall synthesizes one uninstall command per group, plus the
// requested cleanup stages. Ephemeral groups emit no commands at all; a
// source with no uninstall template contributes only its cleanup stages and
// breakdown entry.
func (e *Engine) renderUninstall(state *callState, setupCleanup, dependencyCleanup bool, plan *UninstallPlan) {
	for _, g := range state.groups {
		if ephemeralGroup(state, g.source) {
			plan.Breakdown = append(plan.Breakdown, breakdownEntry(g))
			continue
		}

		tpl := groupTemplates(state.snap, g.source, state.method)

		if tpl.UninstallTemplate != "" {
			cmd, err := renderCommand(tpl.UninstallTemplate, tpl.IdentifierPrefix, identifiers(g))
			if err != nil {
				e.failGroup(state.res, g, err)
				continue
			}
			plan.Commands = append(plan.Commands, elevate(state.snap, g.source, cmd))
		}

		if setupCleanup {
			if cleanup, ok := g.source.Cleanup.Resolve(state.snap.distro.Family); ok {
				plan.CleanupCommands = append(plan.CleanupCommands, elevate(state.snap, g.source, cleanup))
			}
		}

		if dependencyCleanup && g.source.DependencyCleanup != "" {
			plan.DependencyCleanupCommands = append(plan.DependencyCleanupCommands, elevate(state.snap, g.source, g.source.DependencyCleanup))
		}

		plan.Breakdown = append(plan.Breakdown, breakdownEntry(g))
	}
}

// failGroup records a template failure: the error is logged and every
// application assigned to the source becomes unresolved. One broken source
// never blocks commands for unrelated sources.
func (e *Engine) failGroup(res *resolution, g group, err error) {
	e.logger.Error("command template rejected", "source", g.source.Slug, "error", err)
	for _, a := range g.apps {
		delete(res.assignments, a.app.Slug)
		res.unresolved[a.app.Slug] = reasonTemplateBroken
	}
}
