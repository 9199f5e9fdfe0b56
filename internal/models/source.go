package models

import (
	"fmt"
	"strings"
)

// PackagesPlaceholder is the token in command templates that is replaced
// with the space-separated, shell-quoted package identifier list.
const PackagesPlaceholder = "{packages}"

// ValidTemplate reports whether tpl substitutes the package list exactly once.
func ValidTemplate(tpl string) bool {
	return strings.Count(tpl, PackagesPlaceholder) == 1
}

// Category classifies sources by how they deliver software.
type Category string

const (
	CategoryNative      Category = "native"      // distro package managers (apt, dnf, pacman, zypper)
	CategorySandboxed   Category = "sandboxed"   // containerized formats (flatpak, snap)
	CategoryDeclarative Category = "declarative" // configuration driven managers (nix)
	CategoryWindows     Category = "windows"     // windows package managers (winget)
)

// Valid reports whether c is a known source category.
func (c Category) Valid() bool {
	switch c {
	case CategoryNative, CategorySandboxed, CategoryDeclarative, CategoryWindows:
		return true
	}
	return false
}

// InstallMethod selects how a declarative source realizes an install.
type InstallMethod string

const (
	MethodEphemeral   InstallMethod = "ephemeral"   // temporary shell, nothing persisted
	MethodPersistent  InstallMethod = "persistent"  // installed into the user profile
	MethodDeclarative InstallMethod = "declarative" // configuration snippet for the system manifest
)

// Valid reports whether m is a known install method.
func (m InstallMethod) Valid() bool {
	switch m {
	case MethodEphemeral, MethodPersistent, MethodDeclarative:
		return true
	}
	return false
}

// MethodTemplate overrides a source's command templates for one install method.
//
// IdentifierPrefix is prepended to each package identifier before quoting and
// substitution, e.g. "nixpkgs." for nix-env attribute paths or "nixpkgs#" for
// flake references.
type MethodTemplate struct {
	Method            InstallMethod
	InstallTemplate   string
	UninstallTemplate string
	IdentifierPrefix  string
}

// Validate checks the method template's data.
func (t MethodTemplate) Validate() error {
	if !t.Method.Valid() {
		return fmt.Errorf("unknown install method: %s", t.Method)
	}
	if !ValidTemplate(t.InstallTemplate) {
		return fmt.Errorf("install template for method %s must contain %s exactly once", t.Method, PackagesPlaceholder)
	}
	if t.UninstallTemplate != "" && !ValidTemplate(t.UninstallTemplate) {
		return fmt.Errorf("uninstall template for method %s must contain %s exactly once", t.Method, PackagesPlaceholder)
	}
	return nil
}

// CommandSpec describes a source's setup or cleanup command. A spec is either
// absent, a single command shared by every distribution family, a set of
// per-family variants, or both, in which case the uniform command acts as the
// fallback for families without a variant.
type CommandSpec struct {
	uniform  string
	variants map[Family]string
}

// UniformCommand returns a spec whose command applies to all families.
func UniformCommand(command string) CommandSpec {
	return CommandSpec{uniform: command}
}

// PerFamilyCommand returns a spec with one command variant per family.
func PerFamilyCommand(variants map[Family]string) CommandSpec {
	spec := CommandSpec{variants: make(map[Family]string, len(variants))}
	for family, command := range variants {
		spec.variants[family] = command
	}
	return spec
}

// IsZero reports whether the spec carries no command at all.
func (c CommandSpec) IsZero() bool {
	return c.uniform == "" && len(c.variants) == 0
}

// Resolve returns the command for the given family and whether one exists.
// An exact family variant wins over the uniform fallback.
func (c CommandSpec) Resolve(family Family) (string, bool) {
	if command, ok := c.variants[family]; ok && command != "" {
		return command, true
	}
	if c.uniform != "" {
		return c.uniform, true
	}
	return "", false
}

// SetVariant assigns the command for one family. The empty family sets
// the uniform fallback.
func (c *CommandSpec) SetVariant(family Family, command string) {
	if family == "" {
		c.uniform = command
		return
	}
	if c.variants == nil {
		c.variants = make(map[Family]string)
	}
	c.variants[family] = command
}

// Variants returns the spec in persistence form: commands keyed by family,
// with the uniform command under the empty family key.
func (c CommandSpec) Variants() map[Family]string {
	out := make(map[Family]string, len(c.variants)+1)
	if c.uniform != "" {
		out[""] = c.uniform
	}
	for family, command := range c.variants {
		out[family] = command
	}
	return out
}

// Source is a package manager or store that can install applications.
//
// Templates are stored without a sudo prefix; RequiresSudo tells the command
// synthesizer to add one. Setup and Cleanup run once per source regardless of
// how many packages resolve to it. Priority breaks ties between sources when
// a distribution does not rank them itself.
type Source struct {
	Meta
	Slug              string
	Name              string
	Category          Category
	InstallTemplate   string
	UninstallTemplate string
	Setup             CommandSpec
	Cleanup           CommandSpec
	DependencyCleanup string
	RequiresSudo      bool
	Priority          int
	CatalogEndpoint   string
	Methods           []MethodTemplate
}

// NewSource creates a source with the given sequence number and core identity.
func NewSource(sequence int, slug, name string, category Category) *Source {
	return &Source{
		Meta:     NewMeta(sequence),
		Slug:     slug,
		Name:     name,
		Category: category,
	}
}

// Validate checks that the source's identity and templates are usable.
func (s *Source) Validate() error {
	if s.Slug == "" {
		return fmt.Errorf("source slug is required")
	}
	if s.Name == "" {
		return fmt.Errorf("source name is required")
	}
	if !s.Category.Valid() {
		return fmt.Errorf("unknown source category: %s", s.Category)
	}
	if !ValidTemplate(s.InstallTemplate) {
		return fmt.Errorf("install template must contain %s exactly once", PackagesPlaceholder)
	}
	if s.UninstallTemplate != "" && !ValidTemplate(s.UninstallTemplate) {
		return fmt.Errorf("uninstall template must contain %s exactly once", PackagesPlaceholder)
	}
	seen := make(map[InstallMethod]bool, len(s.Methods))
	for _, tpl := range s.Methods {
		if seen[tpl.Method] {
			return fmt.Errorf("duplicate method template: %s", tpl.Method)
		}
		seen[tpl.Method] = true
		if err := tpl.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// MethodTemplate returns the template override for the given install method.
func (s *Source) MethodTemplate(method InstallMethod) (MethodTemplate, bool) {
	for _, tpl := range s.Methods {
		if tpl.Method == method {
			return tpl, true
		}
	}
	return MethodTemplate{}, false
}
