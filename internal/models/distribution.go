package models

import "fmt"

// Family groups distributions that share package tooling. Per-family
// setup and cleanup command variants key off this value.
type Family string

const (
	FamilyDebian      Family = "debian"
	FamilyRHEL        Family = "rhel"
	FamilyArch        Family = "arch"
	FamilySUSE        Family = "suse"
	FamilyNix         Family = "nix"
	FamilyWindows     Family = "windows"
	FamilyIndependent Family = "independent"
)

// Valid reports whether f is a known distribution family.
func (f Family) Valid() bool {
	switch f {
	case FamilyDebian, FamilyRHEL, FamilyArch, FamilySUSE, FamilyNix, FamilyWindows, FamilyIndependent:
		return true
	}
	return false
}

// Distribution is an operating system release tracked by the catalog.
// BasedOn records lineage (e.g. ubuntu is based on debian) and is
// informational only; resolution keys off Family.
type Distribution struct {
	Meta
	Slug    string
	Name    string
	Family  Family
	BasedOn string
}

// NewDistribution creates a distribution with the given sequence number and identity.
func NewDistribution(sequence int, slug, name string, family Family) *Distribution {
	return &Distribution{
		Meta:   NewMeta(sequence),
		Slug:   slug,
		Name:   name,
		Family: family,
	}
}

// Validate checks the distribution's identity fields.
func (d *Distribution) Validate() error {
	if d.Slug == "" {
		return fmt.Errorf("distribution slug is required")
	}
	if d.Name == "" {
		return fmt.Errorf("distribution name is required")
	}
	if !d.Family.Valid() {
		return fmt.Errorf("unknown distribution family: %s", d.Family)
	}
	return nil
}

// DistroSource links a distribution to a source it can use. Priority ranks
// the distribution's sources (higher wins); IsDefault marks the preferred
// source when priorities tie.
type DistroSource struct {
	DistributionID string
	SourceID       string
	Priority       int
	IsDefault      bool
}
