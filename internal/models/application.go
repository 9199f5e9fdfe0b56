package models

import "fmt"

// Application is an installable catalog entry. The slug doubles as the
// public identifier used in resolution requests.
type Application struct {
	Meta
	Slug         string
	Name         string
	Category     string
	Description  string
	InstallNotes string
}

// NewApplication creates an application with the given sequence number and identity.
func NewApplication(sequence int, slug, name string) *Application {
	return &Application{
		Meta: NewMeta(sequence),
		Slug: slug,
		Name: name,
	}
}

// Validate checks the application's identity fields.
func (a *Application) Validate() error {
	if a.Slug == "" {
		return fmt.Errorf("application slug is required")
	}
	if a.Name == "" {
		return fmt.Errorf("application name is required")
	}
	return nil
}

// Package records that one source carries an application under a
// source-specific identifier. At most one package exists per
// application and source pair.
type Package struct {
	Meta
	ApplicationID string
	SourceID      string
	Identifier    string
	Available     bool
	Version       string
	SizeMB        float64
	Maintainer    string
}

// NewPackage creates an available package linking an application to a source.
func NewPackage(sequence int, applicationID, sourceID, identifier string) *Package {
	return &Package{
		Meta:          NewMeta(sequence),
		ApplicationID: applicationID,
		SourceID:      sourceID,
		Identifier:    identifier,
		Available:     true,
	}
}

// Validate checks the package's linkage and identifier.
func (p *Package) Validate() error {
	if p.ApplicationID == "" {
		return fmt.Errorf("package application id is required")
	}
	if p.SourceID == "" {
		return fmt.Errorf("package source id is required")
	}
	if p.Identifier == "" {
		return fmt.Errorf("package identifier is required")
	}
	return nil
}
