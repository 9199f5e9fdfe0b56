// package services defines interface AvailabilityChecker for querying upstream package catalogs
//
// One checker per source (apt, flathub, nixpkgs, ...)
package services

import (
	"context"
)

// AvailabilityChecker probes a single source's upstream catalog for the presence of package identifiers.
type AvailabilityChecker interface {
	// Check reports whether identifier is currently published in the source's
	// catalog, along with the advertised version when the catalog exposes one.
	// Absence is not an error; the returned status carries Available=false.
	Check(ctx context.Context, identifier string) (PackageStatus, error)

	// Name returns the slug of the source this checker probes (e.g., "apt", "flatpak")
	Name() string
}

// PackageStatus describes the availability of one package identifier at one source
type PackageStatus struct {
	Identifier string
	Available  bool
	Version    string
}
