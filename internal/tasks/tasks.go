// package tasks implements catalog maintenance operations against upstream package indexes.
//
// The core abstraction is RefreshEngine, which re-checks recorded package
// availability against the catalogs sources actually publish. Operations emit
// progress updates via channels for non-blocking status reporting to CLI layers.
package tasks

import (
	"github.com/Sagyam/linite-sub002/internal/repositories"
	"github.com/Sagyam/linite-sub002/internal/services"
)

// PackageCheckResult records the outcome of re-checking one package against
// its source's catalog.
type PackageCheckResult struct {
	PackageID  string // Catalog row being refreshed
	AppSlug    string // Owning application
	Identifier string // Identifier probed upstream
	Source     string // Checker name (source slug)
	Available  bool   // Upstream answer
	Version    string // Upstream version, when advertised
	Changed    bool   // Availability flipped relative to the stored row
	Error      error  // Check or write failure
}

// RefreshResult contains all data from a catalog refresh run.
type RefreshResult struct {
	TotalSources  int                  // Sources submitted for refresh
	TotalPackages int                  // Package rows queued for checking
	Checked       int                  // Checks that completed
	Flipped       int                  // Availability values that changed
	Failed        int                  // Checks or writes that failed
	Results       []PackageCheckResult // Individual outcomes, sorted by source then app
}

// SourceChecker binds a catalog checker to the source rows it refreshes.
// The source ID addresses package rows; the checker knows the slug.
type SourceChecker struct {
	SourceID string
	Checker  services.AvailabilityChecker
}

// checkJob carries one package row to a pool worker.
type checkJob struct {
	checker services.AvailabilityChecker
	pkg     repositories.SourcePackage
}

// PackageStore defines the repository operations the refresh engine needs.
// This abstraction allows for easier testing and decoupling from concrete implementation.
type PackageStore interface {
	ListPackagesBySource(sourceID string) ([]repositories.SourcePackage, error)
	SetPackageAvailability(packageID string, available bool, version string) error
}

// RefreshEngine re-checks package availability against source catalogs.
// Contains a dependency on the package repository; checkers arrive per run.
type RefreshEngine struct {
	store PackageStore
}

// NewRefreshEngine creates a new RefreshEngine backed by the provided store.
func NewRefreshEngine(store PackageStore) *RefreshEngine {
	return &RefreshEngine{store: store}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *RefreshEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}
