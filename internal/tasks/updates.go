package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ListPackages Phase = iota
	CheckPackages
)

func (p Phase) String() string {
	switch p {
	case ListPackages:
		return "list_packages"
	case CheckPackages:
		return "check_packages"
	default:
		return ""
	}
}

func listingSourceUpdate(step, total int, source string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ListPackages,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Listing packages for %s...", source),
	}
}

func checkingPackageUpdate(step, total int, source, identifier string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CheckPackages,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Checking %s: %s...", step, total, source, identifier),
	}
}

func checkCompletedUpdate(step, total int, res PackageCheckResult) ProgressUpdate {
	state := "available"
	if !res.Available {
		state = "unavailable"
	}
	if res.Changed {
		state = "now " + state
	}
	return ProgressUpdate{
		Phase:   CheckPackages,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s: %s (%s)", step, total, res.Source, res.Identifier, state),
		Data:    res,
	}
}

func checkFailedUpdate(step, total int, res PackageCheckResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CheckPackages,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %s: %v", step, total, res.Source, res.Identifier, res.Error),
	}
}
