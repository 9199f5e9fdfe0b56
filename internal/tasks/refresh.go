package tasks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Sagyam/linite-sub002/internal/shared"
)

// RefreshOpts contains configuration for availability refreshes.
type RefreshOpts struct {
	NumWorkers int  // Concurrent checks (default: 5, max: 10)
	DryRun     bool // Report flips without writing them back
}

// Refresh re-checks every package row of the given sources against their
// catalogs concurrently and writes the answers back through the store.
//
// This method implements a worker pool pattern to check many packages without
// serializing on catalog latency. It handles partial failures gracefully: a
// source that cannot be listed or a package that cannot be checked becomes a
// failed entry in the result instead of aborting the run. Checkers throttle
// their own requests, so the pool never outruns a source's rate limit.
func (e *RefreshEngine) Refresh(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	checkers []SourceChecker,
	opts RefreshOpts,
) (*RefreshResult, error) {
	if len(checkers) == 0 {
		return nil, fmt.Errorf("%w: no catalog checkers configured", shared.ErrServiceUnavailable)
	}
	for _, sc := range checkers {
		if sc.Checker == nil {
			return nil, fmt.Errorf("%w: checker not initialized", shared.ErrServiceUnavailable)
		}
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}

	result := &RefreshResult{
		TotalSources: len(checkers),
		Results:      make([]PackageCheckResult, 0),
	}

	var queued []checkJob
	for i, sc := range checkers {
		e.sendProgress(prog, listingSourceUpdate(i+1, len(checkers), sc.Checker.Name()))

		pkgs, err := e.store.ListPackagesBySource(sc.SourceID)
		if err != nil {
			result.Failed++
			result.Results = append(result.Results, PackageCheckResult{
				Source: sc.Checker.Name(),
				Error:  fmt.Errorf("failed to list packages: %w", err),
			})
			continue
		}

		for _, pkg := range pkgs {
			queued = append(queued, checkJob{checker: sc.Checker, pkg: pkg})
		}
	}
	result.TotalPackages = len(queued)

	jobs := make(chan checkJob, len(queued))
	results := make(chan PackageCheckResult, len(queued))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.checkWorker(ctx, &wg, jobs, results)
	}

	go func() {
		for i, job := range queued {
			select {
			case <-ctx.Done():
				close(jobs)
				return
			default:
			}

			jobs <- job
			e.sendProgress(prog, checkingPackageUpdate(i+1, len(queued), job.checker.Name(), job.pkg.Package.Identifier))
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++

		if res.Error == nil && !opts.DryRun {
			if err := e.store.SetPackageAvailability(res.PackageID, res.Available, res.Version); err != nil {
				res.Error = fmt.Errorf("failed to record availability: %w", err)
			}
		}

		result.Results = append(result.Results, res)

		if res.Error != nil {
			result.Failed++
			e.sendProgress(prog, checkFailedUpdate(completed, len(queued), res))
		} else {
			result.Checked++
			if res.Changed {
				result.Flipped++
			}
			e.sendProgress(prog, checkCompletedUpdate(completed, len(queued), res))
		}
	}

	// completion order depends on worker scheduling
	sort.Slice(result.Results, func(i, j int) bool {
		if result.Results[i].Source != result.Results[j].Source {
			return result.Results[i].Source < result.Results[j].Source
		}
		return result.Results[i].AppSlug < result.Results[j].AppSlug
	})

	return result, nil
}

// checkWorker is a worker goroutine that checks packages from the jobs channel.
func (e *RefreshEngine) checkWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan checkJob,
	results chan<- PackageCheckResult,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- e.checkOne(ctx, job)
	}
}

// checkOne probes a single package row against its source's catalog.
func (e *RefreshEngine) checkOne(ctx context.Context, j checkJob) PackageCheckResult {
	result := PackageCheckResult{
		PackageID:  j.pkg.Package.ID(),
		AppSlug:    j.pkg.AppSlug,
		Identifier: j.pkg.Package.Identifier,
		Source:     j.checker.Name(),
	}

	status, err := j.checker.Check(ctx, j.pkg.Package.Identifier)
	if err != nil {
		result.Error = fmt.Errorf("check failed: %w", err)
		return result
	}

	result.Available = status.Available
	result.Version = status.Version
	result.Changed = status.Available != j.pkg.Package.Available
	return result
}
