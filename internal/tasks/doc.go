// Package tasks orchestrates catalog maintenance against upstream package indexes with real-time progress reporting.
//
// # Core Operation
//
// [RefreshEngine.Refresh] re-checks the availability index:
//   - Lists every package row for each submitted source
//   - Probes each identifier through the source's [services.AvailabilityChecker]
//   - Writes answers back via [PackageStore.SetPackageAvailability]
//   - Returns per-package outcomes plus flip and failure counts
//
// Checks fan out across a bounded worker pool. Rate limiting lives inside the
// checkers themselves, so the pool size only bounds concurrency, not request
// rate.
//
// # Partial Failure
//
// A source that cannot be listed, a check that errors, or a write that fails
// becomes a failed entry in [RefreshResult] while the rest of the run
// proceeds. Dropping a whole refresh because one catalog is down would leave
// the index staler than recording what did answer.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and
// optional data for advanced UI rendering. Updates use select with default to
// prevent blocking, so a slow or absent consumer never stalls the pool.
//
// # Implementation
//
// [RefreshEngine] depends on:
//   - [PackageStore] : package rows per source and availability writes (repositories.ApplicationRepository)
//   - [services.AvailabilityChecker] : one per source, supplied per run via [SourceChecker]
package tasks
