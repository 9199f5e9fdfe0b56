// Package services defines the [AvailabilityChecker] interface for package catalog probes and implements it for HTTP-backed catalogs.
//
// # AvailabilityChecker Interface
//
// Each checker is bound to one source and answers a single question per
// package identifier: is it installable from this source right now. Refresh
// jobs fan identifiers out across checkers without caring how each catalog
// is queried.
//
// # Remote Catalog Implementation
//
// [RemoteCatalog] talks to sources that publish an HTTP package index at
// their catalog endpoint:
//
//	GET {endpoint}/{identifier}  ->  200 published, 404 absent
//
// Identifiers are path-escaped before the request is built, so flatpak-style
// reverse-DNS names and identifiers with spaces are safe. When the 200 body
// is a JSON object with a "version" field, the version lands on the returned
// [PackageStatus]; non-JSON bodies still count as available.
//
// # Rate Limiting
//
// Every Check passes through a [rate.Limiter] before the request is made.
// Callers running bulk refreshes share one limiter per source so concurrent
// workers cannot stampede an upstream index. A nil limiter disables
// throttling.
//
// # Error Handling
//
// Absence is data, not an error: a 404 returns Available=false with a nil
// error. Errors are reserved for transport failures, canceled contexts, and
// unexpected statuses, the latter wrapped with [shared.ErrAPIRequest] so
// callers can tell a broken catalog from a missing package.
package services
