// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [SourceRepository] : Package manager sources with command templates and per-method overrides
//   - [ApplicationRepository] : Catalog applications and their per-source package listings
//   - [DistributionRepository] : Distributions and their ranked source links
//   - [CatalogStore] : Batched, context-aware read facade consumed by the resolution engine
//
// Sequence numbers provide stable, human-readable ordering (e.g., source #3, application #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
