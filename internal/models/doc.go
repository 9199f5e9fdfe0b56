// Package models defines domain entities and persistence interfaces for the linite catalog service.
//
// The package contains two categories of types:
//
// 1. Catalog vocabulary: Closed enumerations shared across the service
//   - [Family] : Distribution families that share package tooling
//   - [Category] : Source categories (native, sandboxed, declarative, windows)
//   - [InstallMethod] : Install modes for declarative sources
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Source] : Package managers and stores with their command templates
//   - [Application] : Installable catalog entries identified by slug
//   - [Package] : Per-source package listings linking applications to sources
//   - [Distribution] : Operating system releases grouped by family
//   - [DistroSource] : Junction rows linking distributions to usable sources
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
