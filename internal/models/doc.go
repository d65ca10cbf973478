// Package models defines domain entities and persistence interfaces for the ticket package inventory.
//
// The package contains two categories of types:
//
// 1. Persisted entities, all carrying an opaque row version for optimistic concurrency:
//   - [Color] : reference catalog of ticket print colors
//   - [Serial] : reference catalog of print runs
//   - [Package] : a range of numbered tickets, default (color+serial+number) or special (named)
//   - [Ticket] : a single numbered ticket, allocated to a package or parked unallocated
//
// 2. Detached projections consumed by callers:
//   - [PackageInfo], [ColorInfo], [SerialInfo] : listing rows with joined names and counts
//   - [PackageEdit], [PackageSpecialEdit], [CatalogEdit] : trimmed edit-view snapshots
//   - [PackageCreate], [PackageSpecialCreate] : creation inputs
//
// The Store[T] interface defines the durable CRUD contract; every write that
// presents a stale row version must fail without mutating stored state.
package models
