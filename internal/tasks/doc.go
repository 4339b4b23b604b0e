// Package tasks runs multi-request catalog operations with real-time progress reporting.
//
// # Dashboard
//
// [Dashboard.Load] fetches the home screen concurrently:
//
//  1. Top-rated movies (primary): a failure fails the whole load
//  2. Catalog stats (secondary)
//  3. Recommendations for the signed-in user (secondary)
//  4. The signed-in user's favorites (secondary)
//
// Secondary failures degrade to empty values and are collected in [DashboardData.Warnings].
// Recommendations and favorites are only requested when a credential is stored.
//
// # Bulk Export
//
// [Exporter.BulkExport] fetches movie details through a rate limiter, hands them to a worker pool
// that writes one file set per movie via the formatter package, and finishes with a manifest.
// Fetched movies are written to the optional [MovieCacher]; cache errors are ignored.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
