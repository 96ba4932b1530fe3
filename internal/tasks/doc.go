// Package tasks runs long board operations with real-time progress reporting.
//
// # Bulk export
//
// [ExportEngine.BulkExport] writes posts and their comments to disk:
//
//  1. Resolve the post ids (explicit ids, or every post matching a [models.PostFilter])
//  2. Fetch each post and its comments, paced by a rate limiter
//  3. Hand fetched posts to a worker pool that writes json, csv, markdown or txt
//  4. Write export_manifest.json and record the run in the export history
//
// A post that fails to fetch or write is reported in the result and the manifest; the run carries on.
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data.
// Updates use select with default so a slow reader never blocks an export.
package tasks
