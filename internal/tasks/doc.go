// Package tasks runs long recipe operations with progress reporting.
//
// [Exporter.BulkExport] fetches every recipe the caller owns and writes each one to its own file
// through a small worker pool, then records the outcome in export_manifest.json.
//
// Progress is sent as [ProgressUpdate] values on an optional channel. Sends never block; a slow
// reader simply misses updates.
package tasks
