// Package history persists a ledger of pipeline launches in SQLite.
//
// Each `stagehand run` records one row: when it started, how it was
// configured, how the pipeline exited, and which artifacts the post-run scan
// surfaced. The ledger is launcher-side bookkeeping only; it never touches
// the pipeline's own files under the output root.
//
// The database lives alongside stagehand's log file in the configured log
// directory. To add new columns, update schema.sql and bump schemaVersion;
// mismatched databases are rejected rather than silently migrated.
package history
