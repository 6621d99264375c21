// Package repositories implements SQLite persistence for the song library and conversion history.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [SongRepository] : library songs stored as canonical JSON, with content-hash duplicate detection and fuzzy search
//   - [ConversionRepository] : batch conversion jobs with status tracking
//
// Sequence numbers provide stable, human-readable ordering (e.g., song #42) independent of UUIDs and creation timestamps.
// The CLI accepts them wherever a song ID is expected. The [NextSequence] function atomically increments per-table
// sequence counters in dedicated sequence tables.
package repositories
