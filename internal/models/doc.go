// Package models defines the canonical chord chart model and persistence interfaces for chordx.
//
// The package contains two categories of types:
//
// 1. Canonical Model: plain structs every format converts to and from
//   - [Chord] : a chord anchored to a character offset on one lyric line
//   - [Section] : a named block of a song (verse, chorus, ...) holding marker-free lyrics and chords
//   - [Song] : ordered sections plus metadata, transposition state and the original snapshot
//
// 2. Persistent Entities: database-backed wrappers with lifecycle metadata
//   - [PersistedSong] : a library song with sequence number, content hash and soft delete support
//   - [ConversionJob] : a batch conversion run with status and per-file counts
//
// Positions are counted in characters (runes) of the marker-free line, never in bytes.
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
