package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/desertthunder/chordx/internal/models"
	"github.com/desertthunder/chordx/internal/shared"
)

// SongRepository implements models.Repository[*models.PersistedSong] for the song library.
//
// The canonical song is stored as a JSON document; title, artist and key are duplicated into columns for listing.
type SongRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.PersistedSong] = (*SongRepository)(nil)

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

// SongHash fingerprints the untransposed content of song, so the same chart imported twice hashes the same
// whatever its current transposition.
func SongHash(song *models.Song) string {
	sections := song.Sections
	if song.OriginalSections != nil {
		sections = song.OriginalSections
	}

	parts := []string{shared.NormalizeSongKey(song.Title, song.Artist)}
	for _, s := range sections {
		parts = append(parts, string(s.Type), strconv.Itoa(s.Number), s.Content)
		for _, c := range s.SortedChords() {
			parts = append(parts, fmt.Sprintf("%d:%d:%s", c.Line, c.Position, c.Text))
		}
	}
	return shared.Fingerprint(parts...)
}

const songColumns = `id, sequence, hash, document, created_at, updated_at, deleted_at`

// Create inserts a new song into the database with generated ID and sequence.
//
// Returns [shared.ErrDuplicateSong] when a live song with the same content hash exists.
func (r *SongRepository) Create(song *models.PersistedSong) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	song.SetHash(SongHash(song.Song()))
	if existing, err := r.GetByHash(song.Hash()); err == nil {
		return fmt.Errorf("%w: %q (%s)", shared.ErrDuplicateSong, existing.Title(), existing.ID())
	} else if !errors.Is(err, shared.ErrSongNotFound) {
		return err
	}

	song.SetID(shared.GenerateID())
	doc, err := json.Marshal(song.Song())
	if err != nil {
		return fmt.Errorf("failed to encode song: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	sequence, err := NextSequence(tx, "songs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	query := `
		INSERT INTO songs (id, sequence, hash, lookup_key, title, artist, original_key, current_transpose, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	s := song.Song()
	_, err = tx.Exec(query,
		song.ID(),
		sequence,
		song.Hash(),
		shared.NormalizeSongKey(s.Title, s.Artist),
		s.Title,
		s.Artist,
		s.OriginalKey,
		s.CurrentTranspose,
		string(doc),
		song.CreatedAt(),
		song.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert song: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	song.SetSequence(sequence)
	return nil
}

// Get retrieves a song by ID, excluding soft-deleted songs
func (r *SongRepository) Get(id string) (*models.PersistedSong, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE id = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, id))
}

// GetBySequence retrieves a song by its library number.
func (r *SongRepository) GetBySequence(sequence int) (*models.PersistedSong, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE sequence = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, sequence))
}

// GetByHash retrieves a live song by content hash
func (r *SongRepository) GetByHash(hash string) (*models.PersistedSong, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE hash = ? AND deleted_at IS NULL LIMIT 1`
	return r.scan(r.db.QueryRow(query, hash))
}

// Resolve looks a song up by ID, falling back to its sequence number when ref is numeric.
func (r *SongRepository) Resolve(ref string) (*models.PersistedSong, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		return r.GetBySequence(n)
	}
	return r.Get(ref)
}

// Update rewrites an existing song's document and indexed columns. The content hash is kept.
func (r *SongRepository) Update(song *models.PersistedSong) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	song.SetUpdatedAt(now)
	s := song.Song()
	s.UpdatedAt = now

	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode song: %w", err)
	}

	query := `
		UPDATE songs
		SET lookup_key = ?, title = ?, artist = ?, original_key = ?, current_transpose = ?, document = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		shared.NormalizeSongKey(s.Title, s.Artist),
		s.Title,
		s.Artist,
		s.OriginalKey,
		s.CurrentTranspose,
		string(doc),
		now,
		song.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSongNotFound, song.ID())
	}

	return nil
}

// Delete soft-deletes a song by ID
func (r *SongRepository) Delete(id string) error {
	query := `
		UPDATE songs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}

	return nil
}

// List retrieves all songs matching the given criteria, excluding soft-deleted songs.
//
// Supported criteria: "artist" (case-insensitive exact match), "key" (original key) and "limit".
func (r *SongRepository) List(criteria map[string]any) ([]*models.PersistedSong, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE deleted_at IS NULL`
	args := []any{}

	if artist, ok := criteria["artist"].(string); ok && artist != "" {
		query += " AND artist = ? COLLATE NOCASE"
		args = append(args, strings.TrimSpace(artist))
	}

	if key, ok := criteria["key"].(string); ok && key != "" {
		query += " AND original_key = ?"
		args = append(args, key)
	}

	query += " ORDER BY sequence ASC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var songs []*models.PersistedSong
	for rows.Next() {
		song, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return songs, nil
}

// Search fuzzy-matches query against "title artist" of every live song, best match first.
func (r *SongRepository) Search(query string, limit int) ([]*models.PersistedSong, error) {
	songs, err := r.List(nil)
	if err != nil {
		return nil, err
	}

	type ranked struct {
		song *models.PersistedSong
		rank int
	}

	query = strings.TrimSpace(query)
	var matches []ranked
	for _, s := range songs {
		target := strings.TrimSpace(s.Title() + " " + s.Artist())
		if rank := fuzzy.RankMatchFold(query, target); rank >= 0 {
			matches = append(matches, ranked{song: s, rank: rank})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].rank < matches[j].rank })

	var out []*models.PersistedSong
	for _, m := range matches {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, m.song)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scan reads one row into a [models.PersistedSong]
func (r *SongRepository) scan(row scanner) (*models.PersistedSong, error) {
	var (
		id        string
		sequence  int
		hash      string
		doc       string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &hash, &doc, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrSongNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan song: %w", err)
	}

	var song models.Song
	if err := json.Unmarshal([]byte(doc), &song); err != nil {
		return nil, fmt.Errorf("failed to decode song %s: %w", id, err)
	}

	persisted := models.NewPersistedSong(sequence, hash, &song)
	persisted.SetID(id)
	persisted.SetCreatedAt(createdAt)
	persisted.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		persisted.SetDeletedAt(&deletedAt.Time)
	}

	return persisted, nil
}
