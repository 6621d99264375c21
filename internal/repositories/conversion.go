package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/chordx/internal/models"
	"github.com/desertthunder/chordx/internal/shared"
)

// ConversionRepository implements models.Repository[*models.ConversionJob] for batch conversion history.
//
// Handles job CRUD operations with soft delete support and status-based queries.
type ConversionRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.ConversionJob] = (*ConversionRepository)(nil)

// NewConversionRepository creates a new ConversionRepository with the given database connection
func NewConversionRepository(db *sql.DB) *ConversionRepository {
	return &ConversionRepository{db: db}
}

const conversionColumns = `
	id, sequence, source, target_format, output_dir, status, files_total,
	converted, failed, error_message, started_at, completed_at,
	created_at, updated_at, deleted_at
`

// Create inserts a new job into the database with generated ID and sequence
func (r *ConversionRepository) Create(job *models.ConversionJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "conversions")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	job.SetID(shared.GenerateID())
	job.SetSequence(sequence)

	query := `
		INSERT INTO conversions (
			id, sequence, source, target_format, output_dir, status, files_total,
			converted, failed, error_message, started_at, completed_at,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		job.ID(),
		sequence,
		job.Source(),
		job.TargetFormat(),
		job.OutputDir(),
		string(job.Status()),
		job.FilesTotal(),
		job.Converted(),
		job.Failed(),
		nullString(job.ErrorMessage()),
		job.StartedAt(),
		job.CompletedAt(),
		job.CreatedAt(),
		job.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert conversion: %w", err)
	}

	return nil
}

// Get retrieves a job by ID, excluding soft-deleted jobs
func (r *ConversionRepository) Get(id string) (*models.ConversionJob, error) {
	query := `SELECT ` + conversionColumns + ` FROM conversions WHERE id = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, id))
}

// Update modifies an existing job in the database
func (r *ConversionRepository) Update(job *models.ConversionJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	job.SetUpdatedAt(now)

	query := `
		UPDATE conversions
		SET status = ?, files_total = ?, converted = ?, failed = ?, error_message = ?,
			started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		string(job.Status()),
		job.FilesTotal(),
		job.Converted(),
		job.Failed(),
		nullString(job.ErrorMessage()),
		job.StartedAt(),
		job.CompletedAt(),
		now,
		job.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update conversion: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("conversion not found or already deleted: %s", job.ID())
	}

	return nil
}

// Delete soft-deletes a job by ID
func (r *ConversionRepository) Delete(id string) error {
	query := `
		UPDATE conversions
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete conversion: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("conversion not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves jobs matching the given criteria, newest first, excluding soft-deleted jobs.
//
// Supported criteria: "status", "target_format" and "limit".
func (r *ConversionRepository) List(criteria map[string]any) ([]*models.ConversionJob, error) {
	query := `SELECT ` + conversionColumns + ` FROM conversions WHERE deleted_at IS NULL`
	args := []any{}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	if format, ok := criteria["target_format"].(string); ok && format != "" {
		query += " AND target_format = ?"
		args = append(args, format)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversions: %w", err)
	}
	defer rows.Close()

	var jobs []*models.ConversionJob
	for rows.Next() {
		job, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return jobs, nil
}

// scan reads one row into a [models.ConversionJob]
func (r *ConversionRepository) scan(row scanner) (*models.ConversionJob, error) {
	var (
		id           string
		sequence     int
		source       string
		targetFormat string
		outputDir    string
		status       string
		filesTotal   int
		converted    int
		failed       int
		errorMessage sql.NullString
		startedAt    sql.NullTime
		completedAt  sql.NullTime
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &source, &targetFormat, &outputDir, &status, &filesTotal,
		&converted, &failed, &errorMessage, &startedAt, &completedAt,
		&createdAt, &updatedAt, &deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("conversion not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan conversion: %w", err)
	}

	job := models.NewConversionJob(sequence, source, targetFormat, outputDir)
	job.SetID(id)
	job.SetStatus(models.JobStatus(status))
	job.SetFilesTotal(filesTotal)
	job.SetConverted(converted)
	job.SetFailed(failed)
	job.SetCreatedAt(createdAt)
	job.SetUpdatedAt(updatedAt)
	if errorMessage.Valid {
		job.SetErrorMessage(errorMessage.String)
	}
	if startedAt.Valid {
		job.SetStartedAt(&startedAt.Time)
	}
	if completedAt.Valid {
		job.SetCompletedAt(&completedAt.Time)
	}
	if deletedAt.Valid {
		job.SetDeletedAt(&deletedAt.Time)
	}

	return job, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
