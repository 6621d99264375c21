package models

import (
	"fmt"
	"time"
)

// JobStatus is the lifecycle state of a [ConversionJob].
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// ConversionJob records one batch conversion run: where files came from, the target format and per-file results.
type ConversionJob struct {
	id           string
	sequence     int
	source       string
	targetFormat string
	outputDir    string
	status       JobStatus
	filesTotal   int
	converted    int
	failed       int
	errorMessage string
	startedAt    *time.Time
	completedAt  *time.Time
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// NewConversionJob creates a pending job converting files under source to targetFormat.
func NewConversionJob(sequence int, source, targetFormat, outputDir string) *ConversionJob {
	now := time.Now()
	return &ConversionJob{
		sequence:     sequence,
		source:       source,
		targetFormat: targetFormat,
		outputDir:    outputDir,
		status:       JobPending,
		createdAt:    now,
		updatedAt:    now,
	}
}

func (j *ConversionJob) ID() string { return j.id }
func (j *ConversionJob) Sequence() int { return j.sequence }
func (j *ConversionJob) Source() string { return j.source }
func (j *ConversionJob) TargetFormat() string { return j.targetFormat }
func (j *ConversionJob) OutputDir() string { return j.outputDir }
func (j *ConversionJob) Status() JobStatus { return j.status }
func (j *ConversionJob) FilesTotal() int { return j.filesTotal }
func (j *ConversionJob) Converted() int { return j.converted }
func (j *ConversionJob) Failed() int { return j.failed }
func (j *ConversionJob) ErrorMessage() string { return j.errorMessage }
func (j *ConversionJob) StartedAt() *time.Time { return j.startedAt }
func (j *ConversionJob) CompletedAt() *time.Time { return j.completedAt }
func (j *ConversionJob) CreatedAt() time.Time { return j.createdAt }
func (j *ConversionJob) UpdatedAt() time.Time { return j.updatedAt }
func (j *ConversionJob) DeletedAt() *time.Time { return j.deletedAt }

func (j *ConversionJob) SetID(id string) { j.id = id }
func (j *ConversionJob) SetSequence(seq int) { j.sequence = seq }
func (j *ConversionJob) SetStatus(s JobStatus) { j.status = s }
func (j *ConversionJob) SetFilesTotal(n int) { j.filesTotal = n }
func (j *ConversionJob) SetConverted(n int) { j.converted = n }
func (j *ConversionJob) SetFailed(n int) { j.failed = n }
func (j *ConversionJob) SetErrorMessage(msg string) { j.errorMessage = msg }
func (j *ConversionJob) SetStartedAt(t *time.Time) { j.startedAt = t }
func (j *ConversionJob) SetCompletedAt(t *time.Time) { j.completedAt = t }
func (j *ConversionJob) SetCreatedAt(t time.Time) { j.createdAt = t }
func (j *ConversionJob) SetUpdatedAt(t time.Time) { j.updatedAt = t }
func (j *ConversionJob) SetDeletedAt(t *time.Time) { j.deletedAt = t }

// Start marks the job running with total files to convert.
func (j *ConversionJob) Start(total int) {
	now := time.Now()
	j.status = JobRunning
	j.filesTotal = total
	j.startedAt = &now
}

// Finish records the final counts. The job fails when err is set or every file failed.
func (j *ConversionJob) Finish(converted, failed int, err error) {
	now := time.Now()
	j.converted = converted
	j.failed = failed
	j.completedAt = &now
	switch {
	case err != nil:
		j.status = JobFailed
		j.errorMessage = err.Error()
	case converted == 0 && failed > 0:
		j.status = JobFailed
		j.errorMessage = fmt.Sprintf("all %d files failed", failed)
	default:
		j.status = JobCompleted
	}
}

// Validate requires a source, a target format and a known status.
func (j *ConversionJob) Validate() error {
	if j.source == "" {
		return fmt.Errorf("source is required")
	}
	if j.targetFormat == "" {
		return fmt.Errorf("target format is required")
	}
	switch j.status {
	case JobPending, JobRunning, JobCompleted, JobFailed:
	default:
		return fmt.Errorf("invalid status: %s", j.status)
	}
	if j.converted+j.failed > j.filesTotal {
		return fmt.Errorf("file counts exceed total: %d + %d > %d", j.converted, j.failed, j.filesTotal)
	}
	return nil
}
