package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Schema errors
	ErrNothingToRollback = fmt.Errorf("library schema has no applied migrations")
	ErrBadMigration      = fmt.Errorf("malformed schema migration")

	// Library errors
	ErrSongNotFound  = fmt.Errorf("song not found")
	ErrDuplicateSong = fmt.Errorf("song already in library")
	ErrEmptySong     = fmt.Errorf("song has no sections")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
