package models

import "time"

// Model is a library row: a song or a conversion job. Sequence is the short number users type instead of the id.
type Model interface {
	ID() string
	Sequence() int
	CreatedAt() time.Time
	UpdatedAt() time.Time
	Validate() error
}

// Repository stores one kind of [Model]. Get and Delete take the id; List filters on criteria keys the
// implementation documents, and both skip soft-deleted rows.
type Repository[T Model] interface {
	Create(model T) error
	Get(id string) (T, error)
	Update(model T) error
	Delete(id string) error
	List(criteria map[string]any) ([]T, error)
}
