package models

import (
	"fmt"
	"strings"
	"time"
)

// PersistedSong is a library entry wrapping a [Song] with persistence metadata.
type PersistedSong struct {
	id        string
	sequence  int
	hash      string
	song      *Song
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewPersistedSong creates a PersistedSong for song with the given sequence number and content hash.
func NewPersistedSong(sequence int, hash string, song *Song) *PersistedSong {
	now := time.Now()
	if song == nil {
		song = &Song{}
	}
	return &PersistedSong{
		sequence:  sequence,
		hash:      hash,
		song:      song,
		createdAt: now,
		updatedAt: now,
	}
}

func (p *PersistedSong) ID() string { return p.id }
func (p *PersistedSong) Sequence() int { return p.sequence }
func (p *PersistedSong) Hash() string { return p.hash }
func (p *PersistedSong) Song() *Song { return p.song }
func (p *PersistedSong) Title() string { return p.song.Title }
func (p *PersistedSong) Artist() string { return p.song.Artist }
func (p *PersistedSong) CreatedAt() time.Time { return p.createdAt }
func (p *PersistedSong) UpdatedAt() time.Time { return p.updatedAt }
func (p *PersistedSong) DeletedAt() *time.Time { return p.deletedAt }
func (p *PersistedSong) IsDeleted() bool { return p.deletedAt != nil }
func (p *PersistedSong) SetSequence(seq int) { p.sequence = seq }
func (p *PersistedSong) SetHash(hash string) { p.hash = hash }
func (p *PersistedSong) SetSong(song *Song) { p.song = song }
func (p *PersistedSong) SetCreatedAt(t time.Time) { p.createdAt = t }
func (p *PersistedSong) SetUpdatedAt(t time.Time) { p.updatedAt = t }
func (p *PersistedSong) SetDeletedAt(t *time.Time) { p.deletedAt = t }

// SetID sets the library id on both the entry and the wrapped song.
func (p *PersistedSong) SetID(id string) {
	p.id = id
	p.song.ID = id
}

// Validate requires a title and a structurally valid song.
func (p *PersistedSong) Validate() error {
	if p.song == nil {
		return fmt.Errorf("song is required")
	}
	if strings.TrimSpace(p.song.Title) == "" {
		return fmt.Errorf("song title is required")
	}
	return p.song.Validate()
}
