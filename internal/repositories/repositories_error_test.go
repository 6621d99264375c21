package repositories

import (
	"errors"
	"testing"

	"github.com/desertthunder/chordx/internal/models"
	"github.com/desertthunder/chordx/internal/shared"
)

func TestSongRepositoryErrors(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		t.Run("ValidationError", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewSongRepository(db)
			song := newSong("", "John Newton")

			if err := repo.Create(song); err == nil {
				t.Fatal("expected validation error for empty title")
			}
		})

		t.Run("InvalidChordPlacement", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewSongRepository(db)
			song := newSong("Amazing Grace", "")
			song.Song().Sections[0].Chords[0].Line = 9

			if err := repo.Create(song); err == nil {
				t.Fatal("expected validation error for chord outside section")
			}
		})

		t.Run("Duplicate", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewSongRepository(db)
			if err := repo.Create(newSong("Amazing Grace", "John Newton")); err != nil {
				t.Fatalf("failed to create first song: %v", err)
			}

			err := repo.Create(newSong("amazing grace", "john newton"))
			if !errors.Is(err, shared.ErrDuplicateSong) {
				t.Fatalf("expected ErrDuplicateSong, got %v", err)
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewSongRepository(db)

			if _, err := repo.Get("nonexistent-id"); !errors.Is(err, shared.ErrSongNotFound) {
				t.Fatalf("expected ErrSongNotFound, got %v", err)
			}
			if _, err := repo.Resolve("42"); !errors.Is(err, shared.ErrSongNotFound) {
				t.Fatalf("expected ErrSongNotFound for sequence, got %v", err)
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewSongRepository(db)
			song := newSong("Amazing Grace", "")
			song.SetID("nonexistent-id")

			if err := repo.Update(song); !errors.Is(err, shared.ErrSongNotFound) {
				t.Fatalf("expected ErrSongNotFound, got %v", err)
			}
		})

		t.Run("ValidationError", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewSongRepository(db)
			song := newSong("Amazing Grace", "")
			if err := repo.Create(song); err != nil {
				t.Fatalf("failed to create song: %v", err)
			}

			song.Song().Title = " "
			if err := repo.Update(song); err == nil {
				t.Fatal("expected validation error for blank title")
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("Twice", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewSongRepository(db)
			song := newSong("Amazing Grace", "")
			if err := repo.Create(song); err != nil {
				t.Fatalf("failed to create song: %v", err)
			}

			if err := repo.Delete(song.ID()); err != nil {
				t.Fatalf("first delete failed: %v", err)
			}
			if err := repo.Delete(song.ID()); !errors.Is(err, shared.ErrSongNotFound) {
				t.Fatalf("expected ErrSongNotFound on second delete, got %v", err)
			}
		})
	})

	t.Run("ClosedDatabase", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewSongRepository(db)
		db.Close()

		if _, err := repo.List(nil); err == nil {
			t.Error("expected error listing from closed database")
		}
		if err := repo.Create(newSong("Amazing Grace", "")); err == nil {
			t.Error("expected error creating in closed database")
		}
	})
}

func TestConversionRepositoryErrors(t *testing.T) {
	t.Run("ValidationError", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewConversionRepository(db)
		if err := repo.Create(models.NewConversionJob(0, "", "show", "")); err == nil {
			t.Fatal("expected validation error for empty source")
		}
		if err := repo.Create(models.NewConversionJob(0, "a", "", "")); err == nil {
			t.Fatal("expected validation error for empty format")
		}
	})

	t.Run("CountsExceedTotal", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewConversionRepository(db)
		job := models.NewConversionJob(0, "a", "show", "")
		if err := repo.Create(job); err != nil {
			t.Fatalf("failed to create job: %v", err)
		}
		job.Start(1)
		job.Finish(2, 0, nil)
		if err := repo.Update(job); err == nil {
			t.Fatal("expected validation error for counts over total")
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewConversionRepository(db)
		if _, err := repo.Get("missing"); err == nil {
			t.Error("expected error getting missing job")
		}
		if err := repo.Delete("missing"); err == nil {
			t.Error("expected error deleting missing job")
		}
		job := models.NewConversionJob(0, "a", "show", "")
		job.SetID("missing")
		if err := repo.Update(job); err == nil {
			t.Error("expected error updating missing job")
		}
	})
}
