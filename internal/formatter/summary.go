package formatter

import (
	"github.com/desertthunder/chordx/internal/editing"
	"github.com/desertthunder/chordx/internal/models"
)

// SongSummary is the listing view of a library song.
type SongSummary struct {
	ID          string `json:"id"`
	Sequence    int    `json:"sequence"`
	Title       string `json:"title"`
	Artist      string `json:"artist,omitempty"`
	Key         string `json:"key,omitempty"`
	OriginalKey string `json:"original_key,omitempty"`
	Transpose   string `json:"transpose,omitempty"`
	Sections    int    `json:"sections"`
	CreatedAt   string `json:"created_at"`
}

// Summarize builds the listing view of p. Key is the key the song currently sounds in.
func Summarize(p *models.PersistedSong) SongSummary {
	song := p.Song()
	return SongSummary{
		ID:          p.ID(),
		Sequence:    p.Sequence(),
		Title:       p.Title(),
		Artist:      p.Artist(),
		Key:         editing.SongKey(song),
		OriginalKey: song.OriginalKey,
		Transpose:   song.CurrentTranspose,
		Sections:    len(song.Sections),
		CreatedAt:   p.CreatedAt().Format("2006-01-02 15:04:05"),
	}
}

// Summaries maps [Summarize] over songs.
func Summaries(songs []*models.PersistedSong) []SongSummary {
	out := make([]SongSummary, len(songs))
	for i, s := range songs {
		out[i] = Summarize(s)
	}
	return out
}
