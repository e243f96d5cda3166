package entity

import (
	"context"
	"time"
)

// Shout is a player-authored comment attached to a song.
type Shout struct {
	ID       int64
	SongID   int64
	AuthorID int64
	PostedAt time.Time
	Content  string
}

// NewShout carries the fields of a posted shout.
type NewShout struct {
	SongID   int64
	AuthorID int64
	Content  string
}

// CanDelete reports whether the given player may delete this shout: its own
// author, or any Moderator/Team account.
func (s *Shout) CanDelete(actor *Player) bool {
	if actor == nil {
		return false
	}
	return actor.ID == s.AuthorID || actor.AccountType.CanModerate()
}

// ShoutRepository persists Shout rows.
//
// # Possible errors
//   - codes.NotFound: no shout with the given id.
//   - codes.Internal: underlying store failure.
type ShoutRepository interface {
	Create(ctx context.Context, s *NewShout) (*Shout, error)
	Get(ctx context.Context, id int64) (*Shout, error)
	BySong(ctx context.Context, songID int64, limit, offset int) ([]*Shout, error)
	Delete(ctx context.Context, id int64) error
	// ReassignSong moves every shout referencing fromSongID onto toSongID.
	ReassignSong(ctx context.Context, fromSongID, toSongID int64) error
}
