// Package entity defines core domain entities and repository interfaces.
package entity

import (
	"context"
	"time"
)

// Song is a canonical track identity: one audio file as catalogued by the
// resolver (§4.3). The same title/artist text can legitimately back more
// than one Song row when modifier tags distinguish variants of the track.
type Song struct {
	ID        int64
	Title     string
	Artist    string
	CreatedAt time.Time
	UpdatedAt time.Time
	// Modifiers is nil when the title carried no [as-<tag>] suffix.
	Modifiers []string
}

// NewSong carries the fields needed to create a song row.
type NewSong struct {
	Title     string
	Artist    string
	Modifiers []string
}

// ExtraSongInfo is a one-to-one satellite of Song holding metadata the
// enricher (§4.4) attaches asynchronously. A Song may have none.
type ExtraSongInfo struct {
	ID                  int64
	SongID              int64
	CoverURL            *string
	CoverURLSmall       *string
	MBID                *string
	MusicBrainzTitle    *string
	MusicBrainzArtist   *string
	MusicBrainzLengthMS *int32
	MistagLock          bool
	AliasesArtist       []string
	AliasesTitle        []string
	UpdatedAt           time.Time
}

// NewExtraSongInfo carries the fields written by the enricher.
type NewExtraSongInfo struct {
	SongID              int64
	CoverURL            *string
	CoverURLSmall       *string
	MBID                *string
	MusicBrainzTitle    *string
	MusicBrainzArtist   *string
	MusicBrainzLengthMS *int32
}

// SongRepository persists and resolves Song rows.
//
// # Possible errors
//   - codes.NotFound: no song matches.
//   - codes.Internal: underlying store failure.
type SongRepository interface {
	Get(ctx context.Context, id int64) (*Song, error)
	Create(ctx context.Context, s *NewSong) (*Song, error)
	// FindByTitleArtist implements the no-MBID branch of §4.3: OR-matching
	// songs.title/extra_song_info.musicbrainz_title/aliases_title against
	// bareTitle, crossed with the analogous artist match, with modifiers
	// compared identically (nil treated as empty). Returns the lowest-id match.
	FindByTitleArtist(ctx context.Context, bareTitle, artist string, modifiers []string) (*Song, error)
	// FindByMBID implements the MBID branch of §4.3: a Song joined to
	// ExtraSongInfo where mbid matches and modifiers compare identically.
	FindByMBID(ctx context.Context, mbid string, modifiers []string) (*Song, error)
	// Delete removes the song and cascades to its scores and extra info. The
	// caller is responsible for unwinding leaderboard skill points per score
	// before calling this, mirroring the original's explicit per-score delete.
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*Song, error)
	// Merge transfers every Score and Shout referencing fromID onto toID, then
	// deletes the fromID Song row. Used by the management command dispatcher.
	Merge(ctx context.Context, fromID, toID int64) error
}

// ExtraSongInfoRepository persists the ExtraSongInfo satellite table.
//
// # Possible errors
//   - codes.NotFound: no row for the given song id.
//   - codes.Internal: underlying store failure.
type ExtraSongInfoRepository interface {
	Get(ctx context.Context, songID int64) (*ExtraSongInfo, error)
	// Upsert inserts a row if none exists for SongID, otherwise updates every
	// provided field. mistagLock is never modified by Upsert; see SetMistagLock.
	Upsert(ctx context.Context, info *NewExtraSongInfo) (*ExtraSongInfo, error)
	SetMistagLock(ctx context.Context, songID int64, locked bool) error
}
