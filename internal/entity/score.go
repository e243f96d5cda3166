package entity

import (
	"context"
	"time"
)

// Score is a player's personal-best ride on one song under one league. A
// player holds at most one Score row per (player, song, league) triple; a
// non-improving resubmission updates play metadata in place (§4.5).
type Score struct {
	ID            int64
	PlayerID      int64
	SongID        int64
	League        League
	Score         int32
	Vehicle       Vehicle
	Density       int32
	TrackShape    []int32
	XStats        []int32
	Feats         []string
	SongLengthCs  int32 // centiseconds
	GoldThreshold int32
	SubmittedAt   time.Time
	PlayCount     int32
	Iss, Isj      *int32 // opaque per-ride values, persisted unchanged (§13)
}

// SkillPoints computes sp(score): round((score/gold_threshold) * (league+1) * 100).
func (s *Score) SkillPoints() int64 {
	if s.GoldThreshold <= 0 {
		return 0
	}
	ratio := float64(s.Score) / float64(s.GoldThreshold)
	return int64(ratio*float64(int(s.League)+1)*100 + 0.5)
}

// NewScore carries the fields of a submitted ride.
type NewScore struct {
	PlayerID      int64
	SongID        int64
	League        League
	Score         int32
	Vehicle       Vehicle
	Density       int32
	TrackShape    []int32
	XStats        []int32
	Feats         []string
	SongLengthCs  int32
	GoldThreshold int32
	Iss, Isj      *int32
}

// ScoreRepository persists Score rows.
//
// # Possible errors
//   - codes.NotFound: no score for the given key.
//   - codes.Internal: underlying store failure.
type ScoreRepository interface {
	// Get returns a single score row by its own id, for the admin API.
	Get(ctx context.Context, id int64) (*Score, error)
	// GetPersonalBest returns the player's existing row for (playerID, songID,
	// league), or a codes.NotFound error if none exists yet.
	GetPersonalBest(ctx context.Context, playerID, songID int64, league League) (*Score, error)
	// Insert creates the first Score row for a (player, song, league) triple.
	Insert(ctx context.Context, s *NewScore) (*Score, error)
	// UpdateImproved overwrites score/vehicle/density/iss/isj, bumps play_count
	// and submitted_at, on an existing personal best that was just beaten.
	UpdateImproved(ctx context.Context, id int64, s *NewScore) (*Score, error)
	// TouchNonImproving increments play_count and submitted_at without
	// touching score/vehicle/density, per §4.5 step 5.
	TouchNonImproving(ctx context.Context, id int64) (*Score, error)
	// ByPlayerAndSongs batches PB lookups across a set of songs for a player.
	ByPlayerAndSongs(ctx context.Context, playerID int64, songIDs []int64, league League) ([]*Score, error)
	// TopGlobal returns the top-11 scores for (songID, league) ordered by score
	// descending, joined with the owning player for the wire response.
	TopGlobal(ctx context.Context, songID int64, league League, limit int) ([]*ScoreWithPlayer, error)
	// ForPlayers filters TopGlobal's result set down to a specific player id
	// set, used for the Friend and Nearby leaderboard slices (§4.7).
	ForPlayers(ctx context.Context, songID int64, league League, playerIDs []int64, limit int) ([]*ScoreWithPlayer, error)
	// DeleteBySong returns every score row for a song so the caller can unwind
	// leaderboard skill points one at a time before the cascade delete.
	DeleteBySong(ctx context.Context, songID int64) ([]*Score, error)
	// Delete removes a single score row by id, returning it so the caller can
	// unwind its skill points from the leaderboard first.
	Delete(ctx context.Context, id int64) (*Score, error)
	// ReassignSong moves every score referencing fromSongID onto toSongID,
	// dropping the row instead of reassigning when a PB already exists there.
	ReassignSong(ctx context.Context, fromSongID, toSongID int64) error
	ByPlayer(ctx context.Context, playerID int64, limit, offset int) ([]*Score, error)
}

// ScoreWithPlayer pairs a Score with the public fields of its owning player,
// the shape get_rides and the admin leaderboard endpoint render.
type ScoreWithPlayer struct {
	Score
	PlayerUsername  string
	PlayerAvatarURL string
	PlayerLocation  int32
}
