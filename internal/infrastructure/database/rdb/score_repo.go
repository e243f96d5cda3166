package rdb

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
	"github.com/wavebreaker/backend/internal/entity"
)

// ScoreRepository implements entity.ScoreRepository for PostgreSQL.
type ScoreRepository struct {
	db *Database
}

const (
	scoreColumns = `id, player_id, song_id, league, score, vehicle, density, track_shape, xstats, feats, song_length_cs, gold_threshold, submitted_at, play_count, iss, isj`

	getScoreByIDQuery = `SELECT ` + scoreColumns + ` FROM scores WHERE id = $1`

	getPersonalBestQuery = `
		SELECT ` + scoreColumns + ` FROM scores
		WHERE player_id = $1 AND song_id = $2 AND league = $3
	`

	insertScoreQuery = `
		INSERT INTO scores (player_id, song_id, league, score, vehicle, density, track_shape, xstats, feats, song_length_cs, gold_threshold, iss, isj)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + scoreColumns + `
	`

	updateImprovedScoreQuery = `
		UPDATE scores SET
			score = $2, vehicle = $3, density = $4, track_shape = $5, xstats = $6, feats = $7,
			song_length_cs = $8, gold_threshold = $9, iss = $10, isj = $11,
			play_count = play_count + 1, submitted_at = now()
		WHERE id = $1
		RETURNING ` + scoreColumns + `
	`

	touchNonImprovingScoreQuery = `
		UPDATE scores SET play_count = play_count + 1, submitted_at = now()
		WHERE id = $1
		RETURNING ` + scoreColumns + `
	`

	scoresByPlayerAndSongsQuery = `
		SELECT ` + scoreColumns + ` FROM scores
		WHERE player_id = $1 AND song_id = ANY($2) AND league = $3
	`

	scoresByPlayerQuery = `
		SELECT ` + scoreColumns + ` FROM scores
		WHERE player_id = $1
		ORDER BY submitted_at DESC
		LIMIT $2 OFFSET $3
	`

	topGlobalQuery = `
		SELECT ` + scoreColumnsPrefixed + `, p.username, p.avatar_url, p.location_id
		FROM scores s
		JOIN players p ON p.id = s.player_id
		WHERE s.song_id = $1 AND s.league = $2
		ORDER BY s.score DESC
		LIMIT $3
	`

	forPlayersQuery = `
		SELECT ` + scoreColumnsPrefixed + `, p.username, p.avatar_url, p.location_id
		FROM scores s
		JOIN players p ON p.id = s.player_id
		WHERE s.song_id = $1 AND s.league = $2 AND s.player_id = ANY($3)
		ORDER BY s.score DESC
		LIMIT $4
	`

	scoresBySongQuery = `SELECT ` + scoreColumns + ` FROM scores WHERE song_id = $1`

	deleteScoreByIDQuery = `DELETE FROM scores WHERE id = $1 RETURNING ` + scoreColumns

	reassignScoreSongQuery = `
		UPDATE scores SET song_id = $2
		WHERE song_id = $1
		AND NOT EXISTS (
			SELECT 1 FROM scores o WHERE o.song_id = $2 AND o.player_id = scores.player_id AND o.league = scores.league
		)
	`
)

// scoreColumnsPrefixed is scoreColumns qualified behind the "s" alias.
const scoreColumnsPrefixed = `s.id, s.player_id, s.song_id, s.league, s.score, s.vehicle, s.density, s.track_shape, s.xstats, s.feats, s.song_length_cs, s.gold_threshold, s.submitted_at, s.play_count, s.iss, s.isj`

// NewScoreRepository creates a new score repository instance.
func NewScoreRepository(db *Database) *ScoreRepository {
	return &ScoreRepository{db: db}
}

func scanScore(scanner interface{ Scan(dest ...any) error }) (*entity.Score, error) {
	s := &entity.Score{}
	var league, vehicle int16
	err := scanner.Scan(
		&s.ID, &s.PlayerID, &s.SongID, &league, &s.Score, &vehicle, &s.Density,
		&s.TrackShape, &s.XStats, &s.Feats, &s.SongLengthCs, &s.GoldThreshold,
		&s.SubmittedAt, &s.PlayCount, &s.Iss, &s.Isj,
	)
	if err != nil {
		return nil, err
	}
	s.League = entity.League(league)
	s.Vehicle = entity.Vehicle(vehicle)
	return s, nil
}

func scanScoreWithPlayer(scanner interface{ Scan(dest ...any) error }) (*entity.ScoreWithPlayer, error) {
	s := &entity.ScoreWithPlayer{}
	var league, vehicle int16
	err := scanner.Scan(
		&s.ID, &s.PlayerID, &s.SongID, &league, &s.Score, &vehicle, &s.Density,
		&s.TrackShape, &s.XStats, &s.Feats, &s.SongLengthCs, &s.GoldThreshold,
		&s.SubmittedAt, &s.PlayCount, &s.Iss, &s.Isj,
		&s.PlayerUsername, &s.PlayerAvatarURL, &s.PlayerLocation,
	)
	if err != nil {
		return nil, err
	}
	s.League = entity.League(league)
	s.Vehicle = entity.Vehicle(vehicle)
	return s, nil
}

// Get returns a single score row by its own id.
func (r *ScoreRepository) Get(ctx context.Context, id int64) (*entity.Score, error) {
	s, err := scanScore(r.db.Pool.QueryRow(ctx, getScoreByIDQuery, id))
	if err != nil {
		return nil, toAppErr(err, "failed to get score", slog.Int64("score_id", id))
	}
	return s, nil
}

// GetPersonalBest returns the player's PB row for (playerID, songID, league).
func (r *ScoreRepository) GetPersonalBest(ctx context.Context, playerID, songID int64, league entity.League) (*entity.Score, error) {
	s, err := scanScore(r.db.Pool.QueryRow(ctx, getPersonalBestQuery, playerID, songID, int16(league)))
	if err != nil {
		return nil, toAppErr(err, "failed to get personal best",
			slog.Int64("player_id", playerID), slog.Int64("song_id", songID))
	}
	return s, nil
}

// Insert creates the first score row for a (player, song, league) triple.
func (r *ScoreRepository) Insert(ctx context.Context, params *entity.NewScore) (*entity.Score, error) {
	if params == nil {
		return nil, apperr.New(codes.InvalidArgument, "params cannot be nil")
	}
	s, err := scanScore(r.db.Pool.QueryRow(ctx, insertScoreQuery,
		params.PlayerID, params.SongID, int16(params.League), params.Score, int16(params.Vehicle),
		params.Density, params.TrackShape, params.XStats, params.Feats,
		params.SongLengthCs, params.GoldThreshold, params.Iss, params.Isj,
	))
	if err != nil {
		return nil, toAppErr(err, "failed to insert score",
			slog.Int64("player_id", params.PlayerID), slog.Int64("song_id", params.SongID))
	}
	return s, nil
}

// UpdateImproved overwrites the ride fields of an existing PB that was beaten.
func (r *ScoreRepository) UpdateImproved(ctx context.Context, id int64, params *entity.NewScore) (*entity.Score, error) {
	s, err := scanScore(r.db.Pool.QueryRow(ctx, updateImprovedScoreQuery,
		id, params.Score, int16(params.Vehicle), params.Density,
		params.TrackShape, params.XStats, params.Feats,
		params.SongLengthCs, params.GoldThreshold, params.Iss, params.Isj,
	))
	if err != nil {
		return nil, toAppErr(err, "failed to update improved score", slog.Int64("score_id", id))
	}
	return s, nil
}

// TouchNonImproving bumps play_count/submitted_at without changing the ride.
func (r *ScoreRepository) TouchNonImproving(ctx context.Context, id int64) (*entity.Score, error) {
	s, err := scanScore(r.db.Pool.QueryRow(ctx, touchNonImprovingScoreQuery, id))
	if err != nil {
		return nil, toAppErr(err, "failed to touch score", slog.Int64("score_id", id))
	}
	return s, nil
}

// ByPlayerAndSongs batches PB lookups across a set of songs for a player.
func (r *ScoreRepository) ByPlayerAndSongs(ctx context.Context, playerID int64, songIDs []int64, league entity.League) ([]*entity.Score, error) {
	rows, err := r.db.Pool.Query(ctx, scoresByPlayerAndSongsQuery, playerID, songIDs, int16(league))
	if err != nil {
		return nil, toAppErr(err, "failed to batch-get scores")
	}
	defer rows.Close()
	return collectScores(rows)
}

// TopGlobal returns the top-N scores for (songID, league), joined with player.
func (r *ScoreRepository) TopGlobal(ctx context.Context, songID int64, league entity.League, limit int) ([]*entity.ScoreWithPlayer, error) {
	rows, err := r.db.Pool.Query(ctx, topGlobalQuery, songID, int16(league), limit)
	if err != nil {
		return nil, toAppErr(err, "failed to get top scores", slog.Int64("song_id", songID))
	}
	defer rows.Close()
	return collectScoresWithPlayer(rows)
}

// ForPlayers filters the leaderboard down to a specific player id set.
func (r *ScoreRepository) ForPlayers(ctx context.Context, songID int64, league entity.League, playerIDs []int64, limit int) ([]*entity.ScoreWithPlayer, error) {
	rows, err := r.db.Pool.Query(ctx, forPlayersQuery, songID, int16(league), playerIDs, limit)
	if err != nil {
		return nil, toAppErr(err, "failed to get filtered scores", slog.Int64("song_id", songID))
	}
	defer rows.Close()
	return collectScoresWithPlayer(rows)
}

// DeleteBySong returns every score for a song without deleting them: the
// caller unwinds each row's leaderboard contribution via Delete first, then
// the song's own delete cascades (ON DELETE CASCADE) over whatever is left.
func (r *ScoreRepository) DeleteBySong(ctx context.Context, songID int64) ([]*entity.Score, error) {
	rows, err := r.db.Pool.Query(ctx, scoresBySongQuery, songID)
	if err != nil {
		return nil, toAppErr(err, "failed to list scores for deletion", slog.Int64("song_id", songID))
	}
	defer rows.Close()
	return collectScores(rows)
}

// Delete removes a single score row, returning the deleted row so the
// caller can unwind its skill points from the leaderboard first.
func (r *ScoreRepository) Delete(ctx context.Context, id int64) (*entity.Score, error) {
	s, err := scanScore(r.db.Pool.QueryRow(ctx, deleteScoreByIDQuery, id))
	if err != nil {
		return nil, toAppErr(err, "failed to delete score", slog.Int64("score_id", id))
	}
	return s, nil
}

// ReassignSong moves scores from one song to another, dropping duplicates.
func (r *ScoreRepository) ReassignSong(ctx context.Context, fromSongID, toSongID int64) error {
	_, err := r.db.Pool.Exec(ctx, reassignScoreSongQuery, fromSongID, toSongID)
	if err != nil {
		return toAppErr(err, "failed to reassign scores", slog.Int64("from", fromSongID), slog.Int64("to", toSongID))
	}
	return nil
}

// ByPlayer retrieves a player's scores with pagination, most recent first.
func (r *ScoreRepository) ByPlayer(ctx context.Context, playerID int64, limit, offset int) ([]*entity.Score, error) {
	rows, err := r.db.Pool.Query(ctx, scoresByPlayerQuery, playerID, limit, offset)
	if err != nil {
		return nil, toAppErr(err, "failed to list player scores", slog.Int64("player_id", playerID))
	}
	defer rows.Close()
	return collectScores(rows)
}

func collectScores(rows pgx.Rows) ([]*entity.Score, error) {
	var scores []*entity.Score
	for rows.Next() {
		s, err := scanScore(rows)
		if err != nil {
			return nil, toAppErr(err, "failed to scan score row")
		}
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, toAppErr(err, "failed to iterate score rows")
	}
	return scores, nil
}

func collectScoresWithPlayer(rows pgx.Rows) ([]*entity.ScoreWithPlayer, error) {
	var scores []*entity.ScoreWithPlayer
	for rows.Next() {
		s, err := scanScoreWithPlayer(rows)
		if err != nil {
			return nil, toAppErr(err, "failed to scan score row")
		}
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, toAppErr(err, "failed to iterate score rows")
	}
	return scores, nil
}
