// Package rdb provides PostgreSQL database implementations of repository interfaces.
package rdb

import (
	"fmt"
	"log/slog"

	"context"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
	"github.com/wavebreaker/backend/internal/entity"
)

// SongRepository implements entity.SongRepository for PostgreSQL.
type SongRepository struct {
	db *Database
}

const (
	songColumns = `id, title, artist, modifiers, created_at, updated_at`

	getSongQuery = `SELECT ` + songColumns + ` FROM songs WHERE id = $1`

	insertSongQuery = `
		INSERT INTO songs (title, artist, modifiers)
		VALUES ($1, $2, $3)
		RETURNING ` + songColumns + `
	`

	listSongsQuery = `SELECT ` + songColumns + ` FROM songs ORDER BY id LIMIT $1 OFFSET $2`

	deleteSongQuery = `DELETE FROM songs WHERE id = $1`

	// songColumnsQualified is songColumns with each name qualified behind the
	// "s" alias, for queries that join against extra_song_info.
	songColumnsQualified = `s.id, s.title, s.artist, s.modifiers, s.created_at, s.updated_at`

	// findByTitleArtistQuery implements §4.3's no-MBID OR-semantics matching:
	// each side matches on the song's own column (exact), the MusicBrainz
	// title/artist (case-insensitive), or membership in the alias array.
	findByTitleArtistQuery = `
		SELECT ` + songColumnsQualified + `
		FROM songs s
		LEFT JOIN extra_song_info e ON e.song_id = s.id
		WHERE (
			s.title = $1
			OR lower(e.musicbrainz_title) = lower($1)
			OR $1 = ANY(e.aliases_title)
		) AND (
			s.artist = $2
			OR lower(e.musicbrainz_artist) = lower($2)
			OR $2 = ANY(e.aliases_artist)
		) AND COALESCE(s.modifiers, '{}') = COALESCE($3::text[], '{}')
		ORDER BY s.id
		LIMIT 1
	`

	findByMBIDQuery = `
		SELECT ` + songColumnsQualified + `
		FROM songs s
		JOIN extra_song_info e ON e.song_id = s.id
		WHERE e.mbid = $1 AND COALESCE(s.modifiers, '{}') = COALESCE($2::text[], '{}')
		ORDER BY s.id
		LIMIT 1
	`

	reassignScoresSongQuery = `
		UPDATE scores SET song_id = $2
		WHERE song_id = $1
		AND NOT EXISTS (
			SELECT 1 FROM scores o WHERE o.song_id = $2 AND o.player_id = scores.player_id AND o.league = scores.league
		)
	`
	dropOrphanedScoresQuery   = `DELETE FROM scores WHERE song_id = $1`
	reassignShoutsSongQuery   = `UPDATE shouts SET song_id = $2 WHERE song_id = $1`
)

// NewSongRepository creates a new song repository instance.
func NewSongRepository(db *Database) *SongRepository {
	return &SongRepository{db: db}
}

func scanSong(scanner interface{ Scan(dest ...any) error }) (*entity.Song, error) {
	s := &entity.Song{}
	err := scanner.Scan(&s.ID, &s.Title, &s.Artist, &s.Modifiers, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Get retrieves a song by id.
func (r *SongRepository) Get(ctx context.Context, id int64) (*entity.Song, error) {
	s, err := scanSong(r.db.Pool.QueryRow(ctx, getSongQuery, id))
	if err != nil {
		return nil, toAppErr(err, "failed to get song", slog.Int64("song_id", id))
	}
	return s, nil
}

// Create inserts a new song row.
func (r *SongRepository) Create(ctx context.Context, params *entity.NewSong) (*entity.Song, error) {
	if params == nil {
		return nil, apperr.New(codes.InvalidArgument, "params cannot be nil")
	}
	s, err := scanSong(r.db.Pool.QueryRow(ctx, insertSongQuery, params.Title, params.Artist, params.Modifiers))
	if err != nil {
		return nil, toAppErr(err, "failed to create song", slog.String("title", params.Title), slog.String("artist", params.Artist))
	}

	r.db.logger.Info(ctx, "song created",
		slog.String("entityType", "song"),
		slog.Int64("songID", s.ID),
	)

	return s, nil
}

// FindByTitleArtist implements the §4.3 no-MBID resolver branch.
func (r *SongRepository) FindByTitleArtist(ctx context.Context, bareTitle, artist string, modifiers []string) (*entity.Song, error) {
	s, err := scanSong(r.db.Pool.QueryRow(ctx, findByTitleArtistQuery, bareTitle, artist, modifiers))
	if err != nil {
		return nil, toAppErr(err, "failed to resolve song by title/artist", slog.String("title", bareTitle), slog.String("artist", artist))
	}
	return s, nil
}

// FindByMBID implements the §4.3 MBID resolver branch.
func (r *SongRepository) FindByMBID(ctx context.Context, mbid string, modifiers []string) (*entity.Song, error) {
	s, err := scanSong(r.db.Pool.QueryRow(ctx, findByMBIDQuery, mbid, modifiers))
	if err != nil {
		return nil, toAppErr(err, "failed to resolve song by mbid", slog.String("mbid", mbid))
	}
	return s, nil
}

// Delete removes the song and cascades to its scores/extra info. Callers
// unwind leaderboard skill points per score before calling this, mirroring
// the explicit per-score delete semantics the song-delete side effect needs.
func (r *SongRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Pool.Exec(ctx, deleteSongQuery, id)
	if err != nil {
		return toAppErr(err, "failed to delete song", slog.Int64("song_id", id))
	}
	if result.RowsAffected() == 0 {
		return apperr.Wrap(apperr.ErrNotFound, codes.NotFound, fmt.Sprintf("song %d not found", id))
	}
	return nil
}

// List retrieves songs with pagination.
func (r *SongRepository) List(ctx context.Context, limit, offset int) ([]*entity.Song, error) {
	rows, err := r.db.Pool.Query(ctx, listSongsQuery, limit, offset)
	if err != nil {
		return nil, toAppErr(err, "failed to list songs")
	}
	defer rows.Close()

	var songs []*entity.Song
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, toAppErr(err, "failed to scan song row")
		}
		songs = append(songs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, toAppErr(err, "failed to iterate song rows")
	}
	return songs, nil
}

// Merge transfers every score and shout from fromID onto toID, then deletes
// fromID. A score that would collide with an existing PB on toID is dropped
// rather than merged; the caller is responsible for any leaderboard
// reconciliation this implies.
func (r *SongRepository) Merge(ctx context.Context, fromID, toID int64) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return toAppErr(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, reassignScoresSongQuery, fromID, toID); err != nil {
		return toAppErr(err, "failed to reassign scores", slog.Int64("from", fromID), slog.Int64("to", toID))
	}
	if _, err := tx.Exec(ctx, dropOrphanedScoresQuery, fromID); err != nil {
		return toAppErr(err, "failed to drop orphaned scores", slog.Int64("from", fromID))
	}
	if _, err := tx.Exec(ctx, reassignShoutsSongQuery, fromID, toID); err != nil {
		return toAppErr(err, "failed to reassign shouts", slog.Int64("from", fromID), slog.Int64("to", toID))
	}
	if _, err := tx.Exec(ctx, deleteSongQuery, fromID); err != nil {
		return toAppErr(err, "failed to delete merged song", slog.Int64("from", fromID))
	}

	if err := tx.Commit(ctx); err != nil {
		return toAppErr(err, "failed to commit transaction")
	}

	r.db.logger.Info(ctx, "songs merged",
		slog.Int64("fromID", fromID),
		slog.Int64("toID", toID),
	)

	return nil
}

// ExtraSongInfoRepository implements entity.ExtraSongInfoRepository.
type ExtraSongInfoRepository struct {
	db *Database
}

const (
	extraSongInfoColumns = `id, song_id, cover_url, cover_url_small, mbid, musicbrainz_title, musicbrainz_artist, musicbrainz_length_ms, mistag_lock, aliases_artist, aliases_title, updated_at`

	getExtraSongInfoQuery = `SELECT ` + extraSongInfoColumns + ` FROM extra_song_info WHERE song_id = $1`

	upsertExtraSongInfoQuery = `
		INSERT INTO extra_song_info (song_id, cover_url, cover_url_small, mbid, musicbrainz_title, musicbrainz_artist, musicbrainz_length_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (song_id) DO UPDATE SET
			cover_url = EXCLUDED.cover_url,
			cover_url_small = EXCLUDED.cover_url_small,
			mbid = EXCLUDED.mbid,
			musicbrainz_title = EXCLUDED.musicbrainz_title,
			musicbrainz_artist = EXCLUDED.musicbrainz_artist,
			musicbrainz_length_ms = EXCLUDED.musicbrainz_length_ms,
			updated_at = now()
		RETURNING ` + extraSongInfoColumns + `
	`

	setMistagLockQuery = `
		INSERT INTO extra_song_info (song_id, mistag_lock)
		VALUES ($1, $2)
		ON CONFLICT (song_id) DO UPDATE SET mistag_lock = EXCLUDED.mistag_lock, updated_at = now()
	`
)

// NewExtraSongInfoRepository creates a new extra song info repository instance.
func NewExtraSongInfoRepository(db *Database) *ExtraSongInfoRepository {
	return &ExtraSongInfoRepository{db: db}
}

func scanExtraSongInfo(scanner interface{ Scan(dest ...any) error }) (*entity.ExtraSongInfo, error) {
	e := &entity.ExtraSongInfo{}
	err := scanner.Scan(
		&e.ID, &e.SongID, &e.CoverURL, &e.CoverURLSmall, &e.MBID,
		&e.MusicBrainzTitle, &e.MusicBrainzArtist, &e.MusicBrainzLengthMS,
		&e.MistagLock, &e.AliasesArtist, &e.AliasesTitle, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Get retrieves the extra info row for a song.
func (r *ExtraSongInfoRepository) Get(ctx context.Context, songID int64) (*entity.ExtraSongInfo, error) {
	e, err := scanExtraSongInfo(r.db.Pool.QueryRow(ctx, getExtraSongInfoQuery, songID))
	if err != nil {
		return nil, toAppErr(err, "failed to get extra song info", slog.Int64("song_id", songID))
	}
	return e, nil
}

// Upsert inserts or fully updates the extra info row. mistag_lock is left
// untouched; see SetMistagLock.
func (r *ExtraSongInfoRepository) Upsert(ctx context.Context, info *entity.NewExtraSongInfo) (*entity.ExtraSongInfo, error) {
	if info == nil {
		return nil, apperr.New(codes.InvalidArgument, "info cannot be nil")
	}
	e, err := scanExtraSongInfo(r.db.Pool.QueryRow(ctx, upsertExtraSongInfoQuery,
		info.SongID, info.CoverURL, info.CoverURLSmall, info.MBID,
		info.MusicBrainzTitle, info.MusicBrainzArtist, info.MusicBrainzLengthMS,
	))
	if err != nil {
		return nil, toAppErr(err, "failed to upsert extra song info", slog.Int64("song_id", info.SongID))
	}
	return e, nil
}

// SetMistagLock toggles whether auto_add_metadata may overwrite this song's
// metadata; add_metadata_mbid always overwrites regardless (admin intent).
func (r *ExtraSongInfoRepository) SetMistagLock(ctx context.Context, songID int64, locked bool) error {
	_, err := r.db.Pool.Exec(ctx, setMistagLockQuery, songID, locked)
	if err != nil {
		return toAppErr(err, "failed to set mistag lock", slog.Int64("song_id", songID))
	}
	return nil
}
