package rdb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
	"github.com/wavebreaker/backend/internal/entity"
)

// ShoutRepository implements entity.ShoutRepository for PostgreSQL.
type ShoutRepository struct {
	db *Database
}

const (
	shoutColumns = `id, song_id, author_id, posted_at, content`

	insertShoutQuery = `
		INSERT INTO shouts (song_id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING ` + shoutColumns + `
	`

	getShoutQuery = `SELECT ` + shoutColumns + ` FROM shouts WHERE id = $1`

	listShoutsBySongQuery = `
		SELECT ` + shoutColumns + ` FROM shouts
		WHERE song_id = $1
		ORDER BY posted_at DESC
		LIMIT $2 OFFSET $3
	`

	deleteShoutQuery = `DELETE FROM shouts WHERE id = $1`

	reassignShoutSongQuery = `UPDATE shouts SET song_id = $2 WHERE song_id = $1`
)

// NewShoutRepository creates a new shout repository instance.
func NewShoutRepository(db *Database) *ShoutRepository {
	return &ShoutRepository{db: db}
}

func scanShout(scanner interface{ Scan(dest ...any) error }) (*entity.Shout, error) {
	s := &entity.Shout{}
	err := scanner.Scan(&s.ID, &s.SongID, &s.AuthorID, &s.PostedAt, &s.Content)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a new shout.
func (r *ShoutRepository) Create(ctx context.Context, params *entity.NewShout) (*entity.Shout, error) {
	if params == nil {
		return nil, apperr.New(codes.InvalidArgument, "params cannot be nil")
	}
	s, err := scanShout(r.db.Pool.QueryRow(ctx, insertShoutQuery, params.SongID, params.AuthorID, params.Content))
	if err != nil {
		return nil, toAppErr(err, "failed to create shout", slog.Int64("song_id", params.SongID))
	}
	return s, nil
}

// Get retrieves a shout by id.
func (r *ShoutRepository) Get(ctx context.Context, id int64) (*entity.Shout, error) {
	s, err := scanShout(r.db.Pool.QueryRow(ctx, getShoutQuery, id))
	if err != nil {
		return nil, toAppErr(err, "failed to get shout", slog.Int64("shout_id", id))
	}
	return s, nil
}

// BySong retrieves shouts for a song with pagination, newest first.
func (r *ShoutRepository) BySong(ctx context.Context, songID int64, limit, offset int) ([]*entity.Shout, error) {
	rows, err := r.db.Pool.Query(ctx, listShoutsBySongQuery, songID, limit, offset)
	if err != nil {
		return nil, toAppErr(err, "failed to list shouts", slog.Int64("song_id", songID))
	}
	defer rows.Close()

	var shouts []*entity.Shout
	for rows.Next() {
		s, err := scanShout(rows)
		if err != nil {
			return nil, toAppErr(err, "failed to scan shout row")
		}
		shouts = append(shouts, s)
	}
	if err := rows.Err(); err != nil {
		return nil, toAppErr(err, "failed to iterate shout rows")
	}
	return shouts, nil
}

// Delete removes a shout.
func (r *ShoutRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Pool.Exec(ctx, deleteShoutQuery, id)
	if err != nil {
		return toAppErr(err, "failed to delete shout", slog.Int64("shout_id", id))
	}
	if result.RowsAffected() == 0 {
		return apperr.Wrap(apperr.ErrNotFound, codes.NotFound, fmt.Sprintf("shout %d not found", id))
	}
	return nil
}

// ReassignSong moves every shout referencing fromSongID onto toSongID.
func (r *ShoutRepository) ReassignSong(ctx context.Context, fromSongID, toSongID int64) error {
	_, err := r.db.Pool.Exec(ctx, reassignShoutSongQuery, fromSongID, toSongID)
	if err != nil {
		return toAppErr(err, "failed to reassign shouts", slog.Int64("from", fromSongID), slog.Int64("to", toSongID))
	}
	return nil
}
