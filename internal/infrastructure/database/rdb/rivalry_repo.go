package rdb

import (
	"context"
	"log/slog"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
	"github.com/wavebreaker/backend/internal/entity"
)

// RivalryRepository implements entity.RivalryRepository for PostgreSQL.
type RivalryRepository struct {
	db *Database
}

const (
	insertRivalryQuery = `
		INSERT INTO rivalries (challenger_id, rival_id)
		VALUES ($1, $2)
		RETURNING challenger_id, rival_id, established_at
	`
	deleteRivalryQuery = `DELETE FROM rivalries WHERE challenger_id = $1 AND rival_id = $2`

	rivalryExistsQuery = `SELECT EXISTS (SELECT 1 FROM rivalries WHERE challenger_id = $1 AND rival_id = $2)`

	rivalsOfQuery = `
		SELECT challenger_id, rival_id, established_at FROM rivalries
		WHERE challenger_id = $1
		ORDER BY established_at
	`
	challengersOfQuery = `
		SELECT challenger_id, rival_id, established_at FROM rivalries
		WHERE rival_id = $1
		ORDER BY established_at
	`
)

// NewRivalryRepository creates a new rivalry repository instance.
func NewRivalryRepository(db *Database) *RivalryRepository {
	return &RivalryRepository{db: db}
}

func scanRivalry(scanner interface{ Scan(dest ...any) error }) (*entity.Rivalry, error) {
	r := &entity.Rivalry{}
	err := scanner.Scan(&r.ChallengerID, &r.RivalID, &r.EstablishedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Create establishes a directed rivalry.
func (r *RivalryRepository) Create(ctx context.Context, challengerID, rivalID int64) (*entity.Rivalry, error) {
	rv, err := scanRivalry(r.db.Pool.QueryRow(ctx, insertRivalryQuery, challengerID, rivalID))
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, apperr.New(codes.AlreadyExists, "rivalry already exists")
		}
		return nil, toAppErr(err, "failed to create rivalry", slog.Int64("challenger_id", challengerID), slog.Int64("rival_id", rivalID))
	}
	return rv, nil
}

// Delete removes a directed rivalry.
func (r *RivalryRepository) Delete(ctx context.Context, challengerID, rivalID int64) error {
	result, err := r.db.Pool.Exec(ctx, deleteRivalryQuery, challengerID, rivalID)
	if err != nil {
		return toAppErr(err, "failed to delete rivalry", slog.Int64("challenger_id", challengerID), slog.Int64("rival_id", rivalID))
	}
	if result.RowsAffected() == 0 {
		return apperr.Wrap(apperr.ErrNotFound, codes.NotFound, "rivalry not found")
	}
	return nil
}

// IsMutual reports whether the reverse-direction rivalry also exists.
func (r *RivalryRepository) IsMutual(ctx context.Context, challengerID, rivalID int64) (bool, error) {
	var mutual bool
	err := r.db.Pool.QueryRow(ctx, rivalryExistsQuery, rivalID, challengerID).Scan(&mutual)
	if err != nil {
		return false, toAppErr(err, "failed to check rivalry mutuality")
	}
	return mutual, nil
}

// RivalsOf returns every player a challenger is tracking.
func (r *RivalryRepository) RivalsOf(ctx context.Context, challengerID int64) ([]*entity.Rivalry, error) {
	rows, err := r.db.Pool.Query(ctx, rivalsOfQuery, challengerID)
	if err != nil {
		return nil, toAppErr(err, "failed to list rivals")
	}
	defer rows.Close()

	var rivalries []*entity.Rivalry
	for rows.Next() {
		rv, err := scanRivalry(rows)
		if err != nil {
			return nil, toAppErr(err, "failed to scan rivalry row")
		}
		rivalries = append(rivalries, rv)
	}
	return rivalries, rows.Err()
}

// ChallengersOf returns every player tracking a given rival.
func (r *RivalryRepository) ChallengersOf(ctx context.Context, rivalID int64) ([]*entity.Rivalry, error) {
	rows, err := r.db.Pool.Query(ctx, challengersOfQuery, rivalID)
	if err != nil {
		return nil, toAppErr(err, "failed to list challengers")
	}
	defer rows.Close()

	var rivalries []*entity.Rivalry
	for rows.Next() {
		rv, err := scanRivalry(rows)
		if err != nil {
			return nil, toAppErr(err, "failed to scan rivalry row")
		}
		rivalries = append(rivalries, rv)
	}
	return rivalries, rows.Err()
}
