package rdb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
	"github.com/wavebreaker/backend/internal/entity"
)

// PlayerRepository implements entity.PlayerRepository.
type PlayerRepository struct {
	db *Database
}

const (
	playerColumns = `id, username, steam_id, steam_account_num, location_id, account_type, avatar_url, joined_at, updated_at`

	getPlayerQuery = `SELECT ` + playerColumns + ` FROM players WHERE id = $1`

	getPlayerBySteamIDQuery = `SELECT ` + playerColumns + ` FROM players WHERE steam_id = $1`

	getPlayerBySteamAccountNumQuery = `SELECT ` + playerColumns + ` FROM players WHERE steam_account_num = $1`

	getPlayersBySteamAccountNumsQuery = `SELECT ` + playerColumns + ` FROM players WHERE steam_account_num = ANY($1) ORDER BY id`

	getPlayersByLocationQuery = `SELECT ` + playerColumns + ` FROM players WHERE location_id = $1 ORDER BY id`

	listPlayersQuery = `SELECT ` + playerColumns + ` FROM players ORDER BY id LIMIT $1 OFFSET $2`

	upsertPlayerQuery = `
		INSERT INTO players (username, steam_id, steam_account_num, location_id, avatar_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (steam_account_num) DO UPDATE SET
			username = EXCLUDED.username,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = now()
		RETURNING ` + playerColumns + `
	`

	skillPointsQuery = `
		SELECT COALESCE(SUM(ROUND((score::float8 / NULLIF(gold_threshold, 0)) * (league + 1) * 100)), 0)
		FROM scores
		WHERE player_id = $1
	`

	setAccountTypeQuery = `UPDATE players SET account_type = $2, updated_at = now() WHERE id = $1`
)

// NewPlayerRepository creates a new player repository instance.
func NewPlayerRepository(db *Database) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func scanPlayer(scanner interface{ Scan(dest ...any) error }) (*entity.Player, error) {
	p := &entity.Player{}
	var accountType int16
	err := scanner.Scan(
		&p.ID, &p.Username, &p.SteamID, &p.SteamAccountNum, &p.LocationID,
		&accountType, &p.AvatarURL, &p.JoinedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.AccountType = entity.AccountType(accountType)
	return p, nil
}

// Upsert inserts a player or updates username/avatar_url on a
// steam_account_num conflict, matching the login_steam behaviour described
// in the original client protocol: location_id is only meaningful on insert.
func (r *PlayerRepository) Upsert(ctx context.Context, params *entity.NewPlayer) (*entity.Player, error) {
	if params == nil {
		return nil, apperr.New(codes.InvalidArgument, "params cannot be nil")
	}

	player, err := scanPlayer(r.db.Pool.QueryRow(ctx, upsertPlayerQuery,
		params.Username, params.SteamID, params.SteamAccountNum, params.LocationID, params.AvatarURL,
	))
	if err != nil {
		return nil, toAppErr(err, "failed to upsert player", slog.Int64("steam_account_num", int64(params.SteamAccountNum)))
	}

	r.db.logger.Info(ctx, "player upserted",
		slog.String("entityType", "player"),
		slog.Int64("playerID", player.ID),
	)

	return player, nil
}

// Get retrieves a player by id.
func (r *PlayerRepository) Get(ctx context.Context, id int64) (*entity.Player, error) {
	player, err := scanPlayer(r.db.Pool.QueryRow(ctx, getPlayerQuery, id))
	if err != nil {
		return nil, toAppErr(err, "failed to get player", slog.Int64("player_id", id))
	}
	return player, nil
}

// GetBySteamID retrieves a player by their full 64-bit SteamID.
func (r *PlayerRepository) GetBySteamID(ctx context.Context, steamID uint64) (*entity.Player, error) {
	player, err := scanPlayer(r.db.Pool.QueryRow(ctx, getPlayerBySteamIDQuery, steamID))
	if err != nil {
		return nil, toAppErr(err, "failed to get player by steam id")
	}
	return player, nil
}

// GetBySteamAccountNum retrieves a player by their 32-bit account number.
func (r *PlayerRepository) GetBySteamAccountNum(ctx context.Context, num int32) (*entity.Player, error) {
	player, err := scanPlayer(r.db.Pool.QueryRow(ctx, getPlayerBySteamAccountNumQuery, num))
	if err != nil {
		return nil, toAppErr(err, "failed to get player by steam account num", slog.Int64("steam_account_num", int64(num)))
	}
	return player, nil
}

// GetBySteamAccountNums batches a lookup by account number, used to resolve
// friend lists into Player rows for the friend leaderboard slice.
func (r *PlayerRepository) GetBySteamAccountNums(ctx context.Context, nums []int32) ([]*entity.Player, error) {
	rows, err := r.db.Pool.Query(ctx, getPlayersBySteamAccountNumsQuery, nums)
	if err != nil {
		return nil, toAppErr(err, "failed to get players by steam account nums")
	}
	defer rows.Close()

	var players []*entity.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, toAppErr(err, "failed to scan player row")
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, toAppErr(err, "failed to iterate player rows")
	}
	return players, nil
}

// GetByLocation returns every player sharing a location id.
func (r *PlayerRepository) GetByLocation(ctx context.Context, locationID int32) ([]*entity.Player, error) {
	rows, err := r.db.Pool.Query(ctx, getPlayersByLocationQuery, locationID)
	if err != nil {
		return nil, toAppErr(err, "failed to get players by location", slog.Int64("location_id", int64(locationID)))
	}
	defer rows.Close()

	var players []*entity.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, toAppErr(err, "failed to scan player row")
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, toAppErr(err, "failed to iterate player rows")
	}
	return players, nil
}

// List retrieves players with pagination.
func (r *PlayerRepository) List(ctx context.Context, limit, offset int) ([]*entity.Player, error) {
	rows, err := r.db.Pool.Query(ctx, listPlayersQuery, limit, offset)
	if err != nil {
		return nil, toAppErr(err, "failed to list players")
	}
	defer rows.Close()

	var players []*entity.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, toAppErr(err, "failed to scan player row")
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, toAppErr(err, "failed to iterate player rows")
	}
	return players, nil
}

// SkillPoints sums sp(score) across every score the player owns. This is a
// reconciliation query; the live total lives in the leaderboard cache.
func (r *PlayerRepository) SkillPoints(ctx context.Context, playerID int64) (int64, error) {
	var total int64
	err := r.db.Pool.QueryRow(ctx, skillPointsQuery, playerID).Scan(&total)
	if err != nil {
		return 0, toAppErr(err, "failed to compute skill points", slog.Int64("player_id", playerID))
	}
	return total, nil
}

// SetAccountType promotes or demotes a player's moderation privileges.
func (r *PlayerRepository) SetAccountType(ctx context.Context, playerID int64, t entity.AccountType) error {
	result, err := r.db.Pool.Exec(ctx, setAccountTypeQuery, playerID, int16(t))
	if err != nil {
		return toAppErr(err, "failed to set account type", slog.Int64("player_id", playerID))
	}
	if result.RowsAffected() == 0 {
		return apperr.Wrap(apperr.ErrNotFound, codes.NotFound, fmt.Sprintf("player %d not found", playerID))
	}
	return nil
}
