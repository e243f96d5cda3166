package entity

import (
	"context"
	"time"
)

// Player is a registered Wavebreaker account, created on first Steam login.
// Players are never deleted; a ban is expressed as an AccountType demotion.
type Player struct {
	ID              int64
	Username        string
	SteamID         uint64 // 17-digit Steam community id
	SteamAccountNum int32  // low 32 bits of SteamID, sign-extended
	LocationID      int32
	AccountType     AccountType
	JoinedAt        time.Time
	UpdatedAt       time.Time
	AvatarURL       string
}

// NewPlayer carries the fields upserted on every Steam login.
type NewPlayer struct {
	Username        string
	SteamID         uint64
	SteamAccountNum int32
	AvatarURL       string
	LocationID      int32
}

// PlayerRepository persists and retrieves Player rows.
//
// # Possible errors
//   - codes.NotFound: no player with the given id/SteamID exists.
//   - codes.Internal: underlying store failure.
type PlayerRepository interface {
	// Upsert inserts a new player or updates username/avatar_url on a
	// steam_account_num conflict, matching the original login_steam behaviour.
	// location_id is only applied for brand-new players.
	Upsert(ctx context.Context, p *NewPlayer) (*Player, error)
	Get(ctx context.Context, id int64) (*Player, error)
	GetBySteamID(ctx context.Context, steamID uint64) (*Player, error)
	GetBySteamAccountNum(ctx context.Context, num int32) (*Player, error)
	GetBySteamAccountNums(ctx context.Context, nums []int32) ([]*Player, error)
	// GetByLocation returns every player sharing a location id, used to
	// resolve the Nearby leaderboard slice for get_rides.
	GetByLocation(ctx context.Context, locationID int32) ([]*Player, error)
	List(ctx context.Context, limit, offset int) ([]*Player, error)
	// SkillPoints sums sp(score) over every score row the player owns. Used by
	// the leaderboard recomputation command; the live total is the leaderboard
	// cache's responsibility otherwise.
	SkillPoints(ctx context.Context, playerID int64) (int64, error)
	SetAccountType(ctx context.Context, playerID int64, t AccountType) error
}

// SteamAccountNumFromSteamID derives the low 32 bits of a 64-bit Steam id,
// sign-extended into a signed 32-bit integer the way the original client
// expects it on the wire.
func SteamAccountNumFromSteamID(steamID uint64) int32 {
	return int32(uint32(steamID))
}
