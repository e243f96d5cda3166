package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-logging/logging"

	"github.com/wavebreaker/backend/internal/entity"
)

// LoginResult is what login_steam returns to the legacy client: the
// player's synthesized i32 steam-account-number and location id.
type LoginResult struct {
	Player          *entity.Player
	SteamAccountNum int32
}

// SyncResult summarizes a steam_sync call for the "added X of Y friends"
// wire response.
type SyncResult struct {
	Added int
	Total int
}

// PlayerUseCase implements §4.7's login_steam and steam_sync flows, plus the
// player read operations the JSON admin API exposes.
type PlayerUseCase interface {
	// LoginSteam upserts the player from a verified SteamID and ensures it is
	// tracked on the leaderboard.
	LoginSteam(ctx context.Context, steamID uint64, personaName, avatarFull string) (*LoginResult, error)
	// SyncFriends resolves a list of Steam account numbers to existing
	// players and establishes a one-way rivalry from self to each.
	SyncFriends(ctx context.Context, playerID int64, friendSteamAccountNums []int32) (*SyncResult, error)
	// GetBySteamID resolves the player a verified ticket authenticates as,
	// for every legacy call after login_steam.
	GetBySteamID(ctx context.Context, steamID uint64) (*entity.Player, error)
	Get(ctx context.Context, id int64) (*entity.Player, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Player, error)
}

type playerUseCase struct {
	players     entity.PlayerRepository
	rivalries   entity.RivalryRepository
	leaderboard LeaderboardUseCase
	logger      *logging.Logger
}

var _ PlayerUseCase = (*playerUseCase)(nil)

// NewPlayerUseCase creates a new player use case.
func NewPlayerUseCase(players entity.PlayerRepository, rivalries entity.RivalryRepository, leaderboard LeaderboardUseCase, logger *logging.Logger) PlayerUseCase {
	return &playerUseCase{players: players, rivalries: rivalries, leaderboard: leaderboard, logger: logger}
}

// LoginSteam implements §4.7's login_steam.
func (uc *playerUseCase) LoginSteam(ctx context.Context, steamID uint64, personaName, avatarFull string) (*LoginResult, error) {
	num := entity.SteamAccountNumFromSteamID(steamID)

	player, err := uc.players.Upsert(ctx, &entity.NewPlayer{
		Username:        personaName,
		SteamID:         steamID,
		SteamAccountNum: num,
		AvatarURL:       avatarFull,
	})
	if err != nil {
		return nil, err
	}

	if err := uc.leaderboard.EnsureTracked(ctx, player.ID); err != nil {
		uc.logger.Error(ctx, "leaderboard add_or_reset failed during login", err)
	}

	return &LoginResult{Player: player, SteamAccountNum: num}, nil
}

// SyncFriends implements §4.7's steam_sync: resolve each friend account
// number to an existing player and establish a directed rivalry, skipping
// accounts that don't exist on Wavebreaker and rivalries that already exist.
func (uc *playerUseCase) SyncFriends(ctx context.Context, playerID int64, friendSteamAccountNums []int32) (*SyncResult, error) {
	result := &SyncResult{Total: len(friendSteamAccountNums)}

	friends, err := uc.players.GetBySteamAccountNums(ctx, friendSteamAccountNums)
	if err != nil {
		return nil, err
	}

	for _, friend := range friends {
		if friend.ID == playerID {
			continue
		}
		_, err := uc.rivalries.Create(ctx, playerID, friend.ID)
		if err == nil {
			result.Added++
			continue
		}
		if !errors.Is(err, apperr.ErrAlreadyExists) {
			uc.logger.Error(ctx, "failed to create rivalry during steam sync", err)
			continue
		}
	}

	return result, nil
}

func (uc *playerUseCase) GetBySteamID(ctx context.Context, steamID uint64) (*entity.Player, error) {
	return uc.players.GetBySteamID(ctx, steamID)
}

func (uc *playerUseCase) Get(ctx context.Context, id int64) (*entity.Player, error) {
	return uc.players.Get(ctx, id)
}

func (uc *playerUseCase) List(ctx context.Context, limit, offset int) ([]*entity.Player, error) {
	return uc.players.List(ctx, limit, offset)
}

// ParseSteamAccountNums parses the legacy client's x-separated list of friend
// Steam account numbers, e.g. "123x456x789x".
func ParseSteamAccountNums(raw string) []int32 {
	parts := strings.Split(strings.Trim(raw, "x"), "x")
	nums := make([]int32, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		n, err := strconv.ParseInt(p, 10, 32)
		if err != nil {
			continue
		}
		nums = append(nums, int32(n))
	}
	return nums
}
