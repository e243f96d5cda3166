package usecase

import (
	"context"

	"github.com/pannpers/go-logging/logging"

	"github.com/wavebreaker/backend/internal/entity"
	"github.com/wavebreaker/backend/internal/infrastructure/cache/redis"
)

// LeaderboardCache is the subset of the §4.6 sorted-set cache the leaderboard
// use case needs.
type LeaderboardCache interface {
	AddOrReset(ctx context.Context, playerID int64) error
	Incr(ctx context.Context, playerID int64, delta float64) error
	Rank(ctx context.Context, playerID int64) (int64, bool, error)
	Page(ctx context.Context, offset, limit int) ([]redis.Entry, error)
	TotalPlayers(ctx context.Context) (int64, error)
	Recompute(ctx context.Context, playerID int64, total float64) error
}

// LeaderboardEntry pairs a player's public identity with its cache rank and
// skill-point total, the shape get_rides and the admin leaderboard endpoint
// render.
type LeaderboardEntry struct {
	PlayerID    int64
	Username    string
	AvatarURL   string
	SkillPoints float64
	Rank        int64
}

// LeaderboardUseCase implements §4.6: read and maintain the skill-point
// sorted set backing every leaderboard-shaped response.
type LeaderboardUseCase interface {
	// EnsureTracked calls add_or_reset for a newly created or updated player.
	EnsureTracked(ctx context.Context, playerID int64) error
	// Page returns a descending page of entries joined with player identity.
	Page(ctx context.Context, offset, limit int) ([]LeaderboardEntry, error)
	// Rank returns a player's 1-based descending rank, or false if untracked.
	Rank(ctx context.Context, playerID int64) (int64, bool, error)
	// TotalPlayers returns the cache's cardinality.
	TotalPlayers(ctx context.Context) (int64, error)
	// Recompute resums a player's skill points from the store of record and
	// overwrites their cache entry. Idempotent; used by admin tooling and to
	// repair under-counts left by a crash mid-submission (§5).
	Recompute(ctx context.Context, playerID int64) error
}

type leaderboardUseCase struct {
	cache   LeaderboardCache
	players entity.PlayerRepository
	logger  *logging.Logger
}

var _ LeaderboardUseCase = (*leaderboardUseCase)(nil)

// NewLeaderboardUseCase creates a new leaderboard use case.
func NewLeaderboardUseCase(cache LeaderboardCache, players entity.PlayerRepository, logger *logging.Logger) LeaderboardUseCase {
	return &leaderboardUseCase{cache: cache, players: players, logger: logger}
}

func (uc *leaderboardUseCase) EnsureTracked(ctx context.Context, playerID int64) error {
	return uc.cache.AddOrReset(ctx, playerID)
}

func (uc *leaderboardUseCase) Page(ctx context.Context, offset, limit int) ([]LeaderboardEntry, error) {
	entries, err := uc.cache.Page(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	out := make([]LeaderboardEntry, 0, len(entries))
	for i, e := range entries {
		entry := LeaderboardEntry{PlayerID: e.PlayerID, SkillPoints: e.SkillPoints, Rank: int64(offset + i + 1)}
		if p, err := uc.players.Get(ctx, e.PlayerID); err == nil {
			entry.Username = p.Username
			entry.AvatarURL = p.AvatarURL
		}
		out = append(out, entry)
	}
	return out, nil
}

func (uc *leaderboardUseCase) Rank(ctx context.Context, playerID int64) (int64, bool, error) {
	return uc.cache.Rank(ctx, playerID)
}

func (uc *leaderboardUseCase) TotalPlayers(ctx context.Context) (int64, error) {
	return uc.cache.TotalPlayers(ctx)
}

func (uc *leaderboardUseCase) Recompute(ctx context.Context, playerID int64) error {
	total, err := uc.players.SkillPoints(ctx, playerID)
	if err != nil {
		return err
	}
	return uc.cache.Recompute(ctx, playerID, float64(total))
}
