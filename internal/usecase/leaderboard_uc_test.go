package usecase_test

import (
	"context"
	"testing"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
	"github.com/pannpers/go-logging/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavebreaker/backend/internal/entity"
	"github.com/wavebreaker/backend/internal/infrastructure/cache/redis"
	"github.com/wavebreaker/backend/internal/usecase"
)

type fakeLeaderboardCache struct {
	tracked    map[int64]bool
	entries    []redis.Entry
	ranks      map[int64]int64
	recomputed map[int64]float64
}

func newFakeLeaderboardCache() *fakeLeaderboardCache {
	return &fakeLeaderboardCache{tracked: map[int64]bool{}, ranks: map[int64]int64{}, recomputed: map[int64]float64{}}
}

func (c *fakeLeaderboardCache) AddOrReset(_ context.Context, playerID int64) error {
	if !c.tracked[playerID] {
		c.tracked[playerID] = true
	}
	return nil
}

func (c *fakeLeaderboardCache) Incr(_ context.Context, _ int64, _ float64) error { return nil }

func (c *fakeLeaderboardCache) Rank(_ context.Context, playerID int64) (int64, bool, error) {
	rank, ok := c.ranks[playerID]
	return rank, ok, nil
}

func (c *fakeLeaderboardCache) Page(_ context.Context, offset, limit int) ([]redis.Entry, error) {
	end := offset + limit
	if end > len(c.entries) {
		end = len(c.entries)
	}
	if offset > len(c.entries) {
		return nil, nil
	}
	return c.entries[offset:end], nil
}

func (c *fakeLeaderboardCache) TotalPlayers(_ context.Context) (int64, error) {
	return int64(len(c.entries)), nil
}

func (c *fakeLeaderboardCache) Recompute(_ context.Context, playerID int64, total float64) error {
	c.recomputed[playerID] = total
	return nil
}

type fakePlayerSkillRepo struct {
	entity.PlayerRepository
	byID   map[int64]*entity.Player
	skills map[int64]int64
}

func (r *fakePlayerSkillRepo) Get(_ context.Context, id int64) (*entity.Player, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, apperr.New(codes.NotFound, "not found")
	}
	return p, nil
}

func (r *fakePlayerSkillRepo) SkillPoints(_ context.Context, playerID int64) (int64, error) {
	return r.skills[playerID], nil
}

func TestLeaderboardUseCase_Page(t *testing.T) {
	ctx := context.Background()
	logger, _ := logging.New()

	cache := newFakeLeaderboardCache()
	cache.entries = []redis.Entry{
		{PlayerID: 1, SkillPoints: 500},
		{PlayerID: 2, SkillPoints: 300},
	}
	players := &fakePlayerSkillRepo{byID: map[int64]*entity.Player{
		1: {ID: 1, Username: "alice"},
		2: {ID: 2, Username: "bob"},
	}}
	uc := usecase.NewLeaderboardUseCase(cache, players, logger)

	entries, err := uc.Page(ctx, 0, 10)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "alice", entries[0].Username)
	assert.Equal(t, int64(1), entries[0].Rank)
	assert.Equal(t, "bob", entries[1].Username)
	assert.Equal(t, int64(2), entries[1].Rank)
}

func TestLeaderboardUseCase_Recompute(t *testing.T) {
	ctx := context.Background()
	logger, _ := logging.New()

	cache := newFakeLeaderboardCache()
	players := &fakePlayerSkillRepo{byID: map[int64]*entity.Player{}, skills: map[int64]int64{7: 1234}}
	uc := usecase.NewLeaderboardUseCase(cache, players, logger)

	err := uc.Recompute(ctx, 7)

	require.NoError(t, err)
	assert.Equal(t, 1234.0, cache.recomputed[7])
}

func TestLeaderboardUseCase_EnsureTracked(t *testing.T) {
	ctx := context.Background()
	logger, _ := logging.New()

	cache := newFakeLeaderboardCache()
	uc := usecase.NewLeaderboardUseCase(cache, &fakePlayerSkillRepo{byID: map[int64]*entity.Player{}}, logger)

	err := uc.EnsureTracked(ctx, 42)

	require.NoError(t, err)
	assert.True(t, cache.tracked[42])
}
