package usecase_test

import (
	"context"
	"testing"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-logging/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavebreaker/backend/internal/infrastructure/cache/redis"
	"github.com/wavebreaker/backend/internal/usecase"
)

type fakeTicketCache struct {
	get    map[string]uint64
	setErr error
	sets   map[string]uint64
}

func newFakeTicketCache() *fakeTicketCache {
	return &fakeTicketCache{get: map[string]uint64{}, sets: map[string]uint64{}}
}

func (c *fakeTicketCache) Get(_ context.Context, ticket string) (uint64, error) {
	id, ok := c.get[ticket]
	if !ok {
		return 0, redis.ErrMiss
	}
	return id, nil
}

func (c *fakeTicketCache) Set(_ context.Context, ticket string, steamID uint64) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.sets[ticket] = steamID
	return nil
}

type fakeSteamAuthenticator struct {
	steamID uint64
	err     error
	calls   int
}

func (f *fakeSteamAuthenticator) AuthenticateUserTicket(_ context.Context, _ string) (uint64, error) {
	f.calls++
	return f.steamID, f.err
}

func TestTicketVerifierUseCase_Verify(t *testing.T) {
	ctx := context.Background()
	logger, _ := logging.New()

	t.Run("cache hit skips steam", func(t *testing.T) {
		cache := newFakeTicketCache()
		cache.get["tkt-1"] = 76561198000000001
		steam := &fakeSteamAuthenticator{}
		uc := usecase.NewTicketVerifierUseCase(cache, steam, logger)

		id, err := uc.Verify(ctx, "tkt-1")

		require.NoError(t, err)
		assert.Equal(t, uint64(76561198000000001), id)
		assert.Equal(t, 0, steam.calls)
	})

	t.Run("cache miss falls through to steam and caches result", func(t *testing.T) {
		cache := newFakeTicketCache()
		steam := &fakeSteamAuthenticator{steamID: 76561198000000002}
		uc := usecase.NewTicketVerifierUseCase(cache, steam, logger)

		id, err := uc.Verify(ctx, "tkt-2")

		require.NoError(t, err)
		assert.Equal(t, uint64(76561198000000002), id)
		assert.Equal(t, 1, steam.calls)
		assert.Equal(t, uint64(76561198000000002), cache.sets["tkt-2"])
	})

	t.Run("steam rejection is not cached", func(t *testing.T) {
		cache := newFakeTicketCache()
		steam := &fakeSteamAuthenticator{err: apperr.ErrUnauthenticated}
		uc := usecase.NewTicketVerifierUseCase(cache, steam, logger)

		_, err := uc.Verify(ctx, "tkt-3")

		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
		assert.Empty(t, cache.sets)
	})

	t.Run("empty ticket rejected before touching cache or steam", func(t *testing.T) {
		cache := newFakeTicketCache()
		steam := &fakeSteamAuthenticator{}
		uc := usecase.NewTicketVerifierUseCase(cache, steam, logger)

		_, err := uc.Verify(ctx, "")

		assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
		assert.Equal(t, 0, steam.calls)
	})
}
