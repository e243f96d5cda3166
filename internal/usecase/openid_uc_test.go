package usecase_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
	"github.com/pannpers/go-logging/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavebreaker/backend/internal/entity"
	"github.com/wavebreaker/backend/internal/usecase"
)

type fakeOpenIDVerifier struct {
	url     string
	steamID uint64
	err     error
}

func (f *fakeOpenIDVerifier) LoginURL() string { return f.url }

func (f *fakeOpenIDVerifier) Verify(_ context.Context, _ url.Values) (uint64, error) {
	return f.steamID, f.err
}

type fakePlayerBySteamIDRepo struct {
	entity.PlayerRepository
	bySteamID map[uint64]*entity.Player
}

func (r *fakePlayerBySteamIDRepo) GetBySteamID(_ context.Context, steamID uint64) (*entity.Player, error) {
	p, ok := r.bySteamID[steamID]
	if !ok {
		return nil, apperr.New(codes.NotFound, "not found")
	}
	return p, nil
}

func TestOpenIDUseCase_HandleCallback(t *testing.T) {
	ctx := context.Background()
	logger, _ := logging.New()

	t.Run("existing player gets a session", func(t *testing.T) {
		verifier := &fakeOpenIDVerifier{steamID: 76561198000000009}
		players := &fakePlayerBySteamIDRepo{bySteamID: map[uint64]*entity.Player{
			76561198000000009: {ID: 3, Username: "p3"},
		}}
		sessions := usecase.NewSessionUseCase(newFakeSessionCache(), players, logger)
		uc := usecase.NewOpenIDUseCase(verifier, players, sessions, logger)

		result, err := uc.HandleCallback(ctx, url.Values{})

		require.NoError(t, err)
		assert.Equal(t, int64(3), result.Player.ID)
		assert.NotEmpty(t, result.Token)
	})

	t.Run("unknown steam id is unauthenticated, never creates an account", func(t *testing.T) {
		verifier := &fakeOpenIDVerifier{steamID: 1}
		players := &fakePlayerBySteamIDRepo{bySteamID: map[uint64]*entity.Player{}}
		sessions := usecase.NewSessionUseCase(newFakeSessionCache(), players, logger)
		uc := usecase.NewOpenIDUseCase(verifier, players, sessions, logger)

		_, err := uc.HandleCallback(ctx, url.Values{})

		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	})

	t.Run("verification failure propagates", func(t *testing.T) {
		verifier := &fakeOpenIDVerifier{err: apperr.ErrInvalidArgument}
		players := &fakePlayerBySteamIDRepo{bySteamID: map[uint64]*entity.Player{}}
		sessions := usecase.NewSessionUseCase(newFakeSessionCache(), players, logger)
		uc := usecase.NewOpenIDUseCase(verifier, players, sessions, logger)

		_, err := uc.HandleCallback(ctx, url.Values{})

		assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	})
}
