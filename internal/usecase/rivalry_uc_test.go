package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
	"github.com/pannpers/go-logging/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavebreaker/backend/internal/entity"
	"github.com/wavebreaker/backend/internal/usecase"
)

type fakeRivalryListRepo struct {
	entity.RivalryRepository
	rivalsOf      map[int64][]*entity.Rivalry
	challengersOf map[int64][]*entity.Rivalry
	mutual        map[[2]int64]bool
	deleteErr     error
}

func (r *fakeRivalryListRepo) RivalsOf(_ context.Context, challengerID int64) ([]*entity.Rivalry, error) {
	return r.rivalsOf[challengerID], nil
}

func (r *fakeRivalryListRepo) ChallengersOf(_ context.Context, rivalID int64) ([]*entity.Rivalry, error) {
	return r.challengersOf[rivalID], nil
}

func (r *fakeRivalryListRepo) IsMutual(_ context.Context, challengerID, rivalID int64) (bool, error) {
	return r.mutual[[2]int64{challengerID, rivalID}], nil
}

func (r *fakeRivalryListRepo) Delete(_ context.Context, _, _ int64) error {
	return r.deleteErr
}

func (r *fakeRivalryListRepo) Create(_ context.Context, challengerID, rivalID int64) (*entity.Rivalry, error) {
	return &entity.Rivalry{ChallengerID: challengerID, RivalID: rivalID}, nil
}

func TestRivalryUseCase_ListChallenged(t *testing.T) {
	ctx := context.Background()
	logger, _ := logging.New()

	repo := &fakeRivalryListRepo{
		rivalsOf: map[int64][]*entity.Rivalry{
			1: {{ChallengerID: 1, RivalID: 2, EstablishedAt: time.Now()}},
		},
		mutual: map[[2]int64]bool{{1, 2}: true},
	}
	players := &fakePlayerSkillRepo{byID: map[int64]*entity.Player{2: {ID: 2, Username: "rival2"}}}
	uc := usecase.NewRivalryUseCase(repo, players, logger)

	views, err := uc.ListChallenged(ctx, 1)

	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "rival2", views[0].Username)
	assert.True(t, views[0].Mutual)
}

func TestRivalryUseCase_Remove(t *testing.T) {
	ctx := context.Background()
	logger, _ := logging.New()

	t.Run("not-a-rival is a no-op, not an error", func(t *testing.T) {
		repo := &fakeRivalryListRepo{deleteErr: apperr.New(codes.NotFound, "no such rivalry")}
		uc := usecase.NewRivalryUseCase(repo, &fakePlayerSkillRepo{byID: map[int64]*entity.Player{}}, logger)

		err := uc.Remove(ctx, 1, 999)

		assert.NoError(t, err)
	})

	t.Run("other errors propagate", func(t *testing.T) {
		repo := &fakeRivalryListRepo{deleteErr: apperr.New(codes.Internal, "boom")}
		uc := usecase.NewRivalryUseCase(repo, &fakePlayerSkillRepo{byID: map[int64]*entity.Player{}}, logger)

		err := uc.Remove(ctx, 1, 2)

		assert.Error(t, err)
		assert.False(t, errors.Is(err, apperr.ErrNotFound))
	})
}

func TestRivalryUseCase_Add(t *testing.T) {
	ctx := context.Background()
	logger, _ := logging.New()
	repo := &fakeRivalryListRepo{}
	uc := usecase.NewRivalryUseCase(repo, &fakePlayerSkillRepo{byID: map[int64]*entity.Player{}}, logger)

	err := uc.Add(ctx, 1, 2)

	require.NoError(t, err)
}
