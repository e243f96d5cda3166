package usecase_test

import (
	"context"
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

type fakeShoutRepo struct {
	entity.ShoutRepository
	bySong  map[int64][]*entity.Shout
	byID    map[int64]*entity.Shout
	nextID  int64
	deleted []int64
}

func newFakeShoutRepo() *fakeShoutRepo {
	return &fakeShoutRepo{bySong: map[int64][]*entity.Shout{}, byID: map[int64]*entity.Shout{}}
}

func (r *fakeShoutRepo) Create(_ context.Context, s *entity.NewShout) (*entity.Shout, error) {
	r.nextID++
	shout := &entity.Shout{ID: r.nextID, SongID: s.SongID, AuthorID: s.AuthorID, Content: s.Content, PostedAt: time.Unix(0, 0).UTC()}
	r.bySong[s.SongID] = append(r.bySong[s.SongID], shout)
	r.byID[shout.ID] = shout
	return shout, nil
}

func (r *fakeShoutRepo) Get(_ context.Context, id int64) (*entity.Shout, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, apperr.New(codes.NotFound, "not found")
	}
	return s, nil
}

func (r *fakeShoutRepo) BySong(_ context.Context, songID int64, _, _ int) ([]*entity.Shout, error) {
	return r.bySong[songID], nil
}

func (r *fakeShoutRepo) Delete(_ context.Context, id int64) error {
	delete(r.byID, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func TestShoutUseCase_FetchShouts(t *testing.T) {
	ctx := context.Background()
	logger, _ := logging.New()

	t.Run("empty song returns placeholder", func(t *testing.T) {
		shouts := newFakeShoutRepo()
		players := &fakePlayerSkillRepo{byID: map[int64]*entity.Player{}}
		uc := usecase.NewShoutUseCase(shouts, players, logger)

		body, err := uc.FetchShouts(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, "No shouts for this track yet.", body)
	})

	t.Run("renders author/content lines", func(t *testing.T) {
		shouts := newFakeShoutRepo()
		players := &fakePlayerSkillRepo{byID: map[int64]*entity.Player{7: {ID: 7, Username: "racer7"}}}
		uc := usecase.NewShoutUseCase(shouts, players, logger)

		_, err := uc.SendShout(ctx, 1, 7, "nice run")
		require.NoError(t, err)

		body, err := uc.FetchShouts(ctx, 1)

		require.NoError(t, err)
		assert.Contains(t, body, "racer7")
		assert.Contains(t, body, "nice run")
	})
}

func TestShoutUseCase_SendShout_Validation(t *testing.T) {
	ctx := context.Background()
	logger, _ := logging.New()
	shouts := newFakeShoutRepo()
	players := &fakePlayerSkillRepo{byID: map[int64]*entity.Player{}}
	uc := usecase.NewShoutUseCase(shouts, players, logger)

	_, err := uc.SendShout(ctx, 1, 7, "")
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)

	tooLong := make([]byte, 241)
	for i := range tooLong {
		tooLong[i] = 'a'
	}
	_, err = uc.SendShout(ctx, 1, 7, string(tooLong))
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestShoutUseCase_Delete(t *testing.T) {
	ctx := context.Background()
	logger, _ := logging.New()

	t.Run("author may delete own shout", func(t *testing.T) {
		shouts := newFakeShoutRepo()
		players := &fakePlayerSkillRepo{byID: map[int64]*entity.Player{}}
		uc := usecase.NewShoutUseCase(shouts, players, logger)
		created, _ := shouts.Create(ctx, &entity.NewShout{SongID: 1, AuthorID: 7, Content: "hi"})

		err := uc.Delete(ctx, created.ID, &entity.Player{ID: 7})

		require.NoError(t, err)
		assert.Contains(t, shouts.deleted, created.ID)
	})

	t.Run("other player cannot delete", func(t *testing.T) {
		shouts := newFakeShoutRepo()
		players := &fakePlayerSkillRepo{byID: map[int64]*entity.Player{}}
		uc := usecase.NewShoutUseCase(shouts, players, logger)
		created, _ := shouts.Create(ctx, &entity.NewShout{SongID: 1, AuthorID: 7, Content: "hi"})

		err := uc.Delete(ctx, created.ID, &entity.Player{ID: 8, AccountType: entity.AccountTypeUser})

		assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
	})
}
