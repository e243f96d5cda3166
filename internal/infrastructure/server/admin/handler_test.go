package admin_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
	"github.com/pannpers/go-logging/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavebreaker/backend/internal/entity"
	"github.com/wavebreaker/backend/internal/infrastructure/server/admin"
	"github.com/wavebreaker/backend/internal/usecase"
)

type fakePlayers struct {
	byID map[int64]*entity.Player
}

func (f *fakePlayers) LoginSteam(context.Context, uint64, string, string) (*usecase.LoginResult, error) {
	return nil, nil
}
func (f *fakePlayers) SyncFriends(context.Context, int64, []int32) (*usecase.SyncResult, error) {
	return nil, nil
}
func (f *fakePlayers) GetBySteamID(context.Context, uint64) (*entity.Player, error) { return nil, nil }
func (f *fakePlayers) Get(_ context.Context, id int64) (*entity.Player, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, apperr.New(codes.NotFound, "no such player")
	}
	return p, nil
}
func (f *fakePlayers) List(context.Context, int, int) ([]*entity.Player, error) { return nil, nil }

type fakeSessions struct {
	player *entity.Player
}

func (f *fakeSessions) Issue(context.Context, int64) (string, error) { return "tok", nil }
func (f *fakeSessions) Authenticate(_ context.Context, token string) (*entity.Player, error) {
	if token != "valid-token" {
		return nil, apperr.New(codes.Unauthenticated, "invalid token")
	}
	return f.player, nil
}
func (f *fakeSessions) Revoke(context.Context, string) error        { return nil }
func (f *fakeSessions) RevokeAll(context.Context, int64) error      { return nil }

type fakeLeaderboard struct{}

func (f *fakeLeaderboard) EnsureTracked(context.Context, int64) error { return nil }
func (f *fakeLeaderboard) Page(context.Context, int, int) ([]usecase.LeaderboardEntry, error) {
	return nil, nil
}
func (f *fakeLeaderboard) Rank(context.Context, int64) (int64, bool, error) { return 0, false, nil }
func (f *fakeLeaderboard) TotalPlayers(context.Context) (int64, error)      { return 5, nil }
func (f *fakeLeaderboard) Recompute(context.Context, int64) error           { return nil }

func newTestHandler(t *testing.T, players *fakePlayers, sessions *fakeSessions) *admin.Handler {
	t.Helper()
	logger, err := logging.New()
	require.NoError(t, err)
	return admin.NewHandler(admin.Deps{
		Players:     players,
		Sessions:    sessions,
		Leaderboard: &fakeLeaderboard{},
		Logger:      logger,
		RadioList:   func(context.Context) string { return "-:*x-" },
	})
}

func TestHealthCheck(t *testing.T) {
	h := newTestHandler(t, &fakePlayers{}, &fakeSessions{})

	req := httptest.NewRequest(http.MethodGet, "/healthCheck", nil)
	rec := httptest.NewRecorder()
	h.NewRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestPlayersSelf_RequiresBearerToken(t *testing.T) {
	h := newTestHandler(t, &fakePlayers{}, &fakeSessions{})

	req := httptest.NewRequest(http.MethodGet, "/players/self", nil)
	rec := httptest.NewRecorder()
	h.NewRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPlayersSelf_WithValidToken(t *testing.T) {
	player := &entity.Player{ID: 1, Username: "rider"}
	h := newTestHandler(t, &fakePlayers{byID: map[int64]*entity.Player{1: player}}, &fakeSessions{player: player})

	req := httptest.NewRequest(http.MethodGet, "/players/self", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	rec := httptest.NewRecorder()
	h.NewRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"rider"`)
}

func TestStats(t *testing.T) {
	h := newTestHandler(t, &fakePlayers{}, &fakeSessions{})

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	h.NewRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalPlayers":5`)
}
