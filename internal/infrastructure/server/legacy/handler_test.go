package legacy_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
	"github.com/pannpers/go-logging/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavebreaker/backend/internal/entity"
	"github.com/wavebreaker/backend/internal/infrastructure/server/legacy"
	"github.com/wavebreaker/backend/internal/usecase"
)

type fakeTickets struct {
	steamID uint64
	err     error
}

func (f *fakeTickets) Verify(_ context.Context, ticket string) (uint64, error) {
	if ticket == "" {
		return 0, apperr.New(codes.InvalidArgument, "ticket cannot be empty")
	}
	return f.steamID, f.err
}

type fakePlayers struct {
	byID      map[int64]*entity.Player
	bySteamID map[uint64]*entity.Player
	loginErr  error
	syncErr   error
	sync      *usecase.SyncResult
}

func (f *fakePlayers) LoginSteam(_ context.Context, steamID uint64, personaName, avatarFull string) (*usecase.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	p := f.bySteamID[steamID]
	return &usecase.LoginResult{Player: p, SteamAccountNum: p.SteamAccountNum}, nil
}

func (f *fakePlayers) SyncFriends(_ context.Context, _ int64, _ []int32) (*usecase.SyncResult, error) {
	return f.sync, f.syncErr
}

func (f *fakePlayers) GetBySteamID(_ context.Context, steamID uint64) (*entity.Player, error) {
	p, ok := f.bySteamID[steamID]
	if !ok {
		return nil, apperr.New(codes.Unauthenticated, "unknown steam id")
	}
	return p, nil
}

func (f *fakePlayers) Get(_ context.Context, id int64) (*entity.Player, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, apperr.New(codes.NotFound, "no such player")
	}
	return p, nil
}

func (f *fakePlayers) List(_ context.Context, _, _ int) ([]*entity.Player, error) { return nil, nil }

type fakeSongs struct {
	song *entity.Song
	err  error
}

func (f *fakeSongs) Resolve(_ context.Context, _ *usecase.ResolveSongParams) (*entity.Song, error) {
	return f.song, f.err
}

type fakeScores struct {
	result *usecase.SubmitScoreResult
	err    error
}

func (f *fakeScores) Submit(_ context.Context, _ *usecase.SubmitScoreParams) (*usecase.SubmitScoreResult, error) {
	return f.result, f.err
}
func (f *fakeScores) Delete(_ context.Context, _ int64) error { return nil }

type fakeRides struct {
	slices     *usecase.RideSlices
	trackShape []int32
	news       string
	radio      string
	err        error
}

func (f *fakeRides) GetRides(_ context.Context, _, _ int64) (*usecase.RideSlices, error) {
	return f.slices, f.err
}
func (f *fakeRides) FetchTrackShape(_ context.Context, _ int64) ([]int32, error) {
	return f.trackShape, f.err
}
func (f *fakeRides) CustomNews(_ context.Context, _ int64) (string, error) { return f.news, f.err }
func (f *fakeRides) RadioList(_ context.Context) string                    { return f.radio }

type fakeShouts struct {
	body string
	err  error
}

func (f *fakeShouts) FetchShouts(_ context.Context, _ int64) (string, error) { return f.body, f.err }
func (f *fakeShouts) SendShout(_ context.Context, _, _ int64, _ string) (string, error) {
	return f.body, f.err
}
func (f *fakeShouts) Delete(_ context.Context, _ int64, _ *entity.Player) error { return nil }

func newTestHandler(t *testing.T, tickets *fakeTickets, players *fakePlayers, songs *fakeSongs, scores *fakeScores, rides *fakeRides, shouts *fakeShouts) *legacy.Handler {
	t.Helper()
	logger, err := logging.New()
	require.NoError(t, err)
	return legacy.NewHandler(tickets, players, songs, scores, rides, shouts, nil, "", logger)
}

func postForm(t *testing.T, handler http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestFetchSongID(t *testing.T) {
	song := &entity.Song{ID: 42, Title: "Song", Artist: "Artist"}
	h := newTestHandler(t, &fakeTickets{}, &fakePlayers{}, &fakeSongs{song: song}, &fakeScores{}, &fakeRides{}, &fakeShouts{})

	rec := postForm(t, h.NewRouter(), "/as_steamlogin/game_fetchsongid_unicode.php", url.Values{
		"artist": {"Artist"}, "song": {"Song"}, "uid": {"1"}, "league": {"0"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<songid>42</songid>")
	assert.Contains(t, rec.Body.String(), `status="allgood"`)
}

func TestGetRides_RequiresTicket(t *testing.T) {
	h := newTestHandler(t, &fakeTickets{}, &fakePlayers{}, &fakeSongs{}, &fakeScores{}, &fakeRides{}, &fakeShouts{})

	rec := postForm(t, h.NewRouter(), "/as_steamlogin/game_GetRidesSteamVerified.php", url.Values{
		"songid": {"1"},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRides_DoubleSlashAlias(t *testing.T) {
	player := &entity.Player{ID: 1}
	slices := &usecase.RideSlices{
		Global: map[entity.League][]*entity.ScoreWithPlayer{},
		Friend: map[entity.League][]*entity.ScoreWithPlayer{},
		Nearby: map[entity.League][]*entity.ScoreWithPlayer{},
	}
	h := newTestHandler(t,
		&fakeTickets{steamID: 76561198000000001},
		&fakePlayers{bySteamID: map[uint64]*entity.Player{76561198000000001: player}},
		&fakeSongs{}, &fakeScores{},
		&fakeRides{slices: slices},
		&fakeShouts{},
	)

	rec := postForm(t, h.NewRouter(), "//as_steamlogin/game_GetRidesSteamVerified.php", url.Values{
		"songid": {"1"}, "ticket": {"tkt"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `scoretype="1"`)
}

func TestSendRide_DethroneSentinel(t *testing.T) {
	player := &entity.Player{ID: 1}
	result := &usecase.SubmitScoreResult{
		Score:    &entity.Score{SongID: 7},
		NewPB:    true,
		Dethrone: &usecase.DethroneResult{RivalScore: 143},
	}
	h := newTestHandler(t,
		&fakeTickets{steamID: 1},
		&fakePlayers{bySteamID: map[uint64]*entity.Player{1: player}},
		&fakeSongs{}, &fakeScores{result: result}, &fakeRides{}, &fakeShouts{},
	)

	rec := postForm(t, h.NewRouter(), "/as_steamlogin/game_SendRideSteamVerified.php", url.Values{
		"ticket": {"tkt"}, "songid": {"7"}, "score": {"500"}, "vehicle": {"0"}, "league": {"0"},
		"goldthreshold": {"600"}, "songlength": {"1000"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<rivalscore>143</rivalscore>")
	assert.Contains(t, rec.Body.String(), "<songid>7</songid>")
}

func TestCustomNews_OnlyDoubleSlash(t *testing.T) {
	player := &entity.Player{ID: 1, Username: "rider"}
	h := newTestHandler(t,
		&fakeTickets{steamID: 1},
		&fakePlayers{bySteamID: map[uint64]*entity.Player{1: player}},
		&fakeSongs{}, &fakeScores{}, &fakeRides{news: "Welcome back to Wavebreaker, rider! Ride safe."}, &fakeShouts{},
	)

	rec := postForm(t, h.NewRouter(), "//as_steamlogin/game_CustomNews.php", url.Values{"ticket": {"tkt"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<TEXT>Welcome back to Wavebreaker, rider! Ride safe.</TEXT>")

	notMounted := postForm(t, h.NewRouter(), "/as_steamlogin/game_CustomNews.php", url.Values{"ticket": {"tkt"}})
	assert.Equal(t, http.StatusNotFound, notMounted.Code)
}

func TestFetchTrackShape_RawBody(t *testing.T) {
	h := newTestHandler(t,
		&fakeTickets{}, &fakePlayers{}, &fakeSongs{}, &fakeScores{},
		&fakeRides{trackShape: []int32{1, 2, 3}}, &fakeShouts{},
	)

	rec := postForm(t, h.NewRouter(), "/as/game_fetchtrackshape2.php", url.Values{
		"ridd": {"99"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1x2x3x", rec.Body.String())
}

func TestFetchTrackShape_NoAuthRequired(t *testing.T) {
	h := newTestHandler(t,
		&fakeTickets{}, &fakePlayers{}, &fakeSongs{}, &fakeScores{},
		&fakeRides{trackShape: []int32{4}}, &fakeShouts{},
	)

	rec := postForm(t, h.NewRouter(), "/as/game_fetchtrackshape2.php", url.Values{
		"ridd": {"7"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "4x", rec.Body.String())
}

func TestRadioList_NoAuthRequired(t *testing.T) {
	h := newTestHandler(t, &fakeTickets{}, &fakePlayers{}, &fakeSongs{}, &fakeScores{}, &fakeRides{radio: "-:*x-"}, &fakeShouts{})

	rec := postForm(t, h.NewRouter(), "/as/asradio/game_asradiolist5.php", url.Values{})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "-:*x-", rec.Body.String())
}

func TestSteamSync_StatusMessage(t *testing.T) {
	player := &entity.Player{ID: 1}
	h := newTestHandler(t,
		&fakeTickets{steamID: 1},
		&fakePlayers{bySteamID: map[uint64]*entity.Player{1: player}, sync: &usecase.SyncResult{Added: 2, Total: 3}},
		&fakeSongs{}, &fakeScores{}, &fakeRides{}, &fakeShouts{},
	)

	rec := postForm(t, h.NewRouter(), "/as_steamlogin/game_SteamSyncSteamVerified.php", url.Values{
		"ticket": {"tkt"}, "friendslist": {"1x2x"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `status="added 2 of 3 friends"`)
}

func TestFetchShouts_EmptyPlaceholder(t *testing.T) {
	h := newTestHandler(t, &fakeTickets{steamID: 1},
		&fakePlayers{bySteamID: map[uint64]*entity.Player{1: {ID: 1}}},
		&fakeSongs{}, &fakeScores{}, &fakeRides{},
		&fakeShouts{body: "No shouts for this track yet."},
	)

	rec := postForm(t, h.NewRouter(), "/as_steamlogin/game_fetchshouts_unicode.php", url.Values{
		"ticket": {"tkt"}, "songid": {"1"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "No shouts for this track yet.", rec.Body.String())
}
