package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
	"github.com/pannpers/go-logging/logging"

	"github.com/wavebreaker/backend/internal/entity"
	"github.com/wavebreaker/backend/pkg/config"
)

const ridesPerSlice = 11

const radioListSeparator = "-:*x-"

// radioListPlaceholder is served by get_radio_list when no stations are
// configured; the legacy client refuses an empty body.
const radioListPlaceholder = radioListSeparator

// CustomNewsMessage is the constant welcome banner get_custom_news wraps the
// player's username into.
const customNewsTemplate = "Welcome back to Wavebreaker, %s! Ride safe."

// RideSlices holds get_rides' three leaderboard views, each already
// cross-producted over the three leagues by the caller.
type RideSlices struct {
	Global map[entity.League][]*entity.ScoreWithPlayer
	Friend map[entity.League][]*entity.ScoreWithPlayer
	Nearby map[entity.League][]*entity.ScoreWithPlayer
}

// RidesUseCase implements the read-only legacy handlers that aren't score
// submission or song resolution: get_rides, fetch_track_shape, the custom
// news banner, and the static radio list.
type RidesUseCase interface {
	// GetRides assembles the global/friend/nearby leaderboard slices for
	// songID, one set per league, for the requesting player.
	GetRides(ctx context.Context, playerID, songID int64) (*RideSlices, error)
	// FetchTrackShape returns the track shape recorded on a score row by its
	// own id (the "ridd" the client echoes back from get_rides's
	// trafficcount field, §6.2). Any player's row, not necessarily the
	// caller's — the legacy client issues this call unauthenticated.
	//
	// # Possible errors
	//  - NotFound: no score with that id.
	FetchTrackShape(ctx context.Context, riddID int64) ([]int32, error)
	// CustomNews renders the constant welcome banner for a player.
	CustomNews(ctx context.Context, playerID int64) (string, error)
	// RadioList renders the configured radio playlist in wire format.
	RadioList(ctx context.Context) string
}

type ridesUseCase struct {
	players   entity.PlayerRepository
	scores    entity.ScoreRepository
	rivalries entity.RivalryRepository
	radio     config.RadioConfig
	logger    *logging.Logger
}

var _ RidesUseCase = (*ridesUseCase)(nil)

// NewRidesUseCase creates a new rides use case.
func NewRidesUseCase(players entity.PlayerRepository, scores entity.ScoreRepository, rivalries entity.RivalryRepository, radio config.RadioConfig, logger *logging.Logger) RidesUseCase {
	return &ridesUseCase{players: players, scores: scores, rivalries: rivalries, radio: radio, logger: logger}
}

var allLeagues = []entity.League{entity.LeagueCasual, entity.LeaguePro, entity.LeagueElite}

func (uc *ridesUseCase) GetRides(ctx context.Context, playerID, songID int64) (*RideSlices, error) {
	player, err := uc.players.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}

	friendIDs, err := uc.friendIDs(ctx, playerID)
	if err != nil {
		return nil, err
	}

	nearbyIDs, err := uc.nearbyIDs(ctx, player)
	if err != nil {
		return nil, err
	}

	slices := &RideSlices{
		Global: map[entity.League][]*entity.ScoreWithPlayer{},
		Friend: map[entity.League][]*entity.ScoreWithPlayer{},
		Nearby: map[entity.League][]*entity.ScoreWithPlayer{},
	}
	for _, league := range allLeagues {
		global, err := uc.scores.TopGlobal(ctx, songID, league, ridesPerSlice)
		if err != nil {
			return nil, err
		}
		slices.Global[league] = global

		friend, err := uc.scores.ForPlayers(ctx, songID, league, friendIDs, ridesPerSlice)
		if err != nil {
			return nil, err
		}
		slices.Friend[league] = friend

		nearby, err := uc.scores.ForPlayers(ctx, songID, league, nearbyIDs, ridesPerSlice)
		if err != nil {
			return nil, err
		}
		slices.Nearby[league] = nearby
	}
	return slices, nil
}

// friendIDs collects the submitting player plus every rival they track, for
// the "rival top-11 (includes self)" slice.
func (uc *ridesUseCase) friendIDs(ctx context.Context, playerID int64) ([]int64, error) {
	rivalries, err := uc.rivalries.RivalsOf(ctx, playerID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(rivalries)+1)
	ids = append(ids, playerID)
	for _, r := range rivalries {
		ids = append(ids, r.RivalID)
	}
	return ids, nil
}

func (uc *ridesUseCase) nearbyIDs(ctx context.Context, player *entity.Player) ([]int64, error) {
	players, err := uc.players.GetByLocation(ctx, player.LocationID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(players))
	for _, p := range players {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func (uc *ridesUseCase) FetchTrackShape(ctx context.Context, riddID int64) ([]int32, error) {
	score, err := uc.scores.Get(ctx, riddID)
	if err != nil {
		return nil, err
	}
	return score.TrackShape, nil
}

func (uc *ridesUseCase) CustomNews(ctx context.Context, playerID int64) (string, error) {
	player, err := uc.players.Get(ctx, playerID)
	if err != nil {
		return "", apperr.New(codes.Unauthenticated, "unknown player")
	}
	return fmt.Sprintf(customNewsTemplate, player.Username), nil
}

func (uc *ridesUseCase) RadioList(_ context.Context) string {
	if len(uc.radio.Songs) == 0 {
		return radioListPlaceholder
	}
	fields := make([]string, 0, len(uc.radio.Songs)*4)
	for _, s := range uc.radio.Songs {
		fields = append(fields, s.Artist, s.Title, s.CGRURL, s.BuyURL)
	}
	return strings.Join(fields, radioListSeparator)
}
