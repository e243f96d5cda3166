package legacy

import (
	"net/http"
	"strings"
	"time"

	"github.com/wavebreaker/backend/internal/entity"
)

// scoreTypeOrder is the wire order get_rides renders its three score-type
// blocks in: Global first, then Friend, then Nearby.
var scoreTypeOrder = []struct {
	kind entity.ScoreType
	rows func(*RideSlicesByScoreType) map[entity.League][]*entity.ScoreWithPlayer
}{
	{entity.ScoreTypeGlobal, func(s *RideSlicesByScoreType) map[entity.League][]*entity.ScoreWithPlayer { return s.Global }},
	{entity.ScoreTypeFriend, func(s *RideSlicesByScoreType) map[entity.League][]*entity.ScoreWithPlayer { return s.Friend }},
	{entity.ScoreTypeNearby, func(s *RideSlicesByScoreType) map[entity.League][]*entity.ScoreWithPlayer { return s.Nearby }},
}

// RideSlicesByScoreType mirrors usecase.RideSlices so this package doesn't
// need to import its field layout assumptions beyond the three maps.
type RideSlicesByScoreType struct {
	Global, Friend, Nearby map[entity.League][]*entity.ScoreWithPlayer
}

// getRides handles get_rides: render the global, rival and nearby
// leaderboard slices for a song, cross-producted over the three leagues.
func (h *Handler) getRides(w http.ResponseWriter, r *http.Request) {
	player, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	songID := parseInt64(r.FormValue("songid"))

	slices, err := h.rides.GetRides(r.Context(), player.ID, songID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	byType := &RideSlicesByScoreType{Global: slices.Global, Friend: slices.Friend, Nearby: slices.Nearby}

	result := &getRidesResult{
		Status:     statusAllgood,
		ServerTime: time.Now().Unix(),
	}
	for _, st := range scoreTypeOrder {
		result.Scores = append(result.Scores, scoresBlock{
			ScoreType: int16(st.kind),
			Leagues:   renderLeagues(st.rows(byType)),
		})
	}

	h.writeXML(w, http.StatusOK, result)
}

func renderLeagues(rows map[entity.League][]*entity.ScoreWithPlayer) []leagueRides {
	leagues := make([]leagueRides, 0, len(allLeagues))
	for _, league := range allLeagues {
		leagues = append(leagues, leagueRides{
			LeagueID: int16(league),
			Rides:    renderRides(rows[league]),
		})
	}
	return leagues
}

func renderRides(rows []*entity.ScoreWithPlayer) []ride {
	out := make([]ride, 0, len(rows))
	for _, row := range rows {
		out = append(out, ride{
			Username:     row.PlayerUsername,
			Score:        row.Score.Score,
			VehicleID:    int16(row.Vehicle),
			RideTime:     row.SubmittedAt.Unix(),
			Feats:        strings.Join(row.Feats, ", "),
			SongLength:   row.SongLengthCs,
			TrafficCount: row.ID,
		})
	}
	return out
}

var allLeagues = []entity.League{entity.LeagueCasual, entity.LeaguePro, entity.LeagueElite}
