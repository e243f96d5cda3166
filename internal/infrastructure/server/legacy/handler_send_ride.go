package legacy

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"

	"github.com/wavebreaker/backend/internal/entity"
	"github.com/wavebreaker/backend/internal/usecase"
)

// sendRide handles send_ride: submit a ride and return the dethrone
// response alongside the stored song id.
func (h *Handler) sendRide(w http.ResponseWriter, r *http.Request) {
	player, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	league, err := entity.ParseLeague(int16(parseInt32(r.FormValue("league"))))
	if err != nil {
		h.writeError(w, apperr.New(codes.InvalidArgument, err.Error()))
		return
	}
	vehicle, err := entity.ParseVehicle(int16(parseInt32(r.FormValue("vehicle"))))
	if err != nil {
		h.writeError(w, apperr.New(codes.InvalidArgument, err.Error()))
		return
	}

	params := &usecase.SubmitScoreParams{
		PlayerID:      player.ID,
		SongID:        parseInt64(r.FormValue("songid")),
		League:        league,
		Score:         parseInt32(r.FormValue("score")),
		Vehicle:       vehicle,
		Density:       parseInt32(r.FormValue("density")),
		TrackShape:    parseXSeparatedInts(r.FormValue("trackshape")),
		XStats:        parseCommaSeparatedInts(r.FormValue("xstats")),
		Feats:         splitNonEmpty(r.FormValue("feats"), ","),
		SongLengthCs:  parseInt32(r.FormValue("songlength")),
		GoldThreshold: parseInt32(r.FormValue("goldthreshold")),
		Iss:           parseOptionalInt32(r.FormValue("iss")),
		Isj:           parseOptionalInt32(r.FormValue("isj")),
	}

	result, err := h.scores.Submit(r.Context(), params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeXML(w, http.StatusOK, &sendRideResult{
		Status: statusAllgood,
		SongID: result.Score.SongID,
		Beatscore: beatscore{
			Dethroned:    result.Dethrone.Dethroned,
			Friend:       result.Dethrone.Friend,
			RivalName:    result.Dethrone.RivalName,
			RivalScore:   result.Dethrone.RivalScore,
			MyScore:      result.Dethrone.MyScore,
			ReignSeconds: result.Dethrone.ReignSeconds,
		},
	})
}

func parseXSeparatedInts(raw string) []int32 {
	return parseSeparatedInts(raw, "x")
}

func parseCommaSeparatedInts(raw string) []int32 {
	return parseSeparatedInts(raw, ",")
}

func parseSeparatedInts(raw, sep string) []int32 {
	parts := splitNonEmpty(strings.Trim(raw, sep), sep)
	out := make([]int32, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 32)
		if err != nil {
			continue
		}
		out = append(out, int32(n))
	}
	return out
}

func splitNonEmpty(raw, sep string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseOptionalInt32(raw string) *int32 {
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return nil
	}
	v := int32(n)
	return &v
}
