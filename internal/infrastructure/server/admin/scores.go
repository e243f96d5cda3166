package admin

import (
	"net/http"
	"strconv"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"

	"github.com/wavebreaker/backend/internal/entity"
)

type scoreResponse struct {
	ID              int64  `json:"id"`
	PlayerID        int64  `json:"playerId"`
	PlayerUsername  string `json:"playerUsername"`
	SongID          int64  `json:"songId"`
	League          int16  `json:"league"`
	Score           int32  `json:"score"`
	Vehicle         int16  `json:"vehicle"`
	SkillPoints     int64  `json:"skillPoints"`
	SubmittedAtUnix int64  `json:"submittedAt"`
}

func toScoreResponses(rows []*entity.ScoreWithPlayer) []*scoreResponse {
	out := make([]*scoreResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, &scoreResponse{
			ID:              row.ID,
			PlayerID:        row.PlayerID,
			PlayerUsername:  row.PlayerUsername,
			SongID:          row.SongID,
			League:          int16(row.League),
			Score:           row.Score.Score,
			Vehicle:         int16(row.Vehicle),
			SkillPoints:     row.SkillPoints(),
			SubmittedAtUnix: row.SubmittedAt.Unix(),
		})
	}
	return out
}

func (h *Handler) getScore(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	score, err := h.scoreRepo.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, score)
}

func (h *Handler) deleteScore(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.scores.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listScores filters by the required playerId/songId/league query
// parameters, mirroring §7's BadRequest-on-missing-filter rule.
func (h *Handler) listScores(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	playerID, err := strconv.ParseInt(q.Get("playerId"), 10, 64)
	if err != nil {
		h.writeError(w, apperr.New(codes.InvalidArgument, "playerId is required"))
		return
	}
	limit, offset, err := pagination(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	rows, err := h.scoreRepo.ByPlayer(r.Context(), playerID, limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) rivalScores(w http.ResponseWriter, r *http.Request) {
	player := playerFromContext(r.Context())
	songID, err := strconv.ParseInt(r.URL.Query().Get("songId"), 10, 64)
	if err != nil {
		h.writeError(w, apperr.New(codes.InvalidArgument, "songId is required"))
		return
	}
	league, err := entity.ParseLeague(int16(parseIntDefault(r.URL.Query().Get("league"), 0)))
	if err != nil {
		h.writeError(w, apperr.New(codes.InvalidArgument, err.Error()))
		return
	}

	rivals, err := h.rivalries.ListChallenged(r.Context(), player.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	ids := make([]int64, 0, len(rivals)+1)
	ids = append(ids, player.ID)
	for _, rv := range rivals {
		ids = append(ids, rv.PlayerID)
	}

	rows, err := h.scoreRepo.ForPlayers(r.Context(), songID, league, ids, len(ids))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toScoreResponses(rows))
}

func parseIntDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
