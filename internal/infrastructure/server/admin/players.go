package admin

import (
	"net/http"

	"github.com/wavebreaker/backend/internal/entity"
)

type playerResponse struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	AvatarURL   string `json:"avatarUrl"`
	LocationID  int32  `json:"locationId"`
	AccountType int16  `json:"accountType"`
	Rank        *int64 `json:"rank,omitempty"`
	SkillPoints *int64 `json:"skillPoints,omitempty"`
}

func (h *Handler) renderPlayer(r *http.Request, p *playerResponse, id int64, withStats bool) {
	if !withStats {
		return
	}
	rank, tracked, err := h.leaderboard.Rank(r.Context(), id)
	if err != nil || !tracked {
		return
	}
	p.Rank = &rank
}

func (h *Handler) getSelf(w http.ResponseWriter, r *http.Request) {
	player := playerFromContext(r.Context())
	h.writeJSON(w, http.StatusOK, toPlayerResponse(player))
}

func (h *Handler) getPlayer(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	player, err := h.players.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := toPlayerResponse(player)
	_, withStats := r.URL.Query()["withStats"]
	h.renderPlayer(r, resp, id, withStats)
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) playerRankings(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	entries, err := h.leaderboard.Page(r.Context(), offset, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]any{
			"playerId":    e.PlayerID,
			"username":    e.Username,
			"avatarUrl":   e.AvatarURL,
			"skillPoints": e.SkillPoints,
			"rank":        e.Rank,
		})
	}
	h.writeJSON(w, http.StatusOK, out)
}

func toPlayerResponse(p *entity.Player) *playerResponse {
	return &playerResponse{
		ID:          p.ID,
		Username:    p.Username,
		AvatarURL:   p.AvatarURL,
		LocationID:  p.LocationID,
		AccountType: int16(p.AccountType),
	}
}
