package admin

import (
	"encoding/json"
	"net/http"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
)

type rivalView struct {
	PlayerID  int64  `json:"playerId"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
	Mutual    bool   `json:"mutual"`
}

func (h *Handler) rivalsSelf(w http.ResponseWriter, r *http.Request) {
	player := playerFromContext(r.Context())

	views, err := h.rivalries.ListChallenged(r.Context(), player.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]rivalView, 0, len(views))
	for _, v := range views {
		out = append(out, rivalView{PlayerID: v.PlayerID, Username: v.Username, AvatarURL: v.AvatarURL, Mutual: v.Mutual})
	}
	h.writeJSON(w, http.StatusOK, out)
}

type rivalRequest struct {
	RivalID int64 `json:"rivalId"`
}

func (h *Handler) rivalsAdd(w http.ResponseWriter, r *http.Request) {
	player := playerFromContext(r.Context())

	var req rivalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RivalID == 0 {
		h.writeError(w, apperr.New(codes.InvalidArgument, "rivalId is required"))
		return
	}

	if err := h.rivalries.Add(r.Context(), player.ID, req.RivalID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) rivalsRemove(w http.ResponseWriter, r *http.Request) {
	player := playerFromContext(r.Context())

	var req rivalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RivalID == 0 {
		h.writeError(w, apperr.New(codes.InvalidArgument, "rivalId is required"))
		return
	}

	if err := h.rivalries.Remove(r.Context(), player.ID, req.RivalID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
