package admin

import "net/http"

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// stats reports the aggregate counters the front-end dashboard shows.
func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	total, err := h.leaderboard.TotalPlayers(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int64{"totalPlayers": total})
}
