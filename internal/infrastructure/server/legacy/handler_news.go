package legacy

import "net/http"

// customNews handles get_custom_news: a constant welcome banner including
// the player's username, wrapped in the bare <RESULTS><TEXT> shape with no
// @status attribute.
func (h *Handler) customNews(w http.ResponseWriter, r *http.Request) {
	player, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	text, err := h.rides.CustomNews(r.Context(), player.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeXML(w, http.StatusOK, &customNewsResult{Text: text})
}
