package legacy

import "net/http"

// fetchShouts handles fetch_shouts: render every shout posted against a song
// as a raw newline-joined body.
func (h *Handler) fetchShouts(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authenticate(w, r); !ok {
		return
	}

	body, err := h.shouts.FetchShouts(r.Context(), parseInt64(r.FormValue("songid")))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeText(w, body)
}

// sendShout handles send_shout: post a shout and return the updated body in
// the same format as fetchShouts.
func (h *Handler) sendShout(w http.ResponseWriter, r *http.Request) {
	player, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	body, err := h.shouts.SendShout(r.Context(), parseInt64(r.FormValue("songid")), player.ID, r.FormValue("shout"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeText(w, body)
}
