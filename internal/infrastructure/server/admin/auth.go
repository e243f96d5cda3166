package admin

import "net/http"

// authLogin redirects the browser to the Steam OpenID checkid_setup URL.
func (h *Handler) authLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.openID.LoginURL(), http.StatusFound)
}

// authReturn handles the OpenID provider's callback, verifying it and
// issuing a bearer token for the matching player.
func (h *Handler) authReturn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.openID.HandleCallback(r.Context(), r.URL.Query())
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"token":    result.Token,
		"playerId": result.Player.ID,
		"username": result.Player.Username,
	})
}
