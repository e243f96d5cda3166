package admin

import "net/http"

func (h *Handler) deleteShout(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	actor := playerFromContext(r.Context())
	if err := h.shouts.Delete(r.Context(), id, actor); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
