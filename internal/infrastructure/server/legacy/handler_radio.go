package legacy

import "net/http"

// radioList handles get_radio_list: the static configured playlist, joined
// by the literal separator rides_uc.go's RidesUseCase already renders.
func (h *Handler) radioList(w http.ResponseWriter, r *http.Request) {
	h.writeText(w, h.rides.RadioList(r.Context()))
}
