package legacy

import (
	"fmt"
	"net/http"
	"strings"
)

// fetchTrackShape handles fetch_track_shape: render a score row's own
// track shape as a raw "n1xn2x...xnkx" body, looked up directly by the
// "ridd" id the client echoes back from get_rides's trafficcount field
// (§6.2). The original issues this call with no ticket or session at all
// (_examples/original_source/src/game/misc.rs), so it stays unauthenticated
// here too.
func (h *Handler) fetchTrackShape(w http.ResponseWriter, r *http.Request) {
	riddID := parseInt64(r.FormValue("ridd"))

	shape, err := h.rides.FetchTrackShape(r.Context(), riddID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, renderTrackShape(shape))
}

func renderTrackShape(shape []int32) string {
	parts := make([]string, 0, len(shape)+1)
	for _, n := range shape {
		parts = append(parts, fmt.Sprintf("%d", n))
	}
	parts = append(parts, "")
	return strings.Join(parts, "x")
}
