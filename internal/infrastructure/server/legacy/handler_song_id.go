package legacy

import (
	"net/http"

	"github.com/wavebreaker/backend/internal/usecase"
)

// fetchSongID handles fetch_song_id: resolve or create the canonical song
// row for a submitted (artist, title) pair. Unlike every other legacy
// handler this one carries no ticket; the client calls it before it has
// established a session, identifying itself only by a raw uid field that is
// never checked against Steam.
func (h *Handler) fetchSongID(w http.ResponseWriter, r *http.Request) {
	song, err := h.songs.Resolve(r.Context(), &usecase.ResolveSongParams{
		Title:  r.FormValue("song"),
		Artist: r.FormValue("artist"),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeXML(w, http.StatusOK, &songIDResult{Status: statusAllgood, SongID: song.ID})
}
