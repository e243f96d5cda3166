package admin

import (
	"encoding/json"
	"net/http"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"

	"github.com/wavebreaker/backend/internal/entity"
)

type songResponse struct {
	ID        int64                `json:"id"`
	Title     string               `json:"title"`
	Artist    string               `json:"artist"`
	Modifiers []string             `json:"modifiers,omitempty"`
	ExtraInfo *extraSongInfoResponse `json:"extraInfo,omitempty"`
}

type extraSongInfoResponse struct {
	CoverURL          *string `json:"coverUrl,omitempty"`
	CoverURLSmall     *string `json:"coverUrlSmall,omitempty"`
	MBID              *string `json:"mbid,omitempty"`
	MusicBrainzTitle  *string `json:"musicBrainzTitle,omitempty"`
	MusicBrainzArtist *string `json:"musicBrainzArtist,omitempty"`
}

func (h *Handler) getSong(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	song, err := h.songs.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := &songResponse{ID: song.ID, Title: song.Title, Artist: song.Artist, Modifiers: song.Modifiers}

	if _, withExtra := r.URL.Query()["withExtraInfo"]; withExtra {
		if info, err := h.extraInfo.Get(r.Context(), id); err == nil {
			resp.ExtraInfo = &extraSongInfoResponse{
				CoverURL:          info.CoverURL,
				CoverURLSmall:     info.CoverURLSmall,
				MBID:              info.MBID,
				MusicBrainzTitle:  info.MusicBrainzTitle,
				MusicBrainzArtist: info.MusicBrainzArtist,
			}
		}
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) deleteSong(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	rows, err := h.scoreRepo.DeleteBySong(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	for _, row := range rows {
		if err := h.scores.Delete(r.Context(), row.ID); err != nil {
			h.logger.Error(r.Context(), "failed to unwind score during song delete", err)
		}
	}

	if err := h.songs.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) songRankings(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	songs, err := h.songs.List(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]*songResponse, 0, len(songs))
	for _, s := range songs {
		out = append(out, &songResponse{ID: s.ID, Title: s.Title, Artist: s.Artist, Modifiers: s.Modifiers})
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) songScores(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	scores, err := h.scoreRepo.TopGlobal(r.Context(), id, entity.LeagueElite, 50)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toScoreResponses(scores))
}

func (h *Handler) songShouts(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	body, err := h.shouts.FetchShouts(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"shouts": body})
}

func (h *Handler) putExtraInfo(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req extraSongInfoResponse
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperr.New(codes.InvalidArgument, "invalid request body"))
		return
	}

	info, err := h.extraInfo.Upsert(r.Context(), &entity.NewExtraSongInfo{
		SongID:            id,
		CoverURL:          req.CoverURL,
		CoverURLSmall:     req.CoverURLSmall,
		MusicBrainzTitle:  req.MusicBrainzTitle,
		MusicBrainzArtist: req.MusicBrainzArtist,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, &extraSongInfoResponse{
		CoverURL: info.CoverURL, CoverURLSmall: info.CoverURLSmall,
		MBID: info.MBID, MusicBrainzTitle: info.MusicBrainzTitle, MusicBrainzArtist: info.MusicBrainzArtist,
	})
}

func (h *Handler) putExtraInfoByMBID(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req struct {
		MBID string `json:"mbid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MBID == "" {
		h.writeError(w, apperr.New(codes.InvalidArgument, "mbid is required"))
		return
	}

	info, err := h.extraInfo.Upsert(r.Context(), &entity.NewExtraSongInfo{SongID: id, MBID: &req.MBID})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, &extraSongInfoResponse{MBID: info.MBID})
}

func (h *Handler) radio(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"radioList": h.radioList(r.Context())})
}
