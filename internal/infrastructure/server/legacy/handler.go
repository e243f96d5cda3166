// Package legacy serves the original game client's form-POST/XML wire
// protocol: ticket-authenticated score submission, leaderboard reads, the
// custom news banner, shout board, and static radio list.
package legacy

import (
	"context"
	"encoding/xml"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pannpers/go-logging/logging"

	"github.com/wavebreaker/backend/internal/entity"
	"github.com/wavebreaker/backend/internal/infrastructure/server/httperr"
	"github.com/wavebreaker/backend/internal/infrastructure/steam"
	"github.com/wavebreaker/backend/internal/usecase"
)

// Handler serves every game_*.php-shaped endpoint the legacy client calls.
type Handler struct {
	tickets   usecase.TicketVerifierUseCase
	players   usecase.PlayerUseCase
	songs     usecase.SongResolverUseCase
	scores    usecase.ScoreUseCase
	rides     usecase.RidesUseCase
	shouts    usecase.ShoutUseCase
	steam     *steam.Client
	staticDir string
	logger    *logging.Logger
}

// NewHandler creates a new legacy protocol handler.
func NewHandler(
	tickets usecase.TicketVerifierUseCase,
	players usecase.PlayerUseCase,
	songs usecase.SongResolverUseCase,
	scores usecase.ScoreUseCase,
	rides usecase.RidesUseCase,
	shouts usecase.ShoutUseCase,
	steamClient *steam.Client,
	staticDir string,
	logger *logging.Logger,
) *Handler {
	return &Handler{
		tickets:   tickets,
		players:   players,
		songs:     songs,
		scores:    scores,
		rides:     rides,
		shouts:    shouts,
		steam:     steamClient,
		staticDir: staticDir,
		logger:    logger,
	}
}

// NewRouter mounts every legacy endpoint at its exact path. chi's tree
// router does not collapse repeated slashes the way net/http.ServeMux does,
// so the "//as_steamlogin" alias one buggy client build dials is registered
// as its own literal route rather than relying on normalization.
func (h *Handler) NewRouter() chi.Router {
	r := chi.NewRouter()

	for _, prefix := range []string{"/as_steamlogin", "//as_steamlogin"} {
		r.Post(prefix+"/game_AttemptLoginSteamVerified.php", h.loginSteam)
		r.Post(prefix+"/game_SteamSyncSteamVerified.php", h.steamSync)
		r.Post(prefix+"/game_fetchsongid_unicode.php", h.fetchSongID)
		r.Post(prefix+"/game_SendRideSteamVerified.php", h.sendRide)
		r.Post(prefix+"/game_GetRidesSteamVerified.php", h.getRides)
		r.Post(prefix+"/game_fetchshouts_unicode.php", h.fetchShouts)
		r.Post(prefix+"/game_sendShoutSteamVerified.php", h.sendShout)
	}

	// custom_news is only ever dialed through the double-slash alias.
	r.Post("//as_steamlogin/game_CustomNews.php", h.customNews)

	r.Post("/as/game_fetchtrackshape2.php", h.fetchTrackShape)
	r.Post("/as/asradio/game_asradiolist5.php", h.radioList)

	if h.staticDir != "" {
		fs := http.StripPrefix("/as/asradio", http.FileServer(http.Dir(h.staticDir)))
		r.Handle("/as/asradio/*", fs)
	}

	return r
}

// authenticate verifies the ticket form field and resolves the calling
// player, writing an XML error response and returning ok=false on failure.
func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) (player *entity.Player, ok bool) {
	ctx := r.Context()
	ticket := r.FormValue("ticket")

	steamID, err := h.tickets.Verify(ctx, ticket)
	if err != nil {
		h.writeError(w, err)
		return nil, false
	}

	player, err = h.players.GetBySteamID(ctx, steamID)
	if err != nil {
		h.writeError(w, err)
		return nil, false
	}
	return player, true
}

func (h *Handler) writeXML(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(xml.Header))
	enc := xml.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		h.logger.Error(context.Background(), "failed to encode legacy XML response", err)
	}
}

func (h *Handler) writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := httperr.Status(err)
	h.logger.Error(context.Background(), "legacy handler error", err, slog.Int("status", status))
	h.writeXML(w, status, &errorResult{Status: err.Error()})
}

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func parseInt32(s string) int32 {
	n, _ := strconv.ParseInt(s, 10, 32)
	return int32(n)
}
