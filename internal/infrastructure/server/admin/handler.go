// Package admin serves the JSON REST API a web front-end uses: player and
// song lookups, leaderboard pages, rivalry management, and the Steam OpenID
// web login flow.
package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
	"github.com/pannpers/go-logging/logging"

	"github.com/wavebreaker/backend/internal/entity"
	"github.com/wavebreaker/backend/internal/infrastructure/server/httperr"
	"github.com/wavebreaker/backend/internal/usecase"
)

// Handler serves every /api/* route.
type Handler struct {
	players     usecase.PlayerUseCase
	songs       entity.SongRepository
	extraInfo   entity.ExtraSongInfoRepository
	scores      usecase.ScoreUseCase
	scoreRepo   entity.ScoreRepository
	shouts      usecase.ShoutUseCase
	rivalries   usecase.RivalryUseCase
	leaderboard usecase.LeaderboardUseCase
	sessions    usecase.SessionUseCase
	openID      usecase.OpenIDUseCase
	radioList   func(ctx context.Context) string
	logger      *logging.Logger
}

// Deps groups Handler's collaborators so NewHandler's signature doesn't grow
// one parameter per dependency.
type Deps struct {
	Players     usecase.PlayerUseCase
	Songs       entity.SongRepository
	ExtraInfo   entity.ExtraSongInfoRepository
	Scores      usecase.ScoreUseCase
	ScoreRepo   entity.ScoreRepository
	Shouts      usecase.ShoutUseCase
	Rivalries   usecase.RivalryUseCase
	Leaderboard usecase.LeaderboardUseCase
	Sessions    usecase.SessionUseCase
	OpenID      usecase.OpenIDUseCase
	RadioList   func(ctx context.Context) string
	Logger      *logging.Logger
}

// NewHandler creates a new admin API handler.
func NewHandler(d Deps) *Handler {
	return &Handler{
		players:     d.Players,
		songs:       d.Songs,
		extraInfo:   d.ExtraInfo,
		scores:      d.Scores,
		scoreRepo:   d.ScoreRepo,
		shouts:      d.Shouts,
		rivalries:   d.Rivalries,
		leaderboard: d.Leaderboard,
		sessions:    d.Sessions,
		openID:      d.OpenID,
		radioList:   d.RadioList,
		logger:      d.Logger,
	}
}

type playerContextKey struct{}

// NewRouter builds the "/api"-rooted route tree.
func (h *Handler) NewRouter() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthCheck", h.health)
	r.Get("/stats", h.stats)

	r.Get("/auth/login", h.authLogin)
	r.Get("/auth/return", h.authReturn)

	r.Group(func(r chi.Router) {
		r.Use(h.requireSession)

		r.Get("/players/self", h.getSelf)
		r.Get("/players/{id}", h.getPlayer)
		r.Get("/players/rankings", h.playerRankings)

		r.Get("/songs/{id}", h.getSong)
		r.Delete("/songs/{id}", h.deleteSong)
		r.Get("/songs/rankings", h.songRankings)
		r.Get("/songs/{id}/scores", h.songScores)
		r.Get("/songs/{id}/shouts", h.songShouts)
		r.Put("/songs/{id}/extraInfo", h.putExtraInfo)
		r.Put("/songs/{id}/extraInfoByMbid", h.putExtraInfoByMBID)
		r.Get("/songs/radio", h.radio)

		r.Get("/scores/{id}", h.getScore)
		r.Delete("/scores/{id}", h.deleteScore)
		r.Get("/scores", h.listScores)
		r.Get("/scores/rivals", h.rivalScores)

		r.Get("/rivals/self", h.rivalsSelf)
		r.Post("/rivals/add", h.rivalsAdd)
		r.Delete("/rivals/remove", h.rivalsRemove)

		r.Delete("/shouts/{id}", h.deleteShout)
	})

	return r
}

// requireSession resolves a bearer token from the Authorization header and
// attaches the authenticated player to the request context.
func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			h.writeError(w, apperr.New(codes.Unauthenticated, "missing bearer token"))
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		player, err := h.sessions.Authenticate(r.Context(), token)
		if err != nil {
			h.writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), playerContextKey{}, player)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func playerFromContext(ctx context.Context) *entity.Player {
	p, _ := ctx.Value(playerContextKey{}).(*entity.Player)
	return p
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error(context.Background(), "failed to encode admin JSON response", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := httperr.Status(err)
	h.logger.Error(context.Background(), "admin handler error", err)
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func pathInt64(r *http.Request, key string) (int64, error) {
	raw := chi.URLParam(r, key)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperr.New(codes.InvalidArgument, key+" must be an integer")
	}
	return n, nil
}

// pagination parses the page/pageSize query parameters shared by every
// rankings/listing endpoint: page >= 1, pageSize in [1, 50].
func pagination(r *http.Request) (limit, offset int, err error) {
	page := 1
	pageSize := 20

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, apperr.New(codes.InvalidArgument, "page must be >= 1")
		}
	}
	if raw := r.URL.Query().Get("pageSize"); raw != "" {
		pageSize, err = strconv.Atoi(raw)
		if err != nil || pageSize < 1 || pageSize > 50 {
			return 0, 0, apperr.New(codes.InvalidArgument, "pageSize must be between 1 and 50")
		}
	}

	return pageSize, (page - 1) * pageSize, nil
}
