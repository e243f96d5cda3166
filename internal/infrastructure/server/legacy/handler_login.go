package legacy

import (
	"net/http"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"

	"github.com/wavebreaker/backend/internal/usecase"
)

// loginSteam handles login_steam: verify the ticket directly against Steam
// (there is no existing session yet to authenticate against), fetch the
// profile summary, and upsert the player.
func (h *Handler) loginSteam(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticket := r.FormValue("ticket")

	steamID, err := h.tickets.Verify(ctx, ticket)
	if err != nil {
		h.writeError(w, err)
		return
	}

	summary, err := h.steam.GetPlayerSummary(ctx, steamID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.players.LoginSteam(ctx, steamID, summary.PersonaName, summary.AvatarFull)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeXML(w, http.StatusOK, &loginResult{
		Status:     statusAllgood,
		UserID:     result.Player.ID,
		Username:   result.Player.Username,
		LocationID: result.Player.LocationID,
		SteamID:    result.SteamAccountNum,
	})
}

// steamSync handles steam_sync: resolve the caller's friends list (an
// "x"-separated list of Steam account numbers) against existing players and
// establish a rivalry with each match.
func (h *Handler) steamSync(w http.ResponseWriter, r *http.Request) {
	player, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	friends := r.FormValue("friendslist")
	if friends == "" {
		h.writeError(w, apperr.New(codes.InvalidArgument, "friendslist is required"))
		return
	}

	result, err := h.players.SyncFriends(r.Context(), player.ID, usecase.ParseSteamAccountNums(friends))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeXML(w, http.StatusOK, &syncResult{Status: syncStatus(result.Added, result.Total)})
}
