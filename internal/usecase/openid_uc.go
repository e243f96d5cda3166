package usecase

import (
	"context"
	"errors"
	"net/url"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
	"github.com/pannpers/go-logging/logging"

	"github.com/wavebreaker/backend/internal/entity"
)

// SteamOpenIDVerifier is the subset of the §4.9 OpenID helper this use case
// needs.
type SteamOpenIDVerifier interface {
	LoginURL() string
	Verify(ctx context.Context, callback url.Values) (uint64, error)
}

// OpenIDLoginResult pairs a freshly verified web session with the player it
// belongs to.
type OpenIDLoginResult struct {
	Player *entity.Player
	Token  string
}

// OpenIDUseCase implements §4.9: the Steam OpenID web login flow backing the
// JSON admin API and any browser-facing surface. Unlike §4.2's in-game
// ticket verification, a successful OpenID callback for a SteamID with no
// existing Player is rejected: web login never creates an account, it only
// authenticates one already created by a prior game login.
type OpenIDUseCase interface {
	// LoginURL returns the checkid_setup redirect URL to send the browser to.
	LoginURL() string
	// HandleCallback verifies the provider's callback and, on success, issues
	// a session for the matching player.
	//
	// # Possible errors
	//  - InvalidArgument: the callback failed OpenID verification.
	//  - Unavailable: the provider could not be reached.
	//  - Unauthenticated: no player exists for the verified SteamID.
	HandleCallback(ctx context.Context, callback url.Values) (*OpenIDLoginResult, error)
}

type openIDUseCase struct {
	verifier SteamOpenIDVerifier
	players  entity.PlayerRepository
	sessions SessionUseCase
	logger   *logging.Logger
}

var _ OpenIDUseCase = (*openIDUseCase)(nil)

// NewOpenIDUseCase creates a new Steam OpenID login use case.
func NewOpenIDUseCase(verifier SteamOpenIDVerifier, players entity.PlayerRepository, sessions SessionUseCase, logger *logging.Logger) OpenIDUseCase {
	return &openIDUseCase{verifier: verifier, players: players, sessions: sessions, logger: logger}
}

func (uc *openIDUseCase) LoginURL() string {
	return uc.verifier.LoginURL()
}

func (uc *openIDUseCase) HandleCallback(ctx context.Context, callback url.Values) (*OpenIDLoginResult, error) {
	steamID, err := uc.verifier.Verify(ctx, callback)
	if err != nil {
		return nil, err
	}

	player, err := uc.players.GetBySteamID(ctx, steamID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.New(codes.Unauthenticated, "no wavebreaker account for this steam id; log in from the game first")
		}
		return nil, err
	}

	token, err := uc.sessions.Issue(ctx, player.ID)
	if err != nil {
		return nil, err
	}

	return &OpenIDLoginResult{Player: player, Token: token}, nil
}
