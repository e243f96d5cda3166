package usecase

import (
	"context"
	"errors"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
	"github.com/pannpers/go-logging/logging"

	"github.com/wavebreaker/backend/internal/entity"
	"github.com/wavebreaker/backend/internal/infrastructure/cache/redis"
)

// SessionCache is the subset of the §4.8 bearer-token session store the
// session use case needs.
type SessionCache interface {
	Create(ctx context.Context, playerID int64) (string, error)
	Verify(ctx context.Context, token string) (int64, error)
	Delete(ctx context.Context, token string) error
	DeleteAllForPlayer(ctx context.Context, playerID int64) error
}

// SessionUseCase implements §4.8: issue, verify, and revoke the bearer
// tokens the JSON admin API authenticates with.
type SessionUseCase interface {
	// Issue creates a new token for playerID.
	Issue(ctx context.Context, playerID int64) (string, error)
	// Authenticate resolves a bearer token to its owning player.
	//
	// # Possible errors
	//  - Unauthenticated: token is absent, expired, or its player no longer exists.
	Authenticate(ctx context.Context, token string) (*entity.Player, error)
	// Revoke invalidates a single token (logout).
	Revoke(ctx context.Context, token string) error
	// RevokeAll invalidates every token for a player, forcing re-authentication
	// after an administrative ban.
	RevokeAll(ctx context.Context, playerID int64) error
}

type sessionUseCase struct {
	cache   SessionCache
	players entity.PlayerRepository
	logger  *logging.Logger
}

var _ SessionUseCase = (*sessionUseCase)(nil)

// NewSessionUseCase creates a new session use case.
func NewSessionUseCase(cache SessionCache, players entity.PlayerRepository, logger *logging.Logger) SessionUseCase {
	return &sessionUseCase{cache: cache, players: players, logger: logger}
}

func (uc *sessionUseCase) Issue(ctx context.Context, playerID int64) (string, error) {
	return uc.cache.Create(ctx, playerID)
}

func (uc *sessionUseCase) Authenticate(ctx context.Context, token string) (*entity.Player, error) {
	playerID, err := uc.cache.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, redis.ErrMiss) {
			return nil, apperr.New(codes.Unauthenticated, "session token is invalid or expired")
		}
		return nil, err
	}

	player, err := uc.players.Get(ctx, playerID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.New(codes.Unauthenticated, "session references a player that no longer exists")
		}
		return nil, err
	}
	return player, nil
}

func (uc *sessionUseCase) Revoke(ctx context.Context, token string) error {
	return uc.cache.Delete(ctx, token)
}

func (uc *sessionUseCase) RevokeAll(ctx context.Context, playerID int64) error {
	return uc.cache.DeleteAllForPlayer(ctx, playerID)
}
