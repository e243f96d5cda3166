package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
	"github.com/pannpers/go-logging/logging"

	"github.com/wavebreaker/backend/internal/infrastructure/cache/redis"
)

// TicketCache is the §4.2 cache-store layer sitting in front of Steam.
type TicketCache interface {
	Get(ctx context.Context, ticket string) (uint64, error)
	Set(ctx context.Context, ticket string, steamID uint64) error
}

// SteamAuthenticator validates an opaque session ticket against Steam.
type SteamAuthenticator interface {
	AuthenticateUserTicket(ctx context.Context, ticket string) (uint64, error)
}

// TicketVerifierUseCase implements the §4.2 Steam ticket verifier. Every
// authenticated legacy handler calls Verify first.
type TicketVerifierUseCase interface {
	// Verify resolves a client-supplied ticket to the SteamID it was issued
	// for, using the cache store as the single choke-point in front of
	// Steam's own rate limit.
	//
	// # Possible errors
	//  - InvalidArgument: ticket is empty.
	//  - Unauthenticated: Steam rejected the ticket.
	//  - Unavailable: Steam could not be reached.
	Verify(ctx context.Context, ticket string) (uint64, error)
}

type ticketVerifierUseCase struct {
	cache  TicketCache
	steam  SteamAuthenticator
	logger *logging.Logger
}

var _ TicketVerifierUseCase = (*ticketVerifierUseCase)(nil)

// NewTicketVerifierUseCase creates a new ticket verifier use case.
func NewTicketVerifierUseCase(cache TicketCache, steam SteamAuthenticator, logger *logging.Logger) TicketVerifierUseCase {
	return &ticketVerifierUseCase{cache: cache, steam: steam, logger: logger}
}

// Verify implements §4.2: cache hit returns directly, cache miss goes to
// Steam and caches the result for ticketCacheTTL. Network failures are never
// cached, so the next request retries against Steam.
func (uc *ticketVerifierUseCase) Verify(ctx context.Context, ticket string) (uint64, error) {
	if ticket == "" {
		return 0, apperr.New(codes.InvalidArgument, "ticket cannot be empty")
	}

	steamID, err := uc.cache.Get(ctx, ticket)
	if err == nil {
		return steamID, nil
	}
	if !errors.Is(err, redis.ErrMiss) {
		uc.logger.Error(ctx, "ticket cache read failed", err)
	}

	steamID, err = uc.steam.AuthenticateUserTicket(ctx, ticket)
	if err != nil {
		return 0, err
	}

	if err := uc.cache.Set(ctx, ticket, steamID); err != nil {
		uc.logger.Error(ctx, "ticket cache write failed", err, slog.Uint64("steamID", steamID))
	}

	return steamID, nil
}
