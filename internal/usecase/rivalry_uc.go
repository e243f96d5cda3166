package usecase

import (
	"context"
	"errors"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-logging/logging"

	"github.com/wavebreaker/backend/internal/entity"
)

// RivalryUseCase implements the rival-tracking operations behind `GET
// /rivals/self`, `POST /rivals/add`, and `DELETE /rivals/remove`.
type RivalryUseCase interface {
	// Add establishes a directed rivalry from challengerID to rivalID.
	//
	// # Possible errors
	//  - AlreadyExists: challenger already tracks rival.
	Add(ctx context.Context, challengerID, rivalID int64) error
	// Remove deletes the rivalry. A rivalID that isn't currently tracked is
	// treated as a no-op rather than an error, matching the legacy
	// behaviour this endpoint preserves (§13).
	Remove(ctx context.Context, challengerID, rivalID int64) error
	// ListChallenged returns every rivalry challengerID has established,
	// rendered from the challenger's perspective.
	ListChallenged(ctx context.Context, challengerID int64) ([]*entity.RivalryView, error)
	// ListChallengers returns every player tracking rivalID as a rival,
	// rendered from the rival's perspective. Not currently routed by any
	// endpoint, but kept alongside ListChallenged since both directions of
	// the underlying view are equally cheap to expose.
	ListChallengers(ctx context.Context, rivalID int64) ([]*entity.RivalryView, error)
}

type rivalryUseCase struct {
	rivalries entity.RivalryRepository
	players   entity.PlayerRepository
	logger    *logging.Logger
}

var _ RivalryUseCase = (*rivalryUseCase)(nil)

// NewRivalryUseCase creates a new rivalry use case.
func NewRivalryUseCase(rivalries entity.RivalryRepository, players entity.PlayerRepository, logger *logging.Logger) RivalryUseCase {
	return &rivalryUseCase{rivalries: rivalries, players: players, logger: logger}
}

func (uc *rivalryUseCase) Add(ctx context.Context, challengerID, rivalID int64) error {
	_, err := uc.rivalries.Create(ctx, challengerID, rivalID)
	return err
}

func (uc *rivalryUseCase) Remove(ctx context.Context, challengerID, rivalID int64) error {
	err := uc.rivalries.Delete(ctx, challengerID, rivalID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	return err
}

func (uc *rivalryUseCase) ListChallenged(ctx context.Context, challengerID int64) ([]*entity.RivalryView, error) {
	rows, err := uc.rivalries.RivalsOf(ctx, challengerID)
	if err != nil {
		return nil, err
	}
	return uc.renderViews(ctx, challengerID, rows, func(r *entity.Rivalry) int64 { return r.RivalID })
}

func (uc *rivalryUseCase) ListChallengers(ctx context.Context, rivalID int64) ([]*entity.RivalryView, error) {
	rows, err := uc.rivalries.ChallengersOf(ctx, rivalID)
	if err != nil {
		return nil, err
	}
	return uc.renderViews(ctx, rivalID, rows, func(r *entity.Rivalry) int64 { return r.ChallengerID })
}

// renderViews looks up the non-viewer side of each rivalry and checks
// mutuality. otherID extracts whichever end of the row is not the viewer.
func (uc *rivalryUseCase) renderViews(ctx context.Context, viewerID int64, rows []*entity.Rivalry, otherID func(*entity.Rivalry) int64) ([]*entity.RivalryView, error) {
	views := make([]*entity.RivalryView, 0, len(rows))
	for _, row := range rows {
		other := otherID(row)
		player, err := uc.players.Get(ctx, other)
		if err != nil {
			uc.logger.Error(ctx, "rivalry view player lookup failed", err)
			continue
		}
		mutual, err := uc.rivalries.IsMutual(ctx, row.ChallengerID, row.RivalID)
		if err != nil {
			uc.logger.Error(ctx, "rivalry mutuality check failed", err)
		}
		views = append(views, &entity.RivalryView{
			PlayerID:  player.ID,
			Username:  player.Username,
			AvatarURL: player.AvatarURL,
			Mutual:    mutual,
			SinceAt:   row.EstablishedAt,
		})
	}
	return views, nil
}
