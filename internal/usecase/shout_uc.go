package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
	"github.com/pannpers/go-logging/logging"

	"github.com/wavebreaker/backend/internal/entity"
)

const maxShoutContentLen = 240

// noShoutsPlaceholder is returned by fetch_shouts/send_shout when a song has
// no shouts, matching the legacy client's expectation of a non-empty body.
const noShoutsPlaceholder = "No shouts for this track yet."

const shoutTimestampLayout = "2006-01-02 15:04:05"

// ShoutUseCase implements the §4.7 fetch_shouts/send_shout pair and the
// admin-API delete operation, all three backed by entity.ShoutRepository.
type ShoutUseCase interface {
	// FetchShouts renders every shout for songID in wire format, oldest
	// first.
	FetchShouts(ctx context.Context, songID int64) (string, error)
	// SendShout posts a new shout and renders the updated wire-format body.
	//
	// # Possible errors
	//  - InvalidArgument: content is empty or exceeds 240 characters.
	SendShout(ctx context.Context, songID, authorID int64, content string) (string, error)
	// Delete removes a shout if actor is authorized to (its author or a
	// moderator/team account).
	//
	// # Possible errors
	//  - PermissionDenied: actor may not delete this shout.
	Delete(ctx context.Context, shoutID int64, actor *entity.Player) error
}

type shoutUseCase struct {
	shouts  entity.ShoutRepository
	players entity.PlayerRepository
	logger  *logging.Logger
}

var _ ShoutUseCase = (*shoutUseCase)(nil)

// NewShoutUseCase creates a new shout use case.
func NewShoutUseCase(shouts entity.ShoutRepository, players entity.PlayerRepository, logger *logging.Logger) ShoutUseCase {
	return &shoutUseCase{shouts: shouts, players: players, logger: logger}
}

func (uc *shoutUseCase) FetchShouts(ctx context.Context, songID int64) (string, error) {
	rows, err := uc.shouts.BySong(ctx, songID, 0, 0)
	if err != nil {
		return "", err
	}
	return uc.render(ctx, rows), nil
}

func (uc *shoutUseCase) SendShout(ctx context.Context, songID, authorID int64, content string) (string, error) {
	if content == "" || len(content) > maxShoutContentLen {
		return "", apperr.New(codes.InvalidArgument, "shout content must be 1-240 characters")
	}

	if _, err := uc.shouts.Create(ctx, &entity.NewShout{SongID: songID, AuthorID: authorID, Content: content}); err != nil {
		return "", err
	}

	return uc.FetchShouts(ctx, songID)
}

func (uc *shoutUseCase) Delete(ctx context.Context, shoutID int64, actor *entity.Player) error {
	shout, err := uc.shouts.Get(ctx, shoutID)
	if err != nil {
		return err
	}
	if !shout.CanDelete(actor) {
		return apperr.New(codes.PermissionDenied, "only the author or a moderator may delete this shout")
	}
	return uc.shouts.Delete(ctx, shoutID)
}

// render implements fetch_shouts' wire format: one "username (at
// timestamp): content" line per shout, newline-separated. Author lookups
// that fail are logged and skipped rather than failing the whole response.
func (uc *shoutUseCase) render(ctx context.Context, rows []*entity.Shout) string {
	if len(rows) == 0 {
		return noShoutsPlaceholder
	}

	lines := make([]string, 0, len(rows))
	for _, s := range rows {
		username := "unknown"
		if author, err := uc.players.Get(ctx, s.AuthorID); err == nil {
			username = author.Username
		} else {
			uc.logger.Error(ctx, "shout author lookup failed", err)
		}
		lines = append(lines, fmt.Sprintf("%s (at %s): %s", username, s.PostedAt.Format(shoutTimestampLayout), s.Content))
	}
	return strings.Join(lines, "\n")
}
