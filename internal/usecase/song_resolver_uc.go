package usecase

import (
	"context"
	"errors"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
	"github.com/pannpers/go-logging/logging"

	"github.com/wavebreaker/backend/internal/entity"
)

// ResolveSongParams is the input to the §4.3 song resolver.
type ResolveSongParams struct {
	Title         string
	Artist        string
	RecordingMBID string
	ReleaseMBID   string
}

// SongResolverUseCase implements §4.3: find-or-create a Song row for a
// submitted (title, artist) pair, optionally pinned by a MusicBrainz
// recording id.
type SongResolverUseCase interface {
	// Resolve returns the Song row for params, creating one if no existing
	// row matches. After Resolve returns, exactly one Song row matches the
	// input; enrichment may later attach ExtraSongInfo but never creates
	// another Song row for the same input.
	//
	// # Possible errors
	//  - InvalidArgument: title or artist is empty.
	//  - Internal: underlying store failure.
	Resolve(ctx context.Context, params *ResolveSongParams) (*entity.Song, error)
}

type songResolverUseCase struct {
	songRepo   entity.SongRepository
	enrichment EnrichmentRequester
	logger     *logging.Logger
}

var _ SongResolverUseCase = (*songResolverUseCase)(nil)

// NewSongResolverUseCase creates a new song resolver use case.
func NewSongResolverUseCase(songRepo entity.SongRepository, enrichment EnrichmentRequester, logger *logging.Logger) SongResolverUseCase {
	return &songResolverUseCase{songRepo: songRepo, enrichment: enrichment, logger: logger}
}

// Resolve implements §4.3.
func (uc *songResolverUseCase) Resolve(ctx context.Context, params *ResolveSongParams) (*entity.Song, error) {
	if params == nil || params.Title == "" || params.Artist == "" {
		return nil, apperr.New(codes.InvalidArgument, "title and artist are required")
	}

	modifiers := ParseModifiers(params.Title)
	bareTitle := StripModifiers(params.Title)

	if params.RecordingMBID != "" {
		return uc.resolveByMBID(ctx, bareTitle, params.Artist, modifiers, params.RecordingMBID, params.ReleaseMBID)
	}
	return uc.resolveByTitleArtist(ctx, bareTitle, params.Artist, modifiers)
}

func (uc *songResolverUseCase) resolveByMBID(ctx context.Context, bareTitle, artist string, modifiers []string, recordingMBID, releaseMBID string) (*entity.Song, error) {
	song, err := uc.songRepo.FindByMBID(ctx, recordingMBID, modifiers)
	if err == nil {
		return song, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	song, err = uc.songRepo.Create(ctx, &entity.NewSong{Title: bareTitle, Artist: artist, Modifiers: modifiers})
	if err != nil {
		return nil, err
	}

	uc.enrichment.RequestMBIDEnrichment(ctx, song.ID, recordingMBID, releaseMBID)

	return song, nil
}

func (uc *songResolverUseCase) resolveByTitleArtist(ctx context.Context, bareTitle, artist string, modifiers []string) (*entity.Song, error) {
	song, err := uc.songRepo.FindByTitleArtist(ctx, bareTitle, artist, modifiers)
	if err == nil {
		return song, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	return uc.songRepo.Create(ctx, &entity.NewSong{Title: bareTitle, Artist: artist, Modifiers: modifiers})
}
