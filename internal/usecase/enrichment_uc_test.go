package usecase_test

import (
	"context"
	"testing"

	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-apperr/apperr/codes"
	"github.com/pannpers/go-logging/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavebreaker/backend/internal/entity"
	"github.com/wavebreaker/backend/internal/infrastructure/music/musicbrainz"
	"github.com/wavebreaker/backend/internal/usecase"
)

type fakeExtraSongInfoRepo struct {
	bysongID map[int64]*entity.ExtraSongInfo
	upserts  []*entity.NewExtraSongInfo
}

func newFakeExtraSongInfoRepo() *fakeExtraSongInfoRepo {
	return &fakeExtraSongInfoRepo{bysongID: map[int64]*entity.ExtraSongInfo{}}
}

func (r *fakeExtraSongInfoRepo) Get(_ context.Context, songID int64) (*entity.ExtraSongInfo, error) {
	info, ok := r.bysongID[songID]
	if !ok {
		return nil, apperr.New(codes.NotFound, "not found")
	}
	return info, nil
}

func (r *fakeExtraSongInfoRepo) Upsert(_ context.Context, info *entity.NewExtraSongInfo) (*entity.ExtraSongInfo, error) {
	r.upserts = append(r.upserts, info)
	out := &entity.ExtraSongInfo{SongID: info.SongID, MBID: info.MBID}
	r.set(info.SongID, out)
	return out, nil
}

func (r *fakeExtraSongInfoRepo) set(songID int64, info *entity.ExtraSongInfo) {
	r.bysongID[songID] = info
}

func (r *fakeExtraSongInfoRepo) SetMistagLock(_ context.Context, songID int64, locked bool) error {
	if info, ok := r.bysongID[songID]; ok {
		info.MistagLock = locked
	}
	return nil
}

type fakeSongGetRepo struct {
	entity.SongRepository
	songs map[int64]*entity.Song
}

func (r *fakeSongGetRepo) Get(_ context.Context, id int64) (*entity.Song, error) {
	s, ok := r.songs[id]
	if !ok {
		return nil, apperr.New(codes.NotFound, "not found")
	}
	return s, nil
}

type fakeMusicBrainzClient struct {
	searchResult *musicbrainz.Recording
	searchErr    error
	lookupResult *musicbrainz.Recording
	lookupErr    error
	cover        *musicbrainz.Cover
	coverErr     error
}

func (f *fakeMusicBrainzClient) SearchRecording(_ context.Context, _, _ string, _ int32) (*musicbrainz.Recording, error) {
	return f.searchResult, f.searchErr
}

func (f *fakeMusicBrainzClient) LookupRecording(_ context.Context, _ string) (*musicbrainz.Recording, error) {
	return f.lookupResult, f.lookupErr
}

func (f *fakeMusicBrainzClient) FetchCovers(_ context.Context, _ string) (*musicbrainz.Cover, error) {
	if f.coverErr != nil {
		return nil, f.coverErr
	}
	if f.cover == nil {
		return &musicbrainz.Cover{}, nil
	}
	return f.cover, nil
}

func TestEnrichmentUseCase_AutoAddMetadata(t *testing.T) {
	ctx := context.Background()
	logger, _ := logging.New()

	t.Run("no-op when extra info already exists", func(t *testing.T) {
		extraRepo := newFakeExtraSongInfoRepo()
		extraRepo.set(1, &entity.ExtraSongInfo{SongID: 1})
		mb := &fakeMusicBrainzClient{}
		uc := usecase.NewEnrichmentUseCase(&fakeSongGetRepo{}, extraRepo, mb, logger)

		err := uc.AutoAddMetadata(ctx, 1, 280000)

		require.NoError(t, err)
		assert.Empty(t, extraRepo.upserts)
	})

	t.Run("searches and upserts when no existing info", func(t *testing.T) {
		extraRepo := newFakeExtraSongInfoRepo()
		songRepo := &fakeSongGetRepo{songs: map[int64]*entity.Song{2: {ID: 2, Title: "Sendoff", Artist: "Inverted Silence"}}}
		mb := &fakeMusicBrainzClient{
			searchResult: &musicbrainz.Recording{MBID: "mbid-1", Title: "Sendoff", Artist: "Inverted Silence", LengthMS: 282240, ReleaseMBID: "rel-1"},
			cover:        &musicbrainz.Cover{URL500: "https://example.com/500.jpg", URL250: "https://example.com/250.jpg"},
		}
		uc := usecase.NewEnrichmentUseCase(songRepo, extraRepo, mb, logger)

		err := uc.AutoAddMetadata(ctx, 2, 282240)

		require.NoError(t, err)
		require.Len(t, extraRepo.upserts, 1)
		assert.Equal(t, int64(2), extraRepo.upserts[0].SongID)
		assert.Equal(t, "mbid-1", *extraRepo.upserts[0].MBID)
	})

	t.Run("propagates search miss", func(t *testing.T) {
		extraRepo := newFakeExtraSongInfoRepo()
		songRepo := &fakeSongGetRepo{songs: map[int64]*entity.Song{3: {ID: 3, Title: "X", Artist: "Y"}}}
		mb := &fakeMusicBrainzClient{searchErr: apperr.ErrNotFound}
		uc := usecase.NewEnrichmentUseCase(songRepo, extraRepo, mb, logger)

		err := uc.AutoAddMetadata(ctx, 3, 1000)

		assert.ErrorIs(t, err, apperr.ErrNotFound)
		assert.Empty(t, extraRepo.upserts)
	})
}

func TestEnrichmentUseCase_AddMetadataByMBID(t *testing.T) {
	ctx := context.Background()
	logger, _ := logging.New()

	t.Run("overwrites even if extra info exists", func(t *testing.T) {
		extraRepo := newFakeExtraSongInfoRepo()
		extraRepo.set(5, &entity.ExtraSongInfo{SongID: 5, MistagLock: true})
		mb := &fakeMusicBrainzClient{
			lookupResult: &musicbrainz.Recording{MBID: "mbid-5", Title: "T", Artist: "A", ReleaseMBID: "rel-5"},
			cover:        &musicbrainz.Cover{},
		}
		uc := usecase.NewEnrichmentUseCase(&fakeSongGetRepo{}, extraRepo, mb, logger)

		err := uc.AddMetadataByMBID(ctx, 5, "mbid-5", "")

		require.NoError(t, err)
		require.Len(t, extraRepo.upserts, 1)
	})

	t.Run("uses explicit release mbid over recording's own", func(t *testing.T) {
		extraRepo := newFakeExtraSongInfoRepo()
		mb := &fakeMusicBrainzClient{
			lookupResult: &musicbrainz.Recording{MBID: "mbid-6", ReleaseMBID: "rel-from-recording"},
			cover:        &musicbrainz.Cover{},
		}
		uc := usecase.NewEnrichmentUseCase(&fakeSongGetRepo{}, extraRepo, mb, logger)

		err := uc.AddMetadataByMBID(ctx, 6, "mbid-6", "rel-explicit")

		require.NoError(t, err)
		require.Len(t, extraRepo.upserts, 1)
	})
}
