package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pannpers/go-apperr/apperr"
	"github.com/pannpers/go-logging/logging"

	"github.com/wavebreaker/backend/internal/entity"
	"github.com/wavebreaker/backend/internal/infrastructure/messaging"
	"github.com/wavebreaker/backend/internal/infrastructure/music/musicbrainz"
)

// MusicBrainzClient is the subset of the MusicBrainz/Cover Art Archive client
// the enricher needs.
type MusicBrainzClient interface {
	SearchRecording(ctx context.Context, title, artist string, durationMS int32) (*musicbrainz.Recording, error)
	LookupRecording(ctx context.Context, mbid string) (*musicbrainz.Recording, error)
	FetchCovers(ctx context.Context, releaseMBID string) (*musicbrainz.Cover, error)
}

// EnrichmentUseCase implements the §4.4 external metadata enricher's two
// entry points. Both are best-effort: callers log the error, they never
// propagate it to whatever triggered enrichment.
type EnrichmentUseCase interface {
	// AutoAddMetadata no-ops if ExtraSongInfo already exists for the song.
	// Otherwise it searches MusicBrainz by title/artist/duration window,
	// resolves covers for the first result's first release, and inserts a
	// new ExtraSongInfo row.
	AutoAddMetadata(ctx context.Context, songID int64, durationMS int32) error
	// AddMetadataByMBID always overwrites, reflecting explicit admin intent.
	AddMetadataByMBID(ctx context.Context, songID int64, recordingMBID, releaseMBID string) error
}

type enrichmentUseCase struct {
	songRepo  entity.SongRepository
	extraRepo entity.ExtraSongInfoRepository
	mb        MusicBrainzClient
	logger    *logging.Logger
}

var _ EnrichmentUseCase = (*enrichmentUseCase)(nil)

// NewEnrichmentUseCase creates a new enrichment use case.
func NewEnrichmentUseCase(songRepo entity.SongRepository, extraRepo entity.ExtraSongInfoRepository, mb MusicBrainzClient, logger *logging.Logger) EnrichmentUseCase {
	return &enrichmentUseCase{songRepo: songRepo, extraRepo: extraRepo, mb: mb, logger: logger}
}

// AutoAddMetadata implements §4.4's auto_add_metadata.
func (uc *enrichmentUseCase) AutoAddMetadata(ctx context.Context, songID int64, durationMS int32) error {
	if _, err := uc.extraRepo.Get(ctx, songID); err == nil {
		return nil
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}

	song, err := uc.songRepo.Get(ctx, songID)
	if err != nil {
		return err
	}

	rec, err := uc.mb.SearchRecording(ctx, song.Title, song.Artist, durationMS)
	if err != nil {
		return err
	}

	return uc.upsertFromRecording(ctx, songID, rec, rec.ReleaseMBID)
}

// AddMetadataByMBID implements §4.4's add_metadata_mbid. It always
// overwrites an existing row, since being invoked at all reflects explicit
// admin intent regardless of mistag_lock.
func (uc *enrichmentUseCase) AddMetadataByMBID(ctx context.Context, songID int64, recordingMBID, releaseMBID string) error {
	rec, err := uc.mb.LookupRecording(ctx, recordingMBID)
	if err != nil {
		return err
	}

	release := releaseMBID
	if release == "" {
		release = rec.ReleaseMBID
	}

	return uc.upsertFromRecording(ctx, songID, rec, release)
}

func (uc *enrichmentUseCase) upsertFromRecording(ctx context.Context, songID int64, rec *musicbrainz.Recording, releaseMBID string) error {
	var cover *musicbrainz.Cover
	if releaseMBID != "" {
		var err error
		cover, err = uc.mb.FetchCovers(ctx, releaseMBID)
		if err != nil {
			uc.logger.Error(ctx, "cover art fetch failed, proceeding without artwork", err, slog.Int64("song_id", songID))
			cover = &musicbrainz.Cover{}
		}
	} else {
		cover = &musicbrainz.Cover{}
	}

	info := &entity.NewExtraSongInfo{
		SongID:              songID,
		MBID:                strPtr(rec.MBID),
		MusicBrainzTitle:    strPtr(rec.Title),
		MusicBrainzArtist:   strPtr(rec.Artist),
		MusicBrainzLengthMS: i32Ptr(rec.LengthMS),
	}
	if cover.URL500 != "" {
		info.CoverURL = strPtr(cover.URL500)
	}
	if cover.URL250 != "" {
		info.CoverURLSmall = strPtr(cover.URL250)
	}

	_, err := uc.extraRepo.Upsert(ctx, info)
	return err
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func i32Ptr(v int32) *int32 {
	return &v
}

// EnrichmentRequester fires the best-effort §4.4 enrichment job without
// blocking its caller. Implementations publish and return immediately.
type EnrichmentRequester interface {
	RequestAutoEnrichment(ctx context.Context, songID int64, durationMS int32)
	RequestMBIDEnrichment(ctx context.Context, songID int64, recordingMBID, releaseMBID string)
}

// EnrichmentDispatcher publishes enrichment requests onto the in-process
// message bus so the calling request (song resolution or score submission)
// never waits on MusicBrainz.
type EnrichmentDispatcher struct {
	publisher message.Publisher
	logger    *logging.Logger
}

var _ EnrichmentRequester = (*EnrichmentDispatcher)(nil)

// NewEnrichmentDispatcher creates a new enrichment dispatcher.
func NewEnrichmentDispatcher(publisher message.Publisher, logger *logging.Logger) *EnrichmentDispatcher {
	return &EnrichmentDispatcher{publisher: publisher, logger: logger}
}

func (d *EnrichmentDispatcher) publish(ctx context.Context, data messaging.EnrichmentRequestedData) {
	msg, err := messaging.NewCloudEvent(messaging.TopicEnrichmentRequested, data)
	if err != nil {
		d.logger.Error(ctx, "failed to build enrichment event", err, slog.Int64("song_id", data.SongID))
		return
	}
	if err := d.publisher.Publish(messaging.TopicEnrichmentRequested, msg); err != nil {
		d.logger.Error(ctx, "failed to publish enrichment event", err, slog.Int64("song_id", data.SongID))
	}
}

// RequestAutoEnrichment dispatches auto_add_metadata for songID.
func (d *EnrichmentDispatcher) RequestAutoEnrichment(ctx context.Context, songID int64, durationMS int32) {
	d.publish(ctx, messaging.EnrichmentRequestedData{SongID: songID, DurationMS: durationMS})
}

// RequestMBIDEnrichment dispatches add_metadata_mbid for songID.
func (d *EnrichmentDispatcher) RequestMBIDEnrichment(ctx context.Context, songID int64, recordingMBID, releaseMBID string) {
	d.publish(ctx, messaging.EnrichmentRequestedData{SongID: songID, RecordingMBID: recordingMBID, ReleaseMBID: releaseMBID})
}

// NewEnrichmentHandler builds the watermill handler that drains
// TopicEnrichmentRequested and runs the matching enrichment use case entry
// point. Every error is logged and swallowed: the router carries no retry
// middleware, so returning an error here would only suppress the ack
// without any redelivery benefit.
func NewEnrichmentHandler(uc EnrichmentUseCase, logger *logging.Logger) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		var data messaging.EnrichmentRequestedData
		if err := messaging.ParseCloudEventData(msg, &data); err != nil {
			logger.Error(msg.Context(), "failed to parse enrichment event", err)
			return nil
		}

		ctx := msg.Context()
		var err error
		if data.RecordingMBID != "" {
			err = uc.AddMetadataByMBID(ctx, data.SongID, data.RecordingMBID, data.ReleaseMBID)
		} else {
			err = uc.AutoAddMetadata(ctx, data.SongID, data.DurationMS)
		}
		if err != nil {
			logger.Error(ctx, "song enrichment failed", err, slog.Int64("song_id", data.SongID))
		}
		return nil
	}
}
