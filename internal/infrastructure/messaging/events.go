package messaging

// TopicEnrichmentRequested is the GoChannel topic the score-submission and
// song-resolver usecases publish to in order to fire-and-forget §4.4
// external metadata enrichment.
const TopicEnrichmentRequested = "wavebreaker.song.enrichment_requested.v1"

// EnrichmentRequestedData is the payload for TopicEnrichmentRequested.
// A non-empty RecordingMBID selects add_metadata_mbid; otherwise the
// handler runs auto_add_metadata (§4.4).
type EnrichmentRequestedData struct {
	// SongID is the canonical song row to attach metadata to.
	SongID int64 `json:"song_id"`
	// DurationMS is the ride's song length in milliseconds, used as the
	// dur: search window center for auto_add_metadata.
	DurationMS int32 `json:"duration_ms"`
	// RecordingMBID selects add_metadata_mbid when present.
	RecordingMBID string `json:"recording_mbid,omitempty"`
	// ReleaseMBID optionally pins the release to fetch covers from.
	ReleaseMBID string `json:"release_mbid,omitempty"`
}
