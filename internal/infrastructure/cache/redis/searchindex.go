package redis

import (
	"context"
	"errors"
	"strconv"

	goredis "github.com/redis/go-redis/v9"
)

const lastMeilisearchSyncKey = "last_meilisearch_sync"

// SearchIndexSync holds the §6.4 `last_meilisearch_sync` marker: the unix
// second of the last time the management dispatcher (component J) told the
// out-of-scope search-index job to run. Wavebreaker only records the
// trigger; the job itself reads this key on its own schedule.
type SearchIndexSync struct {
	client *Client
}

// NewSearchIndexSync creates a new search-index sync marker.
func NewSearchIndexSync(client *Client) *SearchIndexSync {
	return &SearchIndexSync{client: client}
}

// Trigger stamps the marker with the given unix-second timestamp, no TTL
// (§6.4 lists it alongside the leaderboard as a durable key).
func (s *SearchIndexSync) Trigger(ctx context.Context, unixSeconds int64) error {
	return s.client.rdb.Set(ctx, lastMeilisearchSyncKey, strconv.FormatInt(unixSeconds, 10), 0).Err()
}

// Last returns the last triggered unix-second timestamp, or zero with
// ok=false if the marker has never been set.
func (s *SearchIndexSync) Last(ctx context.Context) (int64, bool, error) {
	val, err := s.client.rdb.Get(ctx, lastMeilisearchSyncKey).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	ts, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return ts, true, nil
}
