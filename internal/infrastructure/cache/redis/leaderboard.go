package redis

import (
	"context"
	"strconv"

	goredis "github.com/redis/go-redis/v9"
)

const leaderboardKey = "leaderboard"

// Leaderboard is the §4.6 single sorted-set cache: members are player ids,
// scores are the player's total skill-point sum.
type Leaderboard struct {
	client *Client
}

// NewLeaderboard creates a new leaderboard cache.
func NewLeaderboard(client *Client) *Leaderboard {
	return &Leaderboard{client: client}
}

// AddOrReset inserts playerID with score 0 if it is not already a member.
// Called on player create/update; never clobbers an existing total.
func (l *Leaderboard) AddOrReset(ctx context.Context, playerID int64) error {
	member := strconv.FormatInt(playerID, 10)
	_, err := l.client.rdb.ZScore(ctx, leaderboardKey, member).Result()
	if err == nil {
		return nil
	}
	if err != goredis.Nil {
		return err
	}
	return l.client.rdb.ZAdd(ctx, leaderboardKey, goredis.Z{Score: 0, Member: member}).Err()
}

// Incr atomically adds delta to a player's entry.
func (l *Leaderboard) Incr(ctx context.Context, playerID int64, delta float64) error {
	member := strconv.FormatInt(playerID, 10)
	return l.client.rdb.ZIncrBy(ctx, leaderboardKey, delta, member).Err()
}

// Rank returns the player's 1-based descending rank, or (0, false) if absent.
func (l *Leaderboard) Rank(ctx context.Context, playerID int64) (int64, bool, error) {
	member := strconv.FormatInt(playerID, 10)
	rank, err := l.client.rdb.ZRevRank(ctx, leaderboardKey, member).Result()
	if err == goredis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return rank + 1, true, nil
}

// Entry pairs a player id with its skill-point total.
type Entry struct {
	PlayerID    int64
	SkillPoints float64
}

// Page returns a descending page of (player_id, skill_points) pairs.
func (l *Leaderboard) Page(ctx context.Context, offset, limit int) ([]Entry, error) {
	start := int64(offset)
	stop := int64(offset+limit) - 1
	zs, err := l.client.rdb.ZRevRangeWithScores(ctx, leaderboardKey, start, stop).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(zs))
	for _, z := range zs {
		id, err := strconv.ParseInt(z.Member.(string), 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{PlayerID: id, SkillPoints: z.Score})
	}
	return entries, nil
}

// TotalPlayers returns the leaderboard's cardinality.
func (l *Leaderboard) TotalPlayers(ctx context.Context) (int64, error) {
	return l.client.rdb.ZCard(ctx, leaderboardKey).Result()
}

// Recompute overwrites a player's entry with an externally computed total.
// Used by the admin recomputation command and crash recovery; idempotent.
func (l *Leaderboard) Recompute(ctx context.Context, playerID int64, total float64) error {
	member := strconv.FormatInt(playerID, 10)
	return l.client.rdb.ZAdd(ctx, leaderboardKey, goredis.Z{Score: total, Member: member}).Err()
}
