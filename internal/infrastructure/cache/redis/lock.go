package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

const submitLockTTL = 5 * time.Second

// SubmitLock serialises score-submission handling per (player, song, league)
// so the non-atomic (a)->(b)->(c) skill-point sequence in §4.5 cannot
// interleave across two concurrent submissions for the same key.
type SubmitLock struct {
	client *Client
}

// NewSubmitLock creates a new submit lock.
func NewSubmitLock(client *Client) *SubmitLock {
	return &SubmitLock{client: client}
}

func submitLockKey(playerID, songID int64, league int16) string {
	return fmt.Sprintf("submitlock:%d:%d:%d", playerID, songID, league)
}

// Acquire attempts to take the lock, returning a release func and whether it
// was acquired. Holding the lock longer than submitLockTTL loses it; callers
// must complete the (a)->(b)->(c) sequence well inside that budget.
func (l *SubmitLock) Acquire(ctx context.Context, playerID, songID int64, league int16) (release func(context.Context), ok bool, err error) {
	key := submitLockKey(playerID, songID, league)
	tokenBytes := make([]byte, 16)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, false, err
	}
	token := hex.EncodeToString(tokenBytes)

	acquired, err := l.client.rdb.SetNX(ctx, key, token, submitLockTTL).Result()
	if err != nil {
		return nil, false, err
	}
	if !acquired {
		return nil, false, nil
	}

	release = func(releaseCtx context.Context) {
		// best-effort: a stale token left behind just expires via TTL.
		val, err := l.client.rdb.Get(releaseCtx, key).Result()
		if err == nil && val == token {
			_ = l.client.rdb.Del(releaseCtx, key).Err()
		}
	}
	return release, true, nil
}
