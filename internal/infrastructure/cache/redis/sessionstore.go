package redis

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	sessionTTL      = 21 * 24 * time.Hour
	sessionTokenLen = 24
)

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

type sessionRecord struct {
	PlayerID int64 `json:"player_id"`
}

// SessionStore implements the §4.8 bearer-token session layer backing the
// JSON admin API.
type SessionStore struct {
	client *Client
}

// NewSessionStore creates a new session store.
func NewSessionStore(client *Client) *SessionStore {
	return &SessionStore{client: client}
}

func sessionKey(token string) string {
	return "session:" + token
}

// Create generates a cryptographically random 24-character token and stores
// it against playerID with a 21-day TTL.
func (s *SessionStore) Create(ctx context.Context, playerID int64) (string, error) {
	token, err := generateToken(sessionTokenLen)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(sessionRecord{PlayerID: playerID})
	if err != nil {
		return "", err
	}

	if err := s.client.rdb.Set(ctx, sessionKey(token), payload, sessionTTL).Err(); err != nil {
		return "", err
	}

	return token, nil
}

// Verify reads the session, refreshes its TTL on hit, and returns the
// owning player id. Returns ErrMiss if the token is absent or expired.
func (s *SessionStore) Verify(ctx context.Context, token string) (int64, error) {
	key := sessionKey(token)
	val, err := s.client.rdb.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, ErrMiss
	}
	if err != nil {
		return 0, err
	}

	var rec sessionRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return 0, err
	}

	if err := s.client.rdb.Expire(ctx, key, sessionTTL).Err(); err != nil {
		return 0, err
	}

	return rec.PlayerID, nil
}

// Delete invalidates a single token.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	return s.client.rdb.Del(ctx, sessionKey(token)).Err()
}

// DeleteAllForPlayer scans every session and removes those belonging to
// playerID, used by the admin ban flow to force re-authentication.
func (s *SessionStore) DeleteAllForPlayer(ctx context.Context, playerID int64) error {
	iter := s.client.rdb.Scan(ctx, 0, "session:*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		val, err := s.client.rdb.Get(ctx, key).Result()
		if err != nil {
			continue
		}
		var rec sessionRecord
		if err := json.Unmarshal([]byte(val), &rec); err != nil {
			continue
		}
		if rec.PlayerID == playerID {
			if err := s.client.rdb.Del(ctx, key).Err(); err != nil {
				return err
			}
		}
	}
	return iter.Err()
}

func generateToken(n int) (string, error) {
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(tokenAlphabet))))
		if err != nil {
			return "", err
		}
		b[i] = tokenAlphabet[idx.Int64()]
	}
	return string(b), nil
}
