package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const ticketCacheTTL = 8 * time.Hour

// ErrMiss is returned when a key is absent rather than expired-with-error,
// letting callers distinguish "go fetch it upstream" from a real failure.
var ErrMiss = errors.New("cache: key not found")

// TicketCache implements the §4.2 Steam ticket verifier's cache layer: an
// opaque hex ticket maps to the 64-bit SteamID it was issued for.
type TicketCache struct {
	client *Client
}

// NewTicketCache creates a new ticket cache.
func NewTicketCache(client *Client) *TicketCache {
	return &TicketCache{client: client}
}

func ticketKey(ticket string) string {
	return "steamticket:" + ticket
}

// Get returns the cached SteamID for a ticket, or ErrMiss if absent.
func (c *TicketCache) Get(ctx context.Context, ticket string) (uint64, error) {
	val, err := c.client.rdb.Get(ctx, ticketKey(ticket)).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, ErrMiss
	}
	if err != nil {
		return 0, err
	}
	steamID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, err
	}
	return steamID, nil
}

// Set caches a verified SteamID under its ticket for ticketCacheTTL (8h),
// longer than a typical play session so repeated requests hit the cache.
func (c *TicketCache) Set(ctx context.Context, ticket string, steamID uint64) error {
	return c.client.rdb.Set(ctx, ticketKey(ticket), strconv.FormatUint(steamID, 10), ticketCacheTTL).Err()
}
