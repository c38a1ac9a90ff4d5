// Package redis stores session-scoped recent searches. These back the public
// "recent searches" endpoint for anonymous visitors identified by a session
// ID; authenticated history lives in the engine.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	recentKeyPrefix = "search:recent:"
	recentMaxTerms  = 10
	recentTTL       = 30 * 24 * time.Hour
)

// RecentSearchStore keeps the last terms searched in a session, newest first,
// deduplicated, capped at 10.
type RecentSearchStore struct {
	client *redis.Client
}

// NewRecentSearchStore creates a recent search store.
func NewRecentSearchStore(client *redis.Client) *RecentSearchStore {
	return &RecentSearchStore{client: client}
}

func recentKey(sessionID string) string {
	return recentKeyPrefix + sessionID
}

// Add records a search term for the session. Re-searching a term moves it to
// the front instead of duplicating it.
func (s *RecentSearchStore) Add(ctx context.Context, sessionID, term string) error {
	key := recentKey(sessionID)

	pipe := s.client.TxPipeline()
	pipe.LRem(ctx, key, 0, term)
	pipe.LPush(ctx, key, term)
	pipe.LTrim(ctx, key, 0, recentMaxTerms-1)
	pipe.Expire(ctx, key, recentTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record recent search: %w", err)
	}
	return nil
}

// List returns the session's recent terms, newest first.
func (s *RecentSearchStore) List(ctx context.Context, sessionID string) ([]string, error) {
	terms, err := s.client.LRange(ctx, recentKey(sessionID), 0, recentMaxTerms-1).Result()
	if err != nil {
		return nil, fmt.Errorf("list recent searches: %w", err)
	}
	return terms, nil
}

// Clear removes the session's recent terms.
func (s *RecentSearchStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, recentKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear recent searches: %w", err)
	}
	return nil
}
