package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Session is the server-side record of an issued bearer token. Deleting it
// revokes the token before its JWT expiry.
type Session struct {
	TokenID string `json:"token_id"`
	UserID  int64  `json:"user_id"`
	Role    string `json:"role"`
}

// Store keeps active sessions in redis with a TTL matching token lifetime.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore returns redis-backed store.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) key(tokenID string) string {
	return fmt.Sprintf("auth:sessions:%s", tokenID)
}

// Save records an active session.
func (s *Store) Save(ctx context.Context, session Session) error {
	if session.TokenID == "" {
		return errors.New("sessions: empty token id")
	}
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(session.TokenID), data, s.ttl).Err()
}

// Exists reports whether the session is still active.
func (s *Store) Exists(ctx context.Context, tokenID string) (bool, error) {
	count, err := s.client.Exists(ctx, s.key(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete revokes a session.
func (s *Store) Delete(ctx context.Context, tokenID string) error {
	return s.client.Del(ctx, s.key(tokenID)).Err()
}
