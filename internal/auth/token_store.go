package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	jtiKeyPrefix     = "jti:"
	userJTIKeyPrefix = "user_jtis:"

	// Retries when the user's set changes during RevokeAll
	maxRevokeAllAttempts = 5
)

// TokenStoreInterface tracks which token identifiers are still valid.
type TokenStoreInterface interface {
	Store(ctx context.Context, jti string, userID uint64, ttl time.Duration) error
	IsValid(ctx context.Context, jti string) (bool, error)
	Revoke(ctx context.Context, jti string, userID uint64) error
	RevokeAll(ctx context.Context, userID uint64) (int, error)
	Ping(ctx context.Context) error
}

// TokenStore keeps jti records in Redis. Key jti:{jti} holds the owner's id
// and expires with the token; set user_jtis:{user} lists the user's jti keys.
// Unlike a cache, every Redis error is returned so callers can fail closed.
type TokenStore struct {
	client redis.UniversalClient
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(client redis.UniversalClient) *TokenStore {
	return &TokenStore{client: client}
}

func jtiKey(jti string) string {
	return jtiKeyPrefix + jti
}

func userJTIsKey(userID uint64) string {
	return userJTIKeyPrefix + strconv.FormatUint(userID, 10)
}

// Store records jti as valid for ttl and adds it to the user's set. The set
// TTL is only ever extended so it outlives every member.
func (s *TokenStore) Store(ctx context.Context, jti string, userID uint64, ttl time.Duration) error {
	setKey := userJTIsKey(userID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, jtiKey(jti), strconv.FormatUint(userID, 10), ttl)
		pipe.SAdd(ctx, setKey, jtiKey(jti))
		return nil
	})
	if err != nil {
		return fmt.Errorf("store jti: %w", err)
	}

	current, err := s.client.TTL(ctx, setKey).Result()
	if err != nil {
		return fmt.Errorf("read jti set ttl: %w", err)
	}
	if current < ttl {
		if err := s.client.Expire(ctx, setKey, ttl).Err(); err != nil {
			return fmt.Errorf("extend jti set ttl: %w", err)
		}
	}
	return nil
}

// IsValid reports whether jti is still recorded.
func (s *TokenStore) IsValid(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check jti: %w", err)
	}
	return n == 1, nil
}

// Revoke removes one jti. Revoking an unknown jti is a no-op.
func (s *TokenStore) Revoke(ctx context.Context, jti string, userID uint64) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, jtiKey(jti))
		pipe.SRem(ctx, userJTIsKey(userID), jtiKey(jti))
		return nil
	})
	if err != nil {
		return fmt.Errorf("revoke jti: %w", err)
	}
	return nil
}

// RevokeAll deletes every jti of the user and the set itself, returning how
// many jti keys were listed. The set is watched so a token stored between the
// read and the delete restarts the transaction instead of being orphaned.
func (s *TokenStore) RevokeAll(ctx context.Context, userID uint64) (int, error) {
	setKey := userJTIsKey(userID)

	for attempt := 1; attempt <= maxRevokeAllAttempts; attempt++ {
		var revoked int
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			keys, err := tx.SMembers(ctx, setKey).Result()
			if err != nil {
				return fmt.Errorf("list user jtis: %w", err)
			}
			revoked = len(keys)
			if revoked == 0 {
				return nil
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, keys...)
				pipe.Del(ctx, setKey)
				return nil
			})
			return err
		}, setKey)

		if err == nil {
			return revoked, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return 0, fmt.Errorf("revoke user jtis: %w", err)
		}
	}
	return 0, fmt.Errorf("revoke user jtis: %w", redis.TxFailedErr)
}

// Ping checks that the store is reachable.
func (s *TokenStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
