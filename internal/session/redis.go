package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	userSetPrefix    = "user_sessions:"
)

// RedisStore keeps session records in Redis. Expiry is delegated to key
// TTLs; a per-user set supports invalidate-all on account delete and
// password change.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func sessionKey(jti string) string { return sessionKeyPrefix + jti }
func userSetKey(userID string) string { return userSetPrefix + userID }

func (s *RedisStore) Save(ctx context.Context, rec Record) error {
	ttl := time.Until(rec.ExpiresAt)

	if ttl <= 0 {
		return errors.New("session already expired")
	}

	pipe := s.rdb.TxPipeline()

	pipe.HSet(ctx, sessionKey(rec.JTI), map[string]interface{}{
		"user_id":    rec.UserID,
		"token_hash": rec.TokenHash,
		"expires_at": rec.ExpiresAt.UTC().Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, sessionKey(rec.JTI), ttl)

	pipe.SAdd(ctx, userSetKey(rec.UserID), rec.JTI)
	// keep the set at least as long as its longest-lived member
	pipe.Expire(ctx, userSetKey(rec.UserID), ttl)

	_, err := pipe.Exec(ctx)

	return err
}

func (s *RedisStore) Get(ctx context.Context, jti string) (Record, error) {
	fields, err := s.rdb.HGetAll(ctx, sessionKey(jti)).Result()

	if err != nil {
		return Record{}, err
	}

	// HGETALL on a missing key returns an empty map, not an error
	if len(fields) == 0 {
		return Record{}, ErrNoSession
	}

	expiresAt, err := time.Parse(time.RFC3339Nano, fields["expires_at"])

	if err != nil {
		return Record{}, ErrNoSession
	}

	return Record{
		JTI:       jti,
		UserID:    fields["user_id"],
		TokenHash: fields["token_hash"],
		ExpiresAt: expiresAt,
	}, nil
}

func (s *RedisStore) Delete(ctx context.Context, jti string) error {
	rec, err := s.Get(ctx, jti)

	if errors.Is(err, ErrNoSession) {
		return nil
	}

	if err != nil {
		return err
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, sessionKey(jti))
	pipe.SRem(ctx, userSetKey(rec.UserID), jti)
	_, err = pipe.Exec(ctx)

	return err
}

func (s *RedisStore) DeleteAllForUser(ctx context.Context, userID, keepJTI string) error {
	jtis, err := s.rdb.SMembers(ctx, userSetKey(userID)).Result()

	if err != nil {
		return err
	}

	pipe := s.rdb.TxPipeline()

	for _, jti := range jtis {
		if jti == keepJTI {
			continue
		}
		pipe.Del(ctx, sessionKey(jti))
		pipe.SRem(ctx, userSetKey(userID), jti)
	}

	if keepJTI == "" {
		pipe.Del(ctx, userSetKey(userID))
	}

	_, err = pipe.Exec(ctx)

	return err
}
