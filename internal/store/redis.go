package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/saransh000/hackathonpractice/internal/models"
)

const (
	dmTTL           = 7 * 24 * time.Hour
	loginAttemptTTL = 15 * time.Minute
)

// RedisStore handles Redis operations for direct messages and
// login attempt limiting.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// dmInboxKey returns the key for a user's direct message inbox.
func dmInboxKey(userID string) string {
	return fmt.Sprintf("dm:inbox:%s", userID)
}

// loginAttemptsKey returns the key for an email's failed login counter.
func loginAttemptsKey(email string) string {
	return fmt.Sprintf("login:attempts:%s", email)
}

// StoreDM stores a direct message in the recipient's inbox.
func (s *RedisStore) StoreDM(ctx context.Context, dm *models.DirectMessage) error {
	if dm.ID == "" {
		dm.ID = ulid.Make().String()
	}
	if dm.Timestamp == 0 {
		dm.Timestamp = time.Now().UnixMilli()
	}

	key := dmInboxKey(dm.ToID)
	dmJSON, err := json.Marshal(dm)
	if err != nil {
		return err
	}

	err = s.client.ZAdd(ctx, key, redis.Z{
		Score:  float64(dm.Timestamp),
		Member: string(dmJSON),
	}).Err()
	if err != nil {
		return err
	}

	// Inboxes expire after 7 days of inactivity
	s.client.Expire(ctx, key, dmTTL)

	return nil
}

// GetDMsForUser retrieves direct messages for a user, newest first.
func (s *RedisStore) GetDMsForUser(ctx context.Context, userID string, limit int) ([]models.DirectMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	key := dmInboxKey(userID)
	results, err := s.client.ZRevRange(ctx, key, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}

	dms := make([]models.DirectMessage, 0, len(results))
	for _, data := range results {
		var dm models.DirectMessage
		if err := json.Unmarshal([]byte(data), &dm); err != nil {
			continue
		}
		dms = append(dms, dm)
	}

	return dms, nil
}

// LoginAttempts returns the number of recent failed logins for an email.
func (s *RedisStore) LoginAttempts(ctx context.Context, email string) (int64, error) {
	count, err := s.client.Get(ctx, loginAttemptsKey(email)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return count, err
}

// RecordFailedLogin increments the failed login counter for an email.
func (s *RedisStore) RecordFailedLogin(ctx context.Context, email string) error {
	key := loginAttemptsKey(email)
	pipe := s.client.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, loginAttemptTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// ClearLoginAttempts resets the failed login counter after a success.
func (s *RedisStore) ClearLoginAttempts(ctx context.Context, email string) error {
	return s.client.Del(ctx, loginAttemptsKey(email)).Err()
}
