package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const cooldownKeyPrefix = "fertyfit:cooldown:"

// CooldownSource is the durable cooldown record, usually the database.
type CooldownSource interface {
	LastFiredAt(ctx context.Context, userID uint, ruleID string) (time.Time, bool, error)
}

// CooldownStore keeps rule cooldowns in redis with a TTL equal to the cooldown
// period. Misses and redis errors fall through to the durable source, so a
// flushed or unreachable redis never re-arms a rule early.
type CooldownStore struct {
	client   *redis.Client
	fallback CooldownSource
	logger   *logrus.Logger
}

func NewCooldownStore(client *redis.Client, fallback CooldownSource, logger *logrus.Logger) *CooldownStore {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CooldownStore{
		client:   client,
		fallback: fallback,
		logger:   logger,
	}
}

func CooldownKey(userID uint, ruleID string) string {
	return fmt.Sprintf("%s%d:%s", cooldownKeyPrefix, userID, ruleID)
}

func (store *CooldownStore) LastFiredAt(ctx context.Context, userID uint, ruleID string) (time.Time, bool, error) {
	raw, err := store.client.Get(ctx, CooldownKey(userID, ruleID)).Result()
	switch {
	case err == nil:
		firedAt, parseErr := time.Parse(time.RFC3339Nano, raw)
		if parseErr == nil {
			return firedAt, true, nil
		}
		store.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"rule_id": ruleID,
		}).Warnf("Failed to parse cached cooldown %q: %v", raw, parseErr)
	case errors.Is(err, redis.Nil):
	default:
		store.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"rule_id": ruleID,
		}).Warnf("Failed to read cooldown from redis: %+v", err)
	}

	if store.fallback == nil {
		return time.Time{}, false, nil
	}
	return store.fallback.LastFiredAt(ctx, userID, ruleID)
}

func (store *CooldownStore) MarkFired(ctx context.Context, userID uint, ruleID string, firedAt time.Time, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return store.client.Set(ctx, CooldownKey(userID, ruleID), firedAt.UTC().Format(time.RFC3339Nano), ttl).Err()
}
