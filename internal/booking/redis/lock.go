package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const lockKeyPrefix = "event_booking_lock:"

// Lock is the distributed EventLocker: one SetNX key per event with a TTL
// so a crashed holder cannot wedge an event forever. The value records the
// owning booking attempt; only the owner may release.
type Lock struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewLock(client *redis.Client, ttl time.Duration) *Lock {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Lock{Client: client, TTL: ttl}
}

func (l *Lock) Lock(ctx context.Context, eventID, ownerID string) (bool, error) {
	key := lockKeyPrefix + eventID
	return l.Client.SetNX(ctx, key, ownerID, l.TTL).Result()
}

func (l *Lock) Unlock(ctx context.Context, eventID, ownerID string) error {
	key := lockKeyPrefix + eventID

	val, err := l.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // expired or already released
	}
	if err != nil {
		return err
	}

	if val == ownerID {
		_, err = l.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}
