package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinema-booking-wizard/internal/model"
)

const (
	keyPrefix  = "wizard:draft:"
	lockPrefix = "wizard:lock:"
)

// releaseScript deletes the lock only while it still carries the caller's
// token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore keeps drafts as JSON with a sliding TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, id string) (model.BookingDraft, error) {
	var d model.BookingDraft
	raw, err := s.rdb.GetEx(ctx, keyPrefix+id, s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return d, ErrNotFound
	}
	if err != nil {
		return d, fmt.Errorf("get draft %s: %w", id, err)
	}
	if err := json.Unmarshal(raw, &d); err != nil {
		return d, fmt.Errorf("decode draft %s: %w", id, err)
	}
	return d, nil
}

func (s *RedisStore) Save(ctx context.Context, d model.BookingDraft) error {
	if d.SessionID == "" {
		return errors.New("draft has no session id")
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft %s: %w", d.SessionID, err)
	}
	if err := s.rdb.Set(ctx, keyPrefix+d.SessionID, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("put draft %s: %w", d.SessionID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete draft %s: %w", id, err)
	}
	return nil
}

// Lock takes the session lock with SET NX.  The key expires after LockTTL
// so a crashed holder cannot wedge the session.
func (s *RedisStore) Lock(ctx context.Context, id string) (func(), error) {
	key := lockPrefix + id
	token := uuid.NewString()
	ok, err := s.rdb.SetNX(ctx, key, token, LockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("lock draft %s: %w", id, err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() {
		_ = releaseScript.Run(context.Background(), s.rdb, []string{key}, token).Err()
	}, nil
}
