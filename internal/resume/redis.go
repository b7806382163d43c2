package resume

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the ticket in Redis for clients that share a host cache. No expiry is
// set; abandoning a sign-in leaves the ticket until the next Save or Take.
type RedisStore struct {
	rdb redis.Cmdable
	key string
}

func NewRedisStore(rdb redis.Cmdable, tab string) *RedisStore {
	return &RedisStore{rdb: rdb, key: Key(tab)}
}

func (s *RedisStore) Save(ctx context.Context, t Ticket) error {
	raw, err := encode(t)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key, raw, 0).Err()
}

func (s *RedisStore) Load(ctx context.Context) (Ticket, bool, error) {
	raw, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Ticket{}, false, nil
	}
	if err != nil {
		return Ticket{}, false, err
	}
	t, err := decode(raw)
	if err != nil {
		return Ticket{}, false, err
	}
	return t, true, nil
}

// Take uses GETDEL so the read and the delete are one server-side step.
func (s *RedisStore) Take(ctx context.Context) (Ticket, bool, error) {
	raw, err := s.rdb.GetDel(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Ticket{}, false, nil
	}
	if err != nil {
		return Ticket{}, false, err
	}
	t, err := decode(raw)
	if err != nil {
		return Ticket{}, false, err
	}
	return t, true, nil
}

func (s *RedisStore) Delete(ctx context.Context) error {
	return s.rdb.Del(ctx, s.key).Err()
}
