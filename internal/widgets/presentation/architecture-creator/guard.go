package architecturecreator

import (
	"context"
	"sync"
	"time"

	"solution-creator/internal/common/database"

	"github.com/google/uuid"
)

const guardKeyPrefix = "widget:sac:inflight:"

// Guard grants at most one in-flight submission per key. release must be
// called exactly once after a successful Acquire.
type Guard interface {
	Acquire(ctx context.Context, key string) (release func(), ok bool, err error)
}

type localGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocalGuard is an in-process guard.
func NewLocalGuard() Guard {
	return &localGuard{held: make(map[string]struct{})}
}

func (g *localGuard) Acquire(_ context.Context, key string) (func(), bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.held[key]; busy {
		return nil, false, nil
	}
	g.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, key)
			g.mu.Unlock()
		})
	}, true, nil
}

// RedisLocker is the subset of the Redis client the guard needs.
type RedisLocker interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	DelIfEquals(ctx context.Context, key, token string) (bool, error)
}

var _ RedisLocker = (*database.RedisClient)(nil)

type redisGuard struct {
	client RedisLocker
	ttl    time.Duration
}

// NewRedisGuard shares the in-flight lock between server replicas. ttl bounds
// how long a crashed holder can block the session.
func NewRedisGuard(client RedisLocker, ttl time.Duration) Guard {
	return &redisGuard{client: client, ttl: ttl}
}

func (g *redisGuard) Acquire(ctx context.Context, key string) (func(), bool, error) {
	token := uuid.NewString()
	redisKey := guardKeyPrefix + key

	ok, err := g.client.SetNX(ctx, redisKey, token, g.ttl)
	if err != nil || !ok {
		return nil, false, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// the submit context may already be done
			relCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_, _ = g.client.DelIfEquals(relCtx, redisKey, token)
		})
	}, true, nil
}
