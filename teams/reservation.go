package teams

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// ErrNameReserved is returned when another invocation holds the name.
var ErrNameReserved = errors.New("team name is reserved by another request")

// Reserver hands out short-lived exclusive claims on team names so two
// concurrent requests for one name cannot both reach provisioning.
type Reserver interface {
	// Reserve claims name, returning ErrNameReserved when it is held. The
	// returned release func must be called once the invocation ends.
	Reserve(ctx context.Context, name string) (release func(), err error)
}

// MemoryReserver keeps reservations in process. It is enough for a single
// bot process.
type MemoryReserver struct {
	mu    sync.Mutex
	names map[string]struct{}
}

// NewMemoryReserver returns an empty MemoryReserver.
func NewMemoryReserver() *MemoryReserver {
	return &MemoryReserver{names: make(map[string]struct{})}
}

// Reserve implements Reserver.
func (m *MemoryReserver) Reserve(ctx context.Context, name string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, held := m.names[name]; held {
		return nil, ErrNameReserved
	}
	m.names[name] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.names, name)
			m.mu.Unlock()
		})
	}, nil
}

// RedisReserver stores reservations as expiring keys so several bot
// processes sharing a guild see each other's claims. The TTL bounds how
// long a crashed process can hold a name.
type RedisReserver struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisReserver returns a RedisReserver using keys "<prefix><name>".
func NewRedisReserver(client *redis.Client, prefix string, ttl time.Duration) *RedisReserver {
	return &RedisReserver{client: client, prefix: prefix, ttl: ttl}
}

// Reserve implements Reserver.
func (r *RedisReserver) Reserve(ctx context.Context, name string) (func(), error) {
	key := r.prefix + name

	ok, err := r.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), r.ttl).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to reserve %q", key)
	}
	if !ok {
		return nil, ErrNameReserved
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// context.Background: release must run even after ctx is done
			_ = r.client.Del(context.Background(), key).Err()
		})
	}, nil
}

// Close closes the underlying client.
func (r *RedisReserver) Close() error {
	return r.client.Close()
}
