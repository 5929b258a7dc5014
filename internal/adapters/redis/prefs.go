package redisad

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gangwongo/internal/adapters/observability"
	"gangwongo/internal/domain"
)

// Prefs stores per-user content id sets under prefs:<kind>:<user>.
// Every write refreshes the key TTL.
type Prefs struct {
	c   *redis.Client
	ttl time.Duration
}

func New(addr, pass string, db int, ttl time.Duration) *Prefs {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}), ttl)
}

func NewWithClient(c *redis.Client, ttl time.Duration) *Prefs {
	return &Prefs{c: c, ttl: ttl}
}

func key(user string, kind domain.PreferenceKind) string {
	return fmt.Sprintf("prefs:%s:%s", kind, user)
}

func (p *Prefs) Ping(ctx context.Context) error { return p.c.Ping(ctx).Err() }

func (p *Prefs) Close() error { return p.c.Close() }

func (p *Prefs) Members(ctx context.Context, user string, kind domain.PreferenceKind) ([]string, error) {
	ids, err := p.c.SMembers(ctx, key(user, kind)).Result()
	if err != nil {
		observability.ObserveStore("redis", "error")
		return nil, err
	}
	observability.ObserveStore("redis", "read")
	return ids, nil
}

func (p *Prefs) Add(ctx context.Context, user string, kind domain.PreferenceKind, contentID string) error {
	k := key(user, kind)
	pipe := p.c.TxPipeline()
	pipe.SAdd(ctx, k, contentID)
	if p.ttl > 0 {
		pipe.Expire(ctx, k, p.ttl)
	}
	return p.exec(ctx, pipe, "add")
}

func (p *Prefs) Remove(ctx context.Context, user string, kind domain.PreferenceKind, contentID string) error {
	k := key(user, kind)
	pipe := p.c.TxPipeline()
	pipe.SRem(ctx, k, contentID)
	if p.ttl > 0 {
		pipe.Expire(ctx, k, p.ttl)
	}
	return p.exec(ctx, pipe, "remove")
}

func (p *Prefs) exec(ctx context.Context, pipe redis.Pipeliner, event string) error {
	if _, err := pipe.Exec(ctx); err != nil {
		observability.ObserveStore("redis", "error")
		return err
	}
	observability.ObserveStore("redis", event)
	return nil
}

func (p *Prefs) Contains(ctx context.Context, user string, kind domain.PreferenceKind, contentID string) (bool, error) {
	in, err := p.c.SIsMember(ctx, key(user, kind), contentID).Result()
	if err != nil {
		observability.ObserveStore("redis", "error")
		return false, err
	}
	observability.ObserveStore("redis", "read")
	return in, nil
}

// toggleScript flips set membership and refreshes the TTL in one step.
// KEYS[1] = set, ARGV[1] = content id, ARGV[2] = ttl in ms (0 keeps none).
var toggleScript = redis.NewScript(`
local on = 0
if redis.call('SISMEMBER', KEYS[1], ARGV[1]) == 1 then
  redis.call('SREM', KEYS[1], ARGV[1])
else
  redis.call('SADD', KEYS[1], ARGV[1])
  on = 1
end
local ttl = tonumber(ARGV[2])
if ttl > 0 then
  redis.call('PEXPIRE', KEYS[1], ttl)
end
return on
`)

func (p *Prefs) Toggle(ctx context.Context, user string, kind domain.PreferenceKind, contentID string) (bool, error) {
	on, err := toggleScript.Run(ctx, p.c, []string{key(user, kind)}, contentID, p.ttl.Milliseconds()).Int()
	if err != nil {
		observability.ObserveStore("redis", "error")
		return false, err
	}
	if on == 1 {
		observability.ObserveStore("redis", "add")
	} else {
		observability.ObserveStore("redis", "remove")
	}
	return on == 1, nil
}
