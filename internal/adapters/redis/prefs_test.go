package redisad_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	dto "github.com/prometheus/client_model/go"
	"github.com/redis/go-redis/v9"

	"gangwongo/internal/adapters/observability"
	redisad "gangwongo/internal/adapters/redis"
	"gangwongo/internal/domain"
)

func newPrefs(t *testing.T, ttl time.Duration) (*redisad.Prefs, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	p := redisad.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), ttl)
	t.Cleanup(func() { _ = p.Close() })
	return p, mr
}

func TestPrefs_AddContainsRemove(t *testing.T) {
	p, mr := newPrefs(t, time.Hour)
	ctx := context.Background()

	if err := p.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	for _, id := range []string{"126508", "2733967", "126508"} {
		if err := p.Add(ctx, "u1", domain.Favorites, id); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	ids, err := p.Members(ctx, "u1", domain.Favorites)
	if err != nil || len(ids) != 2 {
		t.Fatalf("members: %v %v", ids, err)
	}
	if !mr.Exists("prefs:favorites:u1") {
		t.Fatalf("unexpected key layout: %v", mr.Keys())
	}
	if ttl := mr.TTL("prefs:favorites:u1"); ttl != time.Hour {
		t.Fatalf("ttl not applied: %v", ttl)
	}

	ok, err := p.Contains(ctx, "u1", domain.Favorites, "2733967")
	if err != nil || !ok {
		t.Fatalf("contains: %v %v", ok, err)
	}
	// kinds are separate sets
	if ok, _ := p.Contains(ctx, "u1", domain.Visited, "2733967"); ok {
		t.Fatalf("visited should be empty")
	}

	if err := p.Remove(ctx, "u1", domain.Favorites, "2733967"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if ok, _ := p.Contains(ctx, "u1", domain.Favorites, "2733967"); ok {
		t.Fatalf("still a member after remove")
	}
}

func TestPrefs_WriteRefreshesTTL(t *testing.T) {
	p, mr := newPrefs(t, 7*24*time.Hour)
	ctx := context.Background()

	_ = p.Add(ctx, "u2", domain.Visited, "1")
	mr.FastForward(6 * 24 * time.Hour)
	_ = p.Add(ctx, "u2", domain.Visited, "2")
	if ttl := mr.TTL("prefs:visited:u2"); ttl != 7*24*time.Hour {
		t.Fatalf("ttl should be refreshed, got %v", ttl)
	}

	mr.FastForward(8 * 24 * time.Hour)
	ids, err := p.Members(ctx, "u2", domain.Visited)
	if err != nil || len(ids) != 0 {
		t.Fatalf("expected expiry, got %v %v", ids, err)
	}
}

func TestPrefs_StoreDown(t *testing.T) {
	p, mr := newPrefs(t, 0)
	mr.Close()
	if _, err := p.Members(context.Background(), "u", domain.Favorites); err == nil {
		t.Fatalf("expected error when redis is unavailable")
	}
}

func TestPrefs_ConcurrentTogglesAreAtomic(t *testing.T) {
	p, mr := newPrefs(t, time.Hour)
	ctx := context.Background()

	const n = 50
	var (
		wg  sync.WaitGroup
		ons atomic.Int32
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			on, err := p.Toggle(ctx, "u3", domain.Favorites, "126508")
			if err != nil {
				t.Errorf("toggle: %v", err)
				return
			}
			if on {
				ons.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := ons.Load(); got != n/2 {
		t.Fatalf("each add must pair with a remove: %d of %d toggles added", got, n)
	}
	if ok, _ := p.Contains(ctx, "u3", domain.Favorites, "126508"); ok {
		t.Fatalf("an even number of toggles must leave the id out")
	}

	on, err := p.Toggle(ctx, "u3", domain.Favorites, "126508")
	if err != nil || !on {
		t.Fatalf("toggle on: %v %v", on, err)
	}
	if ttl := mr.TTL("prefs:favorites:u3"); ttl != time.Hour {
		t.Fatalf("toggle should refresh ttl, got %v", ttl)
	}
}

func storeEvents(t *testing.T, event string) float64 {
	t.Helper()
	var m dto.Metric
	if err := observability.StoreEvents.WithLabelValues("redis", event).Write(&m); err != nil {
		t.Fatal(err)
	}
	return m.GetCounter().GetValue()
}

func TestPrefs_ContainsIsObserved(t *testing.T) {
	p, mr := newPrefs(t, 0)
	ctx := context.Background()

	reads := storeEvents(t, "read")
	if _, err := p.Contains(ctx, "u4", domain.Visited, "1"); err != nil {
		t.Fatal(err)
	}
	if got := storeEvents(t, "read"); got != reads+1 {
		t.Fatalf("read events: got %v want %v", got, reads+1)
	}

	errs := storeEvents(t, "error")
	mr.Close()
	if _, err := p.Contains(ctx, "u4", domain.Visited, "1"); err == nil {
		t.Fatalf("expected error when redis is down")
	}
	if got := storeEvents(t, "error"); got != errs+1 {
		t.Fatalf("error events: got %v want %v", got, errs+1)
	}
}
