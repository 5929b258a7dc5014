package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gangwongo/internal/app"
	"gangwongo/internal/domain"
)

type memStore struct {
	mu   sync.Mutex
	sets map[string]map[string]bool
	err  error
}

func newMemStore() *memStore { return &memStore{sets: map[string]map[string]bool{}} }

func (m *memStore) k(user string, kind domain.PreferenceKind) string { return string(kind) + ":" + user }

func (m *memStore) Members(ctx context.Context, user string, kind domain.PreferenceKind) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []string
	for id := range m.sets[m.k(user, kind)] {
		out = append(out, id)
	}
	return out, nil
}

func (m *memStore) Add(ctx context.Context, user string, kind domain.PreferenceKind, id string) error {
	if m.err != nil {
		return m.err
	}
	k := m.k(user, kind)
	if m.sets[k] == nil {
		m.sets[k] = map[string]bool{}
	}
	m.sets[k][id] = true
	return nil
}

func (m *memStore) Remove(ctx context.Context, user string, kind domain.PreferenceKind, id string) error {
	if m.err != nil {
		return m.err
	}
	delete(m.sets[m.k(user, kind)], id)
	return nil
}

func (m *memStore) Toggle(ctx context.Context, user string, kind domain.PreferenceKind, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	k := m.k(user, kind)
	if m.sets[k][id] {
		delete(m.sets[k], id)
		return false, nil
	}
	if m.sets[k] == nil {
		m.sets[k] = map[string]bool{}
	}
	m.sets[k][id] = true
	return true, nil
}

func (m *memStore) Contains(ctx context.Context, user string, kind domain.PreferenceKind, id string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.sets[m.k(user, kind)][id], nil
}

func TestPreferences_ListSortedAndNonNil(t *testing.T) {
	svc := app.NewPreferenceService(newMemStore())
	ctx := context.Background()

	ids, err := svc.List(ctx, "u1", domain.Favorites)
	if err != nil || ids == nil || len(ids) != 0 {
		t.Fatalf("expected empty list, got %#v %v", ids, err)
	}

	for _, id := range []string{"300", " 100 ", "200"} {
		if err := svc.Add(ctx, "u1", domain.Favorites, id); err != nil {
			t.Fatalf("add %q: %v", id, err)
		}
	}
	ids, _ = svc.List(ctx, "u1", domain.Favorites)
	if len(ids) != 3 || ids[0] != "100" || ids[2] != "300" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestPreferences_Toggle(t *testing.T) {
	svc := app.NewPreferenceService(newMemStore())
	ctx := context.Background()

	on, err := svc.Toggle(ctx, "u1", domain.Visited, "42")
	if err != nil || !on {
		t.Fatalf("first toggle: %v %v", on, err)
	}
	if ok, _ := svc.Contains(ctx, "u1", domain.Visited, "42"); !ok {
		t.Fatalf("expected membership")
	}
	on, err = svc.Toggle(ctx, "u1", domain.Visited, "42")
	if err != nil || on {
		t.Fatalf("second toggle: %v %v", on, err)
	}
	if ok, _ := svc.Contains(ctx, "u1", domain.Visited, "42"); ok {
		t.Fatalf("expected removal")
	}
}

func TestPreferences_Validation(t *testing.T) {
	svc := app.NewPreferenceService(newMemStore())
	ctx := context.Background()

	cases := map[string]error{
		"empty user": svc.Add(ctx, " ", domain.Favorites, "1"),
		"bad kind":   svc.Add(ctx, "u", domain.PreferenceKind("wishlist"), "1"),
		"empty id":   svc.Remove(ctx, "u", domain.Visited, ""),
	}
	for name, err := range cases {
		if !errors.Is(err, domain.ErrInvalidPreference) {
			t.Fatalf("%s: expected ErrInvalidPreference, got %v", name, err)
		}
	}
}

func TestPreferences_StoreErrorPropagates(t *testing.T) {
	st := newMemStore()
	st.err = errors.New("connection refused")
	svc := app.NewPreferenceService(st)
	if _, err := svc.List(context.Background(), "u", domain.Favorites); err == nil {
		t.Fatalf("expected store error")
	}
}
