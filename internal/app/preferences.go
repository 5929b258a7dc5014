package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gangwongo/internal/domain"
)

// PreferenceService keeps per-user favorites and visited places.
type PreferenceService struct {
	store domain.PreferenceStore
}

func NewPreferenceService(s domain.PreferenceStore) *PreferenceService {
	return &PreferenceService{store: s}
}

func validate(user string, kind domain.PreferenceKind, contentID *string) (string, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return "", fmt.Errorf("%w: empty user id", domain.ErrInvalidPreference)
	}
	if !kind.Valid() {
		return "", fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidPreference, kind)
	}
	if contentID != nil {
		*contentID = strings.TrimSpace(*contentID)
		if *contentID == "" {
			return "", fmt.Errorf("%w: empty content id", domain.ErrInvalidPreference)
		}
	}
	return user, nil
}

// List returns the stored content ids in ascending order.
func (s *PreferenceService) List(ctx context.Context, user string, kind domain.PreferenceKind) ([]string, error) {
	user, err := validate(user, kind, nil)
	if err != nil {
		return nil, err
	}
	ids, err := s.store.Members(ctx, user, kind)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *PreferenceService) Add(ctx context.Context, user string, kind domain.PreferenceKind, contentID string) error {
	user, err := validate(user, kind, &contentID)
	if err != nil {
		return err
	}
	return s.store.Add(ctx, user, kind, contentID)
}

func (s *PreferenceService) Remove(ctx context.Context, user string, kind domain.PreferenceKind, contentID string) error {
	user, err := validate(user, kind, &contentID)
	if err != nil {
		return err
	}
	return s.store.Remove(ctx, user, kind, contentID)
}

func (s *PreferenceService) Contains(ctx context.Context, user string, kind domain.PreferenceKind, contentID string) (bool, error) {
	user, err := validate(user, kind, &contentID)
	if err != nil {
		return false, err
	}
	return s.store.Contains(ctx, user, kind, contentID)
}

// Toggle flips membership and reports the new state.
func (s *PreferenceService) Toggle(ctx context.Context, user string, kind domain.PreferenceKind, contentID string) (bool, error) {
	user, err := validate(user, kind, &contentID)
	if err != nil {
		return false, err
	}
	return s.store.Toggle(ctx, user, kind, contentID)
}
