package domain

import (
	"context"
	"errors"
	"net/url"
)

var (
	ErrUpstreamStatus    = errors.New("tourapi: unexpected status")
	ErrMalformedResponse = errors.New("tourapi: malformed response")
	ErrQuotaExceeded     = errors.New("tourapi: request quota exceeded")
	ErrNotFound          = errors.New("not found")
	ErrInvalidPreference = errors.New("invalid preference")
)

// RawPage is one decoded response envelope. HasBody is false when
// response.body was absent; Items is never nil.
type RawPage struct {
	Items      []map[string]any
	TotalCount int
	HasBody    bool
}

// TourAPI issues a single GET against an upstream operation such as
// "areaBasedList1". Params override the client's defaults on collision.
type TourAPI interface {
	Get(ctx context.Context, operation string, params url.Values) (RawPage, error)
}

// PreferenceKind names a per-user list of content ids.
type PreferenceKind string

const (
	Favorites PreferenceKind = "favorites"
	Visited   PreferenceKind = "visited"
)

func (k PreferenceKind) Valid() bool { return k == Favorites || k == Visited }

type PreferenceStore interface {
	Members(ctx context.Context, user string, kind PreferenceKind) ([]string, error)
	Add(ctx context.Context, user string, kind PreferenceKind, contentID string) error
	Remove(ctx context.Context, user string, kind PreferenceKind, contentID string) error
	Contains(ctx context.Context, user string, kind PreferenceKind, contentID string) (bool, error)
	// Toggle flips membership atomically and reports the new state.
	Toggle(ctx context.Context, user string, kind PreferenceKind, contentID string) (bool, error)
}
