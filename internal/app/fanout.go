package app

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"gangwongo/internal/adapters/observability"
)

// Policy decides what a failing fan-out branch does to the whole call.
type Policy int

const (
	// Tolerant logs a failed branch and leaves its slot zero-valued.
	Tolerant Policy = iota
	// Strict fails the call with the first branch error.
	Strict
)

// fanOut runs fn for branches 0..n-1 concurrently (at most limit at a time
// when limit > 0) and waits for every branch to settle. Branches share ctx
// as-is, so a failure never cancels its siblings.
func fanOut[T any](ctx context.Context, op string, policy Policy, limit, n int, fn func(ctx context.Context, i int) (T, error)) ([]T, error) {
	out := make([]T, n)
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			v, err := fn(ctx, i)
			observability.ObserveBranch(op, err == nil)
			if err != nil {
				if policy == Tolerant {
					log.Warn().Err(err).Str("op", op).Int("branch", i).Msg("fan-out branch failed")
					return nil
				}
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
