package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestFanOut_TolerantZeroFillsFailures(t *testing.T) {
	var calls int32
	out, err := fanOut(context.Background(), "test", Tolerant, 0, 4, func(ctx context.Context, i int) ([]int, error) {
		atomic.AddInt32(&calls, 1)
		if i == 2 {
			return nil, errors.New("boom")
		}
		return []int{i, i}, nil
	})
	if err != nil {
		t.Fatalf("tolerant fan-out must not fail: %v", err)
	}
	if calls != 4 {
		t.Fatalf("expected 4 branches, got %d", calls)
	}
	if len(out) != 4 || out[2] != nil || len(out[3]) != 2 {
		t.Fatalf("unexpected results: %v", out)
	}
}

func TestFanOut_StrictWaitsForSiblings(t *testing.T) {
	var finished int32
	_, err := fanOut(context.Background(), "test", Strict, 0, 3, func(ctx context.Context, i int) (int, error) {
		if i == 0 {
			return 0, errors.New("first branch failed")
		}
		time.Sleep(30 * time.Millisecond)
		if ctx.Err() != nil {
			t.Errorf("sibling %d saw a cancelled context", i)
		}
		atomic.AddInt32(&finished, 1)
		return i, nil
	})
	if err == nil || err.Error() != "first branch failed" {
		t.Fatalf("expected branch error, got %v", err)
	}
	if atomic.LoadInt32(&finished) != 2 {
		t.Fatalf("siblings should settle before return, finished=%d", finished)
	}
}

func TestFanOut_RespectsLimit(t *testing.T) {
	var cur, peak int32
	_, err := fanOut(context.Background(), "test", Strict, 2, 6, func(ctx context.Context, i int) (int, error) {
		n := atomic.AddInt32(&cur, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&cur, -1)
		return i, nil
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if peak > 2 {
		t.Fatalf("limit exceeded: peak=%d", peak)
	}
}

func TestFanOut_Empty(t *testing.T) {
	out, err := fanOut(context.Background(), "test", Strict, 0, 0, func(ctx context.Context, i int) (int, error) {
		t.Fatalf("no branch expected")
		return 0, nil
	})
	if err != nil || len(out) != 0 {
		t.Fatalf("unexpected: %v %v", out, err)
	}
}
