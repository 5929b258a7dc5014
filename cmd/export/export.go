package main

import (
	"context"
	"encoding/json"
	"io"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"gangwongo/internal/app"
	"gangwongo/internal/domain"
)

type exporter struct {
	agg      *app.Aggregator
	workers  int
	listOnly bool
}

type summary struct {
	Items   int
	Written int64
	Skipped int64
	Failed  int64
}

// run sweeps one sigungu (all of them when empty) and writes one JSON
// record per line to w: list items with listOnly, composed details otherwise.
func (e *exporter) run(ctx context.Context, sigungu string, w io.Writer) summary {
	items := e.agg.AreaList(ctx, sigungu)
	log.Info().Int("items", len(items)).Msg("area sweep done")

	var (
		s   = summary{Items: len(items)}
		mu  sync.Mutex
		enc = json.NewEncoder(w)
	)
	var written, skipped, failed atomic.Int64
	emit := func(v any) {
		mu.Lock()
		defer mu.Unlock()
		if err := enc.Encode(v); err != nil {
			failed.Add(1)
			log.Error().Err(err).Msg("write record failed")
			return
		}
		written.Add(1)
	}

	if e.listOnly {
		for _, it := range items {
			emit(it)
		}
		s.Written = written.Load()
		s.Failed = failed.Load()
		return s
	}

	workers := e.workers
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup

	for _, it := range items {
		typeID, err := strconv.Atoi(it.ContentTypeID)
		if err != nil {
			skipped.Add(1)
			log.Warn().Str("content_id", it.ContentID).Str("content_type_id", it.ContentTypeID).Msg("unparseable content type; skipped")
			continue
		}

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("export interrupted")
			break
		}

		wg.Add(1)
		go func(it domain.ListItem, typeID int) {
			defer wg.Done()
			defer sem.Release(1)

			d, err := e.agg.Detail(ctx, it.ContentID, typeID)
			if err != nil {
				failed.Add(1)
				log.Warn().Str("content_id", it.ContentID).Err(err).Msg("detail failed")
				return
			}
			emit(d)
		}(it, typeID)
	}

	wg.Wait()
	s.Written = written.Load()
	s.Skipped = skipped.Load()
	s.Failed = failed.Load()
	return s
}
