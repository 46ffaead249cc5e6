package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"sfcatalog/catalog"

	random "github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("sfcatalog.pipeline")

// Candidate is one object the plan intends to fetch. KeyPrefix and Label
// are index-only enrichment some sources learn while listing.
type Candidate struct {
	Name      string
	Cloud     string
	SourceURL string
	KeyPrefix string
	Label     string
}

// Source produces candidates and fetches their detail. Both the docs
// scraper and the describe API client sit behind this interface; once
// their output is shaped into an ObjectRecord the pipeline treats them
// identically.
type Source interface {
	ListObjects(ctx context.Context) ([]Candidate, error)
	FetchObject(ctx context.Context, cand Candidate) (catalog.ObjectRecord, error)
}

// fatalError marks an error no amount of per-object skipping can recover
// from, such as a rejected login.
type fatalError struct {
	err error
}

func (f fatalError) Error() string { return f.err.Error() }
func (f fatalError) Unwrap() error { return f.err }

// Fatal wraps an error so the pipeline aborts the whole run instead of
// skipping the object.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return fatalError{err: err}
}

// IsFatal reports whether the error was marked with Fatal.
func IsFatal(err error) bool {
	var f fatalError
	return errors.As(err, &f)
}

// Options tunes the fetch schedule. Zero values pick the defaults.
type Options struct {
	// ChunkSize is how many fetches run concurrently before the group is
	// awaited; it bounds the load on the remote server.
	ChunkSize int
	// ChunkDelay is the pause between chunks, the secondary rate limit.
	// A little random jitter is added on top.
	ChunkDelay time.Duration
	// CheckpointEvery is how many processed objects pass between progress
	// checkpoints and index flushes.
	CheckpointEvery int
	// Resume continues from an existing progress checkpoint when the plan
	// still matches it.
	Resume bool
}

func (o Options) withDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = 10
	}
	if o.ChunkDelay <= 0 {
		o.ChunkDelay = 2 * time.Second
	}
	if o.CheckpointEvery <= 0 {
		o.CheckpointEvery = 25
	}
	return o
}

// Summary is the final tally of a run.
type Summary struct {
	Planned  int
	Fetched  int
	Rejected int
	Errored  int
}

type fetchResult struct {
	cand   Candidate
	record catalog.ObjectRecord
	err    error
}

// Run executes one full pass: list candidates, filter, fetch in bounded
// chunks, merge and index each result, checkpoint periodically. Per-object
// failures are logged and skipped; only errors marked Fatal abort the run.
func Run(ctx context.Context, cat *catalog.Catalog, src Source, filter catalog.Filter, opts Options) (Summary, error) {
	ctx, span := tracer.Start(ctx, "pipeline.Run")
	defer span.End()

	opts = opts.withDefaults()
	var summary Summary

	candidates, err := src.ListObjects(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list objects")
		return summary, fmt.Errorf("list objects: %w", err)
	}

	// the plan is sorted so a checkpoint index means the same thing on
	// the resumed run as it did on the interrupted one
	plan := make([]Candidate, 0, len(candidates))
	for _, cand := range candidates {
		if !filter.Admit(cand.Name) {
			summary.Rejected++
			continue
		}
		plan = append(plan, cand)
	}
	slices.SortFunc(plan, func(a, b Candidate) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
	summary.Planned = len(plan)
	span.SetAttributes(attribute.Int("planned", len(plan)))

	startedAt := time.Now().UTC()
	start := 0
	processed := 0
	if opts.Resume {
		cp, err := cat.ReadCheckpoint()
		if err != nil {
			return summary, err
		}
		if cp != nil && cp.TotalObjects == len(plan) {
			start = cp.LastProcessedIndex + 1
			processed = cp.ProcessedCount
			startedAt = cp.StartedAt
			slog.Info("resuming from checkpoint",
				"last_object", cp.LastProcessedObject,
				"remaining", len(plan)-start)
		}
	}

	sinceCheckpoint := 0
	for chunkStart := start; chunkStart < len(plan); chunkStart += opts.ChunkSize {
		chunkEnd := min(chunkStart+opts.ChunkSize, len(plan))
		chunk := plan[chunkStart:chunkEnd]

		results := make([]fetchResult, len(chunk))
		wg := sync.WaitGroup{}
		for i, cand := range chunk {
			i, cand := i, cand
			wg.Add(1)
			go func() {
				defer wg.Done()
				record, err := src.FetchObject(ctx, cand)
				results[i] = fetchResult{cand: cand, record: record, err: err}
			}()
		}
		wg.Wait()

		for i, res := range results {
			planIndex := chunkStart + i
			if res.err != nil {
				if IsFatal(res.err) {
					span.RecordError(res.err)
					span.SetStatus(codes.Error, "fatal source error")
					return summary, res.err
				}
				slog.WarnContext(ctx, "skipping object",
					"name", res.cand.Name, "err", res.err)
				summary.Errored++
			} else {
				record := shapeRecord(res)
				_, err := cat.Upsert(record)
				if err != nil {
					slog.WarnContext(ctx, "skipping object",
						"name", res.cand.Name, "err", err)
					summary.Errored++
				} else {
					cat.EnrichEntry(record.Name, catalog.IndexEntry{
						KeyPrefix: res.cand.KeyPrefix,
						Label:     res.cand.Label,
					})
					summary.Fetched++
				}
			}

			processed++
			sinceCheckpoint++
			if sinceCheckpoint >= opts.CheckpointEvery {
				sinceCheckpoint = 0
				err := flushProgress(cat, plan, planIndex, processed, startedAt)
				if err != nil {
					return summary, err
				}
			}
		}

		slog.InfoContext(ctx, "chunk complete",
			"done", chunkEnd, "total", len(plan),
			"fetched", summary.Fetched, "errored", summary.Errored)

		if chunkEnd < len(plan) {
			err := sleepWithJitter(ctx, opts.ChunkDelay)
			if err != nil {
				return summary, err
			}
		}
	}

	err = cat.Flush()
	if err != nil {
		return summary, err
	}
	err = cat.ClearCheckpoint()
	if err != nil {
		return summary, err
	}

	slog.InfoContext(ctx, "run complete",
		"planned", summary.Planned,
		"fetched", summary.Fetched,
		"rejected", summary.Rejected,
		"errored", summary.Errored)
	return summary, nil
}

// shapeRecord back-fills plan metadata the source did not set on the
// fetched record.
func shapeRecord(res fetchResult) catalog.ObjectRecord {
	record := res.record
	if record.Name == "" {
		record.Name = res.cand.Name
	}
	if record.Module == "" {
		record.Module = res.cand.Cloud
	}
	if record.SourceURL == "" {
		record.SourceURL = res.cand.SourceURL
	}
	return record
}

func flushProgress(cat *catalog.Catalog, plan []Candidate, planIndex, processed int, startedAt time.Time) error {
	err := cat.Flush()
	if err != nil {
		return err
	}
	return cat.WriteCheckpoint(catalog.Checkpoint{
		LastProcessedIndex:  planIndex,
		LastProcessedObject: plan[planIndex].Name,
		TotalObjects:        len(plan),
		StartedAt:           startedAt,
		LastUpdatedAt:       time.Now().UTC(),
		ProcessedCount:      processed,
	})
}

// sleepWithJitter pauses between chunks, honoring cancellation. Jitter of
// up to half the delay spreads the request pattern out a little.
func sleepWithJitter(ctx context.Context, delay time.Duration) error {
	jitterMs, err := random.IntRange(0, int(delay.Milliseconds()/2)+1)
	if err != nil {
		jitterMs = 0
	}
	timer := time.NewTimer(delay + time.Duration(jitterMs)*time.Millisecond)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
