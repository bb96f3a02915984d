package generator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/incident-generator/internal/codec"
	"github.com/jonathan/incident-generator/internal/config"
	"github.com/jonathan/incident-generator/internal/incident"
	"github.com/jonathan/incident-generator/internal/llm"
)

// Checkpointer persists the full state after every batch. Implemented by
// the store; abstracted here so orchestrator tests need no filesystem.
type Checkpointer interface {
	Save(state *State) error
}

// BatchResult describes one completed batch for progress reporting.
type BatchResult struct {
	Requested  int
	Accepted   int
	SoftErrors []codec.SoftError
	Count      int // Records accumulated after this batch
	Target     int
}

// Options configures the generation loop.
type Options struct {
	BatchSize              int
	NumWorkers             int  // 1 = sequential; >1 enables parallel batch issuance
	MaxRetries             int  // Attempts per batch before it counts as failed
	ContinueOnBatchFailure bool // Drop a failed batch and keep going instead of halting
	Taxonomy               *config.Taxonomy
	RetryBaseDelay         time.Duration // Doubles per attempt for transport/malformed failures
	RateLimitDelay         time.Duration // Flat, longer delay after a rate-limit response
	OnBatch                func(BatchResult)
}

// Default delays for the two backoff classes.
const (
	DefaultRetryBaseDelay = 2 * time.Second
	DefaultRateLimitDelay = 30 * time.Second
)

// BatchError means one batch exhausted its retry budget. The run state is
// already checkpointed at the last completed batch boundary. SoftErrors
// carries the per-record drops from the final attempt, when the batch died
// because every record failed validation.
type BatchError struct {
	Attempts   int
	Cause      error
	SoftErrors []codec.SoftError
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch failed after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *BatchError) Unwrap() error {
	return e.Cause
}

// Summary reports what a run accomplished.
type Summary struct {
	Generated     int // Records appended by this run
	SoftErrors    int // Records dropped by per-record validation
	FailedBatches int // Batches dropped after retry exhaustion (continue mode only)
}

// Orchestrator owns the generation loop. It is not safe for concurrent use;
// parallelism happens inside Run, bounded by Options.NumWorkers.
type Orchestrator struct {
	client     llm.Client
	checkpoint Checkpointer
	opts       Options
}

// New creates an orchestrator. Zero option fields get defaults.
func New(client llm.Client, checkpoint Checkpointer, opts Options) *Orchestrator {
	if opts.BatchSize <= 0 {
		opts.BatchSize = config.DefaultBatchSize
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = config.DefaultNumWorkers
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = config.DefaultMaxRetries
	}
	if opts.RetryBaseDelay <= 0 {
		opts.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if opts.RateLimitDelay <= 0 {
		opts.RateLimitDelay = DefaultRateLimitDelay
	}
	return &Orchestrator{client: client, checkpoint: checkpoint, opts: opts}
}

// Run generates records until the state reaches its target, checkpointing
// after every accepted batch. On error the state reflects the last completed
// batch boundary: partial in-flight batches are never merged.
func (o *Orchestrator) Run(ctx context.Context, state *State) (*Summary, error) {
	summary := &Summary{}

	for !state.Done() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		var err error
		if o.opts.NumWorkers > 1 {
			err = o.runWave(ctx, state, summary)
		} else {
			err = o.runOne(ctx, state, summary)
		}
		if err != nil {
			return summary, err
		}
	}
	return summary, nil
}

// runOne executes a single batch sequentially.
func (o *Orchestrator) runOne(ctx context.Context, state *State, summary *Summary) error {
	size := min(o.opts.BatchSize, state.Remaining())

	records, softErrors, err := o.requestBatch(ctx, size, state.NextSequence())
	if err != nil {
		return o.handleBatchFailure(err, summary)
	}

	summary.SoftErrors += len(softErrors)
	summary.Generated += len(records)
	state.Append(records)
	if err := o.checkpoint.Save(state); err != nil {
		return fmt.Errorf("checkpointing failed: %w", err)
	}
	o.emit(BatchResult{
		Requested:  size,
		Accepted:   len(records),
		SoftErrors: softErrors,
		Count:      state.Count(),
		Target:     state.Target,
	})
	return nil
}

// runWave issues up to NumWorkers batches concurrently. Appending to state
// and checkpointing are serialized under one mutex, so every checkpoint is a
// complete, consistent batch boundary. A fatal failure cancels the group and
// in-flight batches are discarded.
func (o *Orchestrator) runWave(ctx context.Context, state *State, summary *Summary) error {
	sizes := o.planWave(state.Remaining())
	base := state.NextSequence()

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	offset := 0
	for _, size := range sizes {
		size := size
		startHint := base + offset
		offset += size

		g.Go(func() error {
			records, softErrors, err := o.requestBatch(gctx, size, startHint)
			if err != nil {
				mu.Lock()
				defer mu.Unlock()
				return o.handleBatchFailure(err, summary)
			}

			mu.Lock()
			defer mu.Unlock()
			summary.SoftErrors += len(softErrors)
			summary.Generated += len(records)
			state.Append(records)
			if err := o.checkpoint.Save(state); err != nil {
				return fmt.Errorf("checkpointing failed: %w", err)
			}
			o.emit(BatchResult{
				Requested:  size,
				Accepted:   len(records),
				SoftErrors: softErrors,
				Count:      state.Count(),
				Target:     state.Target,
			})
			return nil
		})
	}
	return g.Wait()
}

// planWave splits the remaining work into at most NumWorkers batch sizes.
func (o *Orchestrator) planWave(remaining int) []int {
	var sizes []int
	for i := 0; i < o.opts.NumWorkers && remaining > 0; i++ {
		size := min(o.opts.BatchSize, remaining)
		sizes = append(sizes, size)
		remaining -= size
	}
	return sizes
}

// requestBatch performs one batch request with bounded retry. Rate-limit
// failures wait the long flat delay; transport and malformed failures use
// exponential backoff from RetryBaseDelay. Unauthorized is never retried.
func (o *Orchestrator) requestBatch(ctx context.Context, size, startNumber int) ([]incident.Incident, []codec.SoftError, error) {
	prompt := codec.BuildPrompt(size, startNumber, o.opts.Taxonomy)

	var lastErr error
	var lastSoft []codec.SoftError
	delay := o.opts.RetryBaseDelay
	for attempt := 1; attempt <= o.opts.MaxRetries; attempt++ {
		raw, err := o.client.Generate(ctx, prompt)
		var soft []codec.SoftError
		if err == nil {
			records, softErrors, parseErr := codec.ParseResponse(raw, o.opts.Taxonomy)
			if parseErr == nil {
				return records, softErrors, nil
			}
			err = parseErr
			soft = softErrors
		}

		if llm.IsKind(err, llm.KindUnauthorized) {
			return nil, nil, err
		}
		lastErr = err
		lastSoft = soft
		if attempt == o.opts.MaxRetries {
			break
		}

		wait := delay
		if llm.IsKind(err, llm.KindRateLimited) {
			wait = o.opts.RateLimitDelay
		} else {
			delay *= 2
		}
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, nil, &BatchError{Attempts: o.opts.MaxRetries, Cause: lastErr, SoftErrors: lastSoft}
}

// handleBatchFailure decides whether a failed batch halts the run. Fatal
// errors (unauthorized, cancellation) and exhausted batches in halt mode
// propagate; in continue mode the batch is dropped and counted. Either way
// the dropped-record details from the final attempt land in the summary.
func (o *Orchestrator) handleBatchFailure(err error, summary *Summary) error {
	if llm.IsKind(err, llm.KindUnauthorized) {
		return err
	}
	var batchErr *BatchError
	if !errors.As(err, &batchErr) {
		return err
	}
	summary.SoftErrors += len(batchErr.SoftErrors)
	if o.opts.ContinueOnBatchFailure {
		summary.FailedBatches++
		return nil
	}
	return err
}

func (o *Orchestrator) emit(result BatchResult) {
	if o.opts.OnBatch != nil {
		o.opts.OnBatch(result)
	}
}
