package review

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/mizuki-dev/subrefine/internal/errors"
	"github.com/mizuki-dev/subrefine/internal/model"
	"github.com/mizuki-dev/subrefine/internal/service/common"
)

// Finding is one structured observation returned by a review call, already
// validated at the parse boundary. The aggregator turns findings into
// suggestions.
type Finding struct {
	SegmentID       int
	Kind            model.SuggestionKind
	Field           model.SuggestionField
	Original        string
	Proposed        string
	Reason          string
	Confidence      float64
	IsDictCandidate bool
	DictCandidate   *model.DictCandidate
}

// CallFunc maps one batch of segments to a list of findings. It is external
// and fallible; errors are classified through the AppError taxonomy.
type CallFunc func(ctx context.Context, batch []*model.Segment) ([]Finding, error)

// BatchFailure records a batch whose findings were dropped. It feeds run
// statistics, never control flow.
type BatchFailure struct {
	BatchIndex int    `json:"batch_index"`
	Attempts   int    `json:"attempts"`
	Reason     string `json:"reason"`
}

// Reviewer is the generic batched review primitive: it partitions items into
// bounded batches, invokes the external call per batch with retry, and
// tolerates partial failure. One exhausted or malformed batch never fails
// the whole review.
type Reviewer struct {
	maxAttempts    int
	backoffBase    time.Duration
	attemptTimeout time.Duration
	workers        int
	sleep          common.SleepFunc
	logger         *slog.Logger
}

// NewReviewer creates a reviewer running up to workers concurrent batch
// calls, each attempt bounded by attemptTimeout.
func NewReviewer(workers int, attemptTimeout time.Duration, logger *slog.Logger) *Reviewer {
	if workers <= 0 {
		workers = 1
	}
	if attemptTimeout <= 0 {
		attemptTimeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reviewer{
		maxAttempts:    3,
		backoffBase:    time.Second,
		attemptTimeout: attemptTimeout,
		workers:        workers,
		sleep:          common.Sleep,
		logger:         logger,
	}
}

type batchOutcome struct {
	findings []Finding
	failure  *BatchFailure
	fatal    error
}

// Review partitions segments into contiguous batches of at most batchSize
// and runs call over them. Batches may execute concurrently, but the
// returned findings are normalized to batch order then in-batch order, so
// downstream suggestion IDs are deterministic regardless of completion
// order. Only an auth error aborts the whole review.
func (r *Reviewer) Review(ctx context.Context, segments []*model.Segment, batchSize int, call CallFunc) ([]Finding, []BatchFailure, error) {
	if batchSize <= 0 {
		return nil, nil, apperrors.New(apperrors.CodeInvalidArg, "batch size must be positive")
	}
	if len(segments) == 0 {
		return nil, nil, nil
	}

	batches := splitBatches(segments, batchSize)
	outcomes := make([]batchOutcome, len(batches))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	var wg sync.WaitGroup
	workers := r.workers
	if workers > len(batches) {
		workers = len(batches)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				outcomes[idx] = r.reviewBatch(runCtx, idx, batches[idx], call)
				if outcomes[idx].fatal != nil {
					cancel()
				}
			}
		}()
	}
	for i := range batches {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, outcome := range outcomes {
		if outcome.fatal != nil {
			return nil, nil, outcome.fatal
		}
	}

	var findings []Finding
	var failures []BatchFailure
	for _, outcome := range outcomes {
		findings = append(findings, outcome.findings...)
		if outcome.failure != nil {
			failures = append(failures, *outcome.failure)
		}
	}
	return findings, failures, nil
}

// reviewBatch runs one batch with retry. Transient failures back off
// 1s/2s/4s for up to three attempts; parse failures and exhausted retries
// drop the batch's findings and record why; auth failures are fatal.
func (r *Reviewer) reviewBatch(ctx context.Context, idx int, batch []*model.Segment, call CallFunc) batchOutcome {
	var findings []Finding
	attempts := 0

	err := common.Retry(ctx, r.maxAttempts, r.backoffBase, r.sleep, func(ctx context.Context) error {
		attempts++
		attemptCtx, cancelAttempt := context.WithTimeout(ctx, r.attemptTimeout)
		defer cancelAttempt()

		out, callErr := call(attemptCtx, batch)
		if callErr != nil {
			if errors.Is(callErr, context.DeadlineExceeded) {
				return apperrors.Wrap(callErr, apperrors.CodeUnavailable, "batch attempt timed out")
			}
			return callErr
		}
		findings = out
		return nil
	})
	if err == nil {
		return batchOutcome{findings: findings}
	}
	if apperrors.IsAuth(err) {
		return batchOutcome{fatal: err}
	}

	r.logger.Warn("review batch dropped",
		"batch", idx,
		"attempts", attempts,
		"error", err)
	return batchOutcome{failure: &BatchFailure{
		BatchIndex: idx,
		Attempts:   attempts,
		Reason:     err.Error(),
	}}
}

// splitBatches partitions segments into contiguous batches of at most size.
// The final batch may be smaller.
func splitBatches(segments []*model.Segment, size int) [][]*model.Segment {
	var batches [][]*model.Segment
	for start := 0; start < len(segments); start += size {
		end := start + size
		if end > len(segments) {
			end = len(segments)
		}
		batches = append(batches, segments[start:end])
	}
	return batches
}
