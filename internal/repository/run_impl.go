package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	apperrors "github.com/mizuki-dev/subrefine/internal/errors"
	"github.com/mizuki-dev/subrefine/internal/service/pipeline"
)

type runRepository struct {
	pool  Pool
	newID func() string
}

// NewRunRepository creates a new RunRepository backed by PostgreSQL.
func NewRunRepository(pool Pool) RunRepository {
	return &runRepository{pool: pool, newID: uuid.NewString}
}

// SaveRun stores a run and its artifacts in one transaction. Segments,
// suggestions, and the application log are bulk-inserted with COPY.
func (r *runRepository) SaveRun(ctx context.Context, mediaName string, result *pipeline.Result) error {
	stats, err := json.Marshal(result.Stats)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to encode run stats")
	}
	failures, err := json.Marshal(result.FailedBatches)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to encode batch failures")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return handlePostgreSQLError(err, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	runID := r.newID()
	_, err = tx.Exec(ctx,
		`INSERT INTO runs (id, media_name, stats, failed_batches) VALUES ($1, $2, $3, $4)`,
		runID, mediaName, stats, failures)
	if err != nil {
		return handlePostgreSQLError(err, "failed to insert run")
	}

	if err := copySegments(ctx, tx, runID, result); err != nil {
		return err
	}
	if err := copySuggestions(ctx, tx, runID, result); err != nil {
		return err
	}
	if err := copyApplicationLog(ctx, tx, runID, result); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return handlePostgreSQLError(err, "failed to commit run")
	}
	return nil
}

func copySegments(ctx context.Context, tx pgx.Tx, runID string, result *pipeline.Result) error {
	if len(result.Segments) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(result.Segments))
	for _, seg := range result.Segments {
		rows = append(rows, []any{
			runID, seg.ID, seg.Start, seg.End, seg.Speaker,
			seg.TextSource, seg.TextTarget, string(seg.Status),
		})
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"run_segments"},
		[]string{"run_id", "segment_id", "start_time", "end_time", "speaker", "text_source", "text_target", "status"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return handlePostgreSQLError(err, "failed to copy run segments")
	}
	return nil
}

func copySuggestions(ctx context.Context, tx pgx.Tx, runID string, result *pipeline.Result) error {
	if len(result.Suggestions) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(result.Suggestions))
	for _, sug := range result.Suggestions {
		var wrong, correct, category *string
		if sug.DictCandidate != nil {
			wrong = &sug.DictCandidate.Wrong
			correct = &sug.DictCandidate.Correct
			category = &sug.DictCandidate.Category
		}
		rows = append(rows, []any{
			sug.ID, runID, sug.SegmentID, string(sug.Kind), string(sug.Field),
			sug.Original, sug.Proposed, sug.Reason, sug.Confidence,
			sug.IsDictCandidate, wrong, correct, category,
		})
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"run_suggestions"},
		[]string{"id", "run_id", "segment_id", "kind", "field", "original", "proposed", "reason",
			"confidence", "is_dict_candidate", "candidate_wrong", "candidate_correct", "candidate_category"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return handlePostgreSQLError(err, "failed to copy run suggestions")
	}
	return nil
}

func copyApplicationLog(ctx context.Context, tx pgx.Tx, runID string, result *pipeline.Result) error {
	if len(result.ApplicationLog) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(result.ApplicationLog))
	for _, entry := range result.ApplicationLog {
		rows = append(rows, []any{
			runID, entry.SegmentID, entry.EntryID, entry.Wrong, entry.Correct,
			entry.OriginalText, entry.ModifiedText, entry.AppliedAt,
		})
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"application_log"},
		[]string{"run_id", "segment_id", "entry_id", "wrong", "correct", "original_text", "modified_text", "applied_at"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return handlePostgreSQLError(err, "failed to copy application log")
	}
	return nil
}
