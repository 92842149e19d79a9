package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/mizuki-dev/subrefine/internal/errors"
	"github.com/mizuki-dev/subrefine/internal/model"
)

type pendingRepository struct {
	pool Pool
}

// NewPendingRepository creates a new PendingRepository backed by PostgreSQL.
func NewPendingRepository(pool Pool) PendingRepository {
	return &pendingRepository{pool: pool}
}

// Create inserts a new pending suggestion.
func (r *pendingRepository) Create(ctx context.Context, pending *model.PendingSuggestion) error {
	query := `
		INSERT INTO pending_suggestions
			(id, wrong, correct, category, occurrence_count, confidence, first_seen, last_seen, source_segment_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		pending.ID, pending.Wrong, pending.Correct, pending.Category,
		pending.OccurrenceCount, pending.Confidence,
		pending.FirstSeen, pending.LastSeen, toInt32Slice(pending.SourceSegmentIDs),
	)
	if err != nil {
		return handlePostgreSQLError(err, "failed to create pending suggestion")
	}
	return nil
}

// Get retrieves a pending suggestion by ID.
func (r *pendingRepository) Get(ctx context.Context, id string) (*model.PendingSuggestion, error) {
	query := selectPendingQuery + ` WHERE id = $1`
	return r.queryOne(ctx, query, "pending suggestion "+id+" not found", id)
}

// GetByPair retrieves the pending suggestion for a (wrong, correct) pair.
func (r *pendingRepository) GetByPair(ctx context.Context, wrong, correct string) (*model.PendingSuggestion, error) {
	query := selectPendingQuery + ` WHERE wrong = $1 AND correct = $2`
	message := fmt.Sprintf("no pending suggestion for pair (%s, %s)", wrong, correct)
	return r.queryOne(ctx, query, message, wrong, correct)
}

// Update persists the accumulated state of a pending suggestion.
func (r *pendingRepository) Update(ctx context.Context, pending *model.PendingSuggestion) error {
	query := `
		UPDATE pending_suggestions
		SET occurrence_count = $2, confidence = $3, last_seen = $4, source_segment_ids = $5
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		pending.ID, pending.OccurrenceCount, pending.Confidence,
		pending.LastSeen, toInt32Slice(pending.SourceSegmentIDs),
	)
	if err != nil {
		return handlePostgreSQLError(err, "failed to update pending suggestion")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.New(apperrors.CodeNotFound, "pending suggestion "+pending.ID+" not found")
	}
	return nil
}

// Delete removes a pending suggestion (promotion or rejection).
func (r *pendingRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM pending_suggestions WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return handlePostgreSQLError(err, "failed to delete pending suggestion")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.New(apperrors.CodeNotFound, "pending suggestion "+id+" not found")
	}
	return nil
}

// List retrieves pending suggestions ordered by occurrence count descending,
// most promising candidates first.
func (r *pendingRepository) List(ctx context.Context, limit, offset int) ([]*model.PendingSuggestion, error) {
	query := selectPendingQuery + `
		ORDER BY occurrence_count DESC, last_seen DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, handlePostgreSQLError(err, "failed to list pending suggestions")
	}
	defer rows.Close()

	var pendings []*model.PendingSuggestion
	for rows.Next() {
		pending, err := scanPending(rows)
		if err != nil {
			return nil, err
		}
		pendings = append(pendings, pending)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgreSQLError(err, "failed to iterate pending suggestions")
	}
	return pendings, nil
}

const selectPendingQuery = `
	SELECT id, wrong, correct, category, occurrence_count, confidence, first_seen, last_seen, source_segment_ids
	FROM pending_suggestions`

func (r *pendingRepository) queryOne(ctx context.Context, query, notFound string, args ...any) (*model.PendingSuggestion, error) {
	pending, err := scanPending(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.New(apperrors.CodeNotFound, notFound)
		}
		return nil, err
	}
	return pending, nil
}

func scanPending(row pgx.Row) (*model.PendingSuggestion, error) {
	pending := &model.PendingSuggestion{}
	var segmentIDs []int32
	err := row.Scan(
		&pending.ID, &pending.Wrong, &pending.Correct, &pending.Category,
		&pending.OccurrenceCount, &pending.Confidence,
		&pending.FirstSeen, &pending.LastSeen, &segmentIDs,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, handlePostgreSQLError(err, "failed to scan pending suggestion")
	}
	pending.SourceSegmentIDs = fromInt32Slice(segmentIDs)
	return pending, nil
}

// Segment IDs are stored as an INTEGER[] column; pgx maps that to []int32.
func toInt32Slice(ids []int) []int32 {
	out := make([]int32, len(ids))
	for i, id := range ids {
		out[i] = int32(id)
	}
	return out
}

func fromInt32Slice(ids []int32) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}
