package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/mizuki-dev/subrefine/internal/errors"
	"github.com/mizuki-dev/subrefine/internal/model"
	"github.com/mizuki-dev/subrefine/internal/service/dictionary"
)

type dictionaryRepository struct {
	pool Pool
}

// NewDictionaryRepository creates a new DictionaryRepository backed by PostgreSQL.
func NewDictionaryRepository(pool Pool) DictionaryRepository {
	return &dictionaryRepository{pool: pool}
}

// Create inserts a new dictionary entry and fills in its generated ID and
// creation timestamp.
func (r *dictionaryRepository) Create(ctx context.Context, entry *model.DictionaryEntry) error {
	if err := dictionary.ValidateEntry(entry.Wrong, entry.Correct); err != nil {
		return err
	}

	query := `
		INSERT INTO dictionary_entries (wrong, correct, category, is_enabled, used_count)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		entry.Wrong, entry.Correct, entry.Category, entry.IsEnabled, entry.UsedCount,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return handlePostgreSQLError(err, "failed to create dictionary entry")
	}
	return nil
}

// Get retrieves a dictionary entry by ID.
func (r *dictionaryRepository) Get(ctx context.Context, id int) (*model.DictionaryEntry, error) {
	query := `
		SELECT id, wrong, correct, category, is_enabled, used_count, created_at
		FROM dictionary_entries
		WHERE id = $1`

	entry := &model.DictionaryEntry{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&entry.ID, &entry.Wrong, &entry.Correct, &entry.Category,
		&entry.IsEnabled, &entry.UsedCount, &entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("dictionary entry %d not found", id))
		}
		return nil, handlePostgreSQLError(err, "failed to get dictionary entry")
	}
	return entry, nil
}

// List retrieves dictionary entries ordered by ID with pagination.
func (r *dictionaryRepository) List(ctx context.Context, limit, offset int) ([]*model.DictionaryEntry, error) {
	query := `
		SELECT id, wrong, correct, category, is_enabled, used_count, created_at
		FROM dictionary_entries
		ORDER BY id
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, handlePostgreSQLError(err, "failed to list dictionary entries")
	}
	defer rows.Close()

	return scanDictionaryEntries(rows)
}

// ListEnabled retrieves every enabled entry in ID order, which is also the
// order entries are applied in.
func (r *dictionaryRepository) ListEnabled(ctx context.Context) ([]*model.DictionaryEntry, error) {
	query := `
		SELECT id, wrong, correct, category, is_enabled, used_count, created_at
		FROM dictionary_entries
		WHERE is_enabled = TRUE
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, handlePostgreSQLError(err, "failed to list enabled dictionary entries")
	}
	defer rows.Close()

	return scanDictionaryEntries(rows)
}

// SetEnabled toggles an entry without deleting its usage history.
func (r *dictionaryRepository) SetEnabled(ctx context.Context, id int, enabled bool) error {
	query := `UPDATE dictionary_entries SET is_enabled = $2 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, enabled)
	if err != nil {
		return handlePostgreSQLError(err, "failed to update dictionary entry")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("dictionary entry %d not found", id))
	}
	return nil
}

// IncrementUsed bumps the usage counter after an entry was applied.
func (r *dictionaryRepository) IncrementUsed(ctx context.Context, id int) error {
	query := `UPDATE dictionary_entries SET used_count = used_count + 1 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return handlePostgreSQLError(err, "failed to increment dictionary usage")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("dictionary entry %d not found", id))
	}
	return nil
}

// Delete removes a dictionary entry.
func (r *dictionaryRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM dictionary_entries WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return handlePostgreSQLError(err, "failed to delete dictionary entry")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("dictionary entry %d not found", id))
	}
	return nil
}

func scanDictionaryEntries(rows pgx.Rows) ([]*model.DictionaryEntry, error) {
	var entries []*model.DictionaryEntry
	for rows.Next() {
		entry := &model.DictionaryEntry{}
		err := rows.Scan(
			&entry.ID, &entry.Wrong, &entry.Correct, &entry.Category,
			&entry.IsEnabled, &entry.UsedCount, &entry.CreatedAt,
		)
		if err != nil {
			return nil, handlePostgreSQLError(err, "failed to scan dictionary entry")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgreSQLError(err, "failed to iterate dictionary entries")
	}
	return entries, nil
}
