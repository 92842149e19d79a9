package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mizuki-dev/subrefine/internal/errors"
	"github.com/mizuki-dev/subrefine/internal/model"
)

func TestDictionaryRepository_Create(t *testing.T) {
	createdAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		entry    *model.DictionaryEntry
		setup    func(mock pgxmock.PgxPoolIface)
		wantErr  bool
		wantCode string
	}{
		{
			name: "successful creation",
			entry: &model.DictionaryEntry{
				Wrong:     "おしめん",
				Correct:   "推しメン",
				Category:  "person",
				IsEnabled: true,
			},
			setup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"id", "created_at"}).AddRow(7, createdAt)
				mock.ExpectQuery("INSERT INTO dictionary_entries").
					WithArgs("おしめん", "推しメン", "person", true, 0).
					WillReturnRows(rows)
			},
			wantErr: false,
		},
		{
			name: "duplicate pair",
			entry: &model.DictionaryEntry{
				Wrong:     "おしめん",
				Correct:   "推しメン",
				IsEnabled: true,
			},
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("INSERT INTO dictionary_entries").
					WithArgs("おしめん", "推しメン", "", true, 0).
					WillReturnError(&pgconn.PgError{
						Code:           "23505",
						ConstraintName: "dictionary_entries_wrong_correct_key",
					})
			},
			wantErr:  true,
			wantCode: apperrors.CodeConflict,
		},
		{
			name: "validation rejects identical pair before touching the database",
			entry: &model.DictionaryEntry{
				Wrong:   "same",
				Correct: "same",
			},
			setup:    func(mock pgxmock.PgxPoolIface) {},
			wantErr:  true,
			wantCode: apperrors.CodeInvalidArg,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setup(mock)

			repo := NewDictionaryRepository(mock)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			err = repo.Create(ctx, tt.entry)

			if tt.wantErr {
				require.Error(t, err)
				if tt.wantCode != "" {
					assert.True(t, apperrors.HasCode(err, tt.wantCode), "got %v", err)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, 7, tt.entry.ID)
				assert.Equal(t, createdAt, tt.entry.CreatedAt)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "pgxmock expectations were not met")
		})
	}
}

func TestDictionaryRepository_Get(t *testing.T) {
	createdAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	t.Run("entry found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		rows := pgxmock.NewRows([]string{"id", "wrong", "correct", "category", "is_enabled", "used_count", "created_at"}).
			AddRow(7, "おしめん", "推しメン", "person", true, 3, createdAt)
		mock.ExpectQuery("SELECT (.+) FROM dictionary_entries").
			WithArgs(7).
			WillReturnRows(rows)

		repo := NewDictionaryRepository(mock)
		entry, err := repo.Get(context.Background(), 7)
		require.NoError(t, err)

		assert.Equal(t, "推しメン", entry.Correct)
		assert.Equal(t, 3, entry.UsedCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("entry not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT (.+) FROM dictionary_entries").
			WithArgs(99).
			WillReturnRows(pgxmock.NewRows([]string{"id", "wrong", "correct", "category", "is_enabled", "used_count", "created_at"}))

		repo := NewDictionaryRepository(mock)
		_, err = repo.Get(context.Background(), 99)
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDictionaryRepository_ListEnabled(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	createdAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"id", "wrong", "correct", "category", "is_enabled", "used_count", "created_at"}).
		AddRow(1, "a", "b", "", true, 0, createdAt).
		AddRow(2, "c", "d", "place", true, 5, createdAt)
	mock.ExpectQuery("SELECT (.+) FROM dictionary_entries").
		WillReturnRows(rows)

	repo := NewDictionaryRepository(mock)
	entries, err := repo.ListEnabled(context.Background())
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].ID)
	assert.Equal(t, "d", entries[1].Correct)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDictionaryRepository_SetEnabled(t *testing.T) {
	t.Run("successful toggle", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec("UPDATE dictionary_entries SET is_enabled").
			WithArgs(7, false).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := NewDictionaryRepository(mock)
		require.NoError(t, repo.SetEnabled(context.Background(), 7, false))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing entry", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec("UPDATE dictionary_entries SET is_enabled").
			WithArgs(99, true).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := NewDictionaryRepository(mock)
		err = repo.SetEnabled(context.Background(), 99, true)
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDictionaryRepository_IncrementUsed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("UPDATE dictionary_entries SET used_count = used_count \\+ 1").
		WithArgs(7).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewDictionaryRepository(mock)
	require.NoError(t, repo.IncrementUsed(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDictionaryRepository_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM dictionary_entries").
		WithArgs(7).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	repo := NewDictionaryRepository(mock)
	require.NoError(t, repo.Delete(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}
