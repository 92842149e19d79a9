package repository

import (
	"context"

	"github.com/mizuki-dev/subrefine/internal/model"
)

// DictionaryRepository manages misrecognition-correction rules.
type DictionaryRepository interface {
	Create(ctx context.Context, entry *model.DictionaryEntry) error
	Get(ctx context.Context, id int) (*model.DictionaryEntry, error)
	List(ctx context.Context, limit, offset int) ([]*model.DictionaryEntry, error)
	ListEnabled(ctx context.Context) ([]*model.DictionaryEntry, error)
	SetEnabled(ctx context.Context, id int, enabled bool) error
	IncrementUsed(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
}
