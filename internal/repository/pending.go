package repository

import (
	"context"

	"github.com/mizuki-dev/subrefine/internal/model"
)

// PendingRepository manages pending dictionary suggestions accumulated
// across runs. At most one row exists per (wrong, correct) pair.
type PendingRepository interface {
	Create(ctx context.Context, pending *model.PendingSuggestion) error
	Get(ctx context.Context, id string) (*model.PendingSuggestion, error)
	GetByPair(ctx context.Context, wrong, correct string) (*model.PendingSuggestion, error)
	Update(ctx context.Context, pending *model.PendingSuggestion) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*model.PendingSuggestion, error)
}
