package learning

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/mizuki-dev/subrefine/internal/errors"
	"github.com/mizuki-dev/subrefine/internal/model"
	"github.com/mizuki-dev/subrefine/internal/service/dictionary"
)

// PendingStore persists pending suggestions keyed by (wrong, correct).
type PendingStore interface {
	Get(ctx context.Context, id string) (*model.PendingSuggestion, error)
	GetByPair(ctx context.Context, wrong, correct string) (*model.PendingSuggestion, error)
	Create(ctx context.Context, pending *model.PendingSuggestion) error
	Update(ctx context.Context, pending *model.PendingSuggestion) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*model.PendingSuggestion, error)
}

// DictionaryStore is the slice of the dictionary repository the tracker
// needs when a pending suggestion is promoted.
type DictionaryStore interface {
	Create(ctx context.Context, entry *model.DictionaryEntry) error
}

// Tracker accumulates dictionary-candidate suggestions into pending
// suggestions across runs. It only ever proposes; promotion and rejection
// are human decisions triggered through the CLI.
type Tracker struct {
	pending    PendingStore
	dictionary DictionaryStore
	now        func() time.Time
	newID      func() string
}

// NewTracker creates a learning-candidate tracker.
func NewTracker(pending PendingStore, dict DictionaryStore) *Tracker {
	return &Tracker{
		pending:    pending,
		dictionary: dict,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Absorb folds dictionary-candidate suggestions into the pending store:
// unseen (wrong, correct) pairs create a pending suggestion, repeated pairs
// increment the occurrence count, keep the maximum confidence, and extend
// the source segment set. Returns how many pendings were created and merged.
func (t *Tracker) Absorb(ctx context.Context, suggestions []*model.Suggestion) (created, merged int, err error) {
	groups, order := groupCandidates(suggestions)
	now := t.now()

	for _, key := range order {
		group := groups[key]
		existing, err := t.pending.GetByPair(ctx, key.wrong, key.correct)
		switch {
		case err == nil:
			mergeGroup(existing, group, now)
			if err := t.pending.Update(ctx, existing); err != nil {
				return created, merged, err
			}
			merged++
		case apperrors.HasCode(err, apperrors.CodeNotFound):
			pending := &model.PendingSuggestion{
				ID:        t.newID(),
				Wrong:     key.wrong,
				Correct:   key.correct,
				Category:  group[0].DictCandidate.Category,
				FirstSeen: now,
			}
			mergeGroup(pending, group, now)
			if err := t.pending.Create(ctx, pending); err != nil {
				return created, merged, err
			}
			created++
		default:
			return created, merged, err
		}
	}
	return created, merged, nil
}

// Promote converts a pending suggestion into an enabled dictionary entry
// with a zero usage counter and removes the pending row.
func (t *Tracker) Promote(ctx context.Context, pendingID string) (*model.DictionaryEntry, error) {
	pending, err := t.pending.Get(ctx, pendingID)
	if err != nil {
		return nil, err
	}
	if err := dictionary.ValidateEntry(pending.Wrong, pending.Correct); err != nil {
		return nil, err
	}

	entry := &model.DictionaryEntry{
		Wrong:     pending.Wrong,
		Correct:   pending.Correct,
		Category:  pending.Category,
		IsEnabled: true,
		UsedCount: 0,
	}
	if err := t.dictionary.Create(ctx, entry); err != nil {
		return nil, err
	}
	if err := t.pending.Delete(ctx, pendingID); err != nil {
		return nil, err
	}
	return entry, nil
}

// Reject removes a pending suggestion without creating a dictionary entry.
func (t *Tracker) Reject(ctx context.Context, pendingID string) error {
	return t.pending.Delete(ctx, pendingID)
}

type pairKey struct {
	wrong   string
	correct string
}

// groupCandidates filters to dictionary candidates and groups them by
// (wrong, correct), preserving first-detection order of the pairs.
func groupCandidates(suggestions []*model.Suggestion) (map[pairKey][]*model.Suggestion, []pairKey) {
	groups := make(map[pairKey][]*model.Suggestion)
	var order []pairKey
	for _, sug := range suggestions {
		if !sug.IsDictCandidate || sug.DictCandidate == nil {
			continue
		}
		key := pairKey{wrong: sug.DictCandidate.Wrong, correct: sug.DictCandidate.Correct}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], sug)
	}
	return groups, order
}

// mergeGroup folds one detection group into a pending suggestion.
func mergeGroup(pending *model.PendingSuggestion, group []*model.Suggestion, now time.Time) {
	pending.OccurrenceCount += len(group)
	pending.LastSeen = now

	segments := make(map[int]bool, len(pending.SourceSegmentIDs))
	for _, id := range pending.SourceSegmentIDs {
		segments[id] = true
	}
	for _, sug := range group {
		if sug.Confidence > pending.Confidence {
			pending.Confidence = sug.Confidence
		}
		segments[sug.SegmentID] = true
	}

	pending.SourceSegmentIDs = pending.SourceSegmentIDs[:0]
	for id := range segments {
		pending.SourceSegmentIDs = append(pending.SourceSegmentIDs, id)
	}
	sort.Ints(pending.SourceSegmentIDs)
}
