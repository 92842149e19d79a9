package dictionary

import (
	"sort"
	"strings"
	"time"

	apperrors "github.com/mizuki-dev/subrefine/internal/errors"
	"github.com/mizuki-dev/subrefine/internal/model"
)

// Applier rewrites segment source text using confirmed dictionary entries.
type Applier struct {
	now func() time.Time
}

// NewApplier creates a dictionary applier.
func NewApplier() *Applier {
	return &Applier{now: time.Now}
}

// Result reports what one application pass did. UsedEntryIDs is deduplicated
// and ascending so callers can increment usage counters; the applier does not
// own counter persistence.
type Result struct {
	Log          []model.ApplicationLogEntry
	UsedEntryIDs []int
}

// Apply replaces every literal occurrence of each enabled entry's wrong
// pattern with its correct form, mutating TextSource in place. Entries are
// applied in ID order; each entry matches against the already-substituted
// text, so overlapping patterns resolve predictably. Applying the same entry
// set to already-clean text is a no-op.
func (a *Applier) Apply(segments []*model.Segment, entries []*model.DictionaryEntry) *Result {
	ordered := make([]*model.DictionaryEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.IsEnabled {
			ordered = append(ordered, entry)
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	result := &Result{}
	used := make(map[int]bool)

	for _, seg := range segments {
		text := seg.TextSource
		for _, entry := range ordered {
			if !strings.Contains(text, entry.Wrong) {
				continue
			}
			original := text
			text = strings.ReplaceAll(text, entry.Wrong, entry.Correct)
			result.Log = append(result.Log, model.ApplicationLogEntry{
				SegmentID:    seg.ID,
				EntryID:      entry.ID,
				Wrong:        entry.Wrong,
				Correct:      entry.Correct,
				OriginalText: original,
				ModifiedText: text,
				AppliedAt:    a.now(),
			})
			used[entry.ID] = true
		}
		seg.TextSource = text
	}

	for id := range used {
		result.UsedEntryIDs = append(result.UsedEntryIDs, id)
	}
	sort.Ints(result.UsedEntryIDs)
	return result
}

// ValidateEntry rejects dictionary mutations that could never be a useful
// substitution rule. Called synchronously at the mutation boundary.
func ValidateEntry(wrong, correct string) error {
	if strings.TrimSpace(wrong) == "" {
		return apperrors.New(apperrors.CodeInvalidArg, "wrong pattern cannot be empty")
	}
	if wrong == correct {
		return apperrors.New(apperrors.CodeInvalidArg, "wrong pattern and correct form must differ")
	}
	return nil
}
