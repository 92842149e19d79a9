package store

import (
	"fmt"

	apperrors "github.com/mizuki-dev/subrefine/internal/errors"
	"github.com/mizuki-dev/subrefine/internal/model"
)

// Confidence thresholds for status derivation.
const (
	errorThreshold   = 0.8
	warningThreshold = 0.5
)

// Store is the in-memory ordered segment collection every pipeline stage
// reads and writes. Mutation is single-stage-at-a-time by pipeline
// discipline, so no locking is needed here.
type Store struct {
	segments    []*model.Segment
	byID        map[int]*model.Segment
	suggestions []*model.Suggestion
}

// New builds a store over the given segments. Segment IDs must be unique.
func New(segments []*model.Segment) (*Store, error) {
	byID := make(map[int]*model.Segment, len(segments))
	for _, seg := range segments {
		if _, ok := byID[seg.ID]; ok {
			return nil, apperrors.New(apperrors.CodeInvalidArg, fmt.Sprintf("duplicate segment id %d", seg.ID))
		}
		byID[seg.ID] = seg
	}
	return &Store{
		segments: segments,
		byID:     byID,
	}, nil
}

// Segments returns the segments in pipeline order.
func (s *Store) Segments() []*model.Segment {
	return s.segments
}

// Get returns the segment with the given ID.
func (s *Store) Get(id int) (*model.Segment, bool) {
	seg, ok := s.byID[id]
	return seg, ok
}

// Len returns the number of segments.
func (s *Store) Len() int {
	return len(s.segments)
}

// Suggestions returns all linked suggestions in insertion order.
func (s *Store) Suggestions() []*model.Suggestion {
	return s.suggestions
}

// AddSuggestion links a suggestion to its segment and re-derives the
// segment's status. It fails with CodeDependency when the referenced
// segment does not exist.
func (s *Store) AddSuggestion(sug *model.Suggestion) error {
	seg, ok := s.byID[sug.SegmentID]
	if !ok {
		return apperrors.New(apperrors.CodeDependency, fmt.Sprintf("suggestion references unknown segment %d", sug.SegmentID))
	}
	s.suggestions = append(s.suggestions, sug)
	seg.SuggestionIDs = append(seg.SuggestionIDs, sug.ID)
	seg.Status = DeriveStatus(s.SuggestionsFor(seg.ID))
	return nil
}

// SuggestionsFor returns the suggestions linked to one segment, in
// detection order.
func (s *Store) SuggestionsFor(segmentID int) []*model.Suggestion {
	var out []*model.Suggestion
	for _, sug := range s.suggestions {
		if sug.SegmentID == segmentID {
			out = append(out, sug)
		}
	}
	return out
}

// DeriveStatus computes a segment status from its linked suggestions.
// The maximum confidence determines the bucket, so adding a low-confidence
// suggestion never downgrades a segment.
func DeriveStatus(suggestions []*model.Suggestion) model.SegmentStatus {
	maxConfidence := 0.0
	for _, sug := range suggestions {
		if sug.Confidence > maxConfidence {
			maxConfidence = sug.Confidence
		}
	}
	switch {
	case maxConfidence >= errorThreshold:
		return model.StatusError
	case maxConfidence >= warningThreshold:
		return model.StatusWarning
	default:
		return model.StatusOK
	}
}

// Stats assembles run statistics over the current store contents.
func (s *Store) Stats(failedBatches int) model.RunStats {
	stats := model.RunStats{
		TotalSegments:     len(s.segments),
		SuggestionsByKind: make(map[model.SuggestionKind]int),
		FailedBatches:     failedBatches,
	}
	for _, seg := range s.segments {
		if seg.Status != model.StatusOK {
			stats.SegmentsWithIssues++
		}
	}
	for _, sug := range s.suggestions {
		stats.SuggestionsByKind[sug.Kind]++
		if sug.IsDictCandidate {
			stats.DictCandidateCount++
		}
	}
	return stats
}
