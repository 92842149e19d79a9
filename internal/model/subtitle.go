package model

import "time"

// SpeakerUnknown is assigned when no diarization interval overlaps a segment.
const SpeakerUnknown = "unknown"

// SegmentStatus is the review status derived from a segment's suggestions.
type SegmentStatus string

const (
	StatusOK      SegmentStatus = "ok"
	StatusWarning SegmentStatus = "warning"
	StatusError   SegmentStatus = "error"
)

// SuggestionKind identifies which review check produced a suggestion.
type SuggestionKind string

const (
	KindMisrecognition SuggestionKind = "misrecognition"
	KindTranslation    SuggestionKind = "translation"
	KindConsistency    SuggestionKind = "consistency"
)

// SuggestionField identifies which segment text a suggestion corrects.
type SuggestionField string

const (
	FieldSourceText SuggestionField = "source_text"
	FieldTargetText SuggestionField = "target_text"
)

// TranscriptInterval is one time span emitted by the speech-to-text engine.
type TranscriptInterval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// DiarizationInterval is one speaker span emitted by the diarization engine.
type DiarizationInterval struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// Segment is a time-bounded utterance with source text, optional translation,
// speaker, and derived review status.
type Segment struct {
	ID            int           `json:"id" db:"id"`
	Start         float64       `json:"start" db:"start_time"`
	End           float64       `json:"end" db:"end_time"`
	Speaker       string        `json:"speaker" db:"speaker"`
	TextSource    string        `json:"text_source" db:"text_source"`
	TextTarget    string        `json:"text_target" db:"text_target"`
	Status        SegmentStatus `json:"status" db:"status"`
	SuggestionIDs []string      `json:"suggestion_ids"`
}

// Duration returns the segment length in seconds.
func (s *Segment) Duration() float64 {
	return s.End - s.Start
}

// DictCandidate is the (wrong, correct, category) triple carried by
// suggestions that propose a new dictionary rule.
type DictCandidate struct {
	Wrong    string `json:"wrong"`
	Correct  string `json:"correct"`
	Category string `json:"category"`
}

// Suggestion is a proposed correction to one segment's text, produced by an
// automated review pass. Immutable once created.
type Suggestion struct {
	ID              string          `json:"id" db:"id"`
	SegmentID       int             `json:"segment_id" db:"segment_id"`
	Kind            SuggestionKind  `json:"kind" db:"kind"`
	Field           SuggestionField `json:"field" db:"field"`
	Original        string          `json:"original" db:"original"`
	Proposed        string          `json:"proposed" db:"proposed"`
	Reason          string          `json:"reason" db:"reason"`
	Confidence      float64         `json:"confidence" db:"confidence"`
	IsDictCandidate bool            `json:"is_dict_candidate" db:"is_dict_candidate"`
	DictCandidate   *DictCandidate  `json:"dict_candidate,omitempty"`
}

// PendingSuggestion accumulates repeated dictionary candidates across runs.
// At most one row exists per (wrong, correct) pair.
type PendingSuggestion struct {
	ID               string    `json:"id" db:"id"`
	Wrong            string    `json:"wrong" db:"wrong"`
	Correct          string    `json:"correct" db:"correct"`
	Category         string    `json:"category" db:"category"`
	OccurrenceCount  int       `json:"occurrence_count" db:"occurrence_count"`
	Confidence       float64   `json:"confidence" db:"confidence"`
	FirstSeen        time.Time `json:"first_seen" db:"first_seen"`
	LastSeen         time.Time `json:"last_seen" db:"last_seen"`
	SourceSegmentIDs []int     `json:"source_segment_ids"`
}

// DictionaryEntry is a confirmed misrecognition-correction rule applied to
// future transcripts.
type DictionaryEntry struct {
	ID        int       `json:"id" db:"id"`
	Wrong     string    `json:"wrong" db:"wrong"`
	Correct   string    `json:"correct" db:"correct"`
	Category  string    `json:"category" db:"category"`
	IsEnabled bool      `json:"is_enabled" db:"is_enabled"`
	UsedCount int       `json:"used_count" db:"used_count"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ApplicationLogEntry records one dictionary substitution applied to a segment.
type ApplicationLogEntry struct {
	SegmentID    int       `json:"segment_id"`
	EntryID      int       `json:"entry_id"`
	Wrong        string    `json:"wrong"`
	Correct      string    `json:"correct"`
	OriginalText string    `json:"original_text"`
	ModifiedText string    `json:"modified_text"`
	AppliedAt    time.Time `json:"applied_at"`
}

// RunStats summarizes what a pipeline run produced and what it skipped.
type RunStats struct {
	TotalSegments      int                    `json:"total_segments"`
	SegmentsWithIssues int                    `json:"segments_with_issues"`
	SuggestionsByKind  map[SuggestionKind]int `json:"suggestions_by_kind"`
	DictCandidateCount int                    `json:"dict_candidate_count"`
	FailedBatches      int                    `json:"failed_batches"`
}
