package review

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	apperrors "github.com/mizuki-dev/subrefine/internal/errors"
	"github.com/mizuki-dev/subrefine/internal/model"
	"github.com/mizuki-dev/subrefine/internal/service/common"
	"github.com/mizuki-dev/subrefine/internal/service/store"
)

const defaultBatchSize = 20

// check describes one specialized review pass.
type check struct {
	kind        model.SuggestionKind
	label       string
	instruction string
	wholeCorpus bool
}

// The three checks run in a fixed order so later checks see the full,
// most-current segment text. Consistency needs cross-segment comparison and
// therefore reviews the whole corpus as a single batch.
var checks = []check{
	{
		kind:  model.KindMisrecognition,
		label: "misrecognition check",
		instruction: "Review each segment's source text for speech-recognition errors: " +
			"homophone confusions, garbled names, and domain terms transcribed phonetically. " +
			"Corrections that look like recurring recognition mistakes should be flagged as " +
			"dictionary candidates with field \"source_text\".",
	},
	{
		kind:  model.KindTranslation,
		label: "translation quality check",
		instruction: "Review each segment's target text against its source text for translation " +
			"problems: mistranslations, omissions, and unnatural phrasing. Propose corrections " +
			"with field \"target_text\".",
	},
	{
		kind:  model.KindConsistency,
		label: "consistency check",
		instruction: "Compare all segments with each other and flag terms, names, or phrases " +
			"that are rendered inconsistently across segments. Propose the dominant rendering " +
			"for the outliers, using the field of the text that should change.",
		wholeCorpus: true,
	},
}

// Aggregator runs the three specialized checks through the batched reviewer,
// links resulting suggestions to segments, and keeps segment status current.
type Aggregator struct {
	reviewer  *Reviewer
	client    common.Client
	batchSize int
	sink      common.ProgressSink
	logger    *slog.Logger
	newID     func() string
}

// NewAggregator creates a suggestion aggregator. sink may be nil.
func NewAggregator(reviewer *Reviewer, client common.Client, batchSize int, sink common.ProgressSink, logger *slog.Logger) *Aggregator {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		reviewer:  reviewer,
		client:    client,
		batchSize: batchSize,
		sink:      sink,
		logger:    logger,
		newID:     uuid.NewString,
	}
}

// Run executes misrecognition, translation-quality, and consistency checks
// in order, appending each check's suggestions to the store before the next
// check starts. It returns the combined failed-batch manifest; only an auth
// error from the review service fails the operation.
func (a *Aggregator) Run(ctx context.Context, st *store.Store) ([]BatchFailure, error) {
	if st.Len() == 0 {
		for i, chk := range checks {
			common.NotifyProgress(a.sink, chk.label, float64(i+1)/float64(len(checks)))
		}
		return nil, nil
	}

	var failures []BatchFailure
	for i, chk := range checks {
		batchSize := a.batchSize
		if chk.wholeCorpus {
			batchSize = st.Len()
		}

		findings, batchFailures, err := a.reviewer.Review(ctx, st.Segments(), batchSize, a.callFor(chk))
		if err != nil {
			return nil, err
		}
		failures = append(failures, batchFailures...)

		for _, finding := range findings {
			suggestion := &model.Suggestion{
				ID:              a.newID(),
				SegmentID:       finding.SegmentID,
				Kind:            finding.Kind,
				Field:           finding.Field,
				Original:        finding.Original,
				Proposed:        finding.Proposed,
				Reason:          finding.Reason,
				Confidence:      finding.Confidence,
				IsDictCandidate: finding.IsDictCandidate,
				DictCandidate:   finding.DictCandidate,
			}
			if err := st.AddSuggestion(suggestion); err != nil {
				// Data-integrity warning, never fatal.
				a.logger.Warn("finding references nonexistent segment",
					"check", chk.kind,
					"segment_id", finding.SegmentID)
			}
		}

		common.NotifyProgress(a.sink, chk.label, float64(i+1)/float64(len(checks)))
	}
	return failures, nil
}

// segmentSnapshot is what a review call shows the LLM about one segment.
type segmentSnapshot struct {
	ID     int    `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// callFor adapts one check into a batched-reviewer call: it renders the
// batch into a prompt, invokes the LLM, and parses findings at the strict
// schema boundary.
func (a *Aggregator) callFor(chk check) CallFunc {
	return func(ctx context.Context, batch []*model.Segment) ([]Finding, error) {
		prompt, err := buildPrompt(chk.instruction, batch)
		if err != nil {
			return nil, err
		}

		response, err := a.client.Complete(ctx, prompt)
		if err != nil {
			return nil, err
		}

		findings, dropped, err := parseFindings(chk.kind, response)
		if err != nil {
			return nil, err
		}
		if dropped > 0 {
			a.logger.Warn("invalid finding records filtered",
				"check", chk.kind,
				"dropped", dropped)
		}
		return findings, nil
	}
}

func buildPrompt(instruction string, batch []*model.Segment) (string, error) {
	snapshots := make([]segmentSnapshot, 0, len(batch))
	for _, seg := range batch {
		snapshots = append(snapshots, segmentSnapshot{
			ID:     seg.ID,
			Source: seg.TextSource,
			Target: seg.TextTarget,
		})
	}
	encoded, err := json.Marshal(snapshots)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to encode segment snapshots")
	}

	return fmt.Sprintf(`You are reviewing machine-generated subtitles.

%s

Respond with only a JSON array. Each element must have: "segment_id" (int),
"field" ("source_text" or "target_text"), "original" (string), "proposed"
(string), "reason" (string), "confidence" (number between 0.0 and 1.0),
"is_dict_candidate" (bool), and, only when is_dict_candidate is true,
"dict_candidate" ({"wrong": string, "correct": string, "category": string}).
Return an empty array when nothing needs correction.

Segments:
%s`, instruction, string(encoded)), nil
}
