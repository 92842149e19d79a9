package pipeline

import (
	"context"
	"log/slog"

	"github.com/gofrs/flock"

	apperrors "github.com/mizuki-dev/subrefine/internal/errors"
	"github.com/mizuki-dev/subrefine/internal/model"
	"github.com/mizuki-dev/subrefine/internal/service/common"
	"github.com/mizuki-dev/subrefine/internal/service/dictionary"
	"github.com/mizuki-dev/subrefine/internal/service/merge"
	"github.com/mizuki-dev/subrefine/internal/service/review"
	"github.com/mizuki-dev/subrefine/internal/service/store"
)

// DictionaryRepository is the slice of the dictionary store the pipeline
// reads: enabled entries in ID order, plus the usage counter it reports to.
type DictionaryRepository interface {
	ListEnabled(ctx context.Context) ([]*model.DictionaryEntry, error)
	IncrementUsed(ctx context.Context, id int) error
}

// Translator sets the target text on segments.
type Translator interface {
	TranslateSegments(ctx context.Context, segments []*model.Segment, sourceLang, targetLang string) error
}

// SuggestionReviewer runs the three review checks over the segment store.
type SuggestionReviewer interface {
	Run(ctx context.Context, st *store.Store) ([]review.BatchFailure, error)
}

// Absorber accumulates dictionary candidates into the pending store.
type Absorber interface {
	Absorb(ctx context.Context, suggestions []*model.Suggestion) (created, merged int, err error)
}

// RunRepository persists the run artifacts for downstream consumers.
type RunRepository interface {
	SaveRun(ctx context.Context, mediaName string, result *Result) error
}

// Input is the pair of engine outputs the pipeline consolidates.
type Input struct {
	Transcript  []model.TranscriptInterval  `json:"transcript"`
	Diarization []model.DiarizationInterval `json:"diarization"`
}

// Options controls a single run.
type Options struct {
	MediaName   string
	SourceLang  string
	TargetLang  string
	Consolidate bool
	MaxGap      float64
	MaxDuration float64
}

// Result is everything a run produces: the authoritative segment list, the
// suggestion list, the dictionary application log, and run statistics.
type Result struct {
	Segments       []*model.Segment
	Suggestions    []*model.Suggestion
	ApplicationLog []model.ApplicationLogEntry
	FailedBatches  []review.BatchFailure
	Stats          model.RunStats
}

// Deps wires the pipeline's collaborators. Runs and Sink may be nil; Lock
// may be nil when the caller already serializes runs.
type Deps struct {
	Dictionary DictionaryRepository
	Applier    *dictionary.Applier
	Translator Translator
	Aggregator SuggestionReviewer
	Tracker    Absorber
	Runs       RunRepository
	Sink       common.ProgressSink
	Lock       *flock.Flock
	Logger     *slog.Logger
}

// Pipeline runs the stages in strict order: merge, dictionary application,
// translation, review, learning absorption. Exactly one stage mutates the
// segment store at a time.
type Pipeline struct {
	deps Deps
}

// New creates a pipeline from its dependencies.
func New(deps Deps) (*Pipeline, error) {
	if deps.Dictionary == nil || deps.Applier == nil || deps.Translator == nil ||
		deps.Aggregator == nil || deps.Tracker == nil {
		return nil, apperrors.New(apperrors.CodeInvalidArg, "pipeline requires dictionary, applier, translator, aggregator, and tracker")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Pipeline{deps: deps}, nil
}

// Run executes the full pipeline over the given input. Failures other than
// authentication errors degrade into statistics; the result is always usable,
// possibly partial.
func (p *Pipeline) Run(ctx context.Context, input Input, opts Options) (*Result, error) {
	if p.deps.Lock != nil {
		ok, err := p.deps.Lock.TryLock()
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to acquire store lock")
		}
		if !ok {
			return nil, apperrors.New(apperrors.CodeConflict, "another run holds the dictionary store lock")
		}
		defer p.deps.Lock.Unlock()
	}

	logger := p.deps.Logger
	sink := p.deps.Sink

	common.NotifyProgress(sink, "merging segments", 0.05)
	segments := merge.Segments(input.Transcript, input.Diarization)
	if opts.Consolidate {
		segments = merge.Consolidate(segments, opts.MaxGap, opts.MaxDuration)
	}
	st, err := store.New(segments)
	if err != nil {
		return nil, err
	}

	common.NotifyProgress(sink, "applying dictionary", 0.15)
	applied := p.applyDictionary(ctx, st)

	common.NotifyProgress(sink, "translating", 0.30)
	if err := p.deps.Translator.TranslateSegments(ctx, st.Segments(), opts.SourceLang, opts.TargetLang); err != nil {
		return nil, err
	}

	common.NotifyProgress(sink, "reviewing", 0.50)
	failures, err := p.deps.Aggregator.Run(ctx, st)
	if err != nil {
		return nil, err
	}

	common.NotifyProgress(sink, "collecting dictionary candidates", 0.90)
	created, merged, err := p.deps.Tracker.Absorb(ctx, st.Suggestions())
	if err != nil {
		logger.Warn("failed to absorb dictionary candidates", "error", err)
	} else if created+merged > 0 {
		logger.Info("dictionary candidates absorbed", "created", created, "merged", merged)
	}

	result := &Result{
		Segments:       st.Segments(),
		Suggestions:    st.Suggestions(),
		ApplicationLog: applied.Log,
		FailedBatches:  failures,
		Stats:          st.Stats(len(failures)),
	}

	if p.deps.Runs != nil {
		if err := p.deps.Runs.SaveRun(ctx, opts.MediaName, result); err != nil {
			logger.Warn("failed to persist run artifacts", "error", err)
		}
	}

	common.NotifyProgress(sink, "complete", 1.0)
	return result, nil
}

// applyDictionary loads enabled entries, applies them, and reports usage
// back to the store. Store trouble degrades to a warning; the run continues
// with whatever entries were available.
func (p *Pipeline) applyDictionary(ctx context.Context, st *store.Store) *dictionary.Result {
	entries, err := p.deps.Dictionary.ListEnabled(ctx)
	if err != nil {
		p.deps.Logger.Warn("failed to load dictionary entries", "error", err)
		return &dictionary.Result{}
	}

	applied := p.deps.Applier.Apply(st.Segments(), entries)
	for _, id := range applied.UsedEntryIDs {
		if err := p.deps.Dictionary.IncrementUsed(ctx, id); err != nil {
			p.deps.Logger.Warn("failed to increment dictionary usage", "entry_id", id, "error", err)
		}
	}
	return applied
}
