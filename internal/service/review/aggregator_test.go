package review

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mizuki-dev/subrefine/internal/errors"
	"github.com/mizuki-dev/subrefine/internal/model"
	"github.com/mizuki-dev/subrefine/internal/service/store"
)

// fakeClient returns canned responses in call order.
type fakeClient struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	prompts   []string
}

func (c *fakeClient) Complete(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := len(c.prompts)
	c.prompts = append(c.prompts, prompt)
	if idx < len(c.errs) && c.errs[idx] != nil {
		return "", c.errs[idx]
	}
	if idx < len(c.responses) {
		return c.responses[idx], nil
	}
	return "[]", nil
}

// recordingSink captures progress notifications.
type recordingSink struct {
	labels    []string
	fractions []float64
}

func (s *recordingSink) Notify(label string, fraction float64) {
	s.labels = append(s.labels, label)
	s.fractions = append(s.fractions, fraction)
}

func newAggregatorStore(t *testing.T, n int) *store.Store {
	t.Helper()
	segments := make([]*model.Segment, 0, n)
	for i := 1; i <= n; i++ {
		segments = append(segments, &model.Segment{
			ID:         i,
			TextSource: fmt.Sprintf("source %d", i),
			TextTarget: fmt.Sprintf("target %d", i),
			Status:     model.StatusOK,
		})
	}
	st, err := store.New(segments)
	require.NoError(t, err)
	return st
}

func newTestAggregator(client *fakeClient, sink *recordingSink) *Aggregator {
	reviewer := NewReviewer(1, time.Minute, nil)
	reviewer.sleep = noSleep
	agg := NewAggregator(reviewer, client, 20, sink, nil)
	seq := 0
	agg.newID = func() string {
		seq++
		return fmt.Sprintf("sug-%d", seq)
	}
	return agg
}

func TestAggregatorRun_CollectsSuggestionsAcrossChecks(t *testing.T) {
	client := &fakeClient{responses: []string{
		`[{"segment_id": 1, "field": "source_text", "original": "source 1", "proposed": "fixed 1",
		   "reason": "misheard", "confidence": 0.9, "is_dict_candidate": true,
		   "dict_candidate": {"wrong": "source 1", "correct": "fixed 1", "category": "jargon"}}]`,
		`[]`,
		`[{"segment_id": 2, "field": "target_text", "original": "target 2", "proposed": "better 2",
		   "reason": "inconsistent", "confidence": 0.6}]`,
	}}
	sink := &recordingSink{}
	agg := newTestAggregator(client, sink)
	st := newAggregatorStore(t, 2)

	failures, err := agg.Run(context.Background(), st)
	require.NoError(t, err)
	assert.Empty(t, failures)

	suggestions := st.Suggestions()
	require.Len(t, suggestions, 2)

	assert.Equal(t, "sug-1", suggestions[0].ID)
	assert.Equal(t, model.KindMisrecognition, suggestions[0].Kind)
	assert.True(t, suggestions[0].IsDictCandidate)
	assert.Equal(t, model.KindConsistency, suggestions[1].Kind)

	seg1, _ := st.Get(1)
	assert.Equal(t, model.StatusError, seg1.Status)
	seg2, _ := st.Get(2)
	assert.Equal(t, model.StatusWarning, seg2.Status)

	// One call per check when everything fits into one batch.
	assert.Len(t, client.prompts, 3)
}

func TestAggregatorRun_ProgressPerCheck(t *testing.T) {
	client := &fakeClient{}
	sink := &recordingSink{}
	agg := newTestAggregator(client, sink)
	st := newAggregatorStore(t, 1)

	_, err := agg.Run(context.Background(), st)
	require.NoError(t, err)

	require.Len(t, sink.fractions, 3)
	assert.InDelta(t, 1.0/3.0, sink.fractions[0], 1e-9)
	assert.InDelta(t, 2.0/3.0, sink.fractions[1], 1e-9)
	assert.InDelta(t, 1.0, sink.fractions[2], 1e-9)
	assert.Equal(t, []string{"misrecognition check", "translation quality check", "consistency check"}, sink.labels)
}

func TestAggregatorRun_EmptyStore(t *testing.T) {
	client := &fakeClient{}
	sink := &recordingSink{}
	agg := newTestAggregator(client, sink)
	st, err := store.New(nil)
	require.NoError(t, err)

	failures, err := agg.Run(context.Background(), st)
	require.NoError(t, err)
	assert.Empty(t, failures)
	assert.Empty(t, client.prompts)
	assert.Len(t, sink.fractions, 3)
}

func TestAggregatorRun_UnknownSegmentFindingDropped(t *testing.T) {
	client := &fakeClient{responses: []string{
		`[{"segment_id": 99, "field": "source_text", "proposed": "x", "confidence": 0.9}]`,
	}}
	agg := newTestAggregator(client, &recordingSink{})
	st := newAggregatorStore(t, 1)

	failures, err := agg.Run(context.Background(), st)
	require.NoError(t, err)
	assert.Empty(t, failures)
	assert.Empty(t, st.Suggestions())

	seg, _ := st.Get(1)
	assert.Equal(t, model.StatusOK, seg.Status)
}

func TestAggregatorRun_ParseFailureRecordedNotFatal(t *testing.T) {
	client := &fakeClient{responses: []string{
		`not json at all`,
		`[{"segment_id": 1, "field": "target_text", "original": "t", "proposed": "u", "confidence": 0.7}]`,
		`[]`,
	}}
	agg := newTestAggregator(client, &recordingSink{})
	st := newAggregatorStore(t, 1)

	failures, err := agg.Run(context.Background(), st)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Reason, "JSON")

	suggestions := st.Suggestions()
	require.Len(t, suggestions, 1)
	assert.Equal(t, model.KindTranslation, suggestions[0].Kind)
}

func TestAggregatorRun_AuthErrorFatal(t *testing.T) {
	client := &fakeClient{errs: []error{
		apperrors.New(apperrors.CodeAuth, "http 401: invalid api key"),
	}}
	agg := newTestAggregator(client, &recordingSink{})
	st := newAggregatorStore(t, 1)

	_, err := agg.Run(context.Background(), st)
	require.Error(t, err)
	assert.True(t, apperrors.IsAuth(err))
}

func TestAggregatorRun_ConsistencyUsesSingleBatch(t *testing.T) {
	client := &fakeClient{}
	reviewer := NewReviewer(1, time.Minute, nil)
	reviewer.sleep = noSleep
	// Batch size 2 over 5 segments: 3 batches for each per-batch check,
	// but consistency must still see the whole corpus at once.
	agg := NewAggregator(reviewer, client, 2, nil, nil)
	st := newAggregatorStore(t, 5)

	_, err := agg.Run(context.Background(), st)
	require.NoError(t, err)
	assert.Len(t, client.prompts, 3+3+1)
}
