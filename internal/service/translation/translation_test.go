package translation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mizuki-dev/subrefine/internal/errors"
	"github.com/mizuki-dev/subrefine/internal/model"
)

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
	return "", nil
}

func TestTranslateSegments_SetsTargets(t *testing.T) {
	client := &fakeClient{responses: []string{"1. Hello\n2. World"}}
	s := NewService(client, 10, nil)

	segments := []*model.Segment{
		{ID: 1, TextSource: "こんにちは"},
		{ID: 2, TextSource: "世界"},
	}
	err := s.TranslateSegments(context.Background(), segments, "ja", "en")
	require.NoError(t, err)

	assert.Equal(t, "Hello", segments[0].TextTarget)
	assert.Equal(t, "World", segments[1].TextTarget)

	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "Japanese")
	assert.Contains(t, client.prompts[0], "English")
	assert.Contains(t, client.prompts[0], "1. こんにちは")
}

func TestTranslateSegments_Batching(t *testing.T) {
	client := &fakeClient{responses: []string{
		"1. one\n2. two",
		"1. three",
	}}
	s := NewService(client, 2, nil)

	segments := []*model.Segment{
		{ID: 1, TextSource: "a"},
		{ID: 2, TextSource: "b"},
		{ID: 3, TextSource: "c"},
	}
	err := s.TranslateSegments(context.Background(), segments, "ja", "en")
	require.NoError(t, err)

	assert.Len(t, client.prompts, 2)
	assert.Equal(t, "one", segments[0].TextTarget)
	assert.Equal(t, "two", segments[1].TextTarget)
	// Numbering restarts per batch.
	assert.Equal(t, "three", segments[2].TextTarget)
}

func TestTranslateSegments_MissingLineLeavesTargetEmpty(t *testing.T) {
	client := &fakeClient{responses: []string{"1. Hello"}}
	s := NewService(client, 10, nil)

	segments := []*model.Segment{
		{ID: 1, TextSource: "a"},
		{ID: 2, TextSource: "b"},
	}
	err := s.TranslateSegments(context.Background(), segments, "ja", "en")
	require.NoError(t, err)

	assert.Equal(t, "Hello", segments[0].TextTarget)
	assert.Empty(t, segments[1].TextTarget)
}

func TestTranslateSegments_BatchFailureSkipsBatch(t *testing.T) {
	client := &fakeClient{
		responses: []string{"", "1. ok"},
		errs:      []error{apperrors.New(apperrors.CodeExternal, "http 400: bad request"), nil},
	}
	s := NewService(client, 1, nil)

	segments := []*model.Segment{
		{ID: 1, TextSource: "a"},
		{ID: 2, TextSource: "b"},
	}
	err := s.TranslateSegments(context.Background(), segments, "ja", "en")
	require.NoError(t, err)

	assert.Empty(t, segments[0].TextTarget)
	assert.Equal(t, "ok", segments[1].TextTarget)
}

func TestTranslateSegments_AuthErrorAborts(t *testing.T) {
	client := &fakeClient{errs: []error{apperrors.New(apperrors.CodeAuth, "http 401")}}
	s := NewService(client, 10, nil)

	segments := []*model.Segment{{ID: 1, TextSource: "a"}}
	err := s.TranslateSegments(context.Background(), segments, "ja", "en")
	require.Error(t, err)
	assert.True(t, apperrors.IsAuth(err))
}

func TestTranslateSegments_TransientErrorRetried(t *testing.T) {
	client := &fakeClient{
		responses: []string{"", "1. recovered"},
		errs:      []error{apperrors.New(apperrors.CodeRateLimited, "http 429"), nil},
	}
	s := NewService(client, 10, nil)
	s.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	segments := []*model.Segment{{ID: 1, TextSource: "a"}}
	err := s.TranslateSegments(context.Background(), segments, "ja", "en")
	require.NoError(t, err)
	assert.Equal(t, "recovered", segments[0].TextTarget)
	assert.Len(t, client.prompts, 2)
}

func TestParseNumberedResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
		expected map[int]string
	}{
		{
			name:     "dot separator",
			response: "1. Hello\n2. World",
			expected: map[int]string{1: "Hello", 2: "World"},
		},
		{
			name:     "colon separator",
			response: "1: Hello\n2: World",
			expected: map[int]string{1: "Hello", 2: "World"},
		},
		{
			name:     "skips unnumbered lines",
			response: "Here are the translations:\n1. Hello\n\n2. World",
			expected: map[int]string{1: "Hello", 2: "World"},
		},
		{
			name:     "leading whitespace",
			response: "  1. Hello",
			expected: map[int]string{1: "Hello"},
		},
		{
			name:     "empty response",
			response: "",
			expected: map[int]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseNumberedResponse(tt.response))
		})
	}
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "Japanese", languageName("ja"))
	assert.Equal(t, "English", languageName("EN"))
	assert.Equal(t, "tlh", languageName("tlh"))
}
