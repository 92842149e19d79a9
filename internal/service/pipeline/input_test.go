package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mizuki-dev/subrefine/internal/errors"
	"github.com/mizuki-dev/subrefine/internal/model"
)

func writeTempJSON(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadInput(t *testing.T) {
	transcript := writeTempJSON(t, "transcript.json",
		`[{"start": 0.0, "end": 2.0, "text": "hello"}, {"start": 2.5, "end": 4.0, "text": "world"}]`)
	diarization := writeTempJSON(t, "diarization.json",
		`[{"start": 0.0, "end": 4.0, "speaker": "SPEAKER_00"}]`)

	input, err := LoadInput(transcript, diarization)
	require.NoError(t, err)

	require.Len(t, input.Transcript, 2)
	assert.Equal(t, "hello", input.Transcript[0].Text)
	require.Len(t, input.Diarization, 1)
	assert.Equal(t, "SPEAKER_00", input.Diarization[0].Speaker)
}

func TestLoadInput_DiarizationOptional(t *testing.T) {
	transcript := writeTempJSON(t, "transcript.json",
		`[{"start": 0.0, "end": 2.0, "text": "hello"}]`)

	input, err := LoadInput(transcript, "")
	require.NoError(t, err)
	assert.Len(t, input.Transcript, 1)
	assert.Empty(t, input.Diarization)
}

func TestLoadInput_MissingFile(t *testing.T) {
	_, err := LoadInput(filepath.Join(t.TempDir(), "missing.json"), "")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidArg))
}

func TestLoadInput_MalformedJSON(t *testing.T) {
	transcript := writeTempJSON(t, "transcript.json", "not json")
	_, err := LoadInput(transcript, "")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeParse))
}

func TestLoadInput_RejectsInvertedInterval(t *testing.T) {
	transcript := writeTempJSON(t, "transcript.json",
		`[{"start": 3.0, "end": 2.0, "text": "backwards"}]`)
	_, err := LoadInput(transcript, "")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidArg))
}

func TestWriteResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	result := &Result{
		Segments: []*model.Segment{
			{ID: 1, TextSource: "hello", Status: model.StatusOK},
		},
		Suggestions: []*model.Suggestion{
			{ID: "s1", SegmentID: 1, Kind: model.KindTranslation, Confidence: 0.6},
		},
		Stats: model.RunStats{TotalSegments: 1},
	}

	require.NoError(t, WriteResult(path, result))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		Segments    []*model.Segment    `json:"segments"`
		Suggestions []*model.Suggestion `json:"suggestions"`
		Stats       model.RunStats      `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Segments, 1)
	assert.Equal(t, "hello", doc.Segments[0].TextSource)
	require.Len(t, doc.Suggestions, 1)
	assert.Equal(t, 1, doc.Stats.TotalSegments)
}
