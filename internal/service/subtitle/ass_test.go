package subtitle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mizuki-dev/subrefine/internal/errors"
	"github.com/mizuki-dev/subrefine/internal/model"
)

func sampleSegments() []*model.Segment {
	return []*model.Segment{
		{ID: 1, Start: 0.0, End: 2.5, Speaker: "SPEAKER_00", TextSource: "こんにちは", TextTarget: "Hello"},
		{ID: 2, Start: 3.0, End: 5.0, Speaker: "SPEAKER_01", TextSource: "元気ですか", TextTarget: "How are you"},
	}
}

func TestGenerate_Structure(t *testing.T) {
	content, err := Generate(sampleSegments(), false)
	require.NoError(t, err)

	assert.Contains(t, content, "[Script Info]")
	assert.Contains(t, content, "[V4+ Styles]")
	assert.Contains(t, content, "[Events]")
	assert.Contains(t, content, "Style: SPEAKER_00,")
	assert.Contains(t, content, "Style: SPEAKER_01,")
	// The unknown style is always present as a fallback.
	assert.Contains(t, content, "Style: "+model.SpeakerUnknown+",")
}

func TestGenerate_DialogueLines(t *testing.T) {
	content, err := Generate(sampleSegments(), false)
	require.NoError(t, err)

	assert.Contains(t, content, "Dialogue: 0,0:00:00.00,0:00:02.50,SPEAKER_00,,0,0,0,,こんにちは")
	assert.Contains(t, content, "Dialogue: 0,0:00:03.00,0:00:05.00,SPEAKER_01,,0,0,0,,元気ですか")
	assert.NotContains(t, content, "Hello")
}

func TestGenerate_WithTranslation(t *testing.T) {
	content, err := Generate(sampleSegments(), true)
	require.NoError(t, err)

	assert.Contains(t, content, `こんにちは\NHello`)
	assert.Contains(t, content, `元気ですか\NHow are you`)
}

func TestGenerate_TranslationMissingStaysSingleLine(t *testing.T) {
	segments := []*model.Segment{
		{ID: 1, Start: 0.0, End: 1.0, Speaker: "SPEAKER_00", TextSource: "text"},
	}
	content, err := Generate(segments, true)
	require.NoError(t, err)
	assert.Contains(t, content, ",text\n")
	assert.NotContains(t, content, `text\N`)
}

func TestGenerate_UnknownSpeakerColorFallback(t *testing.T) {
	segments := []*model.Segment{
		{ID: 1, Start: 0.0, End: 1.0, Speaker: "SPEAKER_17", TextSource: "text"},
	}
	content, err := Generate(segments, false)
	require.NoError(t, err)

	// Off-palette speakers get the unknown gray.
	assert.Contains(t, content, "Style: SPEAKER_17,Arial,48,"+speakerColors[model.SpeakerUnknown])
}

func TestGenerate_EscapesText(t *testing.T) {
	segments := []*model.Segment{
		{ID: 1, Start: 0.0, End: 1.0, Speaker: "SPEAKER_00", TextSource: "line1\nline2 {tag}"},
	}
	content, err := Generate(segments, false)
	require.NoError(t, err)
	assert.Contains(t, content, `line1\Nline2 \{tag\}`)
}

func TestGenerate_Empty(t *testing.T) {
	_, err := Generate(nil, false)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidArg))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "subtitles.ass")

	err := WriteFile(path, sampleSegments(), true)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[Script Info]"))
}
