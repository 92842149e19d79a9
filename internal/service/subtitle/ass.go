package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/mizuki-dev/subrefine/internal/errors"
	"github.com/mizuki-dev/subrefine/internal/model"
)

// Speaker colors in ASS BGR format (&HBBGGRR). Speakers beyond the palette
// fall back to the unknown style.
var speakerColors = map[string]string{
	"SPEAKER_00":         "&H00FFFFFF", // white
	"SPEAKER_01":         "&H0000FFFF", // yellow
	"SPEAKER_02":         "&H00FF8080", // light blue
	"SPEAKER_03":         "&H008000FF", // orange
	model.SpeakerUnknown: "&H00C0C0C0", // gray
}

const styleTemplate = "Style: %s,Arial,48,%s,&H000000FF,&H00000000,&H80000000," +
	"0,0,0,0,100,100,0,0,1,2,1,2,10,10,10,1"

const assHeader = `[Script Info]
Title: Generated Subtitles
ScriptType: v4.00+
PlayResX: 1920
PlayResY: 1080
WrapStyle: 0

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
%s

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`

// Generate renders segments as an ASS subtitle document with one style per
// speaker. When includeTranslation is set, the target text is stacked below
// the source text.
func Generate(segments []*model.Segment, includeTranslation bool) (string, error) {
	if len(segments) == 0 {
		return "", apperrors.New(apperrors.CodeInvalidArg, "no segments provided")
	}

	speakers := make(map[string]bool)
	for _, seg := range segments {
		speakers[seg.Speaker] = true
	}

	var dialogues []string
	for _, seg := range segments {
		text := escapeText(seg.TextSource)
		if includeTranslation && seg.TextTarget != "" {
			text = text + `\N` + escapeText(seg.TextTarget)
		}
		dialogues = append(dialogues, fmt.Sprintf("Dialogue: 0,%s,%s,%s,,0,0,0,,%s",
			SecondsToASSTime(seg.Start),
			SecondsToASSTime(seg.End),
			seg.Speaker,
			text))
	}

	header := fmt.Sprintf(assHeader, generateStyles(speakers))
	return header + strings.Join(dialogues, "\n") + "\n", nil
}

// WriteFile generates the ASS document and writes it to path, creating
// parent directories as needed.
func WriteFile(path string, segments []*model.Segment, includeTranslation bool) error {
	content, err := Generate(segments, includeTranslation)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to create output directory")
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to write subtitle file")
	}
	return nil
}

// generateStyles emits one style line per speaker, in sorted order, always
// including the unknown style.
func generateStyles(speakers map[string]bool) string {
	names := make([]string, 0, len(speakers)+1)
	for speaker := range speakers {
		names = append(names, speaker)
	}
	if !speakers[model.SpeakerUnknown] {
		names = append(names, model.SpeakerUnknown)
	}
	sort.Strings(names)

	var styles []string
	for _, name := range names {
		color, ok := speakerColors[name]
		if !ok {
			color = speakerColors[model.SpeakerUnknown]
		}
		styles = append(styles, fmt.Sprintf(styleTemplate, name, color))
	}
	return strings.Join(styles, "\n")
}

// escapeText makes raw text safe for the ASS events section.
func escapeText(text string) string {
	text = strings.ReplaceAll(text, "\n", `\N`)
	text = strings.ReplaceAll(text, "{", `\{`)
	text = strings.ReplaceAll(text, "}", `\}`)
	return text
}
