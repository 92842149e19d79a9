package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	apperrors "github.com/mizuki-dev/subrefine/internal/errors"
	"github.com/mizuki-dev/subrefine/internal/model"
)

// LoadInput reads transcript and diarization interval files produced by the
// external speech-to-text and diarization engines. The diarization path may
// be empty, in which case every segment ends up with the unknown speaker.
func LoadInput(transcriptPath, diarizationPath string) (Input, error) {
	var input Input

	if err := readJSONFile(transcriptPath, &input.Transcript); err != nil {
		return Input{}, err
	}
	for i, t := range input.Transcript {
		if t.End <= t.Start {
			return Input{}, apperrors.New(apperrors.CodeInvalidArg,
				fmt.Sprintf("transcript interval %d has end <= start", i))
		}
	}

	if diarizationPath != "" {
		if err := readJSONFile(diarizationPath, &input.Diarization); err != nil {
			return Input{}, err
		}
	}
	return input, nil
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInvalidArg, "failed to read input file "+path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return apperrors.Wrap(err, apperrors.CodeParse, "failed to parse input file "+path)
	}
	return nil
}

// WriteResult writes the run artifacts (segments, suggestions, application
// log, statistics) as one JSON document for downstream consumers.
func WriteResult(path string, result *Result) error {
	doc := struct {
		Segments       []*model.Segment            `json:"segments"`
		Suggestions    []*model.Suggestion         `json:"suggestions"`
		ApplicationLog []model.ApplicationLogEntry `json:"application_log"`
		Stats          model.RunStats              `json:"stats"`
	}{
		Segments:       result.Segments,
		Suggestions:    result.Suggestions,
		ApplicationLog: result.ApplicationLog,
		Stats:          result.Stats,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to encode run result")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to write run result")
	}
	return nil
}
