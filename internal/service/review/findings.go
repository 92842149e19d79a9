package review

import (
	"encoding/json"
	"strings"

	apperrors "github.com/mizuki-dev/subrefine/internal/errors"
	"github.com/mizuki-dev/subrefine/internal/model"
)

// rawFinding is the duck-typed record shape the review service returns.
// It is validated against a strict schema here at the parse boundary.
type rawFinding struct {
	SegmentID       int      `json:"segment_id"`
	Field           string   `json:"field"`
	Original        string   `json:"original"`
	Proposed        string   `json:"proposed"`
	Reason          string   `json:"reason"`
	Confidence      float64  `json:"confidence"`
	IsDictCandidate bool     `json:"is_dict_candidate"`
	DictCandidate   *rawDict `json:"dict_candidate,omitempty"`
}

type rawDict struct {
	Wrong    string `json:"wrong"`
	Correct  string `json:"correct"`
	Category string `json:"category"`
}

// parseFindings decodes a review response into validated findings. A response
// that is not a JSON array is a parse failure (CodeParse); individual records
// that fail validation are filtered out and counted, never fatal.
func parseFindings(kind model.SuggestionKind, response string) ([]Finding, int, error) {
	trimmed := stripCodeFence(response)

	var raw []rawFinding
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return nil, 0, apperrors.Wrap(err, apperrors.CodeParse, "review response is not a JSON array")
	}

	var findings []Finding
	dropped := 0
	for _, r := range raw {
		finding, ok := validateFinding(kind, r)
		if !ok {
			dropped++
			continue
		}
		findings = append(findings, finding)
	}
	return findings, dropped, nil
}

// validateFinding enforces the suggestion invariants: a resolvable field,
// confidence within [0, 1], and a dictionary-candidate triple present iff
// the flag is set.
func validateFinding(kind model.SuggestionKind, r rawFinding) (Finding, bool) {
	if r.SegmentID <= 0 {
		return Finding{}, false
	}
	field := model.SuggestionField(r.Field)
	if field != model.FieldSourceText && field != model.FieldTargetText {
		return Finding{}, false
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return Finding{}, false
	}
	if r.Proposed == "" {
		return Finding{}, false
	}
	if r.IsDictCandidate {
		if r.DictCandidate == nil || r.DictCandidate.Wrong == "" || r.DictCandidate.Correct == "" {
			return Finding{}, false
		}
	} else if r.DictCandidate != nil {
		return Finding{}, false
	}

	finding := Finding{
		SegmentID:       r.SegmentID,
		Kind:            kind,
		Field:           field,
		Original:        r.Original,
		Proposed:        r.Proposed,
		Reason:          r.Reason,
		Confidence:      r.Confidence,
		IsDictCandidate: r.IsDictCandidate,
	}
	if r.DictCandidate != nil {
		finding.DictCandidate = &model.DictCandidate{
			Wrong:    r.DictCandidate.Wrong,
			Correct:  r.DictCandidate.Correct,
			Category: r.DictCandidate.Category,
		}
	}
	return finding, true
}

// stripCodeFence removes a surrounding markdown code fence if the model
// wrapped its JSON output in one.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
