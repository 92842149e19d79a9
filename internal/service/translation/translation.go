package translation

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/mizuki-dev/subrefine/internal/errors"
	"github.com/mizuki-dev/subrefine/internal/model"
	"github.com/mizuki-dev/subrefine/internal/service/common"
)

const defaultBatchSize = 10

// Service translates segment source text in bounded batches through the LLM
// client. A batch that cannot be translated is logged and skipped; only an
// auth error aborts the stage.
type Service struct {
	client      common.Client
	batchSize   int
	maxAttempts int
	backoffBase time.Duration
	sleep       common.SleepFunc
	logger      *slog.Logger
}

// NewService creates a translation service.
func NewService(client common.Client, batchSize int, logger *slog.Logger) *Service {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client:      client,
		batchSize:   batchSize,
		maxAttempts: 3,
		backoffBase: time.Second,
		sleep:       common.Sleep,
		logger:      logger,
	}
}

// TranslateSegments sets TextTarget on each segment. Segments the service
// could not translate keep an empty target and are logged, not fatal.
func (s *Service) TranslateSegments(ctx context.Context, segments []*model.Segment, sourceLang, targetLang string) error {
	for start := 0; start < len(segments); start += s.batchSize {
		end := start + s.batchSize
		if end > len(segments) {
			end = len(segments)
		}
		batch := segments[start:end]

		translations, err := s.translateBatch(ctx, batch, sourceLang, targetLang)
		if err != nil {
			if apperrors.IsAuth(err) {
				return err
			}
			s.logger.Warn("translation batch failed",
				"first_segment", batch[0].ID,
				"size", len(batch),
				"error", err)
			continue
		}

		for i, seg := range batch {
			text, ok := translations[i+1]
			if !ok || text == "" {
				s.logger.Warn("translation missing for segment", "segment_id", seg.ID)
				continue
			}
			seg.TextTarget = text
		}
	}
	return nil
}

// translateBatch sends one numbered-line prompt and retries transient
// failures with exponential backoff.
func (s *Service) translateBatch(ctx context.Context, batch []*model.Segment, sourceLang, targetLang string) (map[int]string, error) {
	var lines []string
	for i, seg := range batch {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, seg.TextSource))
	}
	prompt := buildPrompt(languageName(sourceLang), languageName(targetLang), strings.Join(lines, "\n"))

	var response string
	err := common.Retry(ctx, s.maxAttempts, s.backoffBase, s.sleep, func(ctx context.Context) error {
		out, callErr := s.client.Complete(ctx, prompt)
		if callErr != nil {
			return callErr
		}
		response = out
		return nil
	})
	if err != nil {
		return nil, err
	}

	return parseNumberedResponse(response), nil
}

func buildPrompt(sourceLang, targetLang, input string) string {
	return fmt.Sprintf(`You are a professional subtitle translator.
Translate the following %s subtitle lines into natural, fluent %s.

Rules:
- Output numbered lines using the same numbers as the input.
- Output only the translations, no explanations.

Input:
%s

Output:`, sourceLang, targetLang, input)
}

// numberedLine matches lines like "1. translation" or "1: translation".
var numberedLine = regexp.MustCompile(`^\s*(\d+)[.:]\s*(.+)$`)

// parseNumberedResponse extracts numbered translations from the response.
// Numbers the model skipped are simply absent from the result.
func parseNumberedResponse(response string) map[int]string {
	translations := make(map[int]string)
	for _, line := range strings.Split(strings.TrimSpace(response), "\n") {
		match := numberedLine.FindStringSubmatch(strings.TrimSpace(line))
		if match == nil {
			continue
		}
		num, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		translations[num] = strings.TrimSpace(match[2])
	}
	return translations
}

// languageName maps a language code to the name used in prompts.
func languageName(code string) string {
	switch strings.ToLower(code) {
	case "en":
		return "English"
	case "ja":
		return "Japanese"
	case "zh":
		return "Chinese (Simplified)"
	case "ko":
		return "Korean"
	case "es":
		return "Spanish"
	case "fr":
		return "French"
	case "de":
		return "German"
	default:
		return code
	}
}
