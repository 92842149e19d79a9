package subtitle

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/mizuki-dev/subrefine/internal/errors"
)

// SecondsToASSTime converts seconds to the ASS time format H:MM:SS.cc.
// Negative inputs clamp to zero.
func SecondsToASSTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	secs := seconds - float64(hours*3600) - float64(minutes*60)
	return fmt.Sprintf("%d:%02d:%05.2f", hours, minutes, secs)
}

// ASSTimeToSeconds parses an ASS time string (e.g. "0:01:23.45") back into
// seconds.
func ASSTimeToSeconds(timeStr string) (float64, error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 3 {
		return 0, apperrors.New(apperrors.CodeInvalidArg, "invalid ASS time format: "+timeStr)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeInvalidArg, "invalid ASS time format: "+timeStr)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeInvalidArg, "invalid ASS time format: "+timeStr)
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeInvalidArg, "invalid ASS time format: "+timeStr)
	}

	return float64(hours)*3600 + float64(minutes)*60 + seconds, nil
}

// FormatDuration renders a duration in seconds as a human-readable string
// like "1h 23m 45s".
func FormatDuration(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	secs := int(seconds) % 60

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", secs))
	return strings.Join(parts, " ")
}
