package merge

import (
	"github.com/mizuki-dev/subrefine/internal/model"
)

// Segments merges transcript intervals with diarization output into subtitle
// segments. One segment is produced per transcript interval, in input order,
// carrying the speaker of the diarization interval with maximal temporal
// overlap. Segment IDs are the 1-based position in the output.
func Segments(transcript []model.TranscriptInterval, diarization []model.DiarizationInterval) []*model.Segment {
	segments := make([]*model.Segment, 0, len(transcript))
	for i, t := range transcript {
		segments = append(segments, &model.Segment{
			ID:         i + 1,
			Start:      t.Start,
			End:        t.End,
			Speaker:    bestSpeaker(t.Start, t.End, diarization),
			TextSource: t.Text,
			Status:     model.StatusOK,
		})
	}
	return segments
}

// bestSpeaker finds the speaker with maximal overlap against [start, end).
// The strict comparison keeps the first-encountered diarization interval on
// ties; zero overlap everywhere yields the unknown sentinel. Diarization
// intervals are not deduplicated: engines legitimately emit adjacent
// near-duplicate spans, and they simply compete here.
func bestSpeaker(start, end float64, diarization []model.DiarizationInterval) string {
	speaker := model.SpeakerUnknown
	bestOverlap := 0.0

	for _, d := range diarization {
		overlapStart := max(start, d.Start)
		overlapEnd := min(end, d.End)
		overlap := overlapEnd - overlapStart
		if overlap > bestOverlap {
			bestOverlap = overlap
			speaker = d.Speaker
		}
	}

	return speaker
}

// Consolidate merges consecutive segments from the same speaker when the gap
// between them is at most maxGap seconds and the combined span stays within
// maxDuration seconds. Segment IDs are reassigned to the 1-based position in
// the consolidated output.
func Consolidate(segments []*model.Segment, maxGap, maxDuration float64) []*model.Segment {
	if len(segments) == 0 {
		return segments
	}

	var consolidated []*model.Segment
	var current *model.Segment

	for _, seg := range segments {
		if current == nil {
			clone := *seg
			current = &clone
			continue
		}

		sameSpeaker := seg.Speaker == current.Speaker
		smallGap := seg.Start-current.End <= maxGap
		withinDuration := seg.End-current.Start <= maxDuration

		if sameSpeaker && smallGap && withinDuration {
			current.End = seg.End
			current.TextSource = current.TextSource + " " + seg.TextSource
		} else {
			consolidated = append(consolidated, current)
			clone := *seg
			current = &clone
		}
	}
	consolidated = append(consolidated, current)

	for i, seg := range consolidated {
		seg.ID = i + 1
	}
	return consolidated
}
