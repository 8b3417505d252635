package segment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"dubsmart/internal/services"
)

var (
	// ErrSpanOutOfRange signals ASR spans referencing times outside the
	// track. Fatal: it means the transcriber and the track disagree.
	ErrSpanOutOfRange = services.NewCoded("span_out_of_range", "transcription span outside track duration")
	// ErrNoSegments signals that no synthesizable segment survived merging.
	ErrNoSegments = services.NewCoded("no_segments", "no usable segments after merge")
)

// spanSlack absorbs codec rounding at the track tail.
const spanSlack = 0.05

// FallbackSpeaker is the synthetic speaker used when diarization yields no
// turns at all.
const FallbackSpeaker = "S1"

// MergeParams tunes the merger. TrackSeconds bounds span validation;
// MergeGap is the largest same-speaker silence that still joins two ASR
// spans into one segment.
type MergeParams struct {
	TrackSeconds float64
	MergeGap     float64
}

// Merge reconciles diarization turns and ASR spans into ordered segments with
// no per-speaker overlap. Speaker ids are reassigned S1, S2, ... in order of
// first appearance. Deterministic for identical inputs.
func Merge(turns []SpeakerTurn, spans []TextSpan, params MergeParams) ([]Segment, error) {
	for _, span := range spans {
		if span.Start < 0 || span.End > params.TrackSeconds+spanSlack || span.End <= span.Start {
			return nil, fmt.Errorf("%w: [%.2f, %.2f] outside [0, %.2f]",
				ErrSpanOutOfRange, span.Start, span.End, params.TrackSeconds)
		}
	}

	turns = sortedTurns(turns)
	if len(turns) == 0 {
		turns = []SpeakerTurn{{Speaker: FallbackSpeaker, Start: 0, End: params.TrackSeconds}}
	}

	ordered := make([]TextSpan, len(spans))
	copy(ordered, spans)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Start < ordered[j].Start })

	// Attribute each ASR span to the diarization turn with maximal temporal
	// overlap; ties (including the all-zero-overlap case) resolve to the
	// earliest turn.
	speakerIDs := make(map[string]string)
	var merged []Segment
	for _, span := range ordered {
		turn := bestTurn(turns, span)
		id, ok := speakerIDs[turn.Speaker]
		if !ok {
			id = fmt.Sprintf("S%d", len(speakerIDs)+1)
			speakerIDs[turn.Speaker] = id
		}

		text := strings.TrimSpace(span.Text)
		if n := len(merged); n > 0 && merged[n-1].SpeakerID == id && span.Start-merged[n-1].End <= params.MergeGap {
			prev := &merged[n-1]
			if text != "" {
				if prev.SourceText == "" {
					prev.SourceText = text
				} else {
					prev.SourceText += " " + text
				}
			}
			if span.End > prev.End {
				prev.End = span.End
			}
			continue
		}
		merged = append(merged, Segment{
			SpeakerID:  id,
			Start:      span.Start,
			End:        span.End,
			SourceText: text,
		})
	}

	merged = lo.Filter(merged, func(seg Segment, _ int) bool {
		return seg.SourceText != ""
	})
	merged = coalesceSpeakerOverlaps(merged)
	if len(merged) == 0 {
		return nil, ErrNoSegments
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Start != merged[j].Start {
			return merged[i].Start < merged[j].Start
		}
		return merged[i].SpeakerID < merged[j].SpeakerID
	})
	return merged, nil
}

// coalesceSpeakerOverlaps enforces the per-speaker non-overlap invariant for
// same-speaker spans that were separated by another speaker in start order
// and therefore escaped the adjacent-merge rule.
func coalesceSpeakerOverlaps(segments []Segment) []Segment {
	last := make(map[string]int)
	out := segments[:0]
	for _, seg := range segments {
		if i, ok := last[seg.SpeakerID]; ok && seg.Start < out[i].End {
			prev := &out[i]
			if seg.SourceText != "" {
				if prev.SourceText == "" {
					prev.SourceText = seg.SourceText
				} else {
					prev.SourceText += " " + seg.SourceText
				}
			}
			if seg.End > prev.End {
				prev.End = seg.End
			}
			continue
		}
		out = append(out, seg)
		last[seg.SpeakerID] = len(out) - 1
	}
	return out
}

func sortedTurns(turns []SpeakerTurn) []SpeakerTurn {
	out := make([]SpeakerTurn, len(turns))
	copy(out, turns)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func bestTurn(turns []SpeakerTurn, span TextSpan) SpeakerTurn {
	best := turns[0]
	bestOverlap := overlap(best, span)
	for _, turn := range turns[1:] {
		if o := overlap(turn, span); o > bestOverlap {
			best = turn
			bestOverlap = o
		}
	}
	return best
}

func overlap(turn SpeakerTurn, span TextSpan) float64 {
	start := turn.Start
	if span.Start > start {
		start = span.Start
	}
	end := turn.End
	if span.End < end {
		end = span.End
	}
	if end <= start {
		return 0
	}
	return end - start
}
