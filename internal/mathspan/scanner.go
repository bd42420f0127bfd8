package mathspan

import "strings"

// SegmentKind tags a segment as literal text or math notation.
type SegmentKind string

const (
	KindPlain SegmentKind = "plain"
	KindMath  SegmentKind = "math"
)

// Delimiters used by the exam content authors to mark math notation.
const (
	startDelim = "$$"
	endDelim   = "**"
)

// Segment is one contiguous piece of question/option/explanation text.
type Segment struct {
	Kind SegmentKind `json:"kind"`
	Text string      `json:"text"`
}

// Split scans s into an ordered sequence of plain and math segments.
//
// The scanner has two states. In plain state it copies text until the next
// start delimiter; in math state it copies text until the nearest following
// end delimiter (non-greedy). A start delimiter with no matching end
// delimiter is not a span: the remainder, delimiter included, stays plain.
// Delimiters themselves are never part of a segment's text.
func Split(s string) []Segment {
	var segs []Segment
	plain := strings.Builder{}

	flushPlain := func() {
		if plain.Len() > 0 {
			segs = append(segs, Segment{Kind: KindPlain, Text: plain.String()})
			plain.Reset()
		}
	}

	rest := s
	for {
		start := strings.Index(rest, startDelim)
		if start < 0 {
			plain.WriteString(rest)
			break
		}

		end := strings.Index(rest[start+len(startDelim):], endDelim)
		if end < 0 {
			// Unterminated span: treat everything from the start
			// delimiter onward as plain text.
			plain.WriteString(rest)
			break
		}

		plain.WriteString(rest[:start])
		flushPlain()

		mathStart := start + len(startDelim)
		segs = append(segs, Segment{Kind: KindMath, Text: rest[mathStart : mathStart+end]})

		rest = rest[mathStart+end+len(endDelim):]
	}

	flushPlain()

	if len(segs) == 0 {
		segs = append(segs, Segment{Kind: KindPlain, Text: s})
	}
	return segs
}
