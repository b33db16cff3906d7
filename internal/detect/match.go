package detect

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/dupecheck/dupecheck/internal/token"
)

// segment is a matched token range in two units, ends exclusive. For
// same-unit segments the A range always precedes the B range.
type segment struct {
	aStart, aEnd int
	bStart, bEnd int
}

func (s segment) diagonal() int { return s.bStart - s.aStart }
func (s segment) aLen() int     { return s.aEnd - s.aStart }
func (s segment) bLen() int     { return s.bEnd - s.bStart }

// maxLen is the longer of the two ranges, the size used against
// min_tokens thresholds.
func (s segment) maxLen() int {
	return max(s.aLen(), s.bLen())
}

// extendSeed grows a shared k-gram at (i, j) over equal normalized
// tokens in both directions. Within one unit the result is capped at
// the diagonal so a region never overlaps its own partner; that is what
// keeps three pasted copies from gluing into one self-matching run.
func extendSeed(a, b []token.Token, i, j, k int, sameUnit bool) segment {
	aStart, bStart := i, j
	for aStart > 0 && bStart > 0 && a[aStart-1].Normalized == b[bStart-1].Normalized {
		aStart--
		bStart--
	}

	aEnd, bEnd := i+k, j+k
	for aEnd < len(a) && bEnd < len(b) && a[aEnd].Normalized == b[bEnd].Normalized {
		aEnd++
		bEnd++
	}

	seg := segment{aStart: aStart, aEnd: aEnd, bStart: bStart, bEnd: bEnd}
	if sameUnit {
		if d := seg.diagonal(); seg.aLen() > d {
			seg.aEnd = seg.aStart + d
			seg.bEnd = seg.bStart + d
		}
	}
	return seg
}

// mergeSegments joins nearby segments of one unit pair across gaps of
// up to maxGap tokens, so a copy edited in the middle still forms one
// candidate region. Segments on crossing diagonals never merge, and a
// same-unit merge is rejected when the union would self-overlap.
func mergeSegments(segments []segment, maxGap int, sameUnit bool) []segment {
	if len(segments) <= 1 {
		return segments
	}

	sort.Slice(segments, func(i, j int) bool {
		if segments[i].aStart != segments[j].aStart {
			return segments[i].aStart < segments[j].aStart
		}
		return segments[i].bStart < segments[j].bStart
	})

	var merged []segment
	cur := segments[0]
	for _, next := range segments[1:] {
		if canMerge(cur, next, maxGap, sameUnit) {
			cur = unionSegments(cur, next)
			continue
		}
		merged = append(merged, cur)
		cur = next
	}
	return append(merged, cur)
}

func canMerge(cur, next segment, maxGap int, sameUnit bool) bool {
	if next.bStart < cur.bStart {
		return false
	}
	if next.aStart > cur.aEnd+maxGap || next.bStart > cur.bEnd+maxGap {
		return false
	}
	if sameUnit {
		if u := unionSegments(cur, next); u.aEnd > u.bStart {
			return false
		}
	}
	return true
}

func unionSegments(a, b segment) segment {
	return segment{
		aStart: min(a.aStart, b.aStart),
		aEnd:   max(a.aEnd, b.aEnd),
		bStart: min(a.bStart, b.bStart),
		bEnd:   max(a.bEnd, b.bEnd),
	}
}

func dedupeSegments(segments []segment) []segment {
	seen := make(map[segment]bool, len(segments))
	out := segments[:0]
	for _, seg := range segments {
		if seen[seg] {
			continue
		}
		seen[seg] = true
		out = append(out, seg)
	}
	return out
}

// classify grades a candidate segment. Equal raw text is Type-1, equal
// normalized text is Type-2, and anything else is Type-3 when its
// normalized similarity reaches the rule's threshold.
func classify(a, b []token.Token, seg segment, threshold float64) (CloneType, float64, bool) {
	aTokens := a[seg.aStart:seg.aEnd]
	bTokens := b[seg.bStart:seg.bEnd]

	if len(aTokens) == len(bTokens) {
		raw := true
		norm := true
		for i := range aTokens {
			if aTokens[i].Text != bTokens[i].Text {
				raw = false
			}
			if aTokens[i].Normalized != bTokens[i].Normalized {
				norm = false
			}
			if !raw && !norm {
				break
			}
		}
		if raw {
			return Type1, 1.0, true
		}
		if norm {
			return Type2, 1.0, true
		}
	}

	sim := similarity(joinNormalized(aTokens), joinNormalized(bTokens))
	if sim >= threshold {
		return Type3, sim, true
	}
	return 0, sim, false
}

// similarity is a [0,1] score from levenshtein edit distance over the
// joined normalized token strings.
func similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	distance := levenshtein.ComputeDistance(a, b)
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	return 1.0 - float64(distance)/float64(maxLen)
}

func joinNormalized(tokens []token.Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = tok.Normalized
	}
	return strings.Join(parts, " ")
}
