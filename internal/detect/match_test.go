package detect

import (
	"math"
	"testing"

	"github.com/dupecheck/dupecheck/internal/token"
)

func toks(normalized ...string) []token.Token {
	out := make([]token.Token, len(normalized))
	for i, n := range normalized {
		out[i] = token.Token{Text: n, Normalized: n, Line: 1, Col: i + 1}
	}
	return out
}

func repeatToks(normalized string, n int) []token.Token {
	out := make([]token.Token, n)
	for i := range out {
		out[i] = token.Token{Text: normalized, Normalized: normalized, Line: 1, Col: i + 1}
	}
	return out
}

func TestExtendSeed(t *testing.T) {
	t.Run("extends in both directions", func(t *testing.T) {
		a := toks("x", "p", "q", "r", "s", "y")
		b := toks("z", "p", "q", "r", "s", "w")

		got := extendSeed(a, b, 2, 2, 2, false)

		want := segment{aStart: 1, aEnd: 5, bStart: 1, bEnd: 5}
		if got != want {
			t.Errorf("extendSeed() = %+v, want %+v", got, want)
		}
	})

	t.Run("stops at unit boundaries", func(t *testing.T) {
		a := toks("p", "q", "r")
		b := toks("p", "q", "r")

		got := extendSeed(a, b, 0, 0, 2, false)

		want := segment{aStart: 0, aEnd: 3, bStart: 0, bEnd: 3}
		if got != want {
			t.Errorf("extendSeed() = %+v, want %+v", got, want)
		}
	})
}

// Three pasted copies of a block produce a periodic stream in which a
// naive extension glues copy one to copy two. The same-unit cap must
// stop each self-match at its own period.
func TestExtendSeed_SameUnitCapsAtDiagonal(t *testing.T) {
	stream := toks(
		"a", "b", "c", "d", "e",
		"a", "b", "c", "d", "e",
		"a", "b", "c", "d", "e",
		"x",
	)

	t.Run("same unit", func(t *testing.T) {
		got := extendSeed(stream, stream, 0, 5, 2, true)

		want := segment{aStart: 0, aEnd: 5, bStart: 5, bEnd: 10}
		if got != want {
			t.Errorf("extendSeed() = %+v, want %+v", got, want)
		}
	})

	t.Run("distinct units keep the full run", func(t *testing.T) {
		got := extendSeed(stream, stream, 0, 5, 2, false)

		want := segment{aStart: 0, aEnd: 10, bStart: 5, bEnd: 15}
		if got != want {
			t.Errorf("extendSeed() = %+v, want %+v", got, want)
		}
	})
}

func TestMergeSegments(t *testing.T) {
	tests := []struct {
		name     string
		segments []segment
		maxGap   int
		sameUnit bool
		want     []segment
	}{
		{
			name: "bridges a small gap on the same diagonal",
			segments: []segment{
				{aStart: 0, aEnd: 10, bStart: 0, bEnd: 10},
				{aStart: 14, aEnd: 24, bStart: 15, bEnd: 25},
			},
			maxGap: 16,
			want:   []segment{{aStart: 0, aEnd: 24, bStart: 0, bEnd: 25}},
		},
		{
			name: "keeps segments apart beyond the gap",
			segments: []segment{
				{aStart: 0, aEnd: 10, bStart: 0, bEnd: 10},
				{aStart: 30, aEnd: 40, bStart: 30, bEnd: 40},
			},
			maxGap: 16,
			want: []segment{
				{aStart: 0, aEnd: 10, bStart: 0, bEnd: 10},
				{aStart: 30, aEnd: 40, bStart: 30, bEnd: 40},
			},
		},
		{
			name: "never merges crossing diagonals",
			segments: []segment{
				{aStart: 0, aEnd: 10, bStart: 20, bEnd: 30},
				{aStart: 2, aEnd: 8, bStart: 5, bEnd: 11},
			},
			maxGap: 100,
			want: []segment{
				{aStart: 0, aEnd: 10, bStart: 20, bEnd: 30},
				{aStart: 2, aEnd: 8, bStart: 5, bEnd: 11},
			},
		},
		{
			name: "same unit refuses self-overlapping unions",
			segments: []segment{
				{aStart: 0, aEnd: 29, bStart: 29, bEnd: 58},
				{aStart: 0, aEnd: 33, bStart: 58, bEnd: 91},
			},
			maxGap:   16,
			sameUnit: true,
			want: []segment{
				{aStart: 0, aEnd: 29, bStart: 29, bEnd: 58},
				{aStart: 0, aEnd: 33, bStart: 58, bEnd: 91},
			},
		},
		{
			name: "chains drifting diagonals into one near-miss region",
			segments: []segment{
				{aStart: 0, aEnd: 12, bStart: 0, bEnd: 12},
				{aStart: 16, aEnd: 30, bStart: 13, bEnd: 27},
			},
			maxGap: 16,
			want:   []segment{{aStart: 0, aEnd: 30, bStart: 0, bEnd: 27}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeSegments(tt.segments, tt.maxGap, tt.sameUnit)
			if len(got) != len(tt.want) {
				t.Fatalf("mergeSegments() returned %d segments, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("segment %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDedupeSegments(t *testing.T) {
	segments := []segment{
		{aStart: 0, aEnd: 5, bStart: 10, bEnd: 15},
		{aStart: 0, aEnd: 5, bStart: 10, bEnd: 15},
		{aStart: 1, aEnd: 6, bStart: 11, bEnd: 16},
		{aStart: 0, aEnd: 5, bStart: 10, bEnd: 15},
	}

	got := dedupeSegments(segments)

	want := []segment{
		{aStart: 0, aEnd: 5, bStart: 10, bEnd: 15},
		{aStart: 1, aEnd: 6, bStart: 11, bEnd: 16},
	}
	if len(got) != len(want) {
		t.Fatalf("dedupeSegments() returned %d segments, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestClassify(t *testing.T) {
	renamed := toks("func", "id", "(", "id", ")", "id", "{", "return", "id", "}")
	renamed[1].Text = "other"

	nearMiss := repeatToks("id", 10)
	nearMiss[5] = token.Token{Text: "7", Normalized: "num", Line: 1, Col: 6}

	tests := []struct {
		name      string
		a, b      []token.Token
		threshold float64
		wantType  CloneType
		wantSim   float64
		wantOK    bool
	}{
		{
			name:      "identical text is type-1",
			a:         toks("func", "id", "(", ")", "{", "}"),
			b:         toks("func", "id", "(", ")", "{", "}"),
			threshold: 0.8,
			wantType:  Type1,
			wantSim:   1.0,
			wantOK:    true,
		},
		{
			name:      "renamed copy is type-2",
			a:         toks("func", "id", "(", "id", ")", "id", "{", "return", "id", "}"),
			b:         renamed,
			threshold: 0.8,
			wantType:  Type2,
			wantSim:   1.0,
			wantOK:    true,
		},
		{
			name:      "near miss over the threshold is type-3",
			a:         repeatToks("id", 10),
			b:         nearMiss,
			threshold: 0.8,
			wantType:  Type3,
			wantSim:   0.9,
			wantOK:    true,
		},
		{
			name:      "near miss below the threshold is rejected",
			a:         repeatToks("id", 10),
			b:         nearMiss,
			threshold: 0.95,
			wantSim:   0.9,
			wantOK:    false,
		},
		{
			name:      "unrelated streams are rejected",
			a:         repeatToks("id", 8),
			b:         repeatToks("str", 8),
			threshold: 0.8,
			wantSim:   -1,
			wantOK:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := segment{aStart: 0, aEnd: len(tt.a), bStart: 0, bEnd: len(tt.b)}
			gotType, gotSim, ok := classify(tt.a, tt.b, seg, tt.threshold)
			if ok != tt.wantOK {
				t.Fatalf("classify() ok = %v, want %v (similarity %v)", ok, tt.wantOK, gotSim)
			}
			if ok && gotType != tt.wantType {
				t.Errorf("classify() type = %v, want %v", gotType, tt.wantType)
			}
			if tt.wantSim >= 0 && math.Abs(gotSim-tt.wantSim) > 1e-9 {
				t.Errorf("classify() similarity = %v, want %v", gotSim, tt.wantSim)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "both empty", a: "", b: "", want: 1.0},
		{name: "equal", a: "id = id ( id )", b: "id = id ( id )", want: 1.0},
		{name: "one substitution", a: "abc", b: "axc", want: 1.0 - 1.0/3.0},
		{name: "nothing shared", a: "abc", b: "", want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := similarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
