// Package fingerprint selects winnowed k-gram fingerprints from token
// streams. Winnowing keeps one hash per sliding window, which bounds
// index size while guaranteeing that any duplicated run of at least
// w+k-1 tokens shares a fingerprint between its copies.
package fingerprint

import (
	"github.com/cespare/xxhash/v2"

	"github.com/dupecheck/dupecheck/internal/token"
)

// Fingerprint is a selected k-gram hash and the index of the token that
// starts the k-gram.
type Fingerprint struct {
	Hash  uint64
	Index int
}

// KGramHashes hashes every window of k consecutive normalized tokens.
// Tokens are separated by a NUL byte so that token boundaries cannot be
// shifted without changing the hash.
func KGramHashes(tokens []token.Token, k int) []uint64 {
	if len(tokens) < k {
		return nil
	}

	hashes := make([]uint64, 0, len(tokens)-k+1)
	d := xxhash.New()
	for i := 0; i+k <= len(tokens); i++ {
		d.Reset()
		for j := i; j < i+k; j++ {
			d.WriteString(tokens[j].Normalized)
			d.Write([]byte{0})
		}
		hashes = append(hashes, d.Sum64())
	}
	return hashes
}

// Winnow selects the minimum hash of each window of w consecutive
// k-gram hashes, taking the rightmost minimum on ties. Consecutive
// windows that select the same position record it once.
func Winnow(hashes []uint64, w int) []Fingerprint {
	if len(hashes) == 0 {
		return nil
	}
	if w < 1 {
		w = 1
	}
	if w > len(hashes) {
		w = len(hashes)
	}

	var selected []Fingerprint
	last := -1
	for start := 0; start+w <= len(hashes); start++ {
		min := start
		for i := start + 1; i < start+w; i++ {
			if hashes[i] <= hashes[min] {
				min = i
			}
		}
		if min != last {
			selected = append(selected, Fingerprint{Hash: hashes[min], Index: min})
			last = min
		}
	}
	return selected
}

// Select fingerprints a token stream with the given k-gram size and
// winnowing window.
func Select(tokens []token.Token, k, w int) []Fingerprint {
	return Winnow(KGramHashes(tokens, k), w)
}
