package keyword

import (
	"strings"

	"github.com/hyperjump/meishi/pkg/utils"
)

// LevenshteinDistance calculates the minimum number of single-character edits
// (insertions, deletions, or substitutions) required to change a into b.
// Distances are counted in runes.
func LevenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	runesA, runesB := []rune(a), []rune(b)
	if len(runesA) == 0 {
		return len(runesB)
	}
	if len(runesB) == 0 {
		return len(runesA)
	}

	// two rows of the matrix are enough
	prev := make([]int, len(runesB)+1)
	curr := make([]int, len(runesB)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(runesA); i++ {
		curr[0] = i
		for j := 1; j <= len(runesB); j++ {
			cost := 1
			if runesA[i-1] == runesB[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(runesB)]
}

// DamerauLevenshteinDistance is LevenshteinDistance that also counts a
// transposition of two adjacent runes as a single edit (optimal string
// alignment variant).
func DamerauLevenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	runesA, runesB := []rune(a), []rune(b)
	lenA, lenB := len(runesA), len(runesB)
	if lenA == 0 {
		return lenB
	}
	if lenB == 0 {
		return lenA
	}

	d := make([][]int, lenA+1)
	for i := range d {
		d[i] = make([]int, lenB+1)
		d[i][0] = i
	}
	for j := 0; j <= lenB; j++ {
		d[0][j] = j
	}
	for i := 1; i <= lenA; i++ {
		for j := 1; j <= lenB; j++ {
			cost := 1
			if runesA[i-1] == runesB[j-1] {
				cost = 0
			}
			d[i][j] = min(d[i-1][j]+1, d[i][j-1]+1, d[i-1][j-1]+cost)
			if i > 1 && j > 1 && runesA[i-1] == runesB[j-2] && runesA[i-2] == runesB[j-1] {
				d[i][j] = min(d[i][j], d[i-2][j-2]+cost)
			}
		}
	}
	return d[lenA][lenB]
}

// NameDistance compares two person or company names ignoring case,
// surrounding whitespace and internal spacing differences.
func NameDistance(a, b string) int {
	return DamerauLevenshteinDistance(
		strings.ToLower(utils.CollapseSpace(a)),
		strings.ToLower(utils.CollapseSpace(b)),
	)
}
