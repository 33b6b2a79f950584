package graph

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/inkwell-labs/cartograph/internal/util"
)

// ErrDimensionMismatch is returned by CosineSimilarity when the two vectors
// have different lengths.
type ErrDimensionMismatch struct {
	Len1 int
	Len2 int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("vectors must have same dimensions: %d vs %d", e.Len1, e.Len2)
}

// NormalizeText lowercases the input, strips everything that is not a letter,
// digit or space, and collapses whitespace runs. Used for all name
// comparisons so that "A.I." and "ai" compare equal.
func NormalizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// StringSimilarity computes a similarity ratio between two strings after
// normalization: 1 - editDistance / maxLength. Identical normalized forms
// score 1.0, fully distinct strings approach 0.0.
func StringSimilarity(text1, text2 string) float64 {
	norm1 := NormalizeText(text1)
	norm2 := NormalizeText(text2)

	if norm1 == norm2 {
		return 1.0
	}
	maxLen := util.Max(len(norm1), len(norm2))
	if maxLen == 0 {
		return 1.0
	}
	dist := editDistance(norm1, norm2)
	return 1.0 - float64(dist)/float64(maxLen)
}

func editDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = util.Min(
				util.Min(prev[j]+1, curr[j-1]+1),
				prev[j-1]+cost,
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// CosineSimilarity computes the cosine similarity of two vectors, clamped to
// [0,1]. Vectors of differing lengths yield an ErrDimensionMismatch; a
// zero-magnitude vector yields 0 rather than dividing by zero.
func CosineSimilarity(vec1, vec2 []float32) (float64, error) {
	if len(vec1) != len(vec2) {
		return 0, &ErrDimensionMismatch{Len1: len(vec1), Len2: len(vec2)}
	}
	if len(vec1) == 0 {
		return 0, &ErrDimensionMismatch{Len1: 0, Len2: 0}
	}

	var dot, mag1, mag2 float64
	for i := range vec1 {
		a := float64(vec1[i])
		b := float64(vec2[i])
		dot += a * b
		mag1 += a * a
		mag2 += b * b
	}

	if mag1 == 0 || mag2 == 0 {
		return 0, nil
	}

	sim := dot / (math.Sqrt(mag1) * math.Sqrt(mag2))
	if sim < 0 {
		return 0, nil
	}
	if sim > 1 {
		return 1, nil
	}
	return sim, nil
}

const maxAbbreviationLength = 5

// IsAbbreviation reports whether short is an abbreviation of long. Two
// patterns count: the normalized short form appearing as a substring of the
// normalized long form, and the short form matching the initials of the long
// form's words ("AI" for "Artificial Intelligence"). Candidates longer than
// five characters after normalization never qualify.
func IsAbbreviation(short, long string) bool {
	normShort := NormalizeText(short)
	normLong := NormalizeText(long)

	if normShort == "" || len(normShort) > maxAbbreviationLength {
		return false
	}

	if strings.Contains(normLong, normShort) {
		return true
	}

	words := strings.Fields(normLong)
	if len(words) == 0 {
		return false
	}
	var initials strings.Builder
	for _, w := range words {
		r := []rune(w)
		initials.WriteRune(r[0])
	}
	return normShort == initials.String()
}
