// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import "strings"

// editDistance computes the Levenshtein distance between two strings,
// counted in runes. Inputs are expected to be normalized already; no case
// folding happens here.
func editDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	matrix := make([][]int, len(ra)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(rb)+1)
	}
	for i := 0; i <= len(ra); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(rb); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			min := matrix[i-1][j] + 1 // deletion
			if ins := matrix[i][j-1] + 1; ins < min {
				min = ins // insertion
			}
			if sub := matrix[i-1][j-1] + cost; sub < min {
				min = sub // substitution
			}
			matrix[i][j] = min
		}
	}

	return matrix[len(ra)][len(rb)]
}

// Similarity returns a similarity ratio in [0, 1]: 1.0 for identical
// strings, 0.0 for strings with nothing in common. Two empty strings are
// identical.
//
// A name occurring as a whole-token run inside the other counts as a full
// match. Partial names are the single most common model output ("Truman"
// for "Harry S Truman", "Los Alamos" for "Los Alamos National Laboratory")
// and a pure edit-distance ratio would never collapse them.
func Similarity(a, b string) float64 {
	if containsTokens(a, b) || containsTokens(b, a) {
		return 1.0
	}
	la := len([]rune(a))
	lb := len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(editDistance(a, b))/float64(longest)
}

// containsTokens reports whether needle occurs in haystack aligned on token
// boundaries. Inputs are normalized, so tokens are separated by single
// spaces.
func containsTokens(needle, haystack string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(" "+haystack+" ", " "+needle+" ")
}
