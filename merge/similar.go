// Copyright 2024 - 2026, the msgforge contributors
// SPDX-License-Identifier: AGPL-3.0-only

package merge

import "unicode/utf8"

// similarity scores two msgids in [0,1] as 1 - editDistance/maxLen,
// computed over runes.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}

	longer := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longer {
		longer = n
	}

	if longer == 0 {
		return 1
	}

	return 1 - float64(editDistance(a, b))/float64(longer)
}

// editDistance is the Levenshtein distance between a and b, two rows of
// the DP table at a time.
func editDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for j := range prev {
		prev[j] = j
	}

	for i, ca := range ra {
		curr[0] = i + 1

		for j, cb := range rb {
			cost := 1
			if ca == cb {
				cost = 0
			}

			curr[j+1] = min(prev[j]+cost, prev[j+1]+1, curr[j]+1)
		}

		prev, curr = curr, prev
	}

	return prev[len(rb)]
}
