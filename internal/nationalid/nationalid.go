// Package nationalid validates 11-digit national taxpayer identifiers (CPF).
package nationalid

import "strings"

const length = 11

// Normalize strips every non-digit character.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValid reports whether raw, after normalization, is a well-formed identifier
// with both mod-11 check digits correct.
func IsValid(raw string) bool {
	id := Normalize(raw)
	if len(id) != length {
		return false
	}

	digits := make([]int, length)
	allEqual := true
	for i := 0; i < length; i++ {
		digits[i] = int(id[i] - '0')
		if digits[i] != digits[0] {
			allEqual = false
		}
	}
	if allEqual {
		return false
	}

	return checkDigit(digits[:9]) == digits[9] && checkDigit(digits[:10]) == digits[10]
}

// checkDigit computes the verifier for the given prefix: weights run from
// len(prefix)+1 down to 2.
func checkDigit(prefix []int) int {
	sum := 0
	weight := len(prefix) + 1
	for i, d := range prefix {
		sum += d * (weight - i)
	}
	return sum * 10 % 11 % 10
}
