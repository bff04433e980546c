package cipher

import (
	"strings"
	"unicode"
)

const alphabetSize = 26

func normalizeShift(n int) int {
	n %= alphabetSize
	if n < 0 {
		n += alphabetSize
	}
	return n
}

func inverseShift(n int) int {
	return normalizeShift(alphabetSize - normalizeShift(n))
}

// letterShift returns the alphabet position of an ASCII letter in either case.
func letterShift(r rune) (int, bool) {
	switch {
	case r >= 'A' && r <= 'Z':
		return int(r - 'A'), true
	case r >= 'a' && r <= 'z':
		return int(r - 'a'), true
	}
	return 0, false
}

// shiftRune advances an ASCII letter by shift within its own case. Every
// other rune is returned unchanged.
func shiftRune(r rune, shift int) rune {
	switch {
	case r >= 'A' && r <= 'Z':
		return 'A' + rune((int(r-'A')+shift)%alphabetSize)
	case r >= 'a' && r <= 'z':
		return 'a' + rune((int(r-'a')+shift)%alphabetSize)
	}
	return r
}

func shiftText(text string, shift int) string {
	shift = normalizeShift(shift)
	if shift == 0 {
		return text
	}
	return strings.Map(func(r rune) rune { return shiftRune(r, shift) }, text)
}

// partition splits runes into n residue classes by position modulo n.
func partition(runes []rune, n int) [][]rune {
	groups := make([][]rune, n)
	for i, r := range runes {
		groups[i%n] = append(groups[i%n], r)
	}
	return groups
}

// interleave undoes partition: round by round it takes the next rune of each
// group in order, skipping groups that are already exhausted.
func interleave(groups [][]rune) []rune {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	out := make([]rune, 0, total)
	for round := 0; len(out) < total; round++ {
		for _, g := range groups {
			if round < len(g) {
				out = append(out, g[round])
			}
		}
	}
	return out
}

// foldUpper upper-cases every rune individually so positions are preserved.
func foldUpper(text string) []rune {
	runes := []rune(text)
	for i, r := range runes {
		runes[i] = unicode.ToUpper(r)
	}
	return runes
}
