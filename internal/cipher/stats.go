package cipher

import "fmt"

// letterFrequencies folds case, drops everything that is not an ASCII
// letter and returns the relative frequency of each remaining letter.
func letterFrequencies(text string) ([alphabetSize]float64, int, error) {
	var counts [alphabetSize]int
	total := 0
	for _, r := range text {
		if s, ok := letterShift(r); ok {
			counts[s]++
			total++
		}
	}
	var freqs [alphabetSize]float64
	if total == 0 {
		return freqs, 0, fmt.Errorf("%w: text contains no letters", ErrDegenerateInput)
	}
	for i, c := range counts {
		freqs[i] = float64(c) / float64(total)
	}
	return freqs, total, nil
}

// IndexOfCoincidence is the probability that two symbols drawn without
// replacement from text are equal. Every rune counts as a symbol. Text with
// fewer than two runes has no defined coincidence and yields 0.
func IndexOfCoincidence(text string) float64 {
	return coincidence([]rune(text))
}

func coincidence(symbols []rune) float64 {
	n := len(symbols)
	if n < 2 {
		return 0
	}
	counts := make(map[rune]int)
	for _, r := range symbols {
		counts[r]++
	}
	var sum int
	for _, c := range counts {
		sum += c * (c - 1)
	}
	return float64(sum) / float64(n*(n-1))
}

// LetterIC is the index of coincidence over the case-folded ASCII letters of text.
func LetterIC(text string) float64 {
	letters := make([]rune, 0, len(text))
	for _, r := range text {
		if s, ok := letterShift(r); ok {
			letters = append(letters, 'A'+rune(s))
		}
	}
	return coincidence(letters)
}
