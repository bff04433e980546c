package cipher

import (
	"errors"
	"fmt"
)

// Vigenere is the polyalphabetic shift cipher. The rune at position i is
// Caesar-shifted by the keyword letter at i mod len(keyword); non-letters
// consume a keyword position without changing.
type Vigenere struct{}

func (Vigenere) Kind() Kind { return KindVigenere }

func (Vigenere) Encode(text string, key Key) (string, error) {
	shifts, err := keywordShifts(key)
	if err != nil {
		return "", err
	}
	groups := partition([]rune(text), len(shifts))
	for g, group := range groups {
		for i, r := range group {
			group[i] = shiftRune(r, shifts[g])
		}
	}
	return string(interleave(groups)), nil
}

// Decode encodes with the complementary keyword.
func (v Vigenere) Decode(text string, key Key) (string, error) {
	inverse, err := InverseKeyword(key)
	if err != nil {
		return "", err
	}
	return v.Encode(text, inverse)
}

// InverseKeyword replaces every keyword letter with the letter of the
// additive inverse shift, so that encoding with it undoes the original.
func InverseKeyword(key Key) (Key, error) {
	shifts, err := keywordShifts(key)
	if err != nil {
		return Key{}, err
	}
	word := make([]rune, len(shifts))
	for i, s := range shifts {
		word[i] = 'A' + rune(inverseShift(s))
	}
	return Keyword(string(word)), nil
}

// Analyse estimates the key length from the index of coincidence, then runs
// the Caesar analyser on every residue column of the ciphertext.
func (Vigenere) Analyse(text string, opts ...AnalyseOption) (Result, error) {
	cfg := newAnalyseConfig(opts)
	if _, _, err := letterFrequencies(text); err != nil {
		return Result{}, err
	}
	length, _, err := EstimateKeyLength(text, cfg.maxKeyLength)
	if err != nil {
		return Result{}, err
	}

	columns := partition([]rune(text), length)
	plain := make([][]rune, length)
	key := make([]rune, length)
	var total float64
	for i, column := range columns {
		res, err := Caesar{}.Analyse(string(column), WithProfile(cfg.profile))
		switch {
		case errors.Is(err, ErrDegenerateInput):
			// a column without letters carries no key information
			plain[i], key[i] = column, 'A'
			continue
		case err != nil:
			return Result{}, fmt.Errorf("column %d: %w", i, err)
		}
		plain[i] = []rune(res.Plaintext)
		key[i] = res.Key.letter
		total += res.Score
	}

	return Result{
		Plaintext: string(interleave(plain)),
		Key:       Keyword(string(key)),
		Score:     total / float64(length),
	}, nil
}

// EstimateKeyLength averages the index of coincidence of the residue columns
// for every candidate length in [1, maxKeyLength] and returns the smallest
// length whose average exceeds 95% of the best one. Multiples of the true
// length score as high as the length itself, so the smallest is preferred.
// The whole case-folded text is used, non-letters included. Candidate
// lengths are capped so every column holds at least two runes.
//
// The second return value holds the averaged coincidence per candidate,
// indexed by length-1.
func EstimateKeyLength(text string, maxKeyLength int) (int, []float64, error) {
	folded := foldUpper(text)
	if len(folded) < 2 {
		return 0, nil, fmt.Errorf("%w: %d runes are too few for a coincidence count", ErrDegenerateInput, len(folded))
	}
	if maxKeyLength < 1 {
		maxKeyLength = DefaultMaxKeyLength
	}
	limit := min(maxKeyLength, len(folded)/2)

	averages := make([]float64, limit)
	highest := 0.0
	for length := 1; length <= limit; length++ {
		var sum float64
		for _, column := range partition(folded, length) {
			sum += coincidence(column)
		}
		avg := sum / float64(length)
		averages[length-1] = avg
		highest = max(highest, avg)
	}

	for i, avg := range averages {
		if avg > 0.95*highest {
			return i + 1, averages, nil
		}
	}
	// every column is made of distinct runes
	return 1, averages, nil
}

func keywordShifts(key Key) ([]int, error) {
	if key.variant != variantKeyword {
		return nil, fmt.Errorf("%w: vigenere expects a keyword, got %s", ErrInvalidKey, key.variant)
	}
	if key.word == "" {
		return nil, fmt.Errorf("%w: empty keyword", ErrInvalidKey)
	}
	shifts := make([]int, 0, len(key.word))
	for _, r := range key.word {
		s, ok := letterShift(r)
		if !ok {
			return nil, fmt.Errorf("%w: keyword contains a non-letter", ErrInvalidKey)
		}
		shifts = append(shifts, s)
	}
	return shifts, nil
}
