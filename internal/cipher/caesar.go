package cipher

import (
	"fmt"
	"math"
)

// Caesar is the monoalphabetic shift cipher. Encoding advances every ASCII
// letter by the key's shift within its case; other runes pass through.
type Caesar struct{}

func (Caesar) Kind() Kind { return KindCaesar }

func (Caesar) Encode(text string, key Key) (string, error) {
	shift, err := caesarShift(key)
	if err != nil {
		return "", err
	}
	return shiftText(text, shift), nil
}

func (Caesar) Decode(text string, key Key) (string, error) {
	shift, err := caesarShift(key)
	if err != nil {
		return "", err
	}
	return shiftText(text, inverseShift(shift)), nil
}

// Analyse tries all 26 shifts and keeps the one whose letter distribution is
// closest to the profile. Ties go to the smaller shift.
func (c Caesar) Analyse(text string, opts ...AnalyseOption) (Result, error) {
	cfg := newAnalyseConfig(opts)
	shift, dist, err := bestShift(text, cfg.profile)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Plaintext: shiftText(text, inverseShift(shift)),
		Key:       Letter('A' + rune(shift)),
		Score:     dist,
	}, nil
}

func bestShift(text string, p *Profile) (int, float64, error) {
	freqs, _, err := letterFrequencies(text)
	if err != nil {
		return 0, 0, err
	}
	best, bestDist := 0, math.Inf(1)
	for s := 0; s < alphabetSize; s++ {
		if d := p.distance(freqs, s); d < bestDist {
			best, bestDist = s, d
		}
	}
	return best, bestDist, nil
}

func caesarShift(key Key) (int, error) {
	switch key.variant {
	case variantLetter:
		s, ok := letterShift(key.letter)
		if !ok {
			return 0, fmt.Errorf("%w: caesar letter key is not a letter", ErrInvalidKey)
		}
		return s, nil
	case variantShift:
		return normalizeShift(key.n), nil
	}
	return 0, fmt.Errorf("%w: caesar expects a letter or shift, got %s", ErrInvalidKey, key.variant)
}
