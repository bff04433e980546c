package cipher

import (
	"fmt"
	"strings"
)

// Scytale is the columnar transposition cipher. The text is written in rows
// of the block length and read column by column. Every rune moves, including
// spaces and the padding appended to complete the last row.
type Scytale struct{}

func (Scytale) Kind() Kind { return KindScytale }

func (Scytale) Encode(text string, key Key) (string, error) {
	n, err := blockLength(key)
	if err != nil {
		return "", err
	}
	return string(transpose([]rune(text), n)), nil
}

// Decode transposes again with the complementary period len(text)/n. The
// result is exact only when the ciphertext length is a multiple of n, which
// holds for anything produced by Encode. Other lengths give a well-defined
// but different ordering.
func (Scytale) Decode(text string, key Key) (string, error) {
	n, err := blockLength(key)
	if err != nil {
		return "", err
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return "", nil
	}
	period := len(runes) / n
	if period == 0 {
		return "", fmt.Errorf("%w: block length exceeds text length of %d runes", ErrInvalidKey, len(runes))
	}
	return string(transpose(runes, period)), nil
}

// Analyse brute-forces block counts in [2, max) and keeps the candidate that
// contains the most profile words. The first maximum wins. The returned key
// decodes the ciphertext with Decode.
func (Scytale) Analyse(text string, opts ...AnalyseOption) (Result, error) {
	cfg := newAnalyseConfig(opts)
	runes := []rune(text)
	if len(runes) == 0 {
		return Result{}, fmt.Errorf("%w: empty text", ErrDegenerateInput)
	}

	var (
		best     Result
		bestHits = -1
	)
	for b := 2; b < cfg.maxBlockLength; b++ {
		period := len(runes) / b
		if period == 0 {
			break
		}
		candidate := string(transpose(runes, period))
		if hits := cfg.profile.wordHits(candidate); hits > bestHits {
			bestHits = hits
			best = Result{Plaintext: candidate, Key: BlockLength(b), Score: float64(hits)}
		}
	}
	if bestHits < 0 {
		return Result{}, fmt.Errorf("%w: %d runes cannot be split into two blocks", ErrDegenerateInput, len(runes))
	}
	return best, nil
}

func blockLength(key Key) (int, error) {
	if key.variant != variantBlockLength {
		return 0, fmt.Errorf("%w: scytale expects a block length, got %s", ErrInvalidKey, key.variant)
	}
	if key.n < 1 {
		return 0, fmt.Errorf("%w: block length must be positive", ErrInvalidKey)
	}
	return key.n, nil
}

// transpose pads runes with spaces to a multiple of n and concatenates the
// strided subsequences runes[s], runes[s+n], ... for s in [0, n).
func transpose(runes []rune, n int) []rune {
	if pad := (n - len(runes)%n) % n; pad > 0 {
		padded := make([]rune, len(runes), len(runes)+pad)
		copy(padded, runes)
		runes = append(padded, []rune(strings.Repeat(" ", pad))...)
	}
	out := make([]rune, 0, len(runes))
	for start := 0; start < n; start++ {
		for i := start; i < len(runes); i += n {
			out = append(out, runes[i])
		}
	}
	return out
}
