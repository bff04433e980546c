package cipher

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseKey reads a textual key for the given cipher kind. Caesar accepts a
// single letter or a decimal shift, Scytale a positive block length and
// Vigenère a keyword made of ASCII letters.
func ParseKey(kind Kind, s string) (Key, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Key{}, fmt.Errorf("%w: empty %s key", ErrInvalidKey, kind)
	}
	switch kind {
	case KindCaesar:
		if n, err := strconv.Atoi(s); err == nil {
			return Shift(n), nil
		}
		runes := []rune(s)
		if len(runes) == 1 {
			if _, ok := letterShift(runes[0]); ok {
				return Letter(runes[0]), nil
			}
		}
		return Key{}, fmt.Errorf("%w: caesar key is neither a letter nor a shift", ErrInvalidKey)
	case KindScytale:
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return Key{}, fmt.Errorf("%w: scytale key is not a positive block length", ErrInvalidKey)
		}
		return BlockLength(n), nil
	case KindVigenere:
		for _, r := range s {
			if _, ok := letterShift(r); !ok {
				return Key{}, fmt.Errorf("%w: vigenere keyword may only contain letters", ErrInvalidKey)
			}
		}
		return Keyword(s), nil
	}
	return Key{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}
