// Package cipher implements three classical text ciphers and the
// ciphertext-only attacks that break them.
//
// # Overview
//
//   - Caesar: monoalphabetic shift, broken by frequency analysis
//   - Scytale: columnar transposition, broken by dictionary-hit brute force
//   - Vigenère: keyword-driven shifts, broken by index-of-coincidence key
//     length estimation followed by per-column frequency analysis
//
// Only the ASCII letters are substituted and case is preserved. Every other
// rune passes through Caesar and Vigenère unchanged; Scytale moves every
// rune, padding included.
//
// # Quick Start
//
//	ct, _ := cipher.Vigenere{}.Encode("ATTACKATDAWN", cipher.Keyword("LEMON"))
//	// ct: "LXFOPVEFRNHR"
//
//	res, _ := cipher.Caesar{}.Analyse(longCiphertext)
//	fmt.Println(res.Key, res.Plaintext)
//
// Keys are a tagged variant: Letter or Shift for Caesar, BlockLength for
// Scytale and Keyword for Vigenère. ParseKey reads any of them from text.
//
// # Language Profiles
//
// Analysers score candidates against a Profile holding reference letter
// frequencies and frequent short words. English is the default; German is
// bundled as well and ProfileFor picks one from a BCP 47 tag:
//
//	res, _ := cipher.Scytale{}.Analyse(ct, cipher.WithProfile(cipher.ProfileFor("de")))
//
// # Detection
//
// Detector ranks the cipher kinds that could have produced a ciphertext and
// AnalyseAny runs the plausible analysers, keeping the most readable result.
//
// # Operations and Pipelines
//
// Each codec is also registered as named operations (caesar_encode,
// scytale_decode, vigenere_analyse, ...) that can be chained:
//
//	pipeline := &cipher.Pipeline{
//	    Operations: []cipher.OperationConfig{
//	        {Name: "vigenere_encode", Parameters: map[string]interface{}{"key": "LEMON"}},
//	        {Name: "scytale_encode", Parameters: map[string]interface{}{"key": 4}},
//	    },
//	    Reversible: true,
//	}
//
// # Thread Safety
//
// Codecs are stateless and the bundled profiles are never modified, so every
// function is safe for concurrent use. The registries use internal locking.
// Analysis cost grows with the search bounds (WithMaxBlockLength,
// WithMaxKeyLength); callers facing untrusted input should cap them.
package cipher
