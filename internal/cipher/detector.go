package cipher

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// fitScale is the frequency distance at which a distribution stops looking
// like the reference language at all.
const fitScale = 0.02

// Detector guesses which classical cipher produced a ciphertext from its
// monographic statistics alone.
type Detector struct {
	profile *Profile
}

// NewDetector creates a detector scoring against p, or English when p is nil.
func NewDetector(p *Profile) *Detector {
	if p == nil {
		p = English
	}
	return &Detector{profile: p}
}

// Detect ranks every cipher kind by confidence, highest first.
//
// A transposition keeps the letter distribution of the plaintext, a Caesar
// shift keeps its shape but moves it, and a Vigenère cipher flattens it
// towards uniform, which lowers the index of coincidence.
func (d *Detector) Detect(ctx context.Context, text string) ([]DetectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	freqs, _, err := letterFrequencies(text)
	if err != nil {
		return nil, err
	}

	unshifted := d.profile.distance(freqs, 0)
	shift, shifted, _ := bestShift(text, d.profile)
	ic := LetterIC(text)
	expected := d.profile.ExpectedIC()
	flatness := clamp((expected - ic) / (expected - 1.0/alphabetSize))

	caesar := fit(shifted)
	if shift == 0 {
		caesar *= 0.2
	}

	results := []DetectionResult{
		{
			Kind:       KindScytale,
			Confidence: fit(unshifted),
			Reasoning:  fmt.Sprintf("Letter distribution is %.4f from %s without any shift", unshifted, d.profile.Name),
		},
		{
			Kind:       KindCaesar,
			Confidence: caesar,
			Reasoning:  fmt.Sprintf("Shift %d brings the distribution to %.4f from %s", shift, shifted, d.profile.Name),
		},
		{
			Kind:       KindVigenere,
			Confidence: flatness * (1 - fit(shifted)),
			Reasoning:  fmt.Sprintf("Index of coincidence %.4f against %.4f expected for %s", ic, expected, d.profile.Name),
		},
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
	return results, nil
}

func fit(distance float64) float64 {
	return clamp(1 - distance/fitScale)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// AnalyseAny runs the analyser of every plausible cipher kind and returns
// the candidate plaintext containing the most profile words. Kinds detected
// with a confidence below 0.3 are skipped unless nothing else qualifies.
func AnalyseAny(ctx context.Context, text string, opts ...AnalyseOption) (Kind, Result, error) {
	cfg := newAnalyseConfig(opts)
	detections, err := NewDetector(cfg.profile).Detect(ctx, text)
	if err != nil {
		return "", Result{}, err
	}

	var (
		bestKind Kind
		best     Result
		bestHits = -1
		lastErr  error
	)
	for i, detection := range detections {
		if detection.Confidence < 0.3 && i > 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return "", Result{}, err
		}
		codec, err := Lookup(detection.Kind)
		if err != nil {
			lastErr = err
			continue
		}
		res, err := codec.Analyse(text, opts...)
		if err != nil {
			lastErr = err
			continue
		}
		if hits := cfg.profile.wordHits(res.Plaintext); hits > bestHits {
			bestKind, best, bestHits = detection.Kind, res, hits
		}
	}
	if bestHits < 0 {
		return "", Result{}, fmt.Errorf("no analyser succeeded: %w", lastErr)
	}
	return bestKind, best, nil
}
