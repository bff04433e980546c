package cipher

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrInvalidKey is returned when a key cannot be used with a cipher.
	ErrInvalidKey = errors.New("invalid key")
	// ErrDegenerateInput is returned when text carries too little content to analyse.
	ErrDegenerateInput = errors.New("degenerate input")
	// ErrUnknownKind is returned for cipher kinds that are not registered.
	ErrUnknownKind = errors.New("unknown cipher kind")
)

// Kind identifies a cipher family.
type Kind string

const (
	KindCaesar   Kind = "caesar"
	KindScytale  Kind = "scytale"
	KindVigenere Kind = "vigenere"
)

// ParseKind resolves a cipher kind from its name.
func ParseKind(name string) (Kind, error) {
	switch Kind(name) {
	case KindCaesar, KindScytale, KindVigenere:
		return Kind(name), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

type keyVariant int

const (
	variantNone keyVariant = iota
	variantLetter
	variantShift
	variantBlockLength
	variantKeyword
)

func (v keyVariant) String() string {
	switch v {
	case variantLetter:
		return "letter"
	case variantShift:
		return "shift"
	case variantBlockLength:
		return "block length"
	case variantKeyword:
		return "keyword"
	}
	return "empty key"
}

// Key is the key of any supported cipher. Exactly one variant is set; the
// zero value is an empty key that no cipher accepts.
type Key struct {
	variant keyVariant
	letter  rune
	n       int
	word    string
}

// Letter returns a Caesar key given as a letter; its alphabet position is the shift.
func Letter(r rune) Key { return Key{variant: variantLetter, letter: r} }

// Shift returns a Caesar key given as an explicit shift.
func Shift(n int) Key { return Key{variant: variantShift, n: n} }

// BlockLength returns a Scytale key.
func BlockLength(n int) Key { return Key{variant: variantBlockLength, n: n} }

// Keyword returns a Vigenère key.
func Keyword(word string) Key { return Key{variant: variantKeyword, word: word} }

// IsZero reports whether the key is empty.
func (k Key) IsZero() bool { return k.variant == variantNone }

func (k Key) String() string {
	switch k.variant {
	case variantLetter:
		return string(k.letter)
	case variantShift, variantBlockLength:
		return strconv.Itoa(k.n)
	case variantKeyword:
		return k.word
	}
	return ""
}

// MarshalText renders the key the way ParseKey reads it back.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Result is the outcome of a ciphertext-only analysis.
//
// Score depends on the analyser: the squared frequency distance for Caesar
// (lower is better), the dictionary hit count for Scytale (higher is better)
// and the mean per-column frequency distance for Vigenère.
type Result struct {
	Plaintext string  `json:"plaintext"`
	Key       Key     `json:"key"`
	Score     float64 `json:"score"`
}

// Codec is implemented by every cipher family.
type Codec interface {
	// Kind returns the cipher family.
	Kind() Kind

	// Encode enciphers text with key.
	Encode(text string, key Key) (string, error)

	// Decode reverses Encode for the same key.
	Decode(text string, key Key) (string, error)

	// Analyse recovers plaintext and key from ciphertext alone.
	Analyse(text string, opts ...AnalyseOption) (Result, error)
}

const (
	DefaultMaxBlockLength = 100
	DefaultMaxKeyLength   = 30
)

type analyseConfig struct {
	profile        *Profile
	maxBlockLength int
	maxKeyLength   int
}

// AnalyseOption tunes an analyser.
type AnalyseOption func(*analyseConfig)

// WithProfile selects the reference language data used for scoring.
func WithProfile(p *Profile) AnalyseOption {
	return func(cfg *analyseConfig) {
		if p != nil {
			cfg.profile = p
		}
	}
}

// WithMaxBlockLength bounds the Scytale search to block counts below n.
// Values below 3 leave the default in place.
func WithMaxBlockLength(n int) AnalyseOption {
	return func(cfg *analyseConfig) {
		if n > 2 {
			cfg.maxBlockLength = n
		}
	}
}

// WithMaxKeyLength bounds the Vigenère key length search to n.
// Values below 1 leave the default in place.
func WithMaxKeyLength(n int) AnalyseOption {
	return func(cfg *analyseConfig) {
		if n > 0 {
			cfg.maxKeyLength = n
		}
	}
}

// Bounded returns base followed by request, with the search bounds capped at
// those base sets. A request can narrow the search but never widen it.
func Bounded(base []AnalyseOption, request ...AnalyseOption) []AnalyseOption {
	limits := newAnalyseConfig(base)
	opts := make([]AnalyseOption, 0, len(base)+len(request)+1)
	opts = append(opts, base...)
	opts = append(opts, request...)
	return append(opts, func(cfg *analyseConfig) {
		cfg.maxBlockLength = min(cfg.maxBlockLength, limits.maxBlockLength)
		cfg.maxKeyLength = min(cfg.maxKeyLength, limits.maxKeyLength)
	})
}

type defaultsKey struct{}

// WithAnalyseDefaults attaches server analysis options to ctx. Analyse
// operations run under ctx start from them and cannot exceed their bounds.
func WithAnalyseDefaults(ctx context.Context, opts ...AnalyseOption) context.Context {
	return context.WithValue(ctx, defaultsKey{}, opts)
}

func analyseDefaults(ctx context.Context) ([]AnalyseOption, bool) {
	opts, ok := ctx.Value(defaultsKey{}).([]AnalyseOption)
	return opts, ok
}

func newAnalyseConfig(opts []AnalyseOption) analyseConfig {
	cfg := analyseConfig{
		profile:        English,
		maxBlockLength: DefaultMaxBlockLength,
		maxKeyLength:   DefaultMaxKeyLength,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// OperationType defines the category of a named operation.
type OperationType string

const (
	OperationTypeEncode  OperationType = "encode"
	OperationTypeDecode  OperationType = "decode"
	OperationTypeAnalyse OperationType = "analyse"
)

// Operation is a named transformation over text that can be chained in a Pipeline.
type Operation interface {
	// Name returns the unique identifier for this operation
	Name() string

	// Type returns the category of this operation
	Type() OperationType

	// Description returns a human-readable description
	Description() string

	// Execute applies the operation to the input data
	Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error)

	// Reverse returns the inverse operation if available
	Reverse() (Operation, bool)
}

// OperationConfig represents configuration for an operation in a pipeline
type OperationConfig struct {
	Name       string                 `json:"name"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// Pipeline represents a chain of operations that can be applied sequentially
type Pipeline struct {
	Operations []OperationConfig `json:"operations"`
	Reversible bool              `json:"reversible"`
}

// Execute runs the pipeline on the input data
func (p *Pipeline) Execute(ctx context.Context, input []byte) ([]byte, error) {
	result := input
	var err error

	for i, opConfig := range p.Operations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		op, exists := GetOperation(opConfig.Name)
		if !exists {
			return nil, fmt.Errorf("unknown operation at step %d: %s", i, opConfig.Name)
		}

		result, err = op.Execute(ctx, result, opConfig.Parameters)
		if err != nil {
			return nil, fmt.Errorf("operation %s failed at step %d: %w", opConfig.Name, i, err)
		}
	}

	return result, nil
}

// Reverse creates a reversed pipeline if all operations are reversible
func (p *Pipeline) Reverse() (*Pipeline, error) {
	if !p.Reversible {
		return nil, fmt.Errorf("pipeline is not reversible")
	}

	reversed := &Pipeline{
		Operations: make([]OperationConfig, len(p.Operations)),
		Reversible: true,
	}

	for i, opConfig := range p.Operations {
		op, exists := GetOperation(opConfig.Name)
		if !exists {
			return nil, fmt.Errorf("unknown operation: %s", opConfig.Name)
		}

		reverseOp, ok := op.Reverse()
		if !ok {
			return nil, fmt.Errorf("operation %s is not reversible", opConfig.Name)
		}

		reversed.Operations[len(p.Operations)-1-i] = OperationConfig{
			Name:       reverseOp.Name(),
			Parameters: opConfig.Parameters,
		}
	}

	return reversed, nil
}

// DetectionResult ranks how likely a ciphertext was produced by a cipher kind.
type DetectionResult struct {
	Kind       Kind    `json:"kind"`
	Confidence float64 `json:"confidence"` // 0.0 to 1.0
	Reasoning  string  `json:"reasoning"`
}

// BaseOperation provides common functionality for operations
type BaseOperation struct {
	NameValue        string
	TypeValue        OperationType
	DescriptionValue string
	ReverseOp        Operation
}

func (b *BaseOperation) Name() string {
	return b.NameValue
}

func (b *BaseOperation) Type() OperationType {
	return b.TypeValue
}

func (b *BaseOperation) Description() string {
	return b.DescriptionValue
}

func (b *BaseOperation) Reverse() (Operation, bool) {
	if b.ReverseOp == nil {
		return nil, false
	}
	return b.ReverseOp, true
}
