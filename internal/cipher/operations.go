package cipher

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Codec operations
//
// Every registered codec is exposed as three named operations:
// <kind>_encode, <kind>_decode and <kind>_analyse. Encode and decode read
// the key from the "key" parameter; analyse accepts an optional "max"
// search bound and a "language" profile.

// EncodeOp enciphers its input with a codec.
type EncodeOp struct {
	BaseOperation
	codec Codec
}

func (op *EncodeOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	key, err := keyParam(op.codec.Kind(), params)
	if err != nil {
		return nil, err
	}
	out, err := op.codec.Encode(string(input), key)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// DecodeOp deciphers its input with a codec.
type DecodeOp struct {
	BaseOperation
	codec Codec
}

func (op *DecodeOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	key, err := keyParam(op.codec.Kind(), params)
	if err != nil {
		return nil, err
	}
	out, err := op.codec.Decode(string(input), key)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// AnalyseOp recovers the plaintext of its input without a key. Only the
// plaintext flows on through a pipeline. Defaults attached with
// WithAnalyseDefaults apply first and bound the "max" parameter.
type AnalyseOp struct {
	BaseOperation
	codec Codec
}

func (op *AnalyseOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	opts, err := AnalyseOptionsFromParams(op.codec.Kind(), params)
	if err != nil {
		return nil, err
	}
	if base, ok := analyseDefaults(ctx); ok {
		opts = Bounded(base, opts...)
	}
	res, err := op.codec.Analyse(string(input), opts...)
	if err != nil {
		return nil, err
	}
	return []byte(res.Plaintext), nil
}

func codecOperations(c Codec) []Operation {
	kind := c.Kind()
	encode := &EncodeOp{
		BaseOperation: BaseOperation{
			NameValue:        string(kind) + "_encode",
			TypeValue:        OperationTypeEncode,
			DescriptionValue: fmt.Sprintf("Encipher text with the %s cipher", kind),
		},
		codec: c,
	}
	decode := &DecodeOp{
		BaseOperation: BaseOperation{
			NameValue:        string(kind) + "_decode",
			TypeValue:        OperationTypeDecode,
			DescriptionValue: fmt.Sprintf("Decipher %s ciphertext with a known key", kind),
		},
		codec: c,
	}
	encode.ReverseOp = decode
	decode.ReverseOp = encode

	analyse := &AnalyseOp{
		BaseOperation: BaseOperation{
			NameValue:        string(kind) + "_analyse",
			TypeValue:        OperationTypeAnalyse,
			DescriptionValue: fmt.Sprintf("Recover %s plaintext without the key", kind),
		},
		codec: c,
	}
	return []Operation{encode, decode, analyse}
}

func keyParam(kind Kind, params map[string]interface{}) (Key, error) {
	raw, ok := params["key"]
	if !ok || raw == nil {
		return Key{}, fmt.Errorf("%w: key parameter is required", ErrInvalidKey)
	}
	switch v := raw.(type) {
	case Key:
		if v.IsZero() {
			return Key{}, fmt.Errorf("%w: key parameter is empty", ErrInvalidKey)
		}
		return v, nil
	case string:
		return ParseKey(kind, v)
	case int:
		return ParseKey(kind, strconv.Itoa(v))
	case float64:
		if v != math.Trunc(v) {
			return Key{}, fmt.Errorf("%w: numeric key is not an integer", ErrInvalidKey)
		}
		return ParseKey(kind, strconv.Itoa(int(v)))
	}
	return Key{}, fmt.Errorf("%w: unsupported key type %T", ErrInvalidKey, raw)
}

// AnalyseOptionsFromParams converts loosely typed request parameters into
// analyser options. "max" bounds the search of the given kind and
// "language" selects a profile.
func AnalyseOptionsFromParams(kind Kind, params map[string]interface{}) ([]AnalyseOption, error) {
	var opts []AnalyseOption
	if lang, ok := params["language"].(string); ok && strings.TrimSpace(lang) != "" {
		opts = append(opts, WithProfile(ProfileFor(lang)))
	}
	raw, ok := params["max"]
	if !ok || raw == nil {
		return opts, nil
	}
	var limit int
	switch v := raw.(type) {
	case int:
		limit = v
	case float64:
		limit = int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("invalid max parameter %q: %w", v, err)
		}
		limit = n
	default:
		return nil, fmt.Errorf("unsupported max parameter type %T", raw)
	}
	switch kind {
	case KindScytale:
		opts = append(opts, WithMaxBlockLength(limit))
	case KindVigenere:
		opts = append(opts, WithMaxKeyLength(limit))
	}
	return opts, nil
}
