package cipher

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestCodecOperations(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		op       string
		params   map[string]interface{}
		input    string
		expected string
	}{
		{
			name:     "caesar letter key",
			op:       "caesar_encode",
			params:   map[string]interface{}{"key": "D"},
			input:    "HELLO",
			expected: "KHOOR",
		},
		{
			name:     "caesar int key",
			op:       "caesar_decode",
			params:   map[string]interface{}{"key": 3},
			input:    "KHOOR",
			expected: "HELLO",
		},
		{
			name:     "scytale json number",
			op:       "scytale_encode",
			params:   map[string]interface{}{"key": float64(3)},
			input:    "HELLOWORLD",
			expected: "HLODEOR LWL ",
		},
		{
			name:     "vigenere typed key",
			op:       "vigenere_encode",
			params:   map[string]interface{}{"key": Keyword("LEMON")},
			input:    "ATTACKATDAWN",
			expected: "LXFOPVEFRNHR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, ok := GetOperation(tt.op)
			if !ok {
				t.Fatalf("operation %s not registered", tt.op)
			}
			out, err := op.Execute(ctx, []byte(tt.input), tt.params)
			if err != nil {
				t.Fatalf("execute failed: %v", err)
			}
			if string(out) != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, string(out))
			}
		})
	}
}

func TestCodecOperationKeyErrors(t *testing.T) {
	ctx := context.Background()
	op, _ := GetOperation("scytale_encode")

	tests := []struct {
		name   string
		params map[string]interface{}
	}{
		{"missing key", nil},
		{"fractional key", map[string]interface{}{"key": 2.5}},
		{"wrong type", map[string]interface{}{"key": true}},
		{"non positive", map[string]interface{}{"key": "0"}},
		{"empty key value", map[string]interface{}{"key": Key{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := op.Execute(ctx, []byte("text"), tt.params); !errors.Is(err, ErrInvalidKey) {
				t.Fatalf("expected ErrInvalidKey, got %v", err)
			}
		})
	}
}

func TestAnalyseOperation(t *testing.T) {
	ctx := context.Background()
	ct, err := Vigenere{}.Encode(sampleText, Keyword("KEY"))
	if err != nil {
		t.Fatal(err)
	}

	op, _ := GetOperation("vigenere_analyse")
	out, err := op.Execute(ctx, []byte(ct), map[string]interface{}{"max": float64(10), "language": "en-GB"})
	if err != nil {
		t.Fatalf("analyse failed: %v", err)
	}
	if string(out) != sampleText {
		t.Errorf("analyse did not recover the plaintext: %.60q", string(out))
	}

	if _, ok := op.Reverse(); ok {
		t.Error("analyse should not be reversible")
	}
}

func TestAnalyseOptionsFromParams(t *testing.T) {
	opts, err := AnalyseOptionsFromParams(KindScytale, map[string]interface{}{"max": "12", "language": "de"})
	if err != nil {
		t.Fatal(err)
	}
	cfg := newAnalyseConfig(opts)
	if cfg.maxBlockLength != 12 {
		t.Errorf("expected max block length 12, got %d", cfg.maxBlockLength)
	}
	if cfg.profile != German {
		t.Errorf("expected German profile, got %s", cfg.profile.Name)
	}

	if _, err := AnalyseOptionsFromParams(KindVigenere, map[string]interface{}{"max": "ten"}); err == nil {
		t.Error("expected error for non-numeric max")
	}
}

func TestBoundedCapsRequestedBounds(t *testing.T) {
	base := []AnalyseOption{WithProfile(German), WithMaxBlockLength(20), WithMaxKeyLength(5)}

	tests := []struct {
		name      string
		base      []AnalyseOption
		request   []AnalyseOption
		wantBlock int
		wantKey   int
		wantLang  *Profile
	}{
		{"request cannot widen", base, []AnalyseOption{WithMaxBlockLength(3000), WithMaxKeyLength(3000)}, 20, 5, German},
		{"request can narrow", base, []AnalyseOption{WithMaxBlockLength(10), WithMaxKeyLength(2)}, 10, 2, German},
		{"request picks the profile", base, []AnalyseOption{WithProfile(English)}, 20, 5, English},
		{"defaults cap without base", nil, []AnalyseOption{WithMaxKeyLength(3000)}, DefaultMaxBlockLength, DefaultMaxKeyLength, English},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newAnalyseConfig(Bounded(tt.base, tt.request...))
			if cfg.maxBlockLength != tt.wantBlock || cfg.maxKeyLength != tt.wantKey {
				t.Errorf("expected bounds %d/%d, got %d/%d", tt.wantBlock, tt.wantKey, cfg.maxBlockLength, cfg.maxKeyLength)
			}
			if cfg.profile != tt.wantLang {
				t.Errorf("expected %s profile, got %s", tt.wantLang.Name, cfg.profile.Name)
			}
		})
	}
}

func TestAnalyseOperationUsesContextDefaults(t *testing.T) {
	ct, err := Vigenere{}.Encode(sampleText, Keyword("KEY"))
	if err != nil {
		t.Fatal(err)
	}
	op, _ := GetOperation("vigenere_analyse")
	ctx := WithAnalyseDefaults(context.Background(), WithMaxKeyLength(2))

	out, err := op.Execute(ctx, []byte(ct), map[string]interface{}{"max": 10})
	if err != nil {
		t.Fatalf("analyse failed: %v", err)
	}
	if string(out) == sampleText {
		t.Error("max parameter widened the key length bound set on the context")
	}

	out, err = op.Execute(WithAnalyseDefaults(context.Background()), []byte(ct), map[string]interface{}{"max": 10})
	if err != nil {
		t.Fatalf("analyse failed: %v", err)
	}
	if string(out) != sampleText {
		t.Errorf("analyse did not recover the plaintext: %.60q", string(out))
	}
}

func TestPipelineProductCipher(t *testing.T) {
	ctx := context.Background()
	pipeline := &Pipeline{
		Operations: []OperationConfig{
			{Name: "vigenere_encode", Parameters: map[string]interface{}{"key": "LEMON"}},
			{Name: "scytale_encode", Parameters: map[string]interface{}{"key": 4}},
		},
		Reversible: true,
	}

	ct, err := pipeline.Execute(ctx, []byte("ATTACKATDAWN"))
	if err != nil {
		t.Fatalf("pipeline execution failed: %v", err)
	}
	if string(ct) != "LPRXVNFEHOFR" {
		t.Errorf("expected LPRXVNFEHOFR, got %q", string(ct))
	}

	reversed, err := pipeline.Reverse()
	if err != nil {
		t.Fatalf("failed to reverse pipeline: %v", err)
	}
	if reversed.Operations[0].Name != "scytale_decode" || reversed.Operations[1].Name != "vigenere_decode" {
		t.Fatalf("unexpected reversed order: %+v", reversed.Operations)
	}

	pt, err := reversed.Execute(ctx, ct)
	if err != nil {
		t.Fatalf("reversed pipeline failed: %v", err)
	}
	if string(pt) != "ATTACKATDAWN" {
		t.Errorf("expected ATTACKATDAWN, got %q", string(pt))
	}
}

func TestPipelineErrors(t *testing.T) {
	ctx := context.Background()

	unknown := &Pipeline{Operations: []OperationConfig{{Name: "rot47_encode"}}}
	if _, err := unknown.Execute(ctx, []byte("x")); err == nil || !strings.Contains(err.Error(), "unknown operation") {
		t.Errorf("expected unknown operation error, got %v", err)
	}

	notReversible := &Pipeline{Operations: []OperationConfig{{Name: "caesar_analyse"}}, Reversible: true}
	if _, err := notReversible.Reverse(); err == nil {
		t.Error("expected error reversing an analyse step")
	}

	if _, err := (&Pipeline{}).Reverse(); err == nil {
		t.Error("expected error reversing a pipeline not marked reversible")
	}

	failing := &Pipeline{Operations: []OperationConfig{{Name: "caesar_encode"}}}
	if _, err := failing.Execute(ctx, []byte("x")); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("expected wrapped ErrInvalidKey, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	ok := &Pipeline{Operations: []OperationConfig{{Name: "caesar_encode", Parameters: map[string]interface{}{"key": 1}}}}
	if _, err := ok.Execute(cancelled, []byte("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
