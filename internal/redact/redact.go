package redact

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	neverPersistKey = "never_persist"
	redactedKey     = "[REDACTED_KEY]"
	redactedText    = "[REDACTED_TEXT]"
)

// sensitiveFields are metadata keys whose values are always masked: cipher
// keys and any plaintext or ciphertext body.
var sensitiveFields = map[string]string{
	"key":        redactedKey,
	"keyword":    redactedKey,
	"shift":      redactedKey,
	"text":       redactedText,
	"plaintext":  redactedText,
	"ciphertext": redactedText,
	"input":      redactedText,
	"output":     redactedText,
}

var (
	// Cipher keys are short, so any value assigned to key, keyword or shift is masked.
	kvKeyRe     = regexp.MustCompile(`(?i)\b((?:key|keyword|shift)\s*=\s*)(['"]?)([^\s'",;]+)(['"]?)`)
	quotedKeyRe = regexp.MustCompile(`(?i)(\b(?:key|keyword)\s+)(["'])([^"']+)(["'])`)
)

// String masks cipher key material in free-form text such as error reasons.
func String(in string) string {
	if strings.TrimSpace(in) == "" {
		return in
	}
	masked := kvKeyRe.ReplaceAllString(in, `$1$2`+redactedKey+`$4`)
	masked = quotedKeyRe.ReplaceAllString(masked, `$1$2`+redactedKey+`$4`)
	return masked
}

// Interface redacts recognised sensitive values within nested structures.
func Interface(value any) any {
	switch v := value.(type) {
	case string:
		return String(v)
	case fmt.Stringer:
		return String(v.String())
	case []string:
		return Slice(v)
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = Interface(elem)
		}
		return out
	case map[string]string:
		return MapString(v)
	case map[string]any:
		return Map(v)
	default:
		return value
	}
}

// Map redacts sensitive values within a map of arbitrary values. Sensitive
// field names and any field listed under "never_persist" are replaced
// outright.
func Map(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	masked := applyNeverPersistAny(in)
	out := make(map[string]any, len(masked))
	for k, v := range masked {
		if mask, ok := sensitiveFields[strings.ToLower(k)]; ok {
			out[k] = mask
			continue
		}
		out[k] = Interface(v)
	}
	return out
}

// MapString redacts sensitive values within a string map.
func MapString(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	masked := applyNeverPersistString(in)
	out := make(map[string]string, len(masked))
	for k, v := range masked {
		if mask, ok := sensitiveFields[strings.ToLower(k)]; ok {
			out[k] = mask
			continue
		}
		out[k] = String(v)
	}
	return out
}

// Slice redacts sensitive values within a slice of strings.
func Slice(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = String(v)
	}
	return out
}

func applyNeverPersistAny(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	var toMask []string
	for k, v := range in {
		if strings.EqualFold(k, neverPersistKey) {
			toMask = append(toMask, collectNeverPersist(v)...)
			continue
		}
		out[k] = v
	}
	for key := range normaliseKeys(toMask) {
		if _, ok := out[key]; ok {
			out[key] = redactedText
		}
	}
	return out
}

func applyNeverPersistString(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	var toMask []string
	for k, v := range in {
		if strings.EqualFold(k, neverPersistKey) {
			toMask = append(toMask, splitList(v)...)
			continue
		}
		out[k] = v
	}
	for key := range normaliseKeys(toMask) {
		if _, ok := out[key]; ok {
			out[key] = redactedText
		}
	}
	return out
}

func collectNeverPersist(value any) []string {
	switch v := value.(type) {
	case string:
		return splitList(v)
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			if s, ok := elem.(string); ok {
				out = append(out, s)
				continue
			}
			out = append(out, fmt.Sprint(elem))
		}
		return out
	default:
		return nil
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normaliseKeys(keys []string) map[string]struct{} {
	out := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = struct{}{}
		}
	}
	return out
}
