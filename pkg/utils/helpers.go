package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"
)

// ParseDuration safely parses a duration string like "5m", falling back to def
func ParseDuration(d string, def time.Duration) time.Duration {
	if d == "" {
		return def
	}
	duration, err := time.ParseDuration(d)
	if err != nil || duration <= 0 {
		return def
	}
	return duration
}

// ParseLoose decodes user-typed structured text. It tries, in order:
//  1. strict JSON
//  2. JSON after turning single quotes into double quotes
//  3. a literal-structure pass: Python tuples and None are rewritten to YAML
//     flow syntax and decoded with yaml.v3
//
// Integral numbers come back as int64, other numbers as float64.
func ParseLoose(text string) (interface{}, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("empty input")
	}

	if v, err := decodeJSON(text); err == nil {
		return v, nil
	}
	if v, err := decodeJSON(strings.ReplaceAll(text, "'", `"`)); err == nil {
		return v, nil
	}

	var v interface{}
	if err := yaml.Unmarshal([]byte(literalToFlow(text)), &v); err != nil {
		return nil, fmt.Errorf("cannot parse %q: %w", text, err)
	}
	return normalize(v), nil
}

func decodeJSON(text string) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON value")
	}
	return normalize(v), nil
}

// normalize maps decoder-specific values onto plain Go types
func normalize(v interface{}) interface{} {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		f, _ := val.Float64()
		return f
	case int:
		return int64(val)
	case uint64:
		if val <= math.MaxInt64 {
			return int64(val)
		}
		return float64(val)
	case []interface{}:
		for i := range val {
			val[i] = normalize(val[i])
		}
		return val
	case map[string]interface{}:
		for k := range val {
			val[k] = normalize(val[k])
		}
		return val
	default:
		return v
	}
}

// literalToFlow rewrites ( ) to [ ] and the bare word None to null, leaving
// quoted text alone.
func literalToFlow(text string) string {
	var b strings.Builder
	runes := []rune(text)
	var quote rune
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if quote != 0 {
			b.WriteRune(r)
			if r == '\\' && i+1 < len(runes) {
				i++
				b.WriteRune(runes[i])
			} else if r == quote {
				quote = 0
			}
			continue
		}
		switch {
		case r == '\'' || r == '"':
			quote = r
			b.WriteRune(r)
		case r == '(':
			b.WriteRune('[')
		case r == ')':
			b.WriteRune(']')
		case r == 'N' && bareWord(runes, i, "None"):
			b.WriteString("null")
			i += len("None") - 1
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func bareWord(runes []rune, i int, word string) bool {
	w := []rune(word)
	if i+len(w) > len(runes) || string(runes[i:i+len(w)]) != word {
		return false
	}
	if i > 0 && isWordRune(runes[i-1]) {
		return false
	}
	if end := i + len(w); end < len(runes) && isWordRune(runes[end]) {
		return false
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
