package models

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"
)

// Placeholder is rendered in place of missing or meaningless zero values
const Placeholder = "—"

// Number is a numeric field decoded from untrusted model output.
// Decoding never fails: anything unrecoverable becomes zero with Present unset.
type Number struct {
	Value   float64
	Present bool
}

// N returns a present Number holding v
func N(v float64) Number {
	return Number{Value: v, Present: true}
}

// MarshalJSON always emits a plain JSON number
func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Value)
}

// UnmarshalJSON implements json.Unmarshaler using ParseNumber
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = ParseNumber(data)
	return nil
}

// ParseNumber coerces a raw JSON value into a Number.
//
// A literal number is returned as-is. A string has every character that is
// not a digit or '.' stripped and its leading decimal parsed. An object or
// array is scanned in document order for the first number member, or the
// first string member that yields a number. Everything else is zero.
func ParseNumber(raw []byte) Number {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Number{}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return Number{}
	}

	switch v := tok.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return Number{}
		}
		return N(f)
	case string:
		if v == "" {
			return Number{}
		}
		if f, ok := numericPrefix(v); ok {
			return N(f)
		}
		return Number{Present: true}
	case json.Delim:
		if v == '{' || v == '[' {
			if f, ok := firstNumericMember(dec, v == '{'); ok {
				return N(f)
			}
			return Number{Present: true}
		}
	case bool:
		return Number{Present: true}
	}

	// null
	return Number{}
}

// firstNumericMember walks one level of an object or array whose opening
// delimiter has already been consumed. Nested containers are skipped.
func firstNumericMember(dec *json.Decoder, isObject bool) (float64, bool) {
	for dec.More() {
		if isObject {
			// member name
			if _, err := dec.Token(); err != nil {
				return 0, false
			}
		}

		tok, err := dec.Token()
		if err != nil {
			return 0, false
		}

		switch v := tok.(type) {
		case json.Number:
			if f, err := v.Float64(); err == nil {
				return f, true
			}
		case string:
			if f, ok := numericPrefix(v); ok {
				return f, true
			}
		case json.Delim:
			if err := skipContainer(dec); err != nil {
				return 0, false
			}
		}
	}
	return 0, false
}

// skipContainer consumes tokens until the container just opened is closed
func skipContainer(dec *json.Decoder) error {
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}

// numericPrefix strips s down to digits and dots, then parses the longest
// leading decimal ("1.2.3" yields 1.2). Signs are stripped along with units.
func numericPrefix(s string) (float64, bool) {
	var cleaned strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			cleaned.WriteRune(r)
		}
	}

	c := cleaned.String()
	end := 0
	digits := 0
	seenDot := false
	for end < len(c) {
		ch := c[end]
		if ch == '.' {
			if seenDot {
				break
			}
			seenDot = true
		} else {
			digits++
		}
		end++
	}
	if digits == 0 {
		return 0, false
	}

	f, err := strconv.ParseFloat(strings.TrimSuffix(c[:end], "."), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// FormatValue renders n with suffix. Zero calories and missing values show
// the placeholder; a present zero of any other unit renders as "0<suffix>".
func FormatValue(n Number, suffix string) string {
	if n.Value == 0 && strings.Contains(suffix, "kcal") {
		return Placeholder
	}
	if n.Value == 0 && !n.Present {
		return Placeholder
	}
	return formatFloat(n.Value) + suffix
}

// FormatTotal renders a summed value, using the placeholder when nothing was summed
func FormatTotal(v float64, suffix string) string {
	if v <= 0 {
		return Placeholder
	}
	return formatFloat(v) + suffix
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
