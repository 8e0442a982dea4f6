package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Text is a string field decoded from untrusted model output.
// Arrays of scalars are joined with ", ", numbers and booleans keep their
// literal text, and objects or null decode to "".
type Text string

// String returns t as a plain string
func (t Text) String() string {
	return string(t)
}

// UnmarshalJSON implements json.Unmarshaler using ParseText
func (t *Text) UnmarshalJSON(data []byte) error {
	*t = ParseText(data)
	return nil
}

// ParseText coerces a raw JSON value into Text. It never fails.
func ParseText(raw []byte) Text {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return ""
	}

	if d, ok := tok.(json.Delim); ok {
		if d != '[' {
			return ""
		}
		return Text(strings.Join(scalarMembers(dec), ", "))
	}

	s, _ := scalarText(tok)
	return Text(s)
}

// scalarMembers collects the scalar elements of an array whose opening
// bracket has been consumed. Nested containers and empty strings are skipped.
func scalarMembers(dec *json.Decoder) []string {
	var out []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		if _, ok := tok.(json.Delim); ok {
			if err := skipContainer(dec); err != nil {
				break
			}
			continue
		}
		if s, ok := scalarText(tok); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func scalarText(tok json.Token) (string, bool) {
	switch v := tok.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		if v {
			return "true", true
		}
		return "false", true
	}
	return "", false
}
