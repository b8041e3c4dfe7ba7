package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// AnswerKind discriminates the Answer sum type.
type AnswerKind uint8

const (
	AnswerUnset AnswerKind = iota
	AnswerText
	AnswerBool
)

// Answer is a user's answer, or a canonical answer on a Question. The zero
// value is unset and encodes as JSON null.
type Answer struct {
	kind AnswerKind
	text string
	b    bool
}

// Unset returns the explicit unset sentinel.
func Unset() Answer { return Answer{} }

// Text returns a text answer.
func Text(s string) Answer { return Answer{kind: AnswerText, text: s} }

// Bool returns a true/false answer.
func Bool(b bool) Answer { return Answer{kind: AnswerBool, b: b} }

func (a Answer) Kind() AnswerKind { return a.kind }

func (a Answer) IsSet() bool { return a.kind != AnswerUnset }

// AsText returns the text value and whether the answer is a text answer.
func (a Answer) AsText() (string, bool) { return a.text, a.kind == AnswerText }

// AsBool returns the bool value and whether the answer is a bool answer.
func (a Answer) AsBool() (bool, bool) { return a.b, a.kind == AnswerBool }

func (a Answer) String() string {
	switch a.kind {
	case AnswerUnset:
		return ""
	case AnswerText:
		return a.text
	case AnswerBool:
		return strconv.FormatBool(a.b)
	default:
		panic(fmt.Sprintf("quiz: unhandled answer kind %d", a.kind))
	}
}

func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case AnswerUnset:
		return []byte("null"), nil
	case AnswerText:
		return json.Marshal(a.text)
	case AnswerBool:
		return json.Marshal(a.b)
	default:
		return nil, fmt.Errorf("quiz: unhandled answer kind %d", a.kind)
	}
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = Unset()
	case bytes.Equal(data, []byte("true")):
		*a = Bool(true)
	case bytes.Equal(data, []byte("false")):
		*a = Bool(false)
	default:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("answer must be a string, boolean or null: %w", err)
		}
		*a = Text(s)
	}
	return nil
}

// Confidence is the self-reported confidence captured with Practice-mode
// answers. The zero value is unset and encodes as JSON null.
type Confidence int

const (
	ConfidenceUnset Confidence = iota
	ConfidenceLow
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) IsSet() bool { return c != ConfidenceUnset }

func (c Confidence) String() string {
	switch c {
	case ConfidenceUnset:
		return "-"
	case ConfidenceLow:
		return "Low"
	case ConfidenceMedium:
		return "Medium"
	case ConfidenceHigh:
		return "High"
	default:
		return fmt.Sprintf("Confidence(%d)", int(c))
	}
}

func (c Confidence) MarshalJSON() ([]byte, error) {
	if c == ConfidenceUnset {
		return []byte("null"), nil
	}
	return json.Marshal(int(c))
}

func (c *Confidence) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = ConfidenceUnset
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("confidence must be a number or null: %w", err)
	}
	if n < int(ConfidenceLow) || n > int(ConfidenceHigh) {
		return fmt.Errorf("confidence %d out of range 1-3", n)
	}
	*c = Confidence(n)
	return nil
}
