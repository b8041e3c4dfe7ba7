package history

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ImportReason classifies why an import document was rejected.
type ImportReason int

const (
	ReasonMalformed ImportReason = iota
	ReasonNotArray
	ReasonNotObject
	ReasonMissingFields
	ReasonUnknownType
)

func (r ImportReason) String() string {
	switch r {
	case ReasonMalformed:
		return "malformed JSON"
	case ReasonNotArray:
		return "not a JSON array"
	case ReasonNotObject:
		return "entry is not an object"
	case ReasonMissingFields:
		return "entry is missing id or type"
	case ReasonUnknownType:
		return "entry has an unknown type"
	default:
		return fmt.Sprintf("ImportReason(%d)", int(r))
	}
}

// ImportError reports the first problem found in an import document. Index
// is the offending entry, or -1 when the document as a whole is invalid.
type ImportError struct {
	Reason ImportReason
	Index  int
	Err    error
}

func (e *ImportError) Error() string {
	msg := "invalid history file: " + e.Reason.String()
	if e.Index >= 0 {
		msg += fmt.Sprintf(" (entry %d)", e.Index)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ImportError) Unwrap() error { return e.Err }

var validate = validator.New(validator.WithRequiredStructEnabled())

type importHeader struct {
	ID   string `json:"id" validate:"required"`
	Type string `json:"type" validate:"required"`
}

// ParseImport decodes an exported history document. Either every entry is
// valid and returned, or nothing is and the error is an *ImportError.
func ParseImport(data []byte) ([]Item, error) {
	if !json.Valid(data) {
		return nil, &ImportError{Reason: ReasonMalformed, Index: -1}
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ImportError{Reason: ReasonNotArray, Index: -1}
	}

	items := make([]Item, 0, len(raw))
	for i, entry := range raw {
		if t := bytes.TrimSpace(entry); len(t) == 0 || t[0] != '{' {
			return nil, &ImportError{Reason: ReasonNotObject, Index: i}
		}
		var h importHeader
		if err := json.Unmarshal(entry, &h); err != nil {
			return nil, &ImportError{Reason: ReasonMissingFields, Index: i, Err: err}
		}
		if err := validate.Struct(h); err != nil {
			return nil, &ImportError{Reason: ReasonMissingFields, Index: i, Err: err}
		}
		if !Kind(h.Type).Valid() {
			return nil, &ImportError{Reason: ReasonUnknownType, Index: i, Err: fmt.Errorf("type %q", h.Type)}
		}
		var it Item
		if err := json.Unmarshal(entry, &it); err != nil {
			return nil, &ImportError{Reason: ReasonMalformed, Index: i, Err: err}
		}
		items = append(items, it)
	}
	return items, nil
}

// Export encodes items as an indented JSON array. An empty log exports as
// "[]".
func Export(items []Item) ([]byte, error) {
	if len(items) == 0 {
		return []byte("[]"), nil
	}
	return json.MarshalIndent(items, "", "  ")
}
