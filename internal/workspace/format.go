package workspace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/mod/semver"
)

// FormatVersion tags every blob this build writes.
const FormatVersion = "v1.0.0"

// ErrNewerFormat is returned for blobs written by a newer format version.
// They are never decoded or overwritten.
var ErrNewerFormat = errors.New("data was written by a newer version of studybuddy")

type envelope struct {
	Format string          `json:"format"`
	Data   json.RawMessage `json:"data"`
}

func encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Format: FormatVersion, Data: data})
}

// decode unwraps a versioned blob into v. Blobs without an envelope were
// written before versioning and are decoded as-is.
func decode(blob []byte, v any) error {
	var env struct {
		Format *string         `json:"format"`
		Data   json.RawMessage `json:"data"`
	}
	if bytes.HasPrefix(bytes.TrimSpace(blob), []byte("{")) {
		if err := json.Unmarshal(blob, &env); err != nil {
			return err
		}
	}
	if env.Format == nil || env.Data == nil {
		return json.Unmarshal(blob, v)
	}

	format := *env.Format
	if !semver.IsValid(format) {
		return fmt.Errorf("invalid format version %q", format)
	}
	if semver.Compare(format, FormatVersion) > 0 {
		return fmt.Errorf("%w (%s > %s)", ErrNewerFormat, format, FormatVersion)
	}
	return json.Unmarshal(env.Data, v)
}
