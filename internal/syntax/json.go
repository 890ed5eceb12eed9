package syntax

import (
	"encoding/json"
	"io"

	apperrors "github.com/zsiec/nalforge/internal/errors"
)

// WriteJSON writes s as indented JSON. Content and bit slices are base64
// encoded, so a stream read back with ReadJSON encodes to the same bytes.
func (s *Stream) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return apperrors.WrapStorageError(err, "failed to write syntax JSON")
	}
	return nil
}

// ReadJSON parses a stream written by WriteJSON.
func ReadJSON(data []byte) (*Stream, error) {
	var s Stream
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeInvalidSyntax, "failed to parse syntax JSON")
	}
	return &s, nil
}
