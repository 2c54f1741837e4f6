package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/jsonc"
)

var ErrNotAnObject = errors.New("payload must be a JSON object")

// Decode parses a JSON object. Comments and trailing commas are accepted and
// numbers are kept as json.Number so that 1 and 1.0 stay distinguishable.
func Decode(data []byte) (map[string]any, error) {
	stripped := jsonc.ToJSON(data)

	decoder := json.NewDecoder(bytes.NewReader(stripped))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("decode payload: unexpected data after the top-level value")
	}

	object, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w, got %s", ErrNotAnObject, TypeName(value))
	}
	return object, nil
}
