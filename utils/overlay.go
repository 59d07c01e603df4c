package utils

import (
	"bytes"
	"encoding/json"
	"io"
)

// DecodeOverlay decodes a JSON object from body into dst and reports which keys
// were sent as an explicit null. Decoding null into a plain field is a no-op, so
// callers use the set to clear those fields themselves.
func DecodeOverlay(body io.Reader, dst any) (map[string]bool, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	nulls := make(map[string]bool)
	for k, v := range fields {
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			nulls[k] = true
		}
	}
	return nulls, nil
}
