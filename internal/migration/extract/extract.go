package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse marks model output that holds no parseable object.
var ErrMalformedResponse = errors.New("malformed response")

// ObjectSpan returns the text from the first '{' to the last '}'.
// Surrounding prose is dropped; nothing inside the span is repaired.
func ObjectSpan(raw string) (string, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < start {
		return "", fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}
	return raw[start : end+1], nil
}

// JSONObject decodes the object span of raw into v.
func JSONObject(raw string, v any) error {
	span, err := ObjectSpan(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(span), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
