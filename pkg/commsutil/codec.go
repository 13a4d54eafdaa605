package commsutil

import (
	"encoding/json"
	"fmt"
)

// EncodePayload serializes a channel argument tuple or result to JSON bytes.
func EncodePayload(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// DecodePayload deserializes JSON bytes into the given target.
// An empty payload decodes to the target's zero value, since argument-less
// channels may be sent without a body.
func DecodePayload(data []byte, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("commsutil:codec - decode payload: %w", err)
	}
	return nil
}
