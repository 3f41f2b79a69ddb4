package stairwayv1connect

import (
	"github.com/goccy/go-json"
)

// Codec marshals plain Go messages as JSON, registered under the "json" name
// so that Connect clients send application/json.
type Codec struct{}

// Name returns the codec name.
func (Codec) Name() string {
	return "json"
}

// Marshal encodes a message.
func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

// Unmarshal decodes a message. An empty body leaves msg untouched.
func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}
