package rpc

import (
	"encoding/json"
)

// Codec serves connect procedures whose messages are plain Go structs. It replaces
// connect's protobuf-backed "json" codec.
type Codec struct{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}
