// Package codec registers the JSON gRPC codec used by the CogniSecure services.
//
// Messages are plain Go structs with json tags. Clients select the codec with
// grpc.CallContentSubtype(codec.Name); the server picks it from the request's content-subtype.
package codec

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// Name is the codec name and gRPC content-subtype ("application/grpc+json").
const Name = "json"

// JSON marshals gRPC messages with encoding/json.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (JSON) Name() string { return Name }

func init() {
	encoding.RegisterCodec(JSON{})
}
