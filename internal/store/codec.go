package store

import "github.com/vmihailenco/msgpack/v5"

// Stored values are msgpack-encoded; it is compact, schema-free, and
// keeps the wire pitch strings byte-exact.

// Encode marshals a value for storage.
func Encode(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Decode unmarshals a stored value into out.
func Decode(data []byte, out any) error {
	return msgpack.Unmarshal(data, out)
}
