package codec

import "github.com/vmihailenco/msgpack/v5"

// Msgpack serializes values using vmihailenco/msgpack/v5. It is the pool default.
// The zero value is ready to use.
//
// Use `msgpack:"fieldName"` struct tags if you need explicit control over field names.
type Msgpack[V any] struct{}

var _ Codec[[]string] = Msgpack[[]string]{}

func (Msgpack[V]) Encode(v V) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (Msgpack[V]) Decode(b []byte) (V, error) {
	var v V
	err := msgpack.Unmarshal(b, &v)
	return v, err
}
