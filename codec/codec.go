// Package codec turns cache values into the opaque bytes a store keeps and back.
//
// Every codec must be symmetric: Decode(Encode(v)) yields a value equal to v
// for the shapes it supports (scalars, slices, maps and nested combinations).
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// Default returns the codec a pool uses when none is configured.
func Default[V any]() Codec[V] { return Msgpack[V]{} }
