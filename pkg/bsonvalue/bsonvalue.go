// Package bsonvalue lets a bptree.Tree store arbitrary BSON documents as
// its opaque value handle, round-tripping them through pkg/serialize's
// ValueCodec hook. It wraps go.mongodb.org/mongo-driver/v2's bson.RawValue
// rather than defining a second document representation.
package bsonvalue

import (
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Value is an opaque, BSON-encoded value handle.
type Value struct {
	raw bson.RawValue
}

// Marshal encodes v (any Go value the driver's BSON codec understands)
// into a Value.
func Marshal(v any) (Value, error) {
	data, err := bson.Marshal(v)
	if err != nil {
		return Value{}, fmt.Errorf("bsonvalue: marshal: %w", err)
	}
	return Value{raw: bson.RawValue{Type: bson.TypeEmbeddedDocument, Value: data}}, nil
}

// Unmarshal decodes the Value into out, which must be a pointer.
func (v Value) Unmarshal(out any) error {
	if v.raw.Value == nil {
		return fmt.Errorf("bsonvalue: unmarshal into %T from an empty value", out)
	}
	if err := bson.Unmarshal(v.raw.Value, out); err != nil {
		return fmt.Errorf("bsonvalue: unmarshal: %w", err)
	}
	return nil
}

// Bytes returns the raw BSON document bytes backing v.
func (v Value) Bytes() []byte {
	return v.raw.Value
}

// FromBytes wraps raw BSON document bytes as a Value without validating
// them; Unmarshal will surface any malformed-document error lazily.
func FromBytes(raw []byte) Value {
	return Value{raw: bson.RawValue{Type: bson.TypeEmbeddedDocument, Value: raw}}
}

// Codec is a pkg/serialize.ValueCodec for Value, encoding/decoding via
// the raw BSON document bytes.
type Codec struct{}

func (Codec) EncodeValue(v Value) ([]byte, error) {
	if v.raw.Value == nil {
		return nil, fmt.Errorf("bsonvalue: encode: empty value")
	}
	return v.raw.Value, nil
}

func (Codec) DecodeValue(b []byte) (Value, error) {
	if len(b) == 0 {
		return Value{}, fmt.Errorf("bsonvalue: decode: empty payload")
	}
	return FromBytes(append([]byte{}, b...)), nil
}
