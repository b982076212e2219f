// Package wire implements the primitives of the IIBIN wire format.
//
// A message is a sequence of records. Each record starts with a key, the
// varint of (tag << 3 | wire type), followed by a payload framed according
// to the wire type:
//
//	0 varint            base-128 integer
//	1 fixed64           8 bytes little-endian
//	2 length-delimited  varint length followed by the bytes
//	5 fixed32           4 bytes little-endian
//
// The functions of the package are stateless and safe for concurrent use.
package wire

import (
	"fmt"

	"go.dedis.ch/iibin"
	"google.golang.org/protobuf/encoding/protowire"
)

// Type is the 3-bit code that determines how a payload is framed.
type Type uint8

const (
	// Varint is the wire type of base-128 integers.
	Varint = Type(protowire.VarintType)

	// Fixed64 is the wire type of 8-byte values.
	Fixed64 = Type(protowire.Fixed64Type)

	// LengthDelimited is the wire type of strings, bytes, nested messages and
	// packed repeated fields.
	LengthDelimited = Type(protowire.BytesType)

	// Fixed32 is the wire type of 4-byte values.
	Fixed32 = Type(protowire.Fixed32Type)
)

// MaxTag is the largest tag that fits in a key.
const MaxTag = 1<<29 - 1

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case Varint:
		return "varint"
	case Fixed64:
		return "fixed64"
	case LengthDelimited:
		return "length-delimited"
	case Fixed32:
		return "fixed32"
	default:
		return fmt.Sprintf("wire type %d", uint8(t))
	}
}

// Valid returns true if the wire type is supported.
func (t Type) Valid() bool {
	switch t {
	case Varint, Fixed64, LengthDelimited, Fixed32:
		return true
	default:
		return false
	}
}

// MakeKey returns the key of a record. The tag must not exceed MaxTag.
func MakeKey(tag uint32, typ Type) uint64 {
	return protowire.EncodeTag(protowire.Number(tag), protowire.Type(typ))
}

// SplitKey returns the tag and the wire type of a key. Tags beyond the range
// of a field number are still reported so that the caller can skip them.
func SplitKey(key uint64) (uint64, Type) {
	num, typ := protowire.DecodeTag(key)
	if num < 0 {
		return key >> 3, Type(key & 7)
	}

	return uint64(num), Type(typ)
}

// AppendKey appends the key of a record to the buffer.
func AppendKey(buf []byte, tag uint32, typ Type) []byte {
	return AppendVarint(buf, MakeKey(tag, typ))
}

func errEndOfBuffer(need, have int) error {
	return iibin.NewError(iibin.UnexpectedEndOfBuffer,
		"need %d bytes but %d remain", need, have)
}
