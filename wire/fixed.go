package wire

import (
	"math"

	"go.dedis.ch/iibin"
	"google.golang.org/protobuf/encoding/protowire"
)

// AppendFixed32 appends the 4-byte little-endian layout of the value.
func AppendFixed32(buf []byte, v uint32) []byte {
	return protowire.AppendFixed32(buf, v)
}

// AppendFixed64 appends the 8-byte little-endian layout of the value.
func AppendFixed64(buf []byte, v uint64) []byte {
	return protowire.AppendFixed64(buf, v)
}

// DecodeFixed32 reads a 4-byte little-endian value at the beginning of the
// buffer.
func DecodeFixed32(buf []byte) (uint32, error) {
	v, n := protowire.ConsumeFixed32(buf)
	if n < 0 {
		return 0, errEndOfBuffer(4, len(buf))
	}

	return v, nil
}

// DecodeFixed64 reads an 8-byte little-endian value at the beginning of the
// buffer.
func DecodeFixed64(buf []byte) (uint64, error) {
	v, n := protowire.ConsumeFixed64(buf)
	if n < 0 {
		return 0, errEndOfBuffer(8, len(buf))
	}

	return v, nil
}

// DecodeBytes reads a length-delimited payload at the beginning of the buffer
// and returns it with the number of bytes consumed. The payload aliases the
// buffer.
func DecodeBytes(buf []byte) ([]byte, int, error) {
	data, n := protowire.ConsumeBytes(buf)
	if n >= 0 {
		return data[:len(data):len(data)], n, nil
	}

	size, m, err := DecodeVarint(buf)
	if err != nil {
		return nil, 0, err
	}

	return nil, 0, iibin.NewError(iibin.UnexpectedEndOfBuffer,
		"length %d exceeds the %d remaining bytes", size, len(buf)-m)
}

// AppendFloat appends the IEEE-754 bit pattern of a float32.
func AppendFloat(buf []byte, v float32) []byte {
	return AppendFixed32(buf, math.Float32bits(v))
}

// AppendDouble appends the IEEE-754 bit pattern of a float64.
func AppendDouble(buf []byte, v float64) []byte {
	return AppendFixed64(buf, math.Float64bits(v))
}

// AppendBytes appends the varint length of the data followed by the data.
func AppendBytes(buf []byte, data []byte) []byte {
	return protowire.AppendBytes(buf, data)
}
