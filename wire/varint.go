package wire

import (
	"io"

	"go.dedis.ch/iibin"
	"google.golang.org/protobuf/encoding/protowire"
)

// MaxVarintLen is the maximum number of bytes of a 64-bit varint.
const MaxVarintLen = 10

// AppendVarint appends the base-128 encoding of the value to the buffer. The
// least significant group comes first and every byte but the last one has
// the continuation bit set.
func AppendVarint(buf []byte, v uint64) []byte {
	return protowire.AppendVarint(buf, v)
}

// EncodeVarint returns the base-128 encoding of the value.
func EncodeVarint(v uint64) []byte {
	return AppendVarint(make([]byte, 0, VarintSize(v)), v)
}

// DecodeVarint decodes a varint at the beginning of the buffer and returns
// the value and the number of bytes consumed. It returns a MalformedVarint
// error if the chain is longer than 10 bytes, overflows 64 bits or if the
// buffer ends before a terminating byte.
func DecodeVarint(buf []byte) (uint64, int, error) {
	v, n := protowire.ConsumeVarint(buf)
	if n < 0 {
		return 0, 0, varintError(buf, n)
	}

	return v, n, nil
}

func varintError(buf []byte, code int) error {
	if protowire.ParseError(code) == io.ErrUnexpectedEOF {
		return iibin.NewError(iibin.MalformedVarint,
			"buffer ends after %d bytes without a terminating byte", len(buf))
	}

	if len(buf) >= MaxVarintLen && buf[MaxVarintLen-1] >= 0x80 {
		return iibin.NewError(iibin.MalformedVarint,
			"continuation chain exceeds %d bytes", MaxVarintLen)
	}

	return iibin.NewError(iibin.MalformedVarint, "value overflows 64 bits")
}

// VarintSize returns the number of bytes of the encoding of the value.
func VarintSize(v uint64) int {
	return protowire.SizeVarint(v)
}

// ZigZagEncode32 maps a signed 32-bit integer to an unsigned one so that
// small magnitudes stay small: 0 → 0, -1 → 1, 1 → 2, -2 → 3.
func ZigZagEncode32(v int32) uint32 {
	return uint32(protowire.EncodeZigZag(int64(v)))
}

// ZigZagDecode32 is the inverse of ZigZagEncode32.
func ZigZagDecode32(v uint32) int32 {
	return int32(protowire.DecodeZigZag(uint64(v)))
}

// ZigZagEncode64 maps a signed 64-bit integer to an unsigned one.
func ZigZagEncode64(v int64) uint64 {
	return protowire.EncodeZigZag(v)
}

// ZigZagDecode64 is the inverse of ZigZagEncode64.
func ZigZagDecode64(v uint64) int64 {
	return protowire.DecodeZigZag(v)
}
