package wire

import (
	"go.dedis.ch/iibin"
	"google.golang.org/protobuf/encoding/protowire"
)

// Record is a single key and payload read from a buffer.
type Record struct {
	Tag  uint64
	Type Type

	// Value holds the varint, or the bits of a fixed32 or fixed64 payload.
	Value uint64

	// Bytes holds the payload of a length-delimited record. It aliases the
	// buffer given to the reader.
	Bytes []byte
}

// Reader is a pull parser that reads the records of a buffer one after the
// other.
type Reader struct {
	buf    []byte
	offset int
}

// NewReader returns a reader positioned at the beginning of the buffer.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// More returns true while bytes remain to be read.
func (r *Reader) More() bool {
	return r.offset < len(r.buf)
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.offset
}

// Next reads the next record. The reader is left unchanged when an error is
// returned.
func (r *Reader) Next() (Record, error) {
	offset := r.offset

	tag, typ, err := r.ReadKey()
	if err != nil {
		return Record{}, err
	}

	rec, err := r.ReadPayload(tag, typ)
	if err != nil {
		r.offset = offset
		return Record{}, err
	}

	return rec, nil
}

// ReadKey reads the key of the next record and returns its tag and wire type.
func (r *Reader) ReadKey() (uint64, Type, error) {
	key, n, err := DecodeVarint(r.buf[r.offset:])
	if err != nil {
		return 0, 0, err
	}

	r.offset += n

	tag, typ := SplitKey(key)

	return tag, typ, nil
}

// ReadPayload reads the payload of a record whose key has just been read.
func (r *Reader) ReadPayload(tag uint64, typ Type) (Record, error) {
	rec := Record{Tag: tag, Type: typ}

	offset, err := readPayload(r.buf, r.offset, &rec)
	if err != nil {
		return Record{}, err
	}

	r.offset = offset

	return rec, nil
}

// Skip moves the reader past a payload of the given wire type without
// decoding it. It is used to discard the records of unknown fields.
func (r *Reader) Skip(typ Type) error {
	if !typ.Valid() {
		return errWireType(typ)
	}

	n := protowire.ConsumeFieldValue(0, protowire.Type(typ), r.buf[r.offset:])
	if n < 0 {
		// Decode the payload to report why it cannot be skipped.
		_, err := readPayload(r.buf, r.offset, &Record{Type: typ})
		return err
	}

	r.offset += n

	return nil
}

func readPayload(buf []byte, offset int, rec *Record) (int, error) {
	remain := buf[offset:]

	switch rec.Type {
	case Varint:
		v, n, err := DecodeVarint(remain)
		if err != nil {
			return offset, err
		}

		rec.Value = v
		return offset + n, nil
	case Fixed64:
		v, err := DecodeFixed64(remain)
		if err != nil {
			return offset, err
		}

		rec.Value = v
		return offset + 8, nil
	case Fixed32:
		v, err := DecodeFixed32(remain)
		if err != nil {
			return offset, err
		}

		rec.Value = uint64(v)
		return offset + 4, nil
	case LengthDelimited:
		data, n, err := DecodeBytes(remain)
		if err != nil {
			return offset, err
		}

		rec.Bytes = data
		return offset + n, nil
	default:
		return offset, errWireType(rec.Type)
	}
}

func errWireType(typ Type) error {
	return iibin.NewError(iibin.UnknownWireType,
		"wire type %d is not supported", uint8(typ))
}
