package codec

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/iibin"
	"go.dedis.ch/iibin/config"
	"golang.org/x/xerrors"
)

type point struct {
	X       int32  `iibin:"x"`
	Y       *int32 `iibin:"y,omitempty"`
	Label   string `iibin:"-"`
	Comment string
	hidden  int
}

func TestMessage_GetField(t *testing.T) {
	msg := Message{"a": 1, "b": nil}

	v, found := msg.GetField("a")
	require.True(t, found)
	require.Equal(t, 1, v)

	_, found = msg.GetField("b")
	require.False(t, found)

	_, found = msg.GetField("c")
	require.False(t, found)

	require.NoError(t, msg.SetField("c", "x"))
	require.Equal(t, "x", msg["c"])
}

func TestSourceOf(t *testing.T) {
	src, ok := SourceOf(map[string]interface{}{"a": 1})
	require.True(t, ok)
	require.IsType(t, Message{}, src)

	src, ok = SourceOf(map[string]int{"a": 1})
	require.True(t, ok)

	v, found := src.GetField("a")
	require.True(t, found)
	require.Equal(t, 1, v)

	_, found = src.GetField("b")
	require.False(t, found)

	y := int32(2)

	src, ok = SourceOf(&point{X: 1, Y: &y, Label: "l", Comment: "c"})
	require.True(t, ok)

	v, found = src.GetField("x")
	require.True(t, found)
	require.Equal(t, int32(1), v)

	v, found = src.GetField("Comment")
	require.True(t, found)
	require.Equal(t, "c", v)

	_, found = src.GetField("Label")
	require.False(t, found)

	_, found = src.GetField("-")
	require.False(t, found)

	_, found = src.GetField("hidden")
	require.False(t, found)

	_, ok = SourceOf((*point)(nil))
	require.False(t, ok)

	_, ok = SourceOf((*Message)(nil))
	require.False(t, ok)

	src, ok = SourceOf(&Message{"a": 1})
	require.True(t, ok)

	v, found = src.GetField("a")
	require.True(t, found)
	require.Equal(t, 1, v)

	_, ok = SourceOf(map[int]int{})
	require.False(t, ok)

	_, ok = SourceOf("abc")
	require.False(t, ok)

	_, ok = SourceOf(nil)
	require.False(t, ok)
}

func TestIndirect(t *testing.T) {
	_, found := indirect(nil)
	require.False(t, found)

	_, found = indirect((*int)(nil))
	require.False(t, found)

	_, found = indirect([]int(nil))
	require.False(t, found)

	_, found = indirect(map[string]int(nil))
	require.False(t, found)

	n := 3
	p := &n

	v, found := indirect(&p)
	require.True(t, found)
	require.Equal(t, 3, v)

	msg := Message{}

	v, found = indirect(msg)
	require.True(t, found)
	require.Equal(t, msg, v)

	_, found = indirect((*Message)(nil))
	require.False(t, found)

	_, found = indirect(Message(nil))
	require.False(t, found)

	v, found = indirect(&msg)
	require.True(t, found)
	require.Equal(t, &msg, v)
}

func TestCodec_NilMessage(t *testing.T) {
	c := newTestCodec(t, config.Default())

	data, err := c.Encode("Tree", Message{"value": int32(1), "child": (*Message)(nil)})
	require.NoError(t, err)
	require.Equal(t, []byte{0x08, 0x01}, data)

	_, err = c.Encode("Point", (*Message)(nil))
	require.True(t, xerrors.Is(err, iibin.TypeMismatch))
	require.EqualError(t, err,
		"type mismatch: schema 'Point': value of type *codec.Message is not a message")

	data, err = c.Encode("Tree", &tree{Value: 1})
	require.NoError(t, err)
	require.Equal(t, []byte{0x08, 0x01}, data)
}

func TestSinkOf(t *testing.T) {
	sink, ok := SinkOf(map[string]interface{}{})
	require.True(t, ok)
	require.IsType(t, Message{}, sink)

	sink, ok = SinkOf(&recordingSink{})
	require.True(t, ok)
	require.IsType(t, &recordingSink{}, sink)

	p := point{}

	sink, ok = SinkOf(&p)
	require.True(t, ok)
	require.NoError(t, sink.SetField("x", int32(3)))
	require.NoError(t, sink.SetField("unknown", "ignored"))
	require.NoError(t, sink.SetField("Comment", nil))
	require.Equal(t, int32(3), p.X)

	err := sink.SetField("x", "3")
	require.True(t, xerrors.Is(err, iibin.TypeMismatch))
	require.EqualError(t, err, "type mismatch: string value cannot be stored in int32")

	for _, v := range []interface{}{nil, p, (*point)(nil), Message(nil), (*recordingSink)(nil), new(int)} {
		_, ok = SinkOf(v)
		require.False(t, ok, "%T", v)
	}
}

func TestAssign(t *testing.T) {
	type level int16
	type label string

	var target struct {
		Level  level
		Labels []label
		Ptr    *uint32
		Any    interface{}
		Data   []byte
	}

	sink := newStructSink(reflect.ValueOf(&target).Elem())

	require.NoError(t, sink.SetField("Level", int16(-2)))
	require.NoError(t, sink.SetField("Labels", []interface{}{"a", "b"}))
	require.NoError(t, sink.SetField("Ptr", uint32(7)))
	require.NoError(t, sink.SetField("Any", Message{"a": 1}))
	require.NoError(t, sink.SetField("Data", []byte{1, 2}))

	require.Equal(t, level(-2), target.Level)
	require.Equal(t, []label{"a", "b"}, target.Labels)
	require.Equal(t, uint32(7), *target.Ptr)
	require.Equal(t, Message{"a": 1}, target.Any)
	require.Equal(t, []byte{1, 2}, target.Data)

	// Conversions between kinds are never applied.
	require.Error(t, sink.SetField("Level", int32(1)))
	require.Error(t, sink.SetField("Labels", []interface{}{1}))
	require.Error(t, sink.SetField("Labels", "a"))
	require.Error(t, sink.SetField("Level", Message{}))
}

func TestCodec_StructSource(t *testing.T) {
	c := newTestCodec(t, config.Default())

	y := int32(-1)

	data, err := c.Encode("Point", &point{X: 5726, Y: &y, Label: "ignored"})
	require.NoError(t, err)
	require.Equal(t, pointBytes, data)

	data, err = c.Encode("Point", point{X: 5726, Y: &y})
	require.NoError(t, err)
	require.Equal(t, pointBytes, data)

	_, err = c.Encode("Point", point{X: 5726})
	require.True(t, xerrors.Is(err, iibin.MissingRequiredField))
}

func TestCodec_NamedTypes(t *testing.T) {
	type level int16
	type values []level
	type label string

	c := newTestCodec(t, config.Default())

	data, err := c.Encode("Lists", Message{"values": values{1, 2, 3}})
	require.NoError(t, err)
	require.Equal(t, []byte{0x0a, 0x03, 0x01, 0x02, 0x03}, data)

	data, err = c.Encode("Lists", Message{"names": [2]label{"a", "b"}})
	require.NoError(t, err)
	require.Equal(t, []byte{0x1a, 0x01, 'a', 0x1a, 0x01, 'b'}, data)
}

func TestConvert(t *testing.T) {
	n, ok := toInt(uint8(200), -128, 127)
	require.False(t, ok)
	require.Equal(t, int64(0), n)

	n, ok = toInt(int8(-5), -128, 127)
	require.True(t, ok)
	require.Equal(t, int64(-5), n)

	u, ok := toUint(uint16(7), 255)
	require.True(t, ok)
	require.Equal(t, uint64(7), u)

	_, ok = toUint(300, 255)
	require.False(t, ok)

	_, ok = toUint("1", 255)
	require.False(t, ok)

	require.True(t, isInteger(uint(1)))
	require.False(t, isInteger(1.0))

	f, ok := toFloat(uint8(2))
	require.True(t, ok)
	require.Equal(t, 2.0, f)

	_, ok = toFloat(true)
	require.False(t, ok)

	type raw []byte

	data, ok := toOctets(raw{1})
	require.True(t, ok)
	require.Equal(t, []byte{1}, data)

	_, ok = toString([]byte("a"))
	require.False(t, ok)

	_, ok = sequence("abc")
	require.False(t, ok)
}
