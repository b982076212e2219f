package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/iibin"
	"golang.org/x/xerrors"
)

func TestNewEnum(t *testing.T) {
	e, err := NewEnum("Color", []EnumValue{
		{Symbol: "GREEN", Code: 1},
		{Symbol: "RED", Code: 0},
		{Symbol: "MINUS", Code: -3},
	})
	require.NoError(t, err)
	require.Equal(t, "Color", e.Name())

	code, found := e.Code("GREEN")
	require.True(t, found)
	require.Equal(t, int32(1), code)

	symbol, found := e.Symbol(-3)
	require.True(t, found)
	require.Equal(t, "MINUS", symbol)

	_, found = e.Code("BLUE")
	require.False(t, found)

	_, found = e.Symbol(7)
	require.False(t, found)

	require.Equal(t, []EnumValue{
		{Symbol: "MINUS", Code: -3},
		{Symbol: "RED", Code: 0},
		{Symbol: "GREEN", Code: 1},
	}, e.Values())
}

func TestNewEnum_Invalid(t *testing.T) {
	_, err := NewEnum("", nil)
	require.EqualError(t, err, "invalid field definition: enum name is empty")

	_, err = NewEnum("Color", []EnumValue{{Symbol: "RED"}, {Symbol: "RED", Code: 1}})
	require.True(t, xerrors.Is(err, iibin.InvalidFieldDefinition))
	require.EqualError(t, err,
		"invalid field definition: enum 'Color' has duplicate symbol 'RED'")

	_, err = NewEnum("Color", []EnumValue{{Symbol: "RED"}, {Symbol: "GREEN"}})
	require.EqualError(t, err,
		"invalid field definition: enum 'Color' has duplicate code 0")

	_, err = NewEnum("Color", []EnumValue{{Code: 1}})
	require.EqualError(t, err,
		"invalid field definition: enum 'Color' has an empty symbol")
}

func TestEnum_Equal(t *testing.T) {
	a, err := NewEnum("Color", []EnumValue{{Symbol: "RED"}})
	require.NoError(t, err)

	b, err := NewEnum("Color", []EnumValue{{Symbol: "RED"}})
	require.NoError(t, err)
	require.True(t, a.Equal(b))

	c, err := NewEnum("Color", []EnumValue{{Symbol: "BLUE"}})
	require.NoError(t, err)
	require.False(t, a.Equal(c))
	require.False(t, a.Equal(nil))
}
