package schema

import (
	"sort"

	"go.dedis.ch/iibin"
)

// EnumValue is a symbol of an enum and its integer code.
type EnumValue struct {
	Symbol string
	Code   int32
}

// EnumDef is a compiled enum definition which maps the symbols to their codes
// in both directions.
type EnumDef struct {
	name    string
	values  []EnumValue
	codes   map[string]int32
	symbols map[int32]string
}

// NewEnum compiles the values into an enum definition. It returns an
// InvalidFieldDefinition error when a symbol or a code is duplicated.
func NewEnum(name string, values []EnumValue) (*EnumDef, error) {
	if name == "" {
		return nil, iibin.NewError(iibin.InvalidFieldDefinition, "enum name is empty")
	}

	e := &EnumDef{
		name:    name,
		values:  make([]EnumValue, len(values)),
		codes:   make(map[string]int32, len(values)),
		symbols: make(map[int32]string, len(values)),
	}

	copy(e.values, values)

	sort.SliceStable(e.values, func(i, j int) bool {
		return e.values[i].Code < e.values[j].Code
	})

	for _, v := range e.values {
		if v.Symbol == "" {
			return nil, iibin.NewError(iibin.InvalidFieldDefinition,
				"enum '%s' has an empty symbol", name)
		}

		_, found := e.codes[v.Symbol]
		if found {
			return nil, iibin.NewError(iibin.InvalidFieldDefinition,
				"enum '%s' has duplicate symbol '%s'", name, v.Symbol)
		}

		_, found = e.symbols[v.Code]
		if found {
			return nil, iibin.NewError(iibin.InvalidFieldDefinition,
				"enum '%s' has duplicate code %d", name, v.Code)
		}

		e.codes[v.Symbol] = v.Code
		e.symbols[v.Code] = v.Symbol
	}

	return e, nil
}

// Name returns the name of the enum.
func (e *EnumDef) Name() string {
	return e.name
}

// Values returns a copy of the values sorted by code.
func (e *EnumDef) Values() []EnumValue {
	values := make([]EnumValue, len(e.values))
	copy(values, e.values)

	return values
}

// Code returns the code of the symbol if it exists.
func (e *EnumDef) Code(symbol string) (int32, bool) {
	code, found := e.codes[symbol]
	return code, found
}

// Symbol returns the symbol of the code if it exists.
func (e *EnumDef) Symbol(code int32) (string, bool) {
	symbol, found := e.symbols[code]
	return symbol, found
}

// Equal returns true if both enums have the same name and values.
func (e *EnumDef) Equal(other *EnumDef) bool {
	if other == nil || e.name != other.name || len(e.values) != len(other.values) {
		return false
	}

	for i, v := range e.values {
		if v != other.values[i] {
			return false
		}
	}

	return true
}
