package clarity

import (
	"fmt"
	"math/big"
	"sort"
)

// Type is the one-byte prefix that tags every serialized Clarity value.
type Type byte

const (
	TypeInt               Type = 0x00
	TypeUint              Type = 0x01
	TypeBuffer            Type = 0x02
	TypeTrue              Type = 0x03
	TypeFalse             Type = 0x04
	TypeStandardPrincipal Type = 0x05
	TypeContractPrincipal Type = 0x06
	TypeResponseOk        Type = 0x07
	TypeResponseErr       Type = 0x08
	TypeNone              Type = 0x09
	TypeSome              Type = 0x0a
	TypeList              Type = 0x0b
	TypeTuple             Type = 0x0c
	TypeStringASCII       Type = 0x0d
	TypeStringUTF8        Type = 0x0e
)

var typeNames = map[Type]string{
	TypeInt:               "int",
	TypeUint:              "uint",
	TypeBuffer:            "buffer",
	TypeTrue:              "bool",
	TypeFalse:             "bool",
	TypeStandardPrincipal: "principal",
	TypeContractPrincipal: "principal",
	TypeResponseOk:        "ok",
	TypeResponseErr:       "err",
	TypeNone:              "none",
	TypeSome:              "some",
	TypeList:              "list",
	TypeTuple:             "tuple",
	TypeStringASCII:       "string-ascii",
	TypeStringUTF8:        "string-utf8",
}

// String returns the Clarity type name.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(0x%02x)", byte(t))
}

// Value is a decoded Clarity value. Only the fields relevant to Type are set.
type Value struct {
	Type      Type
	Int       *big.Int     // int, uint
	Bytes     []byte       // buffer
	Str       string       // string-ascii, string-utf8
	Principal Principal    // standard and contract principals
	Inner     *Value       // ok, err, some
	List      []Value      // list
	Tuple     []TupleEntry // tuple, sorted by name
}

// TupleEntry is one named member of a tuple.
type TupleEntry struct {
	Name  string
	Value Value
}

// Field returns the tuple member called name.
func (v Value) Field(name string) (Value, bool) {
	if v.Type != TypeTuple {
		return Value{}, false
	}
	for _, entry := range v.Tuple {
		if entry.Name == name {
			return entry.Value, true
		}
	}
	return Value{}, false
}

// Uint builds a uint value.
func Uint(n uint64) Value {
	return Value{Type: TypeUint, Int: new(big.Int).SetUint64(n)}
}

// Int builds an int value.
func Int(n int64) Value {
	return Value{Type: TypeInt, Int: big.NewInt(n)}
}

// Bool builds a true or false value.
func Bool(b bool) Value {
	if b {
		return Value{Type: TypeTrue}
	}
	return Value{Type: TypeFalse}
}

// Buffer builds a buffer value holding a copy of b.
func Buffer(b []byte) Value {
	return Value{Type: TypeBuffer, Bytes: append([]byte(nil), b...)}
}

// StringUTF8 builds a string-utf8 value.
func StringUTF8(s string) Value {
	return Value{Type: TypeStringUTF8, Str: s}
}

// StringASCII builds a string-ascii value.
func StringASCII(s string) Value {
	return Value{Type: TypeStringASCII, Str: s}
}

// PrincipalValue wraps p as a standard or contract principal value.
func PrincipalValue(p Principal) Value {
	if p.Contract != "" {
		return Value{Type: TypeContractPrincipal, Principal: p}
	}
	return Value{Type: TypeStandardPrincipal, Principal: p}
}

// Ok wraps v in a successful response.
func Ok(v Value) Value { return Value{Type: TypeResponseOk, Inner: &v} }

// Err wraps v in an error response.
func Err(v Value) Value { return Value{Type: TypeResponseErr, Inner: &v} }

// Some wraps v in an optional.
func Some(v Value) Value { return Value{Type: TypeSome, Inner: &v} }

// None is the empty optional.
func None() Value { return Value{Type: TypeNone} }

// List builds a list value.
func List(items ...Value) Value {
	return Value{Type: TypeList, List: items}
}

// Tuple builds a tuple value with its members sorted by name.
func Tuple(fields map[string]Value) Value {
	entries := make([]TupleEntry, 0, len(fields))
	for name, v := range fields {
		entries = append(entries, TupleEntry{Name: name, Value: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return Value{Type: TypeTuple, Tuple: entries}
}
