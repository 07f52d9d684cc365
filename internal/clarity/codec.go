package clarity

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	maxDepth        = 32
	maxTupleNameLen = 128
	intWidth        = 16
)

// ErrTruncated reports input that ended before a value was complete.
var ErrTruncated = errors.New("clarity: truncated input")

var (
	maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	maxInt128  = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minInt128  = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	twoTo128   = new(big.Int).Lsh(big.NewInt(1), 128)
)

// DecodeHex parses a hex string (with or without 0x prefix) into a Value.
func DecodeHex(s string) (Value, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return Value{}, fmt.Errorf("clarity: decode hex: %w", err)
	}
	return Deserialize(raw)
}

// EncodeHex serializes v and returns it as a 0x-prefixed hex string.
func EncodeHex(v Value) (string, error) {
	raw, err := Serialize(v)
	if err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(raw), nil
}

// Deserialize decodes exactly one value from b. Trailing bytes are an error.
func Deserialize(b []byte) (Value, error) {
	d := decoder{buf: b}
	v, err := d.value(0)
	if err != nil {
		return Value{}, err
	}
	if d.pos != len(d.buf) {
		return Value{}, fmt.Errorf("clarity: %d trailing bytes", len(d.buf)-d.pos)
	}
	return v, nil
}

type decoder struct {
	buf []byte
	pos int
}

func (d *decoder) take(n int) ([]byte, error) {
	if n < 0 || len(d.buf)-d.pos < n {
		return nil, ErrTruncated
	}
	out := d.buf[d.pos : d.pos+n]
	d.pos += n
	return out, nil
}

func (d *decoder) readByte() (byte, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *decoder) u32() (int, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	n := binary.BigEndian.Uint32(b)
	if int64(n) > int64(len(d.buf)) {
		return 0, ErrTruncated
	}
	return int(n), nil
}

func (d *decoder) value(depth int) (Value, error) {
	if depth > maxDepth {
		return Value{}, fmt.Errorf("clarity: nesting deeper than %d", maxDepth)
	}
	prefix, err := d.readByte()
	if err != nil {
		return Value{}, err
	}
	t := Type(prefix)
	switch t {
	case TypeInt, TypeUint:
		raw, err := d.take(intWidth)
		if err != nil {
			return Value{}, err
		}
		n := new(big.Int).SetBytes(raw)
		if t == TypeInt && raw[0]&0x80 != 0 {
			n.Sub(n, twoTo128)
		}
		return Value{Type: t, Int: n}, nil
	case TypeBuffer:
		n, err := d.u32()
		if err != nil {
			return Value{}, err
		}
		raw, err := d.take(n)
		if err != nil {
			return Value{}, err
		}
		return Buffer(raw), nil
	case TypeTrue, TypeFalse, TypeNone:
		return Value{Type: t}, nil
	case TypeStandardPrincipal, TypeContractPrincipal:
		p, err := d.principal(t == TypeContractPrincipal)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: t, Principal: p}, nil
	case TypeResponseOk, TypeResponseErr, TypeSome:
		inner, err := d.value(depth + 1)
		if err != nil {
			return Value{}, err
		}
		return Value{Type: t, Inner: &inner}, nil
	case TypeList:
		n, err := d.u32()
		if err != nil {
			return Value{}, err
		}
		items := make([]Value, 0, n)
		for i := 0; i < n; i++ {
			item, err := d.value(depth + 1)
			if err != nil {
				return Value{}, fmt.Errorf("list item %d: %w", i, err)
			}
			items = append(items, item)
		}
		return Value{Type: TypeList, List: items}, nil
	case TypeTuple:
		return d.tuple(depth)
	case TypeStringASCII, TypeStringUTF8:
		n, err := d.u32()
		if err != nil {
			return Value{}, err
		}
		raw, err := d.take(n)
		if err != nil {
			return Value{}, err
		}
		if t == TypeStringUTF8 && !utf8.Valid(raw) {
			return Value{}, fmt.Errorf("clarity: invalid utf-8 in string-utf8")
		}
		if t == TypeStringASCII && !isASCII(raw) {
			return Value{}, fmt.Errorf("clarity: non-ascii byte in string-ascii")
		}
		return Value{Type: t, Str: string(raw)}, nil
	default:
		return Value{}, fmt.Errorf("clarity: unknown type prefix 0x%02x", prefix)
	}
}

func (d *decoder) principal(contract bool) (Principal, error) {
	version, err := d.readByte()
	if err != nil {
		return Principal{}, err
	}
	hash, err := d.take(20)
	if err != nil {
		return Principal{}, err
	}
	p := Principal{Version: version}
	copy(p.Hash160[:], hash)
	if !contract {
		return p, nil
	}
	name, err := d.name()
	if err != nil {
		return Principal{}, fmt.Errorf("contract name: %w", err)
	}
	p.Contract = name
	return p, nil
}

func (d *decoder) name() (string, error) {
	n, err := d.readByte()
	if err != nil {
		return "", err
	}
	if n == 0 || int(n) > maxTupleNameLen {
		return "", fmt.Errorf("clarity: name length %d out of range", n)
	}
	raw, err := d.take(int(n))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (d *decoder) tuple(depth int) (Value, error) {
	n, err := d.u32()
	if err != nil {
		return Value{}, err
	}
	entries := make([]TupleEntry, 0, n)
	for i := 0; i < n; i++ {
		name, err := d.name()
		if err != nil {
			return Value{}, fmt.Errorf("tuple entry %d: %w", i, err)
		}
		v, err := d.value(depth + 1)
		if err != nil {
			return Value{}, fmt.Errorf("tuple field %q: %w", name, err)
		}
		if i > 0 && entries[i-1].Name >= name {
			return Value{}, fmt.Errorf("clarity: tuple fields not sorted at %q", name)
		}
		entries = append(entries, TupleEntry{Name: name, Value: v})
	}
	return Value{Type: TypeTuple, Tuple: entries}, nil
}

// Serialize encodes v in the consensus wire format.
func Serialize(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, v, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encode(buf *bytes.Buffer, v Value, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("clarity: nesting deeper than %d", maxDepth)
	}
	buf.WriteByte(byte(v.Type))
	switch v.Type {
	case TypeInt, TypeUint:
		return encodeInt(buf, v)
	case TypeBuffer:
		writeU32(buf, len(v.Bytes))
		buf.Write(v.Bytes)
	case TypeTrue, TypeFalse, TypeNone:
	case TypeStandardPrincipal, TypeContractPrincipal:
		buf.WriteByte(v.Principal.Version)
		buf.Write(v.Principal.Hash160[:])
		if v.Type == TypeContractPrincipal {
			if err := writeName(buf, v.Principal.Contract); err != nil {
				return err
			}
		}
	case TypeResponseOk, TypeResponseErr, TypeSome:
		if v.Inner == nil {
			return fmt.Errorf("clarity: %s without inner value", v.Type)
		}
		return encode(buf, *v.Inner, depth+1)
	case TypeList:
		writeU32(buf, len(v.List))
		for _, item := range v.List {
			if err := encode(buf, item, depth+1); err != nil {
				return err
			}
		}
	case TypeTuple:
		entries := append([]TupleEntry(nil), v.Tuple...)
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
		writeU32(buf, len(entries))
		for _, entry := range entries {
			if err := writeName(buf, entry.Name); err != nil {
				return err
			}
			if err := encode(buf, entry.Value, depth+1); err != nil {
				return err
			}
		}
	case TypeStringASCII:
		if !isASCII([]byte(v.Str)) {
			return fmt.Errorf("clarity: non-ascii byte in string-ascii")
		}
		writeU32(buf, len(v.Str))
		buf.WriteString(v.Str)
	case TypeStringUTF8:
		if !utf8.ValidString(v.Str) {
			return fmt.Errorf("clarity: invalid utf-8 in string-utf8")
		}
		writeU32(buf, len(v.Str))
		buf.WriteString(v.Str)
	default:
		return fmt.Errorf("clarity: cannot serialize %s", v.Type)
	}
	return nil
}

func encodeInt(buf *bytes.Buffer, v Value) error {
	n := v.Int
	if n == nil {
		n = new(big.Int)
	}
	if v.Type == TypeUint {
		if n.Sign() < 0 || n.Cmp(maxUint128) > 0 {
			return fmt.Errorf("clarity: uint %s out of range", n)
		}
	} else {
		if n.Cmp(minInt128) < 0 || n.Cmp(maxInt128) > 0 {
			return fmt.Errorf("clarity: int %s out of range", n)
		}
		if n.Sign() < 0 {
			n = new(big.Int).Add(n, twoTo128)
		}
	}
	var out [intWidth]byte
	n.FillBytes(out[:])
	buf.Write(out[:])
	return nil
}

func writeU32(buf *bytes.Buffer, n int) {
	var out [4]byte
	binary.BigEndian.PutUint32(out[:], uint32(n))
	buf.Write(out[:])
}

func writeName(buf *bytes.Buffer, name string) error {
	if name == "" || len(name) > maxTupleNameLen {
		return fmt.Errorf("clarity: name %q length out of range", name)
	}
	buf.WriteByte(byte(len(name)))
	buf.WriteString(name)
	return nil
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c > 0x7f {
			return false
		}
	}
	return true
}
