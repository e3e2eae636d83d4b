package uni

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"unicode/utf8"
)

// AttrType is a payload attribute wire type, written as a kind letter
// followed by a three digit byte width, e.g. "U002". A width of "XXX"
// marks a variable length attribute whose size is resolved while the
// payload is walked.
type AttrType string

// Variable is the size reported for variable length attribute types.
const Variable = -1

// Attribute type kinds.
const (
	KindUnsigned = 'U'
	KindSigned   = 'S'
	KindFloat    = 'R'
	KindChar     = 'C'
	KindBytes    = 'X'
)

const (
	C4   AttrType = "C004"
	C8   AttrType = "C008" // 8 byte character string
	C10  AttrType = "C010" // 10 byte character string
	C16  AttrType = "C016"
	C32  AttrType = "C032"
	C33  AttrType = "C033"
	C43  AttrType = "C043"
	C66  AttrType = "C066"
	C129 AttrType = "C129"
	CV   AttrType = "CXXX" // variable length character string
	R4   AttrType = "R004" // IEEE-754 single precision
	R8   AttrType = "R008" // IEEE-754 double precision
	S1   AttrType = "S001"
	S2   AttrType = "S002"
	S4   AttrType = "S004"
	S8   AttrType = "S008"
	U1   AttrType = "U001"
	U2   AttrType = "U002"
	U3   AttrType = "U003"
	U4   AttrType = "U004"
	U5   AttrType = "U005"
	U6   AttrType = "U006"
	U8   AttrType = "U008"
	U10  AttrType = "U010"
	U15  AttrType = "U015"
	U16  AttrType = "U016"
	U17  AttrType = "U017"
	X1   AttrType = "X001" // 8 bit field
	X2   AttrType = "X002" // 16 bit field
	X4   AttrType = "X004" // 32 bit field
	X8   AttrType = "X008" // 64 bit field
	X61  AttrType = "X061"
	X250 AttrType = "X250"
	XV   AttrType = "XXXX" // variable length byte field
)

// Kind returns the type letter, or 0 for a malformed tag.
func (t AttrType) Kind() byte {
	if len(t) == 0 {
		return 0
	}
	switch t[0] {
	case KindUnsigned, KindSigned, KindFloat, KindChar, KindBytes:
		return t[0]
	}
	return 0
}

// WithSize returns an attribute type of the same kind with a fixed width.
func (t AttrType) WithSize(n int) AttrType {
	if len(t) == 0 {
		return t
	}
	return AttrType(fmt.Sprintf("%c%03d", t[0], n))
}

// SizeOf returns the byte width of t, or Variable.
func SizeOf(t AttrType) (int, error) {
	if len(t) != 4 || t.Kind() == 0 {
		return 0, fmt.Errorf("%w %q", ErrUnknownType, string(t))
	}
	if t[1:] == "XXX" {
		return Variable, nil
	}
	n, err := strconv.Atoi(string(t[1:]))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w %q", ErrUnknownType, string(t))
	}
	switch t.Kind() {
	case KindFloat:
		if n != 4 && n != 8 {
			return 0, fmt.Errorf("%w %q", ErrUnknownType, string(t))
		}
	}
	return n, nil
}

// ValueKind identifies the variant held by a Value.
type ValueKind uint8

const (
	ValueInvalid ValueKind = iota
	ValueUnsigned
	ValueSigned
	ValueFloat
	ValueString
	ValueBytes
)

func (k ValueKind) String() string {
	switch k {
	case ValueUnsigned:
		return "unsigned"
	case ValueSigned:
		return "signed"
	case ValueFloat:
		return "float"
	case ValueString:
		return "string"
	case ValueBytes:
		return "bytes"
	default:
		return "invalid"
	}
}

// Value is a decoded attribute value.
type Value struct {
	kind ValueKind
	u    uint64
	i    int64
	wide *big.Int // integers that do not fit 64 bits
	f    float64
	s    string
	b    []byte
}

func Uint(v uint64) Value   { return Value{kind: ValueUnsigned, u: v} }
func Int(v int64) Value     { return Value{kind: ValueSigned, i: v} }
func Float(v float64) Value { return Value{kind: ValueFloat, f: v} }
func Str(v string) Value    { return Value{kind: ValueString, s: v} }

// Bytes stores a copy of v.
func Bytes(v []byte) Value {
	return Value{kind: ValueBytes, b: append([]byte{}, v...)}
}

// BigInt stores an arbitrary precision integer. Non-negative values are
// unsigned; values that fit 64 bits are stored narrow.
func BigInt(v *big.Int) Value {
	if v.Sign() >= 0 {
		if v.IsUint64() {
			return Uint(v.Uint64())
		}
		return Value{kind: ValueUnsigned, wide: new(big.Int).Set(v)}
	}
	if v.IsInt64() {
		return Int(v.Int64())
	}
	return Value{kind: ValueSigned, wide: new(big.Int).Set(v)}
}

func (v Value) Kind() ValueKind { return v.kind }

// IsInteger reports whether v holds a signed or unsigned integer.
func (v Value) IsInteger() bool {
	return v.kind == ValueUnsigned || v.kind == ValueSigned
}

// Uint returns the value as uint64. Wide and negative integers are truncated.
func (v Value) Uint() uint64 {
	switch v.kind {
	case ValueUnsigned:
		if v.wide != nil {
			return v.wide.Uint64()
		}
		return v.u
	case ValueSigned:
		return uint64(v.i)
	case ValueFloat:
		return uint64(v.f)
	}
	return 0
}

func (v Value) Int() int64 {
	switch v.kind {
	case ValueUnsigned:
		return int64(v.Uint())
	case ValueSigned:
		if v.wide != nil {
			return v.wide.Int64()
		}
		return v.i
	case ValueFloat:
		return int64(v.f)
	}
	return 0
}

func (v Value) Float() float64 {
	switch v.kind {
	case ValueFloat:
		return v.f
	case ValueUnsigned, ValueSigned:
		f, _ := new(big.Float).SetInt(v.Big()).Float64()
		return f
	}
	return 0
}

// Big returns an integer value as a new big.Int, or nil for other kinds.
func (v Value) Big() *big.Int {
	switch {
	case v.wide != nil:
		return new(big.Int).Set(v.wide)
	case v.kind == ValueUnsigned:
		return new(big.Int).SetUint64(v.u)
	case v.kind == ValueSigned:
		return big.NewInt(v.i)
	}
	return nil
}

func (v Value) Text() string { return v.s }

// Bytes returns a copy of the byte field contents.
func (v Value) Bytes() []byte {
	if v.b == nil {
		return nil
	}
	return append([]byte{}, v.b...)
}

// Equal compares kind and contents. Integers compare numerically
// regardless of signedness.
func (v Value) Equal(o Value) bool {
	if v.IsInteger() && o.IsInteger() {
		return v.Big().Cmp(o.Big()) == 0
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case ValueFloat:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case ValueString:
		return v.s == o.s
	case ValueBytes:
		return bytes.Equal(v.b, o.b)
	}
	return true
}

func (v Value) String() string {
	switch v.kind {
	case ValueUnsigned, ValueSigned:
		return v.Big().String()
	case ValueFloat:
		return formatFloat(v.f)
	case ValueString:
		return v.s
	case ValueBytes:
		return Escape(v.b)
	}
	return "<invalid>"
}

func formatFloat(f float64) string {
	a := math.Abs(f)
	if a != 0 && (a < 1e-4 || a >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		s += ".0"
	}
	return s
}

// DecodeScalar converts raw little-endian bytes to a value of type t.
// The width of b is taken as given; callers slice it to SizeOf(t).
func DecodeScalar(b []byte, t AttrType) (Value, error) {
	if _, err := SizeOf(t); err != nil {
		return Value{}, err
	}
	switch t.Kind() {
	case KindBytes:
		return Bytes(b), nil
	case KindChar:
		return Str(decodeChars(b)), nil
	case KindUnsigned:
		if len(b) <= 8 {
			var u uint64
			for i := len(b) - 1; i >= 0; i-- {
				u = u<<8 | uint64(b[i])
			}
			return Uint(u), nil
		}
		return BigInt(leToBig(b)), nil
	case KindSigned:
		if len(b) == 0 {
			return Int(0), nil
		}
		n := leToBig(b)
		if b[len(b)-1]&0x80 != 0 {
			n.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(8*len(b))))
		}
		if n.IsInt64() {
			return Int(n.Int64()), nil
		}
		return Value{kind: ValueSigned, wide: n}, nil
	case KindFloat:
		switch len(b) {
		case 4:
			return Float(float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))), nil
		case 8:
			return Float(math.Float64frombits(binary.LittleEndian.Uint64(b))), nil
		}
		return Value{}, fmt.Errorf("%w: float width %d", ErrInvalidAttributeType, len(b))
	}
	return Value{}, fmt.Errorf("%w %q", ErrUnknownType, string(t))
}

// EncodeScalar converts v to bytes of type t. Integer types accept only
// integer values, floats only floats, char strings only strings and byte
// fields only bytes.
func EncodeScalar(v Value, t AttrType) ([]byte, error) {
	size, err := SizeOf(t)
	if err != nil {
		return nil, err
	}
	if !kindMatches(v, t) {
		return nil, fmt.Errorf("%w: attribute type %s value %s must be %s, not %s",
			ErrInvalidAttributeType, t, v, familyName(t), v.kind)
	}
	switch t.Kind() {
	case KindBytes:
		if size == Variable {
			return append([]byte{}, v.b...), nil
		}
		if len(v.b) > size {
			return nil, fmt.Errorf("%w: %d bytes exceeds width %d", ErrInvalidAttributeType, len(v.b), size)
		}
		out := make([]byte, size)
		copy(out, v.b)
		return out, nil
	case KindChar:
		b := []byte(v.s)
		if size == Variable {
			return b, nil
		}
		if len(b) > size {
			return nil, fmt.Errorf("%w: string of %d bytes exceeds width %d", ErrInvalidAttributeType, len(b), size)
		}
		return append(b, bytes.Repeat([]byte{' '}, size-len(b))...), nil
	case KindFloat:
		if size == 4 {
			return binary.LittleEndian.AppendUint32(nil, math.Float32bits(float32(v.f))), nil
		}
		return binary.LittleEndian.AppendUint64(nil, math.Float64bits(v.f)), nil
	case KindUnsigned, KindSigned:
		if size == Variable {
			return nil, fmt.Errorf("%w: integer %s has no width", ErrInvalidAttributeType, t)
		}
		return encodeInt(v.Big(), size, t.Kind() == KindSigned)
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownType, string(t))
}

// Nominal returns the zero value used for attributes omitted at encode time.
func Nominal(t AttrType) (Value, error) {
	size, err := SizeOf(t)
	if err != nil {
		return Value{}, err
	}
	if size == Variable {
		size = 0
	}
	switch t.Kind() {
	case KindBytes:
		return Bytes(make([]byte, size)), nil
	case KindChar:
		return Str(string(bytes.Repeat([]byte{' '}, size))), nil
	case KindFloat:
		return Float(0), nil
	default:
		return Uint(0), nil
	}
}

func kindMatches(v Value, t AttrType) bool {
	switch t.Kind() {
	case KindUnsigned, KindSigned:
		return v.IsInteger()
	case KindFloat:
		return v.kind == ValueFloat
	case KindChar:
		return v.kind == ValueString
	case KindBytes:
		return v.kind == ValueBytes
	}
	return false
}

func familyName(t AttrType) string {
	switch t.Kind() {
	case KindUnsigned, KindSigned:
		return "integer"
	case KindFloat:
		return "float"
	case KindChar:
		return "string"
	case KindBytes:
		return "bytes"
	}
	return "unknown"
}

func encodeInt(n *big.Int, size int, signed bool) ([]byte, error) {
	bits := uint(8 * size)
	limit := new(big.Int).Lsh(big.NewInt(1), bits)
	if signed {
		half := new(big.Int).Rsh(limit, 1)
		if n.Cmp(half) >= 0 || n.Cmp(new(big.Int).Neg(half)) < 0 {
			return nil, fmt.Errorf("%w: overflow, %s does not fit signed %d bytes", ErrInvalidAttributeType, n, size)
		}
		if n.Sign() < 0 {
			n = new(big.Int).Add(n, limit)
		}
	} else if n.Sign() < 0 || n.Cmp(limit) >= 0 {
		return nil, fmt.Errorf("%w: overflow, %s does not fit unsigned %d bytes", ErrInvalidAttributeType, n, size)
	}
	be := n.FillBytes(make([]byte, size))
	for i, j := 0, len(be)-1; i < j; i, j = i+1, j-1 {
		be[i], be[j] = be[j], be[i]
	}
	return be, nil
}

func leToBig(b []byte) *big.Int {
	be := make([]byte, len(b))
	for i := range b {
		be[len(b)-1-i] = b[i]
	}
	return new(big.Int).SetBytes(be)
}

// decodeChars decodes UTF-8, replacing invalid bytes with \xNN escapes.
func decodeChars(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var sb bytes.Buffer
	for len(b) > 0 {
		r, n := utf8.DecodeRune(b)
		if r == utf8.RuneError && n == 1 {
			fmt.Fprintf(&sb, `\x%02x`, b[0])
		} else {
			sb.Write(b[:n])
		}
		b = b[n:]
	}
	return sb.String()
}
