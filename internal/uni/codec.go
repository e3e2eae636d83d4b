package uni

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// Values holds caller supplied attributes for encoding, keyed by their
// index-suffixed names.
type Values map[string]Value

// walker applies a schema to a payload. When decoding it consumes
// payload from offset; when encoding it appends to the builder payload
// and takes values from vals.
type walker struct {
	b         *Builder
	decode    bool
	payload   []byte
	offset    int
	vals      Values
	bitfields bool
}

func (w *walker) walk(s Schema, index []int) error {
	for _, f := range s {
		if err := w.field(f, index); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) field(f Field, index []int) error {
	switch d := f.Def.(type) {
	case Scalar:
		return w.scalar(f.Name, d, index)
	case Scaled:
		return w.scaled(f.Name, d, index)
	case Group:
		return w.group(f.Name, d, index)
	case Bitfield:
		if !w.bitfields {
			return w.scalar(f.Name, Scalar{Type: d.Container}, index)
		}
		return w.bitfield(f.Name, d, index)
	case Bits:
		return w.fail(suffixed(f.Name, index), fmt.Errorf("%w: bit span outside bitfield", ErrUnknownType))
	}
	return w.fail(suffixed(f.Name, index), fmt.Errorf("%w: definition %T", ErrUnknownType, f.Def))
}

func (w *walker) fail(name string, err error) error {
	var ae *AttributeError
	if errors.As(err, &ae) {
		return err
	}
	return &AttributeError{Attr: name, Identity: w.b.Identity(), Mode: w.b.mode, Err: err}
}

func (w *walker) take(n int) ([]byte, error) {
	if n < 0 || w.offset+n > len(w.payload) {
		return nil, fmt.Errorf("payload too short: need %d bytes at offset %d, have %d", n, w.offset, len(w.payload))
	}
	b := w.payload[w.offset : w.offset+n]
	w.offset += n
	return b, nil
}

// sibling finds a previously set attribute, preferring the one at the
// same group level.
func (w *walker) sibling(name string, index []int) (Value, error) {
	if v, ok := w.b.get(suffixed(name, index)); ok {
		return v, nil
	}
	if v, ok := w.b.get(name); ok {
		return v, nil
	}
	return Value{}, fmt.Errorf("sibling attribute %q not set", name)
}

// width resolves the byte size of a scalar. Variable is returned when the
// size follows from the data itself.
func (w *walker) width(d Scalar, index []int) (int, error) {
	n, err := SizeOf(d.Type)
	if err != nil || n != Variable {
		return n, err
	}
	switch wd := d.Width.(type) {
	case PerSibling:
		v, err := w.sibling(wd.Sibling, index)
		if err != nil {
			return 0, err
		}
		if !v.IsInteger() || v.Int() < 0 {
			return 0, fmt.Errorf("sibling attribute %q is not a count: %s", wd.Sibling, v)
		}
		return int(v.Int()) * wd.Unit, nil
	case LengthLess:
		if !w.b.lengthSet {
			return Variable, nil
		}
		return max(int(w.b.hdr.Length)-wd.Prefix, 0), nil
	case nil:
		if w.decode {
			return len(w.payload) - w.offset, nil
		}
		return Variable, nil
	}
	return 0, fmt.Errorf("%w: width rule %T", ErrUnknownType, d.Width)
}

func (w *walker) scalar(name string, d Scalar, index []int) error {
	key := suffixed(name, index)
	size, err := w.width(d, index)
	if err != nil {
		return w.fail(key, err)
	}

	if w.decode {
		raw, err := w.take(size)
		if err != nil {
			return w.fail(key, err)
		}
		v, err := decodeSized(raw, d.Type, size)
		if err != nil {
			return w.fail(key, err)
		}
		return w.b.Set(key, v)
	}

	v, supplied := w.vals[key]
	if !supplied {
		if v, err = nominalSized(d.Type, size); err != nil {
			return w.fail(key, err)
		}
	}
	t := d.Type
	if size > 0 {
		t = t.WithSize(size)
	}
	var raw []byte
	if size == 0 {
		if supplied && !emptyValue(v) {
			return w.fail(key, fmt.Errorf("%w: value %s does not fit zero width", ErrInvalidAttributeType, v))
		}
	} else if raw, err = EncodeScalar(v, t); err != nil {
		return w.fail(key, err)
	}
	w.b.payload = append(w.b.payload, raw...)
	return w.b.Set(key, v)
}

func decodeSized(raw []byte, t AttrType, size int) (Value, error) {
	if size == 0 {
		return nominalSized(t, 0)
	}
	return DecodeScalar(raw, t.WithSize(size))
}

func nominalSized(t AttrType, size int) (Value, error) {
	if size > 0 {
		return Nominal(t.WithSize(size))
	}
	if t.Kind() == 0 {
		return Value{}, fmt.Errorf("%w %q", ErrUnknownType, string(t))
	}
	return Nominal(t[:1] + "XXX")
}

func emptyValue(v Value) bool {
	switch v.Kind() {
	case ValueString:
		return v.Text() == ""
	case ValueBytes:
		return len(v.Bytes()) == 0
	}
	return false
}

// scaleRound is the number of decimal places scaled values are rounded to.
const scaleRound = 12

func (w *walker) scaled(name string, d Scaled, index []int) error {
	key := suffixed(name, index)
	if d.Resolution == 0 {
		return w.fail(key, fmt.Errorf("%w: zero resolution", ErrUnknownType))
	}
	size, err := SizeOf(d.Type)
	if err != nil {
		return w.fail(key, err)
	}
	if size == Variable {
		return w.fail(key, fmt.Errorf("%w: scaled attribute %s has no width", ErrUnknownType, d.Type))
	}

	if w.decode {
		raw, err := w.take(size)
		if err != nil {
			return w.fail(key, err)
		}
		v, err := DecodeScalar(raw, d.Type)
		if err != nil {
			return w.fail(key, err)
		}
		return w.b.Set(key, Float(roundTo(v.Float()*d.Resolution, scaleRound)))
	}

	v, ok := w.vals[key]
	if !ok {
		v = Float(0)
	}
	if !v.IsInteger() && v.Kind() != ValueFloat {
		return w.fail(key, fmt.Errorf("%w: scaled attribute value %s must be numeric, not %s", ErrInvalidAttributeType, v, v.Kind()))
	}
	q := math.Round(v.Float() / d.Resolution)
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return w.fail(key, fmt.Errorf("%w: overflow scaling %s", ErrInvalidAttributeType, v))
	}
	n, _ := big.NewFloat(q).Int(nil)
	raw, err := EncodeScalar(BigInt(n), d.Type)
	if err != nil {
		return w.fail(key, err)
	}
	w.b.payload = append(w.b.payload, raw...)
	return w.b.Set(key, v)
}

func roundTo(f float64, places int) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(f, 'f', places, 64), 64)
	if err != nil {
		return f
	}
	return r
}

func (w *walker) group(name string, d Group, index []int) error {
	key := suffixed(name, index)
	count, err := w.count(d, index)
	if err != nil {
		return w.fail(key, err)
	}
	level := append(append(make([]int, 0, len(index)+1), index...), 0)
	for i := 1; i <= count; i++ {
		level[len(level)-1] = i
		if err := w.walk(d.Fields, level); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) count(d Group, index []int) (int, error) {
	switch d.Count.kind {
	case countFixed:
		return d.Count.n, nil
	case countSibling:
		v, err := w.sibling(d.Count.sibling, index)
		if err != nil {
			return 0, err
		}
		if !v.IsInteger() || v.Int() < 0 {
			return 0, fmt.Errorf("%w: group count %q is not a count: %s", ErrInvalidAttributeType, d.Count.sibling, v)
		}
		return int(v.Int()), nil
	case countRemainder:
		if !w.decode {
			return w.suppliedItems(d.Fields, index), nil
		}
		size, err := itemSize(d.Fields)
		if err != nil {
			return 0, err
		}
		if size == 0 {
			return 0, fmt.Errorf("%w: group sized by remainder has no fixed item size", ErrUnknownType)
		}
		return (len(w.payload) - w.offset) / size, nil
	}
	return 0, fmt.Errorf("%w: group count source", ErrUnknownType)
}

// suppliedItems counts the consecutive group items, starting at 1, for
// which the caller supplied at least one member value.
func (w *walker) suppliedItems(fields Schema, index []int) int {
	level := append(append(make([]int, 0, len(index)+1), index...), 0)
	n := 0
	for {
		level[len(level)-1] = n + 1
		if !w.anySupplied(fields, level) {
			return n
		}
		n++
	}
}

func (w *walker) anySupplied(fields Schema, index []int) bool {
	for _, f := range fields {
		switch d := f.Def.(type) {
		case Bitfield:
			if _, ok := w.vals[suffixed(f.Name, index)]; ok {
				return true
			}
			if w.anySupplied(d.Spans, index) {
				return true
			}
		case Group:
			// nested items are suffixed one level deeper
			if w.anySupplied(d.Fields, append(append([]int(nil), index...), 1)) {
				return true
			}
		default:
			if _, ok := w.vals[suffixed(f.Name, index)]; ok {
				return true
			}
		}
	}
	return false
}

func (w *walker) bitfield(name string, d Bitfield, index []int) error {
	key := suffixed(name, index)
	size, err := SizeOf(d.Container)
	if err != nil {
		return w.fail(key, err)
	}
	if size == Variable || size > 8 {
		return w.fail(key, fmt.Errorf("%w: bitfield container %s must be 1 to 8 bytes", ErrUnknownType, d.Container))
	}
	bits := 8 * size

	var field uint64
	if w.decode {
		raw, err := w.take(size)
		if err != nil {
			return w.fail(key, err)
		}
		buf := make([]byte, 8)
		copy(buf, raw)
		field = binary.LittleEndian.Uint64(buf)
	}

	offset := 0
	for _, span := range d.Spans {
		spanKey := suffixed(span.Name, index)
		bd, ok := span.Def.(Bits)
		if !ok || bd.Width <= 0 {
			return w.fail(spanKey, fmt.Errorf("%w: bit span definition %T", ErrUnknownType, span.Def))
		}
		if offset+bd.Width > bits {
			return w.fail(spanKey, fmt.Errorf("%w: bit spans exceed %d bit container", ErrUnknownType, bits))
		}
		mask := uint64(1)<<bd.Width - 1
		if bd.Width == 64 {
			mask = math.MaxUint64
		}

		var v uint64
		if w.decode {
			v = (field >> offset) & mask
		} else {
			sv, ok := w.vals[spanKey]
			if ok {
				if !sv.IsInteger() || sv.Big().Sign() < 0 || !sv.Big().IsUint64() || sv.Uint() > mask {
					return w.fail(spanKey, fmt.Errorf("%w: value %s does not fit %d bits", ErrInvalidAttributeType, sv, bd.Width))
				}
				v = sv.Uint()
			}
			field |= v << offset
		}
		if !isReserved(span.Name) {
			if err := w.b.Set(spanKey, Uint(v)); err != nil {
				return err
			}
		}
		offset += bd.Width
	}

	if !w.decode {
		w.b.payload = append(w.b.payload, binary.LittleEndian.AppendUint64(nil, field)[:size]...)
	}
	return nil
}
