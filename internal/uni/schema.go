package uni

import "strings"

// Schema is the ordered payload layout for one identity/mode pair.
type Schema []Field

// Field is one named entry of a Schema.
type Field struct {
	Name string
	Def  Def
}

// Def is the closed set of payload definitions: Scalar, Scaled, Group,
// Bitfield and Bits (a bit span inside a Bitfield).
type Def interface {
	def()
}

// Scalar is a single attribute. Width resolves the size of variable
// length types and is nil for fixed width ones.
type Scalar struct {
	Type  AttrType
	Width Width
}

// Scaled is an integer attribute exposed as raw × Resolution.
type Scaled struct {
	Type       AttrType
	Resolution float64
}

// Group repeats Fields Count times.
type Group struct {
	Count  Count
	Fields Schema
}

// Bitfield is an unsigned container split into named bit spans. Spans
// whose name starts with ReservedPrefix are consumed but not exposed.
type Bitfield struct {
	Container AttrType
	Spans     Schema
}

// Bits is a bit span of the given width inside a Bitfield.
type Bits struct {
	Width int
}

func (Scalar) def()   {}
func (Scaled) def()   {}
func (Group) def()    {}
func (Bitfield) def() {}
func (Bits) def()     {}

// ReservedPrefix marks bit spans that are not exposed as attributes.
const ReservedPrefix = "reserved"

func isReserved(name string) bool {
	return strings.HasPrefix(name, ReservedPrefix)
}

type countKind uint8

const (
	countFixed countKind = iota
	countSibling
	countRemainder
)

// Count is the repeat count source of a Group.
type Count struct {
	kind    countKind
	n       int
	sibling string
}

// Fixed repeats a group a literal number of times.
func Fixed(n int) Count { return Count{kind: countFixed, n: n} }

// FromSibling repeats a group as many times as the value of a previously
// decoded attribute.
func FromSibling(name string) Count { return Count{kind: countSibling, sibling: name} }

// FromRemainder sizes a group by dividing the remaining payload by one
// item's encoded size. At most one such group may appear in a payload and
// its items must have a fixed size.
func FromRemainder() Count { return Count{kind: countRemainder} }

// Width resolves the byte width of a variable length attribute.
type Width interface {
	width()
}

// PerSibling sizes an attribute as sibling value × Unit bytes.
type PerSibling struct {
	Sibling string
	Unit    int
}

// LengthLess sizes an attribute as declared payload length − Prefix bytes.
type LengthLess struct {
	Prefix int
}

func (PerSibling) width() {}
func (LengthLess) width() {}

// F declares a scalar attribute.
func F(name string, t AttrType) Field {
	return Field{Name: name, Def: Scalar{Type: t}}
}

// V declares a variable length attribute.
func V(name string, t AttrType, w Width) Field {
	return Field{Name: name, Def: Scalar{Type: t, Width: w}}
}

// SF declares a scaled attribute.
func SF(name string, t AttrType, res float64) Field {
	return Field{Name: name, Def: Scaled{Type: t, Resolution: res}}
}

// G declares a repeating group.
func G(name string, c Count, fields ...Field) Field {
	return Field{Name: name, Def: Group{Count: c, Fields: fields}}
}

// BF declares a bitfield.
func BF(name string, container AttrType, spans ...Field) Field {
	return Field{Name: name, Def: Bitfield{Container: container, Spans: spans}}
}

// B declares a bit span.
func B(name string, width int) Field {
	return Field{Name: name, Def: Bits{Width: width}}
}

// itemSize returns the encoded size of one group item. Variable length
// members count as zero.
func itemSize(s Schema) (int, error) {
	total := 0
	for _, f := range s {
		switch d := f.Def.(type) {
		case Scalar:
			n, err := SizeOf(d.Type)
			if err != nil {
				return 0, err
			}
			if n > 0 {
				total += n
			}
		case Scaled:
			n, err := SizeOf(d.Type)
			if err != nil {
				return 0, err
			}
			total += n
		case Bitfield:
			n, err := SizeOf(d.Container)
			if err != nil {
				return 0, err
			}
			total += n
		case Group:
			if d.Count.kind != countFixed {
				continue
			}
			n, err := itemSize(d.Fields)
			if err != nil {
				return 0, err
			}
			total += n * d.Count.n
		}
	}
	return total, nil
}
