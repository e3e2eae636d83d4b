package uni

import (
	"encoding/binary"
	"fmt"
)

// Builder accumulates the attributes of a message while its payload is
// decoded or encoded. Finish freezes the builder and returns the
// immutable Message; every later Set or Finish fails with ErrImmutable.
type Builder struct {
	hdr       Header
	mode      Mode
	payload   []byte
	lengthSet bool
	crc       []byte
	attrs     []Attr
	index     map[string]int
	done      bool
}

// NewBuilder starts a message with the given header and mode. The header
// length and CRC are computed by Finish unless supplied beforehand.
func NewBuilder(h Header, mode Mode) *Builder {
	return &Builder{hdr: h, mode: mode, index: make(map[string]int)}
}

// Identity is the symbolic name of the message being built.
func (b *Builder) Identity() string {
	return Identity(b.hdr.MsgID)
}

// Set records a named attribute value.
func (b *Builder) Set(name string, v Value) error {
	if b.done {
		return fmt.Errorf("%w: updates to %s not permitted after initialisation", ErrImmutable, name)
	}
	if i, ok := b.index[name]; ok {
		b.attrs[i].Value = v
		return nil
	}
	b.index[name] = len(b.attrs)
	b.attrs = append(b.attrs, Attr{Name: name, Value: v})
	return nil
}

func (b *Builder) get(name string) (Value, bool) {
	i, ok := b.index[name]
	if !ok {
		return Value{}, false
	}
	return b.attrs[i].Value, true
}

// Finish computes the payload length and CRC when they were not supplied
// and returns the frozen message.
func (b *Builder) Finish() (*Message, error) {
	if b.done {
		return nil, fmt.Errorf("%w: message already built", ErrImmutable)
	}
	b.done = true

	if !b.lengthSet {
		if len(b.payload) > 0xFFFF {
			return nil, fmt.Errorf("%w: payload of %d bytes exceeds length field", ErrInvalidAttributeType, len(b.payload))
		}
		b.hdr.Length = uint16(len(b.payload))
	}
	var crc uint32
	if b.crc == nil {
		crc = CRC32(append(HeaderBytes(b.hdr), b.payload...))
	} else {
		crc = binary.LittleEndian.Uint32(b.crc)
	}

	m := &Message{
		hdr:     b.hdr,
		mode:    b.mode,
		payload: b.payload,
		crc:     crc,
		attrs:   b.attrs,
		index:   b.index,
	}
	b.payload, b.attrs, b.index = nil, nil, nil
	return m, nil
}
