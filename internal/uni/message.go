package uni

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Attr is one named attribute of a message. Members of repeating groups
// carry one _NN index suffix per nesting level.
type Attr struct {
	Name  string
	Value Value
}

// Message is a decoded or encoded UNI message. It is immutable and safe
// to share between goroutines.
type Message struct {
	hdr     Header
	mode    Mode
	payload []byte
	crc     uint32
	attrs   []Attr
	index   map[string]int
}

// Identity is the symbolic message name, or "<hex id>-NOMINAL".
func (m *Message) Identity() string { return Identity(m.hdr.MsgID) }

// Nominal reports whether the message id is not recognized.
func (m *Message) Nominal() bool {
	_, ok := msgIDs[m.hdr.MsgID]
	return !ok
}

func (m *Message) MsgID() uint16   { return m.hdr.MsgID }
func (m *Message) Mode() Mode      { return m.mode }
func (m *Message) Header() Header  { return m.hdr }
func (m *Message) Length() int     { return int(m.hdr.Length) }
func (m *Message) CRC() uint32     { return m.crc }
func (m *Message) NumAttrs() int   { return len(m.attrs) }
func (m *Message) TimeRef() uint8  { return m.hdr.TimeRef }
func (m *Message) WNO() uint16     { return m.hdr.WNO }
func (m *Message) TOW() uint32     { return m.hdr.TOW }
func (m *Message) Version() uint32 { return m.hdr.Version }

// Payload returns a copy of the raw payload, or nil when there is none.
func (m *Message) Payload() []byte {
	if m.payload == nil {
		return nil
	}
	return append([]byte{}, m.payload...)
}

// Get returns a named attribute, e.g. "prn_03".
func (m *Message) Get(name string) (Value, bool) {
	i, ok := m.index[name]
	if !ok {
		return Value{}, false
	}
	return m.attrs[i].Value, true
}

// Attrs returns the attributes in payload order.
func (m *Message) Attrs() []Attr {
	return append([]Attr(nil), m.attrs...)
}

// Serialize reassembles the exact wire bytes of the message.
func (m *Message) Serialize() []byte {
	out := HeaderBytes(m.hdr)
	out = append(out, m.payload...)
	return binary.LittleEndian.AppendUint32(out, m.crc)
}

// String renders <UNI(IDENTITY, name=value, ...)> with byte values escaped.
func (m *Message) String() string {
	id := m.Identity()
	if m.payload == nil {
		return fmt.Sprintf("<UNI(%s)>", id)
	}
	if m.Nominal() {
		return fmt.Sprintf("<UNI(%s, payload=%s)>", id, Escape(m.payload))
	}
	var sb strings.Builder
	sb.WriteString("<UNI(")
	sb.WriteString(id)
	for _, a := range m.attrs {
		sb.WriteString(", ")
		sb.WriteString(a.Name)
		sb.WriteByte('=')
		sb.WriteString(a.Value.String())
	}
	sb.WriteString(")>")
	return sb.String()
}

// GoString renders a Go expression that rebuilds the message.
func (m *Message) GoString() string {
	return fmt.Sprintf("uni.MustParse(%s, uni.WithMode(uni.Mode%s))", goBytes(m.Serialize()), modeIdent(m.mode))
}

func goBytes(b []byte) string {
	var sb strings.Builder
	sb.WriteString(`[]byte("`)
	for _, c := range b {
		fmt.Fprintf(&sb, `\x%02x`, c)
	}
	sb.WriteString(`")`)
	return sb.String()
}

func modeIdent(m Mode) string {
	switch m {
	case ModeSet:
		return "Set"
	case ModePoll:
		return "Poll"
	case ModeSetPoll:
		return "SetPoll"
	}
	return "Get"
}
