// Package rtcm3 frames RTCM 3 messages and reads their common header
// fields. Message bodies are not decoded.
package rtcm3

import (
	"errors"
	"fmt"
)

// ErrParse reports a malformed frame or a CRC-24Q mismatch.
var ErrParse = errors.New("rtcm3: parse error")

const (
	Preamble  = 0xD3
	HeaderLen = 3
	CRCLen    = 3
	// MaxPayload is the largest payload the 10 bit length field can declare.
	MaxPayload = 1023
)

// IsHeader reports whether two bytes open an RTCM 3 frame: the preamble
// followed by six reserved zero bits.
func IsHeader(b0, b1 byte) bool {
	return b0 == Preamble && b1&^0x03 == 0
}

// PayloadLen returns the payload length declared by the second and third
// frame bytes.
func PayloadLen(b1, b2 byte) int {
	return int(b1&0x03)<<8 | int(b2)
}

// Message is a framed RTCM 3 message.
type Message struct {
	Type      uint16 // DF002
	StationID uint16 // DF003, zero when the payload is too short
	Payload   []byte
	CRC       uint32
}

// Identity is the decimal message type, e.g. "1005".
func (m *Message) Identity() string { return fmt.Sprintf("%d", m.Type) }

func (m *Message) String() string {
	return fmt.Sprintf("<RTCM(%d, station=%d, length=%d)>", m.Type, m.StationID, len(m.Payload))
}

// Parse decodes a complete frame. When validate is set the CRC-24Q must
// match.
func Parse(raw []byte, validate bool) (*Message, error) {
	if len(raw) < HeaderLen+CRCLen || !IsHeader(raw[0], raw[1]) {
		return nil, fmt.Errorf("%w: not an RTCM 3 frame", ErrParse)
	}
	n := PayloadLen(raw[1], raw[2])
	if len(raw) != HeaderLen+n+CRCLen {
		return nil, fmt.Errorf("%w: frame of %d bytes declares a %d byte payload", ErrParse, len(raw), n)
	}
	body := raw[:HeaderLen+n]
	crcb := raw[HeaderLen+n:]
	got := uint32(crcb[0])<<16 | uint32(crcb[1])<<8 | uint32(crcb[2])
	if want := CRC24Q(body); validate && got != want {
		return nil, fmt.Errorf("%w: crc %06x - should be %06x", ErrParse, got, want)
	}
	if n < 2 {
		return nil, fmt.Errorf("%w: payload of %d bytes has no message type", ErrParse, n)
	}

	p := append([]byte{}, raw[HeaderLen:HeaderLen+n]...)
	m := &Message{
		Type:    uint16(p[0])<<4 | uint16(p[1])>>4,
		Payload: p,
		CRC:     got,
	}
	if n >= 3 {
		m.StationID = uint16(p[1]&0x0F)<<8 | uint16(p[2])
	}
	return m, nil
}

// Frame wraps a payload with the preamble, length and CRC-24Q.
func Frame(payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, fmt.Errorf("%w: payload of %d bytes exceeds %d", ErrParse, len(payload), MaxPayload)
	}
	out := make([]byte, 0, HeaderLen+len(payload)+CRCLen)
	out = append(out, Preamble, byte(len(payload)>>8), byte(len(payload)))
	out = append(out, payload...)
	crc := CRC24Q(out)
	return append(out, byte(crc>>16), byte(crc>>8), byte(crc)), nil
}
