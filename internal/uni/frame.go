package uni

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// UNI frame layout (little-endian):
//
//	sync(3) cpuidle(1) msgid(2) length(2) timeinfo(16) payload(length) crc(4)
//
// timeinfo:
//
//	timeref(1) timestatus(1) wno(2) tow(4) version(4) reserved(1) leapsec(1) delay(2)
const (
	HeaderLen = 24
	CRCLen    = 4
	// HeaderRemainder is the header size after the sync bytes.
	HeaderRemainder = HeaderLen - len(syncStr)
)

const syncStr = "\xaa\x44\xb5"

// Sync returns the 3 byte UNI sync sequence.
func Sync() []byte { return []byte(syncStr) }

// Mode selects which payload definition table applies to a message.
type Mode uint8

const (
	ModeGet     Mode = iota // receive / response
	ModeSet                 // command
	ModePoll                // query
	ModeSetPoll             // SET or POLL, resolved from the payload
)

func (m Mode) String() string {
	switch m {
	case ModeGet:
		return "GET"
	case ModeSet:
		return "SET"
	case ModePoll:
		return "POLL"
	case ModeSetPoll:
		return "SETPOLL"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool { return m <= ModeSetPoll }

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GET", "":
		return ModeGet, nil
	case "SET":
		return ModeSet, nil
	case "POLL":
		return ModePoll, nil
	case "SETPOLL", "SET-OR-POLL":
		return ModeSetPoll, nil
	}
	return 0, fmt.Errorf("%w %q", ErrInvalidMode, s)
}

// Header holds the fixed header fields that follow the sync bytes.
type Header struct {
	CPUIdle    uint8
	MsgID      uint16
	Length     uint16
	TimeRef    uint8
	TimeStatus uint8
	WNO        uint16
	TOW        uint32
	Version    uint32
	Reserved   uint8
	LeapSecond uint8
	Delay      uint16
}

// HeaderBytes serializes sync + header (HeaderLen bytes).
func HeaderBytes(h Header) []byte {
	b := make([]byte, 0, HeaderLen)
	b = append(b, syncStr...)
	b = append(b, h.CPUIdle)
	b = binary.LittleEndian.AppendUint16(b, h.MsgID)
	b = binary.LittleEndian.AppendUint16(b, h.Length)
	b = append(b, h.TimeRef, h.TimeStatus)
	b = binary.LittleEndian.AppendUint16(b, h.WNO)
	b = binary.LittleEndian.AppendUint32(b, h.TOW)
	b = binary.LittleEndian.AppendUint32(b, h.Version)
	b = append(b, h.Reserved, h.LeapSecond)
	b = binary.LittleEndian.AppendUint16(b, h.Delay)
	return b
}

// ParseHeader decodes the header fields of a frame starting with the sync
// bytes. The sync bytes themselves are not checked.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderLen {
		return Header{}, fmt.Errorf("%w: header too short: %d", ErrFrameValidation, len(b))
	}
	return Header{
		CPUIdle:    b[3],
		MsgID:      binary.LittleEndian.Uint16(b[4:6]),
		Length:     binary.LittleEndian.Uint16(b[6:8]),
		TimeRef:    b[8],
		TimeStatus: b[9],
		WNO:        binary.LittleEndian.Uint16(b[10:12]),
		TOW:        binary.LittleEndian.Uint32(b[12:16]),
		Version:    binary.LittleEndian.Uint32(b[16:20]),
		Reserved:   b[20],
		LeapSecond: b[21],
		Delay:      binary.LittleEndian.Uint16(b[22:24]),
	}, nil
}
