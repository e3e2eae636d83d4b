// Package nmea frames and parses NMEA 0183 sentences found alongside UNI
// traffic in a receiver byte stream.
package nmea

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrParse reports a malformed sentence or a checksum mismatch.
var ErrParse = errors.New("nmea: parse error")

// talkerStarts are the second bytes accepted after '$': GNSS talkers
// (GP, GN, GL, GA, GB, GQ), BeiDou (BD), QZSS (QZ), NavIC (IN) and
// proprietary (P) sentences.
var talkerStarts = [256]bool{'G': true, 'P': true, 'B': true, 'Q': true, 'I': true}

// IsHeader reports whether two bytes open an NMEA sentence.
func IsHeader(b0, b1 byte) bool {
	return b0 == '$' && talkerStarts[b1]
}

// Sentence is a parsed NMEA sentence.
type Sentence struct {
	Talker   string // "GN", "GP", ... or "P" for proprietary sentences
	Type     string // "GGA", "RMC", ...
	Fields   []string
	Checksum byte
}

// Identity is the talker and type, e.g. "GNGGA".
func (s *Sentence) Identity() string { return s.Talker + s.Type }

// String renders <NMEA(GNGGA, field_01=..., ...)>.
func (s *Sentence) String() string {
	var sb strings.Builder
	sb.WriteString("<NMEA(")
	sb.WriteString(s.Identity())
	for i, f := range s.Fields {
		fmt.Fprintf(&sb, ", field_%02d=%s", i+1, f)
	}
	sb.WriteString(")>")
	return sb.String()
}

// Parse decodes one sentence. raw may carry its CR/LF terminator. When
// validate is set the XOR checksum must be present and match.
func Parse(raw []byte, validate bool) (*Sentence, error) {
	line := strings.TrimRight(string(raw), "\r\n")
	if !strings.HasPrefix(line, "$") {
		return nil, fmt.Errorf("%w: missing '$'", ErrParse)
	}

	payload := line[1:]
	var ck byte
	if star := strings.LastIndexByte(line, '*'); star != -1 {
		payload = line[1:star]
		want, err := hex.DecodeString(strings.TrimSpace(line[star+1:]))
		if err != nil || len(want) != 1 {
			return nil, fmt.Errorf("%w: bad checksum %q", ErrParse, line[star+1:])
		}
		ck = want[0]
		if got := Checksum(payload); validate && got != ck {
			return nil, fmt.Errorf("%w: checksum mismatch %02X - should be %02X", ErrParse, ck, got)
		}
	} else if validate {
		return nil, fmt.Errorf("%w: missing checksum", ErrParse)
	}

	parts := strings.Split(payload, ",")
	addr := parts[0]
	s := &Sentence{Fields: parts[1:], Checksum: ck}
	switch {
	case strings.HasPrefix(addr, "P") && len(addr) >= 2:
		s.Talker, s.Type = "P", addr[1:]
	case len(addr) >= 5:
		s.Talker, s.Type = addr[:2], addr[2:]
	default:
		return nil, fmt.Errorf("%w: short address %q", ErrParse, addr)
	}
	return s, nil
}

// Checksum is the XOR of every byte between '$' and '*'.
func Checksum(payload string) byte {
	ck := byte(0)
	for i := 0; i < len(payload); i++ {
		ck ^= payload[i]
	}
	return ck
}
