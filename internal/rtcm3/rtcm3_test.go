package rtcm3

import (
	"bytes"
	"errors"
	"testing"
)

// Type 1005 reference station ARP, station 2003.
var frame1005 = []byte{
	0xd3, 0x00, 0x13, 0x3e, 0xd7, 0xd3, 0x02, 0x02, 0x98, 0x0e, 0xde, 0xef, 0x34,
	0xb4, 0xbd, 0x62, 0xac, 0x09, 0x41, 0x98, 0x6f, 0x33, 0x36, 0x0b, 0x98,
}

func TestCRC24Q(t *testing.T) {
	got := CRC24Q(frame1005[:len(frame1005)-CRCLen])
	if got != 0x360b98 {
		t.Fatalf("crc=%06x", got)
	}
}

func TestParse(t *testing.T) {
	m, err := Parse(frame1005, true)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.Type != 1005 || m.StationID != 2003 {
		t.Fatalf("type=%d station=%d", m.Type, m.StationID)
	}
	if m.Identity() != "1005" {
		t.Fatalf("identity=%q", m.Identity())
	}
	if len(m.Payload) != 19 {
		t.Fatalf("payload=%d", len(m.Payload))
	}
	if got, want := m.String(), "<RTCM(1005, station=2003, length=19)>"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestParse_BadCRC(t *testing.T) {
	bad := append([]byte{}, frame1005...)
	bad[len(bad)-1] ^= 0x01
	if _, err := Parse(bad, true); !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	if _, err := Parse(bad, false); err != nil {
		t.Fatalf("unvalidated parse: %v", err)
	}
}

func TestParse_Truncated(t *testing.T) {
	if _, err := Parse(frame1005[:10], true); !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	if _, err := Parse([]byte{0x24, 0x47, 0x00, 0, 0, 0}, true); !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	raw, err := Frame(frame1005[HeaderLen : len(frame1005)-CRCLen])
	if err != nil {
		t.Fatalf("frame: %v", err)
	}
	if !bytes.Equal(raw, frame1005) {
		t.Fatalf("got % x", raw)
	}
	if _, err := Frame(make([]byte, MaxPayload+1)); err == nil {
		t.Fatalf("expected oversize error")
	}
}

func TestHeader(t *testing.T) {
	if !IsHeader(0xd3, 0x00) || !IsHeader(0xd3, 0x03) {
		t.Fatalf("expected header")
	}
	if IsHeader(0xd3, 0x04) || IsHeader(0xaa, 0x00) {
		t.Fatalf("unexpected header")
	}
	if n := PayloadLen(0x01, 0x02); n != 258 {
		t.Fatalf("len=%d", n)
	}
}
