package stream

import (
	"fmt"
	"strings"
)

// Protocol is a bit mask of the protocols a Reader returns.
type Protocol uint8

const (
	NMEA  Protocol = 1
	UNI   Protocol = 2
	RTCM3 Protocol = 4

	AllProtocols = NMEA | UNI | RTCM3
)

func (p Protocol) String() string {
	var names []string
	for _, x := range []Protocol{NMEA, UNI, RTCM3} {
		if p&x == 0 {
			continue
		}
		switch x {
		case NMEA:
			names = append(names, "nmea")
		case UNI:
			names = append(names, "uni")
		case RTCM3:
			names = append(names, "rtcm3")
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// ParseProtocols builds a mask from names such as "uni", "nmea", "rtcm3"
// or "all". An empty list selects every protocol.
func ParseProtocols(names []string) (Protocol, error) {
	if len(names) == 0 {
		return AllProtocols, nil
	}
	var p Protocol
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "nmea":
			p |= NMEA
		case "uni":
			p |= UNI
		case "rtcm3", "rtcm":
			p |= RTCM3
		case "all":
			p |= AllProtocols
		default:
			return 0, fmt.Errorf("stream: unknown protocol %q", n)
		}
	}
	return p, nil
}

// ErrorMode selects what happens to a frame that fails to read or parse.
type ErrorMode uint8

const (
	// ErrorIgnore drops the frame silently.
	ErrorIgnore ErrorMode = iota
	// ErrorLog drops the frame and reports the error to the error handler,
	// or to the logger when there is none.
	ErrorLog
	// ErrorRaise returns the error from Read.
	ErrorRaise
)

func (m ErrorMode) String() string {
	switch m {
	case ErrorIgnore:
		return "ignore"
	case ErrorLog:
		return "log"
	case ErrorRaise:
		return "raise"
	}
	return fmt.Sprintf("ErrorMode(%d)", uint8(m))
}

func ParseErrorMode(s string) (ErrorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ignore":
		return ErrorIgnore, nil
	case "log", "":
		return ErrorLog, nil
	case "raise":
		return ErrorRaise, nil
	}
	return 0, fmt.Errorf("stream: unknown error mode %q", s)
}
