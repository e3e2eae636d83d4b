package main

import (
	"fmt"

	"unigps/internal/nmea"
)

var (
	test12Frame = []byte("\xaa\x44\xb5\x00\x00\x12\x05\x00\x11\x22\x33\x44\x55\x66\x77\x88\x99\x00\x11\x22\x33\x44\x55\x66\x01\x02\x03\x04\x05\x83\xbe\x6d\x8f")
	rtcm1005    = []byte{
		0xd3, 0x00, 0x13, 0x3e, 0xd7, 0xd3, 0x02, 0x02, 0x98, 0x0e, 0xde, 0xef, 0x34,
		0xb4, 0xbd, 0x62, 0xac, 0x09, 0x41, 0x98, 0x6f, 0x33, 0x36, 0x0b, 0x98,
	}
)

func nmeaLine(payload string) []byte {
	return []byte(fmt.Sprintf("$%s*%02X\r\n", payload, nmea.Checksum(payload)))
}
