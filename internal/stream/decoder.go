package stream

import (
	"fmt"

	"unigps/internal/nmea"
	"unigps/internal/rtcm3"
	"unigps/internal/uni"
)

// Parsed is a decoded frame of any protocol.
type Parsed interface {
	Identity() string
	fmt.Stringer
}

// Decoder parses one complete frame.
type Decoder interface {
	Parse(raw []byte, validate bool, mode uni.Mode) (Parsed, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(raw []byte, validate bool, mode uni.Mode) (Parsed, error)

func (f DecoderFunc) Parse(raw []byte, validate bool, mode uni.Mode) (Parsed, error) {
	return f(raw, validate, mode)
}

type uniDecoder struct {
	bitfields bool
}

func (d uniDecoder) Parse(raw []byte, validate bool, mode uni.Mode) (Parsed, error) {
	m, err := uni.Parse(raw, uni.WithMode(mode), uni.WithValidation(validate), uni.WithBitfields(d.bitfields))
	if err != nil {
		return nil, err
	}
	return m, nil
}

// NMEADecoder parses sentences with the nmea package. The mode is unused.
var NMEADecoder Decoder = DecoderFunc(func(raw []byte, validate bool, _ uni.Mode) (Parsed, error) {
	s, err := nmea.Parse(raw, validate)
	if err != nil {
		return nil, err
	}
	return s, nil
})

// RTCMDecoder frames RTCM 3 messages with the rtcm3 package. The mode is
// unused.
var RTCMDecoder Decoder = DecoderFunc(func(raw []byte, validate bool, _ uni.Mode) (Parsed, error) {
	m, err := rtcm3.Parse(raw, validate)
	if err != nil {
		return nil, err
	}
	return m, nil
})
