package uni

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"time"
)

// Option configures Parse and Encode.
type Option func(*options)

type options struct {
	mode      Mode
	validate  bool
	bitfields bool
	hdr       Header
	timeSet   bool
	length    uint16
	lengthSet bool
	clock     func() time.Time
}

func newOptions(opts []Option) options {
	o := options{
		mode:      ModeGet,
		validate:  true,
		bitfields: true,
		hdr:       Header{TimeRef: 1},
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithMode selects the payload definition table used by Parse.
func WithMode(m Mode) Option { return func(o *options) { o.mode = m } }

// WithValidation toggles the sync, length and checksum checks in Parse.
// Validation is on by default.
func WithValidation(on bool) Option { return func(o *options) { o.validate = on } }

// WithBitfields toggles splitting bitfields into their spans. When off, the
// container is kept as a single bytes attribute.
func WithBitfields(on bool) Option { return func(o *options) { o.bitfields = on } }

func WithCPUIdle(v uint8) Option     { return func(o *options) { o.hdr.CPUIdle = v } }
func WithTimeRef(v uint8) Option     { return func(o *options) { o.hdr.TimeRef = v } }
func WithTimeStatus(v uint8) Option  { return func(o *options) { o.hdr.TimeStatus = v } }
func WithVersion(v uint32) Option    { return func(o *options) { o.hdr.Version = v } }
func WithLeapSecond(v uint8) Option  { return func(o *options) { o.hdr.LeapSecond = v } }
func WithDelay(v uint16) Option      { return func(o *options) { o.hdr.Delay = v } }

// WithClock replaces time.Now as the source of the default header time.
func WithClock(now func() time.Time) Option { return func(o *options) { o.clock = now } }

// WithWeekTOW sets the header week number and time of week instead of
// deriving them from the clock.
func WithWeekTOW(wno uint16, tow uint32) Option {
	return func(o *options) {
		o.hdr.WNO, o.hdr.TOW = wno, tow
		o.timeSet = true
	}
}

// WithHeader copies every header field except the message id and length,
// including the time of week.
func WithHeader(h Header) Option {
	return func(o *options) {
		h.MsgID, h.Length = 0, 0
		o.hdr = h
		o.timeSet = true
	}
}

// WithLength fixes the declared payload length of an encoded message. It
// also selects length dependent payload definitions.
func WithLength(n uint16) Option {
	return func(o *options) {
		o.length = n
		o.lengthSet = true
	}
}

// lookupSchema finds the payload definition for a message and the mode it
// resolved to. length is the declared payload length, or -1 when unknown.
func lookupSchema(msgID uint16, mode Mode, length int) (Schema, Mode, error) {
	identity := Identity(msgID)

	var modes []Mode
	switch mode {
	case ModeGet, ModeSet, ModePoll:
		modes = []Mode{mode}
	case ModeSetPoll:
		if length == 0 {
			modes = []Mode{ModePoll, ModeSet}
		} else {
			modes = []Mode{ModeSet, ModePoll}
		}
	default:
		return nil, mode, fmt.Errorf("%w %d", ErrInvalidMode, uint8(mode))
	}

	for _, m := range modes {
		table := schemaTable(m)
		if length >= 0 && length <= 0xFFFF {
			if alt, ok := lengthOverrides[overrideKey{identity: identity, mode: m, length: uint16(length)}]; ok {
				if s, ok := table[alt]; ok {
					return s, m, nil
				}
			}
		}
		if s, ok := table[identity]; ok {
			return s, m, nil
		}
	}
	if mode == ModeGet {
		return nominalSchema, ModeGet, nil
	}
	return nil, mode, fmt.Errorf("%w: %s in %s mode", ErrUnknownMessageType, identity, mode)
}

func schemaTable(m Mode) map[string]Schema {
	switch m {
	case ModeSet:
		return payloadsSet
	case ModePoll:
		return payloadsPoll
	}
	return payloadsGet
}

// Parse decodes a complete UNI frame: sync, header, payload and CRC.
func Parse(raw []byte, opts ...Option) (*Message, error) {
	o := newOptions(opts)
	if len(raw) < HeaderLen+CRCLen {
		return nil, fmt.Errorf("%w: frame of %d bytes is shorter than %d", ErrFrameValidation, len(raw), HeaderLen+CRCLen)
	}
	hdr, err := ParseHeader(raw)
	if err != nil {
		return nil, err
	}
	payload := raw[HeaderLen : len(raw)-CRCLen]
	crcb := raw[len(raw)-CRCLen:]

	if o.validate {
		if !bytes.Equal(raw[:len(syncStr)], Sync()) {
			return nil, &FrameError{Field: "message header", Expected: Escape(Sync()), Actual: Escape(raw[:len(syncStr)])}
		}
		if int(hdr.Length) != len(payload) {
			return nil, &FrameError{Field: "payload length", Expected: strconv.Itoa(len(payload)), Actual: strconv.Itoa(int(hdr.Length))}
		}
		if want := CRC32(raw[:len(raw)-CRCLen]); want != binary.LittleEndian.Uint32(crcb) {
			return nil, &FrameError{
				Field:    "checksum",
				Expected: Escape(binary.LittleEndian.AppendUint32(nil, want)),
				Actual:   Escape(crcb),
			}
		}
	}

	s, mode, err := lookupSchema(hdr.MsgID, o.mode, len(payload))
	if err != nil {
		return nil, err
	}
	b := NewBuilder(hdr, mode)
	b.lengthSet = true
	b.crc = append([]byte{}, crcb...)
	if len(payload) > 0 {
		b.payload = append([]byte{}, payload...)
		w := &walker{b: b, decode: true, payload: b.payload, bitfields: o.bitfields}
		if err := w.walk(s, nil); err != nil {
			return nil, err
		}
	}
	return b.Finish()
}

// MustParse is like Parse but panics on error.
func MustParse(raw []byte, opts ...Option) *Message {
	m, err := Parse(raw, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// Encode builds a message from attribute values. Attributes missing from
// values take their nominal value; a nil values map yields an empty
// payload. Header time defaults to the current GPS week and time of week.
func Encode(msgID uint16, mode Mode, values Values, opts ...Option) (*Message, error) {
	o := newOptions(opts)
	hdr := o.hdr
	hdr.MsgID = msgID
	if !o.timeSet {
		hdr.WNO, hdr.TOW = WeekTOW(o.clock())
	}

	length := -1
	switch {
	case o.lengthSet:
		length = int(o.length)
		hdr.Length = o.length
	case values == nil:
		length = 0
	}
	if mode == ModeSetPoll && length < 0 && len(values) == 0 {
		length = 0
	}

	s, resolved, err := lookupSchema(msgID, mode, length)
	if err != nil {
		return nil, err
	}
	b := NewBuilder(hdr, resolved)
	b.lengthSet = o.lengthSet
	if values != nil {
		b.payload = []byte{}
		w := &walker{b: b, vals: values, bitfields: o.bitfields}
		if err := w.walk(s, nil); err != nil {
			return nil, err
		}
	}
	return b.Finish()
}
