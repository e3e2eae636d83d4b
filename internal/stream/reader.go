// Package stream demultiplexes UNI, NMEA and RTCM 3 frames out of a
// single receiver byte stream.
package stream

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"unigps/internal/metrics"
	"unigps/internal/nmea"
	"unigps/internal/rtcm3"
	"unigps/internal/uni"
)

const defaultBufferSize = 4096

// Reader pulls frames from a byte source one at a time. It is not safe for
// concurrent use; the *uni.Message values it returns are.
type Reader struct {
	src *bufio.Reader

	protocols Protocol
	validate  bool
	mode      uni.Mode
	bitfields bool
	parsing   bool
	errMode   ErrorMode
	onError   func(error)
	log       zerolog.Logger
	metrics   *metrics.Reader
	bufSize   int

	uniDec  Decoder
	nmeaDec Decoder
	rtcmDec Decoder

	// Scan state.
	raw  []byte
	msg  Parsed
	err  error
	done bool
}

// Option configures a Reader.
type Option func(*Reader)

// WithProtocols selects the protocols returned. Frames of other protocols
// are still consumed from the source, then discarded.
func WithProtocols(p Protocol) Option { return func(r *Reader) { r.protocols = p } }

// WithValidation toggles checksum validation.
func WithValidation(on bool) Option { return func(r *Reader) { r.validate = on } }

func WithErrorMode(m ErrorMode) Option { return func(r *Reader) { r.errMode = m } }

// WithBitfields toggles splitting UNI bitfields into their spans.
func WithBitfields(on bool) Option { return func(r *Reader) { r.bitfields = on } }

// WithMode selects the UNI payload definition table.
func WithMode(m uni.Mode) Option { return func(r *Reader) { r.mode = m } }

// WithParsing toggles decoding. When off, Read returns raw frames and a
// nil message.
func WithParsing(on bool) Option { return func(r *Reader) { r.parsing = on } }

// WithErrorHandler receives errors in ErrorLog mode instead of the logger.
func WithErrorHandler(fn func(error)) Option { return func(r *Reader) { r.onError = fn } }

func WithLogger(l zerolog.Logger) Option { return func(r *Reader) { r.log = l } }

func WithMetrics(m *metrics.Reader) Option { return func(r *Reader) { r.metrics = m } }

func WithNMEADecoder(d Decoder) Option { return func(r *Reader) { r.nmeaDec = d } }

func WithRTCMDecoder(d Decoder) Option { return func(r *Reader) { r.rtcmDec = d } }

// WithBufferSize sets the read buffer size used when src is not already a
// *bufio.Reader.
func WithBufferSize(n int) Option { return func(r *Reader) { r.bufSize = n } }

// NewReader wraps src. By default every protocol is returned, checksums
// are validated and frame errors are logged.
func NewReader(src io.Reader, opts ...Option) (*Reader, error) {
	r := &Reader{
		protocols: AllProtocols,
		validate:  true,
		mode:      uni.ModeGet,
		bitfields: true,
		parsing:   true,
		errMode:   ErrorLog,
		log:       log.Logger,
		bufSize:   defaultBufferSize,
		nmeaDec:   NMEADecoder,
		rtcmDec:   RTCMDecoder,
	}
	for _, opt := range opts {
		opt(r)
	}
	if !r.mode.Valid() {
		return nil, fmt.Errorf("%w: stream mode %d", uni.ErrInvalidMode, uint8(r.mode))
	}
	if r.errMode > ErrorRaise {
		return nil, fmt.Errorf("stream: invalid error mode %d", uint8(r.errMode))
	}
	r.uniDec = uniDecoder{bitfields: r.bitfields}
	if br, ok := src.(*bufio.Reader); ok {
		r.src = br
	} else {
		r.src = bufio.NewReaderSize(src, r.bufSize)
	}
	return r, nil
}

// Read returns the next frame that passes the protocol filter, with its
// decoded message unless parsing is off. It returns io.EOF once the source
// is exhausted. Frame errors are handled according to the error mode; in
// ErrorRaise mode they are returned and the Reader may be read again.
// Errors of the underlying source are always returned.
func (r *Reader) Read() ([]byte, Parsed, error) {
	for {
		raw, msg, err := r.next()
		if err == nil {
			if raw == nil {
				continue
			}
			return raw, msg, nil
		}
		if errors.Is(err, io.EOF) {
			return nil, nil, io.EOF
		}
		var se *sourceError
		if errors.As(err, &se) {
			return nil, nil, se.err
		}
		if err := r.escalate(err); err != nil {
			return nil, nil, err
		}
	}
}

// Scan advances to the next frame. It returns false at the end of the
// source or after an error, which Err reports.
func (r *Reader) Scan() bool {
	if r.done {
		return false
	}
	r.raw, r.msg, r.err = r.Read()
	if r.err != nil {
		r.done = true
		if r.err == io.EOF {
			r.err = nil
		}
		return false
	}
	return true
}

// Raw is the frame read by the last Scan.
func (r *Reader) Raw() []byte { return r.raw }

// Message is the decoded frame read by the last Scan.
func (r *Reader) Message() Parsed { return r.msg }

// Err is the first error other than io.EOF met by Scan.
func (r *Reader) Err() error { return r.err }

// next reads at most one frame. A nil frame with a nil error means the
// bytes read were discarded.
func (r *Reader) next() ([]byte, Parsed, error) {
	b1, err := r.readByte()
	if err != nil {
		return nil, nil, err
	}
	if b1 != 0xaa && b1 != '$' && b1 != rtcm3.Preamble {
		r.metrics.RecordDiscard(1)
		return nil, nil, nil
	}
	b2, err := r.readByte()
	if err != nil {
		return nil, nil, err
	}

	sync := uni.Sync()
	switch {
	case b1 == sync[0] && b2 == sync[1]:
		b3, err := r.readByte()
		if err != nil {
			return nil, nil, err
		}
		if b3 != sync[2] {
			r.metrics.RecordDiscard(3)
			return nil, nil, nil
		}
		return r.readUNI()
	case nmea.IsHeader(b1, b2):
		return r.readNMEA(b1, b2)
	case rtcm3.IsHeader(b1, b2):
		return r.readRTCM(b1, b2)
	}
	return nil, nil, &HeaderError{Header: []byte{b1, b2}}
}

func (r *Reader) readUNI() ([]byte, Parsed, error) {
	hdr, err := r.readFull(uni.HeaderRemainder)
	if err != nil {
		return nil, nil, err
	}
	n := int(binary.LittleEndian.Uint16(hdr[3:5]))
	rest, err := r.readFull(n + uni.CRCLen)
	if err != nil {
		return nil, nil, err
	}
	raw := make([]byte, 0, uni.HeaderLen+len(rest))
	raw = append(raw, uni.Sync()...)
	raw = append(raw, hdr...)
	raw = append(raw, rest...)
	return r.deliver(UNI, raw, r.uniDec)
}

func (r *Reader) readNMEA(b1, b2 byte) ([]byte, Parsed, error) {
	line, err := r.src.ReadBytes('\n')
	if len(line) == 0 && errors.Is(err, io.EOF) {
		return nil, nil, io.EOF
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, &sourceError{err: err}
	}
	if line[len(line)-1] != '\n' {
		return nil, nil, &TruncatedError{Returned: len(line), Line: true}
	}
	raw := append([]byte{b1, b2}, line...)
	return r.deliver(NMEA, raw, r.nmeaDec)
}

func (r *Reader) readRTCM(b1, b2 byte) ([]byte, Parsed, error) {
	b3, err := r.readByte()
	if err != nil {
		return nil, nil, err
	}
	payload, err := r.readFull(rtcm3.PayloadLen(b2, b3))
	if err != nil {
		return nil, nil, err
	}
	crc, err := r.readFull(rtcm3.CRCLen)
	if err != nil {
		return nil, nil, err
	}
	raw := make([]byte, 0, rtcm3.HeaderLen+len(payload)+rtcm3.CRCLen)
	raw = append(raw, b1, b2, b3)
	raw = append(raw, payload...)
	raw = append(raw, crc...)
	return r.deliver(RTCM3, raw, r.rtcmDec)
}

// deliver applies the protocol filter and the parsing switch to a
// complete frame.
func (r *Reader) deliver(p Protocol, raw []byte, dec Decoder) ([]byte, Parsed, error) {
	if r.protocols&p == 0 {
		r.metrics.RecordFiltered(p.String())
		return nil, nil, nil
	}
	if !r.parsing {
		r.metrics.RecordFrame(p.String(), "", len(raw))
		return raw, nil, nil
	}
	msg, err := dec.Parse(raw, r.validate, r.mode)
	if err != nil {
		return nil, nil, err
	}
	r.metrics.RecordFrame(p.String(), msg.Identity(), len(raw))
	return raw, msg, nil
}

// escalate applies the error mode to a frame error. It returns the error
// only in ErrorRaise mode.
func (r *Reader) escalate(err error) error {
	r.metrics.RecordError(errorKind(err))
	switch r.errMode {
	case ErrorRaise:
		return err
	case ErrorLog:
		if r.onError != nil {
			r.onError(err)
		} else {
			r.log.Error().Err(err).Msg("frame discarded")
		}
	}
	return nil
}

func (r *Reader) readByte() (byte, error) {
	b, err := r.src.ReadByte()
	if err == nil {
		return b, nil
	}
	if errors.Is(err, io.EOF) {
		return 0, io.EOF
	}
	return 0, &sourceError{err: err}
}

// readFull reads exactly n bytes. Reading nothing at all is a clean end
// of stream; a partial read is a truncated frame.
func (r *Reader) readFull(n int) ([]byte, error) {
	buf := make([]byte, n)
	got, err := io.ReadFull(r.src, buf)
	switch {
	case err == nil:
		return buf, nil
	case errors.Is(err, io.EOF):
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return nil, &TruncatedError{Requested: n, Returned: got}
	}
	return nil, &sourceError{err: err}
}
