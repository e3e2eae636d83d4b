// Package capture records raw receiver frames to a timestamped text log and
// plays them back.
//
// Log format, one record per line:
//
//	START                    resets the time origin
//	<t_ns>,<protocol>,<hex>  frame received t_ns after START
//
// Blank lines and lines starting with '#' are ignored. Spaces inside the
// hex field are allowed.
package capture

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

const startMarker = "START"

// Record is one log line. A nil Frame marks a START line.
type Record struct {
	At       time.Duration
	Protocol string
	Frame    []byte
}

// Start reports whether r is a START marker.
func (r Record) Start() bool { return r.Frame == nil }

type Reader struct {
	s    *bufio.Scanner
	line int
}

func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	// A UNI frame can carry 65535 payload bytes, twice that in hex.
	s.Buffer(make([]byte, 0, 64*1024), 256*1024)
	return &Reader{s: s}
}

// Next returns the next record, or io.EOF at the end of the log.
func (rr *Reader) Next() (Record, error) {
	for rr.s.Scan() {
		rr.line++
		line := strings.TrimSpace(rr.s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line == startMarker {
			return Record{}, nil
		}
		rec, err := parseLine(line)
		if err != nil {
			return Record{}, fmt.Errorf("capture line %d: %w", rr.line, err)
		}
		return rec, nil
	}
	if err := rr.s.Err(); err != nil {
		return Record{}, err
	}
	return Record{}, io.EOF
}

func (rr *Reader) ReadAll() ([]Record, error) {
	var recs []Record
	for {
		rec, err := rr.Next()
		if errors.Is(err, io.EOF) {
			return recs, nil
		}
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
}

func parseLine(line string) (Record, error) {
	parts := strings.SplitN(line, ",", 3)
	if len(parts) != 3 {
		return Record{}, fmt.Errorf("invalid record %q: want <t_ns>,<protocol>,<hex>", line)
	}
	tsStr := strings.TrimSpace(parts[0])
	proto := strings.TrimSpace(parts[1])
	hexStr := strings.ReplaceAll(strings.TrimSpace(parts[2]), " ", "")
	if tsStr == "" || proto == "" || hexStr == "" {
		return Record{}, fmt.Errorf("invalid record %q: empty field", line)
	}

	tsNs, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("invalid timestamp %q: %w", tsStr, err)
	}
	if tsNs < 0 {
		return Record{}, fmt.Errorf("invalid timestamp (negative): %d", tsNs)
	}
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return Record{}, fmt.Errorf("invalid hex frame: %w", err)
	}
	return Record{At: time.Duration(tsNs), Protocol: proto, Frame: b}, nil
}

// Writer appends frames to a log. It is not safe for concurrent use.
type Writer struct {
	w      *bufio.Writer
	c      io.Closer
	clock  func() time.Time
	start  time.Time
	closed bool
}

// Create truncates path and starts a log with a START marker.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(f, time.Now)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.c = f
	return w, nil
}

// NewWriter starts a log on w. Timestamps are taken from clock relative to
// the moment NewWriter is called.
func NewWriter(w io.Writer, clock func() time.Time) (*Writer, error) {
	bw := bufio.NewWriterSize(w, 64*1024)
	if _, err := bw.WriteString(startMarker + "\n"); err != nil {
		return nil, err
	}
	return &Writer{w: bw, clock: clock, start: clock()}, nil
}

func (ww *Writer) Write(protocol string, frame []byte) error {
	if ww.closed {
		return errors.New("capture writer is closed")
	}
	if len(frame) == 0 {
		return errors.New("capture: empty frame")
	}
	d := ww.clock().Sub(ww.start)
	if d < 0 {
		d = 0
	}
	_, err := fmt.Fprintf(ww.w, "%d,%s,%s\n", d.Nanoseconds(), protocol, hex.EncodeToString(frame))
	return err
}

func (ww *Writer) Flush() error {
	if ww.closed {
		return nil
	}
	return ww.w.Flush()
}

func (ww *Writer) Close() error {
	if ww.closed {
		return nil
	}
	ww.closed = true
	err := ww.w.Flush()
	if ww.c != nil {
		if cerr := ww.c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
