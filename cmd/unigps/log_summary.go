package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"unigps/internal/capture"
	"unigps/internal/stream"
)

type logSummary struct {
	Segments    int
	Frames      int
	Invalid     int
	MaxDuration time.Duration
	// Counts is keyed by "<protocol> <identity>".
	Counts      map[string]int
}

func summarizeCapture(records []capture.Record) logSummary {
	s := logSummary{Counts: map[string]int{}}
	if len(records) == 0 {
		return s
	}

	origin := time.Duration(0)
	hasFrames := false
	segments := 0

	for _, r := range records {
		if r.Start() {
			segments++
			origin = r.At
			continue
		}
		hasFrames = true

		s.Frames++
		at := r.At - origin
		if at < 0 {
			at = 0
		}
		if at > s.MaxDuration {
			s.MaxDuration = at
		}

		key, ok := identifyFrame(r.Frame)
		if !ok {
			s.Invalid++
			continue
		}
		s.Counts[key]++
	}
	if segments == 0 && hasFrames {
		segments = 1
	}
	s.Segments = segments

	return s
}

// identifyFrame decodes a single recorded frame with checksums validated.
func identifyFrame(frame []byte) (string, bool) {
	r, err := stream.NewReader(bytes.NewReader(frame), stream.WithErrorMode(stream.ErrorRaise))
	if err != nil {
		return "", false
	}
	_, msg, err := r.Read()
	if err != nil || msg == nil {
		return "", false
	}
	return protocolOf(frame).String() + " " + msg.Identity(), true
}

func printLogSummary(w io.Writer, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("path is empty")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	recs, err := capture.NewReader(f).ReadAll()
	if err != nil {
		return err
	}

	s := summarizeCapture(recs)

	fmt.Fprintf(w, "path: %s\n", path)
	fmt.Fprintf(w, "segments: %d\n", s.Segments)
	fmt.Fprintf(w, "frames: %d\n", s.Frames)
	fmt.Fprintf(w, "invalid_frames: %d\n", s.Invalid)
	fmt.Fprintf(w, "max_duration: %s\n", s.MaxDuration)

	keys := make([]string, 0, len(s.Counts))
	for k := range s.Counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(w, "message_counts:\n")
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %d\n", k, s.Counts[k])
	}
	return nil
}
