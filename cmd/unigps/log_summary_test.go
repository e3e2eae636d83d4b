package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"unigps/internal/capture"
)

func TestIdentifyFrame(t *testing.T) {
	key, ok := identifyFrame(test12Frame)
	if !ok || key != "uni TEST12" {
		t.Fatalf("identifyFrame()=%q,%v want %q", key, ok, "uni TEST12")
	}
	key, ok = identifyFrame(rtcm1005)
	if !ok || key != "rtcm3 1005" {
		t.Fatalf("identifyFrame()=%q,%v want %q", key, ok, "rtcm3 1005")
	}

	bad := append([]byte(nil), test12Frame...)
	bad[len(bad)-1] ^= 0xff
	if _, ok := identifyFrame(bad); ok {
		t.Fatalf("expected ok=false for bad checksum")
	}
	if _, ok := identifyFrame([]byte{0x01, 0x02}); ok {
		t.Fatalf("expected ok=false for garbage")
	}
}

func TestSummarizeCapture(t *testing.T) {
	gga := nmeaLine("GNGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,")
	bad := []byte{0xaa, 0x44, 0xb5}

	recs := []capture.Record{
		{At: 0},
		{At: 0, Protocol: "uni", Frame: test12Frame},
		{At: 200 * time.Millisecond, Protocol: "nmea", Frame: gga},
		{At: 300 * time.Millisecond, Protocol: "uni", Frame: bad},
		{At: 0},
		{At: 1 * time.Second, Protocol: "uni", Frame: test12Frame},
	}

	s := summarizeCapture(recs)
	if s.Segments != 2 {
		t.Fatalf("segments=%d want %d", s.Segments, 2)
	}
	if s.Frames != 4 {
		t.Fatalf("frames=%d want %d", s.Frames, 4)
	}
	if s.Invalid != 1 {
		t.Fatalf("invalid=%d want %d", s.Invalid, 1)
	}
	if s.Counts["uni TEST12"] != 2 {
		t.Fatalf("count[uni TEST12]=%d want %d", s.Counts["uni TEST12"], 2)
	}
	if s.Counts["nmea GNGGA"] != 1 {
		t.Fatalf("count[nmea GNGGA]=%d want %d", s.Counts["nmea GNGGA"], 1)
	}
	if s.MaxDuration != 1*time.Second {
		t.Fatalf("maxDuration=%s want %s", s.MaxDuration, 1*time.Second)
	}
}

func TestSummarizeCapture_NoStartMarker(t *testing.T) {
	s := summarizeCapture([]capture.Record{{At: 5, Protocol: "uni", Frame: test12Frame}})
	if s.Segments != 1 || s.Frames != 1 {
		t.Fatalf("segments=%d frames=%d want 1,1", s.Segments, s.Frames)
	}
	if s := summarizeCapture(nil); s.Frames != 0 || s.Segments != 0 {
		t.Fatalf("expected empty summary, got %+v", s)
	}
}

func TestPrintLogSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.log")
	w, err := capture.Create(path)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := w.Write("uni", test12Frame); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if err := w.Write("rtcm3", rtcm1005); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	var out bytes.Buffer
	if err := printLogSummary(&out, path); err != nil {
		t.Fatalf("printLogSummary() error: %v", err)
	}
	got := out.String()
	for _, want := range []string{"segments: 1\n", "frames: 2\n", "invalid_frames: 0\n", "  rtcm3 1005: 1\n", "  uni TEST12: 1\n"} {
		if !strings.Contains(got, want) {
			t.Fatalf("summary missing %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "rtcm3 1005") > strings.Index(got, "uni TEST12") {
		t.Fatalf("expected sorted counts:\n%s", got)
	}
}

func TestPrintLogSummary_Errors(t *testing.T) {
	if err := printLogSummary(&bytes.Buffer{}, " "); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if err := printLogSummary(&bytes.Buffer{}, filepath.Join(t.TempDir(), "missing.log")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.log")
	if err := os.WriteFile(path, []byte("garbage\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	if err := printLogSummary(&bytes.Buffer{}, path); err == nil {
		t.Fatalf("expected error for malformed log")
	}
}
