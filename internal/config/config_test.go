package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"unigps/internal/stream"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func requireErrEq(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %q, got nil", want)
	}
	if err.Error() != want {
		t.Fatalf("error=%q want %q", err.Error(), want)
	}
}

func TestLoad_RequiresSourceType(t *testing.T) {
	path := writeTempConfig(t, "source: {}\n")
	_, err := Load(path)
	requireErrEq(t, err, "source.type is required")
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeTempConfig(t, "")
	_, err := Load(path)
	requireErrEq(t, err, "source.type is required")
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeTempConfig(t, "source:\n  type: serial\n  device: /dev/ttyS0\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Source.Baud != 115200 {
		t.Fatalf("baud=%d want 115200", cfg.Source.Baud)
	}
	if cfg.Reader.Mode != "get" || cfg.Reader.ErrorMode != "log" {
		t.Fatalf("reader mode=%q error_mode=%q", cfg.Reader.Mode, cfg.Reader.ErrorMode)
	}
	if cfg.Reader.Validate == nil || !*cfg.Reader.Validate {
		t.Fatalf("expected validate default true")
	}
	if cfg.Reader.Bitfields == nil || !*cfg.Reader.Bitfields || cfg.Reader.Parsing == nil || !*cfg.Reader.Parsing {
		t.Fatalf("expected bitfields and parsing default true")
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("log.level=%q want info", cfg.Log.Level)
	}
}

func TestLoad_SourceValidation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "SerialRequiresDevice",
			yaml: "source:\n  type: serial\n",
			want: "source.device is required when source.type is 'serial'",
		},
		{
			name: "TCPRequiresAddr",
			yaml: "source:\n  type: tcp\n",
			want: "source.addr is required when source.type is 'tcp'",
		},
		{
			name: "FileRequiresPath",
			yaml: "source:\n  type: file\n",
			want: "source.path is required when source.type is 'file'",
		},
		{
			name: "UnknownType",
			yaml: "source:\n  type: usb\n",
			want: "source.type must be one of serial, tcp, file",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeTempConfig(t, tc.yaml))
			requireErrEq(t, err, tc.want)
		})
	}
}

func TestLoad_ReaderValidation(t *testing.T) {
	base := "source:\n  type: tcp\n  addr: '127.0.0.1:5000'\n"
	cases := []struct {
		name  string
		extra string
		want  string
	}{
		{
			name:  "BadMode",
			extra: "reader:\n  mode: fetch\n",
			want:  "reader.mode must be one of get, set, poll, setpoll",
		},
		{
			name:  "BadErrorMode",
			extra: "reader:\n  error_mode: panic\n",
			want:  "reader.error_mode must be one of ignore, log, raise",
		},
		{
			name:  "BadProtocol",
			extra: "reader:\n  protocols: [uni, ubx]\n",
			want:  `reader.protocols: stream: unknown protocol "ubx"`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeTempConfig(t, base+tc.extra))
			requireErrEq(t, err, tc.want)
		})
	}
}

func TestLoad_RecordRequiresPath(t *testing.T) {
	path := writeTempConfig(t, "source:\n  type: file\n  path: in.bin\nrecord:\n  enable: true\n")
	_, err := Load(path)
	requireErrEq(t, err, "record.path is required when record.enable is true")
}

func TestLoad_ReplayReplacesSource(t *testing.T) {
	path := writeTempConfig(t, "replay:\n  enable: true\n  path: './a.log'\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Replay.Speed != 1 {
		t.Fatalf("speed=%v want 1", cfg.Replay.Speed)
	}
}

func TestLoad_ReplayRequiresPath(t *testing.T) {
	path := writeTempConfig(t, "replay:\n  enable: true\n")
	_, err := Load(path)
	requireErrEq(t, err, "replay.path is required when replay.enable is true")
}

func TestLoad_ReplayNegativeSpeedRejected(t *testing.T) {
	path := writeTempConfig(t, "replay:\n  enable: true\n  path: './a.log'\n  speed: -2\n")
	_, err := Load(path)
	requireErrEq(t, err, "replay.speed must be > 0")
}

func TestLoad_RecordAndReplayMutuallyExclusive(t *testing.T) {
	path := writeTempConfig(t, "record:\n  enable: true\n  path: './a.log'\nreplay:\n  enable: true\n  path: './b.log'\n")
	_, err := Load(path)
	requireErrEq(t, err, "record and replay cannot both be enabled")
}

func TestLoad_RelayRequiresDest(t *testing.T) {
	path := writeTempConfig(t, "source:\n  type: file\n  path: in.bin\nrelay:\n  enable: true\n")
	_, err := Load(path)
	requireErrEq(t, err, "relay.dest is required when relay.enable is true")
}

func TestLoad_ResetDefaults(t *testing.T) {
	path := writeTempConfig(t, "source:\n  type: file\n  path: in.bin\nreset:\n  enable: true\n  line: GPIO17\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Reset.Pulse != 100*time.Millisecond || cfg.Reset.Settle != 500*time.Millisecond {
		t.Fatalf("pulse=%s settle=%s", cfg.Reset.Pulse, cfg.Reset.Settle)
	}

	path = writeTempConfig(t, "source:\n  type: file\n  path: in.bin\nreset:\n  enable: true\n")
	_, err = Load(path)
	requireErrEq(t, err, "reset.line is required when reset.enable is true")
}

func TestLoad_RejectsUnknownField(t *testing.T) {
	path := writeTempConfig(t, "source:\n  type: file\n  path: in.bin\n  bogus: 1\n")
	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "field bogus not found") {
		t.Fatalf("error=%q", err.Error())
	}
}

func TestReaderConfig_StreamOptions(t *testing.T) {
	path := writeTempConfig(t, "source:\n  type: file\n  path: in.bin\nreader:\n  protocols: [uni]\n  error_mode: raise\n  parsing: false\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	opts, err := cfg.Reader.StreamOptions()
	if err != nil {
		t.Fatalf("StreamOptions() error: %v", err)
	}

	// A TEST12 frame with a corrupt checksum comes back raw because parsing
	// is off; the NMEA line is filtered out.
	frame := []byte("\xaa\x44\xb5\x00\x00\x12\x05\x00\x11\x22\x33\x44\x55\x66\x77\x88\x99\x00\x11\x22\x33\x44\x55\x66\x01\x02\x03\x04\x05\x00\x00\x00\x00")
	data := append([]byte("$GPGLL,1*00\r\n"), frame...)
	r, err := stream.NewReader(bytes.NewReader(data), opts...)
	if err != nil {
		t.Fatalf("NewReader() error: %v", err)
	}
	raw, msg, err := r.Read()
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if msg != nil || !bytes.Equal(raw, frame) {
		t.Fatalf("got raw=%x msg=%v", raw, msg)
	}
	if _, _, err := r.Read(); err != io.EOF {
		t.Fatalf("Read() error=%v want EOF", err)
	}
}
