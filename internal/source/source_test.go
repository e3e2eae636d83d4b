package source

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unigps/internal/config"
)

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.bin")
	require.NoError(t, os.WriteFile(path, []byte{0xaa, 0x44, 0xb5}, 0o644))

	rc, err := Open(context.Background(), config.SourceConfig{Type: "file", Path: path}, zerolog.Nop())
	require.NoError(t, err)
	defer rc.Close()

	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xaa, 0x44, 0xb5}, b)
}

func TestOpenTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		_, _ = conn.Write([]byte("$GPGLL*00\r\n"))
		_ = conn.Close()
	}()

	rc, err := Open(context.Background(), config.SourceConfig{Type: "tcp", Addr: ln.Addr().String()}, zerolog.Nop())
	require.NoError(t, err)
	defer rc.Close()

	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "$GPGLL*00\r\n", string(b))
}

func TestOpenUnknownType(t *testing.T) {
	_, err := Open(context.Background(), config.SourceConfig{Type: "usb"}, zerolog.Nop())
	require.EqualError(t, err, `source: unknown type "usb"`)
}

func TestDialRetryGivesUpWithContext(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	_, err = DialRetry(ctx, addr, Backoff{Min: 10 * time.Millisecond, Max: 40 * time.Millisecond}, zerolog.Nop())
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "err=%v", err)
}

func TestDialTCPEmptyAddr(t *testing.T) {
	_, err := DialTCP(context.Background(), " ")
	require.Error(t, err)
}
