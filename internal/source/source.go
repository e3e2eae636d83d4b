// Package source opens the byte streams a receiver is read from: a serial
// port, a TCP socket or a capture file.
package source

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"unigps/internal/config"
)

// Open returns the byte source described by cfg. TCP sources are dialed
// with DefaultBackoff until ctx is done.
func Open(ctx context.Context, cfg config.SourceConfig, log zerolog.Logger) (io.ReadCloser, error) {
	switch cfg.Type {
	case "serial":
		f, err := OpenSerial(cfg.Device, cfg.Baud)
		if err != nil {
			return nil, err
		}
		log.Info().Str("device", cfg.Device).Int("baud", cfg.Baud).Msg("serial source open")
		return f, nil
	case "tcp":
		conn, err := DialRetry(ctx, cfg.Addr, DefaultBackoff, log)
		if err != nil {
			return nil, err
		}
		log.Info().Str("addr", cfg.Addr).Msg("tcp source connected")
		return conn, nil
	case "file":
		f, err := os.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.Path).Msg("file source open")
		return f, nil
	}
	return nil, fmt.Errorf("source: unknown type %q", cfg.Type)
}

// Backoff bounds the delay between dial attempts. The delay doubles after
// each failure.
type Backoff struct {
	Min time.Duration
	Max time.Duration
}

var DefaultBackoff = Backoff{Min: 250 * time.Millisecond, Max: 10 * time.Second}

// DialTCP connects once with a 2s timeout.
func DialTCP(ctx context.Context, addr string) (net.Conn, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, fmt.Errorf("source: empty tcp address")
	}
	d := &net.Dialer{Timeout: 2 * time.Second}
	return d.DialContext(ctx, "tcp", addr)
}

// DialRetry dials addr until it succeeds or ctx is done.
func DialRetry(ctx context.Context, addr string, b Backoff, log zerolog.Logger) (net.Conn, error) {
	delay := b.Min
	for {
		conn, err := DialTCP(ctx, addr)
		if err == nil {
			return conn, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn().Err(err).Str("addr", addr).Dur("retry_in", delay).Msg("tcp dial failed")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		if delay < b.Max {
			delay *= 2
			if delay > b.Max {
				delay = b.Max
			}
		}
	}
}
