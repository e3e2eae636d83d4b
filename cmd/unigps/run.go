package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"unigps/internal/capture"
	"unigps/internal/config"
	"unigps/internal/metrics"
	"unigps/internal/nmea"
	"unigps/internal/relay"
	"unigps/internal/resetline"
	"unigps/internal/rtcm3"
	"unigps/internal/source"
	"unigps/internal/stream"
)

// run streams frames from the configured source until it is exhausted or
// ctx is done.
func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	reg := prometheus.NewRegistry()
	m := metrics.NewReader()
	if err := m.Register(reg); err != nil {
		return err
	}

	var metricsLn net.Listener
	if cfg.Metrics.Listen != "" {
		ln, err := net.Listen("tcp", cfg.Metrics.Listen)
		if err != nil {
			return fmt.Errorf("metrics listen: %w", err)
		}
		metricsLn = ln
		// serveMetrics closes it on shutdown; this covers the early returns.
		defer ln.Close()
	}

	if cfg.Reset.Enable && !cfg.Replay.Enable {
		if err := resetline.Reset(ctx, cfg.Reset, log); err != nil {
			return err
		}
	}

	src, err := openSource(ctx, cfg, log)
	if err != nil {
		return err
	}

	var rec *capture.Writer
	if cfg.Record.Enable {
		rec, err = capture.Create(cfg.Record.Path)
		if err != nil {
			_ = src.Close()
			return fmt.Errorf("capture create: %w", err)
		}
		defer func() {
			if err := rec.Close(); err != nil {
				log.Warn().Err(err).Msg("capture close failed")
			}
		}()
		log.Info().Str("path", cfg.Record.Path).Msg("recording frames")
	}

	var out *relay.Relay
	if cfg.Relay.Enable {
		out, err = relay.New(cfg.Relay.Dest, m)
		if err != nil {
			_ = src.Close()
			return err
		}
		defer out.Close()
		log.Info().Str("dest", cfg.Relay.Dest).Msg("relaying frames")
	}

	opts, err := cfg.Reader.StreamOptions()
	if err != nil {
		_ = src.Close()
		return err
	}
	opts = append(opts, stream.WithLogger(log), stream.WithMetrics(m))
	r, err := stream.NewReader(src, opts...)
	if err != nil {
		_ = src.Close()
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if metricsLn != nil {
		g.Go(func() error {
			return serveMetrics(gctx, metricsLn, reg, log)
		})
	}

	// Closing the source is the only way to unblock a pending Read.
	g.Go(func() error {
		<-gctx.Done()
		_ = src.Close()
		return nil
	})

	g.Go(func() error {
		defer cancel()
		p := &pump{reader: r, rec: rec, relay: out, log: log}
		return p.run(gctx)
	})

	return g.Wait()
}

func openSource(ctx context.Context, cfg config.Config, log zerolog.Logger) (io.ReadCloser, error) {
	if !cfg.Replay.Enable {
		return source.Open(ctx, cfg.Source, log)
	}
	f, err := os.Open(cfg.Replay.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	recs, err := capture.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", cfg.Replay.Path).Int("records", len(recs)).Float64("speed", cfg.Replay.Speed).Bool("loop", cfg.Replay.Loop).Msg("replaying capture")
	return capture.Source(ctx, recs, cfg.Replay.Speed, cfg.Replay.Loop, nil), nil
}

type pump struct {
	reader *stream.Reader
	rec    *capture.Writer
	relay  *relay.Relay
	log    zerolog.Logger
}

func (p *pump) run(ctx context.Context) error {
	for {
		raw, msg, err := p.reader.Read()
		if errors.Is(err, io.EOF) {
			p.log.Info().Msg("source exhausted")
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if p.rec != nil {
			if err := p.rec.Write(protocolOf(raw).String(), raw); err != nil {
				return fmt.Errorf("capture write: %w", err)
			}
		}
		if p.relay != nil {
			if err := p.relay.Send(raw); err != nil {
				p.log.Warn().Err(err).Msg("relay send failed")
			}
		}
		p.logFrame(raw, msg)
	}
}

func (p *pump) logFrame(raw []byte, msg stream.Parsed) {
	if msg == nil {
		p.log.Debug().Str("protocol", protocolOf(raw).String()).Int("len", len(raw)).Msg("frame")
		return
	}
	if s, ok := msg.(*nmea.Sentence); ok {
		if fix, ok := s.Fix(); ok {
			ev := p.log.Debug().Str("id", s.Identity()).Float64("lat", fix.LatDeg).Float64("lon", fix.LonDeg)
			if fix.AltM != nil {
				ev = ev.Float64("alt_m", *fix.AltM)
			}
			ev.Msg("fix")
			return
		}
	}
	p.log.Debug().Str("id", msg.Identity()).Msg(msg.String())
}

// protocolOf classifies a complete frame by its first byte.
func protocolOf(raw []byte) stream.Protocol {
	if len(raw) == 0 {
		return 0
	}
	switch raw[0] {
	case 0xaa:
		return stream.UNI
	case '$':
		return stream.NMEA
	case rtcm3.Preamble:
		return stream.RTCM3
	}
	return 0
}

func serveMetrics(ctx context.Context, ln net.Listener, reg *prometheus.Registry, log zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	log.Info().Str("addr", ln.Addr().String()).Msg("metrics listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
