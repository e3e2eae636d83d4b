// Package resetline pulses the receiver RESET pin through a GPIO line
// before streaming starts. RESET is active low.
package resetline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"unigps/internal/config"
)

// Line is a requested GPIO output.
type Line interface {
	SetValue(v int) error
	Close() error
}

var sleepFn = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Pulse drives line low for pulse, releases it, then waits settle for the
// receiver to boot.
func Pulse(ctx context.Context, line Line, pulse, settle time.Duration) error {
	if err := line.SetValue(0); err != nil {
		return fmt.Errorf("resetline: assert: %w", err)
	}
	if err := sleepFn(ctx, pulse); err != nil {
		_ = line.SetValue(1)
		return err
	}
	if err := line.SetValue(1); err != nil {
		return fmt.Errorf("resetline: release: %w", err)
	}
	return sleepFn(ctx, settle)
}

// Reset opens the configured line, pulses it and releases the line.
func Reset(ctx context.Context, cfg config.ResetConfig, log zerolog.Logger) error {
	line, err := openLineFn(cfg.Chip, cfg.Line)
	if err != nil {
		return err
	}
	defer func() { _ = line.Close() }()

	log.Info().Str("line", cfg.Line).Dur("pulse", cfg.Pulse).Msg("resetting receiver")
	if err := Pulse(ctx, line, cfg.Pulse, cfg.Settle); err != nil {
		return err
	}
	log.Debug().Dur("settle", cfg.Settle).Msg("receiver reset done")
	return nil
}
