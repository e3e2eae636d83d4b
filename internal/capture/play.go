package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type realSleeper struct{}

func (realSleeper) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Play calls cb for every frame record, waiting between frames as long as
// the log says divided by speed. START markers reset the origin. With loop
// set the records repeat until ctx is done or cb fails.
func Play(ctx context.Context, records []Record, speed float64, loop bool, sleeper Sleeper, cb func(Record) error) error {
	if speed <= 0 {
		return fmt.Errorf("speed must be > 0")
	}
	if sleeper == nil {
		sleeper = realSleeper{}
	}
	if cb == nil {
		return errors.New("callback is nil")
	}
	frames := 0
	for _, r := range records {
		if !r.Start() {
			frames++
		}
	}
	if frames == 0 {
		return errors.New("no frames")
	}

	for {
		var origin, lastAt time.Duration
		haveLast := false

		for _, r := range records {
			if err := ctx.Err(); err != nil {
				return err
			}
			if r.Start() {
				origin = r.At
				lastAt = 0
				haveLast = false
				continue
			}

			at := r.At - origin
			if at < 0 {
				at = 0
			}
			if haveLast {
				wait := time.Duration(float64(at-lastAt) / speed)
				if wait > 0 {
					if err := sleeper.Sleep(ctx, wait); err != nil {
						return err
					}
				}
			}

			if err := cb(r); err != nil {
				return err
			}
			lastAt = at
			haveLast = true
		}

		if !loop {
			return nil
		}
	}
}

// Source plays records into a pipe so they can be read back as a byte
// stream. The stream ends when playback ends; closing the returned reader
// stops playback.
func Source(ctx context.Context, records []Record, speed float64, loop bool, sleeper Sleeper) io.ReadCloser {
	ctx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()
	go func() {
		err := Play(ctx, records, speed, loop, sleeper, func(r Record) error {
			_, err := pw.Write(r.Frame)
			return err
		})
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		_ = pw.CloseWithError(err)
	}()
	return &pipeSource{PipeReader: pr, cancel: cancel}
}

type pipeSource struct {
	*io.PipeReader
	cancel context.CancelFunc
}

func (p *pipeSource) Close() error {
	p.cancel()
	return p.PipeReader.Close()
}
