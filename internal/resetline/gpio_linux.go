//go:build linux

package resetline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/warthog618/go-gpiocdev"
)

// openLine requests the named line as an output held high. With chip empty
// every /dev/gpiochip* is searched.
func openLine(chip, name string) (Line, error) {
	if name == "" {
		return nil, fmt.Errorf("resetline: empty line name")
	}

	chipCandidates := []string{chip}
	if chip == "" {
		chipCandidates = chipCandidates[:0]
		entries, _ := os.ReadDir("/dev")
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), "gpiochip") {
				chipCandidates = append(chipCandidates, filepath.Join("/dev", e.Name()))
			}
		}
	}

	for _, chipPath := range chipCandidates {
		c, err := gpiocdev.NewChip(chipPath)
		if err != nil {
			continue
		}
		offset, err := c.FindLine(name)
		if err != nil {
			_ = c.Close()
			continue
		}
		l, err := c.RequestLine(offset, gpiocdev.AsOutput(1), gpiocdev.WithConsumer("unigps-reset"))
		if err != nil {
			_ = c.Close()
			continue
		}
		return &gpiodLine{chip: c, line: l}, nil
	}

	return nil, fmt.Errorf("resetline: gpio line %q not found (or busy)", name)
}

var openLineFn = openLine

type gpiodLine struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

func (g *gpiodLine) SetValue(v int) error {
	if g.line == nil {
		return fmt.Errorf("resetline: line closed")
	}
	return g.line.SetValue(v)
}

func (g *gpiodLine) Close() error {
	if g.line == nil {
		return nil
	}
	err := g.line.Close()
	g.line = nil
	if g.chip != nil {
		_ = g.chip.Close()
		g.chip = nil
	}
	return err
}
