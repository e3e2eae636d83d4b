//go:build !linux

package resetline

import "fmt"

func openLine(chip, name string) (Line, error) {
	return nil, fmt.Errorf("resetline: gpio unsupported on this platform")
}

var openLineFn = openLine
