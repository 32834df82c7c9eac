package dxfio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// groupPair is one (code, value) pair as DXF's text format pairs them: a
// group code on one line, its value on the next.
type groupPair struct {
	code  int
	value string
}

func readGroupPairs(r io.Reader) ([]groupPair, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var pairs []groupPair
	for scanner.Scan() {
		codeLine := strings.TrimSpace(scanner.Text())
		if !scanner.Scan() {
			return nil, fmt.Errorf("dxf: truncated group pair after code %q", codeLine)
		}
		value := strings.TrimSpace(scanner.Text())
		code, err := strconv.Atoi(codeLine)
		if err != nil {
			return nil, fmt.Errorf("dxf: invalid group code %q: %w", codeLine, err)
		}
		pairs = append(pairs, groupPair{code: code, value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dxf: read failed: %w", err)
	}
	return pairs, nil
}

func (p groupPair) asFloat() float64 {
	v, _ := strconv.ParseFloat(p.value, 64)
	return v
}

func (p groupPair) asInt() int {
	v, _ := strconv.Atoi(strings.TrimSpace(p.value))
	return v
}
