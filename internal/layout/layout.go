package layout

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// DefaultPaddingByte is used when a layout line carries no padding field.
const DefaultPaddingByte = 0xFF

var ErrMalformedNumber = errors.New("malformed numeric field")

// Part is a named, offset-addressed byte range within a firmware image.
// Parts keep the order they were declared in; adjacency-based size
// inference depends on that order, not on sorted offsets.
type Part struct {
	Name        string
	Offset      uint64
	Size        uint64
	PaddingByte byte

	// ExplicitSize records whether Size came from the layout file or was
	// left for the resolver to fill in.
	ExplicitSize bool
	// ExplicitPadding only affects the layout summary, never streaming.
	ExplicitPadding bool
}

// PartFileName returns the companion file holding a part's bytes.
func PartFileName(name string) string {
	return name + ".bin"
}

// ParseNumber parses an unsigned integer field from a layout line.
// A 0x/0X prefix selects hexadecimal, anything else is decimal, and an
// empty or whitespace-only field parses as zero.
func ParseNumber(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	digits := s
	base := 10
	if len(s) >= 2 && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		digits = s[2:]
		base = 16
	}
	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedNumber, s)
	}
	return v, nil
}

// Parse reads a line-oriented layout description and returns the declared
// parts in file order. Blank lines and #-comments are ignored, as are
// lines with fewer than two comma-separated fields. A malformed numeric
// field aborts the whole parse.
func Parse(r io.Reader) ([]Part, error) {
	var parts []Part
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 2 {
			continue
		}

		part := Part{
			Name:        strings.TrimSpace(fields[0]),
			PaddingByte: DefaultPaddingByte,
		}
		offset, err := ParseNumber(fields[1])
		if err != nil {
			return nil, fmt.Errorf("part %q offset: %w", part.Name, err)
		}
		part.Offset = offset

		if len(fields) > 2 && strings.TrimSpace(fields[2]) != "" {
			size, err := ParseNumber(fields[2])
			if err != nil {
				return nil, fmt.Errorf("part %q size: %w", part.Name, err)
			}
			part.Size = size
			part.ExplicitSize = true
		}

		if len(fields) > 3 {
			padding, err := ParseNumber(fields[3])
			if err != nil {
				return nil, fmt.Errorf("part %q padding: %w", part.Name, err)
			}
			part.PaddingByte = byte(padding)
			part.ExplicitPadding = true
		}

		parts = append(parts, part)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return parts, nil
}

// ParseFile reads a layout description from disk.
func ParseFile(path string) ([]Part, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read layout file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}
