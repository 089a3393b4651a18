// Package loader provides hex-encoded MIPS program loading.
//
// Programs are ordered lists of 32-bit instruction encodings, each
// written as exactly 8 hexadecimal characters. Malformed encodings are
// rejected here, at the submission boundary, so the simulation core
// can assume well-formed words.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// WordLength is the required number of hex characters per instruction.
const WordLength = 8

// ParseWord parses a single 8-hex-character instruction encoding.
func ParseWord(s string) (uint32, error) {
	if len(s) != WordLength {
		return 0, fmt.Errorf(
			"instruction %q: want %d hex characters, got %d",
			s, WordLength, len(s))
	}

	word, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("instruction %q: not valid hexadecimal", s)
	}

	return uint32(word), nil
}

// Parse parses an ordered list of instruction encodings. The input
// must contain at least one word.
func Parse(words []string) ([]uint32, error) {
	if len(words) == 0 {
		return nil, fmt.Errorf("program is empty")
	}

	out := make([]uint32, 0, len(words))
	for i, s := range words {
		word, err := ParseWord(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, word)
	}

	return out, nil
}

// Read parses a program from a reader, one encoding per line. Blank
// lines and lines starting with '#' are skipped.
func Read(r io.Reader) ([]uint32, error) {
	var words []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	return Parse(words)
}

// LoadFile parses a program from a file.
func LoadFile(path string) ([]uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Read(f)
}
