package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// maxLineBytes bounds a single export line.
const maxLineBytes = 1 << 20

// Clean copies r to w line by line, dropping every non-printable rune.
// Exports sometimes carry a byte order mark, non-breaking spaces or stray
// control characters that break field comparison.
func Clean(w io.Writer, r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	bw := bufio.NewWriter(w)
	for sc.Scan() {
		if _, err := bw.WriteString(CleanLine(sc.Text())); err != nil {
			return fmt.Errorf("%w: %w", ErrRead, err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("%w: %w", ErrRead, err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrRead, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrRead, err)
	}
	return nil
}

// CleanLine removes non-printable runes from one line.
func CleanLine(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, s)
}
