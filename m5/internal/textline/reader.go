// Package textline pulls one line at a time from a buffered text
// source, tracking line numbers for diagnostics.
//
// The reader owns the current-line buffer; each call to Next returns
// an immutable snapshot of one line, so no caller can observe a stale
// or partially overwritten buffer. Line-termination trimming is the
// caller's responsibility: the trailing '\n' is removed (it is the
// reader's notion of where a line ends) but '\r' and all other
// whitespace are preserved so callers keep exact column counts.
package textline

import (
	"bufio"
	"io"
)

// Reader wraps an io.Reader with line-oriented reads and position tracking.
type Reader struct {
	br   *bufio.Reader
	line int
}

// New creates a new Reader wrapping the given io.Reader.
func New(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// Line returns the 1-based number of the line most recently returned
// by Next, or 0 before the first read.
func (r *Reader) Line() int {
	return r.line
}

// Next returns the next line without its trailing '\n'. A final line
// with no terminator is still returned; io.EOF is reported only when
// no data remains.
func (r *Reader) Next() (string, error) {
	s, err := r.br.ReadString('\n')
	if err != nil {
		if err == io.EOF && len(s) > 0 {
			r.line++
			return s, nil
		}
		return "", err
	}
	r.line++
	return s[:len(s)-1], nil
}
