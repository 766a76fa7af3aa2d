// Package emu provides functional RV32I emulation.
package emu

import (
	"bufio"
	"fmt"
	"io"
)

// LineSource supplies interactive input one line at a time. ReadLine blocks
// until a line is available and returns io.EOF when input is exhausted.
type LineSource interface {
	ReadLine(prompt string) (string, error)
}

// ReaderLineSource reads lines from an io.Reader and echoes prompts to an
// io.Writer.
type ReaderLineSource struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewReaderLineSource creates a LineSource over r. Prompts are written to out;
// pass io.Discard to suppress them.
func NewReaderLineSource(r io.Reader, out io.Writer) *ReaderLineSource {
	return &ReaderLineSource{
		scanner: bufio.NewScanner(r),
		out:     out,
	}
}

// ReadLine prints prompt and returns the next line without its terminator.
func (s *ReaderLineSource) ReadLine(prompt string) (string, error) {
	if s.out != nil && prompt != "" {
		_, _ = fmt.Fprint(s.out, prompt)
	}

	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}

	return s.scanner.Text(), nil
}
