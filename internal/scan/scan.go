// Package scan provides a line cursor over text report files.
package scan

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Scanner walks a report line by line with one line of lookahead.
// Running out of input is never an error: Next and Peek simply report
// that no line is available, which callers treat as end of section.
type Scanner struct {
	reader  *bufio.Reader
	line    []byte // reusable buffer for reading lines
	pending *string
	err     error
	cleanup func()
}

// New wraps an already-open reader.
func New(r io.Reader) *Scanner {
	return &Scanner{
		reader: bufio.NewReaderSize(r, 1<<20), // 1MB buffer
		line:   make([]byte, 0, 512),
	}
}

// Open opens a report file for line scanning. Files with a .gz suffix
// or gzip magic bytes are decompressed transparently.
func Open(path string) (*Scanner, error) {
	rc, err := OpenReader(path)
	if err != nil {
		return nil, err
	}
	s := New(rc)
	s.cleanup = func() { _ = rc.Close() }
	return s, nil
}

// OpenReader opens a report file as a plain text stream, decompressing
// gzip transparently for files with a .gz suffix or gzip magic bytes.
func OpenReader(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open report: %w", err)
	}
	br := bufio.NewReaderSize(f, 1<<20)
	gzipped, err := hasGzipMagic(br)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("cannot inspect report: %w", err)
	}

	if strings.HasSuffix(strings.ToLower(path), ".gz") || gzipped {
		gz, err := gzip.NewReader(br)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("cannot open gzip report: %w", err)
		}
		return &readCloser{Reader: gz, close: func() error {
			_ = gz.Close()
			return f.Close()
		}}, nil
	}

	return &readCloser{Reader: br, close: f.Close}, nil
}

type readCloser struct {
	io.Reader
	close func() error
}

func (rc *readCloser) Close() error { return rc.close() }

func hasGzipMagic(br *bufio.Reader) (bool, error) {
	header, err := br.Peek(2)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	return header[0] == 0x1f && header[1] == 0x8b, nil
}

// Close releases the underlying file, if any.
func (s *Scanner) Close() error {
	if s.cleanup != nil {
		s.cleanup()
		s.cleanup = nil
	}
	return nil
}

// Err returns the first read error other than end-of-input.
func (s *Scanner) Err() error { return s.err }

// Next consumes and returns the next line, without its line ending.
// ok is false at end of input or after a read error.
func (s *Scanner) Next() (line string, ok bool) {
	if s.pending != nil {
		line = *s.pending
		s.pending = nil
		return line, true
	}
	return s.readLine()
}

// Peek returns the next line without consuming it.
func (s *Scanner) Peek() (line string, ok bool) {
	if s.pending == nil {
		line, ok := s.readLine()
		if !ok {
			return "", false
		}
		s.pending = &line
	}
	return *s.pending, true
}

// TakeWhile consumes lines as long as pred holds and returns them.
// Running out of input ends the collection without error.
func (s *Scanner) TakeWhile(pred func(string) bool) []string {
	var lines []string
	for {
		line, ok := s.Peek()
		if !ok || !pred(line) {
			return lines
		}
		s.pending = nil
		lines = append(lines, line)
	}
}

// readLine reads a line from the input, stripping the newline.
// Reuses an internal buffer to minimize allocations.
func (s *Scanner) readLine() (string, bool) {
	if s.err != nil {
		return "", false
	}
	s.line = s.line[:0]

	for {
		segment, isPrefix, err := s.reader.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.err = err
			}
			return "", false
		}

		s.line = append(s.line, segment...)

		if !isPrefix {
			break
		}
	}

	// Trim any trailing CR (for Windows line endings)
	s.line = bytes.TrimSuffix(s.line, []byte{'\r'})

	return string(s.line), true
}
