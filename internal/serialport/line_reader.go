package serialport

import (
	"bytes"
	"errors"
	"io"
	"strings"
)

const (
	readChunk = 256

	// MaxLineBytes bounds one device line. A reading is a few bytes; anything
	// this long is noise or a baud rate mismatch.
	MaxLineBytes = 4096
)

// ErrLineTooLong is returned once per overlong line. The rest of that line,
// up to and including its newline, is discarded.
var ErrLineTooLong = errors.New("serial line too long")

// LineReader splits a timeout-bounded byte stream into lines.
//
// The underlying Read must return (0, nil) when its timeout expires, which is
// what go.bug.st/serial does. ReadLine then returns "" so the caller can treat
// a quiet device as a no-op; bytes of an unfinished line stay buffered.
type LineReader struct {
	src        io.Reader
	pending    bytes.Buffer
	chunk      []byte
	discarding bool
}

func NewLineReader(src io.Reader) *LineReader {
	return &LineReader{src: src, chunk: make([]byte, readChunk)}
}

// ReadLine returns the next line without its terminator and surrounding
// whitespace, or "" when the read timed out before a full line arrived.
func (r *LineReader) ReadLine() (string, error) {
	for {
		if line, ok, err := r.takeLine(); ok {
			return line, err
		}
		n, err := r.src.Read(r.chunk)
		if n > 0 {
			r.pending.Write(r.chunk[:n])
		}
		if r.pending.Len() > MaxLineBytes && bytes.IndexByte(r.pending.Bytes(), '\n') < 0 {
			r.pending.Reset()
			if !r.discarding {
				r.discarding = true
				return "", ErrLineTooLong
			}
		}
		if err != nil {
			if err == io.EOF && r.pending.Len() > 0 && !r.discarding {
				return r.flush(), nil
			}
			return "", err
		}
		if n == 0 {
			return "", nil
		}
	}
}

// takeLine pops the next complete line; ok is false when none is buffered.
func (r *LineReader) takeLine() (line string, ok bool, err error) {
	for {
		i := bytes.IndexByte(r.pending.Bytes(), '\n')
		if i < 0 {
			return "", false, nil
		}
		raw := r.pending.Next(i + 1)
		if r.discarding {
			r.discarding = false
			continue
		}
		if len(raw) > MaxLineBytes {
			return "", true, ErrLineTooLong
		}
		return strings.TrimSpace(string(raw)), true, nil
	}
}

func (r *LineReader) flush() string {
	line := r.pending.String()
	r.pending.Reset()
	return strings.TrimSpace(line)
}
