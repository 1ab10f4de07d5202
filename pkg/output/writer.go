// Package output writes rendered documents to files and streams.
package output

import (
	"errors"
	"io"
	"os"
)

// DefaultFileMode is the permission used when creating output files.
const DefaultFileMode os.FileMode = 0o644

// ErrEmptyPath is returned when a file write is requested without a path.
var ErrEmptyPath = errors.New("output path is empty")

// WriteError wraps errors that occur during write operations.
type WriteError struct {
	Op   string // Operation that failed (e.g., "open", "write", "close")
	Path string // File path, empty for streams
	Err  error  // Underlying error
}

func (e *WriteError) Error() string {
	if e.Path != "" {
		return "output: " + e.Op + " " + e.Path + ": " + e.Err.Error()
	}
	return "output: " + e.Op + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// WriteFile replaces the contents of path with data.
//
// The file is truncated and rewritten in place. There is no temp-file
// rename, so a failure mid-write can leave a partial file behind.
func WriteFile(path string, data []byte) error {
	if path == "" {
		return &WriteError{Op: "open", Err: ErrEmptyPath}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, DefaultFileMode)
	if err != nil {
		return &WriteError{Op: "open", Path: path, Err: err}
	}

	if err := writeAll(f, data); err != nil {
		_ = f.Close()
		return &WriteError{Op: "write", Path: path, Err: err}
	}

	if err := f.Close(); err != nil {
		return &WriteError{Op: "close", Path: path, Err: err}
	}

	return nil
}

// WriteLine writes data followed by a newline to w.
func WriteLine(w io.Writer, data []byte) error {
	line := make([]byte, 0, len(data)+1)
	line = append(line, data...)
	line = append(line, '\n')

	if err := writeAll(w, line); err != nil {
		return &WriteError{Op: "write", Err: err}
	}
	return nil
}

// writeAll writes all bytes to w, handling short writes.
//
// io.Writer.Write may return n < len(p) with a nil error (short write).
// This function loops until all bytes are written or an error occurs.
func writeAll(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		if n == 0 {
			// No progress made - avoid infinite loop
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}
