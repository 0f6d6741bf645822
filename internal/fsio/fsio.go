// Package fsio holds the file I/O helpers shared by the scan workers and the
// rewrite stage.
package fsio

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
)

// IOError reports a fatal open, seek, read, write or close failure.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Wrap returns err as an *IOError, or nil when err is nil.
func Wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, Err: err}
}

// IsIOError reports whether err carries an *IOError.
func IsIOError(err error) bool {
	var ioErr *IOError
	return errors.As(err, &ioErr)
}

// ReadByte reads one byte from r, re-issuing the read while it reports an
// interrupted system call. io.EOF is returned unchanged.
func ReadByte(r io.ByteReader) (byte, error) {
	for {
		b, err := r.ReadByte()
		if err != nil && IsInterrupted(err) {
			continue
		}
		return b, err
	}
}

// OpenAt opens path read-only and positions it at offset.
func OpenAt(path string, offset int64) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Wrap("open", path, err)
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		f.Close()
		return nil, Wrap("seek", path, err)
	}
	return f, nil
}
