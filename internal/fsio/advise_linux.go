//go:build linux

package fsio

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// IsInterrupted reports whether err is EINTR.
func IsInterrupted(err error) bool {
	return errors.Is(err, unix.EINTR)
}

// Advise tells the kernel that [offset, offset+length) of f will be read
// sequentially. It is a hint; failures are ignored.
func Advise(f *os.File, offset, length int64) {
	if length <= 0 {
		return
	}
	_ = unix.Fadvise(int(f.Fd()), offset, length, unix.FADV_SEQUENTIAL)
	_ = unix.Fadvise(int(f.Fd()), offset, length, unix.FADV_WILLNEED)
}
