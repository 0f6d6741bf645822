//go:build !linux

package fsio

import (
	"os"
	"syscall"

	"github.com/pkg/errors"
)

// IsInterrupted reports whether err is EINTR.
func IsInterrupted(err error) bool {
	return errors.Is(err, syscall.EINTR)
}

// Advise is a no-op on platforms without posix_fadvise.
func Advise(f *os.File, offset, length int64) {}
