package bytesort

import (
	"bufio"
	"encoding/hex"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/zeebo/blake3"
	"github.com/zeebo/xxh3"

	"bytesort/internal/fsio"
	"bytesort/pqueue"
)

// rewriter produces the destination file: the header copied verbatim, then
// the drained payload.
type rewriter struct {
	path   string
	f      *os.File
	w      *bufio.Writer
	digest *blake3.Hasher
	closed bool
}

func createDest(path string, bufSize int) (*rewriter, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fsio.Wrap("create", path, err)
	}
	digest := blake3.New()
	return &rewriter{
		path:   path,
		f:      f,
		w:      bufio.NewWriterSize(io.MultiWriter(f, digest), bufSize),
		digest: digest,
	}, nil
}

// copyHeader copies the first n bytes of src and returns their xxh3 checksum.
func (rw *rewriter) copyHeader(src io.Reader, srcPath string, n int64) (uint64, error) {
	sum := xxh3.New()
	copied, err := io.CopyN(io.MultiWriter(rw.w, sum), src, n)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, fsio.Wrap("read", srcPath, errors.Errorf("header truncated after %d of %d bytes", copied, n))
		}
		return 0, fsio.Wrap("copy header", rw.path, err)
	}
	return sum.Sum64(), nil
}

// drain writes every queued byte in priority order and returns the count.
func (rw *rewriter) drain(q *pqueue.Queue[byte]) (int64, error) {
	var written int64
	err := q.Drain(func(b byte) error {
		if err := rw.w.WriteByte(b); err != nil {
			return fsio.Wrap("write", rw.path, err)
		}
		written++
		return nil
	})
	return written, err
}

// finish flushes and closes the destination and returns the hex BLAKE3
// digest of everything written.
func (rw *rewriter) finish() (string, error) {
	if err := rw.w.Flush(); err != nil {
		rw.abort()
		return "", fsio.Wrap("write", rw.path, err)
	}
	rw.closed = true
	if err := rw.f.Close(); err != nil {
		return "", fsio.Wrap("close", rw.path, err)
	}
	return hex.EncodeToString(rw.digest.Sum(nil)), nil
}

// abort releases the destination handle, leaving partial content behind.
func (rw *rewriter) abort() {
	if rw.closed {
		return
	}
	rw.closed = true
	_ = rw.f.Close()
}
