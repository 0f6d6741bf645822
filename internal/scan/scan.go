// Package scan feeds the bytes of a file region into a shared sink using a
// fixed pool of workers, one per partition.
package scan

import (
	"bufio"
	"context"
	"io"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bytesort/internal/fsio"
)

// DefaultBufferSize is the per-worker read buffer.
const DefaultBufferSize = 32 * 1024

// cancelCheckInterval is how many bytes a worker reads between checks for a
// failed sibling.
const cancelCheckInterval = 4096

// Sink receives scanned bytes. Implementations must be safe for concurrent use.
type Sink interface {
	Enqueue(byte)
}

// OpenFunc returns an independent reader positioned at offset.
type OpenFunc func(path string, offset, quota int64) (io.ReadCloser, error)

// Options configures a Scanner.
type Options struct {
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// BufferSize defaults to DefaultBufferSize.
	BufferSize int
	// Open defaults to opening the file read-only at the partition offset.
	Open OpenFunc
}

// Stat records what one worker read.
type Stat struct {
	Partition
	// Read is less than Quota when the source ended early.
	Read int64
}

// Scanner runs the worker pool.
type Scanner struct {
	sink    Sink
	logger  *zap.Logger
	bufSize int
	open    OpenFunc
}

// New returns a Scanner that enqueues into sink.
func New(sink Sink, opts Options) *Scanner {
	s := &Scanner{
		sink:    sink,
		logger:  opts.Logger,
		bufSize: opts.BufferSize,
		open:    opts.Open,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.bufSize <= 0 {
		s.bufSize = DefaultBufferSize
	}
	if s.open == nil {
		s.open = openFile
	}
	return s
}

func openFile(path string, offset, quota int64) (io.ReadCloser, error) {
	f, err := fsio.OpenAt(path, offset)
	if err != nil {
		return nil, err
	}
	fsio.Advise(f, offset, quota)
	return f, nil
}

// Run starts one worker per partition and blocks until all of them have
// returned. The first fatal error stops the remaining workers and is returned.
func (s *Scanner) Run(ctx context.Context, parts []Partition) ([]Stat, error) {
	stats := make([]Stat, len(parts))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range parts {
		i, p := i, p // per-iteration copies (go directive is 1.21, pre-loopvar semantics)
		stats[i].Partition = p
		g.Go(func() error {
			n, err := s.work(gctx, p)
			stats[i].Read = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}
	return stats, nil
}

func (s *Scanner) work(ctx context.Context, p Partition) (int64, error) {
	log := s.logger.With(zap.Int("worker", p.Index), zap.Int64("offset", p.Offset), zap.Int64("quota", p.Quota))
	log.Debug("worker started")
	if p.Quota == 0 {
		log.Debug("worker finished", zap.Int64("read", 0))
		return 0, nil
	}

	rc, err := s.open(p.Path, p.Offset, p.Quota)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	r := bufio.NewReaderSize(io.LimitReader(rc, p.Quota), s.bufSize)
	var read int64
	for read < p.Quota {
		if read%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return read, err
			}
		}
		b, err := fsio.ReadByte(r)
		if err == io.EOF {
			log.Debug("source ended before quota", zap.Int64("read", read))
			break
		}
		if err != nil {
			return read, fsio.Wrap("read", p.Path, err)
		}
		s.sink.Enqueue(b)
		read++
	}
	log.Debug("worker finished", zap.Int64("read", read))
	return read, nil
}
