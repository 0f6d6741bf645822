// Package bytesort rewrites a bitmap-style image so that its payload bytes
// appear in sorted order after the untouched header.
//
// The payload is split into one contiguous partition per worker. Workers read
// their partitions through independent file handles and feed each byte into
// a shared AVL-backed priority queue. Once every worker has returned, the
// header is copied and the queue is drained into the destination.
package bytesort

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"bytesort/internal/bitmap"
	"bytesort/internal/fsio"
	"bytesort/internal/scan"
	"bytesort/pqueue"
)

// ErrEmptyStructure is returned when a value is requested from an empty queue.
var ErrEmptyStructure = pqueue.ErrEmpty

// Run sorts the payload of cfg.Source into cfg.Dest.
//
// Both files are opened before any worker starts. On a fatal error the
// destination is left incomplete.
func Run(ctx context.Context, cfg Config, opts Options) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	log := opts.Logger.With(zap.String("source", cfg.Source), zap.String("dest", cfg.Dest))
	start := time.Now()

	layout, err := bitmap.Inspect(cfg.Source)
	if err != nil {
		return nil, errors.Wrap(err, "inspect source")
	}
	src, err := os.Open(cfg.Source)
	if err != nil {
		return nil, fsio.Wrap("open", cfg.Source, err)
	}
	defer src.Close()

	out, err := createDest(cfg.Dest, opts.BufferSize)
	if err != nil {
		return nil, err
	}
	defer out.abort()

	parts, err := scan.Split(cfg.Source, layout.Offset, layout.Size, cfg.Workers)
	if err != nil {
		return nil, err
	}

	q := pqueue.New[byte](cfg.Order)
	scanner := scan.New(q, scan.Options{Logger: opts.Logger, BufferSize: opts.BufferSize})
	stats, err := scanner.Run(ctx, parts)
	if err != nil {
		q.Clear()
		return nil, errors.Wrap(err, "scan payload")
	}

	headerSum, err := out.copyHeader(src, cfg.Source, layout.Offset)
	if err != nil {
		return nil, err
	}
	written, err := out.drain(q)
	if err != nil {
		return nil, errors.Wrap(err, "drain payload")
	}
	digest, err := out.finish()
	if err != nil {
		return nil, err
	}

	report := &Report{
		Source:       cfg.Source,
		Dest:         cfg.Dest,
		Workers:      cfg.Workers,
		Order:        cfg.Order.String(),
		HeaderBytes:  layout.Offset,
		PayloadBytes: written,
		Partitions:   partitionStats(stats),
		HeaderXXH3:   headerSum,
		OutputBLAKE3: digest,
		Elapsed:      time.Since(start),
	}
	log.Info("payload sorted",
		zap.Int("workers", cfg.Workers),
		zap.Stringer("order", cfg.Order),
		zap.Int64("header_bytes", layout.Offset),
		zap.Int64("payload_bytes", written),
		zap.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}
