package bytesort

import (
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"bytesort/internal/scan"
	"bytesort/pqueue"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("bytesort: invalid config")

// Config names the files and the worker count for one run.
type Config struct {
	// Workers is the number of scan workers, at least 1.
	Workers int
	// Source is the file to read.
	Source string
	// Dest is created or truncated and receives header plus sorted payload.
	Dest string
	// Order defaults to pqueue.Ascending.
	Order pqueue.Order
}

// DefaultConfig returns a config using one worker per CPU.
func DefaultConfig(source, dest string) Config {
	return Config{
		Workers: runtime.NumCPU(),
		Source:  source,
		Dest:    dest,
		Order:   pqueue.Ascending,
	}
}

// Validate checks the config before any file is touched.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return errors.Wrapf(ErrInvalidConfig, "worker count %d < 1", c.Workers)
	}
	if c.Source == "" {
		return errors.Wrap(ErrInvalidConfig, "empty source path")
	}
	if c.Dest == "" {
		return errors.Wrap(ErrInvalidConfig, "empty destination path")
	}
	if filepath.Clean(c.Source) == filepath.Clean(c.Dest) {
		return errors.Wrapf(ErrInvalidConfig, "source and destination are both %s", c.Source)
	}
	if c.Order != pqueue.Ascending && c.Order != pqueue.Descending {
		return errors.Wrapf(ErrInvalidConfig, "unknown order %d", c.Order)
	}
	return nil
}

// Options holds ambient settings that do not change the output.
type Options struct {
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// BufferSize is the per-worker read buffer and the writer buffer.
	BufferSize int
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.BufferSize <= 0 {
		o.BufferSize = scan.DefaultBufferSize
	}
	return o
}
