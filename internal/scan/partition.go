package scan

import (
	"github.com/pkg/errors"
)

// Partition is one worker's contiguous byte range of the source.
type Partition struct {
	Index  int
	Path   string
	Offset int64
	Quota  int64
}

// End returns the offset one past the last byte of the partition.
func (p Partition) End() int64 {
	return p.Offset + p.Quota
}

// Split divides [offset, offset+size) into n contiguous partitions. Every
// partition but the last gets size/n bytes; the last absorbs the remainder.
func Split(path string, offset, size int64, n int) ([]Partition, error) {
	if n < 1 {
		return nil, errors.Errorf("scan: worker count %d < 1", n)
	}
	if size < 0 || offset < 0 {
		return nil, errors.Errorf("scan: negative range [%d, +%d)", offset, size)
	}
	quota := size / int64(n)
	parts := make([]Partition, n)
	for i := 0; i < n-1; i++ {
		parts[i] = Partition{
			Index:  i,
			Path:   path,
			Offset: offset + int64(i)*quota,
			Quota:  quota,
		}
	}
	parts[n-1] = Partition{
		Index:  n - 1,
		Path:   path,
		Offset: offset + int64(n-1)*quota,
		Quota:  size - int64(n-1)*quota,
	}
	return parts, nil
}
