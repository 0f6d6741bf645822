// Package bitmap locates the payload region of a bitmap-style image file.
// Only the fixed 14-byte file header is interpreted.
package bitmap

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"

	"bytesort/internal/fsio"
)

// FileHeaderSize is the size of the fixed file header.
const FileHeaderSize = 14

var (
	// ErrShortHeader indicates the source is too small to hold a file header.
	ErrShortHeader = errors.New("bitmap: file shorter than header")

	// ErrOffsetOutOfRange indicates the payload offset points past end of file.
	ErrOffsetOutOfRange = errors.New("bitmap: payload offset beyond end of file")
)

// FileHeader mirrors the little-endian on-disk file header. DataOffset sits
// at bytes 10..13.
type FileHeader struct {
	Signature  [2]byte
	FileSize   uint32
	Reserved1  uint16
	Reserved2  uint16
	DataOffset uint32
}

// Layout describes where the payload of a source file lives.
type Layout struct {
	Header FileHeader
	// Offset is the first payload byte; [0, Offset) is copied verbatim.
	Offset int64
	// Size is the payload length, Offset to end of file.
	Size int64
}

// ParseHeader decodes a file header from the first FileHeaderSize bytes of b.
func ParseHeader(b []byte) (FileHeader, error) {
	var h FileHeader
	if len(b) < FileHeaderSize {
		return h, ErrShortHeader
	}
	if err := binary.Read(bytes.NewReader(b[:FileHeaderSize]), binary.LittleEndian, &h); err != nil {
		return h, errors.Wrap(err, "decode file header")
	}
	return h, nil
}

// Inspect reads the header of the file at path and computes its payload layout.
func Inspect(path string) (Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return Layout{}, fsio.Wrap("open", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Layout{}, fsio.Wrap("stat", path, err)
	}
	return ReadLayout(f, info.Size())
}

// ReadLayout reads the header from r, a source of total length size.
func ReadLayout(r io.Reader, size int64) (Layout, error) {
	buf := make([]byte, FileHeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Layout{}, ErrShortHeader
		}
		return Layout{}, errors.Wrap(err, "read file header")
	}
	h, err := ParseHeader(buf)
	if err != nil {
		return Layout{}, err
	}
	offset := int64(h.DataOffset)
	if offset > size {
		return Layout{}, errors.Wrapf(ErrOffsetOutOfRange, "offset %d, file size %d", offset, size)
	}
	return Layout{Header: h, Offset: offset, Size: size - offset}, nil
}

// NewHeader builds a header for a file with the given payload offset and
// total size. Used to synthesize sources.
func NewHeader(offset, size uint32) []byte {
	h := FileHeader{
		Signature:  [2]byte{'B', 'M'},
		FileSize:   size,
		DataOffset: offset,
	}
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, h)
	return buf.Bytes()
}
