package fsio

import (
	"io"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyReader fails with EINTR before every successful byte.
type flakyReader struct {
	data        []byte
	interrupted bool
}

func (r *flakyReader) ReadByte() (byte, error) {
	if !r.interrupted {
		r.interrupted = true
		return 0, &os.PathError{Op: "read", Path: "flaky", Err: syscall.EINTR}
	}
	r.interrupted = false
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	b := r.data[0]
	r.data = r.data[1:]
	return b, nil
}

func TestReadByteRetriesInterrupted(t *testing.T) {
	r := &flakyReader{data: []byte{7, 8}}
	var got []byte
	for {
		b, err := ReadByte(r)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, b)
	}
	assert.Equal(t, []byte{7, 8}, got)
}

type failingReader struct{ err error }

func (r failingReader) ReadByte() (byte, error) { return 0, r.err }

func TestReadBytePassesOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := ReadByte(failingReader{err: boom})
	require.ErrorIs(t, err, boom)
}

func TestIsInterrupted(t *testing.T) {
	assert.True(t, IsInterrupted(syscall.EINTR))
	assert.True(t, IsInterrupted(errors.Wrap(syscall.EINTR, "read")))
	assert.False(t, IsInterrupted(io.EOF))
	assert.False(t, IsInterrupted(nil))
}

func TestIOError(t *testing.T) {
	assert.Nil(t, Wrap("read", "x", nil))

	err := Wrap("write", "/tmp/out", io.ErrShortWrite)
	require.Error(t, err)
	assert.True(t, IsIOError(err))
	assert.True(t, IsIOError(errors.Wrap(err, "drain")))
	assert.ErrorIs(t, err, io.ErrShortWrite)
	assert.Equal(t, "write /tmp/out: short write", err.Error())
	assert.False(t, IsIOError(io.EOF))
}

func TestOpenAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "src.bin")
	require.NoError(t, os.WriteFile(path, []byte("abcdef"), 0o644))

	f, err := OpenAt(path, 3)
	require.NoError(t, err)
	defer f.Close()
	Advise(f, 3, 3)

	rest, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "def", string(rest))

	_, err = OpenAt(filepath.Join(t.TempDir(), "missing"), 0)
	require.Error(t, err)
	assert.True(t, IsIOError(err))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
