package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFrame_Layout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, "a.png", []byte{0xde, 0xad}))

	want := []byte{0, 0, 0, 5, 'a', '.', 'p', 'n', 'g', 0, 0, 0, 0, 0, 0, 0, 2, 0xde, 0xad}
	assert.Equal(t, want, buf.Bytes())
}

func TestReadFrame(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, "share_1.png", []byte("payload")))

	h, payload, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, "share_1.png", h.Name)
	assert.Equal(t, uint64(7), h.Size)
	assert.Equal(t, []byte("payload"), payload)
}

func TestReadFrame_ZeroPayload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, "empty.bin", nil))

	h, payload, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, "empty.bin", h.Name)
	assert.Zero(t, h.Size)
	assert.Empty(t, payload)
}

func TestReadHeader_Truncated(t *testing.T) {
	var full bytes.Buffer
	require.NoError(t, WriteHeader(&full, Header{Name: "abc", Size: 10}))
	raw := full.Bytes()

	for _, cut := range []int{0, 2, 4, 6, 7, len(raw) - 1} {
		_, err := ReadHeader(bytes.NewReader(raw[:cut]))
		assert.ErrorIs(t, err, ErrProtocolViolation, "cut at %d", cut)
	}
}

func TestReadHeader_NameTooLong(t *testing.T) {
	var raw [4]byte
	binary.BigEndian.PutUint32(raw[:], MaxNameLen+1)
	_, err := ReadHeader(bytes.NewReader(raw[:]))
	require.ErrorIs(t, err, ErrProtocolViolation)
}

func TestCopyPayload_Short(t *testing.T) {
	var dst bytes.Buffer
	n, err := CopyPayload(&dst, bytes.NewReader([]byte("abc")), 10)
	require.ErrorIs(t, err, ErrProtocolViolation)
	assert.Equal(t, int64(3), n)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("reset by peer") }

func TestCopyPayload_ReaderError(t *testing.T) {
	_, err := CopyPayload(io.Discard, failingReader{}, 4)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrProtocolViolation)
}
