package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/bft-labs/vcshare/internal/domain"
)

// MaxNameLen bounds the declared name length accepted by ReadHeader.
const MaxNameLen = 64 << 10

// ErrProtocolViolation is returned when a stream ends early or declares an
// unacceptable name length.
var ErrProtocolViolation = domain.ErrProtocolViolation

// Header is the name and payload size of one frame.
type Header = domain.Header

// WriteHeader writes the name and size prefix of a frame.
func WriteHeader(w io.Writer, h Header) error {
	if uint64(len(h.Name)) > math.MaxUint32 {
		return fmt.Errorf("name too long: %d bytes", len(h.Name))
	}
	buf := make([]byte, 4+len(h.Name)+8)
	binary.BigEndian.PutUint32(buf[:4], uint32(len(h.Name)))
	copy(buf[4:], h.Name)
	binary.BigEndian.PutUint64(buf[4+len(h.Name):], h.Size)
	_, err := w.Write(buf)
	return err
}

// ReadHeader reads a frame prefix with exact-length reads.
func ReadHeader(r io.Reader) (Header, error) {
	var lenBuf [4]byte
	if err := readFull(r, lenBuf[:], "name length"); err != nil {
		return Header{}, err
	}
	nameLen := binary.BigEndian.Uint32(lenBuf[:])
	if nameLen > MaxNameLen {
		return Header{}, fmt.Errorf("%w: name length %d exceeds %d", ErrProtocolViolation, nameLen, MaxNameLen)
	}

	name := make([]byte, nameLen)
	if err := readFull(r, name, "name"); err != nil {
		return Header{}, err
	}

	var sizeBuf [8]byte
	if err := readFull(r, sizeBuf[:], "payload length"); err != nil {
		return Header{}, err
	}
	return Header{Name: string(name), Size: binary.BigEndian.Uint64(sizeBuf[:])}, nil
}

// CopyPayload copies exactly size bytes from r to dst.
func CopyPayload(dst io.Writer, r io.Reader, size uint64) (int64, error) {
	if size > math.MaxInt64 {
		return 0, fmt.Errorf("%w: payload length %d", ErrProtocolViolation, size)
	}
	n, err := io.CopyN(dst, r, int64(size))
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return n, fmt.Errorf("%w: payload: got %d of %d bytes", ErrProtocolViolation, n, size)
		}
		return n, err
	}
	return n, nil
}

// WriteFrame writes a complete frame carrying payload.
func WriteFrame(w io.Writer, name string, payload []byte) error {
	if err := WriteHeader(w, Header{Name: name, Size: uint64(len(payload))}); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame reads a complete frame into memory.
func ReadFrame(r io.Reader) (Header, []byte, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return Header{}, nil, err
	}
	var payload sliceWriter
	if _, err := CopyPayload(&payload, r, h.Size); err != nil {
		return h, nil, err
	}
	return h, payload.b, nil
}

func readFull(r io.Reader, buf []byte, what string) error {
	n, err := io.ReadFull(r, buf)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s: got %d of %d bytes", ErrProtocolViolation, what, n, len(buf))
	}
	return err
}

type sliceWriter struct{ b []byte }

func (s *sliceWriter) Write(p []byte) (int, error) {
	s.b = append(s.b, p...)
	return len(p), nil
}
