// Package lib contains the core, reusable services for the nitro application.
package lib

import (
	"encoding/binary"
	"io"
	"math"
	"unicode/utf8"
)

// Source is a little-endian cursor over a seekable byte stream. It is not
// safe for concurrent use; a Filesystem owns its Source for the whole parse.
type Source struct {
	r  io.ReadSeeker
	at io.ReaderAt
}

// NewSource wraps r. If r also implements io.ReaderAt, absolute reads use it
// and never touch the cursor.
func NewSource(r io.ReadSeeker) *Source {
	s := &Source{r: r}
	if at, ok := r.(io.ReaderAt); ok {
		s.at = at
	}
	return s
}

func (s *Source) read(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(s.r, buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, ioError("read", err)
	}
	return buf, nil
}

// ReadU8 reads one byte.
func (s *Source) ReadU8() (uint8, error) {
	b, err := s.read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadI8 reads one signed byte.
func (s *Source) ReadI8() (int8, error) {
	v, err := s.ReadU8()
	return int8(v), err
}

// ReadU16 reads a little-endian uint16.
func (s *Source) ReadU16() (uint16, error) {
	b, err := s.read(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadI16 reads a little-endian int16.
func (s *Source) ReadI16() (int16, error) {
	v, err := s.ReadU16()
	return int16(v), err
}

// ReadU32 reads a little-endian uint32.
func (s *Source) ReadU32() (uint32, error) {
	b, err := s.read(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadI32 reads a little-endian int32.
func (s *Source) ReadI32() (int32, error) {
	v, err := s.ReadU32()
	return int32(v), err
}

// ReadU64 reads a little-endian uint64.
func (s *Source) ReadU64() (uint64, error) {
	b, err := s.read(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadI64 reads a little-endian int64.
func (s *Source) ReadI64() (int64, error) {
	v, err := s.ReadU64()
	return int64(v), err
}

// ReadF32 reads a little-endian IEEE 754 float32.
func (s *Source) ReadF32() (float32, error) {
	v, err := s.ReadU32()
	return math.Float32frombits(v), err
}

// ReadF64 reads a little-endian IEEE 754 float64.
func (s *Source) ReadF64() (float64, error) {
	v, err := s.ReadU64()
	return math.Float64frombits(v), err
}

// ReadString reads n bytes and returns them as a string. Bytes that are not
// valid UTF-8 are reported as ErrMalformed.
func (s *Source) ReadString(n int) (string, error) {
	b, err := s.read(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", malformed("name %q is not valid UTF-8", b)
	}
	return string(b), nil
}

// Skip discards n bytes by moving the cursor forward.
func (s *Source) Skip(n int64) error {
	if _, err := s.r.Seek(n, io.SeekCurrent); err != nil {
		return ioError("skip", err)
	}
	return nil
}

// Seek moves the cursor to the absolute offset off.
func (s *Source) Seek(off int64) error {
	if _, err := s.r.Seek(off, io.SeekStart); err != nil {
		return ioError("seek", err)
	}
	return nil
}

// Position returns the absolute offset of the cursor.
func (s *Source) Position() (int64, error) {
	pos, err := s.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, ioError("position", err)
	}
	return pos, nil
}

// readAt fills n bytes from the absolute offset off. The cursor is left where
// it was.
func (s *Source) readAt(n int, off int64) ([]byte, error) {
	buf := make([]byte, n)
	if s.at != nil {
		// ReadAt may report io.EOF alongside a full buffer.
		if got, err := s.at.ReadAt(buf, off); err != nil && got < n {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, ioError("read", err)
		}
		return buf, nil
	}

	pos, err := s.Position()
	if err != nil {
		return nil, err
	}
	if err := s.Seek(off); err != nil {
		return nil, err
	}
	buf, err = s.read(n)
	if err != nil {
		return nil, err
	}
	return buf, s.Seek(pos)
}

// ReadU8At reads one byte at off without moving the cursor.
func (s *Source) ReadU8At(off int64) (uint8, error) {
	b, err := s.readAt(1, off)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16At reads a little-endian uint16 at off without moving the cursor.
func (s *Source) ReadU16At(off int64) (uint16, error) {
	b, err := s.readAt(2, off)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32At reads a little-endian uint32 at off without moving the cursor.
func (s *Source) ReadU32At(off int64) (uint32, error) {
	b, err := s.readAt(4, off)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadU64At reads a little-endian uint64 at off without moving the cursor.
func (s *Source) ReadU64At(off int64) (uint64, error) {
	b, err := s.readAt(8, off)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadStringAt reads an n-byte UTF-8 string at off without moving the cursor.
func (s *Source) ReadStringAt(n int, off int64) (string, error) {
	b, err := s.readAt(n, off)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", malformed("name %q is not valid UTF-8", b)
	}
	return string(b), nil
}

// ReaderAt exposes the cursor-independent view of the source, if the wrapped
// reader has one.
func (s *Source) ReaderAt() (io.ReaderAt, bool) {
	return s.at, s.at != nil
}
