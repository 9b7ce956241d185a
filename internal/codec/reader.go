package codec

import (
	"bytes"
	"fmt"
)

// Reader walks a message payload field by field.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a new payload reader.
func NewReader(data []byte) *Reader {
	return &Reader{
		data: data,
		pos:  0,
	}
}

func (r *Reader) rest() []byte {
	return r.data[r.pos:]
}

// ReadGChar reads a GChar.
func (r *Reader) ReadGChar() (int, error) {
	v, err := DecodeGChar(r.rest())
	if err != nil {
		return 0, err
	}
	r.pos += SizeGChar
	return v, nil
}

// ReadGUChar reads a single byte as an unsigned GChar.
func (r *Reader) ReadGUChar() (int, error) {
	v, err := DecodeGUChar(r.rest())
	if err != nil {
		return 0, err
	}
	r.pos += SizeGChar
	return v, nil
}

// ReadGShort reads a GShort.
func (r *Reader) ReadGShort() (int, error) {
	v, err := DecodeGShort(r.rest())
	if err != nil {
		return 0, err
	}
	r.pos += SizeGShort
	return v, nil
}

// ReadGInt reads a GInt.
func (r *Reader) ReadGInt() (int, error) {
	v, err := DecodeGInt(r.rest())
	if err != nil {
		return 0, err
	}
	r.pos += SizeGInt
	return v, nil
}

// ReadGInt4 reads a GInt4.
func (r *Reader) ReadGInt4() (int, error) {
	v, err := DecodeGInt4(r.rest())
	if err != nil {
		return 0, err
	}
	r.pos += SizeGInt4
	return v, nil
}

// ReadGUInt5 reads a GUInt5.
func (r *Reader) ReadGUInt5() (uint32, error) {
	v, err := DecodeGUInt5(r.rest())
	if err != nil {
		return 0, err
	}
	r.pos += SizeGUInt5
	return v, nil
}

// ReadGString reads a GChar-prefixed string.
func (r *Reader) ReadGString() (string, error) {
	s, n, err := DecodeGString(r.rest())
	if err != nil {
		return "", err
	}
	r.pos += n
	return s, nil
}

// ReadGUString reads a string whose length byte is decoded as an unsigned GChar.
func (r *Reader) ReadGUString() (string, error) {
	n, err := r.ReadGUChar()
	if err != nil {
		return "", fmt.Errorf("ReadGUString: %w", err)
	}
	b, err := r.ReadBytes(n)
	if err != nil {
		return "", fmt.Errorf("ReadGUString: %w", err)
	}
	return string(b), nil
}

// ReadBytes reads n raw bytes (zero-copy, the slice aliases the payload).
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("ReadBytes: negative count %d", n)
	}
	if r.pos+n > len(r.data) {
		return nil, fmt.Errorf("ReadBytes: %w (pos=%d, need=%d, len=%d)", ErrShortBuffer, r.pos, n, len(r.data))
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadCString reads up to the next NUL byte, or to the end of the payload when there is
// none. The terminator is consumed.
func (r *Reader) ReadCString() string {
	rest := r.rest()
	if i := bytes.IndexByte(rest, 0); i >= 0 {
		r.pos += i + 1
		return string(rest[:i])
	}
	r.pos = len(r.data)
	return string(rest)
}

// ReadRest returns every unread byte.
func (r *Reader) ReadRest() []byte {
	b := r.rest()
	r.pos = len(r.data)
	return b
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Position returns the current read position.
func (r *Reader) Position() int {
	return r.pos
}
