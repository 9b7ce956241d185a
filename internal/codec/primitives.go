// Package codec implements the +32 offset primitives every Graal message field is built from.
//
// All integers are big-endian at the conceptual level: the first byte carries the most
// significant chunk, every following byte carries 7 bits. Each byte on the wire is
// chunk+32 (mod 256), decoding subtracts 32. Encoders clamp out-of-range input instead
// of failing; decoders only fail when the buffer is too short.
package codec

import (
	"errors"
	"fmt"
)

// ErrShortBuffer is returned when a field needs more bytes than remain.
var ErrShortBuffer = errors.New("not enough data")

// Clamp limits of the encoders. The high byte of the maximum wraps to 0x00 on the wire,
// which is why GShort tops out at 28767 rather than 16383.
const (
	MaxGChar   = 223
	MaxGShort  = 28767
	MaxGInt    = 3682399
	MaxGInt4   = 471347295
	MaxGString = 191
)

// Encoded sizes.
const (
	SizeGChar  = 1
	SizeGShort = 2
	SizeGInt   = 3
	SizeGInt4  = 4
	SizeGUInt5 = 5
)

func clamp(v, hi int) int {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}

// chunk undoes the +32 offset with 8-bit wraparound.
func chunk(b byte) int {
	return int(b - 32)
}

// AppendGChar appends a single-byte value in [0, 223].
func AppendGChar(dst []byte, v int) []byte {
	return append(dst, byte(clamp(v, MaxGChar)+32))
}

// DecodeGChar decodes one GChar. Bytes below 32 decode to negative values.
func DecodeGChar(b []byte) (int, error) {
	if len(b) < SizeGChar {
		return 0, fmt.Errorf("DecodeGChar: %w (need=%d, len=%d)", ErrShortBuffer, SizeGChar, len(b))
	}
	return int(b[0]) - 32, nil
}

// DecodeGUChar decodes one byte as an unsigned length: the subtraction wraps instead of
// going negative.
func DecodeGUChar(b []byte) (int, error) {
	if len(b) < SizeGChar {
		return 0, fmt.Errorf("DecodeGUChar: %w (need=%d, len=%d)", ErrShortBuffer, SizeGChar, len(b))
	}
	return chunk(b[0]), nil
}

// AppendGShort appends a 2-byte value clamped to [0, MaxGShort].
func AppendGShort(dst []byte, v int) []byte {
	v = clamp(v, MaxGShort)
	return append(dst,
		byte((v>>7)+32),
		byte((v&0x7F)+32),
	)
}

// DecodeGShort decodes a 2-byte value.
func DecodeGShort(b []byte) (int, error) {
	if len(b) < SizeGShort {
		return 0, fmt.Errorf("DecodeGShort: %w (need=%d, len=%d)", ErrShortBuffer, SizeGShort, len(b))
	}
	return chunk(b[0])<<7 + chunk(b[1]), nil
}

// AppendGInt appends a 3-byte value clamped to [0, MaxGInt].
func AppendGInt(dst []byte, v int) []byte {
	v = clamp(v, MaxGInt)
	return append(dst,
		byte((v>>14)+32),
		byte(((v>>7)&0x7F)+32),
		byte((v&0x7F)+32),
	)
}

// DecodeGInt decodes a 3-byte value.
func DecodeGInt(b []byte) (int, error) {
	if len(b) < SizeGInt {
		return 0, fmt.Errorf("DecodeGInt: %w (need=%d, len=%d)", ErrShortBuffer, SizeGInt, len(b))
	}
	return (chunk(b[0])<<7+chunk(b[1]))<<7 + chunk(b[2]), nil
}

// AppendGInt4 appends a 4-byte value clamped to [0, MaxGInt4].
func AppendGInt4(dst []byte, v int) []byte {
	v = clamp(v, MaxGInt4)
	return append(dst,
		byte((v>>21)+32),
		byte(((v>>14)&0x7F)+32),
		byte(((v>>7)&0x7F)+32),
		byte((v&0x7F)+32),
	)
}

// DecodeGInt4 decodes a 4-byte value.
func DecodeGInt4(b []byte) (int, error) {
	if len(b) < SizeGInt4 {
		return 0, fmt.Errorf("DecodeGInt4: %w (need=%d, len=%d)", ErrShortBuffer, SizeGInt4, len(b))
	}
	v := chunk(b[0])
	for _, c := range b[1:SizeGInt4] {
		v = v<<7 + chunk(c)
	}
	return v, nil
}

// AppendGUInt5 appends a full 32-bit unsigned value. The first byte carries the top 4 bits.
func AppendGUInt5(dst []byte, v uint32) []byte {
	return append(dst,
		byte(((v>>28)&0x0F)+32),
		byte(((v>>21)&0x7F)+32),
		byte(((v>>14)&0x7F)+32),
		byte(((v>>7)&0x7F)+32),
		byte((v&0x7F)+32),
	)
}

// DecodeGUInt5 decodes a 5-byte unsigned value.
func DecodeGUInt5(b []byte) (uint32, error) {
	if len(b) < SizeGUInt5 {
		return 0, fmt.Errorf("DecodeGUInt5: %w (need=%d, len=%d)", ErrShortBuffer, SizeGUInt5, len(b))
	}
	v := uint32(b[0]-32) & 0x0F
	for _, c := range b[1:SizeGUInt5] {
		v = v<<7 | uint32(c-32)&0x7F
	}
	return v, nil
}

// AppendGString appends a GChar length followed by the raw bytes. Strings longer than
// MaxGString are truncated.
func AppendGString(dst []byte, s string) []byte {
	if len(s) > MaxGString {
		s = s[:MaxGString]
	}
	dst = AppendGChar(dst, len(s))
	return append(dst, s...)
}

// DecodeGString decodes a length-prefixed string and returns it with the number of bytes
// consumed. A negative length yields an empty string (only the prefix is consumed).
func DecodeGString(b []byte) (string, int, error) {
	n, err := DecodeGChar(b)
	if err != nil {
		return "", 0, fmt.Errorf("DecodeGString: %w", err)
	}
	if n <= 0 {
		return "", SizeGChar, nil
	}
	if len(b) < SizeGChar+n {
		return "", 0, fmt.Errorf("DecodeGString: %w (need=%d, len=%d)", ErrShortBuffer, SizeGChar+n, len(b))
	}
	return string(b[SizeGChar : SizeGChar+n]), SizeGChar + n, nil
}
