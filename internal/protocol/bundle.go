package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/udisondev/gserver/internal/constants"
)

var (
	// ErrFraming marks a malformed or truncated bundle. Fatal to the connection.
	ErrFraming = errors.New("bundle framing error")

	// ErrBundleTooLarge is returned when a bundle exceeds the allowed length.
	ErrBundleTooLarge = errors.New("bundle too large")
)

// ReadBundle reads one bundle (big-endian u16 length + payload) from r.
// The declared length is checked against maxLen before anything is allocated;
// buf is reused when it is large enough. The returned slice aliases buf.
func ReadBundle(r io.Reader, maxLen int, buf []byte) ([]byte, error) {
	var header [constants.BundleHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated header", ErrFraming)
		}
		return nil, err
	}

	n := int(binary.BigEndian.Uint16(header[:]))
	if n > maxLen {
		return nil, fmt.Errorf("%w: declared %d bytes, limit %d", ErrBundleTooLarge, n, maxLen)
	}

	if cap(buf) < n {
		buf = make([]byte, n)
	}
	payload := buf[:n]
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: truncated payload (%d bytes declared)", ErrFraming, n)
		}
		return nil, fmt.Errorf("reading bundle payload: %w", err)
	}
	return payload, nil
}

// AppendBundle frames payload with its length header.
func AppendBundle(dst, payload []byte) ([]byte, error) {
	if len(payload) > constants.MaxBundleSize {
		return dst, fmt.Errorf("%w: %d bytes", ErrBundleTooLarge, len(payload))
	}
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(payload)))
	return append(dst, payload...), nil
}

// WriteBundle frames payload and writes it to w in a single Write call.
func WriteBundle(w io.Writer, payload []byte) error {
	frame, err := AppendBundle(make([]byte, 0, constants.BundleHeaderSize+len(payload)), payload)
	if err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("writing bundle: %w", err)
	}
	return nil
}
