package crypto

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/zlib"

	"github.com/udisondev/gserver/internal/constants"
)

// ErrDecompress is returned when a bundle cannot be decompressed (or its compression tag
// is unknown).
var ErrDecompress = errors.New("decompression failed")

// Compression is the tag byte generation 5 prepends to every bundle.
type Compression byte

const (
	CompressionNone  Compression = 0x02
	CompressionZlib  Compression = 0x04
	CompressionBzip2 Compression = 0x06
)

// Size thresholds for generation 5.
const (
	uncompressedMaxLen = 55
	zlibMaxLen         = 0x2000
)

// Encryption limits in 4-byte blocks.
const (
	limitUncompressed = 0x0C
	limitCompressed   = 0x04
)

// selectCompression picks the generation 5 compression for a payload of n bytes.
func selectCompression(n int) Compression {
	switch {
	case n <= uncompressedMaxLen:
		return CompressionNone
	case n <= zlibMaxLen:
		return CompressionZlib
	default:
		return CompressionBzip2
	}
}

// limit returns how many 4-byte blocks are encrypted behind this tag.
func (c Compression) limit() int {
	if c == CompressionNone {
		return limitUncompressed
	}
	return limitCompressed
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZlib:
		return "zlib"
	case CompressionBzip2:
		return "bzip2"
	default:
		return fmt.Sprintf("unknown(0x%02X)", byte(c))
	}
}

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("zlib write: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zlib close: %w", err)
	}
	return buf.Bytes(), nil
}

func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: zlib header: %v", ErrDecompress, err)
	}
	defer zr.Close()
	return readBounded(zr, "zlib")
}

func bzip(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	bw, err := bzip2.NewWriter(&buf, &bzip2.WriterConfig{Level: bzip2.DefaultCompression})
	if err != nil {
		return nil, fmt.Errorf("bzip2 writer: %w", err)
	}
	if _, err := bw.Write(data); err != nil {
		return nil, fmt.Errorf("bzip2 write: %w", err)
	}
	if err := bw.Close(); err != nil {
		return nil, fmt.Errorf("bzip2 close: %w", err)
	}
	return buf.Bytes(), nil
}

func bunzip(data []byte) ([]byte, error) {
	br, err := bzip2.NewReader(bytes.NewReader(data), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: bzip2 reader: %v", ErrDecompress, err)
	}
	defer br.Close()
	return readBounded(br, "bzip2")
}

// readBounded caps the inflated size so a tiny bundle cannot expand without limit.
func readBounded(r io.Reader, kind string) ([]byte, error) {
	out, err := io.ReadAll(io.LimitReader(r, constants.MaxDecompressedSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecompress, kind, err)
	}
	if len(out) > constants.MaxDecompressedSize {
		return nil, fmt.Errorf("%w: %s output exceeds %d bytes", ErrDecompress, kind, constants.MaxDecompressedSize)
	}
	return out, nil
}
