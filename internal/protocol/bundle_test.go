package protocol

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadBundle(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("bundle payload")
	require.NoError(t, WriteBundle(&buf, payload))

	wire := buf.Bytes()
	assert.Equal(t, []byte{0x00, byte(len(payload))}, wire[:2], "big-endian length")

	got, err := ReadBundle(&buf, 0xFFFF, nil)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestReadBundle_ReusesBuffer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBundle(&buf, []byte("abc")))

	scratch := make([]byte, 0, 64)
	got, err := ReadBundle(&buf, 0xFFFF, scratch)
	require.NoError(t, err)
	assert.Equal(t, &scratch[:1][0], &got[0])
}

func TestReadBundle_TooLarge(t *testing.T) {
	r := bytes.NewReader([]byte{0xFF, 0x00})
	_, err := ReadBundle(r, 0x1000, nil)
	assert.ErrorIs(t, err, ErrBundleTooLarge)
}

func TestReadBundle_Truncated(t *testing.T) {
	_, err := ReadBundle(bytes.NewReader([]byte{0x00}), 0xFFFF, nil)
	assert.ErrorIs(t, err, ErrFraming)

	_, err = ReadBundle(bytes.NewReader([]byte{0x00, 0x05, 'a'}), 0xFFFF, nil)
	assert.ErrorIs(t, err, ErrFraming)
}

func TestReadBundle_CleanEOF(t *testing.T) {
	_, err := ReadBundle(bytes.NewReader(nil), 0xFFFF, nil)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadBundle_Empty(t *testing.T) {
	got, err := ReadBundle(bytes.NewReader([]byte{0, 0}), 0xFFFF, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAppendBundle_TooLarge(t *testing.T) {
	_, err := AppendBundle(nil, make([]byte, 0x10000))
	assert.ErrorIs(t, err, ErrBundleTooLarge)
}
