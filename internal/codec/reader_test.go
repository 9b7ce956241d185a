package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_Sequence(t *testing.T) {
	w := NewWriter(32)
	w.WriteGChar(7).
		WriteGShort(1234).
		WriteGInt(99999).
		WriteGInt4(1 << 24).
		WriteGUInt5(0xDEADBEEF).
		WriteGString("nick").
		WriteString("rest")

	r := NewReader(w.Bytes())

	c, err := r.ReadGChar()
	require.NoError(t, err)
	assert.Equal(t, 7, c)

	s, err := r.ReadGShort()
	require.NoError(t, err)
	assert.Equal(t, 1234, s)

	i, err := r.ReadGInt()
	require.NoError(t, err)
	assert.Equal(t, 99999, i)

	i4, err := r.ReadGInt4()
	require.NoError(t, err)
	assert.Equal(t, 1<<24, i4)

	u5, err := r.ReadGUInt5()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), u5)

	str, err := r.ReadGString()
	require.NoError(t, err)
	assert.Equal(t, "nick", str)

	assert.Equal(t, "rest", string(r.ReadRest()))
	assert.Equal(t, 0, r.Remaining())
}

func TestReader_ShortBufferDoesNotAdvance(t *testing.T) {
	r := NewReader([]byte{40})
	_, err := r.ReadGShort()
	require.ErrorIs(t, err, ErrShortBuffer)
	assert.Equal(t, 0, r.Position())
}

func TestReader_ReadCString(t *testing.T) {
	r := NewReader([]byte("abc\x00def"))
	assert.Equal(t, "abc", r.ReadCString())
	assert.Equal(t, "def", r.ReadCString())
	assert.Equal(t, 0, r.Remaining())
}

func TestReader_ReadGUString(t *testing.T) {
	r := NewReader(append([]byte{32 + 3}, "bob"...))
	s, err := r.ReadGUString()
	require.NoError(t, err)
	assert.Equal(t, "bob", s)

	// a length byte below 32 wraps to a huge unsigned length
	r = NewReader([]byte{0x10, 'x'})
	_, err = r.ReadGUString()
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestReader_ReadBytesNegative(t *testing.T) {
	r := NewReader([]byte{1, 2})
	_, err := r.ReadBytes(-1)
	assert.Error(t, err)
}
