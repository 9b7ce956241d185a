package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGChar_RoundTrip(t *testing.T) {
	for _, v := range []int{0, 1, 32, 95, 127, 200, MaxGChar} {
		got, err := DecodeGChar(AppendGChar(nil, v))
		require.NoError(t, err)
		assert.Equal(t, v, got, "value %d", v)
	}
}

func TestGChar_Clamp(t *testing.T) {
	assert.Equal(t, []byte{32}, AppendGChar(nil, -5))
	assert.Equal(t, []byte{255}, AppendGChar(nil, 1000))
}

func TestGChar_NegativeDecode(t *testing.T) {
	got, err := DecodeGChar([]byte{10})
	require.NoError(t, err)
	assert.Equal(t, -22, got)

	// unsigned variant wraps instead
	u, err := DecodeGUChar([]byte{10})
	require.NoError(t, err)
	assert.Equal(t, 234, u)
}

func TestGShort_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		v    int
	}{
		{"ноль", 0},
		{"one", 1},
		{"7-bit edge", 127},
		{"8-bit", 128},
		{"14-bit max", 16383},
		{"above 14 bits", 20000},
		{"boundary", MaxGShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := AppendGShort(nil, tt.v)
			require.Len(t, enc, SizeGShort)
			got, err := DecodeGShort(enc)
			require.NoError(t, err)
			assert.Equal(t, tt.v, got)
		})
	}
}

func TestGShort_Boundary28767Layout(t *testing.T) {
	// high chunk 224 wraps to 0x00 on the wire
	assert.Equal(t, []byte{0x00, 0x7F}, AppendGShort(nil, MaxGShort))
	assert.Equal(t, AppendGShort(nil, MaxGShort), AppendGShort(nil, MaxGShort+1))
	assert.Equal(t, []byte{32, 32}, AppendGShort(nil, -1))
}

func TestGInt_RoundTrip(t *testing.T) {
	for _, v := range []int{0, 1, 127, 128, 16383, 16384, 2097151, MaxGInt} {
		got, err := DecodeGInt(AppendGInt(nil, v))
		require.NoError(t, err)
		assert.Equal(t, v, got, "value %d", v)
	}
	got, err := DecodeGInt(AppendGInt(nil, MaxGInt+500))
	require.NoError(t, err)
	assert.Equal(t, MaxGInt, got)
}

func TestGInt4_RoundTrip(t *testing.T) {
	for _, v := range []int{0, 1, 8192, 1 << 21, 1<<28 - 1, MaxGInt4} {
		got, err := DecodeGInt4(AppendGInt4(nil, v))
		require.NoError(t, err)
		assert.Equal(t, v, got, "value %d", v)
	}
}

func TestGUInt5_RoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 0x7F, 0x80, 0x0FFFFFFF, 0x10000000, 0x89ABCDEF, 0xFFFFFFFF} {
		enc := AppendGUInt5(nil, v)
		require.Len(t, enc, SizeGUInt5)
		got, err := DecodeGUInt5(enc)
		require.NoError(t, err)
		assert.Equal(t, v, got, "value 0x%08X", v)
	}
}

func TestGUInt5_FirstByteCarriesFourBits(t *testing.T) {
	enc := AppendGUInt5(nil, 0xFFFFFFFF)
	assert.Equal(t, byte(0x0F+32), enc[0])
	for _, b := range enc[1:] {
		assert.Equal(t, byte(0x7F+32), b)
	}
}

func TestGString_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		s    string
	}{
		{"empty", ""},
		{"short", "Graal"},
		{"max", strings.Repeat("x", MaxGString)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := AppendGString(nil, tt.s)
			got, n, err := DecodeGString(enc)
			require.NoError(t, err)
			assert.Equal(t, tt.s, got)
			assert.Equal(t, len(enc), n)
		})
	}
}

func TestGString_Truncates(t *testing.T) {
	enc := AppendGString(nil, strings.Repeat("y", 300))
	assert.Len(t, enc, 1+MaxGString)
}

func TestGString_NegativeLengthIsEmpty(t *testing.T) {
	got, n, err := DecodeGString([]byte{5, 'a', 'b'})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 1, n)
}

func TestDecode_ShortBuffer(t *testing.T) {
	tests := []struct {
		name string
		fn   func() error
	}{
		{"GChar", func() error { _, err := DecodeGChar(nil); return err }},
		{"GUChar", func() error { _, err := DecodeGUChar(nil); return err }},
		{"GShort", func() error { _, err := DecodeGShort([]byte{40}); return err }},
		{"GInt", func() error { _, err := DecodeGInt([]byte{40, 40}); return err }},
		{"GInt4", func() error { _, err := DecodeGInt4([]byte{40, 40, 40}); return err }},
		{"GUInt5", func() error { _, err := DecodeGUInt5([]byte{40, 40, 40, 40}); return err }},
		{"GString", func() error { _, _, err := DecodeGString([]byte{32 + 4, 'a'}); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.fn(), ErrShortBuffer)
		})
	}
}

func TestEncodedBytesAreOffset(t *testing.T) {
	enc := AppendGInt(nil, 0)
	assert.Equal(t, []byte{32, 32, 32}, enc)
}
