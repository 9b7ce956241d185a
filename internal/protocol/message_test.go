package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/gserver/internal/codec"
)

func TestMessage_EncodeLine(t *testing.T) {
	m := NewServerMessage(ServerLevelName, []byte("start.nw"))
	enc, err := m.Encode()
	require.NoError(t, err)
	assert.Equal(t, append([]byte{6 + 32}, "start.nw\n"...), enc)
	assert.Equal(t, len(enc), m.EncodedLen())
}

func TestMessage_EncodeRejectsTypesWithoutGChar(t *testing.T) {
	for _, typ := range []uint8{MaxType + 1, 230, 255} {
		m := Message{Type: typ, Payload: []byte("x")}

		_, err := m.Encode()
		assert.ErrorIs(t, err, ErrInvalidType, "type %d", typ)

		dst := []byte("prefix")
		out, err := m.AppendTo(dst)
		assert.ErrorIs(t, err, ErrInvalidType)
		assert.Equal(t, []byte("prefix"), out)

		_, err = JoinMessages(NewServerMessage(ServerSignature, nil), m)
		assert.ErrorIs(t, err, ErrInvalidType)
	}

	enc, err := Message{Type: MaxType}.Encode()
	require.NoError(t, err)
	assert.Equal(t, []byte{MaxType + 32, '\n'}, enc)
}

func TestMessage_EncodeRawData(t *testing.T) {
	board := bytes.Repeat([]byte{'\n', 0x01}, 10)
	m := NewServerMessage(ServerRawData, board)

	enc, err := m.Encode()
	require.NoError(t, err)
	require.Equal(t, byte(100), enc[0], "raw data uses the literal type byte")
	n, err := codec.DecodeGInt4(enc[1:])
	require.NoError(t, err)
	assert.Equal(t, len(board), n)
	assert.Equal(t, board, enc[5:])
	assert.Equal(t, len(enc), m.EncodedLen())
}

func TestParseLine(t *testing.T) {
	m, err := ParseLine([]byte{37 + 32, 'e', 'n'})
	require.NoError(t, err)
	assert.Equal(t, uint8(ClientLanguage), m.Type)
	assert.Equal(t, []byte("en"), m.Payload)

	_, err = ParseLine([]byte{5})
	assert.ErrorIs(t, err, ErrInvalidType)

	_, err = ParseLine(nil)
	assert.ErrorIs(t, err, codec.ErrShortBuffer)
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single without newline", "abc", []string{"abc"}},
		{"single with newline", "abc\n", []string{"abc"}},
		{"several", "a\nbb\nccc\n", []string{"a", "bb", "ccc"}},
		{"blank lines skipped", "\n\na\n\nb", []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := SplitLines([]byte(tt.in))
			var got []string
			for _, l := range lines {
				got = append(got, string(l))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitServerMessages(t *testing.T) {
	msgs := []Message{
		NewServerMessage(ServerSignature, []byte{73 + 32}),
		NewServerMessage(ServerRawData, []byte("line1\nline2\n")),
		NewServerMessage(ServerLevelName, []byte("a.nw")),
	}
	payload, err := JoinMessages(msgs...)
	require.NoError(t, err)
	got, err := SplitServerMessages(payload)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := range msgs {
		assert.Equal(t, msgs[i].Type, got[i].Type)
		assert.Equal(t, msgs[i].Payload, got[i].Payload)
	}
}

func TestSplitServerMessages_Truncated(t *testing.T) {
	raw, err := NewServerMessage(ServerRawData, []byte("0123456789")).Encode()
	require.NoError(t, err)
	_, err = SplitServerMessages(raw[:len(raw)-2])
	assert.ErrorIs(t, err, codec.ErrShortBuffer)

	_, err = SplitServerMessages([]byte{40, 41})
	assert.ErrorIs(t, err, codec.ErrShortBuffer)
}

func TestTypeNames(t *testing.T) {
	assert.Equal(t, "RAWDATA", ServerRawData.String())
	assert.Equal(t, "PLO_200", ServerType(200).String())
	assert.Equal(t, "WANTFILE", ClientWantFile.String())
	assert.Equal(t, "PLI_99", ClientType(99).String())
}

func TestParseType(t *testing.T) {
	v, err := ParseType(32)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), v)

	v, err = ParseType(255)
	require.NoError(t, err)
	assert.Equal(t, uint8(MaxType), v)

	_, err = ParseType(31)
	assert.ErrorIs(t, err, ErrInvalidType)
}
