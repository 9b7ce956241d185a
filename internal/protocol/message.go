package protocol

import (
	"bytes"
	"fmt"

	"github.com/udisondev/gserver/internal/codec"
	"github.com/udisondev/gserver/internal/constants"
)

// rawDataType is the one type whose byte is written literally and whose payload is
// length-prefixed instead of newline-terminated.
const rawDataType = uint8(ServerRawData)

// Message is one command on the wire: a type and its payload.
type Message struct {
	Type    uint8
	Payload []byte
}

// NewServerMessage builds an outbound message.
func NewServerMessage(t ServerType, payload []byte) Message {
	return Message{Type: uint8(t), Payload: payload}
}

// IsRawData reports whether the message uses the raw-data encoding.
func (m Message) IsRawData() bool {
	return m.Type == rawDataType
}

// Encode serializes the message including its terminator.
func (m Message) Encode() ([]byte, error) {
	return m.AppendTo(make([]byte, 0, m.EncodedLen()))
}

// EncodedLen returns the length of Encode's output.
func (m Message) EncodedLen() int {
	if m.IsRawData() {
		return 1 + codec.SizeGInt4 + len(m.Payload)
	}
	return 1 + len(m.Payload) + 1
}

// AppendTo appends the serialized message to dst. A type above MaxType has no
// GChar form and is rejected; dst is returned unchanged.
func (m Message) AppendTo(dst []byte) ([]byte, error) {
	if m.IsRawData() {
		dst = append(dst, rawDataType)
		dst = codec.AppendGInt4(dst, len(m.Payload))
		return append(dst, m.Payload...), nil
	}
	if m.Type > MaxType {
		return dst, fmt.Errorf("encode message: %w: type %d", ErrInvalidType, m.Type)
	}
	dst = codec.AppendGChar(dst, int(m.Type))
	dst = append(dst, m.Payload...)
	return append(dst, constants.MessageSeparator), nil
}

// ParseLine decodes one newline-free inbound line into a message.
func ParseLine(line []byte) (Message, error) {
	if len(line) == 0 {
		return Message{}, fmt.Errorf("parse line: %w", codec.ErrShortBuffer)
	}
	t, err := ParseType(line[0])
	if err != nil {
		return Message{}, fmt.Errorf("parse line: %w", err)
	}
	return Message{Type: t, Payload: line[1:]}, nil
}

// SplitLines splits a decoded inbound bundle on newlines, dropping empty lines.
// The returned slices alias payload.
func SplitLines(payload []byte) [][]byte {
	var lines [][]byte
	for len(payload) > 0 {
		i := bytes.IndexByte(payload, constants.MessageSeparator)
		var line []byte
		if i < 0 {
			line, payload = payload, nil
		} else {
			line, payload = payload[:i], payload[i+1:]
		}
		if len(line) > 0 {
			lines = append(lines, line)
		}
	}
	return lines
}

// JoinMessages serializes messages into one bundle payload.
func JoinMessages(msgs ...Message) ([]byte, error) {
	n := 0
	for _, m := range msgs {
		n += m.EncodedLen()
	}
	out := make([]byte, 0, n)
	for _, m := range msgs {
		var err error
		if out, err = m.AppendTo(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// SplitServerMessages decodes an outbound bundle payload the way a client does: the
// literal raw-data byte introduces a GInt4-counted blob, everything else is a line.
func SplitServerMessages(payload []byte) ([]Message, error) {
	var msgs []Message
	for len(payload) > 0 {
		if payload[0] == rawDataType {
			n, err := codec.DecodeGInt4(payload[1:])
			if err != nil {
				return msgs, fmt.Errorf("raw data length: %w", err)
			}
			start := 1 + codec.SizeGInt4
			if len(payload) < start+n {
				return msgs, fmt.Errorf("raw data body: %w (need=%d, len=%d)", codec.ErrShortBuffer, start+n, len(payload))
			}
			msgs = append(msgs, Message{Type: rawDataType, Payload: payload[start : start+n]})
			payload = payload[start+n:]
			continue
		}

		i := bytes.IndexByte(payload, constants.MessageSeparator)
		if i < 0 {
			return msgs, fmt.Errorf("unterminated message: %w", codec.ErrShortBuffer)
		}
		if i > 0 {
			m, err := ParseLine(payload[:i])
			if err != nil {
				return msgs, err
			}
			msgs = append(msgs, m)
		}
		payload = payload[i+1:]
	}
	return msgs, nil
}
