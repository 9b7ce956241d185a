package crypto

import (
	"bytes"
	"fmt"
)

// Pipeline turns a joined message payload into bundle bytes and back for one direction
// of one connection. A Pipeline is not safe for concurrent use; the inbound one belongs
// to the read loop, the outbound one to whoever holds the send lock.
type Pipeline struct {
	gen    Generation
	cipher *Cipher
}

// NewPipeline creates a pipeline for the given generation and login key.
func NewPipeline(gen Generation, key byte) (*Pipeline, error) {
	if _, err := ParseGeneration(int(gen)); err != nil {
		return nil, err
	}
	return &Pipeline{
		gen:    gen,
		cipher: NewCipher(gen, key),
	}, nil
}

// Generation returns the negotiated generation.
func (p *Pipeline) Generation() Generation {
	return p.gen
}

// Iterator exposes the cipher iterator (for logging and tests).
func (p *Pipeline) Iterator() uint32 {
	return p.cipher.Iterator()
}

// Encode compresses and encrypts payload. The input slice is not modified.
func (p *Pipeline) Encode(payload []byte) ([]byte, error) {
	switch p.gen {
	case Gen1, Gen6:
		return bytes.Clone(payload), nil

	case Gen2:
		return deflate(payload)

	case Gen3:
		compressed, err := deflate(payload)
		if err != nil {
			return nil, err
		}
		return p.insertFiller(compressed), nil

	case Gen4:
		compressed, err := bzip(payload)
		if err != nil {
			return nil, err
		}
		p.cipher.Apply(compressed, limitCompressed)
		return compressed, nil

	case Gen5:
		kind := selectCompression(len(payload))
		var body []byte
		var err error
		switch kind {
		case CompressionNone:
			body = bytes.Clone(payload)
		case CompressionZlib:
			body, err = deflate(payload)
		case CompressionBzip2:
			body, err = bzip(payload)
		}
		if err != nil {
			return nil, err
		}
		p.cipher.Apply(body, kind.limit())
		out := make([]byte, 0, len(body)+1)
		out = append(out, byte(kind))
		return append(out, body...), nil

	default:
		return nil, fmt.Errorf("encode: unsupported generation %v", p.gen)
	}
}

// Decode reverses Encode. For generation 2 a failed inflate falls back to the raw bytes:
// some legacy admin tools keep sending uncompressed data after login.
func (p *Pipeline) Decode(bundle []byte) ([]byte, error) {
	switch p.gen {
	case Gen1, Gen6:
		return bundle, nil

	case Gen2:
		return inflateOrRaw(bundle), nil

	case Gen3:
		stripped, err := p.removeFiller(bundle)
		if err != nil {
			return nil, err
		}
		return inflate(stripped)

	case Gen4:
		data := append([]byte(nil), bundle...)
		p.cipher.Apply(data, limitCompressed)
		return bunzip(data)

	case Gen5:
		if len(bundle) == 0 {
			return nil, fmt.Errorf("%w: missing compression tag", ErrDecompress)
		}
		kind := Compression(bundle[0])
		data := bytes.Clone(bundle[1:])
		switch kind {
		case CompressionNone:
			p.cipher.Apply(data, kind.limit())
			return data, nil
		case CompressionZlib:
			p.cipher.Apply(data, kind.limit())
			return inflate(data)
		case CompressionBzip2:
			p.cipher.Apply(data, kind.limit())
			return bunzip(data)
		default:
			return nil, fmt.Errorf("%w: unknown compression tag %v", ErrDecompress, kind)
		}

	default:
		return nil, fmt.Errorf("decode: unsupported generation %v", p.gen)
	}
}

// DecodeLogin decodes the very first bundle of a connection. The client sends it before
// any generation is known, so it is always treated like generation 2.
func DecodeLogin(bundle []byte) []byte {
	return inflateOrRaw(bundle)
}

func inflateOrRaw(bundle []byte) []byte {
	out, err := inflate(bundle)
	if err != nil {
		return bundle
	}
	return out
}

// insertFiller splices one byte into the compressed stream at a position derived from
// a single iterator step. One step per bundle.
func (p *Pipeline) insertFiller(data []byte) []byte {
	pos := int(p.cipher.Advance()&0xFFFF) % len(data)
	out := make([]byte, 0, len(data)+1)
	out = append(out, data[:pos]...)
	out = append(out, fillerByte(p.cipher.Iterator()))
	return append(out, data[pos:]...)
}

func (p *Pipeline) removeFiller(data []byte) ([]byte, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("%w: generation 3 bundle too short (%d bytes)", ErrDecompress, len(data))
	}
	pos := int(p.cipher.Advance()&0xFFFF) % (len(data) - 1)
	out := make([]byte, 0, len(data)-1)
	out = append(out, data[:pos]...)
	return append(out, data[pos+1:]...), nil
}

func fillerByte(iterator uint32) byte {
	return byte(iterator >> 16)
}
