package crypto

import (
	"bytes"
	"testing"
)

func BenchmarkCipher_Apply(b *testing.B) {
	data := make([]byte, 4096)
	c := NewCipher(Gen5, 0x5A)
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	for b.Loop() {
		c.Apply(data, Unlimited)
	}
}

func BenchmarkPipeline_Encode(b *testing.B) {
	payload := bytes.Repeat([]byte("!player props\n"), 300)
	for _, g := range []Generation{Gen2, Gen4, Gen5} {
		b.Run(g.String(), func(b *testing.B) {
			p, _ := NewPipeline(g, 0x5A)
			b.SetBytes(int64(len(payload)))
			b.ReportAllocs()
			for b.Loop() {
				if _, err := p.Encode(payload); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
