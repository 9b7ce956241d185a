package codec

import "testing"

func BenchmarkAppendGInt(b *testing.B) {
	buf := make([]byte, 0, 8)
	b.ReportAllocs()
	for i := 0; b.Loop(); i++ {
		buf = AppendGInt(buf[:0], i)
	}
}

func BenchmarkDecodeGUInt5(b *testing.B) {
	enc := AppendGUInt5(nil, 0xCAFEBABE)
	b.ReportAllocs()
	for b.Loop() {
		_, _ = DecodeGUInt5(enc)
	}
}
