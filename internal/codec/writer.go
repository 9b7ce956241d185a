package codec

// Writer accumulates an encoded payload.
type Writer struct {
	buf []byte
}

// NewWriter creates a new payload writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// WriteGChar writes a GChar.
func (w *Writer) WriteGChar(v int) *Writer {
	w.buf = AppendGChar(w.buf, v)
	return w
}

// WriteGShort writes a GShort.
func (w *Writer) WriteGShort(v int) *Writer {
	w.buf = AppendGShort(w.buf, v)
	return w
}

// WriteGInt writes a GInt.
func (w *Writer) WriteGInt(v int) *Writer {
	w.buf = AppendGInt(w.buf, v)
	return w
}

// WriteGInt4 writes a GInt4.
func (w *Writer) WriteGInt4(v int) *Writer {
	w.buf = AppendGInt4(w.buf, v)
	return w
}

// WriteGUInt5 writes a GUInt5.
func (w *Writer) WriteGUInt5(v uint32) *Writer {
	w.buf = AppendGUInt5(w.buf, v)
	return w
}

// WriteGString writes a GChar-prefixed string.
func (w *Writer) WriteGString(s string) *Writer {
	w.buf = AppendGString(w.buf, s)
	return w
}

// WriteString writes raw string bytes without a prefix.
func (w *Writer) WriteString(s string) *Writer {
	w.buf = append(w.buf, s...)
	return w
}

// WriteBytes writes raw bytes.
func (w *Writer) WriteBytes(b []byte) *Writer {
	w.buf = append(w.buf, b...)
	return w
}

// Bytes returns the accumulated payload.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the current payload length.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Reset clears the buffer for reuse.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}
