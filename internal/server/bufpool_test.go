package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBundlePool_GetReturnsEmptyBuffer(t *testing.T) {
	p := newBundlePool(64)

	b := p.get()
	assert.Len(t, *b, 0)
	assert.GreaterOrEqual(t, cap(*b), 64)

	*b = append(*b, "leftover"...)
	p.put(b)

	b2 := p.get()
	assert.Len(t, *b2, 0)
}

func TestBundlePool_DropsGrownBuffers(t *testing.T) {
	p := newBundlePool(64)

	big := make([]byte, 0, maxPooledBuffer+1)
	assert.NotPanics(t, func() {
		p.put(&big)
		p.put(nil)
	})
}
