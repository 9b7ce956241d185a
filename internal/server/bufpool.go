package server

import "sync"

// maxPooledBuffer is the largest read buffer returned to the pool. Buffers grown
// for a near-limit bundle are left to the GC.
const maxPooledBuffer = 0x10000

// bundlePool recycles per-connection read buffers between connections.
// Buffers are stored as *[]byte so Put does not allocate.
type bundlePool struct {
	pool sync.Pool
}

func newBundlePool(size int) *bundlePool {
	p := &bundlePool{}
	p.pool.New = func() any {
		b := make([]byte, 0, size)
		return &b
	}
	return p
}

// get returns an empty buffer with at least the pool's initial capacity.
func (p *bundlePool) get() *[]byte {
	b := p.pool.Get().(*[]byte)
	*b = (*b)[:0]
	return b
}

func (p *bundlePool) put(b *[]byte) {
	if b == nil || cap(*b) > maxPooledBuffer {
		return
	}
	p.pool.Put(b)
}
