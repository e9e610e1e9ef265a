package common

import (
	"bytes"
	"sync"
)

// BufferPool recycles byte buffers for pages and archives rendered in memory before
// being written out. Buffers that grew past maxRetained are dropped instead of pooled.
type BufferPool struct {
	pool        sync.Pool
	maxRetained int
}

// NewBufferPool creates a pool of buffers starting at initialCapacity bytes
func NewBufferPool(initialCapacity, maxRetained int) *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() any {
				return bytes.NewBuffer(make([]byte, 0, initialCapacity))
			},
		},
		maxRetained: maxRetained,
	}
}

// Get retrieves an empty buffer
func (bp *BufferPool) Get() *bytes.Buffer {
	return bp.pool.Get().(*bytes.Buffer)
}

// Put returns a buffer to the pool after resetting it
func (bp *BufferPool) Put(buf *bytes.Buffer) {
	if buf == nil {
		return
	}
	if bp.maxRetained > 0 && buf.Cap() > bp.maxRetained {
		return
	}
	buf.Reset()
	bp.pool.Put(buf)
}

// DefaultBufferPool holds 64KB buffers and drops anything that grew past 8MB.
var DefaultBufferPool = NewBufferPool(64*1024, 8*1024*1024)
