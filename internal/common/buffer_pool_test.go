package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferPool_GetPut(t *testing.T) {
	pool := NewBufferPool(16, 1024)

	buf := pool.Get()
	assert.Equal(t, 0, buf.Len())
	assert.GreaterOrEqual(t, buf.Cap(), 16)

	buf.WriteString("report")
	pool.Put(buf)

	again := pool.Get()
	assert.Equal(t, 0, again.Len(), "pooled buffers come back empty")
	pool.Put(nil)
}

func TestBufferPool_DropsOversized(t *testing.T) {
	pool := NewBufferPool(16, 32)

	buf := pool.Get()
	buf.Write(make([]byte, 4096))
	pool.Put(buf)

	next := pool.Get()
	assert.Less(t, next.Cap(), 4096)
}
