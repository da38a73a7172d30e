package pools

import (
	"sync"
	"sync/atomic"
)

// ReadBufferSize is the size of a session read buffer
const ReadBufferSize = 2048

// BytePool hands out fixed-size byte slices
type BytePool struct {
	pool sync.Pool
	size int

	gets   atomic.Uint64
	puts   atomic.Uint64
	misses atomic.Uint64
}

// NewBytePool creates a pool of size-byte slices; size <= 0 means ReadBufferSize
func NewBytePool(size int) *BytePool {
	if size <= 0 {
		size = ReadBufferSize
	}

	bp := &BytePool{size: size}
	bp.pool.New = func() any {
		bp.misses.Add(1)
		buf := make([]byte, size)
		return &buf
	}
	return bp
}

// Size returns the length of every buffer in the pool
func (bp *BytePool) Size() int {
	return bp.size
}

// Get returns a buffer of exactly Size bytes
func (bp *BytePool) Get() *[]byte {
	bp.gets.Add(1)
	buf := bp.pool.Get().(*[]byte)
	*buf = (*buf)[:bp.size]
	return buf
}

// Put returns a buffer to the pool. Slices of another capacity are dropped.
func (bp *BytePool) Put(buf *[]byte) {
	if buf == nil || cap(*buf) != bp.size {
		return
	}
	bp.puts.Add(1)
	*buf = (*buf)[:bp.size]
	bp.pool.Put(buf)
}

// Stats returns pool statistics
func (bp *BytePool) Stats() BytePoolStats {
	return BytePoolStats{
		Gets:   bp.gets.Load(),
		Puts:   bp.puts.Load(),
		Misses: bp.misses.Load(),
	}
}

// BytePoolStats contains pool statistics
type BytePoolStats struct {
	Gets   uint64
	Puts   uint64
	Misses uint64
}
