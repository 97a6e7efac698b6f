// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>

package pool

import "sync"

// DefaultChunkSize is the receive size used when none is configured.
const DefaultChunkSize = 512

// BytePool hands out fixed-size byte chunks backed by sync.Pool.
type BytePool struct {
	pool sync.Pool
	size int
}

// NewBytePool returns a pool of chunks of the given size.
func NewBytePool(size int) *BytePool {
	if size <= 0 {
		size = DefaultChunkSize
	}
	bp := &BytePool{size: size}
	bp.pool.New = func() any {
		buf := make([]byte, size)
		return &buf
	}
	return bp
}

// Size returns the chunk length handed out by GetBuffer.
func (b *BytePool) Size() int { return b.size }

// GetBuffer returns a chunk of exactly Size bytes.
func (b *BytePool) GetBuffer() []byte {
	buf := *(b.pool.Get().(*[]byte))
	return buf[:b.size]
}

// PutBuffer returns a chunk to the pool. Foreign slices that are too small
// are dropped.
func (b *BytePool) PutBuffer(buf []byte) {
	if cap(buf) < b.size {
		return
	}
	buf = buf[:b.size]
	b.pool.Put(&buf)
}
