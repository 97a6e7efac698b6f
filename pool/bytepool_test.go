package pool_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/momentics/hioload-fetch/pool"
)

func TestBytePoolChunkSize(t *testing.T) {
	bp := pool.NewBytePool(64)
	assert.Equal(t, 64, bp.Size())

	b := bp.GetBuffer()
	assert.Len(t, b, 64)
	bp.PutBuffer(b[:10])

	b2 := bp.GetBuffer()
	assert.Len(t, b2, 64, "returned chunks are resliced to full size")
}

func TestBytePoolDefaultsAndForeignBuffers(t *testing.T) {
	bp := pool.NewBytePool(0)
	assert.Equal(t, pool.DefaultChunkSize, bp.Size())

	// Undersized buffers are ignored rather than handed out later.
	bp.PutBuffer(make([]byte, 8))
	assert.Len(t, bp.GetBuffer(), pool.DefaultChunkSize)
}
