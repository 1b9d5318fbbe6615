package lillydap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoolAllocDistinctSlices(t *testing.T) {
	p := NewPool()
	a := p.Alloc(8)
	b := p.Alloc(8)
	require.Len(t, a, 8)
	require.Len(t, b, 8)
	a[0] = 0xFF
	require.NotEqual(t, a[0], b[0])
}

func TestPoolOwnCopiesBytes(t *testing.T) {
	p := NewPool()
	src := []byte("hello")
	owned := p.Own(src)
	require.Equal(t, src, owned)
	src[0] = 'X'
	require.Equal(t, byte('h'), owned[0], "Own must copy, not alias, the source bytes")
}

func TestPoolAllocGrowsAcrossChunks(t *testing.T) {
	p := NewPool()
	big := p.Alloc(defaultChunkSize + 100)
	require.Len(t, big, defaultChunkSize+100)
	next := p.Alloc(16)
	require.Len(t, next, 16)
}

func TestPoolEndReleasesAllChunks(t *testing.T) {
	p := NewPool()
	p.Alloc(defaultChunkSize)
	p.End()
	require.Nil(t, p.chunks)
	require.Equal(t, 0, p.cur)
}

func TestPoolResetKeepsFirstChunk(t *testing.T) {
	p := NewPool()
	p.Alloc(64)
	p.Reset()
	require.Len(t, p.chunks, 1)
	require.Equal(t, 0, len(p.chunks[0]))
}
