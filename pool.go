package lillydap

import "sync"

// Package-level defaults for the arena allocator. A chunk is grown lazily;
// most LDAP operations fit comfortably in the first chunk.
const defaultChunkSize = 4096

// chunkPool recycles backing byte slices across message pools so a busy
// connection does not keep re-growing the allocator once traffic is steady.
// Grounded on bgpfix/bgpfix's Pipe.pool *sync.Pool message pool, applied
// here to the arena's backing storage rather than to whole messages. It is
// shared by every connection, so get and put hold a mutex.
var chunkPool = newChunkPool(defaultChunkSize)

type chunkPoolT struct {
	get func() []byte
	put func([]byte)
}

func newChunkPool(size int) *chunkPoolT {
	var mu sync.Mutex
	free := make([][]byte, 0, 16)
	return &chunkPoolT{
		get: func() []byte {
			mu.Lock()
			defer mu.Unlock()
			if n := len(free); n > 0 {
				c := free[n-1]
				free = free[:n-1]
				return c[:0]
			}
			return make([]byte, 0, size)
		},
		put: func(b []byte) {
			mu.Lock()
			defer mu.Unlock()
			if len(free) < cap(free) {
				free = append(free, b)
			}
		},
	}
}

// Pool is a bump allocator with grouped release: every allocation made
// against it lives until End is called, at which point the whole arena is
// reclaimed in one step. It never frees individual allocations.
//
// A Connection keeps one long-lived Pool for connection-scoped state and
// creates one short-lived Pool per in-flight message; the message pool's
// chunks are returned to chunkPool on End so steady traffic does not keep
// growing new backing storage.
type Pool struct {
	chunks [][]byte
	cur    int
}

// NewPool returns an empty arena. The first chunk is allocated lazily on
// first use.
func NewPool() *Pool {
	return &Pool{}
}

// Alloc returns n uninitialized bytes owned by the pool. The returned
// slice is valid until End is called.
func (p *Pool) Alloc(n int) []byte {
	if n == 0 {
		return nil
	}
	if p.cur >= len(p.chunks) || cap(p.chunks[p.cur])-len(p.chunks[p.cur]) < n {
		size := defaultChunkSize
		if n > size {
			size = n
		}
		var chunk []byte
		if size == defaultChunkSize {
			chunk = chunkPool.get()
		} else {
			chunk = make([]byte, 0, size)
		}
		p.chunks = append(p.chunks, chunk)
		p.cur = len(p.chunks) - 1
	}
	chunk := p.chunks[p.cur]
	start := len(chunk)
	chunk = chunk[:start+n]
	p.chunks[p.cur] = chunk
	return chunk[start : start+n : start+n]
}

// Alloc0 is Alloc with the returned bytes zeroed. Alloc itself does not
// zero: a chunk recycled through chunkPool still holds the bytes of its
// previous use.
func (p *Pool) Alloc0(n int) []byte {
	b := p.Alloc(n)
	for i := range b {
		b[i] = 0
	}
	return b
}

// Own copies b into the pool and returns the owned copy. Used to move
// bytes out of a read buffer or a peer's wire frame into arena-owned
// memory, satisfying the invariant that every Cursor handed to a callback
// points into memory owned by the Pool passed alongside it.
func (p *Pool) Own(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	dst := p.Alloc(len(b))
	copy(dst, b)
	return dst
}

// OwnString is Own for strings.
func (p *Pool) OwnString(s string) string {
	if s == "" {
		return ""
	}
	return string(p.Own([]byte(s)))
}

// End releases every allocation made against the pool and returns each
// default-size chunk to chunkPool, for message pools and the connection
// pool alike.
func (p *Pool) End() {
	for _, c := range p.chunks {
		if cap(c) == defaultChunkSize {
			chunkPool.put(c[:0])
		}
	}
	p.chunks = nil
	p.cur = 0
}

// Reset releases every allocation but keeps the first chunk's backing
// array for reuse, avoiding a reallocation on the next message.
func (p *Pool) Reset() {
	if len(p.chunks) == 0 {
		return
	}
	first := p.chunks[0][:0]
	for _, c := range p.chunks[1:] {
		if cap(c) == defaultChunkSize {
			chunkPool.put(c[:0])
		}
	}
	p.chunks = p.chunks[:1]
	p.chunks[0] = first
	p.cur = 0
}
