package pager

// ───────────────────────────────────────────────────────────────────────────
// PageCache — the write-back buffer pool between the tree and the store
// ───────────────────────────────────────────────────────────────────────────
//
// This plays the role the teacher's PageBufferPool plays in
// internal/storage/pager/pager.go, trimmed to what the tree actually needs:
// unbounded growth is fine here (section 4.2), so there is no LRU list, no
// pin counting, and no eviction. Node operations perform many small
// reads/writes per page; serving them from a pinned buffer avoids repeatedly
// crossing the RawStore boundary for every field access.

// PageCache maps a page address to an owned buffer of exactly pageSize
// bytes. It is single-threaded, like the rest of the tree (section 5).
type PageCache struct {
	store    *ByteStore
	pageSize int
	buffers  map[Address][]byte
}

// NewPageCache creates a cache over store with the given fixed page size.
func NewPageCache(store *ByteStore, pageSize int) *PageCache {
	return &PageCache{
		store:    store,
		pageSize: pageSize,
		buffers:  make(map[Address][]byte),
	}
}

// GetBuffer returns the buffer for address, pulling it from the store on
// first access. The returned slice is owned by the cache: mutations through
// it are visible to every other caller that fetches the same address.
func (c *PageCache) GetBuffer(addr Address) ([]byte, error) {
	if buf, ok := c.buffers[addr]; ok {
		return buf, nil
	}
	buf, err := c.store.ReadRun(int64(addr), c.pageSize)
	if err != nil {
		return nil, err
	}
	c.buffers[addr] = buf
	return buf, nil
}

// Install seeds the cache with a freshly allocated, already-initialized
// buffer, skipping the round-trip through the store that GetBuffer would
// otherwise perform for a page that doesn't exist there yet.
func (c *PageCache) Install(addr Address, buf []byte) {
	c.buffers[addr] = buf
}

// Writeback flushes the cached buffer for address back to the store. The
// buffer stays cached afterward.
func (c *PageCache) Writeback(addr Address) error {
	buf, ok := c.buffers[addr]
	if !ok {
		return nil
	}
	return c.store.WriteRun(int64(addr), buf)
}

// Discard drops every cached buffer without writing anything back. Used by
// tests that want to force a fresh read from the store to exercise the
// round-trip path (section 8, property 6).
func (c *PageCache) Discard() {
	c.buffers = make(map[Address][]byte)
}
