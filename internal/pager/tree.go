package pager

import "fmt"

// ───────────────────────────────────────────────────────────────────────────
// Tree — the persistent paged B+-tree over 32-bit int keys and values
// ───────────────────────────────────────────────────────────────────────────

// Allocator hands out the address of the next page to allocate. The tree
// never decides this itself — it defers to whatever owns free-space
// bookkeeping for the backing store, the same separation of concerns the
// teacher draws between its BTree and its Pager's AllocPage.
type Allocator interface {
	Next() (Address, error)
}

// SequentialAllocator is the reference Allocator: it hands out consecutive
// page-sized addresses starting from an offset, and never reclaims one.
// Good enough for a tree with no deletion-driven free list (section 1).
//
// It never hands out address 0: locate's split logic uses 0 as the
// noParent sentinel for "this is the root," so a real page there would be
// indistinguishable from having no parent. The first page handed out sits
// at offset PageSize, leaving the first page-sized span of the store
// unused.
type SequentialAllocator struct {
	pageSize int
	next     Address
}

// NewSequentialAllocator hands out consecutive page-sized addresses
// starting at offset pageSize.
func NewSequentialAllocator(pageSize int) *SequentialAllocator {
	return &SequentialAllocator{pageSize: pageSize, next: Address(pageSize)}
}

// Next returns the next free address and advances past it.
func (a *SequentialAllocator) Next() (Address, error) {
	addr := a.next
	a.next += Address(a.pageSize)
	return addr, nil
}

// Tree is a persistent B+-tree mapping 32-bit integer keys to non-zero
// 32-bit integer values. It is not safe for concurrent use.
type Tree struct {
	pageSize            int
	maxInteriorChildren int16
	store               *ByteStore
	cache               *PageCache
	alloc               Allocator

	rootAddress      Address
	pageCount        int
	size             int
	maxStepsSearched int

	scratch []byte
}

// NewTree creates a fresh, empty tree backed by store, with a single leaf
// page as its root.
func NewTree(store *ByteStore, pageSize int, alloc Allocator) (*Tree, error) {
	maxChildren, err := MaxInteriorChildren(pageSize)
	if err != nil {
		return nil, fmt.Errorf("pager: NewTree: %w", err)
	}

	t := &Tree{
		pageSize:            pageSize,
		maxInteriorChildren: maxChildren,
		store:               store,
		cache:               NewPageCache(store, pageSize),
		alloc:               alloc,
		scratch:             make([]byte, pageSize),
	}

	root, err := t.allocatePage(true)
	if err != nil {
		return nil, err
	}
	t.rootAddress = root
	return t, nil
}

// OpenTree reattaches a Tree to a store that already holds one, at the
// given root address, with previously observed pageCount/size bookkeeping
// (neither is persisted in the page format itself, so a caller reopening a
// store from a cold cache must supply them).
func OpenTree(store *ByteStore, pageSize int, rootAddress Address, pageCount, size int, alloc Allocator) (*Tree, error) {
	maxChildren, err := MaxInteriorChildren(pageSize)
	if err != nil {
		return nil, fmt.Errorf("pager: OpenTree: %w", err)
	}
	return &Tree{
		pageSize:            pageSize,
		maxInteriorChildren: maxChildren,
		store:               store,
		cache:               NewPageCache(store, pageSize),
		alloc:               alloc,
		rootAddress:         rootAddress,
		pageCount:           pageCount,
		size:                size,
		scratch:             make([]byte, pageSize),
	}, nil
}

// RootAddress reports the address of the current root page.
func (t *Tree) RootAddress() Address { return t.rootAddress }

// SetRootAddress forcibly re-seats the tree on a different root. Exists for
// tests that want to rebuild a Tree view over a store without reconstructing
// one from scratch.
func (t *Tree) SetRootAddress(addr Address) { t.rootAddress = addr }

// PageCount reports the number of pages this Tree has allocated over its
// lifetime.
func (t *Tree) PageCount() int { return t.pageCount }

// Size reports the number of distinct keys currently stored.
func (t *Tree) Size() int { return t.size }

// MaxStepsSearched reports the deepest descent (root to leaf, inclusive)
// any Get or Put has taken so far. A Put whose descent splits the root
// counts one step fewer than the depth it actually walked.
func (t *Tree) MaxStepsSearched() int { return t.maxStepsSearched }

// SetMaxStepsSearched resets the high-water mark, mainly for tests that
// want to measure one operation in isolation.
func (t *Tree) SetMaxStepsSearched(n int) { t.maxStepsSearched = n }

// MaxInteriorChildren reports the page-size-derived fan-out limit this tree
// enforces on interior nodes.
func (t *Tree) MaxInteriorChildren() int16 { return t.maxInteriorChildren }

// allocatePage obtains a fresh address from the allocator, zero-initializes
// a page there with the given leaf flag, and installs it in the cache.
func (t *Tree) allocatePage(leaf bool) (Address, error) {
	addr, err := t.alloc.Next()
	if err != nil {
		return 0, storageIO("allocatePage", err)
	}
	buf := make([]byte, t.pageSize)
	if leaf {
		buf[0] = leafFlag
	}
	t.cache.Install(addr, buf)
	t.pageCount++
	return addr, nil
}

// Get returns the value stored for key, or (Absent, false) if key is not
// present.
func (t *Tree) Get(key int32) (int32, bool, error) {
	leafAddr, pos, err := t.locate(key, false)
	if err != nil {
		return Absent, false, fmt.Errorf("pager: Get: %w", err)
	}
	if pos < 0 {
		return Absent, false, nil
	}
	v := &pageView{cache: t.cache}
	v.seat(leafAddr)
	val, err := v.AddressAt(pos)
	if err != nil {
		return Absent, false, fmt.Errorf("pager: Get: %w", err)
	}
	return val, true, nil
}

// Put inserts key with value, overwriting any existing value for key.
// value must not be Absent (0).
func (t *Tree) Put(key, value int32) error {
	if value == Absent {
		return invalidArgument("Put", fmt.Errorf("value must be non-zero"))
	}

	leafAddr, pos, err := t.locate(key, true)
	if err != nil {
		return fmt.Errorf("pager: Put: %w", err)
	}

	if pos >= 0 {
		v := &pageView{cache: t.cache}
		v.seat(leafAddr)
		if err := v.SetAddressAt(pos, value); err != nil {
			return fmt.Errorf("pager: Put: %w", err)
		}
		return v.Sync()
	}

	if err := t.insertLeaf(leafAddr, key, value, -pos-1); err != nil {
		return fmt.Errorf("pager: Put: %w", err)
	}
	t.size++
	return nil
}

// Remove is not implemented: the tree supports no deletion or rebalancing
// (section 1, Non-goals). Every call returns ErrUnsupported.
func (t *Tree) Remove(key int32) error {
	return unsupported("Remove")
}

// Flush writes every dirty cached page back to the store and syncs it.
func (t *Tree) Flush() error {
	for addr := range t.cacheAddresses() {
		if err := t.cache.Writeback(addr); err != nil {
			return fmt.Errorf("pager: Flush: %w", err)
		}
	}
	return t.store.Sync()
}

func (t *Tree) cacheAddresses() map[Address][]byte {
	return t.cache.buffers
}
