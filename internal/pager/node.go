package pager

import "fmt"

// ───────────────────────────────────────────────────────────────────────────
// node operations — search, descent with preemptive splitting, and splits
// ───────────────────────────────────────────────────────────────────────────
//
// Grounded on the teacher's btree.go insert/search walk, reworked for the
// fixed 8-byte slot layout instead of variable-length slotted records.
// searchEntries does the binary search over a node's keys; locate descends
// from the root, splitting a full node before entering it so a promoted
// median always has room in its new parent; splitNode performs the split
// itself.
//
// An interior page with ChildCount n holds n separator keys and n+1 child
// pointers: child[i] (i < n) holds keys < key[i], and the trailing child
// n holds keys >= key[n-1]. The trailing pointer occupies its own slot at
// index n, address field only.

// searchEntries performs a standard binary search over the n keys of a
// node. A match returns its non-negative index; a miss returns
// -(insertionPoint+1), mirroring the locate/insertLeaf/insertInterior
// position convention used throughout this file.
func (t *Tree) searchEntries(v *pageView, n int, key int32) (int, error) {
	lo, hi := 0, n-1
	for lo <= hi {
		mid := (lo + hi) / 2
		k, err := v.KeyAt(mid)
		if err != nil {
			return 0, err
		}
		switch {
		case k == key:
			return mid, nil
		case k < key:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return -(lo + 1), nil
}

// isFull reports whether a node is at capacity for its kind: a leaf when
// its ChildCount reaches the universal per-page ceiling, an interior node
// one slot earlier since it must also hold a trailing child pointer.
func (t *Tree) isFull(leaf bool, childCount int) bool {
	max := int(t.maxInteriorChildren)
	if leaf {
		return childCount >= max
	}
	return childCount+1 >= max
}

// noParent is the parentAddress sentinel locate passes down to mean "the
// root, no parent to receive a promoted median." Address 0 never names a
// real page: allocators reserve it (see SequentialAllocator).
const noParent Address = 0

// locate descends from the root toward the leaf that should hold key. When
// splitting is true, it preemptively splits any full node before entering
// it, so a promoted median always finds room in the node above. It
// returns the address of the leaf reached and the signed search-position
// result at that leaf, in the same convention as searchEntries.
func (t *Tree) locate(key int32, splitting bool) (leafAddr Address, pos int, err error) {
	parentAddress := noParent
	cur := t.rootAddress
	steps := 0
	justSplit := false

	for {
		v := &pageView{cache: t.cache}
		v.seat(cur)

		leaf, err := v.IsLeaf()
		if err != nil {
			return 0, 0, err
		}
		count, err := v.ChildCount()
		if err != nil {
			return 0, 0, err
		}

		// Right after a split the cursor is back on the parent, which is
		// searched as it is: its own parent is not tracked here, so it is
		// left for a later descent to split.
		if splitting && !justSplit && t.isFull(leaf, int(count)) {
			newParent, err := t.splitNode(cur, parentAddress)
			if err != nil {
				return 0, 0, err
			}
			cur = newParent
			steps--
			justSplit = true
			continue
		}
		justSplit = false

		steps++
		result, err := t.searchEntries(v, int(count), key)
		if err != nil {
			return 0, 0, err
		}

		if leaf {
			if steps > t.maxStepsSearched {
				t.maxStepsSearched = steps
			}
			return cur, result, nil
		}

		var childIdx int
		if result >= 0 {
			childIdx = result + 1
		} else {
			childIdx = -result - 1
		}
		childAddr, err := t.childAt(v, childIdx)
		if err != nil {
			return 0, 0, err
		}

		parentAddress = cur
		cur = childAddr
	}
}

// childAt returns the physical address of the child pointer stored
// (negated) at slot idx.
func (t *Tree) childAt(v *pageView, idx int) (Address, error) {
	raw, err := v.AddressAt(idx)
	if err != nil {
		return 0, err
	}
	return Address(-raw), nil
}

// insertLeaf inserts (key, value) at pos in a leaf page known not to be
// full, shifting later entries right by one slot.
func (t *Tree) insertLeaf(addr Address, key, value int32, pos int) error {
	v := &pageView{cache: t.cache}
	v.seat(addr)

	count, err := v.ChildCount()
	if err != nil {
		return err
	}
	if err := v.CopyEntries(t.scratch, pos, pos+1, int(count)-pos); err != nil {
		return err
	}
	if err := v.SetAddressAt(pos, value); err != nil {
		return err
	}
	if err := v.SetKeyAt(pos, key); err != nil {
		return err
	}
	if err := v.SetChildCount(count + 1); err != nil {
		return err
	}
	return v.Sync()
}

// insertInterior attaches childAddr as a new child at pos+1, with key as
// the separator between it and the existing child at pos. The node is
// assumed not to be full.
func (t *Tree) insertInterior(addr Address, pos int, key int32, childAddr Address) error {
	v := &pageView{cache: t.cache}
	v.seat(addr)

	n, err := v.ChildCount()
	if err != nil {
		return err
	}
	oldN := int(n)

	// Relocate the trailing child pointer first, into the slot it will
	// occupy once ChildCount grows by one.
	trailing, err := v.AddressAt(oldN)
	if err != nil {
		return err
	}
	if err := v.SetAddressAt(oldN+1, trailing); err != nil {
		return err
	}

	shiftCount := oldN - (pos + 1)
	if shiftCount > 0 {
		if err := v.CopyEntries(t.scratch, pos+1, pos+2, shiftCount); err != nil {
			return err
		}
	}

	if pos < oldN {
		oldKey, err := v.KeyAt(pos)
		if err != nil {
			return err
		}
		if err := v.SetKeyAt(pos+1, oldKey); err != nil {
			return err
		}
	}

	if err := v.SetKeyAt(pos, key); err != nil {
		return err
	}
	if err := v.SetAddressAt(pos+1, -int32(childAddr)); err != nil {
		return err
	}
	if err := v.SetChildCount(n + 1); err != nil {
		return err
	}
	return v.Sync()
}

// splitNode splits the full node at addr, promoting a median key to
// parentAddress (noParent if addr is currently the root, in which case a
// new root is allocated). It returns the address the caller should treat
// as the (possibly new) parent and retry its step against.
func (t *Tree) splitNode(addr Address, parentAddress Address) (Address, error) {
	v := &pageView{cache: t.cache}
	v.seat(addr)

	leaf, err := v.IsLeaf()
	if err != nil {
		return 0, err
	}
	n, err := v.ChildCount()
	if err != nil {
		return 0, err
	}

	maxIndex := int(t.maxInteriorChildren) / 2

	sibling, err := t.allocatePage(leaf)
	if err != nil {
		return 0, err
	}
	sv := &pageView{cache: t.cache}
	sv.seat(sibling)

	siblingCount := int(n) - maxIndex
	for i := 0; i < siblingCount; i++ {
		key, err := v.KeyAt(maxIndex + i)
		if err != nil {
			return 0, err
		}
		val, err := v.AddressAt(maxIndex + i)
		if err != nil {
			return 0, err
		}
		if err := sv.SetKeyAt(i, key); err != nil {
			return 0, err
		}
		if err := sv.SetAddressAt(i, val); err != nil {
			return 0, err
		}
	}
	if err := sv.SetChildCount(int16(siblingCount)); err != nil {
		return 0, err
	}

	var medianKey int32
	if leaf {
		medianKey, err = sv.KeyAt(0)
		if err != nil {
			return 0, err
		}
		if err := v.SetChildCount(int16(maxIndex)); err != nil {
			return 0, err
		}
	} else {
		trailing, err := v.AddressAt(int(n))
		if err != nil {
			return 0, err
		}
		if err := sv.SetAddressAt(siblingCount, trailing); err != nil {
			return 0, err
		}
		maxIndex--
		medianKey, err = v.KeyAt(maxIndex)
		if err != nil {
			return 0, err
		}
		if err := v.SetChildCount(int16(maxIndex)); err != nil {
			return 0, err
		}
	}

	if err := v.Sync(); err != nil {
		return 0, err
	}
	if err := sv.Sync(); err != nil {
		return 0, err
	}

	if parentAddress == noParent {
		newRoot, err := t.allocatePage(false)
		if err != nil {
			return 0, err
		}
		rv := &pageView{cache: t.cache}
		rv.seat(newRoot)
		if err := rv.SetChildCount(1); err != nil {
			return 0, err
		}
		if err := rv.SetKeyAt(0, medianKey); err != nil {
			return 0, err
		}
		if err := rv.SetAddressAt(0, -int32(addr)); err != nil {
			return 0, err
		}
		if err := rv.SetAddressAt(1, -int32(sibling)); err != nil {
			return 0, err
		}
		if err := rv.Sync(); err != nil {
			return 0, err
		}
		t.rootAddress = newRoot
		return newRoot, nil
	}

	pv := &pageView{cache: t.cache}
	pv.seat(parentAddress)
	parentCount, err := pv.ChildCount()
	if err != nil {
		return 0, err
	}
	searchResult, err := t.searchEntries(pv, int(parentCount), medianKey)
	if err != nil {
		return 0, err
	}
	if err := t.insertInterior(parentAddress, -searchResult-1, medianKey, sibling); err != nil {
		return 0, err
	}
	return parentAddress, nil
}

// validateNode checks a page's ChildCount against the universal per-page
// ceiling (invariant 2), used by Verify before trusting any of its entries.
func (t *Tree) validateNode(leaf bool, count int) error {
	max := int(t.maxInteriorChildren)
	if count < 0 || count > max {
		return corruptPage("validateNode", fmt.Errorf("child_count %d outside [0, %d]", count, max))
	}
	return nil
}
