package pager

import (
	"fmt"
	"math"
)

// ───────────────────────────────────────────────────────────────────────────
// Verify — a recursive integrity walk over the whole tree
// ───────────────────────────────────────────────────────────────────────────
//
// Grounded on the teacher's InspectPage/PageInfo walk in
// internal/storage/pager/inspect.go, which surfaces page-level facts for
// diagnostics; this does the same traversal but turns every violation into
// a KindCorruptPage error instead of a report, since nothing else in this
// package tolerates a corrupt page once caught.

// Verify walks the tree from the root and checks every invariant the page
// format relies on: valid flags, in-range child counts, strictly
// monotonic keys within a node, and subtree key ranges that are consistent
// with their parent's separators. It returns the total number of keys
// found in leaves, which should equal Size().
func (t *Tree) Verify() (int, error) {
	count, _, _, err := t.verifyNode(t.rootAddress, math.MinInt64, math.MaxInt64)
	if err != nil {
		return 0, fmt.Errorf("pager: Verify: %w", err)
	}
	return count, nil
}

// verifyNode checks the subtree rooted at addr, whose keys must all fall
// within [lowInclusive, highExclusive), and returns the number of leaf
// keys in that subtree along with the minimum and maximum keys it holds.
func (t *Tree) verifyNode(addr Address, lowInclusive, highExclusive int64) (count int, min, max int64, err error) {
	v := &pageView{cache: t.cache}
	v.seat(addr)

	leaf, err := v.IsLeaf()
	if err != nil {
		return 0, 0, 0, err
	}
	n, err := v.ChildCount()
	if err != nil {
		return 0, 0, 0, err
	}
	if err := t.validateNode(leaf, int(n)); err != nil {
		return 0, 0, 0, err
	}

	if leaf {
		return t.verifyLeaf(v, int(n), addr, lowInclusive, highExclusive)
	}
	return t.verifyInterior(v, int(n), addr, lowInclusive, highExclusive)
}

func (t *Tree) verifyLeaf(v *pageView, n int, addr Address, lowInclusive, highExclusive int64) (count int, min, max int64, err error) {
	if n == 0 {
		return 0, 0, 0, nil
	}
	min = math.MaxInt64
	max = math.MinInt64
	var prev int64 = math.MinInt64
	for i := 0; i < n; i++ {
		key, err := v.KeyAt(i)
		if err != nil {
			return 0, 0, 0, err
		}
		val, err := v.AddressAt(i)
		if err != nil {
			return 0, 0, 0, err
		}
		if val == Absent {
			return 0, 0, 0, corruptPage("Verify", fmt.Errorf("page %d entry %d: stored value is Absent", addr, i))
		}
		k64 := int64(key)
		if i > 0 && k64 <= prev {
			return 0, 0, 0, corruptPage("Verify", fmt.Errorf("page %d: keys not strictly increasing at entry %d", addr, i))
		}
		if k64 < lowInclusive || k64 >= highExclusive {
			return 0, 0, 0, corruptPage("Verify", fmt.Errorf("page %d entry %d: key %d outside parent bound [%d, %d)", addr, i, key, lowInclusive, highExclusive))
		}
		prev = k64
		if k64 < min {
			min = k64
		}
		if k64 > max {
			max = k64
		}
	}
	return n, min, max, nil
}

// verifyInterior walks an interior node with n separator keys and n+1
// children: child i (i < n) must hold only keys < key[i]; the trailing
// child n holds only keys >= key[n-1].
func (t *Tree) verifyInterior(v *pageView, n int, addr Address, lowInclusive, highExclusive int64) (count int, min, max int64, err error) {
	if n < 1 {
		return 0, 0, 0, corruptPage("Verify", fmt.Errorf("page %d: interior node has %d separator keys, need at least 1", addr, n))
	}

	min = math.MaxInt64
	max = math.MinInt64
	total := 0
	childLow := lowInclusive
	var prevKey int64 = math.MinInt64

	for i := 0; i <= n; i++ {
		childAddr, err := t.childAt(v, i)
		if err != nil {
			return 0, 0, 0, err
		}

		childHigh := highExclusive
		hasKey := i < n
		var key int64
		if hasKey {
			k, err := v.KeyAt(i)
			if err != nil {
				return 0, 0, 0, err
			}
			key = int64(k)
			if i > 0 && key <= prevKey {
				return 0, 0, 0, corruptPage("Verify", fmt.Errorf("page %d: separator keys not strictly increasing at entry %d", addr, i))
			}
			prevKey = key
			childHigh = key
		}

		childCount, childMin, childMax, err := t.verifyNode(childAddr, childLow, childHigh)
		if err != nil {
			return 0, 0, 0, err
		}
		if childCount > 0 {
			if childMin < min {
				min = childMin
			}
			if childMax > max {
				max = childMax
			}
		}
		total += childCount

		if hasKey {
			childLow = key
		}
	}
	return total, min, max, nil
}
