package pager

import (
	"encoding/binary"
	"fmt"
)

// ───────────────────────────────────────────────────────────────────────────
// pageView — a re-seatable cursor over a cached page buffer
// ───────────────────────────────────────────────────────────────────────────
//
// This is the "mutable view object that re-seats on different page
// addresses" from the design notes: a stack-allocated cursor of
// (address, cached child_count, cached leaf flag). Header fields are cached
// on the cursor and invalidated whenever the address changes, so repeated
// IsLeaf()/ChildCount() calls during a single descent step don't re-decode
// the header byte each time.

// pageView interprets a cache-owned buffer as a B-tree node.
type pageView struct {
	cache   *PageCache
	address Address

	leafValid bool
	leaf      bool
	ccValid   bool
	cc        int16
}

// seat re-points the cursor at a new address, invalidating any cached
// header fields from the previous page.
func (v *pageView) seat(addr Address) {
	if v.address == addr && (v.leafValid || v.ccValid) {
		return
	}
	v.address = addr
	v.leafValid = false
	v.ccValid = false
}

func (v *pageView) buffer() ([]byte, error) {
	buf, err := v.cache.GetBuffer(v.address)
	if err != nil {
		return nil, err
	}
	if len(buf) < headerSize {
		return nil, corruptPage("pageView", fmt.Errorf("page %d shorter than header", v.address))
	}
	return buf, nil
}

// Flags returns the raw header flags byte.
func (v *pageView) Flags() (byte, error) {
	buf, err := v.buffer()
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// SetFlags overwrites the header flags byte.
func (v *pageView) SetFlags(bits byte) error {
	buf, err := v.buffer()
	if err != nil {
		return err
	}
	buf[0] = bits
	v.leafValid = false
	return nil
}

// IsLeaf reports the LEAF bit, cached until the cursor re-seats.
func (v *pageView) IsLeaf() (bool, error) {
	if v.leafValid {
		return v.leaf, nil
	}
	raw, err := v.Flags()
	if err != nil {
		return false, err
	}
	leaf, err := decodeFlags(raw)
	if err != nil {
		return false, corruptPage("IsLeaf", fmt.Errorf("page %d: %w", v.address, err))
	}
	v.leaf = leaf
	v.leafValid = true
	return leaf, nil
}

// SetLeaf sets or clears the LEAF bit.
func (v *pageView) SetLeaf(leaf bool) error {
	var bits byte
	if leaf {
		bits = leafFlag
	}
	if err := v.SetFlags(bits); err != nil {
		return err
	}
	v.leaf = leaf
	v.leafValid = true
	return nil
}

// ChildCount returns the header's child_count field, cached until the
// cursor re-seats.
func (v *pageView) ChildCount() (int16, error) {
	if v.ccValid {
		return v.cc, nil
	}
	buf, err := v.buffer()
	if err != nil {
		return 0, err
	}
	n := int16(binary.BigEndian.Uint16(buf[1:3]))
	if n < 0 {
		return 0, corruptPage("ChildCount", fmt.Errorf("page %d: negative child_count %d", v.address, n))
	}
	v.cc = n
	v.ccValid = true
	return n, nil
}

// SetChildCount overwrites the header's child_count field.
func (v *pageView) SetChildCount(n int16) error {
	buf, err := v.buffer()
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint16(buf[1:3], uint16(n))
	v.cc = n
	v.ccValid = true
	return nil
}

// AddressAt reads the 32-bit address field of entry i.
func (v *pageView) AddressAt(i int) (int32, error) {
	buf, err := v.buffer()
	if err != nil {
		return 0, err
	}
	off := entryOffset(i)
	if off+4 > len(buf) {
		return 0, corruptPage("AddressAt", fmt.Errorf("page %d: entry %d out of range", v.address, i))
	}
	return int32(binary.BigEndian.Uint32(buf[off : off+4])), nil
}

// SetAddressAt writes the 32-bit address field of entry i.
func (v *pageView) SetAddressAt(i int, val int32) error {
	buf, err := v.buffer()
	if err != nil {
		return err
	}
	off := entryOffset(i)
	if off+4 > len(buf) {
		return corruptPage("SetAddressAt", fmt.Errorf("page %d: entry %d out of range", v.address, i))
	}
	binary.BigEndian.PutUint32(buf[off:off+4], uint32(val))
	return nil
}

// KeyAt reads the 32-bit key field of entry i.
func (v *pageView) KeyAt(i int) (int32, error) {
	buf, err := v.buffer()
	if err != nil {
		return 0, err
	}
	off := entryOffset(i) + 4
	if off+4 > len(buf) {
		return 0, corruptPage("KeyAt", fmt.Errorf("page %d: entry %d out of range", v.address, i))
	}
	return int32(binary.BigEndian.Uint32(buf[off : off+4])), nil
}

// SetKeyAt writes the 32-bit key field of entry i.
func (v *pageView) SetKeyAt(i int, key int32) error {
	buf, err := v.buffer()
	if err != nil {
		return err
	}
	off := entryOffset(i) + 4
	if off+4 > len(buf) {
		return corruptPage("SetKeyAt", fmt.Errorf("page %d: entry %d out of range", v.address, i))
	}
	binary.BigEndian.PutUint32(buf[off:off+4], uint32(key))
	return nil
}

// CopyEntries moves count 8-byte entries from srcIndex to dstIndex within
// the same page, via scratch so any overlap (shifting left or right) is
// always safe.
func (v *pageView) CopyEntries(scratch []byte, srcIndex, dstIndex, count int) error {
	if count <= 0 {
		return nil
	}
	buf, err := v.buffer()
	if err != nil {
		return err
	}
	n := count * entrySize
	if len(scratch) < n {
		return fmt.Errorf("pageView: scratch buffer too small: have %d need %d", len(scratch), n)
	}
	srcOff := entryOffset(srcIndex)
	dstOff := entryOffset(dstIndex)
	if srcOff+n > len(buf) || dstOff+n > len(buf) {
		return corruptPage("CopyEntries", fmt.Errorf("page %d: copy [%d:%d) -> [%d:%d) out of range", v.address, srcIndex, srcIndex+count, dstIndex, dstIndex+count))
	}
	copy(scratch[:n], buf[srcOff:srcOff+n])
	copy(buf[dstOff:dstOff+n], scratch[:n])
	return nil
}

// Sync writes this page's buffer back to the store.
func (v *pageView) Sync() error {
	return v.cache.Writeback(v.address)
}
