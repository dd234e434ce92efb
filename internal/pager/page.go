// Package pager implements a persistent, paged B+-tree mapping 32-bit
// integer keys to non-zero 32-bit integer values, backed by a
// byte-addressable store.
//
// The storage format is a fixed-size page: an 8-byte header (flags,
// child count, reserved bytes) followed by an array of 8-byte entries
// (address, key), big-endian throughout. Leaf pages carry (value, key)
// entries; interior pages carry (child-address-negated, separator-key)
// entries plus one trailing child pointer.
package pager

import "fmt"

const (
	// headerSize is the fixed 8-byte page header: flags, child_count, reserved.
	headerSize = 8
	// entrySize is the fixed width of a packed (address, key) entry.
	entrySize = 8

	// leafFlag is the low bit of the header's flags byte.
	leafFlag byte = 1 << 0

	// Absent is the sentinel value Get returns for a missing key.
	Absent int32 = 0
)

// Address is a byte offset into the backing store, always a non-negative
// multiple of the tree's page size when it denotes a valid page.
type Address int32

// MaxInteriorChildren computes the maximum number of logical children an
// interior page of the given size can hold, per invariant 2: rounded down to
// the nearest even value, and it must fit a signed 16-bit child count.
func MaxInteriorChildren(pageSize int) (int16, error) {
	if pageSize <= headerSize {
		return 0, fmt.Errorf("pager: page size %d too small", pageSize)
	}
	raw := (pageSize-headerSize)/entrySize - 1
	if raw < 0 {
		return 0, fmt.Errorf("pager: page size %d yields negative capacity", pageSize)
	}
	if raw%2 != 0 {
		raw--
	}
	if raw > 32767 {
		return 0, fmt.Errorf("pager: page size %d yields max_interior_children %d, exceeds int16", pageSize, raw)
	}
	return int16(raw), nil
}

// entryOffset returns the byte offset, relative to the start of a page, of
// entry i's address field. The key field is 4 bytes further on.
func entryOffset(i int) int {
	return headerSize + i*entrySize
}

// decodeFlags validates the header's flags byte. Only bit 0 (LEAF) may be
// set; anything else is a corrupt page per section 7.
func decodeFlags(b byte) (leaf bool, err error) {
	if b&^leafFlag != 0 {
		return false, fmt.Errorf("flags byte 0x%02x has bits set outside LEAF", b)
	}
	return b&leafFlag != 0, nil
}
