package pager

import (
	"encoding/binary"
	"fmt"
)

// ───────────────────────────────────────────────────────────────────────────
// RawStore / ByteStore — the byte-addressable collaborator under the tree
// ───────────────────────────────────────────────────────────────────────────
//
// RawStore is deliberately tiny: it is the seam where the resizable,
// memory-mapped storage abstraction lives in the real system. The tree never
// grows it, never reasons about its layout, and never sees it directly — it
// always goes through ByteStore, which adds the typed, big-endian helpers the
// page format needs.

// RawStore is the external byte-addressable store. Implementations are
// expected to grow on demand (the tree never does so itself) and to persist
// writes durably once Sync returns nil.
type RawStore interface {
	ReadAt(off int64, p []byte) error
	WriteAt(off int64, p []byte) error
	Sync() error
}

// ByteStore is a thin façade over a RawStore: reads/writes a single byte, a
// big-endian int32, or a contiguous run, all at absolute byte offsets. No
// tree logic lives here.
type ByteStore struct {
	raw RawStore
}

// NewByteStore wraps raw with the typed accessors the page format needs.
func NewByteStore(raw RawStore) *ByteStore {
	return &ByteStore{raw: raw}
}

// ReadByte reads a single byte at off.
func (s *ByteStore) ReadByte(off int64) (byte, error) {
	var buf [1]byte
	if err := s.raw.ReadAt(off, buf[:]); err != nil {
		return 0, storageIO("ReadByte", err)
	}
	return buf[0], nil
}

// WriteByte writes a single byte at off.
func (s *ByteStore) WriteByte(off int64, b byte) error {
	buf := [1]byte{b}
	if err := s.raw.WriteAt(off, buf[:]); err != nil {
		return storageIO("WriteByte", err)
	}
	return nil
}

// ReadInt32 reads a big-endian signed 32-bit word at off.
func (s *ByteStore) ReadInt32(off int64) (int32, error) {
	var buf [4]byte
	if err := s.raw.ReadAt(off, buf[:]); err != nil {
		return 0, storageIO("ReadInt32", err)
	}
	return int32(binary.BigEndian.Uint32(buf[:])), nil
}

// WriteInt32 writes v as a big-endian signed 32-bit word at off.
func (s *ByteStore) WriteInt32(off int64, v int32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	if err := s.raw.WriteAt(off, buf[:]); err != nil {
		return storageIO("WriteInt32", err)
	}
	return nil
}

// ReadRun reads n contiguous bytes starting at off.
func (s *ByteStore) ReadRun(off int64, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := s.raw.ReadAt(off, buf); err != nil {
		return nil, storageIO("ReadRun", err)
	}
	return buf, nil
}

// WriteRun writes p starting at off.
func (s *ByteStore) WriteRun(off int64, p []byte) error {
	if err := s.raw.WriteAt(off, p); err != nil {
		return storageIO("WriteRun", err)
	}
	return nil
}

// Sync flushes the underlying store. The tree calls this only when asked to
// by its own caller — it never fsyncs on every Put.
func (s *ByteStore) Sync() error {
	if err := s.raw.Sync(); err != nil {
		return storageIO("Sync", err)
	}
	return nil
}

// ───────────────────────────────────────────────────────────────────────────
// MemoryStore — an in-memory RawStore, used throughout the test suite
// ───────────────────────────────────────────────────────────────────────────

// MemoryStore is a RawStore backed by a growable in-memory byte slice. It
// exists to exercise the tree without a filesystem; it has no bearing on
// what the tree itself requires.
type MemoryStore struct {
	buf []byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) ensure(n int) {
	if n <= len(m.buf) {
		return
	}
	grown := make([]byte, n)
	copy(grown, m.buf)
	m.buf = grown
}

// ReadAt implements RawStore.
func (m *MemoryStore) ReadAt(off int64, p []byte) error {
	end := off + int64(len(p))
	if end > int64(len(m.buf)) {
		return fmt.Errorf("memstore: read [%d:%d) past end (len=%d)", off, end, len(m.buf))
	}
	copy(p, m.buf[off:end])
	return nil
}

// WriteAt implements RawStore, growing the backing slice as needed.
func (m *MemoryStore) WriteAt(off int64, p []byte) error {
	end := off + int64(len(p))
	m.ensure(int(end))
	copy(m.buf[off:end], p)
	return nil
}

// Sync is a no-op; MemoryStore has no durability to offer.
func (m *MemoryStore) Sync() error { return nil }

// Len reports the current size of the backing slice, mainly for tests that
// want to assert on growth.
func (m *MemoryStore) Len() int { return len(m.buf) }
