package pager

import (
	"fmt"
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// ───────────────────────────────────────────────────────────────────────────
// MmapStore — the reference RawStore backed by a real memory-mapped file
// ───────────────────────────────────────────────────────────────────────────
//
// This is the concrete stand-in for the "resizable storage abstraction"
// section 1 names as an external collaborator. The tree only ever sees it
// through the RawStore interface; nothing below leaks into the tree's own
// code. Growth follows the same unmap -> truncate -> remap shape used by
// mmap-backed btree page stores elsewhere in the retrieval pack (the blink
// tree buffer manager mmaps its page zero the same way, growing the file
// before extending the mapping).

// MmapStore is a RawStore backed by a memory-mapped file. It grows by
// unmapping, truncating the file to the new size, and remapping.
type MmapStore struct {
	f   *os.File
	m   mmap.MMap
	len int64
}

// OpenMmapStore opens (creating if necessary) path and maps at least
// initialSize bytes of it.
func OpenMmapStore(path string, initialSize int64) (*MmapStore, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("mmapstore: open %s: %w", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmapstore: stat %s: %w", path, err)
	}
	size := st.Size()
	if size < initialSize {
		size = initialSize
	}
	if size == 0 {
		size = 4096
	}
	s := &MmapStore{f: f}
	if err := s.remap(size); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

func (s *MmapStore) remap(size int64) error {
	if s.m != nil {
		if err := s.m.Unmap(); err != nil {
			return fmt.Errorf("mmapstore: unmap: %w", err)
		}
		s.m = nil
	}
	if err := s.f.Truncate(size); err != nil {
		return fmt.Errorf("mmapstore: truncate to %d: %w", size, err)
	}
	m, err := mmap.Map(s.f, mmap.RDWR, 0)
	if err != nil {
		return fmt.Errorf("mmapstore: map: %w", err)
	}
	s.m = m
	s.len = size
	return nil
}

// Grow ensures the mapping covers at least size bytes, remapping if needed.
// The tree never calls this itself; WriteAt calls it whenever a write
// extends past the current mapping.
func (s *MmapStore) Grow(size int64) error {
	if size <= s.len {
		return nil
	}
	// Double to amortize remaps, the same way a growable slice would.
	next := s.len * 2
	if next < size {
		next = size
	}
	return s.remap(next)
}

// ReadAt implements RawStore.
func (s *MmapStore) ReadAt(off int64, p []byte) error {
	end := off + int64(len(p))
	if end > s.len {
		return fmt.Errorf("mmapstore: read [%d:%d) past mapped length %d", off, end, s.len)
	}
	copy(p, s.m[off:end])
	return nil
}

// WriteAt implements RawStore. A write that extends past the current
// length first grows the mapping through Grow.
func (s *MmapStore) WriteAt(off int64, p []byte) error {
	end := off + int64(len(p))
	if end > s.len {
		if err := s.Grow(end); err != nil {
			return err
		}
	}
	copy(s.m[off:end], p)
	return nil
}

// Sync flushes the mapping to disk.
func (s *MmapStore) Sync() error {
	if err := s.m.Flush(); err != nil {
		return fmt.Errorf("mmapstore: flush: %w", err)
	}
	return nil
}

// Close unmaps and closes the backing file.
func (s *MmapStore) Close() error {
	if s.m != nil {
		if err := s.m.Unmap(); err != nil {
			s.f.Close()
			return fmt.Errorf("mmapstore: unmap: %w", err)
		}
	}
	return s.f.Close()
}

// Len reports the current mapped length.
func (s *MmapStore) Len() int64 { return s.len }
