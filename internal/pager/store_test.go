package pager

import "testing"

func TestMemoryStoreGrowsOnWrite(t *testing.T) {
	m := NewMemoryStore()
	if m.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", m.Len())
	}
	if err := m.WriteAt(100, []byte{1, 2, 3}); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	if m.Len() != 103 {
		t.Fatalf("Len() = %d, want 103", m.Len())
	}
	got := make([]byte, 3)
	if err := m.ReadAt(100, got); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	want := []byte{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ReadAt(100) = %v, want %v", got, want)
		}
	}
}

func TestMemoryStoreReadPastEndFails(t *testing.T) {
	m := NewMemoryStore()
	if err := m.ReadAt(0, make([]byte, 4)); err == nil {
		t.Fatalf("ReadAt on empty store: want error, got nil")
	}
}

func TestByteStoreInt32RoundTrip(t *testing.T) {
	bs := NewByteStore(NewMemoryStore())
	if err := bs.WriteInt32(8, -42); err != nil {
		t.Fatalf("WriteInt32: %v", err)
	}
	got, err := bs.ReadInt32(8)
	if err != nil {
		t.Fatalf("ReadInt32: %v", err)
	}
	if got != -42 {
		t.Fatalf("ReadInt32(8) = %d, want -42", got)
	}
}

func TestByteStoreByteRoundTrip(t *testing.T) {
	bs := NewByteStore(NewMemoryStore())
	if err := bs.WriteByte(0, leafFlag); err != nil {
		t.Fatalf("WriteByte: %v", err)
	}
	got, err := bs.ReadByte(0)
	if err != nil {
		t.Fatalf("ReadByte: %v", err)
	}
	if got != leafFlag {
		t.Fatalf("ReadByte(0) = %#x, want %#x", got, leafFlag)
	}
}

func TestByteStoreRunRoundTrip(t *testing.T) {
	bs := NewByteStore(NewMemoryStore())
	want := []byte{9, 8, 7, 6, 5}
	if err := bs.WriteRun(16, want); err != nil {
		t.Fatalf("WriteRun: %v", err)
	}
	got, err := bs.ReadRun(16, len(want))
	if err != nil {
		t.Fatalf("ReadRun: %v", err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ReadRun = %v, want %v", got, want)
		}
	}
}

func TestByteStoreWrapsUnderlyingErrorAsStorageIO(t *testing.T) {
	bs := NewByteStore(NewMemoryStore())
	_, err := bs.ReadInt32(0)
	if err == nil {
		t.Fatalf("ReadInt32 on empty store: want error, got nil")
	}
	pe, ok := err.(*Error)
	if !ok {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if pe.Kind != KindStorageIO {
		t.Fatalf("Kind = %v, want %v", pe.Kind, KindStorageIO)
	}
}
