package pager

import "testing"

func TestPageCacheGetBufferPullsFromStore(t *testing.T) {
	mem := NewMemoryStore()
	bs := NewByteStore(mem)
	if err := bs.WriteRun(32, make([]byte, 16)); err != nil {
		t.Fatalf("WriteRun: %v", err)
	}
	if err := bs.WriteByte(40, leafFlag); err != nil {
		t.Fatalf("WriteByte: %v", err)
	}
	c := NewPageCache(bs, 16)

	buf, err := c.GetBuffer(32)
	if err != nil {
		t.Fatalf("GetBuffer: %v", err)
	}
	if len(buf) != 16 {
		t.Fatalf("len(buf) = %d, want 16", len(buf))
	}
	if buf[8] != leafFlag {
		t.Fatalf("buf[8] = %#x, want %#x", buf[8], leafFlag)
	}
}

func TestPageCacheReturnsSameBufferIdentity(t *testing.T) {
	bs := NewByteStore(NewMemoryStore())
	c := NewPageCache(bs, 16)
	c.Install(0, make([]byte, 16))

	a, err := c.GetBuffer(0)
	if err != nil {
		t.Fatalf("GetBuffer: %v", err)
	}
	a[0] = 7
	b, err := c.GetBuffer(0)
	if err != nil {
		t.Fatalf("GetBuffer: %v", err)
	}
	if b[0] != 7 {
		t.Fatalf("second GetBuffer did not see mutation through first: got %d, want 7", b[0])
	}
}

func TestPageCacheWritebackPersistsToStore(t *testing.T) {
	bs := NewByteStore(NewMemoryStore())
	c := NewPageCache(bs, 16)
	c.Install(0, make([]byte, 16))
	buf, err := c.GetBuffer(0)
	if err != nil {
		t.Fatalf("GetBuffer: %v", err)
	}
	buf[3] = 99

	if err := c.Writeback(0); err != nil {
		t.Fatalf("Writeback: %v", err)
	}

	raw, err := bs.ReadRun(0, 16)
	if err != nil {
		t.Fatalf("ReadRun: %v", err)
	}
	if raw[3] != 99 {
		t.Fatalf("store byte 3 = %d, want 99", raw[3])
	}
}

func TestPageCacheDiscardForcesFreshRead(t *testing.T) {
	bs := NewByteStore(NewMemoryStore())
	c := NewPageCache(bs, 16)
	c.Install(0, make([]byte, 16))

	buf, err := c.GetBuffer(0)
	if err != nil {
		t.Fatalf("GetBuffer: %v", err)
	}
	buf[0] = 55
	if err := c.Writeback(0); err != nil {
		t.Fatalf("Writeback: %v", err)
	}

	c.Discard()

	reread, err := c.GetBuffer(0)
	if err != nil {
		t.Fatalf("GetBuffer after Discard: %v", err)
	}
	if reread[0] != 55 {
		t.Fatalf("reread[0] = %d, want 55 (value should survive via the store)", reread[0])
	}
}
