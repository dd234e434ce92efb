package pager

import (
	"errors"
	"testing"
)

func TestVerifyPassesOnFreshTree(t *testing.T) {
	tr := newTestTree(t, benchPageSize)
	for i := int32(1); i <= 30; i++ {
		if err := tr.Put(i, i+1); err != nil {
			t.Fatalf("Put(%d): %v", i, err)
		}
	}
	count, err := tr.Verify()
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if count != 30 {
		t.Fatalf("Verify() = %d, want 30", count)
	}
}

func TestVerifyDetectsOutOfRangeChildCount(t *testing.T) {
	tr := newTestTree(t, benchPageSize)
	if err := tr.Put(1, 1); err != nil {
		t.Fatalf("Put: %v", err)
	}

	v := &pageView{cache: tr.cache}
	v.seat(tr.RootAddress())
	if err := v.SetChildCount(9999); err != nil {
		t.Fatalf("SetChildCount: %v", err)
	}

	_, err := tr.Verify()
	if err == nil {
		t.Fatalf("Verify: want error for out-of-range child_count, got nil")
	}
	var pe *Error
	if !errors.As(err, &pe) {
		t.Fatalf("error chain has no *Error: %v", err)
	}
	if pe.Kind != KindCorruptPage {
		t.Fatalf("Kind = %v, want %v", pe.Kind, KindCorruptPage)
	}
}

func TestVerifyDetectsNonMonotonicKeys(t *testing.T) {
	tr := newTestTree(t, benchPageSize)
	for i := int32(1); i <= 3; i++ {
		if err := tr.Put(i, i); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	v := &pageView{cache: tr.cache}
	v.seat(tr.RootAddress())
	// Corrupt the ordering directly: swap the first two keys.
	k0, _ := v.KeyAt(0)
	k1, _ := v.KeyAt(1)
	v.SetKeyAt(0, k1)
	v.SetKeyAt(1, k0)

	if _, err := tr.Verify(); err == nil {
		t.Fatalf("Verify: want error for non-monotonic keys, got nil")
	}
}
