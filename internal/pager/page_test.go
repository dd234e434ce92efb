package pager

import "testing"

func TestMaxInteriorChildren(t *testing.T) {
	cases := []struct {
		pageSize int
		want     int16
	}{
		{128, 14},
		{64, 6},
		{4096, 510},
	}
	for _, c := range cases {
		got, err := MaxInteriorChildren(c.pageSize)
		if err != nil {
			t.Fatalf("MaxInteriorChildren(%d): %v", c.pageSize, err)
		}
		if got != c.want {
			t.Fatalf("MaxInteriorChildren(%d) = %d, want %d", c.pageSize, got, c.want)
		}
	}
}

func TestMaxInteriorChildrenRejectsTinyPage(t *testing.T) {
	if _, err := MaxInteriorChildren(8); err == nil {
		t.Fatalf("MaxInteriorChildren(8): want error, got nil")
	}
}

func TestDecodeFlagsRejectsUnknownBits(t *testing.T) {
	if _, err := decodeFlags(0x80); err == nil {
		t.Fatalf("decodeFlags(0x80): want error, got nil")
	}
	leaf, err := decodeFlags(leafFlag)
	if err != nil {
		t.Fatalf("decodeFlags(leafFlag): %v", err)
	}
	if !leaf {
		t.Fatalf("decodeFlags(leafFlag) = false, want true")
	}
}
