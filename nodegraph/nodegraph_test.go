package nodegraph

import (
	"bytes"
	"testing"
)

func TestCountThenGet(t *testing.T) {
	ng := New([]uint64{17, 19, 23}, 10)
	hashes := []uint64{1, 2, 3, 1000, 123456789}
	for _, h := range hashes {
		ng.Count(h)
	}
	for _, h := range hashes {
		if !ng.Get(h) {
			t.Fatalf("Get(%d) = false after Count(%d)", h, h)
		}
	}
}

func TestCountReturnsFalseOnRepeat(t *testing.T) {
	ng := New([]uint64{101}, 4)
	if !ng.Count(42) {
		t.Fatalf("first Count should report a new bin")
	}
	if ng.Count(42) {
		t.Fatalf("second Count of the same hash should not report a new bin")
	}
}

func TestOccupiedBinsTracksNewBins(t *testing.T) {
	ng := New([]uint64{101}, 4)
	ng.Count(1)
	ng.Count(1)
	ng.Count(2)
	if ng.OccupiedBins() != 2 {
		t.Fatalf("OccupiedBins() = %d, want 2", ng.OccupiedBins())
	}
}

func TestRoundTrip(t *testing.T) {
	ng := New([]uint64{17, 19, 23}, 10)
	for _, h := range []uint64{1, 2, 3, 1000, 123456789, 987654321} {
		ng.Count(h)
	}

	var buf bytes.Buffer
	if err := ng.Write(&buf); err != nil {
		t.Fatal(err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if got.Ksize != ng.Ksize {
		t.Fatalf("ksize mismatch: %d != %d", got.Ksize, ng.Ksize)
	}
	if got.NTables() != ng.NTables() {
		t.Fatalf("table count mismatch: %d != %d", got.NTables(), ng.NTables())
	}
	for i := range ng.tables {
		if !bytes.Equal(got.tables[i].bits, ng.tables[i].bits) {
			t.Fatalf("table %d bits not bitwise equal after round trip", i)
		}
		if got.tables[i].size != ng.tables[i].size {
			t.Fatalf("table %d size mismatch: %d != %d", i, got.tables[i].size, ng.tables[i].size)
		}
	}
}

func TestMagicBytes(t *testing.T) {
	ng := New([]uint64{17}, 4)
	var buf bytes.Buffer
	if err := ng.Write(&buf); err != nil {
		t.Fatal(err)
	}
	want := []byte{'O', 'X', 'L', 'I'}
	if !bytes.Equal(buf.Bytes()[:4], want) {
		t.Fatalf("magic = %v, want %v", buf.Bytes()[:4], want)
	}
	if buf.Bytes()[4] != 4 {
		t.Fatalf("version byte = %d, want 4", buf.Bytes()[4])
	}
	if buf.Bytes()[5] != 2 {
		t.Fatalf("ht_type byte = %d, want 2", buf.Bytes()[5])
	}
}

func TestUnion(t *testing.T) {
	a := New([]uint64{101}, 4)
	b := New([]uint64{101}, 4)
	a.Count(1)
	b.Count(2)
	if err := a.Union(b); err != nil {
		t.Fatal(err)
	}
	if !a.Get(1) || !a.Get(2) {
		t.Fatalf("union should contain both hashes")
	}
}

func TestNoFalseNegatives(t *testing.T) {
	ng := New([]uint64{53, 59, 61}, 8)
	for h := uint64(0); h < 500; h++ {
		ng.Count(h)
		if !ng.Get(h) {
			t.Fatalf("false negative at %d", h)
		}
	}
}
