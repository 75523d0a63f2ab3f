package hashing

import "testing"

func TestHash64Deterministic(t *testing.T) {
	a := Hash64([]byte("ACGTACGTAC"), DefaultSeed)
	b := Hash64([]byte("ACGTACGTAC"), DefaultSeed)
	if a != b {
		t.Fatalf("Hash64 is not deterministic: %d != %d", a, b)
	}
}

func TestHash64SeedChangesOutput(t *testing.T) {
	a := Hash64([]byte("ACGTACGTAC"), 42)
	b := Hash64([]byte("ACGTACGTAC"), 43)
	if a == b {
		t.Fatalf("Hash64 produced the same value for two different seeds")
	}
}

func TestHash64DistinguishesInputs(t *testing.T) {
	a := Hash64([]byte("AAAA"), DefaultSeed)
	b := Hash64([]byte("TTTT"), DefaultSeed)
	if a == b {
		t.Fatalf("Hash64 collided on two different 4-mers (statistically implausible)")
	}
}
