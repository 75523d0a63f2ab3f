package translate

import "testing"

func TestComplement(t *testing.T) {
	cases := map[byte]byte{'A': 'T', 'T': 'A', 'C': 'G', 'G': 'C', 'N': 'N'}
	for in, want := range cases {
		if got := Complement(in); got != want {
			t.Fatalf("Complement(%c) = %c, want %c", in, got, want)
		}
	}
}

func TestReverseComplement(t *testing.T) {
	got := string(ReverseComplement([]byte("ATGC")))
	want := "GCAT"
	if got != want {
		t.Fatalf("ReverseComplement(ATGC) = %s, want %s", got, want)
	}
}

func TestSixFramesLength(t *testing.T) {
	seq := []byte("ATGAAATTTCCCGGGTAA")
	frames := SixFrames(seq)
	if len(frames) != 6 {
		t.Fatalf("expected 6 frames, got %d", len(frames))
	}
	for i, f := range frames {
		if len(f) == 0 {
			t.Fatalf("frame %d translated to nothing", i)
		}
	}
}

func TestFrameTranslatesKnownCodons(t *testing.T) {
	got := string(frame([]byte("ATGAAATAA")))
	want := "MK" + string(StopCodon)
	if got != want {
		t.Fatalf("frame(ATGAAATAA) = %s, want %s", got, want)
	}
}

func TestFrameDiscardsTrailingPartialCodon(t *testing.T) {
	got := frame([]byte("ATGAA"))
	if len(got) != 1 {
		t.Fatalf("expected 1 complete codon translated, got %d", len(got))
	}
}

func TestValidateDNA(t *testing.T) {
	if valid, err := ValidateDNA([]byte("ACGT"), false); !valid || err != nil {
		t.Fatalf("ACGT should validate cleanly, got valid=%v err=%v", valid, err)
	}
	if valid, err := ValidateDNA([]byte("ACGR"), false); valid || err == nil {
		t.Fatalf("ACGR should fail validation without force")
	}
	if valid, err := ValidateDNA([]byte("ACGR"), true); valid || err != nil {
		t.Fatalf("ACGR with force should be invalid but errorless, got valid=%v err=%v", valid, err)
	}
}
