package fastaio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sourmash-go/sourmash/minhash"
)

func writeTestFasta(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.fa")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadSeqs(t *testing.T) {
	path := writeTestFasta(t, ">s1\nTGCCGCCCAGCA\n>s2\nGTCCGCCCAGTGA\n")

	seqChan, err := ReadSeqs(path)
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for rs := range seqChan {
		if rs.Err != nil {
			t.Fatal(rs.Err)
		}
		names = append(names, rs.Seq.Name)
	}
	if len(names) != 2 {
		t.Fatalf("read %d sequences, want 2", len(names))
	}
	if names[0] != "s1" || names[1] != "s2" {
		t.Fatalf("names = %v, want [s1 s2]", names)
	}
}

func TestReadSeqsMissingFile(t *testing.T) {
	if _, err := ReadSeqs("/does/not/exist.fa"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestSignatureFromFile(t *testing.T) {
	path := writeTestFasta(t, ">s1\nTGCCGCCCAGCACCGGGTGACTAGGTTGAGCCATGATTAACCTGCAATGA\n")

	sk := minhash.New(20, 10, false, 42, 0, false)
	sig, err := SignatureFromFile(path, sk, false)
	if err != nil {
		t.Fatal(err)
	}
	if sig.Name != "s1" {
		t.Fatalf("Name = %q, want %q", sig.Name, "s1")
	}
	if sig.Filename != path {
		t.Fatalf("Filename = %q, want %q", sig.Filename, path)
	}
	if len(sig.Sketches) != 1 {
		t.Fatalf("got %d sketches, want 1", len(sig.Sketches))
	}
	if len(sig.Sketches[0].Mins) == 0 {
		t.Fatal("sketch has no mins after ingesting a sequence")
	}
}
