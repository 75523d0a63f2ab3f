package signature

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sourmash-go/sourmash/minhash"
)

func buildTestSignature() *Signature {
	s := minhash.New(20, 10, false, 42, 0, false)
	s.AddSequence([]byte("TGCCGCCCAGCACCGGGTGACTAGGTTGAGCCATGATTAACCTGCAATGA"), false)
	return New([]Sketch{FromMinHash(s)})
}

func TestMarshalFieldOrder(t *testing.T) {
	sig := buildTestSignature()
	sig.Name = "s10+s11"
	sig.Filename = "-"

	data, err := sig.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	body := string(data)

	order := []string{"\"class\"", "\"email\"", "\"hash_function\"", "\"filename\"", "\"name\"", "\"license\"", "\"signatures\"", "\"version\""}
	last := -1
	for _, key := range order {
		idx := strings.Index(body, key)
		if idx < 0 {
			t.Fatalf("missing key %s in %s", key, body)
		}
		if idx < last {
			t.Fatalf("key %s out of order in %s", key, body)
		}
		last = idx
	}
}

func TestRoundTripJSON(t *testing.T) {
	sig := buildTestSignature()
	data, err := sig.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}

	var got Signature
	if err := got.UnmarshalJSON(data); err != nil {
		t.Fatal(err)
	}
	if !sig.Equal(&got) {
		t.Fatalf("round trip changed the signature: %+v != %+v", sig, got)
	}
}

func TestMD5SumFormat(t *testing.T) {
	sig := buildTestSignature()
	md5 := sig.Sketches[0].MD5Sum
	if len(md5) != 32 {
		t.Fatalf("md5sum length = %d, want 32", len(md5))
	}
	for _, c := range md5 {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Fatalf("md5sum contains non-lowercase-hex character: %q", md5)
		}
	}
}

func TestScaledSupersedesNumOnLoad(t *testing.T) {
	raw := `[{"class":"sourmash_signature","hash_function":"0.murmur64","license":"CC0",
	"signatures":[{"num":500,"ksize":21,"seed":42,"max_hash":1000,"mins":[1,2,3],"md5sum":"x","molecule":"DNA"}],
	"version":0.4}]`
	sigs, err := LoadSignatures(bytes.NewBufferString(raw), 0, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(sigs) != 1 {
		t.Fatalf("expected 1 signature, got %d", len(sigs))
	}
	if sigs[0].Sketches[0].Num != 0 {
		t.Fatalf("Num = %d, want 0 (max_hash should supersede)", sigs[0].Sketches[0].Num)
	}
}

func TestLoadSignaturesFiltersByKsize(t *testing.T) {
	raw := `[
		{"class":"sourmash_signature","hash_function":"0.murmur64","license":"CC0",
		 "signatures":[{"num":10,"ksize":21,"seed":42,"max_hash":0,"mins":[1],"md5sum":"a","molecule":"DNA"}],"version":0.4},
		{"class":"sourmash_signature","hash_function":"0.murmur64","license":"CC0",
		 "signatures":[{"num":10,"ksize":31,"seed":42,"max_hash":0,"mins":[2],"md5sum":"b","molecule":"DNA"}],"version":0.4}
	]`
	sigs, err := LoadSignatures(bytes.NewBufferString(raw), 31, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(sigs) != 1 || sigs[0].Sketches[0].Ksize != 31 {
		t.Fatalf("expected only ksize=31 signature, got %+v", sigs)
	}
}

func TestMoleculeDefaultsToDNA(t *testing.T) {
	raw := `[{"class":"sourmash_signature","hash_function":"0.murmur64","license":"CC0",
	"signatures":[{"num":10,"ksize":21,"seed":42,"max_hash":0,"mins":[1],"md5sum":"a","molecule":"unknown"}],"version":0.4}]`
	sigs, err := LoadSignatures(bytes.NewBufferString(raw), 0, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if sigs[0].Sketches[0].Molecule != DNA {
		t.Fatalf("expected default molecule DNA, got %s", sigs[0].Sketches[0].Molecule)
	}
}
