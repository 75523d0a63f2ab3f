package index

import (
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sourmash-go/sourmash/minhash"
	"github.com/sourmash-go/sourmash/signature"
)

const (
	seqA = "TGCCGCCCAGCACCGGGTGACTAGGTTGAGCCATGATTAACCTGCAATGA"
	seqB = "GTCCGCCCAGTGAGTCAGTCAAGGATCCTCTAGAGGCCATGATTAACCTG"
	seqC = "ATTACGGGGCGCATTAGCGCAATTGGCCTTAAGGCCTTAAACGCGCGCAT"
	seqD = "ATTACGGGGCGCATTAGCGCAATTGGCCTTAAGGCCTTAAACGCGCGCAA"
)

var testFactory = Factory{Class: "GraphFactory", NTables: 1, TableSize: 100000, Ksize: 10}

func testSketch(t testing.TB, seqs ...string) *minhash.Sketch {
	t.Helper()
	sk := minhash.New(20, 10, false, 42, 0, false)
	for _, s := range seqs {
		require.NoError(t, sk.AddSequence([]byte(s), false))
	}
	return sk
}

func testLeaf(t testing.TB, name string, seqs ...string) *Leaf {
	t.Helper()
	sig := signature.New([]signature.Sketch{signature.FromMinHash(testSketch(t, seqs...))})
	sig.Name = name
	return NewLeafFromSignature("", name, "", sig)
}

func testLeaves(t testing.TB) []*Leaf {
	t.Helper()
	return []*Leaf{
		testLeaf(t, "s1", seqA),
		testLeaf(t, "s2", seqA, seqB),
		testLeaf(t, "s3", seqC),
		testLeaf(t, "s4", seqD),
	}
}

func leafNames(leaves []*Leaf) []string {
	names := make([]string, len(leaves))
	for i, l := range leaves {
		names[i] = l.Name
	}
	sort.Strings(names)
	return names
}

func TestParseFactoryArgs(t *testing.T) {
	f, err := ParseFactoryArgs("GraphFactory", []float64{1, 100000, 4})
	require.NoError(t, err)
	require.Equal(t, uint64(1), f.NTables)
	require.Equal(t, uint64(100000), f.TableSize)
	require.Equal(t, uint32(4), f.Ksize)

	_, err = ParseFactoryArgs("GraphFactory", []float64{1, 2})
	require.Error(t, err)
}

func TestScaffoldPreservesLeaves(t *testing.T) {
	leaves := testLeaves(t)
	sbt, err := Scaffold(leaves, 2, testFactory, nil)
	require.NoError(t, err)
	require.Len(t, sbt.Leaves, len(leaves))
	require.ElementsMatch(t, leafNames(leaves), leafNames(sbtLeafSlice(sbt)))
}

func sbtLeafSlice(t *SBT) []*Leaf {
	var out []*Leaf
	for _, l := range t.Leaves {
		out = append(out, l)
	}
	return out
}

// The SBT's pruned search must return exactly the leaves an exhaustive
// scan returns, for every predicate and threshold.
func TestSBTMatchesLinear(t *testing.T) {
	leaves := testLeaves(t)
	sbt, err := Scaffold(leaves, 2, testFactory, nil)
	require.NoError(t, err)

	linear := NewLinear(nil)
	for _, l := range leaves {
		linear.Insert(l)
	}

	queries := map[string]*minhash.Sketch{
		"s1":    testSketch(t, seqA),
		"s3":    testSketch(t, seqC),
		"mixed": testSketch(t, seqA, seqC),
	}
	predicates := map[string]Predicate{
		"similarity":  SimilarityAbove(),
		"containment": ContainmentAbove(),
	}

	for qname, query := range queries {
		for pname, pred := range predicates {
			for _, threshold := range []float64{0.05, 0.1, 0.5, 0.9} {
				got, err := sbt.Find(pred, query, threshold)
				require.NoError(t, err)
				want, err := linear.Find(pred, query, threshold)
				require.NoError(t, err)
				require.Equal(t, leafNames(want), leafNames(got),
					"query %s, predicate %s, threshold %v", qname, pname, threshold)
			}
		}
	}
}

func TestSBTSelfSearch(t *testing.T) {
	leaves := testLeaves(t)
	sbt, err := Scaffold(leaves, 2, testFactory, nil)
	require.NoError(t, err)

	// Searching with s1's own sketch at a high threshold must at least
	// return s1 itself (self-similarity is 1.0).
	got, err := sbt.Find(SimilarityAbove(), testSketch(t, seqA), 0.9)
	require.NoError(t, err)
	require.Contains(t, leafNames(got), "s1")
}

func TestInsertMatchesLinear(t *testing.T) {
	leaves := testLeaves(t)
	sbt := New(2, testFactory, nil)
	linear := NewLinear(nil)
	for _, l := range leaves {
		require.NoError(t, sbt.Insert(l))
		linear.Insert(l)
	}
	require.Len(t, sbt.Leaves, len(leaves))

	query := testSketch(t, seqA)
	for _, threshold := range []float64{0.1, 0.5} {
		got, err := sbt.Find(SimilarityAbove(), query, threshold)
		require.NoError(t, err)
		want, err := linear.Find(SimilarityAbove(), query, threshold)
		require.NoError(t, err)
		require.Equal(t, leafNames(want), leafNames(got), "threshold %v", threshold)
	}
}

func TestSaveFileThenLoadFile(t *testing.T) {
	leaves := testLeaves(t)
	sbt, err := Scaffold(leaves, 2, testFactory, nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "test.sbt.json")
	require.NoError(t, sbt.SaveFile(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, sbt.D, loaded.D)
	require.Len(t, loaded.Leaves, len(leaves))
	require.Len(t, loaded.Nodes, len(sbt.Nodes))

	query := testSketch(t, seqA)
	for _, threshold := range []float64{0.1, 0.5} {
		got, err := loaded.Find(SimilarityAbove(), query, threshold)
		require.NoError(t, err)
		want, err := sbt.Find(SimilarityAbove(), query, threshold)
		require.NoError(t, err)
		require.Equal(t, leafNames(want), leafNames(got), "threshold %v", threshold)
	}
}

func TestPositionArithmetic(t *testing.T) {
	require.Equal(t, []uint64{1, 2}, Children(0, 2))
	require.Equal(t, []uint64{5, 6}, Children(2, 2))

	p, ok := Parent(0, 2)
	require.False(t, ok)
	require.Equal(t, uint64(0), p)

	for _, c := range Children(2, 2) {
		p, ok := Parent(c, 2)
		require.True(t, ok)
		require.Equal(t, uint64(2), p)
	}

	kids := Children(1, 3)
	require.Equal(t, []uint64{4, 5, 6}, kids)
	for _, c := range kids {
		p, ok := Parent(c, 3)
		require.True(t, ok)
		require.Equal(t, uint64(1), p)
	}
}

func BenchmarkSBTFind(b *testing.B) {
	leaves := testLeaves(b)
	sbt, err := Scaffold(leaves, 2, testFactory, nil)
	if err != nil {
		b.Fatal(err)
	}
	query := testSketch(b, seqA)
	pred := SimilarityAbove()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := sbt.Find(pred, query, 0.1); err != nil {
			b.Fatal(err)
		}
	}
}
