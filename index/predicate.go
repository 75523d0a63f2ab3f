package index

import "github.com/sourmash-go/sourmash/minhash"

// Entry is the small capability set a Predicate needs: a similarity and a
// containment estimate against a query sketch. Leaf and InternalNode each
// implement it with different math (exact vs. Nodegraph-bounded), but a
// Predicate need not know which it is holding.
type Entry interface {
	Similarity(query *minhash.Sketch) (float64, error)
	Containment(query *minhash.Sketch) (float64, error)
}

// Predicate decides whether to keep descending into (at an internal node)
// or report (at a leaf) an Entry, given a query and a threshold.
type Predicate func(entry Entry, query *minhash.Sketch, threshold float64) (bool, error)

// SimilarityAbove returns a Predicate that keeps entries whose similarity
// to the query exceeds threshold.
func SimilarityAbove() Predicate {
	return func(entry Entry, query *minhash.Sketch, threshold float64) (bool, error) {
		sim, err := entry.Similarity(query)
		if err != nil {
			return false, err
		}
		return sim > threshold, nil
	}
}

// ContainmentAbove returns a Predicate that keeps entries whose
// containment of the query exceeds threshold.
func ContainmentAbove() Predicate {
	return func(entry Entry, query *minhash.Sketch, threshold float64) (bool, error) {
		cont, err := entry.Containment(query)
		if err != nil {
			return false, err
		}
		return cont > threshold, nil
	}
}
