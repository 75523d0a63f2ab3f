package index

import (
	"github.com/sourmash-go/sourmash/minhash"
	"github.com/sourmash-go/sourmash/storage"
)

// LinearIndex evaluates predicates against every leaf exhaustively. It is
// the correctness oracle for the SBT: for any query, predicate, and
// threshold the two must return the same result set.
type LinearIndex struct {
	Store  storage.Storage
	Leaves []*Leaf
}

// NewLinear constructs an empty LinearIndex sharing store with its leaves.
func NewLinear(store storage.Storage) *LinearIndex {
	return &LinearIndex{Store: store}
}

// Insert appends leaf to the index.
func (l *LinearIndex) Insert(leaf *Leaf) {
	l.Leaves = append(l.Leaves, leaf)
}

// Find evaluates predicate against every leaf and returns those that pass.
func (l *LinearIndex) Find(predicate Predicate, query *minhash.Sketch, threshold float64) ([]*Leaf, error) {
	var results []*Leaf
	for _, leaf := range l.Leaves {
		keep, err := predicate(leaf, query, threshold)
		if err != nil {
			return nil, err
		}
		if keep {
			results = append(results, leaf)
		}
	}
	return results, nil
}
