// Package index implements the tree-shaped search structures over
// sketches: lazily-loaded Leaf and InternalNode handles, the d-ary
// Sequence Bloom Tree (SBT) that summarizes and prunes over them, and a
// LinearIndex that evaluates the same predicates exhaustively as a
// correctness oracle. Cyclic back-references are avoided entirely: nodes
// hold positions and a shared Storage handle, never pointers to each
// other.
package index

import (
	"bytes"
	"sync"

	"github.com/sourmash-go/sourmash/errs"
	"github.com/sourmash-go/sourmash/minhash"
	"github.com/sourmash-go/sourmash/nodegraph"
	"github.com/sourmash-go/sourmash/signature"
	"github.com/sourmash-go/sourmash/storage"
)

// Leaf is a lazy handle to a Signature stored in a Storage. The payload is
// loaded once, on first access, and never invalidated.
type Leaf struct {
	Filename string
	Name     string
	Metadata string

	store storage.Storage

	once sync.Once
	sig  *signature.Signature
	err  error
}

// NewLeaf returns a Leaf that will load its Signature from store on first
// access.
func NewLeaf(filename, name, metadata string, store storage.Storage) *Leaf {
	return &Leaf{Filename: filename, Name: name, Metadata: metadata, store: store}
}

// NewLeafFromSignature returns a Leaf whose cache is pre-filled with sig,
// for leaves built in memory (e.g. during Scaffold) before they are ever
// saved to a Storage.
func NewLeafFromSignature(filename, name, metadata string, sig *signature.Signature) *Leaf {
	l := &Leaf{Filename: filename, Name: name, Metadata: metadata, sig: sig}
	l.once.Do(func() {})
	return l
}

// Signature returns the leaf's Signature, loading it from Storage on the
// first call.
func (l *Leaf) Signature() (*signature.Signature, error) {
	l.once.Do(func() {
		if l.sig != nil {
			return
		}
		if l.store == nil {
			l.err = errs.New(errs.Internal, "leaf %q has no storage and no cached signature", l.Filename)
			return
		}
		data, err := l.store.Load(l.Filename)
		if err != nil {
			l.err = err
			return
		}
		sig := &signature.Signature{}
		if err := sig.UnmarshalJSON(data); err != nil {
			l.err = errs.Wrap(errs.Io, err, "parsing signature %q", l.Filename)
			return
		}
		l.sig = sig
	})
	return l.sig, l.err
}

// Sketch returns the leaf's first sketch.
func (l *Leaf) Sketch() (*minhash.Sketch, error) {
	sig, err := l.Signature()
	if err != nil {
		return nil, err
	}
	if len(sig.Sketches) == 0 {
		return nil, errs.New(errs.Internal, "signature %q has no sketches", l.Filename)
	}
	return sig.Sketches[0].ToMinHash(), nil
}

// Similarity returns the Jaccard similarity of this leaf's sketch against
// query, the exact (not estimated) computation used at the leaves of a
// search.
func (l *Leaf) Similarity(query *minhash.Sketch) (float64, error) {
	sk, err := l.Sketch()
	if err != nil {
		return 0, err
	}
	return sk.Compare(query)
}

// Containment returns count_common(this, query) / |this.mins|.
func (l *Leaf) Containment(query *minhash.Sketch) (float64, error) {
	sk, err := l.Sketch()
	if err != nil {
		return 0, err
	}
	if sk.Len() == 0 {
		return 0, nil
	}
	common, _, err := sk.Intersection(query)
	if err != nil {
		return 0, err
	}
	return float64(common) / float64(sk.Len()), nil
}

// InternalNode is a lazy handle to a Nodegraph stored in a Storage, plus
// min_n_below: the minimum sketch cardinality among leaves in its subtree,
// used to bound the similarity estimate at this node.
type InternalNode struct {
	Filename  string
	Name      string
	MinNBelow uint64

	store storage.Storage

	once sync.Once
	ng   *nodegraph.Nodegraph
	err  error
}

// NewInternalNode returns an InternalNode that will load its Nodegraph
// from store on first access.
func NewInternalNode(filename, name string, minNBelow uint64, store storage.Storage) *InternalNode {
	return &InternalNode{Filename: filename, Name: name, MinNBelow: minNBelow, store: store}
}

// NewInternalNodeFromGraph returns an InternalNode whose cache is
// pre-filled with ng, for nodes built in memory during Insert/Scaffold.
func NewInternalNodeFromGraph(filename, name string, minNBelow uint64, ng *nodegraph.Nodegraph) *InternalNode {
	n := &InternalNode{Filename: filename, Name: name, MinNBelow: minNBelow, ng: ng}
	n.once.Do(func() {})
	return n
}

// Nodegraph returns the node's Nodegraph, loading it from Storage on the
// first call.
func (n *InternalNode) Nodegraph() (*nodegraph.Nodegraph, error) {
	n.once.Do(func() {
		if n.ng != nil {
			return
		}
		if n.store == nil {
			n.err = errs.New(errs.Internal, "internal node %q has no storage and no cached nodegraph", n.Filename)
			return
		}
		data, err := n.store.Load(n.Filename)
		if err != nil {
			n.err = err
			return
		}
		ng, err := nodegraph.Read(bytes.NewReader(data))
		if err != nil {
			n.err = err
			return
		}
		n.ng = ng
	})
	return n.ng, n.err
}

// Similarity estimates this node's similarity against a leaf query: an
// overestimate (m / min_n_below) chosen so the estimator never prunes a
// branch that actually contains a match.
func (n *InternalNode) Similarity(query *minhash.Sketch) (float64, error) {
	ng, err := n.Nodegraph()
	if err != nil {
		return 0, err
	}
	m := countMatches(ng, query)
	denom := n.MinNBelow
	if denom < 1 {
		denom = 1
	}
	return float64(m) / float64(denom), nil
}

// Containment estimates this node's containment of query: m / |query.mins|,
// exact because the Nodegraph has no false negatives (false positives only
// inflate m, so this also never over-prunes).
func (n *InternalNode) Containment(query *minhash.Sketch) (float64, error) {
	ng, err := n.Nodegraph()
	if err != nil {
		return 0, err
	}
	if query.Len() == 0 {
		return 0, nil
	}
	m := countMatches(ng, query)
	return float64(m) / float64(query.Len()), nil
}

func countMatches(ng *nodegraph.Nodegraph, query *minhash.Sketch) uint64 {
	var m uint64
	for _, h := range query.Mins() {
		if ng.Get(h) {
			m++
		}
	}
	return m
}
