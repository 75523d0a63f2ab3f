package index

import (
	"github.com/sourmash-go/sourmash/diag"
	"github.com/sourmash-go/sourmash/minhash"
	"github.com/sourmash-go/sourmash/storage"
)

// cluster is one node of the intermediate tree Scaffold builds before
// placing it at canonical positions. A cluster is either a single leaf or
// the join of two sub-clusters.
type cluster struct {
	leaf        *Leaf
	left, right *cluster

	// sketch is the merged representative of every leaf below, used to
	// score candidate joins.
	sketch *minhash.Sketch
}

// Scaffold builds an SBT from a batch of leaves by pairwise clustering:
// repeatedly join the two most-similar unclustered nodes under a new
// internal node until a single root remains, then place the tree at the
// canonical array positions (root 0, children of p at d*p+1..d*p+d).
// Ties between equally-similar pairs go to the pair earliest in the
// current cluster ordering, which starts as the input leaf order and is
// therefore stable.
func Scaffold(leaves []*Leaf, d uint64, factory Factory, store storage.Storage) (*SBT, error) {
	t := New(d, factory, store)
	if len(leaves) == 0 {
		return t, nil
	}

	clusters := make([]*cluster, 0, len(leaves))
	for _, leaf := range leaves {
		sk, err := leaf.Sketch()
		if err != nil {
			return nil, err
		}
		clusters = append(clusters, &cluster{leaf: leaf, sketch: sk.Clone()})
	}

	bar := &diag.ProgressBar{Label: "scaffold", Total: uint64(len(clusters) - 1)}
	for len(clusters) > 1 {
		bi, bj, err := bestPair(clusters)
		if err != nil {
			return nil, err
		}
		merged := clusters[bi].sketch.Clone()
		if err := merged.Merge(clusters[bj].sketch); err != nil {
			return nil, err
		}
		joined := &cluster{left: clusters[bi], right: clusters[bj], sketch: merged}

		// Replace the earlier slot with the join and drop the later one,
		// keeping the remaining clusters in stable order.
		clusters[bi] = joined
		clusters = append(clusters[:bj], clusters[bj+1:]...)

		bar.Increment()
		bar.ClearAndDisplay()
	}
	bar.Done()

	if _, _, err := t.placeCluster(clusters[0], 0); err != nil {
		return nil, err
	}
	return t, nil
}

// bestPair returns the indices (i < j) of the two most-similar clusters.
// On ties the earliest pair in (i, j) order wins.
func bestPair(clusters []*cluster) (int, int, error) {
	bi, bj := 0, 1
	best := -1.0
	for i := 0; i < len(clusters); i++ {
		for j := i + 1; j < len(clusters); j++ {
			sim, err := clusters[i].sketch.Compare(clusters[j].sketch)
			if err != nil {
				return 0, 0, err
			}
			if sim > best {
				best, bi, bj = sim, i, j
			}
		}
	}
	return bi, bj, nil
}

// placeCluster writes c and its descendants into the tree at pos,
// building each internal node's Nodegraph from the hashes of every leaf
// below it. It returns the sketches of those leaves and the smallest
// cardinality among them, which becomes the node's min_n_below.
func (t *SBT) placeCluster(c *cluster, pos uint64) ([]*minhash.Sketch, uint64, error) {
	if c.leaf != nil {
		t.Leaves[pos] = c.leaf
		sk, err := c.leaf.Sketch()
		if err != nil {
			return nil, 0, err
		}
		return []*minhash.Sketch{sk}, uint64(sk.Len()), nil
	}

	kids := Children(pos, t.D)
	leftSks, leftMin, err := t.placeCluster(c.left, kids[0])
	if err != nil {
		return nil, 0, err
	}
	rightSks, rightMin, err := t.placeCluster(c.right, kids[1])
	if err != nil {
		return nil, 0, err
	}

	ng := t.Factory.NewNodegraph()
	sks := append(leftSks, rightSks...)
	for _, sk := range sks {
		for _, h := range sk.Mins() {
			ng.Count(h)
		}
	}
	minN := leftMin
	if rightMin < minN {
		minN = rightMin
	}
	t.Nodes[pos] = NewInternalNodeFromGraph("", "", minN, ng)
	return sks, minN, nil
}
