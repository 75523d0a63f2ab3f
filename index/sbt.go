package index

import (
	"math"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/sourmash-go/sourmash/errs"
	"github.com/sourmash-go/sourmash/minhash"
	"github.com/sourmash-go/sourmash/storage"
)

// SBT is a d-ary Sequence Bloom Tree: a tree of InternalNodes and Leaves
// addressed by implicit array position, with no explicit parent/child
// pointers. Root is position 0; children of p are d*p+1 .. d*p+d; parent
// of p>0 is (p-1)/d. A position holds either an internal node or a leaf,
// never both.
type SBT struct {
	D       uint64
	Store   storage.Storage
	Factory Factory

	Nodes  map[uint64]*InternalNode
	Leaves map[uint64]*Leaf
}

// New constructs an empty SBT with fan-out d.
func New(d uint64, factory Factory, store storage.Storage) *SBT {
	return &SBT{
		D:       d,
		Store:   store,
		Factory: factory,
		Nodes:   make(map[uint64]*InternalNode),
		Leaves:  make(map[uint64]*Leaf),
	}
}

// Parent returns the position of p's parent and whether p has one (the
// root, position 0, does not).
func Parent(p, d uint64) (uint64, bool) {
	if p == 0 {
		return 0, false
	}
	return (p - 1) / d, true
}

// Children returns the d child positions of p.
func Children(p, d uint64) []uint64 {
	kids := make([]uint64, d)
	for i := uint64(0); i < d; i++ {
		kids[i] = d*p + 1 + i
	}
	return kids
}

// --- JSON descriptor ---------------------------------------------------

type nodeMeta struct {
	Filename string `json:"filename"`
	Name     string `json:"name"`
	Metadata struct {
		MinNBelow uint64 `json:"min_n_below"`
	} `json:"metadata"`
}

type leafMeta struct {
	Filename string `json:"filename"`
	Name     string `json:"name"`
	Metadata string `json:"metadata"`
}

type factoryDescriptor struct {
	Class string    `json:"class"`
	Args  []float64 `json:"args"`
}

type sbtDescriptor struct {
	D       uint64              `json:"d"`
	Version float64             `json:"version"`
	Storage storage.Info        `json:"storage"`
	Factory factoryDescriptor   `json:"factory"`
	Nodes   map[string]nodeMeta `json:"nodes"`
	Leaves  map[string]leafMeta `json:"leaves"`
}

// Load parses an SBT descriptor (the contents of a *.sbt.json file) and
// reconstructs the tree. baseDir is the directory containing the
// descriptor file; it is combined with storage.args["path"] to resolve
// on-disk blobs.
func Load(data []byte, baseDir string) (*SBT, error) {
	var desc sbtDescriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, errs.Wrap(errs.Io, err, "parsing SBT descriptor")
	}

	store, err := storage.FromInfo(desc.Storage, baseDir)
	if err != nil {
		return nil, err
	}

	factory, err := ParseFactoryArgs(desc.Factory.Class, desc.Factory.Args)
	if err != nil {
		return nil, err
	}

	sbt := New(desc.D, factory, store)

	for posStr, nm := range desc.Nodes {
		pos, err := parsePosition(posStr)
		if err != nil {
			return nil, err
		}
		sbt.Nodes[pos] = NewInternalNode(nm.Filename, nm.Name, nm.Metadata.MinNBelow, store)
	}
	for posStr, lm := range desc.Leaves {
		pos, err := parsePosition(posStr)
		if err != nil {
			return nil, err
		}
		sbt.Leaves[pos] = NewLeaf(lm.Filename, lm.Name, lm.Metadata, store)
	}
	return sbt, nil
}

func parsePosition(s string) (uint64, error) {
	p, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errs.Wrap(errs.ParseInt, err, "parsing SBT position %q", s)
	}
	return p, nil
}

// --- search --------------------------------------------------------------

// Find performs a stack-based DFS from the root, pruning at internal nodes
// where predicate returns false and collecting leaves where it returns
// true. Traversal order is unspecified; the result set is independent of
// it.
func (t *SBT) Find(predicate Predicate, query *minhash.Sketch, threshold float64) ([]*Leaf, error) {
	var results []*Leaf
	visited := make(map[uint64]bool)
	stack := []uint64{0}

	for len(stack) > 0 {
		pos := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[pos] {
			continue
		}
		visited[pos] = true

		if leaf, ok := t.Leaves[pos]; ok {
			keep, err := predicate(leaf, query, threshold)
			if err != nil {
				return nil, err
			}
			if keep {
				results = append(results, leaf)
			}
			continue
		}

		node, ok := t.Nodes[pos]
		if !ok {
			continue
		}
		keep, err := predicate(node, query, threshold)
		if err != nil {
			return nil, err
		}
		if !keep {
			continue
		}
		stack = append(stack, Children(pos, t.D)...)
	}
	return results, nil
}

// --- insertion -----------------------------------------------------------

// Insert adds leaf at the first free position, then rebuilds the
// Nodegraphs and min_n_below of every ancestor by OR-ing in the new
// leaf's hashes. When the free position's parent slot holds a leaf, that
// leaf is pushed down: a fresh internal node takes its position and both
// leaves become its children.
func (t *SBT) Insert(leaf *Leaf) error {
	sketch, err := leaf.Sketch()
	if err != nil {
		return err
	}

	if len(t.Nodes) == 0 && len(t.Leaves) == 0 {
		t.Leaves[0] = leaf
		return nil
	}

	pos := t.nextFreePos()
	parent, _ := Parent(pos, t.D)

	if occupant, isLeaf := t.Leaves[parent]; isLeaf {
		occupantSketch, err := occupant.Sketch()
		if err != nil {
			return err
		}
		delete(t.Leaves, parent)
		t.Nodes[parent] = NewInternalNodeFromGraph("", "", math.MaxUint64, t.Factory.NewNodegraph())

		kids := Children(parent, t.D)
		t.Leaves[kids[0]] = occupant
		t.Leaves[kids[1]] = leaf
		if err := t.updateAncestors(kids[0], occupantSketch); err != nil {
			return err
		}
		return t.updateAncestors(kids[1], sketch)
	}

	// pos is the smallest free position, so its parent is occupied; the
	// leaf case was handled above, leaving an internal node here.
	t.Leaves[pos] = leaf
	return t.updateAncestors(pos, sketch)
}

// nextFreePos returns the smallest position held by neither an internal
// node nor a leaf.
func (t *SBT) nextFreePos() uint64 {
	for pos := uint64(0); ; pos++ {
		if _, ok := t.Nodes[pos]; ok {
			continue
		}
		if _, ok := t.Leaves[pos]; ok {
			continue
		}
		return pos
	}
}

// updateAncestors walks from pos up to the root, OR-ing sketch's hashes
// into every ancestor's Nodegraph and tightening min_n_below.
func (t *SBT) updateAncestors(pos uint64, sketch *minhash.Sketch) error {
	p, ok := Parent(pos, t.D)
	for ok {
		node, exists := t.Nodes[p]
		if !exists {
			return errs.New(errs.Internal, "missing internal node at position %d", p)
		}
		ng, err := node.Nodegraph()
		if err != nil {
			return err
		}
		for _, h := range sketch.Mins() {
			ng.Count(h)
		}
		if card := uint64(sketch.Len()); card < node.MinNBelow {
			node.MinNBelow = card
		}
		p, ok = Parent(p, t.D)
	}
	return nil
}
