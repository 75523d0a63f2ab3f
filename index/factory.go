package index

import (
	"github.com/sourmash-go/sourmash/errs"
	"github.com/sourmash-go/sourmash/nodegraph"
)

// Factory describes how the SBT builds new internal nodes' Nodegraphs.
// It is parsed from the descriptor's {class, args} object, where args is
// [n_tables, table_size, ksize]: {"class": "GraphFactory",
// "args": [1, 100000, 4]} yields one table of size 100000 at ksize 4.
type Factory struct {
	Class     string
	NTables   uint64
	TableSize uint64
	Ksize     uint32
}

// NewNodegraph builds a fresh, empty Nodegraph per this factory's
// configuration.
func (f Factory) NewNodegraph() *nodegraph.Nodegraph {
	sizes := make([]uint64, f.NTables)
	for i := range sizes {
		sizes[i] = f.TableSize
	}
	return nodegraph.New(sizes, f.Ksize)
}

// ParseFactoryArgs interprets the decoded JSON args array ([]float64,
// since encoding/json numbers decode to float64) as [n_tables, table_size,
// ksize].
func ParseFactoryArgs(class string, args []float64) (Factory, error) {
	if len(args) != 3 {
		return Factory{}, errs.New(errs.Internal, "factory args must have 3 elements, got %d", len(args))
	}
	return Factory{
		Class:     class,
		NTables:   uint64(args[0]),
		TableSize: uint64(args[1]),
		Ksize:     uint32(args[2]),
	}, nil
}
