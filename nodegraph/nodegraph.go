// Package nodegraph implements the Bloom-filter-style multi-table bit-array
// used as the internal-node summary inside an SBT: a probabilistic
// membership structure over 64-bit hashes with a documented, bit-for-bit
// reproducible on-disk binary layout.
package nodegraph

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sourmash-go/sourmash/errs"
)

const (
	magic       uint32 = 0x4f584c49 // "OXLI", read/written big-endian
	fileVersion byte   = 4
	htType      byte   = 2
)

// table is one bit-array of fixed size, stored as a packed bitmap: bit i of
// byte b corresponds to bin 8*b+i.
type table struct {
	size uint64
	bits []byte
}

func newTable(size uint64) *table {
	return &table{size: size, bits: make([]byte, (size+7)/8)}
}

func (t *table) get(bin uint64) bool {
	return t.bits[bin/8]&(1<<(bin%8)) != 0
}

// set returns true if the bit was previously clear.
func (t *table) set(bin uint64) bool {
	byteIdx := bin / 8
	mask := byte(1 << (bin % 8))
	wasSet := t.bits[byteIdx]&mask != 0
	t.bits[byteIdx] |= mask
	return !wasSet
}

// Nodegraph is a multi-table Bloom filter over 64-bit hashes. A hash is
// present iff every table has its corresponding bit set.
type Nodegraph struct {
	Ksize        uint32
	tables       []*table
	occupiedBins uint64
	uniqueKmers  uint64
}

// New constructs a Nodegraph with one table per entry in tableSizes
// (conventionally a small set of pairwise-coprime primes).
func New(tableSizes []uint64, ksize uint32) *Nodegraph {
	ng := &Nodegraph{Ksize: ksize, tables: make([]*table, len(tableSizes))}
	for i, sz := range tableSizes {
		ng.tables[i] = newTable(sz)
	}
	return ng
}

// NTables returns the number of tables.
func (ng *Nodegraph) NTables() int { return len(ng.tables) }

// TableSize returns the size of table i.
func (ng *Nodegraph) TableSize(i int) uint64 { return ng.tables[i].size }

func (ng *Nodegraph) OccupiedBins() uint64 { return ng.occupiedBins }
func (ng *Nodegraph) UniqueKmers() uint64  { return ng.uniqueKmers }

// Count records hash h as present: it sets bin h mod size in every table.
// It returns true if any table's bit was newly set (a possibly-new k-mer),
// in which case occupied_bins and unique_kmers are both incremented.
func (ng *Nodegraph) Count(h uint64) bool {
	anyNew := false
	for _, t := range ng.tables {
		bin := h % t.size
		if t.set(bin) {
			anyNew = true
		}
	}
	if anyNew {
		ng.occupiedBins++
		ng.uniqueKmers++
	}
	return anyNew
}

// Get returns true if h is present: every table has its corresponding bit
// set. False positives rise with load; false negatives never occur.
func (ng *Nodegraph) Get(h uint64) bool {
	for _, t := range ng.tables {
		if !t.get(h % t.size) {
			return false
		}
	}
	return true
}

// Union sets into ng every bit set in other, across corresponding tables.
// ng and other must have been constructed with identical table sizes.
func (ng *Nodegraph) Union(other *Nodegraph) error {
	if len(ng.tables) != len(other.tables) {
		return errs.New(errs.Internal, "nodegraph table count mismatch: %d != %d", len(ng.tables), len(other.tables))
	}
	for i, t := range ng.tables {
		ot := other.tables[i]
		if t.size != ot.size {
			return errs.New(errs.Internal, "nodegraph table %d size mismatch: %d != %d", i, t.size, ot.size)
		}
		for b := range t.bits {
			t.bits[b] |= ot.bits[b]
		}
	}
	return nil
}

// Write serializes ng in the OXLI binary format: magic, version, ht_type,
// ksize, n_tables, occupied_bins, then each table as (tablesize, packed
// bitmap), with padding bits in the final byte of each table zeroed.
func (ng *Nodegraph) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if err := binary.Write(bw, binary.BigEndian, magic); err != nil {
		return errs.Wrap(errs.Io, err, "writing magic")
	}
	if err := binary.Write(bw, binary.LittleEndian, fileVersion); err != nil {
		return errs.Wrap(errs.Io, err, "writing version")
	}
	if err := binary.Write(bw, binary.LittleEndian, htType); err != nil {
		return errs.Wrap(errs.Io, err, "writing ht_type")
	}
	if err := binary.Write(bw, binary.LittleEndian, ng.Ksize); err != nil {
		return errs.Wrap(errs.Io, err, "writing ksize")
	}
	if err := binary.Write(bw, binary.LittleEndian, uint8(len(ng.tables))); err != nil {
		return errs.Wrap(errs.Io, err, "writing n_tables")
	}
	if err := binary.Write(bw, binary.LittleEndian, ng.occupiedBins); err != nil {
		return errs.Wrap(errs.Io, err, "writing occupied_bins")
	}

	for _, t := range ng.tables {
		if err := binary.Write(bw, binary.LittleEndian, t.size); err != nil {
			return errs.Wrap(errs.Io, err, "writing table size")
		}
		padded := make([]byte, len(t.bits))
		copy(padded, t.bits)
		zeroPaddingBits(padded, t.size)
		if _, err := bw.Write(padded); err != nil {
			return errs.Wrap(errs.Io, err, "writing table bitmap")
		}
	}
	if err := bw.Flush(); err != nil {
		return errs.Wrap(errs.Io, err, "flushing nodegraph")
	}
	return nil
}

// zeroPaddingBits clears any bits in bits beyond the logical size-th bin
// (the unused high bits of the final byte).
func zeroPaddingBits(bits []byte, size uint64) {
	if size%8 == 0 {
		return
	}
	lastByte := size / 8
	validBits := size % 8
	mask := byte((1 << validBits) - 1)
	bits[lastByte] &= mask
}

// Read parses a Nodegraph from the OXLI binary format. Readers tolerate
// either a strictly-sized bitmap (ceil(tablesize/8) bytes) or one with
// trailing padding, for forward compatibility with other encoders.
func Read(r io.Reader) (*Nodegraph, error) {
	br := bufio.NewReader(r)

	var gotMagic uint32
	if err := binary.Read(br, binary.BigEndian, &gotMagic); err != nil {
		return nil, errs.Wrap(errs.Io, err, "reading magic")
	}
	if gotMagic != magic {
		return nil, errs.New(errs.Internal, "bad nodegraph magic: %#x", gotMagic)
	}

	var version, ht byte
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return nil, errs.Wrap(errs.Io, err, "reading version")
	}
	if version != fileVersion {
		return nil, errs.New(errs.Internal, "unsupported nodegraph version: %d", version)
	}
	if err := binary.Read(br, binary.LittleEndian, &ht); err != nil {
		return nil, errs.Wrap(errs.Io, err, "reading ht_type")
	}
	if ht != htType {
		return nil, errs.New(errs.Internal, "unsupported nodegraph ht_type: %d", ht)
	}

	ng := &Nodegraph{}
	if err := binary.Read(br, binary.LittleEndian, &ng.Ksize); err != nil {
		return nil, errs.Wrap(errs.Io, err, "reading ksize")
	}

	var nTables uint8
	if err := binary.Read(br, binary.LittleEndian, &nTables); err != nil {
		return nil, errs.Wrap(errs.Io, err, "reading n_tables")
	}
	if err := binary.Read(br, binary.LittleEndian, &ng.occupiedBins); err != nil {
		return nil, errs.Wrap(errs.Io, err, "reading occupied_bins")
	}

	ng.tables = make([]*table, nTables)
	for i := 0; i < int(nTables); i++ {
		var size uint64
		if err := binary.Read(br, binary.LittleEndian, &size); err != nil {
			return nil, errs.Wrap(errs.Io, err, "reading table size")
		}
		nbytes := (size + 7) / 8
		buf := make([]byte, nbytes)
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, errs.Wrap(errs.Io, err, fmt.Sprintf("reading table %d bitmap", i))
		}
		ng.tables[i] = &table{size: size, bits: buf}
	}
	return ng, nil
}
