// Package minhash implements the streaming MinHash sketch at the heart of
// sourmash-go: bottom-N and scaled selection, optional abundance tracking,
// DNA reverse-complement canonicalization, and six-frame protein
// translation. Every insertion, merge, and comparison is deterministic and
// commutative, and no operation panics on caller-supplied sequence data.
package minhash

import (
	"sort"

	"github.com/sourmash-go/sourmash/errs"
	"github.com/sourmash-go/sourmash/hashing"
	"github.com/sourmash-go/sourmash/translate"
)

// Sketch is a bounded, ordered sample of the smallest (or smallest-below-a-
// threshold) hashes seen in a k-mer stream.
//
// Num and MaxHash are mutually exclusive at runtime: whichever is non-zero
// governs the selection discipline. When both are supplied to New, MaxHash
// wins and Num is reset to zero.
type Sketch struct {
	num       uint64
	ksize     uint32
	isProtein bool
	seed      uint32
	maxHash   uint64
	track     bool

	mins   []uint64
	abunds []uint64
}

// New constructs an empty Sketch. num is the bottom-N cap (0 disables it);
// ksize is the k-mer length (for protein sketches, the nucleotide window is
// 3*ksize); maxHash is the scaled cap (0 disables it, i.e. bottom-N mode).
// When maxHash > 0, num is forced to zero: scaled mode takes precedence.
func New(num uint64, ksize uint32, isProtein bool, seed uint32, maxHash uint64, trackAbundance bool) *Sketch {
	if maxHash > 0 {
		num = 0
	}
	return &Sketch{
		num:       num,
		ksize:     ksize,
		isProtein: isProtein,
		seed:      seed,
		maxHash:   maxHash,
		track:     trackAbundance,
	}
}

func (s *Sketch) Num() uint64          { return s.num }
func (s *Sketch) Ksize() uint32        { return s.ksize }
func (s *Sketch) IsProtein() bool      { return s.isProtein }
func (s *Sketch) Seed() uint32         { return s.seed }
func (s *Sketch) MaxHash() uint64      { return s.maxHash }
func (s *Sketch) TrackAbundance() bool { return s.track }

// Mins returns the current ordered set of minimum hashes. The returned
// slice is owned by the caller; mutating it does not affect the Sketch.
func (s *Sketch) Mins() []uint64 {
	out := make([]uint64, len(s.mins))
	copy(out, s.mins)
	return out
}

// Abunds returns the abundances positionally aligned with Mins, or nil if
// abundance tracking is disabled.
func (s *Sketch) Abunds() []uint64 {
	if !s.track {
		return nil
	}
	out := make([]uint64, len(s.abunds))
	copy(out, s.abunds)
	return out
}

func (s *Sketch) Len() int { return len(s.mins) }

// bottomNActive reports whether the bottom-N discipline is in force: a cap
// is configured and scaled mode is not overriding it.
func (s *Sketch) bottomNActive() bool {
	return s.num > 0 && s.maxHash == 0
}

// AddHash inserts a single hash into the sketch, applying the scaled
// filter, repeat detection, abundance tracking, and bottom-N eviction.
func (s *Sketch) AddHash(h uint64) {
	if s.maxHash > 0 && h > s.maxHash {
		return
	}

	pos := sort.Search(len(s.mins), func(i int) bool { return s.mins[i] >= h })
	if pos < len(s.mins) && s.mins[pos] == h {
		if s.track {
			s.abunds[pos]++
		}
		return
	}

	accepted := s.maxHash > 0 || s.num == 0 || uint64(len(s.mins)) < s.num
	if !accepted {
		return
	}

	s.mins = append(s.mins, 0)
	copy(s.mins[pos+1:], s.mins[pos:])
	s.mins[pos] = h

	if s.track {
		s.abunds = append(s.abunds, 0)
		copy(s.abunds[pos+1:], s.abunds[pos:])
		s.abunds[pos] = 1
	}

	if s.bottomNActive() && uint64(len(s.mins)) > s.num {
		s.mins = s.mins[:s.num]
		if s.track {
			s.abunds = s.abunds[:s.num]
		}
	}
}

// AddWord hashes word with the sketch's seed and adds the result.
func (s *Sketch) AddWord(word []byte) {
	s.AddHash(hashing.Hash64(word, s.seed))
}

// windowSize returns the width, in input bytes, of one k-mer window: ksize
// nucleotides for DNA sketches, 3*ksize nucleotides for protein sketches
// (translation then reduces that to ksize amino acids).
func (s *Sketch) windowSize() int {
	if s.isProtein {
		return int(s.ksize) * 3
	}
	return int(s.ksize)
}

// AddSequence feeds seq into the sketch. In DNA mode it canonicalizes each
// k-mer window against its reverse complement; in protein mode it
// translates all six reading frames and adds every amino-acid k-mer
// window. force, when true, causes invalid DNA windows to be skipped
// instead of returning an error.
func (s *Sketch) AddSequence(seq []byte, force bool) error {
	up := make([]byte, len(seq))
	for i, b := range seq {
		if b >= 'a' && b <= 'z' {
			b -= 'a' - 'A'
		}
		up[i] = b
	}

	if len(up) < s.windowSize() {
		return nil
	}

	if s.isProtein {
		return s.addProteinSequence(up)
	}
	return s.addDNASequence(up, force)
}

func (s *Sketch) addDNASequence(seq []byte, force bool) error {
	k := int(s.ksize)
	for i := 0; i+k <= len(seq); i++ {
		window := seq[i : i+k]
		valid, err := translate.ValidateDNA(window, force)
		if err != nil {
			return err
		}
		if !valid {
			continue
		}
		rc := translate.ReverseComplement(window)
		if lexLess(rc, window) {
			s.AddWord(rc)
		} else {
			s.AddWord(window)
		}
	}
	return nil
}

func (s *Sketch) addProteinSequence(seq []byte) error {
	aaWindow := int(s.ksize)
	frames := translate.SixFrames(seq)
	for _, aa := range frames {
		for i := 0; i+aaWindow <= len(aa); i++ {
			s.AddWord(aa[i : i+aaWindow])
		}
	}
	return nil
}

// lexLess reports whether a is lexicographically strictly less than b.
func lexLess(a, b []byte) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// CheckCompatible returns the first compatibility mismatch between s and
// other, in the order ksize, protein/DNA, max_hash, seed, or nil if they
// may be combined.
func (s *Sketch) CheckCompatible(other *Sketch) error {
	if s.ksize != other.ksize {
		return errs.New(errs.MismatchKSizes, "ksize %d != %d", s.ksize, other.ksize)
	}
	if s.isProtein != other.isProtein {
		return errs.New(errs.MismatchDNAProt, "protein %v != %v", s.isProtein, other.isProtein)
	}
	if s.maxHash != other.maxHash {
		return errs.New(errs.MismatchMaxHash, "max_hash %d != %d", s.maxHash, other.maxHash)
	}
	if s.seed != other.seed {
		return errs.New(errs.MismatchSeed, "seed %d != %d", s.seed, other.seed)
	}
	return nil
}

// Merge combines other's hashes into s: an ordered merge summing
// abundances on overlap, truncated back to Num entries in bottom-N mode.
// Abundances are truncated in lockstep with mins.
func (s *Sketch) Merge(other *Sketch) error {
	if err := s.CheckCompatible(other); err != nil {
		return err
	}

	track := s.track && other.track
	mergedMins := make([]uint64, 0, len(s.mins)+len(other.mins))
	var mergedAbunds []uint64
	if track {
		mergedAbunds = make([]uint64, 0, len(s.mins)+len(other.mins))
	}

	i, j := 0, 0
	for i < len(s.mins) && j < len(other.mins) {
		switch {
		case s.mins[i] < other.mins[j]:
			mergedMins = append(mergedMins, s.mins[i])
			if track {
				mergedAbunds = append(mergedAbunds, abundAt(s, i))
			}
			i++
		case s.mins[i] > other.mins[j]:
			mergedMins = append(mergedMins, other.mins[j])
			if track {
				mergedAbunds = append(mergedAbunds, abundAt(other, j))
			}
			j++
		default:
			mergedMins = append(mergedMins, s.mins[i])
			if track {
				mergedAbunds = append(mergedAbunds, abundAt(s, i)+abundAt(other, j))
			}
			i++
			j++
		}
	}
	for ; i < len(s.mins); i++ {
		mergedMins = append(mergedMins, s.mins[i])
		if track {
			mergedAbunds = append(mergedAbunds, abundAt(s, i))
		}
	}
	for ; j < len(other.mins); j++ {
		mergedMins = append(mergedMins, other.mins[j])
		if track {
			mergedAbunds = append(mergedAbunds, abundAt(other, j))
		}
	}

	if s.bottomNActive() && uint64(len(mergedMins)) > s.num {
		mergedMins = mergedMins[:s.num]
		if track {
			mergedAbunds = mergedAbunds[:s.num]
		}
	}

	s.mins = mergedMins
	if track {
		s.abunds = mergedAbunds
	} else {
		s.abunds = nil
	}
	s.track = track
	return nil
}

// abundAt returns the abundance of sk.mins[i] if sk tracks abundance, or 1
// otherwise (a hash present at all has abundance at least 1).
func abundAt(sk *Sketch, i int) uint64 {
	if sk.track {
		return sk.abunds[i]
	}
	return 1
}

// CountCommon returns the number of hashes shared between s and other,
// ignoring abundances.
func (s *Sketch) CountCommon(other *Sketch) uint64 {
	var common uint64
	i, j := 0, 0
	for i < len(s.mins) && j < len(other.mins) {
		switch {
		case s.mins[i] < other.mins[j]:
			i++
		case s.mins[i] > other.mins[j]:
			j++
		default:
			common++
			i++
			j++
		}
	}
	return common
}

// Intersection returns the number of shared hashes and the denominator
// implied by merging s and other under bottom-N truncation - the
// denominator MinHash theory uses to turn a raw intersection size into a
// Jaccard estimate.
func (s *Sketch) Intersection(other *Sketch) (common uint64, denom uint64, err error) {
	if err := s.CheckCompatible(other); err != nil {
		return 0, 0, err
	}
	common = s.CountCommon(other)

	merged := s.Clone()
	if err := merged.Merge(other); err != nil {
		return 0, 0, err
	}
	return common, uint64(merged.Len()), nil
}

// Compare returns the estimated Jaccard similarity of s and other:
// |common| / max(1, denom).
func (s *Sketch) Compare(other *Sketch) (float64, error) {
	common, denom, err := s.Intersection(other)
	if err != nil {
		return 0, err
	}
	if denom < 1 {
		denom = 1
	}
	return float64(common) / float64(denom), nil
}

// Clone returns a deep copy of s.
func (s *Sketch) Clone() *Sketch {
	clone := &Sketch{
		num:       s.num,
		ksize:     s.ksize,
		isProtein: s.isProtein,
		seed:      s.seed,
		maxHash:   s.maxHash,
		track:     s.track,
	}
	clone.mins = make([]uint64, len(s.mins))
	copy(clone.mins, s.mins)
	if s.track {
		clone.abunds = make([]uint64, len(s.abunds))
		copy(clone.abunds, s.abunds)
	}
	return clone
}
