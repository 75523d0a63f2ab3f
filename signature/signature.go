// Package signature provides the named envelope around one or more
// MinHash sketches, along with its custom-ordered JSON codec. The codec is
// built on goccy/go-json (a struct-tag-compatible, faster replacement for
// encoding/json), but field order is controlled explicitly the same way
// under either encoder.
package signature

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"github.com/sourmash-go/sourmash/minhash"
)

// Molecule names the kind of sequence a sketch was built from.
type Molecule string

const (
	DNA     Molecule = "DNA"
	Protein Molecule = "protein"
)

// Sketch is the serialized form of a minhash.Sketch: its configuration,
// its mins/abundances, and the md5sum identity external tools rely on.
type Sketch struct {
	Num      uint64   `json:"num"`
	Ksize    uint32   `json:"ksize"`
	Seed     uint32   `json:"seed"`
	MaxHash  uint64   `json:"max_hash"`
	Mins     []uint64 `json:"mins"`
	MD5Sum   string   `json:"md5sum"`
	Abunds   []uint64 `json:"abundances,omitempty"`
	Molecule Molecule `json:"molecule"`
}

// FromMinHash converts a live minhash.Sketch into its serializable form,
// computing md5sum as specified: the lowercase hex MD5 of the decimal
// ksize followed by the decimal mins, concatenated with no separator.
func FromMinHash(s *minhash.Sketch) Sketch {
	mol := DNA
	if s.IsProtein() {
		mol = Protein
	}
	out := Sketch{
		Num:      s.Num(),
		Ksize:    s.Ksize(),
		Seed:     s.Seed(),
		MaxHash:  s.MaxHash(),
		Mins:     s.Mins(),
		Molecule: mol,
	}
	if s.TrackAbundance() {
		out.Abunds = s.Abunds()
	}
	out.MD5Sum = computeMD5(out.Ksize, out.Mins)
	return out
}

func computeMD5(ksize uint32, mins []uint64) string {
	h := md5.New()
	fmt.Fprintf(h, "%d", ksize)
	for _, m := range mins {
		fmt.Fprintf(h, "%d", m)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ToMinHash reconstructs a live minhash.Sketch from the serialized form.
// A non-zero MaxHash forces Num to zero on load: scaled mode supersedes
// bottom-N.
func (sk Sketch) ToMinHash() *minhash.Sketch {
	num := sk.Num
	if sk.MaxHash != 0 {
		num = 0
	}
	track := len(sk.Abunds) > 0
	isProtein := sk.Molecule == Protein

	s := minhash.New(num, sk.Ksize, isProtein, sk.Seed, sk.MaxHash, track)
	for i, h := range sk.Mins {
		s.AddHash(h)
		if track {
			// AddHash always sets abundance 1 on first insertion; bump to
			// the recorded value by replaying the remaining increments.
			for n := uint64(1); n < sk.Abunds[i]; n++ {
				s.AddHash(h)
			}
		}
	}
	return s
}

// Signature is the named, versioned envelope around one or more sketches.
type Signature struct {
	Class        string   `json:"class"`
	Email        string   `json:"email,omitempty"`
	HashFunction string   `json:"hash_function"`
	Filename     string   `json:"filename,omitempty"`
	Name         string   `json:"name,omitempty"`
	License      string   `json:"license"`
	Sketches     []Sketch `json:"signatures"`
	Version      float64  `json:"version"`
}

// New constructs a Signature with the documented defaults: class
// "sourmash_signature", hash_function "0.murmur64", license "CC0",
// version 0.4.
func New(sketches []Sketch) *Signature {
	return &Signature{
		Class:        "sourmash_signature",
		HashFunction: "0.murmur64",
		License:      "CC0",
		Sketches:     sketches,
		Version:      0.4,
	}
}

// Equal reports whether two signatures agree on metadata and their first
// sketches are equal (by value, including mins and md5sum).
func (s *Signature) Equal(other *Signature) bool {
	if s.Class != other.Class || s.Email != other.Email ||
		s.HashFunction != other.HashFunction || s.Filename != other.Filename ||
		s.Name != other.Name || s.License != other.License {
		return false
	}
	if len(s.Sketches) == 0 || len(other.Sketches) == 0 {
		return len(s.Sketches) == len(other.Sketches)
	}
	a, b := s.Sketches[0], other.Sketches[0]
	if a.Num != b.Num || a.Ksize != b.Ksize || a.Seed != b.Seed ||
		a.MaxHash != b.MaxHash || a.MD5Sum != b.MD5Sum || a.Molecule != b.Molecule {
		return false
	}
	if len(a.Mins) != len(b.Mins) {
		return false
	}
	for i := range a.Mins {
		if a.Mins[i] != b.Mins[i] {
			return false
		}
	}
	return true
}

// MarshalJSON emits fields in the documented order: class, email,
// hash_function, filename, name, license, signatures, version.
func (s *Signature) MarshalJSON() ([]byte, error) {
	type ordered struct {
		Class        string   `json:"class"`
		Email        string   `json:"email"`
		HashFunction string   `json:"hash_function"`
		Filename     string   `json:"filename"`
		Name         string   `json:"name"`
		License      string   `json:"license"`
		Sketches     []Sketch `json:"signatures"`
		Version      float64  `json:"version"`
	}
	return json.Marshal(ordered{
		Class:        s.Class,
		Email:        s.Email,
		HashFunction: s.HashFunction,
		Filename:     s.Filename,
		Name:         s.Name,
		License:      s.License,
		Sketches:     s.Sketches,
		Version:      s.Version,
	})
}

// UnmarshalJSON accepts "protein"/"DNA" molecule strings, defaulting any
// other value to DNA, and pairs abundances positionally with mins when
// present.
func (s *Signature) UnmarshalJSON(data []byte) error {
	type raw struct {
		Class        string      `json:"class"`
		Email        string      `json:"email"`
		HashFunction string      `json:"hash_function"`
		Filename     string      `json:"filename"`
		Name         string      `json:"name"`
		License      string      `json:"license"`
		Sketches     []rawSketch `json:"signatures"`
		Version      float64     `json:"version"`
	}
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	s.Class = r.Class
	s.Email = r.Email
	s.HashFunction = r.HashFunction
	s.Filename = r.Filename
	s.Name = r.Name
	s.License = r.License
	s.Version = r.Version
	s.Sketches = make([]Sketch, len(r.Sketches))
	for i, rs := range r.Sketches {
		s.Sketches[i] = rs.normalize()
	}
	return nil
}

// rawSketch mirrors the on-wire sketch shape before molecule/num
// normalization is applied.
type rawSketch struct {
	Num      uint64   `json:"num"`
	Ksize    uint32   `json:"ksize"`
	Seed     uint32   `json:"seed"`
	MaxHash  uint64   `json:"max_hash"`
	Mins     []uint64 `json:"mins"`
	MD5Sum   string   `json:"md5sum"`
	Abunds   []uint64 `json:"abundances"`
	Molecule string   `json:"molecule"`
}

func (rs rawSketch) normalize() Sketch {
	num := rs.Num
	if rs.MaxHash != 0 {
		num = 0
	}
	mol := DNA
	if rs.Molecule == string(Protein) {
		mol = Protein
	}
	return Sketch{
		Num:      num,
		Ksize:    rs.Ksize,
		Seed:     rs.Seed,
		MaxHash:  rs.MaxHash,
		Mins:     rs.Mins,
		MD5Sum:   rs.MD5Sum,
		Abunds:   rs.Abunds,
		Molecule: mol,
	}
}

// LoadSignatures reads a JSON array of signatures from r and returns those
// whose first sketch matches the filter: ksize == 0 means "any ksize";
// moltype == nil means "any moltype"; scaled is accepted for symmetry with
// other loaders; filtering is driven by ksize and moltype only.
func LoadSignatures(r io.Reader, ksize uint32, moltype *Molecule, scaled uint64) ([]*Signature, error) {
	var sigs []*Signature
	if err := json.NewDecoder(r).Decode(&sigs); err != nil {
		return nil, err
	}

	out := sigs[:0]
	for _, sig := range sigs {
		if len(sig.Sketches) == 0 {
			continue
		}
		first := sig.Sketches[0]
		if ksize != 0 && first.Ksize != ksize {
			continue
		}
		if moltype != nil && first.Molecule != *moltype {
			continue
		}
		out = append(out, sig)
	}
	return out, nil
}
