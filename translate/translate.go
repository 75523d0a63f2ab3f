// Package translate implements the standard codon table and six-frame
// DNA-to-protein translation used by protein-mode sketches: three forward
// frames and three on the reverse complement, with stop codons passed
// through as ordinary residues.
package translate

import "github.com/sourmash-go/sourmash/errs"

// StopCodon is the amino-acid letter a stop codon translates to.
const StopCodon = '*'

var genCode = map[string]byte{
	"ATA": 'I', "ATC": 'I', "ATT": 'I', "ATG": 'M',
	"ACA": 'T', "ACC": 'T', "ACG": 'T', "ACT": 'T',
	"AAC": 'N', "AAT": 'N', "AAA": 'K', "AAG": 'K',
	"AGC": 'S', "AGT": 'S', "AGA": 'R', "AGG": 'R',
	"CTA": 'L', "CTC": 'L', "CTG": 'L', "CTT": 'L',
	"CCA": 'P', "CCC": 'P', "CCG": 'P', "CCT": 'P',
	"CAC": 'H', "CAT": 'H', "CAA": 'Q', "CAG": 'Q',
	"CGA": 'R', "CGC": 'R', "CGG": 'R', "CGT": 'R',
	"GTA": 'V', "GTC": 'V', "GTG": 'V', "GTT": 'V',
	"GCA": 'A', "GCC": 'A', "GCG": 'A', "GCT": 'A',
	"GAC": 'D', "GAT": 'D', "GAA": 'E', "GAG": 'E',
	"GGA": 'G', "GGC": 'G', "GGG": 'G', "GGT": 'G',
	"TCA": 'S', "TCC": 'S', "TCG": 'S', "TCT": 'S',
	"TTC": 'F', "TTT": 'F', "TTA": 'L', "TTG": 'L',
	"TAC": 'Y', "TAT": 'Y', "TAA": StopCodon, "TAG": StopCodon,
	"TGC": 'C', "TGT": 'C', "TGA": StopCodon, "TGG": 'W',
}

// Complement returns the Watson-Crick complement of a single DNA base.
// U is treated as T. Any byte outside {A,C,G,T,U} is returned unchanged:
// unknowns pass through canonicalization untouched.
func Complement(b byte) byte {
	switch b {
	case 'A':
		return 'T'
	case 'T', 'U':
		return 'A'
	case 'C':
		return 'G'
	case 'G':
		return 'C'
	default:
		return b
	}
}

// ReverseComplement returns the reverse complement of seq.
func ReverseComplement(seq []byte) []byte {
	rc := make([]byte, len(seq))
	n := len(seq)
	for i, b := range seq {
		rc[n-1-i] = Complement(b)
	}
	return rc
}

// codon translates one codon (U folded to T) to its amino acid letter.
// A codon containing any byte outside {A,C,G,T,U} translates to 'X'.
func codon(c []byte) byte {
	buf := [3]byte{}
	for i, b := range c {
		if b == 'U' {
			b = 'T'
		}
		if b != 'A' && b != 'C' && b != 'G' && b != 'T' {
			return 'X'
		}
		buf[i] = b
	}
	aa, ok := genCode[string(buf[:])]
	if !ok {
		return 'X'
	}
	return aa
}

// frame translates seq starting at offset, consuming complete codons only;
// a trailing 1- or 2-byte remainder is discarded.
func frame(seq []byte) []byte {
	n := len(seq) - len(seq)%3
	out := make([]byte, 0, n/3)
	for i := 0; i+3 <= n; i += 3 {
		out = append(out, codon(seq[i:i+3]))
	}
	return out
}

// SixFrames translates seq in all six reading frames: three forward
// (offsets 0, 1, 2) and three on the reverse complement. The result order
// is forward frame 0, 1, 2, then reverse-complement frame 0, 1, 2.
func SixFrames(seq []byte) [6][]byte {
	rc := ReverseComplement(seq)
	var out [6][]byte
	for i := 0; i < 3; i++ {
		out[i] = frame(seq[i:])
		out[3+i] = frame(rc[i:])
	}
	return out
}

// ValidateDNA reports whether window consists entirely of {A,C,G,T}. When
// it does not and force is false, err is a non-nil InvalidDNA error; when
// force is true, err is nil and the caller is expected to skip the window.
func ValidateDNA(window []byte, force bool) (valid bool, err error) {
	for _, b := range window {
		if b != 'A' && b != 'C' && b != 'G' && b != 'T' {
			if force {
				return false, nil
			}
			return false, errs.New(errs.InvalidDNA, "invalid DNA window %q", window)
		}
	}
	return true, nil
}
