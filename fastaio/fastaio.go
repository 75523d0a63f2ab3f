// Package fastaio reads FASTA files into sequence records and builds
// signatures from them, feeding each record through a MinHash sketch.
package fastaio

import (
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/TuftsBCB/io/fasta"
	"github.com/TuftsBCB/seq"

	"github.com/sourmash-go/sourmash/errs"
	"github.com/sourmash-go/sourmash/minhash"
	"github.com/sourmash-go/sourmash/signature"
)

// ReadSeq is the value sent over `chan ReadSeq` when a new sequence is
// read from a FASTA file.
type ReadSeq struct {
	Seq seq.Sequence
	Err error
}

// ReadSeqs reads a FASTA formatted file (gzipped if the name ends in
// ".gz") and returns a channel that each new sequence is sent to.
func ReadSeqs(fileName string) (chan ReadSeq, error) {
	var f io.Reader
	var err error

	f, err = os.Open(fileName)
	if err != nil {
		return nil, errs.Wrap(errs.Io, err, "opening %q", fileName)
	}
	if strings.HasSuffix(fileName, ".gz") {
		f, err = gzip.NewReader(f)
		if err != nil {
			return nil, errs.Wrap(errs.Io, err, "opening gzip %q", fileName)
		}
	}

	reader := fasta.NewReader(f)
	seqChan := make(chan ReadSeq, 200)
	go func() {
		for {
			sequence, err := reader.Read()
			if err == io.EOF {
				close(seqChan)
				break
			}
			if err != nil {
				seqChan <- ReadSeq{Err: errs.Wrap(errs.Io, err, "reading %q", fileName)}
				close(seqChan)
				break
			}
			seqChan <- ReadSeq{Seq: sequence}
		}
	}()
	return seqChan, nil
}

// SignatureFromFile feeds every sequence in fileName into sk and wraps the
// result in a Signature named after the first record. force is passed
// through to AddSequence: invalid DNA windows are skipped instead of
// failing the whole file.
func SignatureFromFile(fileName string, sk *minhash.Sketch, force bool) (*signature.Signature, error) {
	seqChan, err := ReadSeqs(fileName)
	if err != nil {
		return nil, err
	}

	name := ""
	for rs := range seqChan {
		if rs.Err != nil {
			return nil, rs.Err
		}
		if name == "" {
			name = rs.Seq.Name
		}
		if err := sk.AddSequence(rs.Seq.Bytes(), force); err != nil {
			return nil, err
		}
	}

	sig := signature.New([]signature.Sketch{signature.FromMinHash(sk)})
	sig.Name = name
	sig.Filename = fileName
	return sig, nil
}

// WriteSeqs writes records to w in FASTA format.
func WriteSeqs(w io.Writer, seqs []seq.Sequence) error {
	writer := fasta.NewWriter(w)
	for _, s := range seqs {
		if err := writer.Write(s); err != nil {
			return errs.Wrap(errs.Io, err, "writing sequence %q", s.Name)
		}
	}
	return writer.Flush()
}
