package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sourmash-go/sourmash/diag"
	"github.com/sourmash-go/sourmash/fastaio"
	"github.com/sourmash-go/sourmash/index"
	"github.com/sourmash-go/sourmash/minhash"
	"github.com/sourmash-go/sourmash/sbtconf"
	"github.com/sourmash-go/sourmash/signature"
)

var (
	flagGoMaxProcs  = runtime.NumCPU()
	flagQuiet       = false
	flagKsize       = 0
	flagScaled      = 0
	flagThreshold   = 0.08
	flagContainment = false
	flagTraverseDir = false
)

func init() {
	log.SetFlags(0)

	flag.IntVar(&flagGoMaxProcs, "p", flagGoMaxProcs,
		"The maximum number of CPUs that can be executing simultaneously.")
	flag.BoolVar(&flagQuiet, "q", flagQuiet,
		"When set, the only outputs will be matches and errors.")
	flag.IntVar(&flagKsize, "ksize", flagKsize,
		"When set, only query sketches with this k-mer size are accepted.")
	flag.IntVar(&flagScaled, "scaled", flagScaled,
		"When set, only query sketches with this scaled value are accepted.")
	flag.Float64Var(&flagThreshold, "threshold", flagThreshold,
		"The minimum similarity (or containment) to report a match.")
	flag.BoolVar(&flagContainment, "containment", flagContainment,
		"When set, search for containment instead of similarity.")
	flag.BoolVar(&flagTraverseDir, "traverse-directory", flagTraverseDir,
		"When set, directories among the databases are walked for *.sig files.")

	flag.Usage = usage
	flag.Parse()

	runtime.GOMAXPROCS(flagGoMaxProcs)
}

func main() {
	if flag.NArg() < 2 {
		flag.Usage()
	}

	if !flagQuiet {
		diag.Verbose = true
	}

	query, err := loadQuery(flag.Arg(0))
	if err != nil {
		fatalf("Could not load query '%s': %s\n", flag.Arg(0), err)
	}

	predicate := index.SimilarityAbove()
	if flagContainment {
		predicate = index.ContainmentAbove()
	}

	databases := flag.Args()[1:]
	if flagTraverseDir {
		databases, err = expandDirectories(databases)
		if err != nil {
			fatalf("%s\n", err)
		}
	}

	total := 0
	for _, db := range databases {
		matches, err := searchDatabase(db, predicate, query)
		if err != nil {
			fatalf("Could not search '%s': %s\n", db, err)
		}
		for _, leaf := range matches {
			score, err := leafScore(leaf, query)
			if err != nil {
				fatalf("Could not score match '%s': %s\n", leaf.Name, err)
			}
			fmt.Printf("%.3f  %s  (%s)\n", score, leaf.Name, db)
		}
		total += len(matches)
	}
	diag.Printf("%d matches above threshold %.3f\n", total, flagThreshold)
}

// loadQuery returns the query sketch: from the first matching signature
// in a *.sig file, or sketched on the fly from a FASTA file.
func loadQuery(fileName string) (*minhash.Sketch, error) {
	if isFasta(fileName) {
		return sketchFasta(fileName)
	}

	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sigs, err := signature.LoadSignatures(f, uint32(flagKsize), nil, uint64(flagScaled))
	if err != nil {
		return nil, err
	}
	if len(sigs) == 0 {
		return nil, fmt.Errorf("no signatures matched the query filters")
	}
	return sigs[0].Sketches[0].ToMinHash(), nil
}

func isFasta(fileName string) bool {
	trimmed := strings.TrimSuffix(fileName, ".gz")
	return strings.HasSuffix(trimmed, ".fa") || strings.HasSuffix(trimmed, ".fasta")
}

// sketchFasta builds a query sketch directly from a FASTA file, using the
// default build parameters where flags leave them unset.
func sketchFasta(fileName string) (*minhash.Sketch, error) {
	conf := *sbtconf.DefaultSBTConf
	if flagKsize != 0 {
		conf.Ksize = uint32(flagKsize)
	}
	if flagScaled != 0 {
		conf.Scaled = uint64(flagScaled)
	}
	sk := minhash.New(conf.Num, conf.Ksize, false, 42, conf.MaxHash(), false)
	sig, err := fastaio.SignatureFromFile(fileName, sk, true)
	if err != nil {
		return nil, err
	}
	diag.Printf("sketched query '%s' (%d mins)\n", sig.Name, sk.Len())
	return sk, nil
}

// expandDirectories replaces each directory in databases with every *.sig
// file below it, leaving other entries as-is.
func expandDirectories(databases []string) ([]string, error) {
	var out []string
	for _, db := range databases {
		info, err := os.Stat(db)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, db)
			continue
		}
		err = filepath.Walk(db, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !fi.IsDir() && strings.HasSuffix(p, ".sig") {
				out = append(out, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// searchDatabase searches one database, which is either an SBT descriptor
// (*.sbt.json) or a signature file searched linearly.
func searchDatabase(db string, predicate index.Predicate, query *minhash.Sketch) ([]*index.Leaf, error) {
	if strings.HasSuffix(db, ".sbt.json") {
		sbt, err := index.LoadFile(db)
		if err != nil {
			return nil, err
		}
		return sbt.Find(predicate, query, flagThreshold)
	}

	f, err := os.Open(db)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sigs, err := signature.LoadSignatures(f, uint32(flagKsize), nil, uint64(flagScaled))
	if err != nil {
		return nil, err
	}
	linear := index.NewLinear(nil)
	for _, sig := range sigs {
		name := sig.Name
		if name == "" {
			name = db
		}
		linear.Insert(index.NewLeafFromSignature(db, name, "", sig))
	}
	return linear.Find(predicate, query, flagThreshold)
}

// leafScore recomputes the exact score of a matched leaf for display.
func leafScore(leaf *index.Leaf, query *minhash.Sketch) (float64, error) {
	if flagContainment {
		return leaf.Containment(query)
	}
	return leaf.Similarity(query)
}

func usage() {
	fmt.Fprintf(os.Stderr, "\nUsage: %s [flags] query.sig database [database ...]\n",
		path.Base(os.Args[0]))
	diag.PrintFlagDefaults()
	os.Exit(1)
}

func fatalf(format string, v ...interface{}) {
	fmt.Fprintf(os.Stderr, format, v...)
	os.Exit(1)
}
