package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"runtime"
	"sort"

	"github.com/sourmash-go/sourmash/diag"
	"github.com/sourmash-go/sourmash/index"
	"github.com/sourmash-go/sourmash/sbtconf"
)

var (
	flagGoMaxProcs = runtime.NumCPU()
	flagQuiet      = false
	flagOutput     = ""
	flagConf       = ""
)

func init() {
	log.SetFlags(0)

	flag.IntVar(&flagGoMaxProcs, "p", flagGoMaxProcs,
		"The maximum number of CPUs that can be executing simultaneously.")
	flag.BoolVar(&flagQuiet, "quiet", flagQuiet,
		"When set, the only outputs will be errors echoed to stderr.")
	flag.StringVar(&flagOutput, "o", flagOutput,
		"When set, the rebuilt index is written to the given *.sbt.json path.")
	flag.StringVar(&flagConf, "conf", flagConf,
		"When set, fan-out and Nodegraph geometry are read from the given\n"+
			"\tconfiguration file instead of the loaded index.")

	flag.Usage = usage
	flag.Parse()

	runtime.GOMAXPROCS(flagGoMaxProcs)
}

func main() {
	if flag.NArg() != 1 {
		flag.Usage()
	}

	if !flagQuiet {
		diag.Verbose = true
	}

	sbt, err := index.LoadFile(flag.Arg(0))
	if err != nil {
		fatalf("Could not load '%s': %s\n", flag.Arg(0), err)
	}

	positions := make([]uint64, 0, len(sbt.Leaves))
	for pos := range sbt.Leaves {
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i] < positions[j] })

	leaves := make([]*index.Leaf, 0, len(positions))
	for _, pos := range positions {
		leaves = append(leaves, sbt.Leaves[pos])
	}
	diag.Printf("loaded %d leaves from '%s'\n", len(leaves), flag.Arg(0))

	d, factory := sbt.D, sbt.Factory
	if flagConf != "" {
		f, err := os.Open(flagConf)
		if err != nil {
			fatalf("Could not open '%s': %s\n", flagConf, err)
		}
		conf, err := sbtconf.LoadSBTConf(f)
		f.Close()
		if err != nil {
			fatalf("Could not parse '%s': %s\n", flagConf, err)
		}
		d = conf.D
		factory = index.Factory{
			Class:     factory.Class,
			NTables:   conf.NTables,
			TableSize: conf.TableSize,
			Ksize:     conf.Ksize,
		}
	}

	rebuilt, err := index.Scaffold(leaves, d, factory, sbt.Store)
	if err != nil {
		fatalf("Could not scaffold '%s': %s\n", flag.Arg(0), err)
	}

	if len(rebuilt.Leaves) != len(leaves) {
		fatalf("Scaffold lost leaves: %d != %d\n", len(rebuilt.Leaves), len(leaves))
	}
	diag.Printf("rebuilt index holds %d leaves\n", len(rebuilt.Leaves))

	if flagOutput != "" {
		if err := rebuilt.SaveFile(flagOutput); err != nil {
			fatalf("Could not write '%s': %s\n", flagOutput, err)
		}
		diag.Printf("wrote rebuilt index to '%s'\n", flagOutput)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "\nUsage: %s [flags] database.sbt.json\n",
		path.Base(os.Args[0]))
	diag.PrintFlagDefaults()
	os.Exit(1)
}

func fatalf(format string, v ...interface{}) {
	fmt.Fprintf(os.Stderr, format, v...)
	os.Exit(1)
}
