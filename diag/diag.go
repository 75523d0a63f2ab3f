// Package diag provides the verbosity-gated diagnostic printing used by the
// CLI binaries and by long-running SBT operations.
package diag

import (
	"flag"
	"fmt"
	"os"
)

// Verbose gates every print in this package. It is false by default and
// is typically wired to a -q/-verbose CLI flag.
var Verbose = false

func Print(s string) {
	if !Verbose {
		return
	}
	fmt.Fprint(os.Stderr, s)
}

func Printf(format string, v ...interface{}) {
	if !Verbose {
		return
	}
	fmt.Fprintf(os.Stderr, format, v...)
}

func Println(s string) {
	if !Verbose {
		return
	}
	fmt.Fprintln(os.Stderr, s)
}

// PrintFlagDefaults writes every registered flag's name, default, and usage
// string to stdout, for --help-style output in the CLI binaries.
func PrintFlagDefaults() {
	flag.VisitAll(func(fg *flag.Flag) {
		fmt.Printf("--%s=%q\n\t%s\n", fg.Name, fg.DefValue, fg.Usage)
	})
}
