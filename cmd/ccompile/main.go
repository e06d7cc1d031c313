// Command ccompile compiles a subset of C to x86-64 assembly text.
package main

import (
	"os"

	"github.com/mna/mainer"

	"ccompile/internal/drivercmd"
)

var (
	// placeholder values, replaced on build
	version   = "{v}" // must be N.N[.N]
	buildDate = "{d}" // must be YYYY-mm-DD
)

func main() {
	c := drivercmd.Cmd{BuildVersion: version, BuildDate: buildDate}
	os.Exit(int(c.Main(os.Args, mainer.CurrentStdio())))
}
