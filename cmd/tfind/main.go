// tfind - Time-range Log Finder
//
// tfind prints the lines of a log file whose timestamps fall between two
// boundaries, using binary search over byte offsets so multi-gigabyte
// files resolve in a handful of reads.
package main

import (
	"os"

	"github.com/domgalati/tfind/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
