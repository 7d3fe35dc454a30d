// Command getblunted bluntifies GFA assembly graphs: it removes all
// CIGAR-described overlaps while preserving every two-hop walk.
package main

import (
	"os"

	"github.com/gfatools/getblunted/internal/cli"
	"github.com/gfatools/getblunted/pkg/buildinfo"
)

func main() {
	cli.SetVersion(buildinfo.Version, buildinfo.Commit, buildinfo.Date)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
