package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// This is typically called by the main package during initialization with
// values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the getblunted CLI and returns an error if any command fails.
//
// The root command itself performs the bluntification; dot is the one
// subcommand. Logging defaults to info level on stderr and --verbose (-v)
// switches to debug; the logger travels through the command context.
func Execute() error {
	var verbose bool

	root := newRunCmd()
	root.Use = "get_blunted [flags] <input.gfa>"
	root.Short = "Transform an overlapped GFA into a blunt-ended one"
	root.Long = `getblunted resolves the CIGAR-described overlaps of a GFA assembly graph:
overlapped node ends are duplicated per biclique, aligned into partial-order
subgraphs and spliced back, yielding an equivalent graph in which every link
has a zero-length overlap. Every two-hop walk of the input is preserved and
no new one-hop adjacency is introduced.`
	root.Version = version
	root.SilenceUsage = true
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := charmlog.InfoLevel
		if verbose {
			level = charmlog.DebugLevel
		}
		ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
		cmd.SetContext(ctx)
	}

	root.SetVersionTemplate(fmt.Sprintf("get_blunted %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newDotCmd())

	return root.ExecuteContext(context.Background())
}
