package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gfatools/getblunted/pkg/errors"
	"github.com/gfatools/getblunted/pkg/gfa"
	"github.com/gfatools/getblunted/pkg/render"
)

// newDotCmd builds the dot subcommand: render a GFA (input or output) to
// DOT, SVG or PNG for inspection.
func newDotCmd() *cobra.Command {
	var (
		format   string
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "dot <input.gfa>",
		Short: "Render a GFA graph to Graphviz DOT, SVG or PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", args[0])
			}
			defer f.Close()

			graph, _, _, err := gfa.Read(f)
			if err != nil {
				return err
			}

			dot := render.ToDOT(graph, render.Options{Detailed: detailed})

			var data []byte
			switch strings.ToLower(format) {
			case "dot":
				data = []byte(dot)
			case "svg":
				data, err = render.RenderSVG(dot)
			case "png":
				data, err = render.RenderPNG(dot)
			default:
				return errors.New(errors.ErrCodeInvalidInput, "unsupported format %q (dot, svg, png)", format)
			}
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
			}

			if output == "" || output == "-" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "write %s", output)
			}
			printSuccess("wrote %s (%s)", output, fmt.Sprintf("%d bytes", len(data)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot, svg or png")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output path (- for stdout)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include sequences in node labels")
	return cmd
}
