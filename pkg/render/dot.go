// Package render converts handle graphs to Graphviz DOT and rasterises them
// through go-graphviz. It backs the dot subcommand and is handy for
// eyeballing small graphs between pipeline phases.
package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/gfatools/getblunted/pkg/handlegraph"
)

// Options configures DOT conversion.
type Options struct {
	// Detailed includes sequences in node labels; otherwise only ids show.
	Detailed bool
	// MaxSeqLabel truncates displayed sequences (0 means 12).
	MaxSeqLabel int
}

// ToDOT converts a handle graph to Graphviz DOT. Nodes are boxes labelled
// with their id (and sequence when Detailed); a reversing edge end is marked
// with a tail/head annotation since DOT has no native bidirectedness.
func ToDOT(g *handlegraph.Graph, opts Options) string {
	maxLabel := opts.MaxSeqLabel
	if maxLabel == 0 {
		maxLabel = 12
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("\n")

	g.ForEachHandle(func(h handlegraph.Handle) bool {
		label := fmt.Sprintf("%d", h.ID)
		if opts.Detailed {
			seq := string(g.Sequence(h))
			if len(seq) > maxLabel {
				seq = seq[:maxLabel] + "…"
			}
			label = fmt.Sprintf("%d\n%s", h.ID, seq)
		}
		fmt.Fprintf(&buf, "  %d [label=%q];\n", h.ID, label)
		return true
	})

	buf.WriteString("\n")
	g.ForEachEdge(func(e handlegraph.Edge) bool {
		attrs := ""
		if e.From.Reverse || e.To.Reverse {
			attrs = fmt.Sprintf(" [taillabel=%q, headlabel=%q]", orientMark(e.From), orientMark(e.To))
		}
		fmt.Fprintf(&buf, "  %d -> %d%s;\n", e.From.ID, e.To.ID, attrs)
		return true
	})

	buf.WriteString("}\n")
	return buf.String()
}

func orientMark(h handlegraph.Handle) string {
	if h.Reverse {
		return "-"
	}
	return "+"
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.PNG)
}

func renderFormat(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
