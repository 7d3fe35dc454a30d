package gfa

import (
	"bufio"
	"fmt"
	"io"

	"github.com/gfatools/getblunted/pkg/handlegraph"
)

// Write dumps the graph as GFA: an H line, an S line per node and an L line
// per edge. Every edge is written with a 0M overlap; a bluntified graph has
// no other kind. Edges are emitted with source-order orientation; the
// absolute order of lines is ascending by node id.
func Write(w io.Writer, graph *handlegraph.Graph) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, "H\tVN:Z:1.0"); err != nil {
		return err
	}
	var err error
	graph.ForEachHandle(func(h handlegraph.Handle) bool {
		_, err = fmt.Fprintf(bw, "S\t%d\t%s\n", h.ID, graph.Sequence(h))
		return err == nil
	})
	if err != nil {
		return err
	}
	graph.ForEachEdge(func(e handlegraph.Edge) bool {
		_, err = fmt.Fprintf(bw, "L\t%d\t%c\t%d\t%c\t0M\n",
			e.From.ID, orientChar(e.From), e.To.ID, orientChar(e.To))
		return err == nil
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}

func orientChar(h handlegraph.Handle) byte {
	if h.Reverse {
		return '-'
	}
	return '+'
}
