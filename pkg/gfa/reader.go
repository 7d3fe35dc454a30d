package gfa

import (
	"bufio"
	"io"
	"strings"

	"github.com/gfatools/getblunted/pkg/errors"
	"github.com/gfatools/getblunted/pkg/handlegraph"
)

// Read parses a GFA stream into a handle graph, an id map interning segment
// names, and an overlap map holding the parsed CIGAR of every link.
//
// Recognised line types are H (accepted, contents ignored), S and L; other lines are
// skipped. Links referencing segments that have not been declared yet are an
// error: the reader requires S lines before the L lines that use them, which
// every tool writing GFA in practice satisfies.
func Read(r io.Reader) (*handlegraph.Graph, *IncrementalIDMap, *handlegraph.OverlapMap, error) {
	graph := handlegraph.New()
	idMap := NewIncrementalIDMap()
	overlaps := handlegraph.NewOverlapMap()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 64*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Split(line, "\t")
		switch fields[0] {
		case "H":
			// Version tag only; nothing to validate beyond being a header.
		case "S":
			if len(fields) < 3 {
				return nil, nil, nil, errors.New(errors.ErrCodeMalformedInput, "line %d: S line needs a name and a sequence", lineNum)
			}
			id, err := idMap.Insert(fields[1])
			if err != nil {
				return nil, nil, nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "line %d", lineNum)
			}
			graph.CreateHandleWithID(handlegraph.NodeID(id), []byte(fields[2]))
		case "L":
			if len(fields) < 6 {
				return nil, nil, nil, errors.New(errors.ErrCodeMalformedInput, "line %d: L line needs two oriented segments and a CIGAR", lineNum)
			}
			from, err := parseOrientedSegment(idMap, fields[1], fields[2], lineNum)
			if err != nil {
				return nil, nil, nil, err
			}
			to, err := parseOrientedSegment(idMap, fields[3], fields[4], lineNum)
			if err != nil {
				return nil, nil, nil, err
			}
			alignment, err := ParseAlignment(fields[5])
			if err != nil {
				return nil, nil, nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "line %d", lineNum)
			}
			s, t := alignment.ComputeLengths()
			if s > graph.Length(from) || t > graph.Length(to) {
				return nil, nil, nil, errors.New(errors.ErrCodeOverlongOverlap,
					"line %d: overlap (%d, %d) exceeds segment length on %s -> %s", lineNum, s, t, from, to)
			}
			edge := handlegraph.Edge{From: from, To: to}
			graph.CreateEdge(from, to)
			overlaps.Insert(edge, alignment)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "read GFA")
	}
	return graph, idMap, overlaps, nil
}

func parseOrientedSegment(idMap *IncrementalIDMap, name, orient string, lineNum int) (handlegraph.Handle, error) {
	id := idMap.GetID(name)
	if id == 0 {
		return handlegraph.Handle{}, errors.New(errors.ErrCodeMalformedInput, "line %d: link references undeclared segment %q", lineNum, name)
	}
	switch orient {
	case "+":
		return handlegraph.Handle{ID: handlegraph.NodeID(id)}, nil
	case "-":
		return handlegraph.Handle{ID: handlegraph.NodeID(id), Reverse: true}, nil
	default:
		return handlegraph.Handle{}, errors.New(errors.ErrCodeMalformedInput, "line %d: orientation must be + or -, got %q", lineNum, orient)
	}
}
