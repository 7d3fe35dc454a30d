package poa

import (
	"encoding/json"
)

// graphJSON is the cacheable wire form of an aligned graph. Paths are stored
// positionally (by input index) because path names embed run-specific node
// ids; on restore the caller's input names are rebound in order.
type graphJSON struct {
	Nodes map[int]string `json:"nodes"`
	Edges [][2]int       `json:"edges"`
	Paths [][]int        `json:"paths"`
}

// Marshal serialises the graph with paths in input order.
func (g *Graph) Marshal() ([]byte, error) {
	out := graphJSON{Nodes: make(map[int]string, len(g.Nodes))}
	for id, n := range g.Nodes {
		out.Nodes[id] = string(n.Seq)
	}
	for from, tos := range g.Out {
		for _, to := range tos {
			out.Edges = append(out.Edges, [2]int{from, to})
		}
	}
	for _, name := range g.PathOrder {
		out.Paths = append(out.Paths, g.Paths[name])
	}
	return json.Marshal(out)
}

// Unmarshal restores a graph from Marshal output, binding the positional
// paths to the given names. The name count must match the stored path count.
func Unmarshal(data []byte, names []string) (*Graph, bool) {
	var in graphJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, false
	}
	if len(in.Paths) != len(names) {
		return nil, false
	}
	g := NewGraph()
	for id, seq := range in.Nodes {
		g.Nodes[id] = &Node{ID: id, Seq: []byte(seq)}
		if id > g.nextID {
			g.nextID = id
		}
	}
	for _, e := range in.Edges {
		g.addEdge(e[0], e[1])
	}
	for i, name := range names {
		g.Paths[name] = in.Paths[i]
		g.PathOrder = append(g.PathOrder, name)
	}
	return g, true
}
