// Package routes provides a directed route graph between named nodes (e.g.
// airports) and functions to find the cheapest path between two of them.
package routes

import (
	"math"
	"sort"
)

// Edge represents a directed route from one node to another with a
// non-negative cost.
type Edge struct {
	From string
	To   string
	Cost float64
}

// RouteGraph represents a directed graph of routes. Nodes are identified by
// their name and only exist as endpoints of edges. The graph is append-only:
// edges can be added but never removed.
//
// A RouteGraph is not safe for concurrent mutation. Concurrent queries on a
// graph that is not being modified are safe.
type RouteGraph struct {
	// Each node is interned to a dense index in [0, NumNodes()) in the order
	// it was first seen. nexts[i] holds the indices in edges of the edges
	// leaving node i, in insertion order, and tos[e] is the index of the
	// destination of edge e.
	ids   map[string]int
	names []string
	nexts [][]int
	edges []Edge
	tos   []int
}

// NewRouteGraph returns a new empty graph.
func NewRouteGraph() *RouteGraph {
	return &RouteGraph{ids: map[string]int{}}
}

// NewRouteGraphFromEdges creates a new graph and adds the given edges in
// order. It returns an error if any edge is invalid.
func NewRouteGraphFromEdges(edges []Edge) (*RouteGraph, error) {
	g := NewRouteGraph()
	for _, e := range edges {
		if err := g.AddEdge(e.From, e.To, e.Cost); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// AddEdge adds a directed edge from origin to destination. Both nodes are
// added to the graph if they are not already known. Adding the same edge
// twice results in two parallel edges.
//
// The cost must be finite and non-negative, otherwise an *InvalidEdgeError is
// returned and the graph is left unchanged.
func (g *RouteGraph) AddEdge(origin string, destination string, cost float64) error {
	e := Edge{From: origin, To: destination, Cost: cost}
	if math.IsNaN(cost) || math.IsInf(cost, 0) || cost < 0 {
		return &InvalidEdgeError{Edge: e}
	}

	from := g.intern(origin)
	to := g.intern(destination)

	g.nexts[from] = append(g.nexts[from], len(g.edges))
	g.edges = append(g.edges, e)
	g.tos = append(g.tos, to)
	return nil
}

// HasNode returns true if id is the origin or destination of at least one
// edge of the graph.
func (g *RouteGraph) HasNode(id string) bool {
	_, ok := g.ids[id]
	return ok
}

// EdgesFrom returns the edges leaving node id in insertion order. It returns
// an *UnknownNodeError if the node is not in the graph.
func (g *RouteGraph) EdgesFrom(id string) ([]Edge, error) {
	i, ok := g.ids[id]
	if !ok {
		return nil, &UnknownNodeError{Node: id}
	}
	edges := make([]Edge, len(g.nexts[i]))
	for k, e := range g.nexts[i] {
		edges[k] = g.edges[e]
	}
	return edges, nil
}

// Nodes returns the name of all the nodes in the graph in lexicographic
// order.
func (g *RouteGraph) Nodes() []string {
	nodes := make([]string, len(g.names))
	copy(nodes, g.names)
	sort.Strings(nodes)
	return nodes
}

// NumNodes returns the number of nodes in the graph.
func (g *RouteGraph) NumNodes() int {
	return len(g.names)
}

// NumEdges returns the number of edges in the graph.
func (g *RouteGraph) NumEdges() int {
	return len(g.edges)
}

// intern returns the index of the node with the given name, registering the
// node first if needed.
func (g *RouteGraph) intern(name string) int {
	if i, ok := g.ids[name]; ok {
		return i
	}
	i := len(g.names)
	g.ids[name] = i
	g.names = append(g.names, name)
	g.nexts = append(g.nexts, nil)
	return i
}
