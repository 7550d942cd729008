// Package paths provides the representation of a route found in a route
// graph: the ordered sequence of nodes from source to destination and its
// total cost.
package paths

import (
	"math"
	"strconv"
	"strings"
)

// Path represents the result of a path query between two nodes.
//
// A Path is either found or unreachable:
//
//   - Found: at least one node, the source first and the destination last,
//     with a finite non-negative cost. A path from a node to itself has a
//     single node and a cost of 0.
//   - Unreachable: no nodes and an infinite cost.
//
// The zero value is not a valid Path; use New or Unreachable.
type Path struct {
	nodes []string
	cost  float64
}

// New instantiates and returns a new found Path with the given cost and
// nodes. The nodes slice is copied.
func New(cost float64, nodes ...string) Path {
	p := Path{nodes: make([]string, len(nodes)), cost: cost}
	copy(p.nodes, nodes)
	return p
}

// Unreachable returns the Path that signals that no path exists between two
// nodes.
func Unreachable() Path {
	return Path{cost: math.Inf(1)}
}

// Found returns true if the path connects its source to its destination.
func (p Path) Found() bool {
	return len(p.nodes) > 0
}

// Cost returns the total cost of the path, or +Inf if the path is
// unreachable.
func (p Path) Cost() float64 {
	return p.cost
}

// Length returns the length of the path in terms of nodes.
func (p Path) Length() int {
	return len(p.nodes)
}

// Hops returns the number of edges in the path.
func (p Path) Hops() int {
	if len(p.nodes) == 0 {
		return 0
	}
	return len(p.nodes) - 1
}

// Node returns the node at position pos starting from 0 (the source) and
// ending at Length()-1 (the destination).
func (p Path) Node(pos int) string {
	return p.nodes[pos]
}

// Source returns the first node of the path or "" if the path is unreachable.
func (p Path) Source() string {
	if len(p.nodes) == 0 {
		return ""
	}
	return p.nodes[0]
}

// Destination returns the last node of the path or "" if the path is
// unreachable.
func (p Path) Destination() string {
	if len(p.nodes) == 0 {
		return ""
	}
	return p.nodes[len(p.nodes)-1]
}

// Nodes returns a copy of the sequence of nodes in the path (including the
// path's source and destination).
func (p Path) Nodes() []string {
	nodes := make([]string, len(p.nodes))
	copy(nodes, p.nodes)
	return nodes
}

// String returns a string representation of the path as a sequence of nodes
// separated by " -> ". For example: "Madrid -> Paris -> Londres". Unreachable
// paths are represented as "<unreachable>".
func (p Path) String() string {
	if !p.Found() {
		return "<unreachable>"
	}
	return strings.Join(p.nodes, " -> ")
}

// FormatCost returns the cost in its shortest decimal representation, e.g.
// "650" or "12.5". Unreachable paths return "+Inf".
func (p Path) FormatCost() string {
	return strconv.FormatFloat(p.cost, 'f', -1, 64)
}
