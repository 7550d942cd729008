package routes

import "fmt"

// InvalidEdgeError is returned when adding an edge whose cost is negative,
// NaN, or infinite.
type InvalidEdgeError struct {
	Edge Edge
}

func (e *InvalidEdgeError) Error() string {
	return fmt.Sprintf("invalid edge %q -> %q: cost must be finite and non-negative, got %v",
		e.Edge.From, e.Edge.To, e.Edge.Cost)
}

// UnknownNodeError is returned when looking up a node that is not in the
// graph.
type UnknownNodeError struct {
	Node string
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("node %q is not in the graph", e.Node)
}

// UnknownEndpointError is returned by path queries when the start or end node
// is not in the graph. Retrying the same query cannot succeed.
type UnknownEndpointError struct {
	Node string
}

func (e *UnknownEndpointError) Error() string {
	return fmt.Sprintf("unknown endpoint %q", e.Node)
}
