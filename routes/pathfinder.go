package routes

import (
	"math"
	"slices"
	"strings"

	"github.com/rhartert/flightroutes/routes/paths"
	"github.com/rhartert/sparsesets"
	"github.com/rhartert/yagh"
)

// SearchResult is the result of a cheapest path search along with counters
// describing the work done by the search.
type SearchResult struct {
	Path paths.Path

	// Settled is the number of nodes extracted from the queue (i.e. whose
	// cheapest cost was final when extracted).
	Settled int

	// Scanned is the number of edges examined.
	Scanned int

	// Relaxed is the number of edges that improved the best known cost of
	// their destination.
	Relaxed int
}

// FindCheapestPath returns the cheapest path from start to end in g.
//
// If start or end is not in the graph, an *UnknownEndpointError is returned.
// If end cannot be reached from start, the returned path is
// paths.Unreachable() and the error is nil. A query from a node to itself
// returns a path with that single node and a cost of 0.
//
// When several paths have the same cost, the result is deterministic: nodes
// with the same tentative cost are expanded in lexicographic order of their
// name and a node keeps the first predecessor that reached it with its
// cheapest cost.
func FindCheapestPath(g *RouteGraph, start string, end string) (paths.Path, error) {
	res, err := Search(g, start, end)
	if err != nil {
		return paths.Unreachable(), err
	}
	return res.Path, nil
}

// Search is the same as FindCheapestPath but also returns counters about the
// search.
func Search(g *RouteGraph, start string, end string) (*SearchResult, error) {
	src, ok := g.ids[start]
	if !ok {
		return nil, &UnknownEndpointError{Node: start}
	}
	dst, ok := g.ids[end]
	if !ok {
		return nil, &UnknownEndpointError{Node: end}
	}

	s := newSearch(g)
	s.run(src, dst)

	res := &SearchResult{
		Path:    s.path(src, dst),
		Settled: len(s.settled.Content()),
		Scanned: s.scanned,
		Relaxed: s.relaxed,
	}
	return res, nil
}

// CostsFrom returns the cost of the cheapest path from start to every node
// reachable from it, start included. Unreachable nodes are not in the
// returned map. It returns an *UnknownEndpointError if start is not in the
// graph.
func CostsFrom(g *RouteGraph, start string) (map[string]float64, error) {
	src, ok := g.ids[start]
	if !ok {
		return nil, &UnknownEndpointError{Node: start}
	}

	s := newSearch(g)
	s.run(src, -1)

	costs := make(map[string]float64, len(s.settled.Content()))
	for _, v := range s.settled.Content() {
		costs[g.names[v]] = s.costs[v]
	}
	return costs, nil
}

// search holds the state of a single query. It is discarded once the query
// is answered so that concurrent queries never share state.
type search struct {
	g *RouteGraph

	costs []float64
	prevs []int // -1 if the node has no predecessor

	queue   *yagh.IntMap[float64]
	settled *sparsesets.Set

	// pending holds the nodes drained from the queue whose cost is
	// pendingCost, sorted by decreasing name.
	pending     []int
	pendingCost float64

	scanned int
	relaxed int
}

func newSearch(g *RouteGraph) *search {
	nNodes := len(g.names)
	s := &search{
		g:       g,
		costs:   make([]float64, nNodes),
		prevs:   make([]int, nNodes),
		queue:   yagh.New[float64](nNodes),
		settled: sparsesets.New(nNodes),
	}
	for i := range s.costs {
		s.costs[i] = math.Inf(1)
		s.prevs[i] = -1
	}
	return s
}

// run expands nodes by increasing cost from src until dst is extracted from
// the queue or all the nodes reachable from src have been expanded. Use a
// negative dst to expand all reachable nodes.
//
// Queue entries are updated in place when a cheaper cost is found, so the
// queue never holds stale entries.
func (s *search) run(src int, dst int) {
	s.costs[src] = 0
	s.queue.Put(src, 0)

	for s.queue.Size() > 0 || len(s.pending) > 0 {
		u := s.popMin()
		s.settled.Insert(u)
		if u == dst {
			return
		}

		c := s.costs[u]
		for _, e := range s.g.nexts[u] {
			s.scanned++
			v := s.g.tos[e]
			if s.settled.Contains(v) {
				continue
			}

			// Path src -> u -> v is not better than the best known path.
			newCost := c + s.g.edges[e].Cost
			if s.costs[v] <= newCost {
				continue
			}

			s.costs[v] = newCost
			s.prevs[v] = u
			s.queue.Put(v, newCost)
			s.relaxed++
		}
	}
}

// popMin extracts the node with the smallest cost. Nodes that share the
// smallest cost are extracted in lexicographic order of their name.
//
// All the queued nodes with the smallest cost are moved to pending at once.
// Nodes reached through zero cost edges while pending is being consumed are
// queued with the same cost and merged into pending on the next call.
func (s *search) popMin() int {
	if len(s.pending) == 0 {
		entry, _ := s.queue.Pop()
		s.pendingCost = entry.Cost
		s.pending = append(s.pending, entry.Elem)
	}

	n := len(s.pending)
	for s.queue.Size() > 0 {
		next, _ := s.queue.Min()
		if next.Cost != s.pendingCost {
			break
		}
		s.queue.Pop()
		s.pending = append(s.pending, next.Elem)
	}
	if len(s.pending) > n {
		names := s.g.names
		slices.SortFunc(s.pending, func(a, b int) int {
			return strings.Compare(names[b], names[a])
		})
	}

	last := len(s.pending) - 1
	u := s.pending[last]
	s.pending = s.pending[:last]
	return u
}

// path follows the predecessors from dst back to src and returns the
// corresponding path, or paths.Unreachable() if the chain of predecessors
// does not lead to src.
func (s *search) path(src int, dst int) paths.Path {
	if math.IsInf(s.costs[dst], 1) {
		return paths.Unreachable()
	}

	nodes := []string{}
	v := dst
	for ; s.prevs[v] != -1; v = s.prevs[v] {
		nodes = append(nodes, s.g.names[v])
	}
	if v != src {
		return paths.Unreachable()
	}
	nodes = append(nodes, s.g.names[src])

	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	return paths.New(s.costs[dst], nodes...)
}
