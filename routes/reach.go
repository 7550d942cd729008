package routes

import (
	"sort"

	"github.com/rhartert/sparsesets"
)

// Reachable returns the nodes that can be reached from start, start included,
// in lexicographic order. It returns an *UnknownEndpointError if start is not
// in the graph.
func Reachable(g *RouteGraph, start string) ([]string, error) {
	src, ok := g.ids[start]
	if !ok {
		return nil, &UnknownEndpointError{Node: start}
	}

	visited := sparsesets.New(len(g.names))
	visited.Insert(src)
	queue := []int{src}
	for i := 0; i < len(queue); i++ {
		for _, e := range g.nexts[queue[i]] {
			v := g.tos[e]
			if !visited.Contains(v) {
				visited.Insert(v)
				queue = append(queue, v)
			}
		}
	}

	nodes := make([]string, 0, len(queue))
	for _, v := range visited.Content() {
		nodes = append(nodes, g.names[v])
	}
	sort.Strings(nodes)
	return nodes, nil
}
