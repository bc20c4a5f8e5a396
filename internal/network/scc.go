package network

import (
	"go.uber.org/zap"
)

// IsStronglyConnected reports whether every node can reach every other node.
func (g *Graph) IsStronglyConnected() bool {
	if len(g.nodes) <= 1 {
		return true
	}
	comp := g.componentLabels()
	first := comp[0]
	for _, c := range comp {
		if c != first {
			return false
		}
	}
	return true
}

// LargestSCC returns the subgraph induced by the largest strongly connected
// component, so that routing queries are guaranteed a path between any two
// of its nodes. A strongly connected graph is returned unchanged.
func (g *Graph) LargestSCC() *Graph {
	if len(g.nodes) == 0 {
		return g
	}

	comp := g.componentLabels()

	sizes := make(map[int32]int)
	for _, c := range comp {
		sizes[c]++
	}
	var largest int32
	var largestSize int
	for c, n := range sizes {
		if n > largestSize {
			largest = c
			largestSize = n
		}
	}
	if largestSize == len(g.nodes) {
		return g
	}

	keep := make([]Node, 0, largestSize)
	for i, n := range g.nodes {
		if comp[i] == largest {
			keep = append(keep, n)
		}
	}
	var edges []Edge
	for from, arcs := range g.adj {
		if comp[from] != largest {
			continue
		}
		for _, a := range arcs {
			if comp[a.to] != largest {
				continue
			}
			edges = append(edges, Edge{
				From:   g.nodes[from].ID,
				To:     g.nodes[a.to].ID,
				Length: a.length,
			})
		}
	}

	sub, err := New(keep, edges)
	if err != nil {
		// Cannot happen: node ids are unique and all endpoints are kept.
		zap.L().Error("network: rebuild largest SCC", zap.Error(err))
		return g
	}

	zap.L().Info("network: extracted largest strongly connected component",
		zap.Int("nodes", sub.NodeCount()),
		zap.Int("of", g.NodeCount()),
	)
	return sub
}

// componentLabels runs Kosaraju's algorithm iteratively and labels each node
// with its strongly connected component.
func (g *Graph) componentLabels() []int32 {
	n := len(g.nodes)

	// First pass: DFS finish order on the forward graph.
	order := make([]int32, 0, n)
	visited := make([]bool, n)
	type frame struct {
		node int32
		next int
	}
	var stack []frame

	for start := 0; start < n; start++ {
		if visited[start] {
			continue
		}
		visited[start] = true
		stack = append(stack, frame{node: int32(start)})
		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			arcs := g.adj[f.node]
			advanced := false
			for f.next < len(arcs) {
				to := arcs[f.next].to
				f.next++
				if !visited[to] {
					visited[to] = true
					stack = append(stack, frame{node: to})
					advanced = true
					break
				}
			}
			if !advanced && f.next >= len(arcs) {
				order = append(order, f.node)
				stack = stack[:len(stack)-1]
			}
		}
	}

	// Reverse graph.
	radj := make([][]int32, n)
	for from, arcs := range g.adj {
		for _, a := range arcs {
			radj[a.to] = append(radj[a.to], int32(from))
		}
	}

	// Second pass: DFS on the reverse graph in reverse finish order.
	comp := make([]int32, n)
	for i := range comp {
		comp[i] = -1
	}
	var label int32
	var dfs []int32
	for i := n - 1; i >= 0; i-- {
		root := order[i]
		if comp[root] != -1 {
			continue
		}
		comp[root] = label
		dfs = append(dfs[:0], root)
		for len(dfs) > 0 {
			u := dfs[len(dfs)-1]
			dfs = dfs[:len(dfs)-1]
			for _, v := range radj[u] {
				if comp[v] == -1 {
					comp[v] = label
					dfs = append(dfs, v)
				}
			}
		}
		label++
	}

	return comp
}
