package network

import (
	"container/heap"

	"github.com/rotisserie/eris"
)

type pqItem struct {
	node int32
	dist float64
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// ShortestPaths runs Dijkstra from the given source node and returns the
// shortest network distance in meters to each reachable target. Targets with
// no path are absent from the result. The search stops early once every
// target is settled.
func (g *Graph) ShortestPaths(from int64, targets map[int64]struct{}) (map[int64]float64, error) {
	src, ok := g.index[from]
	if !ok {
		return nil, eris.Errorf("network: source node %d not in graph", from)
	}

	remaining := make(map[int32]int64, len(targets))
	for id := range targets {
		if idx, ok := g.index[id]; ok {
			remaining[idx] = id
		}
	}

	result := make(map[int64]float64, len(targets))
	if len(remaining) == 0 {
		return result, nil
	}

	dist := make(map[int32]float64, len(g.nodes)/4)
	settled := make(map[int32]bool)

	pq := priorityQueue{{node: src, dist: 0}}
	dist[src] = 0

	for pq.Len() > 0 {
		item := heap.Pop(&pq).(pqItem)
		if settled[item.node] {
			continue
		}
		settled[item.node] = true

		if id, isTarget := remaining[item.node]; isTarget {
			result[id] = item.dist
			delete(remaining, item.node)
			if len(remaining) == 0 {
				return result, nil
			}
		}

		for _, a := range g.adj[item.node] {
			if settled[a.to] {
				continue
			}
			nd := item.dist + a.length
			if cur, seen := dist[a.to]; !seen || nd < cur {
				dist[a.to] = nd
				heap.Push(&pq, pqItem{node: a.to, dist: nd})
			}
		}
	}

	return result, nil
}
