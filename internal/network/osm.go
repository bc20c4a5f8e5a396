package network

import (
	"math"

	"go.uber.org/zap"
)

// BuildWalkGraph constructs a street graph from OSM-style way node
// sequences. Consecutive nodes of a way become a pair of directed edges so
// the pedestrian graph is undirected; edge lengths are equirectangular
// approximations in meters. Node references absent from the node set are
// skipped.
func BuildWalkGraph(nodes []Node, ways [][]int64) (*Graph, error) {
	byID := make(map[int64]Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	var edges []Edge
	var skipped int
	for _, way := range ways {
		for k := 0; k+1 < len(way); k++ {
			a, okA := byID[way[k]]
			b, okB := byID[way[k+1]]
			if !okA || !okB {
				skipped++
				continue
			}
			length := segmentMeters(a, b)
			edges = append(edges,
				Edge{From: a.ID, To: b.ID, Length: length},
				Edge{From: b.ID, To: a.ID, Length: length},
			)
		}
	}
	if skipped > 0 {
		zap.L().Warn("network: skipped way segments with unknown node refs", zap.Int("segments", skipped))
	}

	return New(nodes, edges)
}

// segmentMeters approximates ground distance between two nodes, correcting
// longitude spans for latitude.
func segmentMeters(a, b Node) float64 {
	cosLat := math.Cos((a.Lat + b.Lat) / 2 * math.Pi / 180)
	dx := (b.Lon - a.Lon) * cosLat
	dy := b.Lat - a.Lat
	return math.Hypot(dx, dy) * 111000
}
