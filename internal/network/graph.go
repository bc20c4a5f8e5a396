// Package network models the routable street graph used by the distance
// resolver. The graph is read-only once built: stages load a node-link JSON
// document, optionally reduce it to its largest strongly connected
// component, and run shortest-path queries against it.
package network

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Node is a routable intersection with WGS84 coordinates.
type Node struct {
	ID  int64   `json:"id"`
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Edge is a directed street segment with a length in meters.
type Edge struct {
	From   int64   `json:"from"`
	To     int64   `json:"to"`
	Length float64 `json:"length"`
}

type arc struct {
	to     int32
	length float64
}

// Graph is a directed street network with edge lengths in meters.
type Graph struct {
	nodes []Node
	index map[int64]int32
	adj   [][]arc
}

// New builds a graph from nodes and directed edges. Edges referencing
// unknown nodes are dropped with a warning; negative lengths are rejected
// because Dijkstra requires non-negative weights.
func New(nodes []Node, edges []Edge) (*Graph, error) {
	g := &Graph{
		nodes: nodes,
		index: make(map[int64]int32, len(nodes)),
		adj:   make([][]arc, len(nodes)),
	}
	for i, n := range nodes {
		if _, dup := g.index[n.ID]; dup {
			return nil, eris.Errorf("network: duplicate node id %d", n.ID)
		}
		g.index[n.ID] = int32(i)
	}

	var dropped int
	for _, e := range edges {
		if e.Length < 0 {
			return nil, eris.Errorf("network: negative edge length %f on %d->%d", e.Length, e.From, e.To)
		}
		from, okF := g.index[e.From]
		to, okT := g.index[e.To]
		if !okF || !okT {
			dropped++
			continue
		}
		g.adj[from] = append(g.adj[from], arc{to: to, length: e.Length})
	}
	if dropped > 0 {
		zap.L().Warn("network: dropped edges with unknown endpoints", zap.Int("dropped", dropped))
	}

	return g, nil
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of directed edges.
func (g *Graph) EdgeCount() int {
	var n int
	for _, a := range g.adj {
		n += len(a)
	}
	return n
}

// HasNode reports whether the graph contains the given node id.
func (g *Graph) HasNode(id int64) bool {
	_, ok := g.index[id]
	return ok
}

// NearestNode returns the id of the node closest to the given WGS84
// coordinate, using an equirectangular approximation. ok is false for an
// empty graph.
func (g *Graph) NearestNode(lon, lat float64) (int64, bool) {
	if len(g.nodes) == 0 {
		return 0, false
	}
	cosLat := math.Cos(lat * math.Pi / 180)
	best := 0
	bestD := math.Inf(1)
	for i, n := range g.nodes {
		dx := (n.Lon - lon) * cosLat
		dy := n.Lat - lat
		d := dx*dx + dy*dy
		if d < bestD {
			bestD = d
			best = i
		}
	}
	return g.nodes[best].ID, true
}

// document is the on-disk node-link representation of a street graph.
type document struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Load reads a node-link JSON street graph from disk.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "network: read %s", path)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrapf(err, "network: parse %s", path)
	}

	g, err := New(doc.Nodes, doc.Edges)
	if err != nil {
		return nil, err
	}

	zap.L().Info("network: loaded street graph",
		zap.String("path", path),
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()),
	)
	return g, nil
}

// Save writes the graph back to node-link JSON atomically.
func (g *Graph) Save(path string) error {
	doc := document{Nodes: g.nodes}
	for from, arcs := range g.adj {
		for _, a := range arcs {
			doc.Edges = append(doc.Edges, Edge{
				From:   g.nodes[from].ID,
				To:     g.nodes[a.to].ID,
				Length: a.length,
			})
		}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return eris.Wrap(err, "network: marshal graph")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "network: create dir %s", dir)
	}
	tmp, err := os.CreateTemp(dir, ".graph-*.json")
	if err != nil {
		return eris.Wrap(err, "network: create temp file")
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return eris.Wrap(err, "network: write graph")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return eris.Wrap(err, "network: close temp file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return eris.Wrapf(err, "network: rename into %s", path)
	}
	return nil
}
