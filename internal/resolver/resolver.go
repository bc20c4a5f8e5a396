// Package resolver computes, for every area and amenity category, the
// distance to the nearest amenity over the street network, with straight-line
// fallback when routing is impossible. A single bad area degrades locally;
// it never aborts the batch.
package resolver

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/urbanmetrics/walkability-cli/internal/geofile"
	"github.com/urbanmetrics/walkability-cli/internal/model"
	"github.com/urbanmetrics/walkability-cli/internal/network"
)

// Options bound the routing work per (area, category) pair.
type Options struct {
	// CandidateLimit is the number of straight-line-nearest amenities that
	// get an exact network query. Default 10.
	CandidateLimit int
	// CountRadiusM is the radius for the nearby-amenity count. Default 1000.
	CountRadiusM float64
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{CandidateLimit: 10, CountRadiusM: 1000}
}

// Resolver resolves nearest-amenity distances against a fixed street graph
// and amenity set.
type Resolver struct {
	graph      *network.Graph
	byCategory map[model.Category][]model.Amenity
	// amenityNode caches the nearest network node per amenity; the amenity
	// set is immutable for the lifetime of the resolver.
	amenityNode map[model.Category][]int64
	opts        Options
}

// New builds a Resolver. The amenity slice is partitioned by category and
// each amenity is snapped to its nearest network node up front.
func New(g *network.Graph, amenities []model.Amenity, opts Options) (*Resolver, error) {
	if g == nil {
		return nil, eris.New("resolver: nil street graph")
	}
	if opts.CandidateLimit <= 0 {
		opts.CandidateLimit = 10
	}
	if opts.CountRadiusM <= 0 {
		opts.CountRadiusM = 1000
	}

	r := &Resolver{
		graph:       g,
		byCategory:  make(map[model.Category][]model.Amenity),
		amenityNode: make(map[model.Category][]int64),
		opts:        opts,
	}
	for _, a := range amenities {
		r.byCategory[a.Category] = append(r.byCategory[a.Category], a)
	}
	for cat, list := range r.byCategory {
		nodes := make([]int64, len(list))
		for i, a := range list {
			id, ok := g.NearestNode(a.Lon, a.Lat)
			if !ok {
				nodes[i] = -1
				continue
			}
			nodes[i] = id
		}
		r.amenityNode[cat] = nodes
	}
	return r, nil
}

// Resolve computes one DistanceRecord per category for a single area.
func (r *Resolver) Resolve(area model.Area) map[model.Category]model.DistanceRecord {
	records := make(map[model.Category]model.DistanceRecord, len(model.Categories))

	areaNode, ok := r.graph.NearestNode(area.Centroid[0], area.Centroid[1])
	if !ok {
		// Degraded-precision mode: no routable node for this area, so every
		// category falls back to straight-line distances over all amenities.
		zap.L().Warn("resolver: no network node for area, using straight-line distances",
			zap.String("area", area.ID),
		)
		for _, cat := range model.Categories {
			records[cat] = r.resolveStraightLine(area.Centroid, cat)
		}
		return records
	}

	for _, cat := range model.Categories {
		records[cat] = r.resolveCategory(area, areaNode, cat)
	}
	return records
}

// ResolveAll resolves every area, keyed by area ID.
func (r *Resolver) ResolveAll(areas []model.Area) map[string]map[model.Category]model.DistanceRecord {
	out := make(map[string]map[model.Category]model.DistanceRecord, len(areas))
	for i := range areas {
		out[areas[i].ID] = r.Resolve(areas[i])
	}
	return out
}

// resolveStraightLine handles the whole-area degraded mode: straight-line
// distance to every amenity of the category, no routing at all.
func (r *Resolver) resolveStraightLine(centroid geom.Coord, cat model.Category) model.DistanceRecord {
	list := r.byCategory[cat]
	if len(list) == 0 {
		return model.DistanceRecord{Method: model.DistanceStraightLine}
	}

	minDist := math.Inf(1)
	var count int
	for _, a := range list {
		d := geofile.ApproxMeters(centroid, geom.Coord{a.Lon, a.Lat})
		if d < minDist {
			minDist = d
		}
		if d <= r.opts.CountRadiusM {
			count++
		}
	}

	return model.DistanceRecord{
		Meters:         &minDist,
		Method:         model.DistanceStraightLine,
		CountWithin1km: count,
	}
}

// resolveCategory runs the bounded routing query for one category: the
// CandidateLimit straight-line-nearest amenities get an exact network
// shortest path; candidates with no route fall back individually to their
// straight-line distance. The count covers every computed path, routed or
// fallback, within the count radius.
func (r *Resolver) resolveCategory(area model.Area, areaNode int64, cat model.Category) model.DistanceRecord {
	list := r.byCategory[cat]
	if len(list) == 0 {
		// Missing category: distance stays null, count zero.
		return model.DistanceRecord{Method: model.DistanceRouted}
	}

	candidates := r.nearestCandidates(area.Centroid, cat)
	nodes := r.amenityNode[cat]

	targets := make(map[int64]struct{}, len(candidates))
	for _, ci := range candidates {
		if nodes[ci] >= 0 {
			targets[nodes[ci]] = struct{}{}
		}
	}

	routed, err := r.graph.ShortestPaths(areaNode, targets)
	if err != nil {
		// Routing failure for this area degrades to straight-line for every
		// candidate rather than aborting the batch.
		zap.L().Warn("resolver: shortest path query failed, falling back to straight-line",
			zap.String("area", area.ID),
			zap.String("category", string(cat)),
			zap.Error(err),
		)
		routed = nil
	}

	minDist := math.Inf(1)
	method := model.DistanceRouted
	var count int

	for _, ci := range candidates {
		a := list[ci]
		var d float64
		var m model.DistanceMethod

		if node := nodes[ci]; node >= 0 {
			if pathLen, reachable := routed[node]; reachable {
				d, m = pathLen, model.DistanceRouted
			} else {
				d = geofile.ApproxMeters(area.Centroid, geom.Coord{a.Lon, a.Lat})
				m = model.DistanceStraightLine
			}
		} else {
			d = geofile.ApproxMeters(area.Centroid, geom.Coord{a.Lon, a.Lat})
			m = model.DistanceStraightLine
		}

		if d <= r.opts.CountRadiusM {
			count++
		}
		// Strict less-than keeps the first candidate reaching the minimum.
		if d < minDist {
			minDist = d
			method = m
		}
	}

	if math.IsInf(minDist, 1) {
		return model.DistanceRecord{Method: model.DistanceRouted, CountWithin1km: count}
	}
	return model.DistanceRecord{
		Meters:         &minDist,
		Method:         method,
		CountWithin1km: count,
	}
}

// nearestCandidates returns the indices of the K straight-line-nearest
// amenities of a category, in ascending distance order.
func (r *Resolver) nearestCandidates(centroid geom.Coord, cat model.Category) []int {
	list := r.byCategory[cat]

	type cand struct {
		idx  int
		dist float64
	}
	cands := make([]cand, len(list))
	for i, a := range list {
		cands[i] = cand{idx: i, dist: geofile.ApproxMeters(centroid, geom.Coord{a.Lon, a.Lat})}
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })

	k := r.opts.CandidateLimit
	if k > len(cands) {
		k = len(cands)
	}
	out := make([]int, k)
	for i := 0; i < k; i++ {
		out[i] = cands[i].idx
	}
	return out
}
