package overpass

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
)

// RoadNode is one OSM node referenced by a highway way.
type RoadNode struct {
	ID  int64
	Lon float64
	Lat float64
}

// RoadWay is one OSM highway way as an ordered node sequence. Walking
// networks are undirected, so oneway restrictions are ignored.
type RoadWay struct {
	ID      int64
	NodeIDs []int64
}

// walkableHighways selects the highway classes a pedestrian can use.
// Motorways and trunk roads are excluded.
const walkableHighways = "primary|secondary|tertiary|unclassified|residential|living_street|pedestrian|footway|path|steps|service"

// BuildNetworkQuery renders the Overpass QL query for the walkable street
// network. The recursion operator pulls in every node the matched ways
// reference, so edge geometry is complete.
func BuildNetworkQuery(box BBox) string {
	return fmt.Sprintf(`[out:json][timeout:180];(way["highway"~"^(%s)$"](%s););out body;>;out skel qt;`,
		walkableHighways, box)
}

func (c *client) FetchStreetNetwork(ctx context.Context, box BBox) ([]RoadNode, []RoadWay, error) {
	parsed, err := c.execute(ctx, BuildNetworkQuery(box), "street network")
	if err != nil {
		return nil, nil, err
	}

	var nodes []RoadNode
	var ways []RoadWay
	for _, el := range parsed.Elements {
		switch el.Type {
		case "node":
			nodes = append(nodes, RoadNode{ID: el.ID, Lon: el.Lon, Lat: el.Lat})
		case "way":
			if len(el.Nodes) < 2 {
				continue
			}
			ways = append(ways, RoadWay{ID: el.ID, NodeIDs: el.Nodes})
		}
	}

	if len(nodes) == 0 || len(ways) == 0 {
		return nil, nil, eris.Errorf("overpass: no walkable streets inside %s", box)
	}
	return nodes, ways, nil
}
