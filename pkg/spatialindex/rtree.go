package spatialindex

import (
	"math"

	"github.com/krisandva/loadroute/pkg/geo"
	"github.com/krisandva/loadroute/pkg/network"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

type Rtree struct {
	tr *rtree.RTreeG[NodeRef]
}

// NodeRef leaf payload. coordinates are cached at build time so candidate
// ranking does not go back to the store.
type NodeRef struct {
	id  string
	lat float64
	lon float64
}

func (nr NodeRef) GetId() string {
	return nr.id
}

func (nr NodeRef) GetLat() float64 {
	return nr.lat
}

func (nr NodeRef) GetLon() float64 {
	return nr.lon
}

func newNodeRef(id string, lat, lon float64) NodeRef {
	return NodeRef{
		id:  id,
		lat: lat,
		lon: lon,
	}
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[NodeRef]
	return &Rtree{
		tr: &tr,
	}
}

// Build. build r-tree over the network nodes, with each leaf having bounding box
// with radius boundingBoxRadius (in km)
func (rt *Rtree) Build(net *network.RoadNetwork, boundingBoxRadius float64, log *zap.Logger) {
	log.Info("Building R-tree spatial index...")

	ids := net.Nodes()
	for i, id := range ids {
		node, ok := net.GetNode(id)
		if !ok {
			continue
		}

		percentage := float64(i+1) / float64(len(ids)) * 100
		if math.Mod(percentage, 10) < 0.0001 {
			log.Info("Building R-tree spatial index...", zap.Float64("progress", percentage))
		}

		lowerLat, lowerLon := geo.GetDestinationPoint(node.GetLat(), node.GetLon(), 225, boundingBoxRadius)
		upperLat, upperLon := geo.GetDestinationPoint(node.GetLat(), node.GetLon(), 45, boundingBoxRadius)

		rt.tr.Insert([2]float64{lowerLon, lowerLat}, [2]float64{upperLon, upperLat},
			newNodeRef(id, node.GetLat(), node.GetLon()))
	}

	log.Info("R-tree spatial index built.", zap.Int("nodes", len(ids)))
}

// SearchWithinRadius search for all nodes within radius (in km) from the query point (qLat, qLon)
func (rt *Rtree) SearchWithinRadius(qLat, qLon, radius float64) []NodeRef {
	lowerLat, lowerLon := geo.GetDestinationPoint(qLat, qLon, 225, radius)
	upperLat, upperLon := geo.GetDestinationPoint(qLat, qLon, 45, radius)

	results := make([]NodeRef, 0, 10)
	rt.tr.Search([2]float64{lowerLon, lowerLat}, [2]float64{upperLon, upperLat},
		func(min, max [2]float64, data NodeRef) bool {
			results = append(results, data)
			if len(results) >= 20 {
				return false
			}
			return true
		})
	return results
}
