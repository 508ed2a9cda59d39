package usecases

import (
	"errors"
	"sort"

	"github.com/krisandva/loadroute/pkg/geo"
	"github.com/krisandva/loadroute/pkg/network"
	"github.com/krisandva/loadroute/pkg/spatialindex"
	"github.com/krisandva/loadroute/pkg/util"
)

const maxRadiusDoublings = 12

// snapToNearestNode nearest indexed node to the query point. the search
// radius doubles until candidates appear so sparse networks still resolve.
func (ns *NetworkService) snapToNearestNode(lat, lon float64) (string, float64, error) {
	ns.mu.RLock()
	index := ns.spatialIndex
	ns.mu.RUnlock()

	var candidates []spatialindex.NodeRef
	radius := ns.searchRadius
	for attempt := 0; attempt < maxRadiusDoublings; attempt++ {
		candidates = index.SearchWithinRadius(lat, lon, radius)
		if len(candidates) > 0 {
			break
		}
		radius *= 2
	}
	if len(candidates) == 0 {
		return "", 0, util.WrapErrorf(errors.New("no candidates within search radius"),
			util.ErrNotFound, "no node found near %f,%f", lat, lon)
	}

	// rank candidates with the cheap projected distance, the winner gets the
	// exact haversine distance
	dist := make([]float64, len(candidates))
	for i, c := range candidates {
		dist[i] = geo.CalculateEuclidianDistanceEquirectangularProj(lat, lon, c.GetLat(), c.GetLon())
	}

	sortedId := make([]int, len(candidates))
	for i := range sortedId {
		sortedId[i] = i
	}

	sort.Slice(sortedId, func(i, j int) bool {
		return dist[sortedId[i]] < dist[sortedId[j]]
	})

	best := candidates[sortedId[0]]
	return best.GetId(), geo.CalculateHaversineDistance(lat, lon, best.GetLat(), best.GetLon()), nil
}

// snapToNearestRoad project the query point onto the incident edge segments
// of the node. uses the edge geometry when the loader kept one, otherwise
// the straight segment between the endpoints. falls back to the node
// position when the node has no usable incident edge.
func (ns *NetworkService) snapToNearestRoad(node network.Node, lat, lon, nodeDistance float64) (float64, float64, float64) {
	query := geo.NewCoordinate(lat, lon)
	bestLat, bestLon := node.GetLat(), node.GetLon()
	bestDist := nodeDistance

	for _, neighborId := range ns.net.Neighbors(node.GetId()) {
		edge, ok := ns.net.GetEdge(node.GetId(), neighborId)
		if !ok {
			continue
		}

		points := edge.GetGeometry()
		if len(points) < 2 {
			neighbor, ok := ns.net.GetNode(neighborId)
			if !ok {
				continue
			}
			points = []geo.Coordinate{
				geo.NewCoordinate(node.GetLat(), node.GetLon()),
				geo.NewCoordinate(neighbor.GetLat(), neighbor.GetLon()),
			}
		}

		for i := 0; i+1 < len(points); i++ {
			projected := geo.ProjectPointToLineCoord(points[i], points[i+1], query)
			dist := geo.CalculateHaversineDistance(lat, lon, projected.GetLat(), projected.GetLon())
			if dist < bestDist {
				bestLat, bestLon = projected.GetLat(), projected.GetLon()
				bestDist = dist
			}
		}
	}
	return bestLat, bestLon, bestDist
}
