package network

// NodeSnap nearest-node lookup result. the road position is the query point
// projected onto the closest incident edge segment of the node, which on
// long edges can sit nearer to the query than the node itself.
type NodeSnap struct {
	node           Node
	nodeDistanceKm float64
	roadLat        float64
	roadLon        float64
	roadDistanceKm float64
}

func NewNodeSnap(node Node, nodeDistanceKm, roadLat, roadLon, roadDistanceKm float64) NodeSnap {
	return NodeSnap{
		node:           node,
		nodeDistanceKm: nodeDistanceKm,
		roadLat:        roadLat,
		roadLon:        roadLon,
		roadDistanceKm: roadDistanceKm,
	}
}

func (sn NodeSnap) GetNode() Node {
	return sn.node
}

func (sn NodeSnap) GetNodeDistanceKm() float64 {
	return sn.nodeDistanceKm
}

func (sn NodeSnap) GetRoadLat() float64 {
	return sn.roadLat
}

func (sn NodeSnap) GetRoadLon() float64 {
	return sn.roadLon
}

func (sn NodeSnap) GetRoadDistanceKm() float64 {
	return sn.roadDistanceKm
}
