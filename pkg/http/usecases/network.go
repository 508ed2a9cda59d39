package usecases

import (
	"errors"
	"sync"

	"github.com/krisandva/loadroute/pkg"
	"github.com/krisandva/loadroute/pkg/concurrent"
	"github.com/krisandva/loadroute/pkg/network"
	"github.com/krisandva/loadroute/pkg/spatialindex"
	"github.com/krisandva/loadroute/pkg/util"
	"go.uber.org/zap"
)

type NetworkService struct {
	log *zap.Logger
	net *network.RoadNetwork

	mu                sync.RWMutex
	spatialIndex      *spatialindex.Rtree
	searchRadius      float64
	boundingBoxRadius float64
}

func NewNetworkService(log *zap.Logger, net *network.RoadNetwork, spatialIndex *spatialindex.Rtree,
	searchRadius, boundingBoxRadius float64) *NetworkService {
	return &NetworkService{
		log:               log,
		net:               net,
		spatialIndex:      spatialIndex,
		searchRadius:      searchRadius,
		boundingBoxRadius: boundingBoxRadius,
	}
}

// ApplyTrafficUpdates overwrite current flows from an admin batch. updates
// naming unknown edges are counted as skipped, never failed.
func (ns *NetworkService) ApplyTrafficUpdates(updates []network.FlowUpdate) (int, int) {
	if len(updates) == 0 {
		return 0, 0
	}

	numWorkers := util.MinInt(8, len(updates))
	pool := concurrent.NewWorkerPool[network.FlowUpdate, bool](numWorkers, len(updates))

	pool.Start(func(update network.FlowUpdate) bool {
		return ns.net.SetFlow(update.From, update.To, update.CurrentFlow)
	})
	for _, update := range updates {
		pool.AddJob(update)
	}
	pool.Close()
	pool.Wait()

	applied := 0
	for ok := range pool.CollectResults() {
		if ok {
			applied++
		}
	}
	skipped := len(updates) - applied
	if skipped > 0 {
		ns.log.Warn("traffic update batch referenced unknown edges",
			zap.Int("applied", applied), zap.Int("skipped", skipped))
	}
	return applied, skipped
}

func (ns *NetworkService) Stats() network.Stats {
	return ns.net.ComputeStats()
}

// Layout full node and edge snapshot for visualization.
func (ns *NetworkService) Layout() ([]network.Node, []network.Edge) {
	ids := ns.net.Nodes()
	nodes := make([]network.Node, 0, len(ids))
	for _, id := range ids {
		if node, ok := ns.net.GetNode(id); ok {
			nodes = append(nodes, node)
		}
	}

	keys := ns.net.EdgeKeys()
	edges := make([]network.Edge, 0, len(keys))
	for _, key := range keys {
		if edge, ok := ns.net.GetEdge(key.From, key.To); ok {
			edges = append(edges, edge)
		}
	}
	return nodes, edges
}

// RebuildGrid replace the network with a fresh grid and rebuild the spatial
// index over it. a non-positive segmentDistance picks the default segment
// length.
func (ns *NetworkService) RebuildGrid(rows, cols int, segmentDistance float64) (int, int) {
	if segmentDistance <= 0 {
		segmentDistance = pkg.GRID_SEGMENT_DISTANCE_KM
	}
	ns.net.GenerateGrid(rows, cols, segmentDistance)

	newIndex := spatialindex.NewRtree()
	newIndex.Build(ns.net, ns.boundingBoxRadius, ns.log)

	ns.mu.Lock()
	ns.spatialIndex = newIndex
	ns.mu.Unlock()

	return ns.net.NumNodes(), ns.net.NumEdges()
}

func (ns *NetworkService) NearestNode(lat, lon float64) (network.NodeSnap, error) {
	id, distance, err := ns.snapToNearestNode(lat, lon)
	if err != nil {
		return network.NodeSnap{}, err
	}

	node, ok := ns.net.GetNode(id)
	if !ok {
		return network.NodeSnap{}, util.WrapErrorf(errors.New("indexed node vanished from network"),
			util.ErrNotFound, "no node found near %f,%f", lat, lon)
	}

	roadLat, roadLon, roadDistance := ns.snapToNearestRoad(node, lat, lon, distance)
	return network.NewNodeSnap(node, distance, roadLat, roadLon, roadDistance), nil
}
