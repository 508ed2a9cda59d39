package network

import "math"

// FlowUpdate one admin override of the current flow on an edge.
type FlowUpdate struct {
	From        string
	To          string
	CurrentFlow float64
}

// Stats network-wide traffic snapshot. load aggregates skip edges with
// non-positive capacity, their load is infinite and would poison the mean.
type Stats struct {
	numNodes    int
	numEdges    int
	totalFlow   float64
	averageLoad float64
	maxLoad     float64
	overloaded  []Edge
}

func (s Stats) GetNumNodes() int {
	return s.numNodes
}

func (s Stats) GetNumEdges() int {
	return s.numEdges
}

func (s Stats) GetTotalFlow() float64 {
	return s.totalFlow
}

func (s Stats) GetAverageLoad() float64 {
	return s.averageLoad
}

func (s Stats) GetMaxLoad() float64 {
	return s.maxLoad
}

func (s Stats) GetOverloaded() []Edge {
	return s.overloaded
}

func (rn *RoadNetwork) ComputeStats() Stats {
	stats := Stats{
		numNodes:   rn.NumNodes(),
		numEdges:   rn.NumEdges(),
		overloaded: rn.OverloadedEdges(),
	}

	loadSum := 0.0
	loadCount := 0
	for _, key := range rn.EdgeKeys() {
		edge, ok := rn.GetEdge(key.From, key.To)
		if !ok {
			continue
		}
		stats.totalFlow += edge.GetCurrentFlow()

		load := edge.GetLoad()
		if math.IsInf(load, 1) {
			continue
		}
		loadSum += load
		loadCount++
		if load > stats.maxLoad {
			stats.maxLoad = load
		}
	}
	if loadCount > 0 {
		stats.averageLoad = loadSum / float64(loadCount)
	}
	return stats
}
