package controllers

import (
	"context"

	"github.com/krisandva/loadroute/pkg/network"
	"github.com/krisandva/loadroute/pkg/routing"
)

type RoutingService interface {
	FindRoute(ctx context.Context, origin, destination string, hour int, dryRun bool) (*routing.RouteResult, string, int, error)
}

type NetworkService interface {
	ApplyTrafficUpdates(updates []network.FlowUpdate) (int, int)
	Stats() network.Stats
	Layout() ([]network.Node, []network.Edge)
	RebuildGrid(rows, cols int, segmentDistance float64) (int, int)
	NearestNode(lat, lon float64) (network.NodeSnap, error)
}
