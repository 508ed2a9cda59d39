package routing

import (
	"context"
	"errors"
	"fmt"

	"github.com/krisandva/loadroute/pkg"
	"github.com/krisandva/loadroute/pkg/costmodel"
	"github.com/krisandva/loadroute/pkg/geo"
	"github.com/krisandva/loadroute/pkg/network"
	"go.uber.org/zap"
)

var (
	ErrNodeNotFound = errors.New("node not found in road network")
	ErrNoPath       = errors.New("no path found")
	ErrSearchLimit  = errors.New("search limit exceeded")
)

// Engine load-aware route computation over the live road network. searches
// read traffic state as it is at relaxation time, commits feed the chosen
// route back into the store.
type Engine struct {
	log *zap.Logger
	net *network.RoadNetwork

	maxSettledNodes int
	commitIncrement float64
}

type Option func(*Engine)

// WithMaxSettledNodes bound the number of settled nodes per query. zero
// means unbounded.
func WithMaxSettledNodes(n int) Option {
	return func(e *Engine) {
		e.maxSettledNodes = n
	}
}

// WithCommitIncrement flow added to every surviving edge of a committed
// route.
func WithCommitIncrement(increment float64) Option {
	return func(e *Engine) {
		e.commitIncrement = increment
	}
}

func NewEngine(log *zap.Logger, net *network.RoadNetwork, opts ...Option) *Engine {
	engine := &Engine{
		log:             log,
		net:             net,
		commitIncrement: pkg.COMMIT_FLOW_INCREMENT,
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

func (e *Engine) GetNetwork() *network.RoadNetwork {
	return e.net
}

// FindRoute minimum-cost path from origin to destination departing at the
// given hour. unknown endpoints return ErrNodeNotFound, an exhausted search
// returns ErrNoPath. the network is not mutated, committing is a separate
// step.
func (e *Engine) FindRoute(ctx context.Context, origin, destination string, hour int) (*RouteResult, error) {
	if !e.net.HasNode(origin) {
		return nil, fmt.Errorf("origin %q: %w", origin, ErrNodeNotFound)
	}
	if !e.net.HasNode(destination) {
		return nil, fmt.Errorf("destination %q: %w", destination, ErrNodeNotFound)
	}

	tc := costmodel.NewTimeContext(hour)

	search := newDijkstraSearch(e.net, tc, e.maxSettledNodes)
	if err := search.run(ctx, origin, destination); err != nil {
		return nil, err
	}

	path, found := search.pathTo(origin, destination)
	if !found {
		return nil, fmt.Errorf("from %q to %q: %w", origin, destination, ErrNoPath)
	}

	return e.buildResult(path, tc), nil
}

// buildResult re-walk the path for the component breakdown, the per-segment
// details and the stitched geometry. edges that disappeared since the search
// are skipped rather than failing the whole route.
func (e *Engine) buildResult(path []string, tc costmodel.TimeContext) *RouteResult {
	var (
		totalCost float64
		breakdown costmodel.Breakdown
		segments  = make([]RouteSegment, 0, len(path)-1)
	)

	for i := 0; i+1 < len(path); i++ {
		edge, ok := e.net.GetEdge(path[i], path[i+1])
		if !ok {
			e.log.Warn("edge vanished during route assembly",
				zap.String("from", path[i]), zap.String("to", path[i+1]))
			continue
		}

		cost, segmentBreakdown := costmodel.CalculateSegmentCost(edge, tc)
		totalCost += cost
		breakdown.Accumulate(segmentBreakdown)
		segments = append(segments, NewRouteSegment(path[i], path[i+1], cost, segmentBreakdown))
	}

	return &RouteResult{
		path:        path,
		totalCost:   totalCost,
		breakdown:   breakdown,
		segments:    segments,
		geometry:    e.stitchGeometry(path),
		timeContext: tc,
	}
}

// stitchGeometry origin position first, then per edge either its stored
// waypoints or the target node position as fallback. a valid path therefore
// always yields a drawable line.
func (e *Engine) stitchGeometry(path []string) []geo.Coordinate {
	coords := make([]geo.Coordinate, 0, len(path))

	if node, ok := e.net.GetNode(path[0]); ok {
		coords = append(coords, geo.NewCoordinate(node.GetLat(), node.GetLon()))
	}

	for i := 0; i+1 < len(path); i++ {
		edge, ok := e.net.GetEdge(path[i], path[i+1])
		if ok && len(edge.GetGeometry()) > 0 {
			coords = append(coords, edge.GetGeometry()...)
			continue
		}
		if node, ok := e.net.GetNode(path[i+1]); ok {
			coords = append(coords, geo.NewCoordinate(node.GetLat(), node.GetLon()))
		}
	}
	return coords
}

// CommitRoute add the commit increment to every edge of the path, skipping
// edges that no longer exist. returns how many edges were updated.
func (e *Engine) CommitRoute(path []string) int {
	updated := 0
	for i := 0; i+1 < len(path); i++ {
		if ok := e.net.AddFlow(path[i], path[i+1], e.commitIncrement); !ok {
			e.log.Warn("skipping stale edge during route commit",
				zap.String("from", path[i]), zap.String("to", path[i+1]))
			continue
		}
		updated++
	}
	return updated
}
