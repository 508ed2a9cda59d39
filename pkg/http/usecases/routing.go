package usecases

import (
	"context"
	"errors"

	"github.com/krisandva/loadroute/pkg/geo"
	"github.com/krisandva/loadroute/pkg/routing"
	"github.com/krisandva/loadroute/pkg/util"
	"go.uber.org/zap"
)

type RoutingService struct {
	log    *zap.Logger
	engine RoutingEngine
}

func NewRoutingService(log *zap.Logger, engine RoutingEngine) *RoutingService {
	return &RoutingService{
		log:    log,
		engine: engine,
	}
}

// FindRoute compute the minimum-cost route and, unless dryRun is set, commit
// its flow back into the network. returns the route, its geometry as an
// encoded polyline and the number of committed edges.
func (rs *RoutingService) FindRoute(ctx context.Context, origin, destination string, hour int,
	dryRun bool) (*routing.RouteResult, string, int, error) {
	result, err := rs.engine.FindRoute(ctx, origin, destination, hour)
	if err != nil {
		switch {
		case errors.Is(err, routing.ErrNodeNotFound):
			return nil, "", 0, util.WrapErrorf(err, util.ErrBadParamInput,
				"origin (%s) or destination (%s) node not found in network", origin, destination)
		case errors.Is(err, routing.ErrNoPath):
			return nil, "", 0, util.WrapErrorf(err, util.ErrNotFound,
				"no path found from %s to %s", origin, destination)
		default:
			return nil, "", 0, util.WrapErrorf(err, util.ErrInternalServerError,
				"route search from %s to %s failed", origin, destination)
		}
	}

	pathPolyline := geo.PolylineFromCoords(result.GetGeometry())

	committed := 0
	if !dryRun {
		committed = rs.engine.CommitRoute(result.GetPath())
	}

	return result, pathPolyline, committed, nil
}
