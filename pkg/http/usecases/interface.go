package usecases

import (
	"context"

	"github.com/krisandva/loadroute/pkg/routing"
)

type RoutingEngine interface {
	FindRoute(ctx context.Context, origin, destination string, hour int) (*routing.RouteResult, error)
	CommitRoute(path []string) int
}
