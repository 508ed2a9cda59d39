package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/krisandva/loadroute/pkg/network"
	"github.com/krisandva/loadroute/pkg/routing"
	"github.com/krisandva/loadroute/pkg/util"
	"go.uber.org/zap"
)

func newTestRoutingService() (*RoutingService, *network.RoadNetwork) {
	rn := network.NewRoadNetwork()
	rn.AddNode("a", 0, 0, nil)
	rn.AddNode("b", 0.01, 0, nil)
	rn.AddNode("c", 0.02, 0, nil)
	rn.AddEdge("a", "b", 1, 50, 100)
	rn.AddEdge("b", "c", 1, 50, 100)

	engine := routing.NewEngine(zap.NewNop(), rn)
	return NewRoutingService(zap.NewNop(), engine), rn
}

func TestRoutingServiceFindRouteCommits(t *testing.T) {
	rs, rn := newTestRoutingService()

	result, pathPolyline, committed, err := rs.FindRoute(context.Background(), "a", "c", 3, false)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if result == nil || len(result.GetPath()) != 3 {
		t.Fatalf("result: got %+v", result)
	}
	if pathPolyline == "" {
		t.Error("polyline should not be empty")
	}
	if committed != 2 {
		t.Errorf("committed: got %d, want 2", committed)
	}

	e, _ := rn.GetEdge("a", "b")
	if !eq(e.GetCurrentFlow(), 1.0) {
		t.Errorf("flow a->b after commit: got %v, want 1.0", e.GetCurrentFlow())
	}
}

func TestRoutingServiceFindRouteDryRun(t *testing.T) {
	rs, rn := newTestRoutingService()

	_, _, committed, err := rs.FindRoute(context.Background(), "a", "c", 3, true)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if committed != 0 {
		t.Errorf("committed: got %d, want 0", committed)
	}

	e, _ := rn.GetEdge("a", "b")
	if !eq(e.GetCurrentFlow(), 0) {
		t.Errorf("dry run should not touch flows, got %v", e.GetCurrentFlow())
	}
}

func TestRoutingServiceErrorMapping(t *testing.T) {
	rs, _ := newTestRoutingService()

	testCases := []struct {
		name         string
		origin       string
		destination  string
		wantCode     error
		wantSentinel error
	}{
		{
			name:         "unknown origin",
			origin:       "zz",
			destination:  "c",
			wantCode:     util.ErrBadParamInput,
			wantSentinel: routing.ErrNodeNotFound,
		},
		{
			name:         "unreachable destination",
			origin:       "c",
			destination:  "a",
			wantCode:     util.ErrNotFound,
			wantSentinel: routing.ErrNoPath,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := rs.FindRoute(context.Background(), tt.origin, tt.destination, 3, true)
			if err == nil {
				t.Fatal("expected an error")
			}

			var wrapped *util.Error
			if !errors.As(err, &wrapped) {
				t.Fatalf("err should be a wrapped util error, got %T", err)
			}
			if !errors.Is(wrapped.Code(), tt.wantCode) {
				t.Errorf("code: got %v, want %v", wrapped.Code(), tt.wantCode)
			}
			if !errors.Is(err, tt.wantSentinel) {
				t.Errorf("err chain should keep %v, got %v", tt.wantSentinel, err)
			}
		})
	}
}
