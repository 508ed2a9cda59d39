package controllers

import (
	"github.com/krisandva/loadroute/pkg/network"
	"github.com/krisandva/loadroute/pkg/routing"
)

type findRouteRequest struct {
	Origin      string `json:"origin" validate:"required"`
	Destination string `json:"destination" validate:"required"`
	Hour        *int   `json:"hour" validate:"omitempty,min=0,max=23"`
	DryRun      bool   `json:"dry_run"`
}

type costComponentsResponse struct {
	TimeCost          float64 `json:"time_cost"`
	CongestionPenalty float64 `json:"congestion_penalty"`
	EmissionCost      float64 `json:"emission_cost"`
	SocialCost        float64 `json:"social_cost"`
	TravelTime        float64 `json:"travel_time"`
	Load              float64 `json:"load"`
}

type routeBreakdownResponse struct {
	TimeCost          float64 `json:"time_cost"`
	CongestionPenalty float64 `json:"congestion_penalty"`
	EmissionCost      float64 `json:"emission_cost"`
	SocialCost        float64 `json:"social_cost"`
	TravelTimeHours   float64 `json:"travel_time_hours"`
}

type routeSegmentResponse struct {
	U          string                 `json:"u"`
	V          string                 `json:"v"`
	Cost       float64                `json:"cost"`
	Components costComponentsResponse `json:"components"`
}

type coordinateResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type findRouteResponse struct {
	Path           []string               `json:"path"`
	TotalCost      float64                `json:"total_cost"`
	Breakdown      routeBreakdownResponse `json:"breakdown"`
	Segments       []routeSegmentResponse `json:"segments"`
	Geometry       []coordinateResponse   `json:"geometry"`
	Polyline       string                 `json:"polyline"`
	Hour           int                    `json:"hour"`
	Peak           bool                   `json:"peak"`
	CommittedEdges int                    `json:"committed_edges"`
}

func newCostComponentsResponse(segment routing.RouteSegment) costComponentsResponse {
	breakdown := segment.GetBreakdown()
	return costComponentsResponse{
		TimeCost:          breakdown.TimeCost,
		CongestionPenalty: breakdown.CongestionPenalty,
		EmissionCost:      breakdown.EmissionCost,
		SocialCost:        breakdown.SocialCost,
		TravelTime:        breakdown.TravelTime,
		Load:              breakdown.Load,
	}
}

func NewFindRouteResponse(result *routing.RouteResult, pathPolyline string, committed int) findRouteResponse {
	segments := make([]routeSegmentResponse, 0, len(result.GetSegments()))
	for _, segment := range result.GetSegments() {
		segments = append(segments, routeSegmentResponse{
			U:          segment.GetFrom(),
			V:          segment.GetTo(),
			Cost:       segment.GetCost(),
			Components: newCostComponentsResponse(segment),
		})
	}

	geometry := make([]coordinateResponse, 0, len(result.GetGeometry()))
	for _, point := range result.GetGeometry() {
		geometry = append(geometry, coordinateResponse{
			Lat: point.GetLat(),
			Lng: point.GetLon(),
		})
	}

	breakdown := result.GetBreakdown()
	tc := result.GetTimeContext()
	return findRouteResponse{
		Path:      result.GetPath(),
		TotalCost: result.GetTotalCost(),
		Breakdown: routeBreakdownResponse{
			TimeCost:          breakdown.TimeCost,
			CongestionPenalty: breakdown.CongestionPenalty,
			EmissionCost:      breakdown.EmissionCost,
			SocialCost:        breakdown.SocialCost,
			TravelTimeHours:   breakdown.TravelTime,
		},
		Segments:       segments,
		Geometry:       geometry,
		Polyline:       pathPolyline,
		Hour:           tc.GetHour(),
		Peak:           tc.IsPeak(),
		CommittedEdges: committed,
	}
}

type flowUpdateRequest struct {
	U           string  `json:"u" validate:"required"`
	V           string  `json:"v" validate:"required"`
	CurrentFlow float64 `json:"current_flow" validate:"min=0"`
}

type trafficUpdateRequest struct {
	Updates []flowUpdateRequest `json:"updates" validate:"required,min=1,dive"`
}

func (r trafficUpdateRequest) toFlowUpdates() []network.FlowUpdate {
	updates := make([]network.FlowUpdate, 0, len(r.Updates))
	for _, u := range r.Updates {
		updates = append(updates, network.FlowUpdate{
			From:        u.U,
			To:          u.V,
			CurrentFlow: u.CurrentFlow,
		})
	}
	return updates
}

type trafficUpdateResponse struct {
	Message string `json:"message"`
	Applied int    `json:"applied"`
	Skipped int    `json:"skipped"`
}

type overloadedEdgeResponse struct {
	U           string  `json:"u"`
	V           string  `json:"v"`
	CurrentFlow float64 `json:"current_flow"`
	Capacity    float64 `json:"capacity"`
}

type statsResponse struct {
	Nodes           int                      `json:"nodes"`
	Edges           int                      `json:"edges"`
	TotalFlow       float64                  `json:"total_flow"`
	AverageLoad     float64                  `json:"average_load"`
	MaxLoad         float64                  `json:"max_load"`
	OverloadedEdges []overloadedEdgeResponse `json:"overloaded_edges"`
}

func NewStatsResponse(stats network.Stats) statsResponse {
	overloaded := make([]overloadedEdgeResponse, 0, len(stats.GetOverloaded()))
	for _, edge := range stats.GetOverloaded() {
		overloaded = append(overloaded, overloadedEdgeResponse{
			U:           edge.GetFrom(),
			V:           edge.GetTo(),
			CurrentFlow: edge.GetCurrentFlow(),
			Capacity:    edge.GetCapacity(),
		})
	}
	return statsResponse{
		Nodes:           stats.GetNumNodes(),
		Edges:           stats.GetNumEdges(),
		TotalFlow:       stats.GetTotalFlow(),
		AverageLoad:     stats.GetAverageLoad(),
		MaxLoad:         stats.GetMaxLoad(),
		OverloadedEdges: overloaded,
	}
}

type layoutNodeResponse struct {
	Id string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type layoutEdgeResponse struct {
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	CurrentFlow float64 `json:"current_flow"`
	Capacity    float64 `json:"capacity"`
	Congestion  float64 `json:"congestion"`
}

type layoutResponse struct {
	Nodes []layoutNodeResponse `json:"nodes"`
	Edges []layoutEdgeResponse `json:"edges"`
}

func NewLayoutResponse(nodes []network.Node, edges []network.Edge) layoutResponse {
	layoutNodes := make([]layoutNodeResponse, 0, len(nodes))
	for _, node := range nodes {
		layoutNodes = append(layoutNodes, layoutNodeResponse{
			Id: node.GetId(),
			X:  node.GetLon(),
			Y:  node.GetLat(),
		})
	}

	layoutEdges := make([]layoutEdgeResponse, 0, len(edges))
	for _, edge := range edges {
		layoutEdges = append(layoutEdges, layoutEdgeResponse{
			Source:      edge.GetFrom(),
			Target:      edge.GetTo(),
			CurrentFlow: edge.GetCurrentFlow(),
			Capacity:    edge.GetCapacity(),
			Congestion:  edge.GetCongestion(),
		})
	}
	return layoutResponse{
		Nodes: layoutNodes,
		Edges: layoutEdges,
	}
}

type buildGridRequest struct {
	Rows            int     `json:"rows" validate:"omitempty,min=1,max=500"`
	Cols            int     `json:"cols" validate:"omitempty,min=1,max=500"`
	SegmentDistance float64 `json:"segment_distance" validate:"omitempty,gt=0"`
}

type buildGridResponse struct {
	Message string `json:"message"`
	Nodes   int    `json:"nodes"`
	Edges   int    `json:"edges"`
}

type nearestNodeResponse struct {
	NodeId            string  `json:"node_id"`
	Lat               float64 `json:"lat"`
	Lon               float64 `json:"lon"`
	DistanceKm        float64 `json:"distance_km"`
	SnappedLat        float64 `json:"snapped_lat"`
	SnappedLon        float64 `json:"snapped_lon"`
	SnappedDistanceKm float64 `json:"snapped_distance_km"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type wsRequest struct {
	Op          string `json:"op" validate:"required,oneof=stats layout route"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Hour        *int   `json:"hour" validate:"omitempty,min=0,max=23"`
	DryRun      bool   `json:"dry_run"`
}
