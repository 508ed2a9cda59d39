package routing

import (
	"github.com/krisandva/loadroute/pkg/costmodel"
	"github.com/krisandva/loadroute/pkg/geo"
)

type RouteSegment struct {
	from      string
	to        string
	cost      float64
	breakdown costmodel.Breakdown
}

func NewRouteSegment(from, to string, cost float64, breakdown costmodel.Breakdown) RouteSegment {
	return RouteSegment{from: from, to: to, cost: cost, breakdown: breakdown}
}

func (rs RouteSegment) GetFrom() string {
	return rs.from
}

func (rs RouteSegment) GetTo() string {
	return rs.to
}

func (rs RouteSegment) GetCost() float64 {
	return rs.cost
}

func (rs RouteSegment) GetBreakdown() costmodel.Breakdown {
	return rs.breakdown
}

// RouteResult a computed route. breakdown holds the component totals over
// the whole path, geometry the stitched polyline coordinates.
type RouteResult struct {
	path        []string
	totalCost   float64
	breakdown   costmodel.Breakdown
	segments    []RouteSegment
	geometry    []geo.Coordinate
	timeContext costmodel.TimeContext
}

func (rr *RouteResult) GetPath() []string {
	return rr.path
}

func (rr *RouteResult) GetTotalCost() float64 {
	return rr.totalCost
}

func (rr *RouteResult) GetBreakdown() costmodel.Breakdown {
	return rr.breakdown
}

func (rr *RouteResult) GetSegments() []RouteSegment {
	return rr.segments
}

func (rr *RouteResult) GetGeometry() []geo.Coordinate {
	return rr.geometry
}

func (rr *RouteResult) GetTimeContext() costmodel.TimeContext {
	return rr.timeContext
}
