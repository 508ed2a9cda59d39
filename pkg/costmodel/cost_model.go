package costmodel

import (
	"math"

	"github.com/krisandva/loadroute/pkg"
)

type EdgeAttributes interface {
	GetDistance() float64
	GetCapacity() float64
	GetCurrentFlow() float64
	GetFreeFlowTime() float64
	GetEmissionCoeff() float64
	GetSocialSensitivity() float64
}

// Breakdown named components of a segment cost. TravelTime is the physical
// congestion-inflated travel time in hours, before the alpha weighting.
type Breakdown struct {
	TimeCost          float64
	CongestionPenalty float64
	EmissionCost      float64
	SocialCost        float64
	TravelTime        float64
	Load              float64
}

func (b Breakdown) Total() float64 {
	return b.TimeCost + b.CongestionPenalty + b.EmissionCost + b.SocialCost
}

func (b *Breakdown) Accumulate(other Breakdown) {
	b.TimeCost += other.TimeCost
	b.CongestionPenalty += other.CongestionPenalty
	b.EmissionCost += other.EmissionCost
	b.SocialCost += other.SocialCost
	b.TravelTime += other.TravelTime
}

// CalculateSegmentCost total cost of traversing one edge under the given
// schedule, with its component breakdown:
//
//	timeCost          = alpha x freeFlowTime x (1 + 0.15 L^4)
//	congestionPenalty = beta x L when L <= 1, beta x (e^(L-1) - 1) x 10 above
//	emissionCost      = gamma x distance x emissionCoeff x (1 + 0.5 L)
//	socialCost        = delta x socialSensitivity x distance
//
// where L = currentFlow / capacity. an unusable edge (non-positive capacity
// or zero speed limit) prices at +Inf instead of returning an error, so the
// search skips it naturally. for non-negative attributes every component is
// non-negative, which Dijkstra requires.
func CalculateSegmentCost(e EdgeAttributes, tc TimeContext) (float64, Breakdown) {
	load := math.Inf(1)
	if capacity := e.GetCapacity(); capacity > 0 {
		load = e.GetCurrentFlow() / capacity
	}

	freeFlowTime := e.GetFreeFlowTime()
	if math.IsInf(load, 1) || math.IsInf(freeFlowTime, 1) {
		return math.Inf(1), Breakdown{
			TimeCost:   math.Inf(1),
			TravelTime: math.Inf(1),
			Load:       load,
		}
	}

	travelTime := freeFlowTime * (1 + pkg.BPR_COEFFICIENT*math.Pow(load, pkg.BPR_POWER))
	timeCost := tc.alpha * travelTime

	var congestionPenalty float64
	if load <= 1 {
		congestionPenalty = tc.beta * load
	} else {
		congestionPenalty = tc.beta * (math.Exp(load-1) - 1) * pkg.OVERLOAD_PENALTY_SCALE
	}

	emissionCost := tc.gamma * e.GetDistance() * e.GetEmissionCoeff() * (1 + pkg.EMISSION_LOAD_SENSITIVITY*load)
	socialCost := tc.delta * e.GetSocialSensitivity() * e.GetDistance()

	breakdown := Breakdown{
		TimeCost:          timeCost,
		CongestionPenalty: congestionPenalty,
		EmissionCost:      emissionCost,
		SocialCost:        socialCost,
		TravelTime:        travelTime,
		Load:              load,
	}
	return breakdown.Total(), breakdown
}

// SegmentWeight total cost only, for the relaxation hot path.
func SegmentWeight(e EdgeAttributes, tc TimeContext) float64 {
	total, _ := CalculateSegmentCost(e, tc)
	return total
}
