package costmodel

import (
	"math"
	"testing"
)

const eps = 1e-9

// equal operator
func eq(a, b float64) bool {
	return math.Abs(a-b) <= eps
}

type testEdge struct {
	distance          float64
	capacity          float64
	currentFlow       float64
	freeFlowTime      float64
	emissionCoeff     float64
	socialSensitivity float64
}

func (e testEdge) GetDistance() float64          { return e.distance }
func (e testEdge) GetCapacity() float64          { return e.capacity }
func (e testEdge) GetCurrentFlow() float64       { return e.currentFlow }
func (e testEdge) GetFreeFlowTime() float64      { return e.freeFlowTime }
func (e testEdge) GetEmissionCoeff() float64     { return e.emissionCoeff }
func (e testEdge) GetSocialSensitivity() float64 { return e.socialSensitivity }

func TestNewTimeContext(t *testing.T) {

	testCases := []struct {
		name      string
		hour      int
		wantHour  int
		wantAlpha float64
		wantBeta  float64
		wantPeak  bool
	}{
		{
			name:      "midnight off peak",
			hour:      0,
			wantHour:  0,
			wantAlpha: 1.0,
			wantBeta:  1.0,
			wantPeak:  false,
		},
		{
			name:      "morning peak start",
			hour:      7,
			wantHour:  7,
			wantAlpha: 1.5,
			wantBeta:  2.0,
			wantPeak:  true,
		},
		{
			name:      "morning peak end inclusive",
			hour:      9,
			wantHour:  9,
			wantAlpha: 1.5,
			wantBeta:  2.0,
			wantPeak:  true,
		},
		{
			name:      "after morning peak",
			hour:      10,
			wantHour:  10,
			wantAlpha: 1.0,
			wantBeta:  1.0,
			wantPeak:  false,
		},
		{
			name:      "evening peak start",
			hour:      17,
			wantHour:  17,
			wantAlpha: 1.5,
			wantBeta:  2.0,
			wantPeak:  true,
		},
		{
			name:      "evening peak end inclusive",
			hour:      19,
			wantHour:  19,
			wantAlpha: 1.5,
			wantBeta:  2.0,
			wantPeak:  true,
		},
		{
			name:      "after evening peak",
			hour:      20,
			wantHour:  20,
			wantAlpha: 1.0,
			wantBeta:  1.0,
			wantPeak:  false,
		},
		{
			name:      "negative hour wraps",
			hour:      -1,
			wantHour:  23,
			wantAlpha: 1.0,
			wantBeta:  1.0,
			wantPeak:  false,
		},
		{
			name:      "hour above 24 wraps into peak",
			hour:      31,
			wantHour:  7,
			wantAlpha: 1.5,
			wantBeta:  2.0,
			wantPeak:  true,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			tc := NewTimeContext(tt.hour)
			if tc.GetHour() != tt.wantHour {
				t.Errorf("hour: got %v, want %v", tc.GetHour(), tt.wantHour)
			}
			if !eq(tc.GetAlpha(), tt.wantAlpha) {
				t.Errorf("alpha: got %v, want %v", tc.GetAlpha(), tt.wantAlpha)
			}
			if !eq(tc.GetBeta(), tt.wantBeta) {
				t.Errorf("beta: got %v, want %v", tc.GetBeta(), tt.wantBeta)
			}
			if tc.IsPeak() != tt.wantPeak {
				t.Errorf("peak: got %v, want %v", tc.IsPeak(), tt.wantPeak)
			}
			// gamma and delta never change with the schedule
			if !eq(tc.GetGamma(), 0.5) || !eq(tc.GetDelta(), 0.5) {
				t.Errorf("gamma/delta: got %v/%v, want 0.5/0.5", tc.GetGamma(), tc.GetDelta())
			}
		})
	}
}

func TestCalculateSegmentCost(t *testing.T) {

	testCases := []struct {
		name           string
		edge           testEdge
		hour           int
		wantTotal      float64
		wantTime       float64
		wantCongestion float64
		wantEmission   float64
		wantSocial     float64
		wantTravelTime float64
		wantLoad       float64
	}{
		{
			name: "free flow",
			edge: testEdge{
				distance:      1,
				capacity:      100,
				currentFlow:   0,
				freeFlowTime:  0.02,
				emissionCoeff: 1,
			},
			hour:           3,
			wantTotal:      0.52,
			wantTime:       0.02,
			wantCongestion: 0,
			wantEmission:   0.5,
			wantSocial:     0,
			wantTravelTime: 0.02,
			wantLoad:       0,
		},
		{
			name: "half load",
			edge: testEdge{
				distance:      1,
				capacity:      100,
				currentFlow:   50,
				freeFlowTime:  0.02,
				emissionCoeff: 1,
			},
			hour:           3,
			wantTotal:      1.1451875,
			wantTime:       0.0201875,
			wantCongestion: 0.5,
			wantEmission:   0.625,
			wantSocial:     0,
			wantTravelTime: 0.0201875,
			wantLoad:       0.5,
		},
		{
			name: "at capacity",
			edge: testEdge{
				distance:      1,
				capacity:      100,
				currentFlow:   100,
				freeFlowTime:  0.02,
				emissionCoeff: 1,
			},
			hour:           3,
			wantTotal:      1.773,
			wantTime:       0.023,
			wantCongestion: 1.0,
			wantEmission:   0.75,
			wantSocial:     0,
			wantTravelTime: 0.023,
			wantLoad:       1.0,
		},
		{
			name: "overloaded penalty is exponential",
			edge: testEdge{
				distance:      1,
				capacity:      100,
				currentFlow:   200,
				freeFlowTime:  0.02,
				emissionCoeff: 1,
			},
			hour:           3,
			wantTotal:      0.068 + (math.E-1)*10 + 1.0,
			wantTime:       0.068,
			wantCongestion: (math.E - 1) * 10,
			wantEmission:   1.0,
			wantSocial:     0,
			wantTravelTime: 0.068,
			wantLoad:       2.0,
		},
		{
			name: "peak reweights time and congestion",
			edge: testEdge{
				distance:      1,
				capacity:      100,
				currentFlow:   100,
				freeFlowTime:  0.02,
				emissionCoeff: 1,
			},
			hour:           8,
			wantTotal:      2.7845,
			wantTime:       0.0345,
			wantCongestion: 2.0,
			wantEmission:   0.75,
			wantSocial:     0,
			wantTravelTime: 0.023,
			wantLoad:       1.0,
		},
		{
			name: "social sensitivity scales with distance",
			edge: testEdge{
				distance:          2,
				capacity:          100,
				currentFlow:       0,
				freeFlowTime:      0.04,
				emissionCoeff:     1,
				socialSensitivity: 2,
			},
			hour:           3,
			wantTotal:      3.04,
			wantTime:       0.04,
			wantCongestion: 0,
			wantEmission:   1.0,
			wantSocial:     2.0,
			wantTravelTime: 0.04,
			wantLoad:       0,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			total, breakdown := CalculateSegmentCost(tt.edge, NewTimeContext(tt.hour))

			if !eq(total, tt.wantTotal) {
				t.Errorf("total: got %v, want %v", total, tt.wantTotal)
			}
			if !eq(breakdown.TimeCost, tt.wantTime) {
				t.Errorf("time cost: got %v, want %v", breakdown.TimeCost, tt.wantTime)
			}
			if !eq(breakdown.CongestionPenalty, tt.wantCongestion) {
				t.Errorf("congestion penalty: got %v, want %v", breakdown.CongestionPenalty, tt.wantCongestion)
			}
			if !eq(breakdown.EmissionCost, tt.wantEmission) {
				t.Errorf("emission cost: got %v, want %v", breakdown.EmissionCost, tt.wantEmission)
			}
			if !eq(breakdown.SocialCost, tt.wantSocial) {
				t.Errorf("social cost: got %v, want %v", breakdown.SocialCost, tt.wantSocial)
			}
			if !eq(breakdown.TravelTime, tt.wantTravelTime) {
				t.Errorf("travel time: got %v, want %v", breakdown.TravelTime, tt.wantTravelTime)
			}
			if !eq(breakdown.Load, tt.wantLoad) {
				t.Errorf("load: got %v, want %v", breakdown.Load, tt.wantLoad)
			}
			if !eq(breakdown.Total(), total) {
				t.Errorf("breakdown total %v does not match returned total %v", breakdown.Total(), total)
			}
		})
	}
}

func TestCalculateSegmentCostUnusableEdge(t *testing.T) {

	testCases := []struct {
		name string
		edge testEdge
	}{
		{
			name: "zero capacity",
			edge: testEdge{
				distance:      1,
				capacity:      0,
				currentFlow:   10,
				freeFlowTime:  0.02,
				emissionCoeff: 1,
			},
		},
		{
			name: "negative capacity",
			edge: testEdge{
				distance:      1,
				capacity:      -5,
				currentFlow:   10,
				freeFlowTime:  0.02,
				emissionCoeff: 1,
			},
		},
		{
			name: "zero speed limit",
			edge: testEdge{
				distance:      1,
				capacity:      100,
				currentFlow:   10,
				freeFlowTime:  math.Inf(1),
				emissionCoeff: 1,
			},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			total, breakdown := CalculateSegmentCost(tt.edge, NewTimeContext(3))
			if !math.IsInf(total, 1) {
				t.Errorf("total: got %v, want +Inf", total)
			}
			if !math.IsInf(breakdown.TimeCost, 1) {
				t.Errorf("time cost: got %v, want +Inf", breakdown.TimeCost)
			}
		})
	}
}

func TestSegmentWeightMonotonicInFlow(t *testing.T) {
	tc := NewTimeContext(3)

	prev := -1.0
	for flow := 0.0; flow <= 300; flow += 25 {
		edge := testEdge{
			distance:      1,
			capacity:      100,
			currentFlow:   flow,
			freeFlowTime:  0.02,
			emissionCoeff: 1,
		}
		weight := SegmentWeight(edge, tc)
		if weight <= prev {
			t.Fatalf("weight should strictly increase with flow: flow %v gave %v after %v", flow, weight, prev)
		}
		prev = weight
	}
}

func TestSegmentCostComponentsNonNegative(t *testing.T) {
	for _, hour := range []int{3, 8, 18} {
		tc := NewTimeContext(hour)
		for _, flow := range []float64{0, 30, 100, 150, 300} {
			edge := testEdge{
				distance:          2.5,
				capacity:          100,
				currentFlow:       flow,
				freeFlowTime:      0.05,
				emissionCoeff:     1.2,
				socialSensitivity: 0.7,
			}
			_, breakdown := CalculateSegmentCost(edge, tc)
			if breakdown.TimeCost < 0 || breakdown.CongestionPenalty < 0 ||
				breakdown.EmissionCost < 0 || breakdown.SocialCost < 0 {
				t.Fatalf("negative component at hour %d flow %v: %+v", hour, flow, breakdown)
			}
		}
	}
}

func TestBreakdownAccumulate(t *testing.T) {
	var acc Breakdown
	acc.Accumulate(Breakdown{TimeCost: 1, CongestionPenalty: 2, EmissionCost: 3, SocialCost: 4, TravelTime: 0.5})
	acc.Accumulate(Breakdown{TimeCost: 10, CongestionPenalty: 20, EmissionCost: 30, SocialCost: 40, TravelTime: 1.5})

	if !eq(acc.TimeCost, 11) || !eq(acc.CongestionPenalty, 22) ||
		!eq(acc.EmissionCost, 33) || !eq(acc.SocialCost, 44) {
		t.Errorf("accumulated components wrong: %+v", acc)
	}
	if !eq(acc.TravelTime, 2.0) {
		t.Errorf("travel time: got %v, want 2.0", acc.TravelTime)
	}
	if !eq(acc.Total(), 110) {
		t.Errorf("total: got %v, want 110", acc.Total())
	}
}
