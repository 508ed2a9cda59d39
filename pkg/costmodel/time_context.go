package costmodel

import (
	"github.com/krisandva/loadroute/pkg"
)

// TimeContext weight schedule resolved for a single departure hour. routing
// resolves it once per request so every relaxation in the same search prices
// edges under the same schedule.
type TimeContext struct {
	hour  int
	alpha float64
	beta  float64
	gamma float64
	delta float64
	peak  bool
}

func NewTimeContext(hour int) TimeContext {
	hour = ((hour % 24) + 24) % 24
	peak := isPeakHour(hour)

	tc := TimeContext{
		hour:  hour,
		alpha: pkg.ALPHA_TIME_WEIGHT,
		beta:  pkg.BETA_CONGESTION_WEIGHT,
		gamma: pkg.GAMMA_EMISSION_WEIGHT,
		delta: pkg.DELTA_SOCIAL_WEIGHT,
		peak:  peak,
	}
	if peak {
		tc.alpha = pkg.PEAK_ALPHA_TIME_WEIGHT
		tc.beta = pkg.PEAK_BETA_CONGESTION
	}
	return tc
}

func isPeakHour(hour int) bool {
	morning := hour >= pkg.MORNING_PEAK_START_HOUR && hour <= pkg.MORNING_PEAK_END_HOUR
	evening := hour >= pkg.EVENING_PEAK_START_HOUR && hour <= pkg.EVENING_PEAK_END_HOUR
	return morning || evening
}

func (tc TimeContext) GetHour() int {
	return tc.hour
}

func (tc TimeContext) IsPeak() bool {
	return tc.peak
}

func (tc TimeContext) GetAlpha() float64 {
	return tc.alpha
}

func (tc TimeContext) GetBeta() float64 {
	return tc.beta
}

func (tc TimeContext) GetGamma() float64 {
	return tc.gamma
}

func (tc TimeContext) GetDelta() float64 {
	return tc.delta
}
