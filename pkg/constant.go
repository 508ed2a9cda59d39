package pkg

const (
	INF_WEIGHT float64 = 1e15
)

// cost model weights. peak hour multipliers follow the morning/evening
// commute windows.
const (
	ALPHA_TIME_WEIGHT      = 1.0
	BETA_CONGESTION_WEIGHT = 1.0
	GAMMA_EMISSION_WEIGHT  = 0.5
	DELTA_SOCIAL_WEIGHT    = 0.5
	PEAK_ALPHA_TIME_WEIGHT = 1.5
	PEAK_BETA_CONGESTION   = 2.0

	MORNING_PEAK_START_HOUR = 7
	MORNING_PEAK_END_HOUR   = 9
	EVENING_PEAK_START_HOUR = 17
	EVENING_PEAK_END_HOUR   = 19

	BPR_COEFFICIENT           = 0.15
	BPR_POWER                 = 4
	OVERLOAD_PENALTY_SCALE    = 10.0
	EMISSION_LOAD_SENSITIVITY = 0.5

	DEFAULT_DEPARTURE_HOUR = 8
)

// defaults applied to a road segment when the source data carries no value
// for the attribute.
const (
	DEFAULT_CAPACITY       = 100.0
	DEFAULT_SPEED_KMH      = 50.0
	DEFAULT_ACCESSIBILITY  = 1.0
	DEFAULT_EMISSION_COEFF = 1.0

	// lane capacity used when deriving segment capacity from openstreetmap
	// lane counts.
	CAPACITY_PER_LANE = 1000.0

	DEFAULT_GRID_ROWS = 5
	DEFAULT_GRID_COLS = 5

	GRID_SEGMENT_DISTANCE_KM = 1.0
)

// simulator bounds. perturbation is uniform in
// [PERTURBATION_MIN, PERTURBATION_MAX] x capacity and flow never exceeds
// MAX_LOAD_FACTOR x capacity.
const (
	PERTURBATION_MIN = -0.1
	PERTURBATION_MAX = 0.2
	MAX_LOAD_FACTOR  = 1.5

	COMMIT_FLOW_INCREMENT = 1.0
)

const (
	DEBUG = false
)
