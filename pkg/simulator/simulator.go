package simulator

import (
	"context"
	"time"

	"github.com/krisandva/loadroute/pkg"
	"github.com/krisandva/loadroute/pkg/network"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
)

// Simulator background traffic churn. every tick it perturbs the current
// flow of a small random sample of edges so that repeated route queries see
// a moving congestion picture.
type Simulator struct {
	log *zap.Logger
	net *network.RoadNetwork

	interval       time.Duration
	sampleFraction float64
	maxLoadFactor  float64
	rng            *rand.Rand
}

type Option func(*Simulator)

func WithInterval(interval time.Duration) Option {
	return func(s *Simulator) {
		s.interval = interval
	}
}

// WithSampleFraction fraction of edges perturbed per tick. at least one edge
// is touched whenever the network is non-empty.
func WithSampleFraction(fraction float64) Option {
	return func(s *Simulator) {
		s.sampleFraction = fraction
	}
}

func WithSeed(seed uint64) Option {
	return func(s *Simulator) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

func NewSimulator(log *zap.Logger, net *network.RoadNetwork, opts ...Option) *Simulator {
	sim := &Simulator{
		log:            log,
		net:            net,
		interval:       2 * time.Second,
		sampleFraction: 0.01,
		maxLoadFactor:  pkg.MAX_LOAD_FACTOR,
		rng:            rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
	}
	for _, opt := range opts {
		opt(sim)
	}
	return sim
}

// Run tick until the context is cancelled.
func (s *Simulator) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("traffic simulator started",
		zap.Duration("interval", s.interval),
		zap.Float64("sample_fraction", s.sampleFraction))

	for {
		select {
		case <-ctx.Done():
			s.log.Info("traffic simulator stopped")
			return
		case <-ticker.C:
			s.Step()
		}
	}
}

// Step perturb one random sample of edges. the flow delta is drawn uniformly
// from [-10%, +20%] of the edge capacity, the store clamps the result to
// [0, maxLoadFactor*capacity]. returns how many edges were touched.
func (s *Simulator) Step() int {
	keys := s.net.EdgeKeys()
	if len(keys) == 0 {
		return 0
	}

	sampleSize := int(s.sampleFraction * float64(len(keys)))
	if sampleSize < 1 {
		sampleSize = 1
	}
	if sampleSize > len(keys) {
		sampleSize = len(keys)
	}

	perturbed := 0
	for _, idx := range s.rng.Perm(len(keys))[:sampleSize] {
		key := keys[idx]
		edge, ok := s.net.GetEdge(key.From, key.To)
		if !ok {
			continue
		}

		span := pkg.PERTURBATION_MAX - pkg.PERTURBATION_MIN
		delta := (pkg.PERTURBATION_MIN + span*s.rng.Float64()) * edge.GetCapacity()

		if _, ok := s.net.Perturb(key.From, key.To, delta, s.maxLoadFactor); ok {
			perturbed++
		}
	}

	if pkg.DEBUG {
		s.log.Debug("simulator tick", zap.Int("perturbed_edges", perturbed))
	}
	return perturbed
}
