package network

import (
	"fmt"
	"time"

	"github.com/krisandva/loadroute/pkg"
	"golang.org/x/exp/rand"
)

// GenerateGrid replace the network with a rows x cols lattice. every pair of
// horizontally or vertically adjacent cells is connected in both directions,
// giving rows*cols nodes and 2*(rows*(cols-1)+cols*(rows-1)) edges. node ids
// are "r,c" and positions place column c at x and row r at -y so the grid
// renders top-down. per-edge social sensitivity is randomized, the rest of
// the attributes use the segment defaults.
func (rn *RoadNetwork) GenerateGrid(rows, cols int, segmentDistance float64) {
	if segmentDistance <= 0 {
		segmentDistance = 1.0
	}

	rng := rand.New(rand.NewSource(uint64(time.Now().UnixNano())))

	rn.mu.Lock()
	defer rn.mu.Unlock()

	rn.nodes = make(map[string]Node, rows*cols)
	rn.adj = make(map[string][]string, rows*cols)
	rn.edges = make(map[EdgeKey]*edgeState)

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			rn.addNodeLocked(gridNodeId(r, c), float64(c), float64(-r), nil)
		}
	}

	addBoth := func(u, v string) {
		rn.addEdgeLocked(u, v, segmentDistance, pkg.DEFAULT_SPEED_KMH, pkg.DEFAULT_CAPACITY,
			WithSocialSensitivity(rng.Float64()))
		rn.addEdgeLocked(v, u, segmentDistance, pkg.DEFAULT_SPEED_KMH, pkg.DEFAULT_CAPACITY,
			WithSocialSensitivity(rng.Float64()))
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if c+1 < cols {
				addBoth(gridNodeId(r, c), gridNodeId(r, c+1))
			}
			if r+1 < rows {
				addBoth(gridNodeId(r, c), gridNodeId(r+1, c))
			}
		}
	}
}

func gridNodeId(r, c int) string {
	return fmt.Sprintf("%d,%d", r, c)
}
