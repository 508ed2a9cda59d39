package routing

import (
	"context"
	"math"

	"github.com/krisandva/loadroute/pkg"
	"github.com/krisandva/loadroute/pkg/costmodel"
	"github.com/krisandva/loadroute/pkg/datastructure"
	"github.com/krisandva/loadroute/pkg/network"
	"github.com/krisandva/loadroute/pkg/util"
)

// dijkstraSearch single query state. weights come from the cost model under
// one TimeContext, read live from the store. the cost model never produces
// negative weights for valid attributes, which is what makes the label-
// setting search correct here.
type dijkstraSearch struct {
	net *network.RoadNetwork
	tc  costmodel.TimeContext

	pq        *datastructure.MinHeap[string]
	distances map[string]float64
	parents   map[string]string
	heapNodes map[string]*datastructure.PriorityQueueNode[string]
	settled   map[string]struct{}

	maxSettledNodes int
}

func newDijkstraSearch(net *network.RoadNetwork, tc costmodel.TimeContext, maxSettledNodes int) *dijkstraSearch {
	return &dijkstraSearch{
		net:             net,
		tc:              tc,
		pq:              datastructure.NewFourAryHeap[string](),
		distances:       make(map[string]float64),
		parents:         make(map[string]string),
		heapNodes:       make(map[string]*datastructure.PriorityQueueNode[string]),
		settled:         make(map[string]struct{}),
		maxSettledNodes: maxSettledNodes,
	}
}

// run settle nodes until the target is reached or the queue drains. neighbor
// iteration is sorted and relaxation requires strict improvement, so repeat
// runs over an unchanged network produce the same path even when several
// paths tie on cost.
func (ds *dijkstraSearch) run(ctx context.Context, source, target string) error {
	ds.distances[source] = 0
	sourceNode := datastructure.NewPriorityQueueNode(0, source)
	ds.heapNodes[source] = sourceNode
	ds.pq.Insert(sourceNode)

	numSettledNodes := 0
	for !ds.pq.IsEmpty() {
		if util.StopConcurrentOperation(ctx) {
			return ctx.Err()
		}

		minNode, err := ds.pq.ExtractMin()
		if err != nil {
			break
		}
		u := minNode.GetItem()
		ds.settled[u] = struct{}{}
		numSettledNodes++

		if u == target {
			return nil
		}
		if ds.maxSettledNodes > 0 && numSettledNodes >= ds.maxSettledNodes {
			return ErrSearchLimit
		}

		ds.relaxNeighbors(u)
	}
	return nil
}

func (ds *dijkstraSearch) relaxNeighbors(u string) {
	uDist := ds.distances[u]

	for _, v := range ds.net.Neighbors(u) {
		if _, done := ds.settled[v]; done {
			continue
		}

		e, ok := ds.net.GetEdge(u, v)
		if !ok {
			continue
		}

		weight := costmodel.SegmentWeight(e, ds.tc)
		if math.IsInf(weight, 1) || weight >= pkg.INF_WEIGHT {
			continue
		}

		newDist := uDist + weight
		oldDist, labelled := ds.distances[v]
		if !labelled {
			ds.distances[v] = newDist
			ds.parents[v] = u
			vNode := datastructure.NewPriorityQueueNode(newDist, v)
			ds.heapNodes[v] = vNode
			ds.pq.Insert(vNode)
		} else if newDist < oldDist {
			ds.distances[v] = newDist
			ds.parents[v] = u
			ds.pq.DecreaseKey(ds.heapNodes[v], newDist)
		}
	}
}

// pathTo reconstruct source -> target from the parent links.
func (ds *dijkstraSearch) pathTo(source, target string) ([]string, bool) {
	if _, ok := ds.distances[target]; !ok {
		return nil, false
	}

	reversed := []string{target}
	for at := target; at != source; {
		parent, ok := ds.parents[at]
		if !ok {
			return nil, false
		}
		reversed = append(reversed, parent)
		at = parent
	}
	return util.ReverseG(reversed), true
}
