package network

import (
	"math"
	"sort"
	"sync"

	"github.com/krisandva/loadroute/pkg"
	"github.com/krisandva/loadroute/pkg/geo"
)

type Node struct {
	id   string
	lon  float64
	lat  float64
	tags map[string]string
}

func NewNode(id string, lon, lat float64, tags map[string]string) Node {
	return Node{id: id, lon: lon, lat: lat, tags: tags}
}

func (n Node) GetId() string {
	return n.id
}

func (n Node) GetLon() float64 {
	return n.lon
}

func (n Node) GetLat() float64 {
	return n.lat
}

func (n Node) GetTag(key string) string {
	return n.tags[key]
}

func (n Node) GetTags() map[string]string {
	return n.tags
}

// Edge is a directed road segment. distance in km, speedLimit in km/h,
// freeFlowTime in hours. currentFlow and congestion are the live traffic
// state, everything else is fixed at construction.
type Edge struct {
	from string
	to   string

	distance     float64
	speedLimit   float64
	capacity     float64
	freeFlowTime float64

	historicalLoad    float64
	accessibility     float64
	socialSensitivity float64
	emissionCoeff     float64

	geometry []geo.Coordinate

	currentFlow float64
	congestion  float64
}

func (e Edge) GetFrom() string {
	return e.from
}

func (e Edge) GetTo() string {
	return e.to
}

func (e Edge) GetDistance() float64 {
	return e.distance
}

func (e Edge) GetSpeedLimit() float64 {
	return e.speedLimit
}

func (e Edge) GetCapacity() float64 {
	return e.capacity
}

func (e Edge) GetFreeFlowTime() float64 {
	return e.freeFlowTime
}

func (e Edge) GetHistoricalLoad() float64 {
	return e.historicalLoad
}

func (e Edge) GetAccessibility() float64 {
	return e.accessibility
}

func (e Edge) GetSocialSensitivity() float64 {
	return e.socialSensitivity
}

func (e Edge) GetEmissionCoeff() float64 {
	return e.emissionCoeff
}

func (e Edge) GetGeometry() []geo.Coordinate {
	return e.geometry
}

func (e Edge) GetCurrentFlow() float64 {
	return e.currentFlow
}

func (e Edge) GetCongestion() float64 {
	return e.congestion
}

// GetLoad ratio of current flow to capacity. non-positive capacity means the
// edge is unusable and the load is +Inf.
func (e Edge) GetLoad() float64 {
	if e.capacity <= 0 {
		return math.Inf(1)
	}
	return e.currentFlow / e.capacity
}

// IsOverloaded flow strictly above capacity.
func (e Edge) IsOverloaded() bool {
	return e.currentFlow > e.capacity
}

type EdgeOption func(*Edge)

func WithCongestion(congestion float64) EdgeOption {
	return func(e *Edge) {
		e.congestion = congestion
	}
}

func WithHistoricalLoad(load float64) EdgeOption {
	return func(e *Edge) {
		e.historicalLoad = load
	}
}

func WithAccessibility(accessibility float64) EdgeOption {
	return func(e *Edge) {
		e.accessibility = accessibility
	}
}

func WithSocialSensitivity(sensitivity float64) EdgeOption {
	return func(e *Edge) {
		e.socialSensitivity = sensitivity
	}
}

func WithEmissionCoeff(coeff float64) EdgeOption {
	return func(e *Edge) {
		e.emissionCoeff = coeff
	}
}

func WithCurrentFlow(flow float64) EdgeOption {
	return func(e *Edge) {
		e.currentFlow = flow
	}
}

func WithGeometry(coords []geo.Coordinate) EdgeOption {
	return func(e *Edge) {
		e.geometry = coords
	}
}

type EdgeKey struct {
	From string
	To   string
}

func NewEdgeKey(from, to string) EdgeKey {
	return EdgeKey{From: from, To: to}
}

// edgeState pairs the edge record with the lock guarding its live traffic
// state. currentFlow and congestion are only read or written while holding
// mu, so the pair is always observed consistent.
type edgeState struct {
	mu sync.RWMutex
	e  Edge
}

// RoadNetwork directed road graph shared by the routing engine, the traffic
// simulator and the admin API. topology (nodes, edges, adjacency) is guarded
// by the store lock, per-edge traffic state by the edge lock.
type RoadNetwork struct {
	mu    sync.RWMutex
	nodes map[string]Node
	adj   map[string][]string
	edges map[EdgeKey]*edgeState
}

func NewRoadNetwork() *RoadNetwork {
	return &RoadNetwork{
		nodes: make(map[string]Node),
		adj:   make(map[string][]string),
		edges: make(map[EdgeKey]*edgeState),
	}
}

func (rn *RoadNetwork) AddNode(id string, lon, lat float64, tags map[string]string) {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	rn.addNodeLocked(id, lon, lat, tags)
}

func (rn *RoadNetwork) addNodeLocked(id string, lon, lat float64, tags map[string]string) {
	rn.nodes[id] = NewNode(id, lon, lat, tags)
	if _, ok := rn.adj[id]; !ok {
		rn.adj[id] = make([]string, 0)
	}
}

// AddEdge insert or wholesale-replace the directed edge (from, to).
// freeFlowTime is derived from distance and speedLimit, a zero speed limit
// makes it +Inf. endpoints that do not exist yet are created as position-less
// placeholder nodes.
func (rn *RoadNetwork) AddEdge(from, to string, distance, speedLimit, capacity float64, opts ...EdgeOption) {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	rn.addEdgeLocked(from, to, distance, speedLimit, capacity, opts...)
}

func (rn *RoadNetwork) addEdgeLocked(from, to string, distance, speedLimit, capacity float64, opts ...EdgeOption) {
	if _, ok := rn.nodes[from]; !ok {
		rn.addNodeLocked(from, 0, 0, nil)
	}
	if _, ok := rn.nodes[to]; !ok {
		rn.addNodeLocked(to, 0, 0, nil)
	}

	freeFlowTime := math.Inf(1)
	if speedLimit > 0 {
		freeFlowTime = distance / speedLimit
	}

	e := Edge{
		from:          from,
		to:            to,
		distance:      distance,
		speedLimit:    speedLimit,
		capacity:      capacity,
		freeFlowTime:  freeFlowTime,
		accessibility: pkg.DEFAULT_ACCESSIBILITY,
		emissionCoeff: pkg.DEFAULT_EMISSION_COEFF,
	}
	for _, opt := range opts {
		opt(&e)
	}

	key := NewEdgeKey(from, to)
	if _, exists := rn.edges[key]; !exists {
		rn.insertNeighborLocked(from, to)
	}
	rn.edges[key] = &edgeState{e: e}
}

// insertNeighborLocked keep the adjacency list of from sorted so that
// neighbor iteration order is deterministic.
func (rn *RoadNetwork) insertNeighborLocked(from, to string) {
	neighbors := rn.adj[from]
	i := sort.SearchStrings(neighbors, to)
	if i < len(neighbors) && neighbors[i] == to {
		return
	}
	neighbors = append(neighbors, "")
	copy(neighbors[i+1:], neighbors[i:])
	neighbors[i] = to
	rn.adj[from] = neighbors
}

func (rn *RoadNetwork) HasNode(id string) bool {
	rn.mu.RLock()
	defer rn.mu.RUnlock()
	_, ok := rn.nodes[id]
	return ok
}

func (rn *RoadNetwork) HasEdge(from, to string) bool {
	rn.mu.RLock()
	defer rn.mu.RUnlock()
	_, ok := rn.edges[NewEdgeKey(from, to)]
	return ok
}

func (rn *RoadNetwork) GetNode(id string) (Node, bool) {
	rn.mu.RLock()
	defer rn.mu.RUnlock()
	node, ok := rn.nodes[id]
	return node, ok
}

// GetEdge snapshot copy of the edge. the traffic state in the copy is
// consistent but may be stale the moment it is returned.
func (rn *RoadNetwork) GetEdge(from, to string) (Edge, bool) {
	rn.mu.RLock()
	state, ok := rn.edges[NewEdgeKey(from, to)]
	rn.mu.RUnlock()
	if !ok {
		return Edge{}, false
	}

	state.mu.RLock()
	defer state.mu.RUnlock()
	return state.e, true
}

func (rn *RoadNetwork) edgeState(from, to string) (*edgeState, bool) {
	rn.mu.RLock()
	defer rn.mu.RUnlock()
	state, ok := rn.edges[NewEdgeKey(from, to)]
	return state, ok
}

// SetCongestion direct override of the congestion value. no-op when the edge
// does not exist.
func (rn *RoadNetwork) SetCongestion(from, to string, congestion float64) {
	state, ok := rn.edgeState(from, to)
	if !ok {
		return
	}

	state.mu.Lock()
	state.e.congestion = congestion
	state.mu.Unlock()
}

// SetFlow admin overwrite of the current flow. refreshes the congestion
// mirror. reports whether the edge existed.
func (rn *RoadNetwork) SetFlow(from, to string, flow float64) bool {
	state, ok := rn.edgeState(from, to)
	if !ok {
		return false
	}

	state.mu.Lock()
	state.e.currentFlow = flow
	state.e.congestion = mirrorCongestion(state.e.currentFlow, state.e.capacity)
	state.mu.Unlock()
	return true
}

// AddFlow locked read-modify-write increment, so concurrent commits never
// lose updates. flow is floored at zero. reports whether the edge existed.
func (rn *RoadNetwork) AddFlow(from, to string, delta float64) bool {
	state, ok := rn.edgeState(from, to)
	if !ok {
		return false
	}

	state.mu.Lock()
	state.e.currentFlow += delta
	if state.e.currentFlow < 0 {
		state.e.currentFlow = 0
	}
	state.e.congestion = mirrorCongestion(state.e.currentFlow, state.e.capacity)
	state.mu.Unlock()
	return true
}

// Perturb simulator primitive: add delta to the flow and clamp the result to
// [0, maxLoadFactor x capacity]. returns the flow after clamping.
func (rn *RoadNetwork) Perturb(from, to string, delta, maxLoadFactor float64) (float64, bool) {
	state, ok := rn.edgeState(from, to)
	if !ok {
		return 0, false
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	flow := state.e.currentFlow + delta
	if maxFlow := maxLoadFactor * state.e.capacity; flow > maxFlow {
		flow = maxFlow
	}
	if flow < 0 {
		flow = 0
	}
	state.e.currentFlow = flow
	state.e.congestion = mirrorCongestion(flow, state.e.capacity)
	return flow, true
}

func mirrorCongestion(flow, capacity float64) float64 {
	if capacity <= 0 {
		return 1.0
	}
	return flow / capacity
}

// Neighbors sorted successor ids of u. returns a copy.
func (rn *RoadNetwork) Neighbors(u string) []string {
	rn.mu.RLock()
	defer rn.mu.RUnlock()

	neighbors, ok := rn.adj[u]
	if !ok {
		return nil
	}
	out := make([]string, len(neighbors))
	copy(out, neighbors)
	return out
}

// Nodes sorted node ids.
func (rn *RoadNetwork) Nodes() []string {
	rn.mu.RLock()
	defer rn.mu.RUnlock()

	ids := make([]string, 0, len(rn.nodes))
	for id := range rn.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// EdgeKeys sorted (from, to) pairs.
func (rn *RoadNetwork) EdgeKeys() []EdgeKey {
	rn.mu.RLock()
	defer rn.mu.RUnlock()
	return rn.edgeKeysLocked()
}

func (rn *RoadNetwork) edgeKeysLocked() []EdgeKey {
	keys := make([]EdgeKey, 0, len(rn.edges))
	for key := range rn.edges {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].From != keys[j].From {
			return keys[i].From < keys[j].From
		}
		return keys[i].To < keys[j].To
	})
	return keys
}

func (rn *RoadNetwork) NumNodes() int {
	rn.mu.RLock()
	defer rn.mu.RUnlock()
	return len(rn.nodes)
}

func (rn *RoadNetwork) NumEdges() int {
	rn.mu.RLock()
	defer rn.mu.RUnlock()
	return len(rn.edges)
}

// OverloadedEdges snapshot of every edge whose flow exceeds its capacity,
// ordered by (from, to).
func (rn *RoadNetwork) OverloadedEdges() []Edge {
	rn.mu.RLock()
	states := make([]*edgeState, 0, len(rn.edges))
	for _, key := range rn.edgeKeysLocked() {
		states = append(states, rn.edges[key])
	}
	rn.mu.RUnlock()

	overloaded := make([]Edge, 0)
	for _, state := range states {
		state.mu.RLock()
		e := state.e
		state.mu.RUnlock()
		if e.IsOverloaded() {
			overloaded = append(overloaded, e)
		}
	}
	return overloaded
}

type NodeRecord struct {
	Id   string
	Lon  float64
	Lat  float64
	Tags map[string]string
}

type EdgeRecord struct {
	From       string
	To         string
	Distance   float64
	SpeedLimit float64
	Capacity   float64
	Options    []EdgeOption
}

// Build bulk description of a network, produced by the map loader and the
// snapshot reader.
type Build struct {
	Nodes []NodeRecord
	Edges []EdgeRecord
}

// Replace atomically swap the whole topology for the given build.
func (rn *RoadNetwork) Replace(build *Build) {
	rn.mu.Lock()
	defer rn.mu.Unlock()

	rn.nodes = make(map[string]Node, len(build.Nodes))
	rn.adj = make(map[string][]string, len(build.Nodes))
	rn.edges = make(map[EdgeKey]*edgeState, len(build.Edges))

	for _, node := range build.Nodes {
		rn.addNodeLocked(node.Id, node.Lon, node.Lat, node.Tags)
	}
	for _, e := range build.Edges {
		rn.addEdgeLocked(e.From, e.To, e.Distance, e.SpeedLimit, e.Capacity, e.Options...)
	}
}
