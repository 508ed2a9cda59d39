package osmloader

import (
	"math"
	"testing"

	"github.com/krisandva/loadroute/pkg/network"
	"github.com/paulmach/osm"
)

const eps = 1e-6

// equal operator
func eq(a, b float64) bool {
	return math.Abs(a-b) <= eps
}

func TestParseMaxSpeed(t *testing.T) {

	testCases := []struct {
		name  string
		value string
		want  float64
	}{
		{
			name:  "empty",
			value: "",
			want:  0,
		},
		{
			name:  "plain number is kmh",
			value: "50",
			want:  50,
		},
		{
			name:  "mph",
			value: "30 mph",
			want:  30 * 1.60934,
		},
		{
			name:  "explicit kmh unit",
			value: "60 km/h",
			want:  60,
		},
		{
			name:  "knots",
			value: "10 knots",
			want:  10 * 1.852,
		},
		{
			name:  "multi valued keeps first",
			value: "50;60",
			want:  50,
		},
		{
			name:  "multi valued with unit",
			value: "5 mph;10",
			want:  5 * 1.60934,
		},
		{
			name:  "unparsable",
			value: "walk",
			want:  0,
		},
		{
			name:  "garbage with unit",
			value: "fast mph",
			want:  0,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseMaxSpeed(tt.value); !eq(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRoadTypeMaxSpeed(t *testing.T) {

	testCases := []struct {
		name     string
		roadType string
		want     float64
	}{
		{
			name:     "motorway",
			roadType: "motorway",
			want:     100,
		},
		{
			name:     "residential",
			roadType: "residential",
			want:     30,
		},
		{
			name:     "living street",
			roadType: "living_street",
			want:     5,
		},
		{
			name:     "track",
			roadType: "track",
			want:     15,
		},
		{
			name:     "unknown road type",
			roadType: "footway",
			want:     0,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			if got := roadTypeMaxSpeed(tt.roadType); !eq(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAcceptOsmWay(t *testing.T) {

	testCases := []struct {
		name string
		tags osm.Tags
		want bool
	}{
		{
			name: "accepted highway",
			tags: osm.Tags{{Key: "highway", Value: "residential"}},
			want: true,
		},
		{
			name: "rejected highway",
			tags: osm.Tags{{Key: "highway", Value: "footway"}},
			want: false,
		},
		{
			name: "junction without highway",
			tags: osm.Tags{{Key: "junction", Value: "roundabout"}},
			want: true,
		},
		{
			name: "no routing tags",
			tags: osm.Tags{{Key: "waterway", Value: "river"}},
			want: false,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			way := &osm.Way{Tags: tt.tags}
			if got := acceptOsmWay(way); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRestricted(t *testing.T) {

	testCases := []struct {
		name  string
		value string
		want  bool
	}{
		{
			name:  "no",
			value: "no",
			want:  true,
		},
		{
			name:  "restricted",
			value: "restricted",
			want:  true,
		},
		{
			name:  "yes",
			value: "yes",
			want:  false,
		},
		{
			name:  "empty",
			value: "",
			want:  false,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRestricted(tt.value); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetReversedOneWay(t *testing.T) {
	way := &osm.Way{Tags: osm.Tags{{Key: "vehicle:forward", Value: "no"}}}
	vf, mvf, vb, mvb := getReversedOneWay(way)
	if !vf || mvf || vb || mvb {
		t.Errorf("got %v %v %v %v, want only vehicle:forward restricted", vf, mvf, vb, mvb)
	}
}

// residentialWay two-node way with the given extra tags on top of
// highway=residential.
func residentialWay(loader *OsmLoader, extraTags ...osm.Tag) *osm.Way {
	loader.wayNodeMap[1] = END_NODE
	loader.wayNodeMap[2] = END_NODE
	loader.acceptedNodeMap[1] = nodeCoord{lat: 0, lon: 0}
	loader.acceptedNodeMap[2] = nodeCoord{lat: 0, lon: 0.01}

	tags := osm.Tags{{Key: "highway", Value: "residential"}}
	tags = append(tags, extraTags...)
	return &osm.Way{Tags: tags, Nodes: osm.WayNodes{{ID: 1}, {ID: 2}}}
}

func TestProcessWaySplitsAtJunctions(t *testing.T) {
	loader := NewOsmLoader()

	// way 10-20-30-40 where 20 is shared with another way
	loader.wayNodeMap[10] = END_NODE
	loader.wayNodeMap[20] = JUNCTION_NODE
	loader.wayNodeMap[30] = BETWEEN_NODE
	loader.wayNodeMap[40] = END_NODE

	loader.acceptedNodeMap[10] = nodeCoord{lat: 0, lon: 0}
	loader.acceptedNodeMap[20] = nodeCoord{lat: 0, lon: 0.01}
	loader.acceptedNodeMap[30] = nodeCoord{lat: 0, lon: 0.02}
	loader.acceptedNodeMap[40] = nodeCoord{lat: 0, lon: 0.03}

	way := &osm.Way{
		Tags: osm.Tags{{Key: "highway", Value: "residential"}},
		Nodes: osm.WayNodes{
			{ID: 10},
			{ID: 20},
			{ID: 30},
			{ID: 40},
		},
	}

	build := &network.Build{}
	loader.processWay(way, make(map[string]map[string]struct{}), build)

	// two segments (10-20 and 20-30-40), both bidirectional
	if len(build.Edges) != 4 {
		t.Fatalf("edges: got %d, want 4", len(build.Edges))
	}

	seen := make(map[string]struct{})
	for _, e := range build.Edges {
		seen[e.From+"->"+e.To] = struct{}{}
		if e.From == "30" || e.To == "30" {
			t.Errorf("between node should not become an endpoint: %s->%s", e.From, e.To)
		}
	}
	for _, want := range []string{"10->20", "20->10", "20->40", "40->20"} {
		if _, ok := seen[want]; !ok {
			t.Errorf("missing edge %s in %v", want, seen)
		}
	}

	// the between node survives as edge geometry only
	rn := network.NewRoadNetwork()
	rn.Replace(build)
	e, ok := rn.GetEdge("20", "40")
	if !ok {
		t.Fatal("edge 20->40 should exist")
	}
	if len(e.GetGeometry()) != 3 {
		t.Errorf("segment 20->40 geometry: got %d points, want 3", len(e.GetGeometry()))
	}
	if e.GetDistance() <= 0 {
		t.Errorf("distance should be positive, got %v", e.GetDistance())
	}
}

func TestProcessWayOneWay(t *testing.T) {
	loader := NewOsmLoader()
	way := residentialWay(loader, osm.Tag{Key: "oneway", Value: "yes"})

	build := &network.Build{}
	loader.processWay(way, make(map[string]map[string]struct{}), build)

	if len(build.Edges) != 1 {
		t.Fatalf("edges: got %d, want 1", len(build.Edges))
	}
	if build.Edges[0].From != "1" || build.Edges[0].To != "2" {
		t.Errorf("edge: got %s->%s, want 1->2", build.Edges[0].From, build.Edges[0].To)
	}
}

func TestProcessWayReversedOneWay(t *testing.T) {
	loader := NewOsmLoader()
	way := residentialWay(loader, osm.Tag{Key: "oneway", Value: "-1"})

	build := &network.Build{}
	loader.processWay(way, make(map[string]map[string]struct{}), build)

	if len(build.Edges) != 1 {
		t.Fatalf("edges: got %d, want 1", len(build.Edges))
	}
	if build.Edges[0].From != "2" || build.Edges[0].To != "1" {
		t.Errorf("edge: got %s->%s, want reversed 2->1", build.Edges[0].From, build.Edges[0].To)
	}
}

func TestProcessWaySpeedFallbacks(t *testing.T) {

	testCases := []struct {
		name      string
		extraTags []osm.Tag
		wantSpeed float64
	}{
		{
			name:      "maxspeed tag wins",
			extraTags: []osm.Tag{{Key: "maxspeed", Value: "70"}},
			wantSpeed: 70,
		},
		{
			name:      "highway class fallback",
			extraTags: nil,
			wantSpeed: 30,
		},
		{
			name:      "unparsable maxspeed falls back to highway class",
			extraTags: []osm.Tag{{Key: "maxspeed", Value: "walk"}},
			wantSpeed: 30,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewOsmLoader()
			way := residentialWay(loader, tt.extraTags...)

			build := &network.Build{}
			loader.processWay(way, make(map[string]map[string]struct{}), build)

			if len(build.Edges) == 0 {
				t.Fatal("expected edges")
			}
			if !eq(build.Edges[0].SpeedLimit, tt.wantSpeed) {
				t.Errorf("speed: got %v, want %v", build.Edges[0].SpeedLimit, tt.wantSpeed)
			}
		})
	}
}

func TestProcessWayLanesCapacity(t *testing.T) {

	testCases := []struct {
		name         string
		extraTags    []osm.Tag
		wantCapacity float64
	}{
		{
			name:         "three lanes",
			extraTags:    []osm.Tag{{Key: "lanes", Value: "3"}},
			wantCapacity: 3000,
		},
		{
			name:         "missing lanes assumes one",
			extraTags:    nil,
			wantCapacity: 1000,
		},
		{
			name:         "garbage lanes assumes one",
			extraTags:    []osm.Tag{{Key: "lanes", Value: "narrow"}},
			wantCapacity: 1000,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewOsmLoader()
			way := residentialWay(loader, tt.extraTags...)

			build := &network.Build{}
			loader.processWay(way, make(map[string]map[string]struct{}), build)

			if len(build.Edges) == 0 {
				t.Fatal("expected edges")
			}
			if !eq(build.Edges[0].Capacity, tt.wantCapacity) {
				t.Errorf("capacity: got %v, want %v", build.Edges[0].Capacity, tt.wantCapacity)
			}
		})
	}
}

func TestProcessWayDedupesParallelEdges(t *testing.T) {
	loader := NewOsmLoader()
	edgeSet := make(map[string]map[string]struct{})

	build := &network.Build{}
	way := residentialWay(loader)
	loader.processWay(way, edgeSet, build)
	loader.processWay(way, edgeSet, build)

	if len(build.Edges) != 2 {
		t.Errorf("edges: got %d, want 2 after dedupe", len(build.Edges))
	}
}
