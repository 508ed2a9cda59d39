package osmloader

import (
	"context"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/krisandva/loadroute/pkg"
	"github.com/krisandva/loadroute/pkg/geo"
	"github.com/krisandva/loadroute/pkg/network"
	"github.com/krisandva/loadroute/pkg/util"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"go.uber.org/zap"
)

type NodeType int

const (
	END_NODE NodeType = iota
	BETWEEN_NODE
	JUNCTION_NODE
)

type node struct {
	id    int64
	coord nodeCoord
}

type nodeCoord struct {
	lat float64
	lon float64
}

type wayExtraInfo struct {
	oneWay  bool
	forward bool
}

// OsmLoader builds a road network from an openstreetmap pbf extract. ways
// are cut into edges at junction nodes, intermediate nodes survive as edge
// geometry only.
type OsmLoader struct {
	wayNodeMap      map[int64]NodeType
	acceptedNodeMap map[int64]nodeCoord
	usedNodes       map[int64]struct{}
}

func NewOsmLoader() *OsmLoader {
	return &OsmLoader{
		wayNodeMap:      make(map[int64]NodeType),
		acceptedNodeMap: make(map[int64]nodeCoord),
		usedNodes:       make(map[int64]struct{}),
	}
}

var (
	// https://wiki.openstreetmap.org/wiki/OSM_tags_for_routing/Telenav
	acceptedHighway = map[string]struct{}{
		"motorway":         struct{}{},
		"motorway_link":    struct{}{},
		"trunk":            struct{}{},
		"trunk_link":       struct{}{},
		"primary":          struct{}{},
		"primary_link":     struct{}{},
		"secondary":        struct{}{},
		"secondary_link":   struct{}{},
		"residential":      struct{}{},
		"residential_link": struct{}{},
		"service":          struct{}{},
		"tertiary":         struct{}{},
		"tertiary_link":    struct{}{},
		"road":             struct{}{},
		"track":            struct{}{},
		"unclassified":     struct{}{},
		"undefined":        struct{}{},
		"unknown":          struct{}{},
		"living_street":    struct{}{},
		"private":          struct{}{},
		"motorroad":        struct{}{},
	}
)

// Parse two scans over the pbf file. the first classifies way nodes into
// end, between and junction nodes, the second collects node coordinates and
// cuts ways into edges at the junctions.
func (p *OsmLoader) Parse(mapFile string, logger *zap.Logger) (*network.Build, error) {
	f, err := os.Open(mapFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := osmpbf.New(context.Background(), f, 0)
	// must not be parallel
	countWays := 0
	for scanner.Scan() {
		o := scanner.Object()

		if o.ObjectID().Type() != osm.TypeWay {
			continue
		}
		way := o.(*osm.Way)
		if len(way.Nodes) < 2 {
			continue
		}
		if !acceptOsmWay(way) {
			continue
		}
		if (countWays+1)%50000 == 0 {
			logger.Sugar().Infof("scanning openstreetmap ways: %d...", countWays+1)
		}
		countWays++

		for i, wayNode := range way.Nodes {
			if _, ok := p.wayNodeMap[int64(wayNode.ID)]; !ok {
				if i == 0 || i == len(way.Nodes)-1 {
					p.wayNodeMap[int64(wayNode.ID)] = END_NODE
				} else {
					p.wayNodeMap[int64(wayNode.ID)] = BETWEEN_NODE
				}
			} else {
				p.wayNodeMap[int64(wayNode.ID)] = JUNCTION_NODE
			}
		}
	}
	scanner.Close()

	if _, err = f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	scanner = osmpbf.New(context.Background(), f, 0)
	// must not be parallel
	defer scanner.Close()

	build := &network.Build{}
	edgeSet := make(map[string]map[string]struct{})

	countWays = 0
	countNodes := 0
	for scanner.Scan() {
		o := scanner.Object()

		switch o.ObjectID().Type() {
		case osm.TypeNode:
			{
				if (countNodes+1)%50000 == 0 {
					logger.Sugar().Infof("processing openstreetmap nodes: %d...", countNodes+1)
				}
				countNodes++
				osmNode := o.(*osm.Node)

				if _, ok := p.wayNodeMap[int64(osmNode.ID)]; ok {
					p.acceptedNodeMap[int64(osmNode.ID)] = nodeCoord{
						lat: osmNode.Lat,
						lon: osmNode.Lon,
					}
				}
			}
		case osm.TypeWay:
			{
				way := o.(*osm.Way)
				if len(way.Nodes) < 2 {
					continue
				}
				if !acceptOsmWay(way) {
					continue
				}
				if (countWays+1)%50000 == 0 {
					logger.Sugar().Infof("processing openstreetmap ways: %d...", countWays+1)
				}
				countWays++

				p.processWay(way, edgeSet, build)
			}
		}
	}

	for osmID := range p.usedNodes {
		coord := p.acceptedNodeMap[osmID]
		build.Nodes = append(build.Nodes, network.NodeRecord{
			Id:  nodeId(osmID),
			Lon: coord.lon,
			Lat: coord.lat,
		})
	}

	logger.Sugar().Infof("number of nodes: %v", len(build.Nodes))
	logger.Sugar().Infof("number of edges: %v", len(build.Edges))
	return build, nil
}

// processWay split the way into segments at junction nodes and emit one edge
// per segment.
func (p *OsmLoader) processWay(way *osm.Way, edgeSet map[string]map[string]struct{}, build *network.Build) {
	maxSpeed := parseMaxSpeed(way.Tags.Find("maxspeed"))
	if maxSpeed == 0 {
		maxSpeed = roadTypeMaxSpeed(way.Tags.Find("highway"))
	}
	if maxSpeed == 0 {
		maxSpeed = pkg.DEFAULT_SPEED_KMH
	}

	lanes, err := strconv.Atoi(way.Tags.Find("lanes"))
	if err != nil || lanes < 1 {
		lanes = 1 // assume
	}
	capacity := float64(lanes) * pkg.CAPACITY_PER_LANE

	wayExtraInfoData := wayExtraInfo{}
	okvf, okmvf, okvb, okmvb := getReversedOneWay(way)
	if val := way.Tags.Find("oneway"); val == "yes" || val == "-1" || okvf || okmvf || okvb || okmvb {
		wayExtraInfoData.oneWay = true
	}
	if way.Tags.Find("oneway") == "-1" || okvf || okmvf {
		// restricted/not allowed forward
		wayExtraInfoData.forward = false
	} else {
		wayExtraInfoData.forward = true
	}

	waySegment := []node{}
	for _, wayNode := range way.Nodes {
		coord := p.acceptedNodeMap[int64(wayNode.ID)]
		nodeData := node{
			id:    int64(wayNode.ID),
			coord: coord,
		}
		if p.isJunctionNode(nodeData.id) {
			waySegment = append(waySegment, nodeData)
			p.processSegment(waySegment, maxSpeed, capacity, wayExtraInfoData, edgeSet, build)
			waySegment = []node{}

			waySegment = append(waySegment, nodeData)
		} else {
			waySegment = append(waySegment, nodeData)
		}
	}
	if len(waySegment) > 1 {
		p.processSegment(waySegment, maxSpeed, capacity, wayExtraInfoData, edgeSet, build)
	}
}

func (p *OsmLoader) processSegment(segment []node, speed, capacity float64, wayExtraInfoData wayExtraInfo,
	edgeSet map[string]map[string]struct{}, build *network.Build) {
	if len(segment) == 2 && segment[0].id == segment[1].id {
		// skip
		return
	} else if len(segment) > 2 && segment[0].id == segment[len(segment)-1].id {
		// loop
		p.addEdge(segment[0:len(segment)-1], speed, capacity, wayExtraInfoData, edgeSet, build)
		p.addEdge(segment[len(segment)-2:], speed, capacity, wayExtraInfoData, edgeSet, build)
	} else {
		p.addEdge(segment, speed, capacity, wayExtraInfoData, edgeSet, build)
	}
}

func (p *OsmLoader) addEdge(segment []node, speed, capacity float64, wayExtraInfoData wayExtraInfo,
	edgeSet map[string]map[string]struct{}, build *network.Build) {
	if len(segment) < 2 {
		return
	}
	from := segment[0]
	to := segment[len(segment)-1]
	if from.id == to.id {
		return
	}

	edgePoints := make([]geo.Coordinate, 0, len(segment))
	distance := 0.0
	for i := 0; i < len(segment); i++ {
		edgePoints = append(edgePoints, geo.NewCoordinate(segment[i].coord.lat, segment[i].coord.lon))
		if i > 0 {
			distance += geo.CalculateHaversineDistance(segment[i-1].coord.lat, segment[i-1].coord.lon,
				segment[i].coord.lat, segment[i].coord.lon)
		}
	}
	if distance == 0 {
		return
	}

	fromId := nodeId(from.id)
	toId := nodeId(to.id)

	if wayExtraInfoData.oneWay {
		if !wayExtraInfoData.forward {
			fromId, toId = toId, fromId
			edgePoints = util.ReverseG(edgePoints)
		}
		if p.edgeSeen(edgeSet, fromId, toId) {
			return
		}
		p.usedNodes[from.id] = struct{}{}
		p.usedNodes[to.id] = struct{}{}
		build.Edges = append(build.Edges, network.EdgeRecord{
			From:       fromId,
			To:         toId,
			Distance:   distance,
			SpeedLimit: speed,
			Capacity:   capacity,
			Options:    []network.EdgeOption{network.WithGeometry(edgePoints)},
		})
		return
	}

	if p.edgeSeen(edgeSet, fromId, toId) {
		return
	}
	p.markSeen(edgeSet, toId, fromId)
	p.usedNodes[from.id] = struct{}{}
	p.usedNodes[to.id] = struct{}{}

	build.Edges = append(build.Edges, network.EdgeRecord{
		From:       fromId,
		To:         toId,
		Distance:   distance,
		SpeedLimit: speed,
		Capacity:   capacity,
		Options:    []network.EdgeOption{network.WithGeometry(edgePoints)},
	})
	build.Edges = append(build.Edges, network.EdgeRecord{
		From:       toId,
		To:         fromId,
		Distance:   distance,
		SpeedLimit: speed,
		Capacity:   capacity,
		Options:    []network.EdgeOption{network.WithGeometry(util.ReverseG(edgePoints))},
	})
}

// edgeSeen dedupe and mark in one step. parallel osm ways between the same
// junction pair collapse to the first one scanned.
func (p *OsmLoader) edgeSeen(edgeSet map[string]map[string]struct{}, from, to string) bool {
	if _, ok := edgeSet[from]; !ok {
		edgeSet[from] = make(map[string]struct{})
	}
	if _, ok := edgeSet[from][to]; ok {
		return true
	}
	edgeSet[from][to] = struct{}{}
	return false
}

func (p *OsmLoader) markSeen(edgeSet map[string]map[string]struct{}, from, to string) {
	if _, ok := edgeSet[from]; !ok {
		edgeSet[from] = make(map[string]struct{})
	}
	edgeSet[from][to] = struct{}{}
}

func (p *OsmLoader) isJunctionNode(nodeID int64) bool {
	return p.wayNodeMap[nodeID] == JUNCTION_NODE
}

func nodeId(osmID int64) string {
	return strconv.FormatInt(osmID, 10)
}

// parseMaxSpeed maxspeed tag in km/h. multi-valued tags keep the first
// entry, unparsable values return zero so the caller can fall back to the
// highway class speed.
func parseMaxSpeed(value string) float64 {
	if value == "" {
		return 0
	}
	if idx := strings.Index(value, ";"); idx >= 0 {
		value = value[:idx]
	}
	value = strings.TrimSpace(value)

	if strings.Contains(value, "mph") {
		currSpeed, err := strconv.ParseFloat(strings.TrimSpace(strings.Replace(value, "mph", "", -1)), 64)
		if err != nil {
			return 0
		}
		return currSpeed * 1.60934
	}
	if strings.Contains(value, "km/h") {
		currSpeed, err := strconv.ParseFloat(strings.TrimSpace(strings.Replace(value, "km/h", "", -1)), 64)
		if err != nil {
			return 0
		}
		return currSpeed
	}
	if strings.Contains(value, "knots") {
		currSpeed, err := strconv.ParseFloat(strings.TrimSpace(strings.Replace(value, "knots", "", -1)), 64)
		if err != nil {
			return 0
		}
		return currSpeed * 1.852
	}

	// without unit, osm default is km/h
	currSpeed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return currSpeed
}

func isRestricted(value string) bool {
	if value == "no" || value == "restricted" {
		return true
	}
	return false
}

func getReversedOneWay(way *osm.Way) (bool, bool, bool, bool) {
	vehicleForward := way.Tags.Find("vehicle:forward")
	motorVehicleForward := way.Tags.Find("motor_vehicle:forward")
	vehicleBackward := way.Tags.Find("vehicle:backward")
	motorVehicleBackward := way.Tags.Find("motor_vehicle:backward")
	return isRestricted(vehicleForward), isRestricted(motorVehicleForward), isRestricted(vehicleBackward), isRestricted(motorVehicleBackward)
}

func roadTypeMaxSpeed(roadType string) float64 {
	switch roadType {
	case "motorway":
		return 100
	case "trunk":
		return 70
	case "primary":
		return 65
	case "secondary":
		return 60
	case "tertiary":
		return 50
	case "unclassified":
		return 40
	case "residential":
		return 30
	case "service":
		return 20
	case "motorway_link":
		return 70
	case "trunk_link":
		return 65
	case "primary_link":
		return 60
	case "secondary_link":
		return 50
	case "tertiary_link":
		return 40
	case "living_street":
		return 5
	case "road":
		return 20
	case "track":
		return 15
	case "motorroad":
		return 90
	default:
		return 0
	}
}

func acceptOsmWay(way *osm.Way) bool {
	highway := way.Tags.Find("highway")
	junction := way.Tags.Find("junction")
	if highway != "" {
		if _, ok := acceptedHighway[highway]; ok {
			return true
		}
	} else if junction != "" {
		return true
	}
	return false
}
