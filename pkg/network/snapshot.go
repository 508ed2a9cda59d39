package network

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/krisandva/loadroute/pkg/geo"
	"github.com/krisandva/loadroute/pkg/util"
)

func fields(s string) []string {
	return strings.Fields(s)
}

// joinFrom rejoin tokens that were split apart because a quoted value
// contained spaces.
func joinFrom(tokens []string, start int) string {
	val := tokens[start]
	if len(tokens) > start+1 {
		for i := start + 1; i < len(tokens); i++ {
			val += " " + tokens[i]
		}
	}
	return val
}

// WriteSnapshot serialize the network to a bzip2 compressed text file so a
// later startup can skip the map parse. layout:
//
//	numNodes numEdges
//	one line per node: id lon lat numTags, then one "key value" line per tag
//	one line per edge: from to distance speedLimit capacity currentFlow
//	congestion historicalLoad accessibility socialSensitivity emissionCoeff
//	numGeometryPoints, then one "lat lon" line per geometry point
func (rn *RoadNetwork) WriteSnapshot(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
	if err != nil {
		return err
	}
	defer bz.Close()

	w := bufio.NewWriter(bz)

	nodeIds := rn.Nodes()
	edgeKeys := rn.EdgeKeys()

	fmt.Fprintf(w, "%d %d\n", len(nodeIds), len(edgeKeys))

	for _, id := range nodeIds {
		node, ok := rn.GetNode(id)
		if !ok {
			continue
		}
		lonF := strconv.FormatFloat(node.GetLon(), 'f', -1, 64)
		latF := strconv.FormatFloat(node.GetLat(), 'f', -1, 64)

		tags := node.GetTags()
		fmt.Fprintf(w, "%s %s %s %d\n", strconv.Quote(node.GetId()), lonF, latF, len(tags))

		tagKeys := make([]string, 0, len(tags))
		for key := range tags {
			tagKeys = append(tagKeys, key)
		}
		sort.Strings(tagKeys)
		for _, key := range tagKeys {
			fmt.Fprintf(w, "%s %s\n", strconv.Quote(key), strconv.Quote(tags[key]))
		}
	}

	for _, key := range edgeKeys {
		e, ok := rn.GetEdge(key.From, key.To)
		if !ok {
			continue
		}

		distF := strconv.FormatFloat(e.GetDistance(), 'f', -1, 64)
		speedF := strconv.FormatFloat(e.GetSpeedLimit(), 'f', -1, 64)
		capF := strconv.FormatFloat(e.GetCapacity(), 'f', -1, 64)
		flowF := strconv.FormatFloat(e.GetCurrentFlow(), 'f', -1, 64)
		congF := strconv.FormatFloat(e.GetCongestion(), 'f', -1, 64)
		histF := strconv.FormatFloat(e.GetHistoricalLoad(), 'f', -1, 64)
		accessF := strconv.FormatFloat(e.GetAccessibility(), 'f', -1, 64)
		socialF := strconv.FormatFloat(e.GetSocialSensitivity(), 'f', -1, 64)
		emissionF := strconv.FormatFloat(e.GetEmissionCoeff(), 'f', -1, 64)

		geometry := e.GetGeometry()
		fmt.Fprintf(w, "%s %s %s %s %s %s %s %s %s %s %s %d\n",
			strconv.Quote(e.GetFrom()), strconv.Quote(e.GetTo()),
			distF, speedF, capF, flowF, congF, histF, accessF, socialF, emissionF,
			len(geometry))

		for _, point := range geometry {
			pointLat := strconv.FormatFloat(point.GetLat(), 'f', -1, 64)
			pointLon := strconv.FormatFloat(point.GetLon(), 'f', -1, 64)
			fmt.Fprintf(w, "%s %s\n", pointLat, pointLon)
		}
	}

	return w.Flush()
}

// ReadSnapshot parse a snapshot file back into a bulk build.
func ReadSnapshot(filename string) (*Build, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bz, err := bzip2.NewReader(f, nil)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(bz)

	line, err := util.ReadLine(br)
	if err != nil {
		return nil, err
	}
	tokens := fields(line)
	if len(tokens) != 2 {
		return nil, fmt.Errorf("snapshot header: expected 2 fields, got %d", len(tokens))
	}

	numNodes, err := strconv.Atoi(tokens[0])
	if err != nil {
		return nil, err
	}
	numEdges, err := strconv.Atoi(tokens[1])
	if err != nil {
		return nil, err
	}

	build := &Build{
		Nodes: make([]NodeRecord, 0, numNodes),
		Edges: make([]EdgeRecord, 0, numEdges),
	}

	for i := 0; i < numNodes; i++ {
		node, err := parseNodeRecord(br)
		if err != nil {
			return nil, err
		}
		build.Nodes = append(build.Nodes, node)
	}

	for i := 0; i < numEdges; i++ {
		e, err := parseEdgeRecord(br)
		if err != nil {
			return nil, err
		}
		build.Edges = append(build.Edges, e)
	}

	return build, nil
}

func parseNodeRecord(br *bufio.Reader) (NodeRecord, error) {
	line, err := util.ReadLine(br)
	if err != nil {
		return NodeRecord{}, err
	}
	tokens := fields(line)
	if len(tokens) != 4 {
		return NodeRecord{}, fmt.Errorf("node record: expected 4 fields, got %d", len(tokens))
	}

	id, err := strconv.Unquote(tokens[0])
	if err != nil {
		return NodeRecord{}, fmt.Errorf("node id: %w", err)
	}
	lon, err := strconv.ParseFloat(tokens[1], 64)
	if err != nil {
		return NodeRecord{}, fmt.Errorf("lon: %w", err)
	}
	lat, err := strconv.ParseFloat(tokens[2], 64)
	if err != nil {
		return NodeRecord{}, fmt.Errorf("lat: %w", err)
	}
	numTags, err := strconv.Atoi(tokens[3])
	if err != nil {
		return NodeRecord{}, err
	}

	var tags map[string]string
	if numTags > 0 {
		tags = make(map[string]string, numTags)
	}
	for i := 0; i < numTags; i++ {
		tagLine, err := util.ReadLine(br)
		if err != nil {
			return NodeRecord{}, err
		}
		tagTokens := fields(tagLine)
		if len(tagTokens) < 2 {
			return NodeRecord{}, fmt.Errorf("tag record: expected 2 fields, got %d", len(tagTokens))
		}
		key, err := strconv.Unquote(tagTokens[0])
		if err != nil {
			return NodeRecord{}, err
		}
		val, err := strconv.Unquote(joinFrom(tagTokens, 1))
		if err != nil {
			return NodeRecord{}, err
		}
		tags[key] = val
	}

	return NodeRecord{Id: id, Lon: lon, Lat: lat, Tags: tags}, nil
}

func parseEdgeRecord(br *bufio.Reader) (EdgeRecord, error) {
	line, err := util.ReadLine(br)
	if err != nil {
		return EdgeRecord{}, err
	}
	tokens := fields(line)
	if len(tokens) != 12 {
		return EdgeRecord{}, fmt.Errorf("edge record: expected 12 fields, got %d", len(tokens))
	}

	from, err := strconv.Unquote(tokens[0])
	if err != nil {
		return EdgeRecord{}, fmt.Errorf("edge from: %w", err)
	}
	to, err := strconv.Unquote(tokens[1])
	if err != nil {
		return EdgeRecord{}, fmt.Errorf("edge to: %w", err)
	}

	floats := make([]float64, 9)
	for i := 0; i < 9; i++ {
		floats[i], err = strconv.ParseFloat(tokens[2+i], 64)
		if err != nil {
			return EdgeRecord{}, err
		}
	}

	numPoints, err := strconv.Atoi(tokens[11])
	if err != nil {
		return EdgeRecord{}, err
	}

	var geometry []geo.Coordinate
	if numPoints > 0 {
		geometry = make([]geo.Coordinate, 0, numPoints)
	}
	for i := 0; i < numPoints; i++ {
		pointLine, err := util.ReadLine(br)
		if err != nil {
			return EdgeRecord{}, err
		}
		pointTokens := fields(pointLine)
		if len(pointTokens) != 2 {
			return EdgeRecord{}, fmt.Errorf("geometry point: expected 2 fields, got %d", len(pointTokens))
		}
		lat, err := strconv.ParseFloat(pointTokens[0], 64)
		if err != nil {
			return EdgeRecord{}, fmt.Errorf("lat: %w", err)
		}
		lon, err := strconv.ParseFloat(pointTokens[1], 64)
		if err != nil {
			return EdgeRecord{}, fmt.Errorf("lon: %w", err)
		}
		geometry = append(geometry, geo.NewCoordinate(lat, lon))
	}

	opts := []EdgeOption{
		WithCurrentFlow(floats[3]),
		WithCongestion(floats[4]),
		WithHistoricalLoad(floats[5]),
		WithAccessibility(floats[6]),
		WithSocialSensitivity(floats[7]),
		WithEmissionCoeff(floats[8]),
	}
	if geometry != nil {
		opts = append(opts, WithGeometry(geometry))
	}

	return EdgeRecord{
		From:       from,
		To:         to,
		Distance:   floats[0],
		SpeedLimit: floats[1],
		Capacity:   floats[2],
		Options:    opts,
	}, nil
}
