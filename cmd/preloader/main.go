package main

import (
	"flag"

	"github.com/krisandva/loadroute/pkg/logger"
	"github.com/krisandva/loadroute/pkg/network"
	"github.com/krisandva/loadroute/pkg/osmloader"
)

var (
	mapFile      = flag.String("map", "./data/map.osm.pbf", "openstreetmap extract in pbf format")
	snapshotFile = flag.String("out", "./data/network.snapshot.bz2", "output network snapshot file")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}

	build, err := osmloader.NewOsmLoader().Parse(*mapFile, logger)
	if err != nil {
		panic(err)
	}

	net := network.NewRoadNetwork()
	net.Replace(build)

	if err := net.WriteSnapshot(*snapshotFile); err != nil {
		panic(err)
	}

	logger.Sugar().Infof("preloaded %d nodes and %d edges into %s", net.NumNodes(), net.NumEdges(), *snapshotFile)
}
