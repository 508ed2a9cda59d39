package main

import (
	"context"
	"flag"
	"os"

	"github.com/krisandva/loadroute/pkg"
	"github.com/krisandva/loadroute/pkg/http"
	"github.com/krisandva/loadroute/pkg/http/usecases"
	"github.com/krisandva/loadroute/pkg/logger"
	"github.com/krisandva/loadroute/pkg/network"
	"github.com/krisandva/loadroute/pkg/osmloader"
	"github.com/krisandva/loadroute/pkg/routing"
	"github.com/krisandva/loadroute/pkg/simulator"
	"github.com/krisandva/loadroute/pkg/spatialindex"
	"github.com/krisandva/loadroute/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	searchRadius          = flag.Float64("search_radius", 0.1, "nearest node search radius in km")
	leafBoundingBoxRadius = flag.Float64("leaf_bounding_box_radius", 0.05, "leaf node (r-tree) bounding box radius in km")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}

	if err := util.ReadConfig(); err != nil {
		logger.Info("no config file found, using defaults")
	}
	viper.SetDefault("MAP_FILE", "./data/map.osm.pbf")
	viper.SetDefault("SNAPSHOT_FILE", "./data/network.snapshot.bz2")
	viper.SetDefault("GRID_ROWS", 5)
	viper.SetDefault("GRID_COLS", 5)
	viper.SetDefault("SIMULATOR_INTERVAL", "2s")
	viper.SetDefault("SIMULATOR_SAMPLE_FRACTION", 0.01)
	viper.SetDefault("COMMIT_INCREMENT", 1.0)
	viper.SetDefault("MAX_SETTLED_NODES", 0)

	net := network.NewRoadNetwork()
	bootstrapNetwork(net, logger)

	rtree := spatialindex.NewRtree()
	rtree.Build(net, *leafBoundingBoxRadius, logger)

	engine := routing.NewEngine(logger, net,
		routing.WithCommitIncrement(viper.GetFloat64("COMMIT_INCREMENT")),
		routing.WithMaxSettledNodes(viper.GetInt("MAX_SETTLED_NODES")))

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}

	sim := simulator.NewSimulator(logger, net,
		simulator.WithInterval(viper.GetDuration("SIMULATOR_INTERVAL")),
		simulator.WithSampleFraction(viper.GetFloat64("SIMULATOR_SAMPLE_FRACTION")))
	go sim.Run(ctx)

	api := http.NewServer(logger)

	routingService := usecases.NewRoutingService(logger, engine)
	networkService := usecases.NewNetworkService(logger, net, rtree, *searchRadius, *leafBoundingBoxRadius)

	api.Use(ctx, logger, false, routingService, networkService)

	signal := http.GracefulShutdown()

	logger.Info("LoadRoute Routing Engine Server Stopped", zap.String("signal", signal.String()))
	cleanup()
}

// bootstrapNetwork snapshot cache first, then the openstreetmap extract,
// finally a synthetic grid so the server always comes up with a routable
// network.
func bootstrapNetwork(net *network.RoadNetwork, logger *zap.Logger) {
	snapshotFile := viper.GetString("SNAPSHOT_FILE")
	if _, err := os.Stat(snapshotFile); err == nil {
		build, err := network.ReadSnapshot(snapshotFile)
		if err == nil {
			net.Replace(build)
			logger.Info("loaded network from snapshot", zap.String("file", snapshotFile),
				zap.Int("nodes", net.NumNodes()), zap.Int("edges", net.NumEdges()))
			return
		}
		logger.Warn("failed to read network snapshot", zap.String("file", snapshotFile), zap.Error(err))
	}

	mapFile := viper.GetString("MAP_FILE")
	if _, err := os.Stat(mapFile); err == nil {
		build, err := osmloader.NewOsmLoader().Parse(mapFile, logger)
		if err == nil {
			net.Replace(build)
			logger.Info("loaded network from openstreetmap extract", zap.String("file", mapFile),
				zap.Int("nodes", net.NumNodes()), zap.Int("edges", net.NumEdges()))

			if err := net.WriteSnapshot(snapshotFile); err != nil {
				logger.Warn("failed to cache network snapshot", zap.String("file", snapshotFile), zap.Error(err))
			}
			return
		}
		logger.Warn("failed to parse openstreetmap extract", zap.String("file", mapFile), zap.Error(err))
	}

	rows := viper.GetInt("GRID_ROWS")
	cols := viper.GetInt("GRID_COLS")
	net.GenerateGrid(rows, cols, pkg.GRID_SEGMENT_DISTANCE_KM)
	logger.Info("initialized synthetic grid network",
		zap.Int("rows", rows), zap.Int("cols", cols),
		zap.Int("nodes", net.NumNodes()), zap.Int("edges", net.NumEdges()))
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
