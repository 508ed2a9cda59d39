package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/julienschmidt/httprouter"
	"github.com/krisandva/loadroute/pkg"
	helper "github.com/krisandva/loadroute/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

type routingAPI struct {
	routingService RoutingService
	networkService NetworkService
	log            *zap.Logger
}

func New(routingService RoutingService, networkService NetworkService, log *zap.Logger) *routingAPI {
	return &routingAPI{
		routingService: routingService,
		networkService: networkService,
		log:            log,
	}
}

func (api *routingAPI) Routes(group *helper.RouteGroup) {
	group.POST("/route", api.findRoute)
	group.POST("/traffic/update", api.updateTraffic)
	group.GET("/network/stats", api.networkStats)
	group.GET("/network/layout", api.networkLayout)
	group.POST("/network/grid", api.buildGrid)
	group.GET("/network/nearest", api.nearestNode)
}

func (api *routingAPI) Status(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": statusResponse{
		Status:  "system operational",
		Message: "load-aware routing engine",
	}}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *routingAPI) findRoute(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request findRouteRequest
		err     error
	)
	err = json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := r.Body.Close(); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}

	validate := validator.New()
	if err := validate.Struct(request); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		api.BadRequestResponse(w, r, fmt.Errorf("validation error: %v", vvString))
		return
	}

	hour := pkg.DEFAULT_DEPARTURE_HOUR
	if request.Hour != nil {
		hour = *request.Hour
	}

	result, pathPolyline, committed, err := api.routingService.FindRoute(r.Context(),
		request.Origin, request.Destination, hour, request.DryRun)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK,
		envelope{"data": NewFindRouteResponse(result, pathPolyline, committed)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *routingAPI) updateTraffic(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request trafficUpdateRequest
		err     error
	)
	err = json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := r.Body.Close(); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}

	validate := validator.New()
	if err := validate.Struct(request); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		api.BadRequestResponse(w, r, fmt.Errorf("validation error: %v", vvString))
		return
	}

	applied, skipped := api.networkService.ApplyTrafficUpdates(request.toFlowUpdates())

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": trafficUpdateResponse{
		Message: fmt.Sprintf("updated %d edge flows", applied),
		Applied: applied,
		Skipped: skipped,
	}}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *routingAPI) networkStats(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	stats := api.networkService.Stats()

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewStatsResponse(stats)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *routingAPI) networkLayout(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	nodes, edges := api.networkService.Layout()

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewLayoutResponse(nodes, edges)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *routingAPI) buildGrid(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request buildGridRequest
		err     error
	)
	err = json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := r.Body.Close(); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}

	validate := validator.New()
	if err := validate.Struct(request); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		api.BadRequestResponse(w, r, fmt.Errorf("validation error: %v", vvString))
		return
	}

	rows := request.Rows
	if rows == 0 {
		rows = pkg.DEFAULT_GRID_ROWS
	}
	cols := request.Cols
	if cols == 0 {
		cols = pkg.DEFAULT_GRID_COLS
	}

	numNodes, numEdges := api.networkService.RebuildGrid(rows, cols, request.SegmentDistance)

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": buildGridResponse{
		Message: fmt.Sprintf("initialized %dx%d grid network", rows, cols),
		Nodes:   numNodes,
		Edges:   numEdges,
	}}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *routingAPI) nearestNode(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	query := r.URL.Query()

	lat, err := strconv.ParseFloat(query.Get("lat"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("lat is required and must be a valid float"))
		return
	}
	lon, err := strconv.ParseFloat(query.Get("lon"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("lon is required and must be a valid float"))
		return
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		api.BadRequestResponse(w, r, errors.New("lat/lon out of range"))
		return
	}

	snap, err := api.networkService.NearestNode(lat, lon)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	node := snap.GetNode()
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": nearestNodeResponse{
		NodeId:            node.GetId(),
		Lat:               node.GetLat(),
		Lon:               node.GetLon(),
		DistanceKm:        snap.GetNodeDistanceKm(),
		SnappedLat:        snap.GetRoadLat(),
		SnappedLon:        snap.GetRoadLon(),
		SnappedDistanceKm: snap.GetRoadDistanceKm(),
	}}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}
