package controller

import (
	"net/http"

	"climate-server/internal/modules/climate/repository"
)

const apiPrefix = "/api/v1.0"

// Options carries the query constants the handlers apply.
type Options struct {
	// PrecipitationLimit caps the rows of the precipitation listing.
	PrecipitationLimit int
	// TobsSince is the inclusive lower bound of the tobs listing.
	TobsSince string
}

type ClimateController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type climateControllerImpl struct {
	repository repository.ClimateRepository
	opts       Options
}

func NewClimateController(repository repository.ClimateRepository, opts Options) ClimateController {
	return &climateControllerImpl{repository: repository, opts: opts}
}

// Literal segments take precedence over {start}, so /api/v1.0/tobs never
// reaches the date handler.
func (c *climateControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleWelcome)
	mux.HandleFunc("GET "+apiPrefix+"/precipitation", c.handlePrecipitation)
	mux.HandleFunc("GET "+apiPrefix+"/stations", c.handleStations)
	mux.HandleFunc("GET "+apiPrefix+"/tobs", c.handleTobs)
	mux.HandleFunc("GET "+apiPrefix+"/{start}", c.handleStatsFrom)
	mux.HandleFunc("GET "+apiPrefix+"/{start}/{end}", c.handleStatsBetween)
}

// welcomeRoutes is what the root page advertises.
var welcomeRoutes = []string{
	apiPrefix + "/precipitation",
	apiPrefix + "/stations",
	apiPrefix + "/tobs",
	apiPrefix + "/yyyy-mm-dd",
	apiPrefix + "/yyyy-mm-dd/yyyy-mm-dd",
}
