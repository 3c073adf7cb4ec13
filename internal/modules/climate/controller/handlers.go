package controller

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"climate-server/internal/modules/climate/types"
	"climate-server/internal/modules/climate/views"
	"climate-server/internal/utils"
)

func (c *climateControllerImpl) handleWelcome(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := views.RenderWelcome(&buf, &views.WelcomeData{Routes: welcomeRoutes}); err != nil {
		slog.Error("welcome template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	utils.WriteHTML(w, http.StatusOK, buf.Bytes())
}

func (c *climateControllerImpl) handlePrecipitation(w http.ResponseWriter, r *http.Request) {
	rows, err := c.repository.ListPrecipitation(r.Context(), c.opts.PrecipitationLimit)
	if err != nil {
		slog.Error("precipitation: query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load precipitation")
		return
	}
	utils.WriteJSON(w, http.StatusOK, rows)
}

func (c *climateControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	stations, err := c.repository.ListStations(r.Context())
	if err != nil {
		slog.Error("stations: query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load stations")
		return
	}
	utils.WriteJSON(w, http.StatusOK, stations)
}

func (c *climateControllerImpl) handleTobs(w http.ResponseWriter, r *http.Request) {
	rows, err := c.repository.ListRecentTobs(r.Context(), c.opts.TobsSince)
	if err != nil {
		slog.Error("tobs: query failed", "since", c.opts.TobsSince, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load temperature observations")
		return
	}
	utils.WriteJSON(w, http.StatusOK, rows)
}

func (c *climateControllerImpl) handleStatsFrom(w http.ResponseWriter, r *http.Request) {
	start := r.PathValue("start")
	if !isValidDate(start) {
		utils.WriteError(w, http.StatusNotFound, fmt.Sprintf(
			"The starting date is not valid. You might consider checking the format (%s), must be YYYY-MM-DD.", start))
		return
	}

	stats, err := c.repository.TempStats(r.Context(), start, nil)
	if err != nil {
		slog.Error("stats: query failed", "start", start, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load temperature stats")
		return
	}
	if stats == nil {
		utils.WriteError(w, http.StatusNotFound, fmt.Sprintf("No data found for the starting date %s.", start))
		return
	}
	utils.WriteJSON(w, http.StatusOK, []types.TempStats{*stats})
}

func (c *climateControllerImpl) handleStatsBetween(w http.ResponseWriter, r *http.Request) {
	start := r.PathValue("start")
	end := r.PathValue("end")
	if !isValidDate(start) || !isValidDate(end) {
		utils.WriteError(w, http.StatusNotFound, fmt.Sprintf(
			"At least one date is not valid. You might consider checking the format (%s - %s), must be YYYY-MM-DD.", start, end))
		return
	}

	stats, err := c.repository.TempStats(r.Context(), start, &end)
	if err != nil {
		slog.Error("stats: query failed", "start", start, "end", end, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load temperature stats")
		return
	}
	if stats == nil {
		utils.WriteError(w, http.StatusNotFound, fmt.Sprintf("No data found for period between %s and %s.", start, end))
		return
	}
	utils.WriteJSON(w, http.StatusOK, []types.TempStats{*stats})
}
