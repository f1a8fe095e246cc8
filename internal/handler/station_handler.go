package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smarthealthy/tracker-api/internal/middleware"
	"github.com/smarthealthy/tracker-api/internal/models"
	"github.com/smarthealthy/tracker-api/internal/service"
	appErrors "github.com/smarthealthy/tracker-api/pkg/errors"
	"github.com/smarthealthy/tracker-api/pkg/response"
)

type stationService interface {
	Get(ctx context.Context, code string) (*service.StationView, error)
	List(ctx context.Context) ([]models.Station, error)
	Upsert(ctx context.Context, code string, req service.UpsertStationRequest) (*models.Station, error)
}

type claimLedger interface {
	ClaimStation(ctx context.Context, studentID, code, answer string, now time.Time) (*models.ClaimResult, error)
}

// StationHandler exposes the station quiz flow and its administration.
type StationHandler struct {
	stations stationService
	ledger   claimLedger
}

// NewStationHandler constructs StationHandler.
func NewStationHandler(stations stationService, ledger claimLedger) *StationHandler {
	return &StationHandler{stations: stations, ledger: ledger}
}

// Get godoc
// @Summary Load a station by code (question and points, no answer)
// @Tags Stations
// @Produce json
// @Param code path string true "Station code"
// @Success 200 {object} response.Envelope
// @Router /stations/{code} [get]
func (h *StationHandler) Get(c *gin.Context) {
	view, err := h.stations.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// ClaimRequest carries the submitted free-text answer.
type ClaimRequest struct {
	Answer string `json:"answer"`
}

// Claim godoc
// @Summary Attempt a station claim with a free-text answer
// @Tags Stations
// @Accept json
// @Produce json
// @Param code path string true "Station code"
// @Param payload body ClaimRequest true "Submitted answer"
// @Success 200 {object} response.Envelope
// @Router /stations/{code}/claims [post]
func (h *StationHandler) Claim(c *gin.Context) {
	claims := middleware.Claims(c)

	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.ledger.ClaimStation(c.Request.Context(), claims.StudentID, c.Param("code"), req.Answer, time.Now())
	if err != nil && !service.IsPersistWarning(err) {
		response.Error(c, err)
		return
	}
	if result.Outcome == models.ClaimNotFound {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "station code not found"))
		return
	}
	response.JSON(c, http.StatusOK, result, nil, response.PersistMeta(err))
}

// List godoc
// @Summary List all stations, answers included (teacher)
// @Tags Stations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stations [get]
func (h *StationHandler) List(c *gin.Context) {
	stations, err := h.stations.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stations, nil)
}

// Upsert godoc
// @Summary Create or replace a station (teacher)
// @Tags Stations
// @Accept json
// @Produce json
// @Param code path string true "Station code"
// @Param payload body service.UpsertStationRequest true "Station payload"
// @Success 200 {object} response.Envelope
// @Router /stations/{code} [put]
func (h *StationHandler) Upsert(c *gin.Context) {
	var req service.UpsertStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	station, err := h.stations.Upsert(c.Request.Context(), c.Param("code"), req)
	if err != nil && !service.IsPersistWarning(err) {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, station, nil, response.PersistMeta(err))
}
