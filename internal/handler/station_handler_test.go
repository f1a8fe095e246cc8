package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarthealthy/tracker-api/internal/middleware"
	"github.com/smarthealthy/tracker-api/internal/models"
	"github.com/smarthealthy/tracker-api/internal/service"
	appErrors "github.com/smarthealthy/tracker-api/pkg/errors"
)

type stationServiceMock struct {
	stations map[string]*service.StationView
	upserted map[string]service.UpsertStationRequest
}

func (m *stationServiceMock) Get(ctx context.Context, code string) (*service.StationView, error) {
	if view, ok := m.stations[code]; ok {
		return view, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "station code not found")
}

func (m *stationServiceMock) List(ctx context.Context) ([]models.Station, error) {
	return []models.Station{{Code: "ST-APPLE", Question: "q", Answer: "a", Points: 5}}, nil
}

func (m *stationServiceMock) Upsert(ctx context.Context, code string, req service.UpsertStationRequest) (*models.Station, error) {
	if m.upserted == nil {
		m.upserted = map[string]service.UpsertStationRequest{}
	}
	m.upserted[code] = req
	return &models.Station{Code: code, Question: req.Question, Answer: req.Answer, Points: req.Points}, nil
}

type claimLedgerMock struct {
	result *models.ClaimResult
	err    error
}

func (m *claimLedgerMock) ClaimStation(ctx context.Context, studentID, code, answer string, now time.Time) (*models.ClaimResult, error) {
	return m.result, m.err
}

func studentContext(t *testing.T, w *httptest.ResponseRecorder, method, target string, body []byte) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextClaimsKey, &models.SessionClaims{StudentID: "s1", Role: models.RoleStudent})
	return c
}

func TestStationHandlerGet(t *testing.T) {
	stations := &stationServiceMock{stations: map[string]*service.StationView{
		"ST-APPLE": {Code: "ST-APPLE", Question: "q", Points: 5},
	}}
	h := NewStationHandler(stations, &claimLedgerMock{})

	w := httptest.NewRecorder()
	c := studentContext(t, w, http.MethodGet, "/stations/ST-APPLE", nil)
	c.Params = gin.Params{{Key: "code", Value: "ST-APPLE"}}

	h.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ST-APPLE"`)
	assert.NotContains(t, w.Body.String(), `"answer"`)
}

func TestStationHandlerGetNotFound(t *testing.T) {
	h := NewStationHandler(&stationServiceMock{}, &claimLedgerMock{})

	w := httptest.NewRecorder()
	c := studentContext(t, w, http.MethodGet, "/stations/ST-NOPE", nil)
	c.Params = gin.Params{{Key: "code", Value: "ST-NOPE"}}

	h.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestStationHandlerClaimCorrect(t *testing.T) {
	ledger := &claimLedgerMock{result: &models.ClaimResult{
		Outcome:       models.ClaimCorrect,
		StationCode:   "ST-APPLE",
		PointsAwarded: 5,
		TotalPoints:   15,
		Level:         1,
	}}
	h := NewStationHandler(&stationServiceMock{}, ledger)

	body, _ := json.Marshal(ClaimRequest{Answer: "المناعة"})
	w := httptest.NewRecorder()
	c := studentContext(t, w, http.MethodPost, "/stations/ST-APPLE/claims", body)
	c.Params = gin.Params{{Key: "code", Value: "ST-APPLE"}}

	h.Claim(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"correct"`)
}

func TestStationHandlerClaimUnknownStation(t *testing.T) {
	ledger := &claimLedgerMock{result: &models.ClaimResult{Outcome: models.ClaimNotFound, StationCode: "ST-NOPE"}}
	h := NewStationHandler(&stationServiceMock{}, ledger)

	body, _ := json.Marshal(ClaimRequest{Answer: "8"})
	w := httptest.NewRecorder()
	c := studentContext(t, w, http.MethodPost, "/stations/ST-NOPE/claims", body)
	c.Params = gin.Params{{Key: "code", Value: "ST-NOPE"}}

	h.Claim(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestStationHandlerClaimMalformedBody(t *testing.T) {
	h := NewStationHandler(&stationServiceMock{}, &claimLedgerMock{})

	w := httptest.NewRecorder()
	c := studentContext(t, w, http.MethodPost, "/stations/ST-APPLE/claims", []byte("{not json"))
	c.Params = gin.Params{{Key: "code", Value: "ST-APPLE"}}

	h.Claim(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStationHandlerClaimPersistWarning(t *testing.T) {
	ledger := &claimLedgerMock{
		result: &models.ClaimResult{Outcome: models.ClaimCorrect, StationCode: "ST-APPLE", PointsAwarded: 5, TotalPoints: 5, Level: 1},
		err:    appErrors.ErrPersistFailed,
	}
	h := NewStationHandler(&stationServiceMock{}, ledger)

	body, _ := json.Marshal(ClaimRequest{Answer: "المناعة"})
	w := httptest.NewRecorder()
	c := studentContext(t, w, http.MethodPost, "/stations/ST-APPLE/claims", body)
	c.Params = gin.Params{{Key: "code", Value: "ST-APPLE"}}

	h.Claim(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "persist_warning")
}

func TestStationHandlerUpsert(t *testing.T) {
	stations := &stationServiceMock{}
	h := NewStationHandler(stations, &claimLedgerMock{})

	body, _ := json.Marshal(service.UpsertStationRequest{Question: "q", Answer: "a", Points: 7})
	w := httptest.NewRecorder()
	c := studentContext(t, w, http.MethodPut, "/stations/ST-MILK", body)
	c.Params = gin.Params{{Key: "code", Value: "ST-MILK"}}

	h.Upsert(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, stations.upserted, "ST-MILK")
}

func TestStationHandlerList(t *testing.T) {
	h := NewStationHandler(&stationServiceMock{}, &claimLedgerMock{})

	w := httptest.NewRecorder()
	c := studentContext(t, w, http.MethodGet, "/stations", nil)

	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"answer"`)
}
