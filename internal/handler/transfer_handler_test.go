package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarthealthy/tracker-api/internal/middleware"
	"github.com/smarthealthy/tracker-api/internal/models"
	appErrors "github.com/smarthealthy/tracker-api/pkg/errors"
)

type transferServiceMock struct {
	exported  []byte
	imported  []byte
	importErr error
	resets    int
	report    []byte
	filename  string
}

func (m *transferServiceMock) Export(ctx context.Context) ([]byte, error) {
	return m.exported, nil
}

func (m *transferServiceMock) Import(ctx context.Context, raw []byte) error {
	m.imported = raw
	return m.importErr
}

func (m *transferServiceMock) Reset(ctx context.Context) error {
	m.resets++
	return nil
}

func (m *transferServiceMock) Report(ctx context.Context, format string) ([]byte, string, error) {
	if format != "csv" && format != "pdf" {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported report format")
	}
	return m.report, m.filename, nil
}

func teacherContext(t *testing.T, w *httptest.ResponseRecorder, method, target string, body []byte) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	require.NoError(t, err)
	c.Request = req
	c.Set(middleware.ContextClaimsKey, &models.SessionClaims{Role: models.RoleTeacher})
	return c
}

func TestTransferHandlerExport(t *testing.T) {
	svc := &transferServiceMock{exported: []byte(`{"users":{}}`)}
	h := NewTransferHandler(svc)

	w := httptest.NewRecorder()
	c := teacherContext(t, w, http.MethodGet, "/transfer/export", nil)

	h.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"users":{}}`, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "tracker-export.json")
}

func TestTransferHandlerImport(t *testing.T) {
	svc := &transferServiceMock{}
	h := NewTransferHandler(svc)

	payload := []byte(`{"users":{},"posts":[],"stations":{}}`)
	w := httptest.NewRecorder()
	c := teacherContext(t, w, http.MethodPost, "/transfer/import", payload)

	h.Import(c)
	// gin's test context does not flush a body-less status to the recorder;
	// read it off the writer instead.
	require.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Equal(t, payload, svc.imported)
}

func TestTransferHandlerImportInvalidDocument(t *testing.T) {
	svc := &transferServiceMock{importErr: appErrors.Clone(appErrors.ErrInvalidDocument, "document is missing the \"stations\" key")}
	h := NewTransferHandler(svc)

	w := httptest.NewRecorder()
	c := teacherContext(t, w, http.MethodPost, "/transfer/import", []byte(`{"users":{}}`))

	h.Import(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_DOCUMENT")
}

func TestTransferHandlerImportPersistWarning(t *testing.T) {
	svc := &transferServiceMock{importErr: appErrors.ErrPersistFailed}
	h := NewTransferHandler(svc)

	w := httptest.NewRecorder()
	c := teacherContext(t, w, http.MethodPost, "/transfer/import", []byte(`{"users":{},"posts":[],"stations":{}}`))

	h.Import(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "persist_warning")
}

func TestTransferHandlerReset(t *testing.T) {
	svc := &transferServiceMock{}
	h := NewTransferHandler(svc)

	w := httptest.NewRecorder()
	c := teacherContext(t, w, http.MethodPost, "/transfer/reset", nil)

	h.Reset(c)
	require.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Equal(t, 1, svc.resets)
}

func TestTransferHandlerReportCSV(t *testing.T) {
	svc := &transferServiceMock{report: []byte("Rank,Name\n"), filename: "progress-report-2026-03-10.csv"}
	h := NewTransferHandler(svc)

	w := httptest.NewRecorder()
	c := teacherContext(t, w, http.MethodGet, "/transfer/report", nil)

	h.Report(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "progress-report-2026-03-10.csv")
}

func TestTransferHandlerReportUnknownFormat(t *testing.T) {
	h := NewTransferHandler(&transferServiceMock{})

	w := httptest.NewRecorder()
	c := teacherContext(t, w, http.MethodGet, "/transfer/report?format=xlsx", nil)

	h.Report(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
