package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"opsreports/internal/dataprocessing"
	apierrors "opsreports/internal/errors"
	"opsreports/internal/files"
	"opsreports/internal/reports"
	"opsreports/internal/services"
	"opsreports/internal/shared/testutil"
	"opsreports/internal/storage"
)

// MockReportService is a mock implementation of ReportServiceInterface
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) ListReports(ctx context.Context) []services.ReportSummary {
	return m.Called().Get(0).([]services.ReportSummary)
}

func (m *MockReportService) Run(ctx context.Context, name string, params services.RunParams) (*reports.Result, error) {
	args := m.Called(name, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reports.Result), args.Error(1)
}

func (m *MockReportService) ListRuns(ctx context.Context, limit int) ([]storage.Run, error) {
	args := m.Called(limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Run), args.Error(1)
}

func (m *MockReportService) GetRun(ctx context.Context, id string) (*storage.Run, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Run), args.Error(1)
}

func (m *MockReportService) ListCharts(ctx context.Context) ([]files.FileInfo, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]files.FileInfo), args.Error(1)
}

func newTestRouter(t *testing.T, svc *MockReportService) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	h := NewReportsHandler(svc, logger, apierrors.NewErrorHandler(logger, false), nil)

	r := chi.NewRouter()
	r.Mount("/api", h.Routes())
	return r
}

func serve(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestReportsHandler_ListReports(t *testing.T) {
	svc := &MockReportService{}
	svc.On("ListReports").Return([]services.ReportSummary{{Name: "venta_perdida"}})

	rec := serve(t, newTestRouter(t, svc), http.MethodGet, "/api/reports", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"venta_perdida"`)
}

func TestReportsHandler_RunReport(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(*MockReportService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "created",
			body: `{"date_mode":2,"date_input":"03/2024","location_option":1}`,
			setup: func(m *MockReportService) {
				m.On("Run", "venta_perdida", services.RunParams{DateMode: 2, DateInput: "03/2024", LocationOption: 1}).
					Return(&reports.Result{RunID: "r1", Report: "venta_perdida", RowsOut: 3}, nil)
			},
			wantStatus: http.StatusCreated,
			wantBody:   `"run_id":"r1"`,
		},
		{
			name:       "invalid body",
			body:       `{"date_mode":9,"date_input":"2024","location_option":1}`,
			setup:      func(*MockReportService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   "date_mode must be less than or equal to 5",
		},
		{
			name: "unknown report",
			body: `{"date_mode":1,"date_input":"2024","location_option":1}`,
			setup: func(m *MockReportService) {
				m.On("Run", "venta_perdida", mock.Anything).
					Return(nil, apierrors.NewNotFoundError(`report "venta_perdida"`, nil))
			},
			wantStatus: http.StatusNotFound,
			wantBody:   "/errors/not-found",
		},
		{
			name: "invalid location option",
			body: `{"date_mode":1,"date_input":"2024","location_option":9}`,
			setup: func(m *MockReportService) {
				m.On("Run", "venta_perdida", mock.Anything).
					Return(nil, apierrors.NewAppValidationError("invalid option 9: choose 1-4", dataprocessing.ErrInvalidOption))
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   "invalid option 9",
		},
		{
			name: "run in progress",
			body: `{"date_mode":1,"date_input":"2024","location_option":1}`,
			setup: func(m *MockReportService) {
				m.On("Run", "venta_perdida", mock.Anything).
					Return(nil, apierrors.NewAppValidationError("run rejected", services.ErrRunInProgress))
			},
			wantStatus: http.StatusConflict,
			wantBody:   "RUN_IN_PROGRESS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockReportService{}
			tt.setup(svc)

			rec := serve(t, newTestRouter(t, svc), http.MethodPost, "/api/reports/venta_perdida/runs", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestReportsHandler_ListRuns(t *testing.T) {
	svc := &MockReportService{}
	svc.On("ListRuns", 50).Return([]storage.Run{{ID: "a"}, {ID: "b"}}, nil)
	svc.On("ListRuns", 5).Return([]storage.Run{{ID: "a"}}, nil)
	router := newTestRouter(t, svc)

	rec := serve(t, router, http.MethodGet, "/api/runs", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decode(t, rec)["count"])

	rec = serve(t, router, http.MethodGet, "/api/runs?limit=5", "")
	assert.Equal(t, float64(1), decode(t, rec)["count"])

	rec = serve(t, router, http.MethodGet, "/api/runs?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertExpectations(t)
}

func TestReportsHandler_GetRun(t *testing.T) {
	svc := &MockReportService{}
	svc.On("GetRun", "r1").Return(&storage.Run{ID: "r1", Status: storage.StatusSuccess}, nil)
	svc.On("GetRun", "nope").Return(nil, apierrors.NewNotFoundError("run nope", storage.ErrRunNotFound))
	router := newTestRouter(t, svc)

	rec := serve(t, router, http.MethodGet, "/api/runs/r1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", decode(t, rec)["status"])

	rec = serve(t, router, http.MethodGet, "/api/runs/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, rec)["error_type"])
}

func TestReportsHandler_ListCharts(t *testing.T) {
	svc := &MockReportService{}
	svc.On("ListCharts").Return([]files.FileInfo{{Name: "bar_Cliente_Venta Perdida CF.png", Size: 10}}, nil)

	rec := serve(t, newTestRouter(t, svc), http.MethodGet, "/api/charts", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `/charts/bar_Cliente_Venta%20Perdida%20CF.png`)
}
