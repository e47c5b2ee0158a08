package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "opsreports/internal/errors"
	"opsreports/internal/infrastructure"
	"opsreports/internal/shared/testutil"
)

func TestTraceIDFollowsRequestID(t *testing.T) {
	var seen string
	h := chimw.RequestID(TraceID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = infrastructure.GetTraceID(r.Context())
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(chimw.RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(chimw.RequestIDHeader))
}

func TestStructuredLoggerRecordsRoutePattern(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	reg := prometheus.NewRegistry()

	r := chi.NewRouter()
	r.Use(StructuredLogger(logger, infrastructure.NewMetrics(reg)))
	r.Get("/api/runs/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/runs/42", nil))

	record, ok := logs.Find("request completed")
	require.True(t, ok)
	assert.Equal(t, "/api/runs/{id}", record.Attrs["route"])
	assert.Equal(t, int64(http.StatusNotFound), record.Attrs["status"])

	families, err := reg.Gather()
	require.NoError(t, err)
	found := false
	for _, mf := range families {
		if mf.GetName() != "opsreports_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["route"] == "/api/runs/{id}" && labels["status"] == "404" {
				found = true
			}
		}
	}
	assert.True(t, found)
}

func TestRateLimiter(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	rl := NewRateLimiter(0.001, 1, logger, apierrors.NewErrorHandler(logger, false))
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusAccepted, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "/errors/rate-limit")
}

type runBody struct {
	DateMode int    `json:"date_mode" validate:"required,gte=1,lte=5"`
	Input    string `json:"date_input" validate:"required"`
}

func TestValidatorDecodeJSON(t *testing.T) {
	v := NewValidator()

	var ok runBody
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"date_mode":2,"date_input":"03/2024"}`))
	require.NoError(t, v.DecodeJSON(req, &ok))
	assert.Equal(t, 2, ok.DateMode)

	tests := []struct {
		name      string
		body      string
		wantCode  string
		wantField string
	}{
		{"malformed", `{"date_mode":`, "INVALID_REQUEST", ""},
		{"unknown field", `{"date_mode":1,"date_input":"2024","extra":true}`, "INVALID_REQUEST", ""},
		{"out of range", `{"date_mode":7,"date_input":"2024"}`, "VALIDATION_FAILED", "date_mode"},
		{"missing input", `{"date_mode":1}`, "VALIDATION_FAILED", "date_input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body runBody
			err := v.DecodeJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body)), &body)
			require.Error(t, err)

			var apiErr *apierrors.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.wantCode, apiErr.ErrorCode)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			if tt.wantField != "" {
				details := apiErr.Details.(apierrors.ValidationErrors)
				assert.Equal(t, tt.wantField, details.Errors[0].Field)
			}
		})
	}
}
