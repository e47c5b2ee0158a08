package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "opsreports/internal/errors"
	reqmw "opsreports/internal/middleware"
	"opsreports/internal/services"
)

const (
	defaultRunsLimit = 50
	maxRunsLimit     = 500
)

// ReportsHandler handles report, run and chart requests with RFC 7807 errors
type ReportsHandler struct {
	service      ReportServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validator    *reqmw.Validator
	runLimiter   func(http.Handler) http.Handler
}

// NewReportsHandler creates a new reports handler. runLimiter wraps the run
// endpoint and may be nil.
func NewReportsHandler(service ReportServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, runLimiter func(http.Handler) http.Handler) *ReportsHandler {
	if runLimiter == nil {
		runLimiter = func(next http.Handler) http.Handler { return next }
	}
	return &ReportsHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "reports_handler")),
		errorHandler: errorHandler,
		validator:    reqmw.NewValidator(),
		runLimiter:   runLimiter,
	}
}

// Routes returns the report routes
func (h *ReportsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/reports", h.ListReports)
	r.With(h.runLimiter).Post("/reports/{name}/runs", h.RunReport)

	r.Get("/runs", h.ListRuns)
	r.Get("/runs/{id}", h.GetRun)

	r.Get("/charts", h.ListCharts)
	return r
}

// ListReports handles GET /api/reports
func (h *ReportsHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"reports": h.service.ListReports(r.Context()),
	})
}

// RunReport handles POST /api/reports/{name}/runs
func (h *ReportsHandler) RunReport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var params services.RunParams
	if err := h.validator.DecodeJSON(r, &params); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "run requested",
		slog.String("report", name),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	result, err := h.service.Run(r.Context(), name, params)
	if errors.Is(err, services.ErrRunInProgress) {
		h.errorHandler.HandleError(w, r, apierrors.ErrRunInProgress)
		return
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, result)
}

// ListRuns handles GET /api/runs?limit=N
func (h *ReportsHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxRunsLimit {
			h.errorHandler.HandleError(w, r, apierrors.NewValidationErrors([]apierrors.ValidationError{{
				Field:   "limit",
				Message: "limit must be between 1 and " + strconv.Itoa(maxRunsLimit),
			}}))
			return
		}
		limit = n
	}

	runs, err := h.service.ListRuns(r.Context(), limit)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// GetRun handles GET /api/runs/{id}
func (h *ReportsHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, run)
}

// ListCharts handles GET /api/charts
func (h *ReportsHandler) ListCharts(w http.ResponseWriter, r *http.Request) {
	charts, err := h.service.ListCharts(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	type chartEntry struct {
		Name string `json:"name"`
		URL  string `json:"url"`
		Size int64  `json:"size"`
	}
	out := make([]chartEntry, 0, len(charts))
	for _, c := range charts {
		out = append(out, chartEntry{Name: c.Name, URL: "/charts/" + url.PathEscape(c.Name), Size: c.Size})
	}
	render.JSON(w, r, map[string]interface{}{"charts": out})
}
