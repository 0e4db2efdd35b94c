package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/felixggj/happy-robot-fde/internal/api"
	"github.com/felixggj/happy-robot-fde/internal/dashboard"
	"github.com/felixggj/happy-robot-fde/internal/models"
)

// Upstream is the slice of the API client the service proxies.
type Upstream interface {
	dashboard.Source
	GetHealthStatus(ctx context.Context) (models.HealthStatus, error)
}

type Handler struct {
	API       Upstream
	Validator *validator.Validate
	Logger    zerolog.Logger

	LoadsMaxResults int
	CallsLimit      int
}

type LoadsQuery struct {
	Origin        string `form:"origin" validate:"max=120"`
	Destination   string `form:"destination" validate:"max=120"`
	EquipmentType string `form:"equipment_type" validate:"max=60"`
	PickupFrom    string `form:"pickup_from" validate:"max=40"`
	PickupTo      string `form:"pickup_to" validate:"max=40"`
	MaxResults    int    `form:"max_results" validate:"omitempty,min=1,max=100"`
}

type CallSessionsQuery struct {
	Limit int `form:"limit" validate:"omitempty,min=1,max=500"`
}

type PanelView[T any] struct {
	Data      T          `json:"data"`
	Error     *string    `json:"error"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type OverviewResponse struct {
	Metrics PanelView[*models.Metrics]      `json:"metrics"`
	Loads   PanelView[[]models.Load]        `json:"loads"`
	Calls   PanelView[[]models.CallSession] `json:"call_sessions"`
}

// @Summary Service health
// @Description Liveness of this service and the carrier sales API behind it
// @Tags health
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	upstream, err := h.API.GetHealthStatus(ctx)
	if err != nil {
		_ = c.Error(err)
		writeError(c, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "Carrier sales API unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "upstream": upstream})
}

// @Summary Dashboard metrics
// @Tags dashboard
// @Produce json
// @Success 200 {object} models.Metrics
// @Failure 502 {object} map[string]any
// @Router /api/dashboard/metrics [get]
func (h *Handler) Metrics(c *gin.Context) {
	metrics, err := h.API.GetMetrics(c.Request.Context())
	if err != nil {
		h.upstreamError(c, "metrics", err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// @Summary Search loads
// @Tags dashboard
// @Produce json
// @Param origin query string false "Origin city"
// @Param destination query string false "Destination city"
// @Param equipment_type query string false "Equipment type"
// @Param pickup_from query string false "Earliest pickup"
// @Param pickup_to query string false "Latest pickup"
// @Param max_results query int false "Page size (1-100)"
// @Success 200 {array} models.Load
// @Failure 400 {object} map[string]any
// @Failure 502 {object} map[string]any
// @Router /api/dashboard/loads [get]
func (h *Handler) Loads(c *gin.Context) {
	var q LoadsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid query", err.Error())
		return
	}
	if err := h.Validator.Struct(q); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	loads, err := h.API.GetLoads(c.Request.Context(), h.loadFilter(q))
	if err != nil {
		h.upstreamError(c, "loads", err)
		return
	}
	c.JSON(http.StatusOK, loads)
}

// @Summary Recent call sessions
// @Tags dashboard
// @Produce json
// @Param limit query int false "Page size (1-500)"
// @Success 200 {array} models.CallSession
// @Failure 400 {object} map[string]any
// @Failure 502 {object} map[string]any
// @Router /api/dashboard/call-sessions [get]
func (h *Handler) CallSessions(c *gin.Context) {
	var q CallSessionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid query", err.Error())
		return
	}
	if err := h.Validator.Struct(q); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	limit := q.Limit
	if limit == 0 {
		limit = h.CallsLimit
	}
	calls, err := h.API.GetCallSessions(c.Request.Context(), limit)
	if err != nil {
		h.upstreamError(c, "call sessions", err)
		return
	}
	c.JSON(http.StatusOK, calls)
}

// @Summary Dashboard overview
// @Description All three panels fetched concurrently. Each panel carries its own error.
// @Tags dashboard
// @Produce json
// @Success 200 {object} OverviewResponse
// @Router /api/dashboard/overview [get]
func (h *Handler) Overview(c *gin.Context) {
	board := dashboard.NewBoard(h.API, dashboard.Options{
		Loads:      models.LoadFilter{MaxResults: h.LoadsMaxResults},
		CallsLimit: h.CallsLimit,
	}, h.Logger)
	defer board.Close()

	snap := board.Refresh(c.Request.Context())

	var resp OverviewResponse
	resp.Metrics = panelView(snap.Metrics, "metrics", func(m models.Metrics) *models.Metrics { return &m })
	resp.Loads = panelView(snap.Loads, "loads", identity[[]models.Load])
	resp.Calls = panelView(snap.Calls, "call sessions", identity[[]models.CallSession])
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) loadFilter(q LoadsQuery) models.LoadFilter {
	n := q.MaxResults
	if n == 0 {
		n = h.LoadsMaxResults
	}
	return models.LoadFilter{
		Origin:        q.Origin,
		Destination:   q.Destination,
		EquipmentType: q.EquipmentType,
		PickupFrom:    q.PickupFrom,
		PickupTo:      q.PickupTo,
		MaxResults:    n,
	}
}

func (h *Handler) upstreamError(c *gin.Context, resource string, err error) {
	_ = c.Error(err)
	var details any = err.Error()
	var rf *api.RequestFailedError
	if errors.As(err, &rf) {
		details = gin.H{"status": rf.StatusCode, "status_text": rf.StatusText}
	}
	writeError(c, http.StatusBadGateway, "UPSTREAM_ERROR", api.UserMessage(resource, err), details)
}

func panelView[T, V any](s dashboard.State[T], resource string, conv func(T) V) PanelView[V] {
	var out PanelView[V]
	if s.HasData {
		out.Data = conv(s.Data)
		ts := s.UpdatedAt.UTC()
		out.UpdatedAt = &ts
	}
	if s.Err != nil {
		msg := api.UserMessage(resource, s.Err)
		out.Error = &msg
	}
	return out
}

func identity[T any](v T) T { return v }

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
