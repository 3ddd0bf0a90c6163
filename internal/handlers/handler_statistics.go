package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jizhangapp/pft_backend/internal/apperrors"
	"github.com/jizhangapp/pft_backend/internal/core/domain"
	portssvc "github.com/jizhangapp/pft_backend/internal/core/ports/services"
	"github.com/jizhangapp/pft_backend/internal/dto"
	"github.com/jizhangapp/pft_backend/internal/middleware"
)

// statisticsHandler handles HTTP requests for financial statistics.
type statisticsHandler struct {
	statisticsService portssvc.StatisticsSvc
}

// newStatisticsHandler creates a new statisticsHandler.
func newStatisticsHandler(ss portssvc.StatisticsSvc) *statisticsHandler {
	return &statisticsHandler{
		statisticsService: ss,
	}
}

// registerStatisticsRoutes registers the statistics routes.
func registerStatisticsRoutes(rg *gin.RouterGroup, statisticsService portssvc.StatisticsSvc) {
	h := newStatisticsHandler(statisticsService)

	rg.GET("/statistics", h.getStatistics)
}

// parseStatisticsParams converts the bound query parameters into a domain
// window and grouping. Date strings are already format-validated by binding.
func parseStatisticsParams(params dto.GetStatisticsParams) (domain.StatisticsRange, domain.TimeSeriesGroupBy) {
	var window domain.StatisticsRange
	if params.StartDate != nil {
		t, _ := time.Parse(dto.TransactionDateFormat, *params.StartDate)
		window.StartDate = &t
	}
	if params.EndDate != nil {
		t, _ := time.Parse(dto.TransactionDateFormat, *params.EndDate)
		window.EndDate = &t
	}
	groupBy := domain.TimeSeriesGroupBy(params.GroupBy)
	if groupBy == "" {
		groupBy = domain.GroupByMonth
	}
	return window, groupBy
}

// getStatistics godoc
// @Summary Get financial statistics
// @Description Returns the summary, per-category breakdown and time series for the user over an optional date window. All three views derive from one consistent snapshot.
// @Tags statistics
// @Produce  json
// @Param   startDate query string false "Inclusive lower date bound (YYYY-MM-DD)"
// @Param   endDate query string false "Inclusive upper date bound (YYYY-MM-DD)"
// @Param   groupBy query string false "Time series granularity (day|month)" default(month)
// @Success 200 {object} dto.StatisticsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters or date range"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to compute statistics"
// @Security BearerAuth
// @Router /statistics [get]
func (h *statisticsHandler) getStatistics(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params dto.GetStatisticsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	window, groupBy := parseStatisticsParams(params)

	stats, err := h.statisticsService.GetStatistics(c.Request.Context(), userID, window, groupBy)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to compute statistics", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute statistics"})
		return
	}

	c.JSON(http.StatusOK, dto.ToStatisticsResponse(stats))
}
