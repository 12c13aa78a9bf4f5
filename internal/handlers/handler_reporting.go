package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/keepon-app/keepon-ledger/internal/core/ports/services"
	"github.com/keepon-app/keepon-ledger/internal/dto"
	"github.com/keepon-app/keepon-ledger/internal/middleware"
)

// reportingHandler handles HTTP requests for financial reports.
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler.
func newReportingHandler(reportingService portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: reportingService,
	}
}

// registerReportingRoutes registers report routes nested under a business.
func registerReportingRoutes(group *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reports := group.Group("/reports")
	{
		reports.GET("/trial-balance", h.getTrialBalance)
		reports.GET("/profit-and-loss", h.getProfitAndLoss)
	}
}

// getTrialBalance godoc
// @Summary Trial balance report
// @Description Aggregates debit and credit totals per account as of a date; defaults to now
// @Tags reports
// @Produce json
// @Param businessID path string true "Business ID"
// @Param asOf query string false "Report date (RFC 3339); defaults to now"
// @Success 200 {object} dto.Envelope{data=dto.TrialBalanceResponse}
// @Failure 400 {object} dto.Envelope "Invalid date"
// @Security BearerAuth
// @Router /businesses/{businessID}/reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	asOf := time.Now()
	if asOfStr := c.Query("asOf"); asOfStr != "" {
		parsed, err := time.Parse(time.RFC3339, asOfStr)
		if err != nil {
			logger.Warn("Invalid asOf date for trial balance", slog.String("asOf", asOfStr))
			c.JSON(http.StatusBadRequest, dto.Error("Invalid asOf date, expected RFC 3339"))
			return
		}
		asOf = parsed
	}

	rows, err := h.reportingService.TrialBalance(c.Request.Context(), businessID, asOf, userID)
	if err != nil {
		respondError(c, err, "Failed to generate trial balance")
		return
	}

	c.JSON(http.StatusOK, dto.Success(dto.ToTrialBalanceResponse(rows)))
}

// getProfitAndLoss godoc
// @Summary Profit and loss report
// @Description Aggregates revenue and expense movements over a period
// @Tags reports
// @Produce json
// @Param businessID path string true "Business ID"
// @Param from query string true "Period start (RFC 3339)"
// @Param to query string true "Period end (RFC 3339)"
// @Success 200 {object} dto.Envelope{data=domain.PAndLReport}
// @Failure 400 {object} dto.Envelope "Invalid period"
// @Security BearerAuth
// @Router /businesses/{businessID}/reports/profit-and-loss [get]
func (h *reportingHandler) getProfitAndLoss(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	businessID, ok := requireBusinessID(c)
	if !ok {
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		logger.Warn("Invalid from date for profit and loss", slog.String("from", c.Query("from")))
		c.JSON(http.StatusBadRequest, dto.Error("Invalid from date, expected RFC 3339"))
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		logger.Warn("Invalid to date for profit and loss", slog.String("to", c.Query("to")))
		c.JSON(http.StatusBadRequest, dto.Error("Invalid to date, expected RFC 3339"))
		return
	}

	report, err := h.reportingService.ProfitAndLoss(c.Request.Context(), businessID, from, to, userID)
	if err != nil {
		respondError(c, err, "Failed to generate profit and loss report")
		return
	}

	c.JSON(http.StatusOK, dto.Success(report))
}
