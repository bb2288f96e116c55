package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studytimer/backend/internal/middleware"
	"studytimer/backend/internal/service"
)

type ReportHandler struct {
	reportService *service.ReportService
}

func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) Week(c *gin.Context) {
	report, apiErr := h.reportService.Week(c.Request.Context(), middleware.UserID(c), c.Query("start"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

func (h *ReportHandler) Goals(c *gin.Context) {
	goals, apiErr := h.reportService.Goals(c.Request.Context(), middleware.UserID(c))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

func (h *ReportHandler) UpsertGoal(c *gin.Context) {
	var req service.GoalInput
	if !bindJSON(c, &req) {
		return
	}

	goal, apiErr := h.reportService.UpsertGoal(c.Request.Context(), middleware.UserID(c), req)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goal": goal})
}
