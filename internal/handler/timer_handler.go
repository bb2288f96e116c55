package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studytimer/backend/internal/middleware"
	"studytimer/backend/internal/service"
)

type TimerHandler struct {
	timerService *service.TimerService
}

type switchModeRequest struct {
	Mode string `json:"mode"`
}

type setTaskRequest struct {
	Label string `json:"label"`
}

func NewTimerHandler(timerService *service.TimerService) *TimerHandler {
	return &TimerHandler{timerService: timerService}
}

func (h *TimerHandler) State(c *gin.Context) {
	state := h.timerService.State(middleware.UserID(c))
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *TimerHandler) Start(c *gin.Context) {
	state := h.timerService.Start(middleware.UserID(c))
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *TimerHandler) Pause(c *gin.Context) {
	state := h.timerService.Pause(middleware.UserID(c))
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *TimerHandler) Reset(c *gin.Context) {
	state := h.timerService.Reset(middleware.UserID(c))
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *TimerHandler) Skip(c *gin.Context) {
	state := h.timerService.Skip(middleware.UserID(c))
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *TimerHandler) SwitchMode(c *gin.Context) {
	var req switchModeRequest
	if !bindJSON(c, &req) {
		return
	}

	state, apiErr := h.timerService.SwitchMode(middleware.UserID(c), req.Mode)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *TimerHandler) SetTask(c *gin.Context) {
	var req setTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	state := h.timerService.SetTask(middleware.UserID(c), req.Label)
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *TimerHandler) Release(c *gin.Context) {
	h.timerService.Release(middleware.UserID(c))
	c.Status(http.StatusNoContent)
}
