package handler

import (
	"errors"
	"net/http"
	"voucher_wheel/internal/domain/visitor/model"
	"voucher_wheel/internal/domain/visitor/service"
	"voucher_wheel/pkg/response"

	"github.com/gin-gonic/gin"
)

type VisitorHandler struct {
	service service.VisitorService
}

func NewVisitorHandler(service service.VisitorService) *VisitorHandler {
	return &VisitorHandler{service: service}
}

type TrackVisitInput struct {
	SessionID string `json:"sessionId" binding:"required,max=64"`
	Referrer  string `json:"referrer"`
}

// TrackVisit 前端每次页面加载上报一次
func (h *VisitorHandler) TrackVisit(c *gin.Context) {
	var input TrackVisitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.TrackVisit(c.Request.Context(), input.SessionID, c.Request.UserAgent(), input.Referrer)
	if errors.Is(err, service.ErrInvalidSession) {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Failed to track visit")
		return
	}
	response.Success(c, result)
}

// Stats 管理员查看访客统计，period 默认 day
func (h *VisitorHandler) Stats(c *gin.Context) {
	period := c.DefaultQuery("period", model.PeriodDay)
	report, err := h.service.Stats(c.Request.Context(), period)
	if errors.Is(err, service.ErrInvalidPeriod) {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Failed to load visitor stats")
		return
	}
	response.Success(c, report)
}
