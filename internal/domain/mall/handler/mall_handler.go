package handler

import (
	"errors"
	"net/http"
	"voucher_wheel/internal/domain/mall/repository"
	"voucher_wheel/internal/domain/mall/service"
	"voucher_wheel/pkg/response"

	"github.com/gin-gonic/gin"
)

type MallHandler struct {
	service service.MallService
}

func NewMallHandler(service service.MallService) *MallHandler {
	return &MallHandler{service: service}
}

// GetInfo 商场名称、地址、营业时间等
func (h *MallHandler) GetInfo(c *gin.Context) {
	info, err := h.service.GetInfo(c.Request.Context())
	if errors.Is(err, repository.ErrMallNotFound) {
		response.Error(c, http.StatusNotFound, response.ErrMallNotFound, "Mall info not found")
		return
	}
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Failed to load mall info")
		return
	}
	response.Success(c, info)
}

type UpdateMallInput struct {
	Name         string `json:"name" binding:"required,max=120"`
	Address      string `json:"address" binding:"max=255"`
	Phone        string `json:"phone" binding:"max=40"`
	Email        string `json:"email" binding:"omitempty,email,max=120"`
	OpeningHours string `json:"openingHours" binding:"max=120"`
	Description  string `json:"description"`
	MapImage     string `json:"mapImage" binding:"max=255"`
}

// UpdateInfo 管理员更新商场信息
func (h *MallHandler) UpdateInfo(c *gin.Context) {
	var input UpdateMallInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	info, err := h.service.UpdateInfo(c.Request.Context(), service.UpdateMallInput(input))
	if errors.Is(err, service.ErrInvalidMallInfo) {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Failed to update mall info")
		return
	}
	response.Success(c, info)
}
