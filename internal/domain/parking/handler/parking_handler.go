package handler

import (
	"errors"
	"net/http"
	"voucher_wheel/internal/domain/parking/repository"
	"voucher_wheel/internal/domain/parking/service"
	"voucher_wheel/pkg/response"

	"github.com/gin-gonic/gin"
)

type ParkingHandler struct {
	service service.ParkingService
}

func NewParkingHandler(service service.ParkingService) *ParkingHandler {
	return &ParkingHandler{service: service}
}

func (h *ParkingHandler) ListParkings(c *gin.Context) {
	parkings, err := h.service.ListParkings(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Failed to list parkings")
		return
	}
	response.Success(c, parkings)
}

type SpaceUpdateInput struct {
	ID              string `json:"id" binding:"required"`
	TotalSpaces     int    `json:"totalSpaces"`
	AvailableSpaces int    `json:"availableSpaces"`
	IsOpen          bool   `json:"isOpen"`
}

type UpdateParkingsInput struct {
	Parkings []SpaceUpdateInput `json:"parkings" binding:"required,min=1,dive"`
}

// UpdateParkings 管理员批量更新余位
func (h *ParkingHandler) UpdateParkings(c *gin.Context) {
	var input UpdateParkingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	updates := make([]repository.SpaceUpdate, 0, len(input.Parkings))
	for _, p := range input.Parkings {
		updates = append(updates, repository.SpaceUpdate(p))
	}

	parkings, err := h.service.UpdateParkings(c.Request.Context(), updates)
	switch {
	case errors.Is(err, service.ErrInvalidSpaces):
		response.Fail(c, response.ErrParkingInvalid, err.Error())
	case errors.Is(err, repository.ErrParkingNotFound):
		response.Error(c, http.StatusNotFound, response.ErrParkingNotFound, err.Error())
	case err != nil:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Failed to update parkings")
	default:
		response.Success(c, parkings)
	}
}
