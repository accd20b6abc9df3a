package handler

import (
	"errors"
	"net/http"
	"time"
	shopRepo "voucher_wheel/internal/domain/shop/repository"
	"voucher_wheel/internal/domain/voucher/repository"
	"voucher_wheel/internal/domain/voucher/service"
	"voucher_wheel/internal/pkg/middleware"
	"voucher_wheel/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type VoucherHandler struct {
	service service.VoucherService
}

func NewVoucherHandler(service service.VoucherService) *VoucherHandler {
	return &VoucherHandler{service: service}
}

type CreateVoucherInput struct {
	ShopID      string          `json:"shopId" binding:"required"`
	Code        string          `json:"code" binding:"omitempty,max=40"`
	Value       decimal.Decimal `json:"value"`
	Description string          `json:"description" binding:"max=255"`
	ExpiresAt   time.Time       `json:"expiresAt" binding:"required"`
}

// CreateVoucher 管理员录入券
func (h *VoucherHandler) CreateVoucher(c *gin.Context) {
	var input CreateVoucherInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	voucher, err := h.service.CreateVoucher(c.Request.Context(), service.CreateVoucherInput{
		ShopID:      input.ShopID,
		Code:        input.Code,
		Value:       input.Value,
		Description: input.Description,
		ExpiresAt:   input.ExpiresAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidVoucher):
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		case errors.Is(err, shopRepo.ErrShopNotFound):
			response.Fail(c, response.ErrShopNotFound, "Shop not found")
		case errors.Is(err, service.ErrVoucherCodeExists):
			response.Fail(c, response.ErrVoucherCodeExists, "Voucher code already exists")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Failed to create voucher")
		}
		return
	}

	response.Success(c, voucher)
}

// MyVouchers 当前用户的券包
func (h *VoucherHandler) MyVouchers(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == "" {
		response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "User not authenticated")
		return
	}

	wallet, err := h.service.ListUserVouchers(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Failed to load vouchers")
		return
	}
	response.Success(c, wallet)
}

// RedeemVoucher 核销
func (h *VoucherHandler) RedeemVoucher(c *gin.Context) {
	voucher, err := h.service.RedeemVoucher(c.Request.Context(), c.Param("code"))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrVoucherNotFound):
			response.Error(c, http.StatusNotFound, response.ErrVoucherNotFound, "Voucher not found")
		case errors.Is(err, repository.ErrVoucherNotRedeemable):
			response.Fail(c, response.ErrVoucherNotRedeemable, "Voucher is not won, already used or expired")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Failed to redeem voucher")
		}
		return
	}
	response.Success(c, voucher)
}

// Stats 券总体统计
func (h *VoucherHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Failed to load stats")
		return
	}
	response.Success(c, stats)
}
